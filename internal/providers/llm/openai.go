package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/sosacrazy126/gptme/internal/core"
)

type openAIProvider struct {
	client      openai.Client
	temperature float64
	maxTokens   int
}

func newOpenAIProvider(apiKey string, temperature float64, maxTokens int) *openAIProvider {
	return &openAIProvider{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (p *openAIProvider) Chat(ctx context.Context, messages []core.Message, model string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, p.params(messages, model))
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *openAIProvider) Stream(ctx context.Context, messages []core.Message, model string) (core.Stream, error) {
	raw := p.client.Chat.Completions.NewStreaming(ctx, p.params(messages, model))
	return &openAIStream{raw: raw}, nil
}

func (p *openAIProvider) params(messages []core.Message, model string) openai.ChatCompletionNewParams {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			converted = append(converted, openai.SystemMessage(m.Content))
		case core.RoleAssistant:
			converted = append(converted, openai.AssistantMessage(m.Content))
		default:
			converted = append(converted, openai.UserMessage(m.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    converted,
		Temperature: openai.Float(p.temperature),
		MaxTokens:   openai.Int(int64(p.maxTokens)),
	}
}

// openAIStream surfaces only non-empty content deltas.
type openAIStream struct {
	raw     *ssestream.Stream[openai.ChatCompletionChunk]
	current string
}

func (s *openAIStream) Next() bool {
	for s.raw.Next() {
		chunk := s.raw.Current()
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			s.current = chunk.Choices[0].Delta.Content
			return true
		}
	}
	return false
}

func (s *openAIStream) Current() string { return s.current }
func (s *openAIStream) Err() error      { return s.raw.Err() }
func (s *openAIStream) Close() error    { return s.raw.Close() }
