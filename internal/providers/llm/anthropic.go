package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/sosacrazy126/gptme/internal/core"
)

type anthropicProvider struct {
	client      anthropic.Client
	temperature float64
	maxTokens   int
}

func newAnthropicProvider(apiKey string, temperature float64, maxTokens int) *anthropicProvider {
	return &anthropicProvider{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (p *anthropicProvider) Chat(ctx context.Context, messages []core.Message, model string) (string, error) {
	resp, err := p.client.Messages.New(ctx, p.params(messages, model))
	if err != nil {
		return "", fmt.Errorf("anthropic chat: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += tb.Text
		}
	}
	return text, nil
}

func (p *anthropicProvider) Stream(ctx context.Context, messages []core.Message, model string) (core.Stream, error) {
	raw := p.client.Messages.NewStreaming(ctx, p.params(messages, model))
	return &anthropicStream{raw: raw}, nil
}

// params splits system messages into the dedicated system field; the
// Anthropic API does not accept them inline.
func (p *anthropicProvider) params(messages []core.Message, model string) anthropic.MessageNewParams {
	var system []anthropic.TextBlockParam
	converted := make([]anthropic.MessageParam, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case core.RoleAssistant:
			converted = append(converted, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			converted = append(converted, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	return anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		Messages:    converted,
		System:      system,
		Temperature: anthropic.Float(p.temperature),
		MaxTokens:   int64(p.maxTokens),
	}
}

type anthropicStream struct {
	raw     *ssestream.Stream[anthropic.MessageStreamEventUnion]
	current string
}

func (s *anthropicStream) Next() bool {
	for s.raw.Next() {
		event := s.raw.Current()
		if delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if delta.Delta.Text != "" {
				s.current = delta.Delta.Text
				return true
			}
		}
	}
	return false
}

func (s *anthropicStream) Current() string { return s.current }
func (s *anthropicStream) Err() error      { return s.raw.Err() }
func (s *anthropicStream) Close() error    { return s.raw.Close() }
