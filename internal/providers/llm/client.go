package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sosacrazy126/gptme/internal/config"
	"github.com/sosacrazy126/gptme/internal/core"
	"github.com/sosacrazy126/gptme/internal/service/memory"
	"github.com/sosacrazy126/gptme/pkg/log"
)

const summarySystemPrompt = "You are a helpful assistant that summarizes " +
	"conversations with an AI assistant through a tool called gptme."

const namingSystemPrompt = `The following is a conversation between a user and an assistant.
You should generate a descriptive name for it.

The name should be 3-6 words describing the conversation, separated by dashes. Examples:
 - install-llama
 - implement-game-of-life
 - capitalize-words-in-python

Focus on the main and/or initial topic of the conversation. Avoid using names that are too generic or too specific.

IMPORTANT: output only the name, no preamble or postamble.`

const namingFollowUp = "That was the context of the conversation. Now, answer with a " +
	"descriptive name for this conversation according to system instructions."

// provider is the capability each SDK-backed family exposes.
type provider interface {
	Chat(ctx context.Context, messages []core.Message, model string) (string, error)
	Stream(ctx context.Context, messages []core.Message, model string) (core.Stream, error)
}

// conversationMemory supplies past context for prompts and receives
// completed exchanges for write-back.
type conversationMemory interface {
	AddInteraction(ctx context.Context, msg core.Message, response string) error
	GetRelevantContext(ctx context.Context, msg core.Message, maxContext int) ([]core.ContextEntry, error)
}

const contextPreamble = "Here is some relevant context from previous conversations:\n\n"

// Client dispatches completions to the provider family selected once at
// construction from the configured model name.
type Client struct {
	cfg      *config.Config
	kind     Kind
	provider provider
	mem      conversationMemory

	countTokens func(string) int
}

// New resolves the provider kind from cfg.Model and builds the matching SDK
// client. mem may be nil when memory augmentation is not wanted.
func New(cfg *config.Config, mem conversationMemory) (*Client, error) {
	kind, err := KindForModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	var p provider
	switch kind {
	case KindOpenAI:
		p = newOpenAIProvider(cfg.OpenAIAPIKey, cfg.Temperature, cfg.MaxTokens)
	case KindAnthropic:
		p = newAnthropicProvider(cfg.AnthropicAPIKey, cfg.Temperature, cfg.MaxTokens)
	}

	return &Client{
		cfg:         cfg,
		kind:        kind,
		provider:    p,
		mem:         mem,
		countTokens: CountTokens,
	}, nil
}

func (c *Client) Kind() Kind {
	return c.kind
}

// Complete runs a blocking completion with memory context prepended and
// records the raw exchange into memory.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	messages := []core.Message{core.NewMessage(core.RoleUser, prompt)}

	response, err := c.provider.Chat(ctx, c.withContext(ctx, messages), c.cfg.Model)
	if err != nil {
		return "", err
	}

	c.record(ctx, messages, response)
	return response, nil
}

// Stream starts a streaming completion with memory context prepended. The
// concatenated result is recorded into memory exactly once, when the
// returned stream is exhausted cleanly; an abandoned or failed stream
// records nothing.
func (c *Client) Stream(ctx context.Context, prompt string) (core.Stream, error) {
	messages := []core.Message{core.NewMessage(core.RoleUser, prompt)}

	raw, err := c.provider.Stream(ctx, c.withContext(ctx, messages), c.cfg.Model)
	if err != nil {
		return nil, err
	}

	return newRecordingStream(raw, func(full string) {
		c.record(ctx, messages, full)
	}), nil
}

// withContext prepends a system message carrying relevant past interactions.
// Retrieval failures degrade to the bare messages; augmentation never blocks
// a completion. The recorded interaction always uses the raw prompt, not the
// augmented one.
func (c *Client) withContext(ctx context.Context, messages []core.Message) []core.Message {
	if c.mem == nil || len(messages) == 0 {
		return messages
	}

	last := messages[len(messages)-1]
	entries, err := c.mem.GetRelevantContext(ctx, last, c.cfg.Memory.MaxContextWindow)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to retrieve memory context")
		return messages
	}
	if len(entries) == 0 {
		return messages
	}

	block := memory.FormatContextForPrompt(entries)
	augmented := make([]core.Message, 0, len(messages)+1)
	augmented = append(augmented, core.NewMessage(core.RoleSystem, contextPreamble+block))
	return append(augmented, messages...)
}

// Summarize delegates to the family's cheaper summary model. Input that
// exceeds that model's context window fails with ErrContextLimit; callers
// should TruncateForSummary and retry.
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	messages := []core.Message{
		core.NewMessage(core.RoleSystem, summarySystemPrompt),
		core.NewMessage(core.RoleUser, "Summarize this:\n"+content),
	}

	model := SummaryModel(c.kind)
	limit := ContextWindow(model)

	total := 0
	for _, m := range messages {
		total += c.countTokens(m.Content)
	}
	if total > limit {
		return "", fmt.Errorf("%w: %d tokens exceed %d for %s", ErrContextLimit, total, limit, model)
	}

	summary, err := c.provider.Chat(ctx, messages, model)
	if err != nil {
		return "", err
	}

	log.FromCtx(ctx).Debug().
		Int("input_tokens", total).
		Str("model", model).
		Msg("summarized content")
	return summary, nil
}

// GenerateName asks the model for a short dash-separated conversation name.
// System messages are stripped from the naming context first.
func (c *Client) GenerateName(ctx context.Context, msgs []core.Message) (string, error) {
	named := make([]core.Message, 0, len(msgs)+2)
	named = append(named, core.NewMessage(core.RoleSystem, namingSystemPrompt))
	for _, m := range msgs {
		if m.Role == core.RoleSystem {
			continue
		}
		named = append(named, m)
	}
	named = append(named, core.NewMessage(core.RoleUser, namingFollowUp))

	name, err := c.provider.Chat(ctx, named, c.cfg.Model)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

func (c *Client) record(ctx context.Context, messages []core.Message, response string) {
	if c.mem == nil || len(messages) == 0 {
		return
	}

	last := messages[len(messages)-1]
	if err := c.mem.AddInteraction(ctx, last, response); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to record interaction")
	}
}
