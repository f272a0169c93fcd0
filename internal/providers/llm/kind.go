package llm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoModel means the configuration names no model at all.
	ErrNoModel = errors.New("no model configured")
	// ErrUnknownModel means the model name matches no known provider family.
	ErrUnknownModel = errors.New("unknown model type")
	// ErrContextLimit means summarization input exceeds the summary model's
	// context window. Callers should truncate and retry.
	ErrContextLimit = errors.New("content exceeds model context limit")
)

// Kind identifies a provider family. It is resolved once at startup from the
// configured model name and carried as typed state from then on.
type Kind int

const (
	KindOpenAI Kind = iota
	KindAnthropic
)

func (k Kind) String() string {
	switch k {
	case KindOpenAI:
		return "openai"
	case KindAnthropic:
		return "anthropic"
	default:
		return "unknown"
	}
}

var openAIPrefixes = []string{"gpt-", "chatgpt-", "o1", "o3", "o4"}

// KindForModel maps a model name onto its provider family.
func KindForModel(model string) (Kind, error) {
	if model == "" {
		return 0, ErrNoModel
	}

	for _, prefix := range openAIPrefixes {
		if strings.HasPrefix(model, prefix) {
			return KindOpenAI, nil
		}
	}
	if strings.HasPrefix(model, "claude-") {
		return KindAnthropic, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrUnknownModel, model)
}
