// Package chat orchestrates conversations: it routes messages to the model
// dispatcher and converts failures into textual results at a single boundary.
package chat

import (
	"context"
	"fmt"

	"github.com/sosacrazy126/gptme/internal/config"
	"github.com/sosacrazy126/gptme/internal/core"
	"github.com/sosacrazy126/gptme/internal/providers/llm"
	"github.com/sosacrazy126/gptme/internal/service/memory"
	"github.com/sosacrazy126/gptme/pkg/log"
)

// dispatcher is the completion surface the orchestrator drives. Memory
// augmentation and write-back happen behind it.
type dispatcher interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, prompt string) (core.Stream, error)
}

type memoryManager interface {
	AddInteraction(ctx context.Context, msg core.Message, response string) error
	GetRelevantContext(ctx context.Context, msg core.Message, maxContext int) ([]core.ContextEntry, error)
	Close() error
}

// Result is the outcome of processing one message. Failed results carry the
// error as text so callers can print it without branching on error values.
type Result struct {
	Text    string
	Failed  bool
	ErrText string
}

type Service struct {
	cfg *config.Config
	llm dispatcher
	mem memoryManager

	build func(ctx context.Context) (dispatcher, memoryManager, error)
}

// New wires a memory manager and a model dispatcher from cfg. The embedder
// backs relevance retrieval; it is unused when memory is disabled.
func New(ctx context.Context, cfg *config.Config, embedder core.Embedder) (*Service, error) {
	s := &Service{
		cfg: cfg,
		build: func(ctx context.Context) (dispatcher, memoryManager, error) {
			mem, err := memory.New(ctx, cfg, embedder)
			if err != nil {
				return nil, nil, err
			}
			client, err := llm.New(cfg, mem)
			if err != nil {
				mem.Close()
				return nil, nil, err
			}
			return client, mem, nil
		},
	}

	var err error
	if s.llm, s.mem, err = s.build(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Respond processes one message. Errors from the dispatcher are converted
// into a failed Result here; nothing below this boundary swallows them.
func (s *Service) Respond(ctx context.Context, msg core.Message) Result {
	response, err := s.llm.Complete(ctx, msg.Content)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to process message")
		return Result{
			Failed:  true,
			ErrText: fmt.Sprintf("Error processing message: %v", err),
		}
	}
	return Result{Text: response}
}

// RespondStream starts a streaming response for one message. Unlike Respond,
// errors surface to the caller, which owns chunk-by-chunk rendering.
func (s *Service) RespondStream(ctx context.Context, msg core.Message) (core.Stream, error) {
	return s.llm.Stream(ctx, msg.Content)
}

// Replay processes pre-built messages in order, the one-shot path. Each
// result lines up with its message; a failed message does not stop the rest.
func (s *Service) Replay(ctx context.Context, msgs []core.Message) []Result {
	results := make([]Result, 0, len(msgs))
	for _, msg := range msgs {
		results = append(results, s.Respond(ctx, msg))
	}
	return results
}

// ClearMemory swaps in a fresh memory manager and dispatcher, dropping the
// accumulated conversation history from this session's view.
func (s *Service) ClearMemory(ctx context.Context) error {
	client, mem, err := s.build(ctx)
	if err != nil {
		return fmt.Errorf("rebuild memory: %w", err)
	}

	if s.mem != nil {
		if cerr := s.mem.Close(); cerr != nil {
			log.FromCtx(ctx).Warn().Err(cerr).Msg("failed to close previous memory store")
		}
	}

	s.llm, s.mem = client, mem
	return nil
}

func (s *Service) Close() error {
	if s.mem == nil {
		return nil
	}
	return s.mem.Close()
}
