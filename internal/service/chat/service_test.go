package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosacrazy126/gptme/internal/config"
	"github.com/sosacrazy126/gptme/internal/core"
)

type fakeDispatcher struct {
	responses map[string]string
	err       error

	prompts []string
}

func (f *fakeDispatcher) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if r, ok := f.responses[prompt]; ok {
		return r, nil
	}
	return "echo: " + prompt, nil
}

func (f *fakeDispatcher) Stream(_ context.Context, prompt string) (core.Stream, error) {
	return nil, errors.New("not streamed in tests")
}

type fakeMemory struct {
	closed bool
}

func (f *fakeMemory) AddInteraction(context.Context, core.Message, string) error { return nil }

func (f *fakeMemory) GetRelevantContext(context.Context, core.Message, int) ([]core.ContextEntry, error) {
	return nil, nil
}

func (f *fakeMemory) Close() error {
	f.closed = true
	return nil
}

func newTestService(d dispatcher, m memoryManager) *Service {
	return &Service{
		cfg: config.Default(),
		llm: d,
		mem: m,
		build: func(context.Context) (dispatcher, memoryManager, error) {
			return d, m, nil
		},
	}
}

func TestRespondReturnsText(t *testing.T) {
	d := &fakeDispatcher{responses: map[string]string{"hi": "hello"}}
	s := newTestService(d, &fakeMemory{})

	res := s.Respond(context.Background(), core.NewMessage(core.RoleUser, "hi"))
	assert.False(t, res.Failed)
	assert.Equal(t, "hello", res.Text)
}

func TestRespondConvertsErrorToResult(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("connection reset")}
	s := newTestService(d, &fakeMemory{})

	res := s.Respond(context.Background(), core.NewMessage(core.RoleUser, "hi"))
	assert.True(t, res.Failed)
	assert.Empty(t, res.Text)
	assert.Equal(t, "Error processing message: connection reset", res.ErrText)
}

func TestReplayProcessesInOrder(t *testing.T) {
	d := &fakeDispatcher{}
	s := newTestService(d, &fakeMemory{})

	msgs := []core.Message{
		core.NewMessage(core.RoleUser, "first"),
		core.NewMessage(core.RoleUser, "second"),
		core.NewMessage(core.RoleUser, "third"),
	}

	results := s.Replay(context.Background(), msgs)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"first", "second", "third"}, d.prompts)
	assert.Equal(t, "echo: second", results[1].Text)
}

func TestReplayContinuesPastFailures(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("boom")}
	s := newTestService(d, &fakeMemory{})

	msgs := []core.Message{
		core.NewMessage(core.RoleUser, "a"),
		core.NewMessage(core.RoleUser, "b"),
	}

	results := s.Replay(context.Background(), msgs)
	require.Len(t, results, 2)
	assert.True(t, results[0].Failed)
	assert.True(t, results[1].Failed)
	assert.Equal(t, []string{"a", "b"}, d.prompts)
}

func TestClearMemorySwapsManager(t *testing.T) {
	old := &fakeMemory{}
	fresh := &fakeMemory{}
	d := &fakeDispatcher{}

	s := newTestService(d, old)
	s.build = func(context.Context) (dispatcher, memoryManager, error) {
		return d, fresh, nil
	}

	require.NoError(t, s.ClearMemory(context.Background()))
	assert.True(t, old.closed)
	assert.False(t, fresh.closed)
	assert.Same(t, fresh, s.mem.(*fakeMemory))
}

func TestClearMemoryKeepsOldOnBuildFailure(t *testing.T) {
	old := &fakeMemory{}
	d := &fakeDispatcher{}

	s := newTestService(d, old)
	s.build = func(context.Context) (dispatcher, memoryManager, error) {
		return nil, nil, errors.New("db locked")
	}

	assert.Error(t, s.ClearMemory(context.Background()))
	assert.False(t, old.closed)
	assert.Same(t, old, s.mem.(*fakeMemory))
}
