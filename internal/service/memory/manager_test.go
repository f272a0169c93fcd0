package memory

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosacrazy126/gptme/internal/config"
	"github.com/sosacrazy126/gptme/internal/core"
)

// fakeEmbedder maps text onto a fixed vocabulary so similarity in tests is
// exact and collision-free.
type fakeEmbedder struct{}

var vocab = map[string]int{
	"python": 0, "syntax": 1, "basics": 2, "indentation": 3,
	"weather": 4, "forecast": 5, "rain": 6, "sunny": 7,
	"goroutine": 8, "channel": 9, "concurrency": 10, "scheduler": 11,
	"language": 12, "code": 13,
}

func (fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, len(vocab))
	for _, w := range splitWords(text) {
		if idx, ok := vocab[w]; ok {
			vec[idx]++
		}
	}
	return vec, nil
}

func testConfig(t *testing.T, opts ...config.Option) *config.Config {
	t.Helper()
	base := []config.Option{config.WithDataDir(t.TempDir())}
	return config.Load(context.Background(), append(base, opts...)...)
}

func newTestManager(t *testing.T, cfg *config.Config) *Manager {
	t.Helper()
	m, err := New(context.Background(), cfg, fakeEmbedder{})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestDisabledMemoryIsNoOp(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.WithMemoryEnabled(false))
	m := newTestManager(t, cfg)

	require.NoError(t, m.AddInteraction(ctx, core.NewMessage(core.RoleUser, "python basics"), "sure"))

	entries, err := m.GetRelevantContext(ctx, core.NewMessage(core.RoleUser, "python"), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// nothing durable was written
	_, err = os.Stat(cfg.HistoryFile())
	assert.True(t, os.IsNotExist(err))
}

func TestAddInteractionStoresRecord(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	m := newTestManager(t, cfg)

	msg := core.NewMessage(core.RoleUser, "What is a goroutine?")
	require.NoError(t, m.AddInteraction(ctx, msg, "A goroutine is a lightweight thread."))

	recent, _, err := m.store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	it := recent[0]
	assert.Equal(t, msg.Content, it.Prompt)
	assert.Equal(t, "A goroutine is a lightweight thread.", it.Output)
	assert.NotEmpty(t, it.ID)
	assert.NotEmpty(t, it.Embedding)
	assert.Contains(t, it.Concepts, "goroutine")
	assert.False(t, it.Timestamp.IsZero())
}

func TestTimestampsNeverDecrease(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	m := newTestManager(t, cfg)

	// simulate a wall clock stepping backwards between interactions
	times := []time.Time{
		time.Unix(1000, 0),
		time.Unix(900, 0),
		time.Unix(1100, 0),
	}
	i := 0
	m.now = func() time.Time { t := times[i]; i++; return t }

	for range times {
		require.NoError(t, m.AddInteraction(ctx, core.NewMessage(core.RoleUser, "p"), "o"))
	}

	recent, _, err := m.store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	for j := 1; j < len(recent); j++ {
		assert.False(t, recent[j].Timestamp.Before(recent[j-1].Timestamp),
			"timestamp %d decreased", j)
	}
}

func TestContextWindowLimit(t *testing.T) {
	ctx := context.Background()
	// a threshold no score can reach keeps the relevance pass empty
	cfg := testConfig(t,
		config.WithMemoryMaxContextWindow(3),
		config.WithMemorySimilarityThreshold(1000),
	)
	m := newTestManager(t, cfg)

	for i := 0; i < 8; i++ {
		require.NoError(t, m.AddInteraction(ctx,
			core.NewMessage(core.RoleUser, "weather forecast"), "sunny"))
	}

	entries, err := m.GetRelevantContext(ctx, core.NewMessage(core.RoleUser, "weather"), 3)
	require.NoError(t, err)

	// 3 interactions, each a user+assistant pair
	assert.Len(t, entries, 6)
	assert.Equal(t, core.RoleUser, entries[0].Role)
	assert.Equal(t, core.RoleAssistant, entries[1].Role)
}

func TestNegativeContextWindowTreatedAsZero(t *testing.T) {
	ctx := context.Background()
	// a config file may carry max_context_window = -1
	cfg := testConfig(t, config.WithMemorySimilarityThreshold(10))
	m := newTestManager(t, cfg)

	msg := core.NewMessage(core.RoleUser, "weather")

	entries, err := m.GetRelevantContext(ctx, msg, -1)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, m.AddInteraction(ctx,
		core.NewMessage(core.RoleUser, "weather forecast"), "sunny"))

	// no chronological tail, so the stored interaction comes back through
	// the relevance pass
	entries, err = m.GetRelevantContext(ctx, msg, -1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "weather forecast", entries[0].Content)
}

func TestInMemoryStorageIsTransient(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.WithMemoryStorageType("in_memory"))

	m := newTestManager(t, cfg)
	require.NoError(t, m.AddInteraction(ctx,
		core.NewMessage(core.RoleUser, "python basics"), "sure"))

	entries, err := m.GetRelevantContext(ctx, core.NewMessage(core.RoleUser, "python"), 5)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// nothing durable was written
	_, err = os.Stat(cfg.HistoryFile())
	assert.True(t, os.IsNotExist(err))

	// a second manager over the same config starts empty
	fresh := newTestManager(t, cfg)
	entries, err = fresh.GetRelevantContext(ctx, core.NewMessage(core.RoleUser, "python"), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecayOrdersNewerFirst(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t,
		config.WithMemoryMaxContextWindow(0),
		config.WithMemorySimilarityThreshold(10),
		config.WithMemoryDecayRate(0.0001),
	)
	m := newTestManager(t, cfg)

	old := time.Now().Add(-2 * time.Hour)
	recent := time.Now().Add(-time.Minute)

	ts := []time.Time{old, recent}
	i := 0
	m.now = func() time.Time {
		if i < len(ts) {
			t := ts[i]
			i++
			return t
		}
		return time.Now()
	}

	require.NoError(t, m.AddInteraction(ctx,
		core.NewMessage(core.RoleUser, "goroutine channel"), "old answer"))
	require.NoError(t, m.AddInteraction(ctx,
		core.NewMessage(core.RoleUser, "goroutine channel"), "new answer"))

	entries, err := m.GetRelevantContext(ctx, core.NewMessage(core.RoleUser, "goroutine channel"), 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// equal similarity, so decay puts the newer interaction first
	assert.Equal(t, "new answer", entries[1].Content)
	assert.Equal(t, "old answer", entries[3].Content)
}

func TestSimilarityThresholdExcludesUnrelated(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t,
		config.WithMemoryMaxContextWindow(0),
		config.WithMemorySimilarityThreshold(30),
	)
	m := newTestManager(t, cfg)

	require.NoError(t, m.AddInteraction(ctx,
		core.NewMessage(core.RoleUser, "weather forecast rain"), "it is sunny"))
	require.NoError(t, m.AddInteraction(ctx,
		core.NewMessage(core.RoleUser, "python syntax basics"), "python uses indentation"))

	entries, err := m.GetRelevantContext(ctx, core.NewMessage(core.RoleUser, "python syntax code"), 0)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		assert.NotContains(t, e.Content, "weather")
		assert.NotContains(t, e.Content, "sunny")
	}
}

func TestPersistenceAcrossManagers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg1 := config.Load(ctx, config.WithDataDir(dir))
	m1 := newTestManager(t, cfg1)
	require.NoError(t, m1.AddInteraction(ctx,
		core.NewMessage(core.RoleUser, "python basics"), "python is a language"))
	require.NoError(t, m1.Close())

	cfg2 := config.Load(ctx, config.WithDataDir(dir))
	m2 := newTestManager(t, cfg2)

	recent, _, err := m2.store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "python basics", recent[0].Prompt)
}

func TestFormatContextForPrompt(t *testing.T) {
	tests := []struct {
		name    string
		entries []core.ContextEntry
		want    string
	}{
		{
			name:    "empty",
			entries: nil,
			want:    "",
		},
		{
			name:    "single user entry",
			entries: []core.ContextEntry{{Role: core.RoleUser, Content: "X"}},
			want:    "User: X",
		},
		{
			name: "order preserved",
			entries: []core.ContextEntry{
				{Role: core.RoleUser, Content: "What is Python?"},
				{Role: core.RoleAssistant, Content: "A programming language."},
			},
			want: "User: What is Python?\nAssistant: A programming language.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatContextForPrompt(tt.entries))
		})
	}
}
