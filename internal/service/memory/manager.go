// Package memory owns conversational memory: it embeds completed exchanges,
// persists them through an interaction store, and assembles relevant past
// context for new prompts.
package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sosacrazy126/gptme/internal/config"
	"github.com/sosacrazy126/gptme/internal/core"
	"github.com/sosacrazy126/gptme/internal/storage/jsonfile"
	"github.com/sosacrazy126/gptme/internal/storage/memstore"
	"github.com/sosacrazy126/gptme/internal/storage/sqlite"
	"github.com/sosacrazy126/gptme/pkg/log"
)

type Manager struct {
	cfg       *config.Config
	store     core.InteractionStore
	embedder  core.Embedder
	extractor core.ConceptExtractor

	// lastTS enforces non-decreasing interaction timestamps even if the
	// wall clock steps backwards.
	lastTS time.Time

	now func() time.Time
}

// New builds a manager with the store selected by cfg.Memory.StorageType:
// "json" is file-backed, "sqlite" is database-backed, "in_memory" is
// in-process only. Unknown kinds fall back to in-process with a warning.
// A disabled memory config yields a manager whose operations are all no-ops.
func New(ctx context.Context, cfg *config.Config, embedder core.Embedder) (*Manager, error) {
	if !cfg.Memory.Enabled {
		return &Manager{cfg: cfg, now: time.Now}, nil
	}

	var store core.InteractionStore
	switch cfg.Memory.StorageType {
	case "json":
		store = jsonfile.New(cfg.HistoryFile())
	case "sqlite":
		db, err := sqlite.NewDB(ctx, cfg.DatabasePath())
		if err != nil {
			return nil, fmt.Errorf("open interaction db: %w", err)
		}
		store = sqlite.NewStore(db)
	case "in_memory":
		store = memstore.New()
	default:
		log.FromCtx(ctx).Warn().
			Str("storage_type", cfg.Memory.StorageType).
			Msg("unknown storage type, falling back to in-memory")
		store = memstore.New()
	}

	return NewWithStore(cfg, store, embedder), nil
}

// NewWithStore wires an explicit store, used by tests and by callers that
// manage store lifecycle themselves.
func NewWithStore(cfg *config.Config, store core.InteractionStore, embedder core.Embedder) *Manager {
	return &Manager{
		cfg:       cfg,
		store:     store,
		embedder:  embedder,
		extractor: NewConceptExtractor(),
		now:       time.Now,
	}
}

func (m *Manager) Enabled() bool {
	return m.cfg.Memory.Enabled && m.store != nil
}

func (m *Manager) Close() error {
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}

// AddInteraction embeds the combined prompt+response text, extracts its
// concepts and appends a timestamped record. No-op when memory is disabled.
func (m *Manager) AddInteraction(ctx context.Context, msg core.Message, response string) error {
	if !m.Enabled() {
		return nil
	}

	combined := msg.Content + "\n" + response

	embedding, err := m.embedder.Embed(ctx, combined)
	if err != nil {
		return fmt.Errorf("embed interaction: %w", err)
	}

	ts := m.now()
	if ts.Before(m.lastTS) {
		ts = m.lastTS
	}
	m.lastTS = ts

	it := core.Interaction{
		ID:        uuid.NewString(),
		Prompt:    msg.Content,
		Output:    response,
		Embedding: embedding,
		Concepts:  m.extractor.ExtractConcepts(combined),
		Timestamp: ts,
	}

	if err := m.store.Append(ctx, it); err != nil {
		return fmt.Errorf("store interaction: %w", err)
	}

	log.FromCtx(ctx).Debug().
		Str("id", it.ID).
		Strs("concepts", it.Concepts).
		Msg("stored interaction")
	return nil
}

// GetRelevantContext returns the last maxContext interactions in
// chronological order followed by relevance-ranked older interactions whose
// score clears the similarity threshold. Each interaction expands into a
// user entry and an assistant entry. Empty when memory is disabled.
func (m *Manager) GetRelevantContext(ctx context.Context, msg core.Message, maxContext int) ([]core.ContextEntry, error) {
	if !m.Enabled() {
		return nil, nil
	}

	recent, _, err := m.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	if maxContext < 0 {
		maxContext = 0
	}
	last := recent
	if len(recent) > maxContext {
		last = recent[len(recent)-maxContext:]
	}

	relevant, err := m.retrieveRelevant(ctx, msg.Content, recent, len(last))
	if err != nil {
		return nil, err
	}

	entries := make([]core.ContextEntry, 0, 2*(len(last)+len(relevant)))
	for _, it := range last {
		entries = appendInteraction(entries, it)
	}
	for _, it := range relevant {
		entries = appendInteraction(entries, it)
	}
	return entries, nil
}

func appendInteraction(entries []core.ContextEntry, it core.Interaction) []core.ContextEntry {
	entries = append(entries, core.ContextEntry{Role: core.RoleUser, Content: it.Prompt})
	entries = append(entries, core.ContextEntry{Role: core.RoleAssistant, Content: it.Output})
	return entries
}

// retrieveRelevant ranks everything except the excluded recent tail by
// decay-weighted similarity to the query.
func (m *Manager) retrieveRelevant(ctx context.Context, query string, history []core.Interaction, excludeLastN int) ([]core.Interaction, error) {
	candidates := history
	if excludeLastN > 0 && len(history) >= excludeLastN {
		candidates = history[:len(history)-excludeLastN]
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	queryVec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	ranked := rankBySimilarity(candidates, queryVec, m.now(), m.cfg.Memory.DecayRate, m.cfg.Memory.SimilarityThreshold)

	log.FromCtx(ctx).Debug().
		Int("candidates", len(candidates)).
		Int("retrieved", len(ranked)).
		Msg("relevance retrieval")
	return ranked, nil
}

// FormatContextForPrompt renders entries as "<Role>: <content>" lines,
// preserving order. Pure function.
func FormatContextForPrompt(entries []core.ContextEntry) string {
	if len(entries) == 0 {
		return ""
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, capitalize(e.Role)+": "+e.Content)
	}
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
