package core

import "context"

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type ConceptExtractor interface {
	ExtractConcepts(text string) []string
}

// InteractionStore persists interaction records. Load splits the history into
// the recent working set and the archived remainder; stores that keep no
// archive return it empty.
type InteractionStore interface {
	Load(ctx context.Context) (recent, archived []Interaction, err error)
	Append(ctx context.Context, it Interaction) error
	Close() error
}
