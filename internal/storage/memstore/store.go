// Package memstore keeps interaction records in process memory only, the
// transient storage kind. Nothing survives the session.
package memstore

import (
	"context"

	"github.com/sosacrazy126/gptme/internal/core"
)

type Store struct {
	interactions []core.Interaction
}

func New() *Store {
	return &Store{}
}

func (s *Store) Load(ctx context.Context) (recent, archived []core.Interaction, err error) {
	return s.interactions, nil, nil
}

func (s *Store) Append(ctx context.Context, it core.Interaction) error {
	s.interactions = append(s.interactions, it)
	return nil
}

func (s *Store) Close() error {
	return nil
}
