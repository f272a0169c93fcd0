// Package jsonfile persists interaction records as a single JSON document,
// the durable storage kind for conversational memory.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sosacrazy126/gptme/internal/core"
	"github.com/sosacrazy126/gptme/pkg/log"
)

type document struct {
	Interactions []core.Interaction `json:"interactions"`
	Archived     []core.Interaction `json:"archived,omitempty"`
}

// Store reads and writes the interaction history file. Writes go through a
// temp file and rename so a crash never leaves a half-written history.
type Store struct {
	mu   sync.Mutex
	path string

	loaded bool
	doc    document
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load(ctx context.Context) (recent, archived []core.Interaction, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	return s.doc.Interactions, s.doc.Archived, nil
}

func (s *Store) Append(ctx context.Context, it core.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	s.doc.Interactions = append(s.doc.Interactions, it)
	return s.flush()
}

func (s *Store) Close() error {
	return nil
}

// ensureLoaded reads the history file once. An absent or corrupt file yields
// an empty history rather than failing the session.
func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.FromCtx(ctx).Warn().Err(err).Str("path", s.path).Msg("unreadable history file, starting empty")
		}
		s.doc = document{}
		s.loaded = true
		return nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("path", s.path).Msg("corrupt history file, starting empty")
		s.doc = document{}
		s.loaded = true
		return nil
	}

	s.doc = doc
	s.loaded = true
	return nil
}

func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
