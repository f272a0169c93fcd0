// Package sqlite is the database-backed interaction store, for histories
// that outgrow a single JSON file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sosacrazy126/gptme/internal/core"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Load(ctx context.Context) (recent, archived []core.Interaction, err error) {
	query := `SELECT id, prompt, output, embedding, concepts, created_at FROM interactions ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	var interactions []core.Interaction
	for rows.Next() {
		var it core.Interaction
		var blob []byte
		var concepts string

		if err := rows.Scan(&it.ID, &it.Prompt, &it.Output, &blob, &concepts, &it.Timestamp); err != nil {
			return nil, nil, fmt.Errorf("failed to scan interaction: %w", err)
		}

		it.Embedding = deserializeVector(blob)
		if concepts != "" {
			it.Concepts = strings.Split(concepts, "\x1f")
		}
		interactions = append(interactions, it)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return interactions, nil, nil
}

func (s *Store) Append(ctx context.Context, it core.Interaction) error {
	blob, err := serializeVector(it.Embedding)
	if err != nil {
		return err
	}

	query := `INSERT INTO interactions (id, prompt, output, embedding, concepts, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		it.ID, it.Prompt, it.Output, blob, strings.Join(it.Concepts, "\x1f"), it.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
