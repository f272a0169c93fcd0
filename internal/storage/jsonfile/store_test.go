package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosacrazy126/gptme/internal/core"
)

func testInteraction(id string) core.Interaction {
	return core.Interaction{
		ID:        id,
		Prompt:    "what is a channel",
		Output:    "a typed conduit",
		Embedding: []float32{0.1, 0.2},
		Concepts:  []string{"channel"},
		Timestamp: time.Unix(1700000000, 0).UTC(),
	}
}

func TestLoadAbsentFileStartsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "interaction_history.json"))

	recent, archived, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recent)
	assert.Empty(t, archived)
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "interaction_history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := New(path)

	recent, archived, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, recent)
	assert.Empty(t, archived)

	// the session keeps working: appends land on the fresh empty history
	require.NoError(t, s.Append(ctx, testInteraction("a")))

	recent, _, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "a", recent[0].ID)
}

func TestAppendPersistsAcrossStores(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "interaction_history.json")

	s := New(path)
	require.NoError(t, s.Append(ctx, testInteraction("a")))
	require.NoError(t, s.Append(ctx, testInteraction("b")))
	require.NoError(t, s.Close())

	reopened := New(path)
	recent, _, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "a", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)
	assert.Equal(t, []float32{0.1, 0.2}, recent[0].Embedding)
}

func TestFlushLeavesNoTempFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "interaction_history.json")

	s := New(path)
	require.NoError(t, s.Append(ctx, testInteraction("a")))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	// the file on disk is a well-formed document
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc document
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Interactions, 1)
}
