package database

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rigveda-rag/internal/corpus"
	"rigveda-rag/internal/embedding"
	"rigveda-rag/internal/models"
)

var _ corpus.Source = (*DB)(nil)

func TestVectorParam(t *testing.T) {
	assert.Nil(t, vectorParam(nil))
	assert.Equal(t, "[]", vectorParam([]float64{}))
	assert.Equal(t, "[0.5,-1,3.25]", vectorParam([]float64{0.5, -1, 3.25}))
}

// TestRoundTrip runs against a live pgvector database when
// RIGVEDA_TEST_DATABASE_URL is set.
func TestRoundTrip(t *testing.T) {
	connStr := os.Getenv("RIGVEDA_TEST_DATABASE_URL")
	if connStr == "" {
		t.Skip("RIGVEDA_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	db, err := NewDB(ctx, connStr)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Initialize(ctx))

	_, err = db.Pool.Exec(ctx, `TRUNCATE verses`)
	require.NoError(t, err)

	vec := make([]float64, EmbeddingDimensions)
	vec[0] = 1
	stored, err := db.StoreVerses(ctx, []embedding.EmbeddedVerse{
		{Position: 0, Verse: models.Verse{Source: "Rigveda", Mandala: 1, Sukta: 1, Text: "first"}, Embedding: vec},
		{Position: 1, Verse: models.Verse{Source: "Rigveda", Mandala: 1, Sukta: 2, Text: "second"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	verses, err := db.FetchPartition(ctx, 1)
	require.NoError(t, err)
	require.Len(t, verses, 2)
	assert.Equal(t, "first", verses[0].Text)

	similar, err := db.QuerySimilar(ctx, vec, 5)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, 1, similar[0].Sukta)

	counts, err := db.MandalaCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 2}, counts)
}
