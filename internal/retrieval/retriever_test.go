package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rigveda-rag/internal/models"
)

type staticCorpus models.Corpus

func (s staticCorpus) LoadCorpus(context.Context) (models.Corpus, error) {
	return models.Corpus(s), nil
}

type failingCorpus struct{}

func (failingCorpus) LoadCorpus(context.Context) (models.Corpus, error) {
	return nil, errors.New("offline")
}

type fakeEmbedder struct{ err error }

func (f fakeEmbedder) EmbedText(context.Context, string) ([]float64, error) {
	return []float64{1, 0}, f.err
}

type fakeIndex struct {
	verses []models.Verse
	calls  int
}

func (f *fakeIndex) QuerySimilar(_ context.Context, _ []float64, limit int) ([]models.Verse, error) {
	f.calls++
	return head(f.verses, limit), nil
}

func testCorpus() models.Corpus {
	return models.Corpus{
		{Source: "Rigveda", Mandala: 1, Sukta: 1, Text: "I Laud Agni, the chosen Priest"},
		{Source: "Rigveda", Mandala: 1, Sukta: 2, Text: "Beautiful Vayu, come, Soma drops prepared"},
		{Source: "Rigveda", Mandala: 9, Sukta: 1, Text: "In sweetest and most gladdening stream flow pure, O Soma"},
		{Source: "Rigveda", Mandala: 10, Sukta: 129, Text: "Then was not non-existent nor existent"},
	}
}

func TestRetrieveByReference(t *testing.T) {
	c := testCorpus()
	r := New(staticCorpus(c), nil, nil, nil)

	got, err := r.Retrieve(context.Background(), "Explain Mandala 10, Sukta 129 please", 5)
	require.NoError(t, err)
	assert.Equal(t, []models.Verse{c[3]}, got)

	got, err = r.Retrieve(context.Background(), "what does 1.2 say?", 5)
	require.NoError(t, err)
	assert.Equal(t, []models.Verse{c[1]}, got)
}

func TestRetrieveBySimilarity(t *testing.T) {
	c := testCorpus()
	index := &fakeIndex{verses: []models.Verse{c[2], c[0]}}
	r := New(staticCorpus(c), fakeEmbedder{}, index, nil)

	got, err := r.Retrieve(context.Background(), "Who is the purifying drink?", 1)
	require.NoError(t, err)
	assert.Equal(t, []models.Verse{c[2]}, got)
	assert.Equal(t, 1, index.calls)
}

func TestRetrieveFallsBackToWordMatch(t *testing.T) {
	c := testCorpus()
	index := &fakeIndex{verses: []models.Verse{c[0]}}
	r := New(staticCorpus(c), fakeEmbedder{err: errors.New("ollama down")}, index, nil)

	got, err := r.Retrieve(context.Background(), "Which hymns praise Soma drops?", 5)
	require.NoError(t, err)
	assert.Equal(t, []models.Verse{c[1], c[2]}, got)
	assert.Equal(t, 0, index.calls)
}

func TestRetrieveSamplesWhenNothingMatches(t *testing.T) {
	c := testCorpus()
	r := New(staticCorpus(c), nil, nil, nil)

	got, err := r.Retrieve(context.Background(), "xyzzy", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, v := range got {
		assert.Contains(t, c, v)
	}
}

func TestRetrieveCorpusFailure(t *testing.T) {
	r := New(failingCorpus{}, nil, nil, nil)
	_, err := r.Retrieve(context.Background(), "Agni", 5)
	assert.Error(t, err)
}
