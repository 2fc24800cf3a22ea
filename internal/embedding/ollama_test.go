package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rigveda-rag/internal/models"
)

// fakeEmbedServer embeds a prompt as [len(prompt), 1]; prompts containing
// "fail" get a 500.
func fakeEmbedServer(t *testing.T, calls *atomic.Int32) *OllamaEmbedder {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req api.EmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if strings.Contains(req.Prompt, "fail") {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "model crashed"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(api.EmbeddingResponse{
			Embedding: []float64{float64(len(req.Prompt)), 1},
		})
	}))
	t.Cleanup(server.Close)

	e, err := NewOllamaEmbedder(server.URL, "nomic-embed-text")
	require.NoError(t, err)
	e.RetryDelay = time.Millisecond
	return e
}

func TestEmbedText(t *testing.T) {
	var calls atomic.Int32
	e := fakeEmbedServer(t, &calls)

	got, err := e.EmbedText(context.Background(), "agni")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 1}, got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbedTextRetries(t *testing.T) {
	var calls atomic.Int32
	e := fakeEmbedServer(t, &calls)
	e.MaxRetries = 2

	_, err := e.EmbedText(context.Background(), "fail")
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEmbedVerses(t *testing.T) {
	var calls atomic.Int32
	e := fakeEmbedServer(t, &calls)

	verses := []models.Verse{
		{Mandala: 1, Sukta: 1, Text: "a"},
		{Mandala: 1, Sukta: 2, Text: "bb"},
		{Mandala: 2, Sukta: 1, Text: "ccc"},
	}

	var lastProcessed, lastTotal int
	results, err := e.EmbedVerses(context.Background(), verses, func(processed, total int) {
		lastProcessed, lastTotal = processed, total
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, i, r.Position)
		assert.Equal(t, verses[i], r.Verse)
		assert.Equal(t, float64(len(verses[i].Text)), r.Embedding[0])
	}
	assert.Equal(t, 3, lastProcessed)
	assert.Equal(t, 3, lastTotal)
}

func TestEmbedVersesFailure(t *testing.T) {
	var calls atomic.Int32
	e := fakeEmbedServer(t, &calls)
	e.MaxRetries = 0

	_, err := e.EmbedVerses(context.Background(), []models.Verse{
		{Mandala: 1, Sukta: 1, Text: "ok"},
		{Mandala: 4, Sukta: 7, Text: "fail"},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mandala 4 sukta 7")
}
