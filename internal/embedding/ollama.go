package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"rigveda-rag/internal/models"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// EmbeddedVerse pairs a verse with its corpus position and embedding
type EmbeddedVerse struct {
	Position  int
	Verse     models.Verse
	Embedding []float64
}

// OllamaEmbedder generates embeddings using Ollama API
type OllamaEmbedder struct {
	Client        *api.Client
	Model         string
	MaxRetries    int
	RetryDelay    time.Duration
	Timeout       time.Duration
	MaxConcurrent int
}

// NewOllamaEmbedder creates a new Ollama embedder
func NewOllamaEmbedder(host string, model string) (*OllamaEmbedder, error) {
	hostURL := envconfig.Host()
	if host != "" {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ollama host: %w", err)
		}
		hostURL = u
	}
	client := api.NewClient(hostURL, http.DefaultClient)

	return &OllamaEmbedder{
		Client:        client,
		Model:         model,
		MaxRetries:    3,
		RetryDelay:    time.Second,
		Timeout:       time.Second * 30,
		MaxConcurrent: 3, // Limit concurrent requests based on hardware
	}, nil
}

// EmbedText generates an embedding for a text
func (e *OllamaEmbedder) EmbedText(ctx context.Context, text string) ([]float64, error) {
	var embedding []float64
	var err error

	for retries := 0; retries <= e.MaxRetries; retries++ {
		if retries > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(retries) * e.RetryDelay):
			}
		}

		embedding, err = e.createEmbedding(ctx, text)
		if err == nil {
			return embedding, nil
		}
	}

	return nil, fmt.Errorf("failed to create embedding after %d retries: %w", e.MaxRetries, err)
}

// createEmbedding is a helper function to create a single embedding
func (e *OllamaEmbedder) createEmbedding(ctx context.Context, text string) ([]float64, error) {
	req := api.EmbeddingRequest{
		Model:   e.Model,
		Prompt:  text,
		Options: map[string]any{},
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	resp, err := e.Client.Embeddings(ctxWithTimeout, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("model %s returned an empty embedding", e.Model)
	}

	return resp.Embedding, nil
}

// EmbedVerses generates embeddings for verses in parallel with progress
// reporting. Results keep the input order; Position is the input index.
func (e *OllamaEmbedder) EmbedVerses(ctx context.Context, verses []models.Verse,
	progressFunc func(processed, total int)) ([]EmbeddedVerse, error) {

	var wg sync.WaitGroup
	maxConcurrent := e.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	semaphore := make(chan struct{}, maxConcurrent)

	results := make([]EmbeddedVerse, len(verses))

	// Protects the progress counter
	var mu sync.Mutex
	processed := 0
	total := len(verses)

	errChan := make(chan error, total)

	for i := range verses {
		wg.Add(1)
		semaphore <- struct{}{} // Acquire semaphore

		go func(i int) {
			defer func() {
				wg.Done()
				<-semaphore
			}() // Release semaphore

			embedding, err := e.EmbedText(ctx, verses[i].Text)
			if err != nil {
				errChan <- fmt.Errorf("failed to embed mandala %d sukta %d: %w",
					verses[i].Mandala, verses[i].Sukta, err)
				return
			}

			results[i] = EmbeddedVerse{Position: i, Verse: verses[i], Embedding: embedding}

			mu.Lock()
			processed++
			if progressFunc != nil {
				progressFunc(processed, total)
			}
			mu.Unlock()
		}(i)
	}

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return nil, err
	}

	return results, nil
}
