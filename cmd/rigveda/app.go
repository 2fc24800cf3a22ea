package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"rigveda-rag/internal/audio"
	"rigveda-rag/internal/corpus"
	"rigveda-rag/internal/database"
	"rigveda-rag/internal/embedding"
	"rigveda-rag/internal/llm"
	"rigveda-rag/internal/retrieval"
	"rigveda-rag/internal/vedaweb"
)

// app wires the collaborators a command needs from cfg. Close releases
// the database pool when one was opened.
type app struct {
	db    *database.DB
	store *corpus.Store
}

func newApp(ctx context.Context) (*app, error) {
	a := &app{}

	if cfg.Database.URL != "" {
		db, err := database.NewDB(ctx, cfg.Database.URL)
		if err != nil {
			if fromDB {
				return nil, err
			}
			logger.Warn("database unavailable, similarity search disabled", zap.Error(err))
		} else {
			a.db = db
		}
	} else if fromDB {
		return nil, fmt.Errorf("--from-db needs database.url or RIGVEDA_DATABASE_URL")
	}

	var source corpus.Source
	switch {
	case fromDB:
		source = a.db
	case cfg.Data.Dir != "":
		source = corpus.NewFileSource(cfg.Data.Dir)
	default:
		source = corpus.NewHTTPSource(cfg.Data.BaseURL, http.DefaultClient)
	}
	a.store = corpus.NewStore(source, logger)

	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func (a *app) llm() (*llm.OllamaLLM, error) {
	client, err := llm.NewOllamaLLM(cfg.LLM.Host, cfg.LLM.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	client.Temperature = cfg.LLM.Temperature
	client.MaxTokens = cfg.LLM.MaxTokens
	client.ContextVerses = cfg.LLM.ContextVerses
	return client, nil
}

// retriever uses vector search only when the index database is reachable.
func (a *app) retriever() (*retrieval.Retriever, error) {
	if a.db == nil {
		return retrieval.New(a.store, nil, nil, logger), nil
	}
	embedder, err := embedding.NewOllamaEmbedder(cfg.LLM.Host, cfg.LLM.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return retrieval.New(a.store, embedder, a.db, logger), nil
}

func (a *app) vedaweb() *vedaweb.Client {
	return vedaweb.NewClient(cfg.VedaWeb.BaseURL, cfg.VedaWeb.RequestsPerSecond, cfg.VedaWeb.Burst, cfg.VedaWeb.Timeout, logger)
}

func (a *app) audio() *audio.Scraper {
	return audio.NewScraper(cfg.Audio.BaseURL, cfg.Audio.Timeout, logger)
}
