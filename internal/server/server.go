// Package server exposes the verse corpus, chat, quiz, translation and
// audio lookups as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rigveda-rag/internal/logging"
	"rigveda-rag/internal/models"
	"rigveda-rag/internal/vedaweb"
)

// CorpusLoader provides the shared verse corpus.
type CorpusLoader interface {
	LoadCorpus(ctx context.Context) (models.Corpus, error)
}

// Retriever picks context verses for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, limit int) ([]models.Verse, error)
}

// Chatter answers a conversation grounded on verses.
type Chatter interface {
	Chat(ctx context.Context, history []models.ChatMessage, verses []models.Verse) (*models.Response, error)
}

// QuizGenerator writes multiple-choice questions about verses.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, verses []models.Verse, count int, difficulty string) ([]models.QuizQuestion, error)
}

// DocumentFetcher looks up a stanza with its translations.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, id string) (*vedaweb.Document, error)
}

// AudioLister lists the recitations of a mandala.
type AudioLister interface {
	ListMandala(ctx context.Context, mandala int) ([]models.AudioFile, error)
}

// Deps are the collaborators behind the routes. A nil collaborator makes
// its route answer 503.
type Deps struct {
	Corpus    CorpusLoader
	Retriever Retriever
	Chat      Chatter
	Quiz      QuizGenerator
	Documents DocumentFetcher
	Audio     AudioLister
}

// Server serves the API.
type Server struct {
	deps   Deps
	logger *zap.Logger
	mux    *http.ServeMux
}

// New creates a server and registers its routes.
func New(deps Deps, logger *zap.Logger) *Server {
	s := &Server{
		deps:   deps,
		logger: logging.OrNop(logger),
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("POST /api/quiz", s.handleQuiz)
	s.mux.HandleFunc("GET /api/vedaweb", s.handleVedaWeb)
	s.mux.HandleFunc("GET /api/scrape-audio", s.handleScrapeAudio)
	s.mux.HandleFunc("GET /api/verses", s.handleVerses)
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.requestLogger(s.mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
