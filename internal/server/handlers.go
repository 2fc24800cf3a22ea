package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"rigveda-rag/internal/audio"
	"rigveda-rag/internal/models"
	"rigveda-rag/internal/query"
	"rigveda-rag/internal/vedaweb"
)

// maxBodyBytes bounds chat and quiz request bodies.
const maxBodyBytes = 1 << 20

// chatContextVerses is how many verses are retrieved when a chat request
// carries none.
const chatContextVerses = 5

type chatRequest struct {
	Messages []models.ChatMessage `json:"messages"`
	Verses   []models.Verse       `json:"verses"`
}

type chatResponse struct {
	Message string         `json:"message"`
	Sources []models.Verse `json:"sources,omitempty"`
}

type quizRequest struct {
	Verses     []models.Verse `json:"verses"`
	Count      int            `json:"count"`
	Difficulty string         `json:"difficulty"`
}

type quizResponse struct {
	Questions []models.QuizQuestion `json:"questions"`
}

type audioResponse struct {
	AudioFiles []models.AudioFile `json:"audioFiles"`
	Mandala    int                `json:"mandala"`
}

type versesResponse struct {
	Verses []models.Verse `json:"verses"`
	Count  int            `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	loaded := false
	if l, ok := s.deps.Corpus.(interface{ Loaded() bool }); ok {
		loaded = l.Loaded()
	}
	respond(w, http.StatusOK, map[string]any{"status": "ok", "corpusLoaded": loaded})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.deps.Chat == nil {
		respondError(w, http.StatusServiceUnavailable, "Chat is not configured")
		return
	}

	var req chatRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "Messages are required")
		return
	}

	verses := req.Verses
	if len(verses) == 0 && s.deps.Retriever != nil {
		question := lastUserMessage(req.Messages)
		retrieved, err := s.deps.Retriever.Retrieve(r.Context(), question, chatContextVerses)
		if err != nil {
			s.logger.Warn("context retrieval failed", zap.Error(err))
		} else {
			verses = retrieved
		}
	}

	resp, err := s.deps.Chat.Chat(r.Context(), req.Messages, verses)
	if err != nil {
		s.logger.Error("chat failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, errorMessage(err, "Failed to process chat"))
		return
	}

	respond(w, http.StatusOK, chatResponse{Message: resp.Answer, Sources: resp.Sources})
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Quiz == nil {
		respondError(w, http.StatusServiceUnavailable, "Quiz is not configured")
		return
	}

	var req quizRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	verses := req.Verses
	if len(verses) == 0 && s.deps.Corpus != nil {
		c, err := s.deps.Corpus.LoadCorpus(r.Context())
		if err != nil {
			s.logger.Error("corpus load failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Failed to load verses")
			return
		}
		verses = query.Sample(c, max(req.Count, chatContextVerses))
	}

	questions, err := s.deps.Quiz.GenerateQuiz(r.Context(), verses, req.Count, req.Difficulty)
	if err != nil {
		s.logger.Error("quiz generation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, errorMessage(err, "Failed to generate quiz"))
		return
	}

	respond(w, http.StatusOK, quizResponse{Questions: questions})
}

func (s *Server) handleVedaWeb(w http.ResponseWriter, r *http.Request) {
	if s.deps.Documents == nil {
		respondError(w, http.StatusServiceUnavailable, "Translations are not configured")
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "Location ID is required")
		return
	}

	doc, err := s.deps.Documents.FetchDocument(r.Context(), id)
	switch {
	case errors.Is(err, vedaweb.ErrInvalidLocation):
		respondError(w, http.StatusBadRequest, "Invalid location ID")
		return
	case errors.Is(err, vedaweb.ErrNotFound):
		respondError(w, http.StatusNotFound, "Document not found")
		return
	case err != nil:
		s.logger.Error("vedaweb fetch failed", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, errorMessage(err, "Failed to fetch document"))
		return
	}

	respond(w, http.StatusOK, doc)
}

func (s *Server) handleScrapeAudio(w http.ResponseWriter, r *http.Request) {
	if s.deps.Audio == nil {
		respondError(w, http.StatusServiceUnavailable, "Audio is not configured")
		return
	}

	param := r.URL.Query().Get("mandala")
	if param == "" {
		respondError(w, http.StatusBadRequest, "Mandala parameter required")
		return
	}
	mandala, err := strconv.Atoi(param)
	if err != nil || mandala < 1 || mandala > 10 {
		respondError(w, http.StatusBadRequest, "Invalid mandala number")
		return
	}

	files, err := s.deps.Audio.ListMandala(r.Context(), mandala)
	if errors.Is(err, audio.ErrInvalidMandala) {
		respondError(w, http.StatusBadRequest, "Invalid mandala number")
		return
	}
	if err != nil {
		s.logger.Error("audio scrape failed", zap.Int("mandala", mandala), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to scrape mandala "+param)
		return
	}

	if files == nil {
		files = []models.AudioFile{}
	}
	respond(w, http.StatusOK, audioResponse{AudioFiles: files, Mandala: mandala})
}

// handleVerses narrows the corpus by mandala, then sukta, then search
// text, and finally samples random verses when asked to.
func (s *Server) handleVerses(w http.ResponseWriter, r *http.Request) {
	if s.deps.Corpus == nil {
		respondError(w, http.StatusServiceUnavailable, "Corpus is not configured")
		return
	}

	params := r.URL.Query()
	mandala, err := optionalInt(params.Get("mandala"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid mandala number")
		return
	}
	sukta, err := optionalInt(params.Get("sukta"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid sukta number")
		return
	}
	if sukta > 0 && mandala == 0 {
		respondError(w, http.StatusBadRequest, "Sukta requires a mandala")
		return
	}
	random, err := optionalInt(params.Get("random"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid random count")
		return
	}

	c, err := s.deps.Corpus.LoadCorpus(r.Context())
	if err != nil {
		s.logger.Error("corpus load failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to load verses")
		return
	}

	verses := []models.Verse(c)
	switch {
	case sukta > 0:
		verses = query.BySukta(verses, mandala, sukta)
	case mandala > 0:
		verses = query.ByMandala(verses, mandala)
	}
	if q := params.Get("q"); strings.TrimSpace(q) != "" {
		verses = query.Search(verses, q)
	}
	if random > 0 {
		verses = query.Sample(verses, random)
	}

	respond(w, http.StatusOK, versesResponse{Verses: verses, Count: len(verses)})
}

func lastUserMessage(messages []models.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return messages[len(messages)-1].Content
}

// optionalInt parses a non-negative query parameter; empty is zero.
func optionalInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative value")
	}
	return n, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func errorMessage(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, errorResponse{Error: message})
}
