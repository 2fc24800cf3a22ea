package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rigveda-rag/internal/models"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// ErrEmptyCompletion is returned when the model produces no text.
var ErrEmptyCompletion = errors.New("empty completion")

const (
	// DefaultContextVerses is how many verses are quoted in a chat prompt.
	DefaultContextVerses = 5
	chatExcerptLength    = 200
)

// OllamaLLM handles interactions with the Ollama LLM API
type OllamaLLM struct {
	Client        *api.Client
	Model         string
	Temperature   float64
	MaxTokens     int
	ContextVerses int
}

// NewOllamaLLM creates a new Ollama LLM client. An empty host falls back to
// OLLAMA_HOST.
func NewOllamaLLM(host string, model string) (*OllamaLLM, error) {
	hostURL := envconfig.Host()
	if host != "" {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ollama host: %w", err)
		}
		hostURL = u
	}
	client := api.NewClient(hostURL, http.DefaultClient)

	return &OllamaLLM{
		Client:        client,
		Model:         model,
		Temperature:   0.7,
		MaxTokens:     800,
		ContextVerses: DefaultContextVerses,
	}, nil
}

// ChatPrompt builds the system prompt quoting the first verses as context
func (o *OllamaLLM) ChatPrompt(verses []models.Verse) string {
	if len(verses) > o.contextLimit() {
		verses = verses[:o.contextLimit()]
	}

	var promptBuilder strings.Builder

	promptBuilder.WriteString("You are a knowledgeable assistant specializing in the Rigveda, one of the oldest sacred texts of Hinduism. \n")
	promptBuilder.WriteString("You have access to verses from the Rigveda and can answer questions about them.\n\n")

	promptBuilder.WriteString("Context - Available Rigveda verses:\n")
	for i, v := range verses {
		if i > 0 {
			promptBuilder.WriteString("\n\n")
		}
		promptBuilder.WriteString(fmt.Sprintf("Mandala %d, Sukta %d: %s...", v.Mandala, v.Sukta, truncate(v.Text, chatExcerptLength)))
	}

	promptBuilder.WriteString("\n\nGuidelines:\n")
	promptBuilder.WriteString("- Provide accurate, respectful information about the Rigveda\n")
	promptBuilder.WriteString("- Cite mandala and sukta numbers when referencing specific verses\n")
	promptBuilder.WriteString("- Explain concepts clearly for both beginners and scholars\n")
	promptBuilder.WriteString("- If you don't know something, admit it rather than speculating\n")
	promptBuilder.WriteString("- Be culturally sensitive and respectful of Hindu traditions")

	return promptBuilder.String()
}

// Chat answers the latest turn of history using verses as context
func (o *OllamaLLM) Chat(ctx context.Context, history []models.ChatMessage, verses []models.Verse) (*models.Response, error) {
	messages := make([]api.Message, 0, len(history)+1)
	messages = append(messages, api.Message{Role: "system", Content: o.ChatPrompt(verses)})
	for _, m := range history {
		messages = append(messages, api.Message{Role: m.Role, Content: m.Content})
	}

	answer, err := o.Complete(ctx, messages, o.Temperature, o.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	sources := verses
	if len(sources) > o.contextLimit() {
		sources = sources[:o.contextLimit()]
	}

	return &models.Response{
		Answer:    answer,
		Sources:   sources,
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil
}

func (o *OllamaLLM) contextLimit() int {
	if o.ContextVerses <= 0 {
		return DefaultContextVerses
	}
	return o.ContextVerses
}

// Complete runs a chat completion and returns the concatenated stream
func (o *OllamaLLM) Complete(ctx context.Context, messages []api.Message, temperature float64, maxTokens int) (string, error) {
	req := api.ChatRequest{
		Model:    o.Model,
		Messages: messages,
		Options: map[string]interface{}{
			"temperature": temperature,
			"num_predict": maxTokens,
		},
	}

	var responseBuilder strings.Builder

	err := o.Client.Chat(ctx, &req, func(resp api.ChatResponse) error {
		_, err := responseBuilder.WriteString(resp.Message.Content)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	answer := strings.TrimSpace(responseBuilder.String())
	if answer == "" {
		return "", ErrEmptyCompletion
	}
	return answer, nil
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
