package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"

	"rigveda-rag/internal/models"
)

const (
	// DefaultQuizCount is the number of questions asked for when unset.
	DefaultQuizCount = 5
	// DefaultDifficulty is used when no difficulty is given.
	DefaultDifficulty = "medium"

	quizExcerptLength = 300
	quizTemperature   = 0.8
	quizMaxTokens     = 2000
	quizSystemPrompt  = "You are a quiz generator for Rigveda education. Return only valid JSON array, no markdown formatting, no code blocks."
)

var codeFence = regexp.MustCompile("```(?:json)?\\n?")

// QuizPrompt builds the user prompt asking for count questions about verses
func QuizPrompt(verses []models.Verse, count int, difficulty string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Generate %d multiple-choice quiz questions about the Rigveda based on these verses:\n\n", count))
	for i, v := range verses {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("%d. Mandala %d, Sukta %d:\n%s", i+1, v.Mandala, v.Sukta, truncate(v.Text, quizExcerptLength)))
	}

	sb.WriteString("\n\nDifficulty: " + difficulty + "\n\n")
	sb.WriteString(`Create questions that test:
- Knowledge of mandala and sukta numbers
- Understanding of verse content
- Recognition of specific verses
- General Rigveda knowledge

Return ONLY a valid JSON array with this exact structure:
[
  {
    "question": "Question text here",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correctAnswer": 0,
    "explanation": "Brief explanation of the correct answer",
    "mandala": 1,
    "sukta": 1
  }
]

Make sure:
- correctAnswer is the index (0-3) of the correct option
- Questions are clear and unambiguous
- Options are plausible but only one is correct
- Explanations are educational and concise`)

	return sb.String()
}

// GenerateQuiz asks the model for count questions about verses
func (o *OllamaLLM) GenerateQuiz(ctx context.Context, verses []models.Verse, count int, difficulty string) ([]models.QuizQuestion, error) {
	if count <= 0 {
		count = DefaultQuizCount
	}
	if difficulty == "" {
		difficulty = DefaultDifficulty
	}

	messages := []api.Message{
		{Role: "system", Content: quizSystemPrompt},
		{Role: "user", Content: QuizPrompt(verses, count, difficulty)},
	}

	content, err := o.Complete(ctx, messages, quizTemperature, quizMaxTokens)
	if errors.Is(err, ErrEmptyCompletion) {
		return []models.QuizQuestion{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate quiz: %w", err)
	}

	return ParseQuiz(content, verses)
}

// ParseQuiz decodes a model reply into questions. Markdown code fences are
// stripped, each question gets a fresh id and, when its mandala and sukta
// match one of verses, a reference to that verse. Questions whose answer
// index falls outside their options are dropped.
func ParseQuiz(content string, verses []models.Verse) ([]models.QuizQuestion, error) {
	content = strings.TrimSpace(codeFence.ReplaceAllString(content, ""))
	if content == "" {
		content = "[]"
	}

	var raw []models.QuizQuestion
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse quiz: %w", err)
	}

	questions := make([]models.QuizQuestion, 0, len(raw))
	for _, q := range raw {
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			continue
		}
		q.ID = uuid.NewString()
		q.Verse = findVerse(verses, q.Mandala, q.Sukta)
		questions = append(questions, q)
	}
	return questions, nil
}

func findVerse(verses []models.Verse, mandala, sukta int) *models.Verse {
	for i := range verses {
		if verses[i].Mandala == mandala && verses[i].Sukta == sukta {
			v := verses[i]
			return &v
		}
	}
	return nil
}
