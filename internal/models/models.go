package models

// Verse is one corpus entry: a sukta (hymn) of a mandala. Text may hold
// several stanzas of the hymn.
type Verse struct {
	Source  string `json:"veda"`
	Mandala int    `json:"mandala"`
	Sukta   int    `json:"sukta"`
	Text    string `json:"text"`
}

// Corpus is the ordered collection of verses across all mandalas.
type Corpus []Verse

// ChatMessage is a single turn of a conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QuizQuestion represents a multiple-choice question generated from verses
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Mandala       int      `json:"mandala,omitempty"`
	Sukta         int      `json:"sukta,omitempty"`
	Verse         *Verse   `json:"verse,omitempty"`
}

// AudioFile is a recitation recording of a sukta
type AudioFile struct {
	Mandala int    `json:"mandala"`
	Sukta   int    `json:"sukta"`
	Version int    `json:"version"`
	URL     string `json:"url"`
}

// Response represents the response from the LLM
type Response struct {
	Answer    string  `json:"answer"`
	Sources   []Verse `json:"sources"`
	Timestamp string  `json:"timestamp"`
}
