// Package retrieval picks the verses quoted as context in a chat prompt.
package retrieval

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"rigveda-rag/internal/logging"
	"rigveda-rag/internal/models"
	"rigveda-rag/internal/query"
)

// CorpusLoader provides the shared corpus.
type CorpusLoader interface {
	LoadCorpus(ctx context.Context) (models.Corpus, error)
}

// TextEmbedder embeds a question.
type TextEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// SimilarityIndex finds verses near an embedding.
type SimilarityIndex interface {
	QuerySimilar(ctx context.Context, embedding []float64, limit int) ([]models.Verse, error)
}

var (
	// "Mandala 1, Sukta 1", "mandala 10 sukta 129", "RV 1.1", "10.129"
	namedRefRe  = regexp.MustCompile(`(?i)mandala\s+(\d+)\s*,?\s*sukta\s+(\d+)`)
	dottedRefRe = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,3})\b`)
	wordRe      = regexp.MustCompile(`[\p{L}\p{M}]{4,}`)
)

// stopwords are skipped when matching question words against verse text
var stopwords = map[string]bool{
	"what": true, "which": true, "where": true, "when": true, "about": true,
	"does": true, "that": true, "this": true, "with": true, "from": true,
	"tell": true, "rigveda": true, "veda": true, "verse": true, "verses": true,
	"hymn": true, "hymns": true, "mandala": true, "sukta": true, "have": true,
	"there": true, "their": true, "they": true, "were": true, "many": true,
}

// Retriever chooses context verses for a question: explicit references
// first, then vector similarity when an index is configured, then word
// matches, then a random sample.
type Retriever struct {
	Corpus   CorpusLoader
	Embedder TextEmbedder
	Index    SimilarityIndex
	logger   *zap.Logger
}

// New creates a retriever. embedder and index may be nil.
func New(corpus CorpusLoader, embedder TextEmbedder, index SimilarityIndex, logger *zap.Logger) *Retriever {
	return &Retriever{
		Corpus:   corpus,
		Embedder: embedder,
		Index:    index,
		logger:   logging.OrNop(logger),
	}
}

// Retrieve returns up to limit verses relevant to question.
func (r *Retriever) Retrieve(ctx context.Context, question string, limit int) ([]models.Verse, error) {
	c, err := r.Corpus.LoadCorpus(ctx)
	if err != nil {
		return nil, err
	}

	if verses := referencedVerses(c, question); len(verses) > 0 {
		r.logger.Debug("context from references", zap.Int("verses", len(verses)))
		return head(verses, limit), nil
	}

	if r.Embedder != nil && r.Index != nil {
		verses, err := r.semantic(ctx, question, limit)
		if err == nil && len(verses) > 0 {
			r.logger.Debug("context from similarity", zap.Int("verses", len(verses)))
			return verses, nil
		}
		if err != nil {
			r.logger.Warn("similarity search failed, falling back to word match", zap.Error(err))
		}
	}

	if verses := wordMatches(c, question); len(verses) > 0 {
		r.logger.Debug("context from word match", zap.Int("verses", len(verses)))
		return head(verses, limit), nil
	}

	return query.Sample(c, limit), nil
}

func (r *Retriever) semantic(ctx context.Context, question string, limit int) ([]models.Verse, error) {
	embedding, err := r.Embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, err
	}
	return r.Index.QuerySimilar(ctx, embedding, limit)
}

// referencedVerses resolves "mandala M sukta S" and "M.S" mentions
func referencedVerses(c models.Corpus, question string) []models.Verse {
	var out []models.Verse
	for _, re := range []*regexp.Regexp{namedRefRe, dottedRefRe} {
		for _, m := range re.FindAllStringSubmatch(question, -1) {
			mandala, _ := strconv.Atoi(m[1])
			sukta, _ := strconv.Atoi(m[2])
			out = append(out, query.BySukta(c, mandala, sukta)...)
		}
		if len(out) > 0 {
			return out
		}
	}
	return out
}

// wordMatches ranks verses by how many distinct question words they
// contain; ties keep corpus order.
func wordMatches(c models.Corpus, question string) []models.Verse {
	var terms []string
	seen := make(map[string]bool)
	for _, w := range wordRe.FindAllString(strings.ToLower(question), -1) {
		if !stopwords[w] && !seen[w] {
			seen[w] = true
			terms = append(terms, w)
		}
	}
	if len(terms) == 0 {
		return nil
	}

	type scored struct {
		verse models.Verse
		score int
	}
	var hits []scored
	for _, v := range c {
		text := strings.ToLower(v.Text)
		score := 0
		for _, t := range terms {
			if strings.Contains(text, t) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{v, score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]models.Verse, len(hits))
	for i, h := range hits {
		out[i] = h.verse
	}
	return out
}

func head(verses []models.Verse, n int) []models.Verse {
	if n > 0 && len(verses) > n {
		return verses[:n]
	}
	return verses
}
