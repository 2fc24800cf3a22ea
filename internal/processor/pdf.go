// internal/processor/pdf.go
package processor

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"rigveda-rag/internal/models"

	"github.com/ledongthuc/pdf"
)

// DefaultSource tags verses extracted from a translation PDF
const DefaultSource = "Rigveda"

var (
	// "HYMN XXIV. Varuna." or "HYMN I Agni" at the start of a line
	hymnHeadingRe = regexp.MustCompile(`(?m)^[ \t]*HYMN[ \t]+([IVXLCDM]+)\b\.?[^\n]*$`)
	spaceRe       = regexp.MustCompile(`[ \t]+`)
	blankLinesRe  = regexp.MustCompile(`\n[ \t]*\n+`)
	pageNumberRe  = regexp.MustCompile(`^\s*(\d+|Page \d+)\s*$`)
)

// PDFProcessor turns a translation PDF of one mandala into verses
type PDFProcessor struct {
	Source string
}

// NewPDFProcessor creates a new PDF processor
func NewPDFProcessor() *PDFProcessor {
	return &PDFProcessor{Source: DefaultSource}
}

// ExtractText extracts text from a PDF file
func (p *PDFProcessor) ExtractText(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	b, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract plain text: %w", err)
	}

	_, err = buf.ReadFrom(b)
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}

	return buf.String(), nil
}

// ProcessPDF extracts the hymns of mandala from a PDF file
func (p *PDFProcessor) ProcessPDF(ctx context.Context, filePath string, mandala int) ([]models.Verse, error) {
	text, err := p.ExtractText(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	verses := p.SplitHymns(p.preprocessText(text), mandala)
	if len(verses) == 0 {
		return nil, fmt.Errorf("no hymn headings found in %s", filePath)
	}
	return verses, nil
}

// preprocessText strips running headers and page numbers and tidies
// whitespace, keeping line structure.
func (p *PDFProcessor) preprocessText(text string) string {
	text = p.removeHeadersFooters(text)
	return p.normalizeWhitespace(text)
}

// removeHeadersFooters drops page-number lines and short running headers
func (p *PDFProcessor) removeHeadersFooters(text string) string {
	pages := strings.Split(text, "\f")

	var cleanedPages []string
	for _, page := range pages {
		lines := strings.Split(page, "\n")

		kept := lines[:0]
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			if pageNumberRe.MatchString(trimmed) {
				continue
			}
			// running header on the first two lines of a page
			if i < 2 && len(trimmed) < 50 && strings.Contains(strings.ToUpper(trimmed), "RIG VEDA") {
				continue
			}
			kept = append(kept, line)
		}
		cleanedPages = append(cleanedPages, strings.Join(kept, "\n"))
	}

	return strings.Join(cleanedPages, "\n")
}

// normalizeWhitespace collapses runs of spaces and blank lines
func (p *PDFProcessor) normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = spaceRe.ReplaceAllString(text, " ")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// SplitHymns cuts text at "HYMN <roman numeral>" headings. Each hymn
// becomes one verse whose sukta is the numeral; text before the first
// heading and hymns with an empty body are dropped.
func (p *PDFProcessor) SplitHymns(text string, mandala int) []models.Verse {
	source := p.Source
	if source == "" {
		source = DefaultSource
	}

	headings := hymnHeadingRe.FindAllStringSubmatchIndex(text, -1)
	verses := []models.Verse{}
	for i, h := range headings {
		sukta, ok := parseRoman(text[h[2]:h[3]])
		if !ok {
			continue
		}

		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1][0]
		}
		body := strings.TrimSpace(text[h[1]:end])
		if body == "" {
			continue
		}

		verses = append(verses, models.Verse{
			Source:  source,
			Mandala: mandala,
			Sukta:   sukta,
			Text:    body,
		})
	}
	return verses
}

var romanValues = map[byte]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}

// parseRoman converts an upper-case Roman numeral
func parseRoman(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	total := 0
	for i := 0; i < len(s); i++ {
		v, ok := romanValues[s[i]]
		if !ok {
			return 0, false
		}
		if i+1 < len(s) && v < romanValues[s[i+1]] {
			total -= v
		} else {
			total += v
		}
	}
	return total, total > 0
}
