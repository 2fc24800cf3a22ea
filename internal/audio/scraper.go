// Package audio discovers sukta recitation recordings listed on the
// per-mandala audio pages of sri-aurobindo.co.in.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"rigveda-rag/internal/logging"
	"rigveda-rag/internal/models"
)

// DefaultBaseURL hosts audio_NN.htm pages and the mp3 files they link.
const DefaultBaseURL = "https://sri-aurobindo.co.in/workings/matherials/rigveda"

// ErrInvalidMandala is returned for mandala numbers outside 1..10.
var ErrInvalidMandala = errors.New("invalid mandala number")

// srcPattern matches "<dir>/<mandala>-<sukta>[_<version>].mp3".
var srcPattern = regexp.MustCompile(`^(\d+)/(\d+)-(\d+)(_\d+)?\.mp3$`)

// Scraper lists recordings for a mandala
type Scraper struct {
	BaseURL    string
	HTTPClient *http.Client
	logger     *zap.Logger
}

// NewScraper creates a scraper rooted at baseURL
func NewScraper(baseURL string, timeout time.Duration, logger *zap.Logger) *Scraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Scraper{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		logger:     logging.OrNop(logger),
	}
}

// PageURL is the audio page of a mandala
func (s *Scraper) PageURL(mandala int) string {
	return fmt.Sprintf("%s/audio_%02d.htm", s.BaseURL, mandala)
}

// ListMandala fetches the mandala's audio page and returns its recordings
// in page order.
func (s *Scraper) ListMandala(ctx context.Context, mandala int) ([]models.AudioFile, error) {
	if mandala < 1 || mandala > 10 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMandala, mandala)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.PageURL(mandala), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape mandala %d: %w", mandala, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to scrape mandala %d: status %d", mandala, resp.StatusCode)
	}

	files, err := ParseAudioPage(resp.Body, s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape mandala %d: %w", mandala, err)
	}

	s.logger.Debug("scraped audio page",
		zap.Int("mandala", mandala), zap.Int("files", len(files)))
	return files, nil
}

// ParseAudioPage extracts the recordings referenced by <audio src> elements.
// Sources that do not follow the page's naming scheme are skipped.
func ParseAudioPage(r io.Reader, baseURL string) ([]models.AudioFile, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	files := []models.AudioFile{}
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "audio" {
			if f, ok := parseSource(attr(n, "src"), baseURL); ok {
				files = append(files, f)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	return files, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func parseSource(src, baseURL string) (models.AudioFile, bool) {
	match := srcPattern.FindStringSubmatch(src)
	if match == nil {
		return models.AudioFile{}, false
	}

	mandala, _ := strconv.Atoi(match[2])
	sukta, _ := strconv.Atoi(match[3])
	version := 1
	if match[4] != "" {
		version, _ = strconv.Atoi(strings.TrimPrefix(match[4], "_"))
	}

	return models.AudioFile{
		Mandala: mandala,
		Sukta:   sukta,
		Version: version,
		URL:     strings.TrimRight(baseURL, "/") + "/" + src,
	}, true
}
