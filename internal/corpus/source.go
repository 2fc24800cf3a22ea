package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"rigveda-rag/internal/models"
)

// MandalaCount is the number of partitions in the corpus.
const MandalaCount = 10

// ErrMalformedPartition is returned when a partition cannot be decoded or
// holds verses of another mandala.
var ErrMalformedPartition = errors.New("malformed partition")

// Source yields the verses of one mandala in corpus order.
type Source interface {
	FetchPartition(ctx context.Context, mandala int) ([]models.Verse, error)
}

// PartitionName is the file name of a mandala partition.
func PartitionName(mandala int) string {
	return fmt.Sprintf("rigveda_mandala_%d.json", mandala)
}

// FileSource reads partitions from a local directory.
type FileSource struct {
	Dir string
}

// NewFileSource creates a source over dir
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

// FetchPartition reads and decodes one partition file
func (s *FileSource) FetchPartition(ctx context.Context, mandala int) ([]models.Verse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.Dir, PartitionName(mandala)))
	if err != nil {
		return nil, fmt.Errorf("failed to open partition %d: %w", mandala, err)
	}
	defer f.Close()

	return DecodePartition(f, mandala)
}

// HTTPSource fetches partitions from a static file server, e.g. the
// site's /data/ directory.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource creates a source rooted at baseURL
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
	}
}

// FetchPartition downloads and decodes one partition
func (s *HTTPSource) FetchPartition(ctx context.Context, mandala int) ([]models.Verse, error) {
	url := s.BaseURL + "/" + PartitionName(mandala)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch partition %d: %w", mandala, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch partition %d: status %d", mandala, resp.StatusCode)
	}

	return DecodePartition(resp.Body, mandala)
}

// DecodePartition decodes a JSON array of verses and checks that every
// verse belongs to mandala.
func DecodePartition(r io.Reader, mandala int) ([]models.Verse, error) {
	var verses []models.Verse
	if err := json.NewDecoder(r).Decode(&verses); err != nil {
		return nil, fmt.Errorf("%w: mandala %d: %v", ErrMalformedPartition, mandala, err)
	}
	if verses == nil {
		return nil, fmt.Errorf("%w: mandala %d: not an array", ErrMalformedPartition, mandala)
	}

	for i, v := range verses {
		if v.Mandala != mandala || v.Sukta < 1 {
			return nil, fmt.Errorf("%w: mandala %d: entry %d has mandala %d sukta %d",
				ErrMalformedPartition, mandala, i, v.Mandala, v.Sukta)
		}
	}
	return verses, nil
}
