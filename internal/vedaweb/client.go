// Package vedaweb fetches stanza documents (original text and translations)
// from the VedaWeb Rigveda API.
package vedaweb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"rigveda-rag/internal/location"
	"rigveda-rag/internal/logging"
)

// DefaultBaseURL is the public VedaWeb API root.
const DefaultBaseURL = "https://vedaweb.uni-koeln.de/rigveda/api"

var (
	// ErrNotFound is returned when the API has no document for a location.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidLocation is returned for ids that are neither dotted nor
	// fixed-width coordinates.
	ErrInvalidLocation = errors.New("invalid location id")
)

// StatusError is a non-404 error status from the API.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vedaweb returned status %d", e.StatusCode)
}

// Client talks to the document API. Requests are rate limited.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a client. requestsPerSecond and burst bound the
// outgoing request rate.
func NewClient(baseURL string, requestsPerSecond float64, burst int, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		logger:     logging.OrNop(logger),
	}
}

// FetchDocument returns the document for id, which may be dotted ("1.1.1")
// or fixed-width ("0100101").
func (c *Client) FetchDocument(ctx context.Context, id string) (*Document, error) {
	res, err := location.EncodeFromDotted(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	formattedID, ok := res.ID()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, id)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := c.BaseURL + "/document/id/" + formattedID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching document", zap.String("id", formattedID))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document %s: %w", formattedID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, formattedID)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", formattedID, err)
	}
	return &doc, nil
}
