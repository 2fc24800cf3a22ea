// Package corpus materializes the Rigveda verse corpus once per process and
// serves the shared, read-only result to every caller.
package corpus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"rigveda-rag/internal/logging"
	"rigveda-rag/internal/models"
)

const loadKey = "corpus"

// Store loads the ten mandala partitions from a Source and caches the
// assembled corpus for the lifetime of the process. Concurrent first loads
// share a single in-flight fetch.
type Store struct {
	source        Source
	logger        *zap.Logger
	MaxConcurrent int

	group singleflight.Group

	mu     sync.RWMutex
	loaded bool
	corpus models.Corpus
}

// NewStore creates a store that has not loaded anything yet
func NewStore(source Source, logger *zap.Logger) *Store {
	return &Store{
		source:        source,
		logger:        logging.OrNop(logger),
		MaxConcurrent: MandalaCount,
	}
}

// Loaded reports whether the corpus has been assembled.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) cached() (models.Corpus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus, s.loaded
}

// LoadCorpus returns the full corpus, fetching it on first use. A failed
// load caches nothing, so the next call retries every partition. If ctx ends
// while waiting the caller gets ctx.Err(), but the shared load keeps going
// for the benefit of later callers.
func (s *Store) LoadCorpus(ctx context.Context) (models.Corpus, error) {
	if c, ok := s.cached(); ok {
		return c, nil
	}

	ch := s.group.DoChan(loadKey, func() (any, error) {
		if c, ok := s.cached(); ok {
			return c, nil
		}

		c, err := s.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.corpus = c
		s.loaded = true
		s.mu.Unlock()
		return c, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(models.Corpus), nil
	}
}

// load fetches all partitions concurrently and concatenates them in
// mandala order, whatever order the fetches complete in.
func (s *Store) load(ctx context.Context) (models.Corpus, error) {
	startTime := time.Now()
	partitions := make([][]models.Verse, MandalaCount)

	g, gctx := errgroup.WithContext(ctx)
	if s.MaxConcurrent > 0 {
		g.SetLimit(s.MaxConcurrent)
	}

	for i := range partitions {
		mandala := i + 1
		g.Go(func() error {
			verses, err := s.source.FetchPartition(gctx, mandala)
			if err != nil {
				return fmt.Errorf("failed to load mandala %d: %w", mandala, err)
			}
			s.logger.Debug("fetched partition",
				zap.Int("mandala", mandala), zap.Int("verses", len(verses)))
			partitions[i] = verses
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Warn("corpus load failed", zap.Error(err))
		return nil, err
	}

	total := 0
	for _, p := range partitions {
		total += len(p)
	}
	corpus := make(models.Corpus, 0, total)
	for _, p := range partitions {
		corpus = append(corpus, p...)
	}

	s.logger.Info("corpus loaded",
		zap.Int("verses", len(corpus)), zap.Duration("elapsed", time.Since(startTime)))
	return corpus, nil
}
