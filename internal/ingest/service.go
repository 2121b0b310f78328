// File: internal/ingest/service.go
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"flipradar_backend/internal/config"
	"flipradar_backend/internal/economics"
	"flipradar_backend/internal/listing"
	"flipradar_backend/internal/source"

	"go.uber.org/zap"
)

// Service orchestrates one scrape-and-ingest cycle: fetch raw records from
// every source, normalize and score them, and commit the batch.
type Service interface {
	// RunScrapeCycle fans out across all sources and ingests whatever they
	// return. A failing source contributes zero items; only a storage
	// failure makes the cycle itself fail.
	RunScrapeCycle(ctx context.Context) error
	// UpsertListings normalizes and stores a batch of raw records against an
	// explicit reference point. It returns how many records were stored;
	// invalid records are skipped, not fatal.
	UpsertListings(ctx context.Context, raws []listing.RawListing, refLat, refLon float64) (int, error)
}

type service struct {
	sources     []source.Source
	listingRepo listing.Repository
	econ        economics.EconomicsConfig
	cfg         *config.Config
	logger      *zap.Logger
}

// NewService creates a new ingestion service.
func NewService(
	sources []source.Source,
	listingRepo listing.Repository,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &service{
		sources:     sources,
		listingRepo: listingRepo,
		econ:        economics.FromConfig(cfg),
		cfg:         cfg,
		logger:      logger.Named("ingest"),
	}
}

func (s *service) RunScrapeCycle(ctx context.Context) error {
	keywords := s.cfg.ScrapeKeywordList()

	type fetchResult struct {
		name string
		raws []listing.RawListing
		err  error
	}

	results := make(chan fetchResult, len(s.sources))
	var wg sync.WaitGroup
	for _, src := range s.sources {
		wg.Add(1)
		go func(src source.Source) {
			defer wg.Done()
			// Each source gets its own bounded timeout so one slow
			// marketplace cannot stall the cycle.
			fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.SourceTimeout)
			defer cancel()
			raws, err := src.Search(fetchCtx, keywords)
			results <- fetchResult{name: src.Name(), raws: raws, err: err}
		}(src)
	}
	wg.Wait()
	close(results)

	var all []listing.RawListing
	for res := range results {
		if res.err != nil {
			// Transient fetch failures are isolated to that source. A source
			// that failed mid-search still contributes the items it already
			// collected.
			s.logger.Warn("source fetch failed",
				zap.String("source", res.name),
				zap.Int("partial_items", len(res.raws)),
				zap.Error(res.err))
		} else {
			s.logger.Debug("source fetched",
				zap.String("source", res.name), zap.Int("items", len(res.raws)))
		}
		all = append(all, res.raws...)
	}

	stored, err := s.UpsertListings(ctx, all, s.cfg.BaseLat, s.cfg.BaseLon)
	if err != nil {
		return fmt.Errorf("scrape cycle: %w", err)
	}
	s.logger.Info("scrape cycle done",
		zap.Int("fetched", len(all)), zap.Int("stored", stored))
	return nil
}

func (s *service) UpsertListings(ctx context.Context, raws []listing.RawListing, refLat, refLon float64) (int, error) {
	started := time.Now()
	snapshots := make([]*listing.Listing, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		snap, err := listing.Normalize(raw, refLat, refLon, s.econ)
		if err != nil {
			// One malformed record never drops the rest of the batch.
			skipped++
			s.logger.Warn("skipping invalid listing", zap.Error(err))
			continue
		}
		snapshots = append(snapshots, snap)
	}

	stored, err := s.listingRepo.UpsertMany(ctx, snapshots)
	if err != nil {
		// The whole batch rolled back; the next scheduled cycle retries it.
		return 0, err
	}

	if skipped > 0 {
		s.logger.Info("ingest batch had invalid records",
			zap.Int("skipped", skipped), zap.Int("stored", stored))
	}
	s.logger.Debug("ingest batch committed",
		zap.Int("stored", stored),
		zap.Duration("took", time.Since(started)))
	return stored, nil
}
