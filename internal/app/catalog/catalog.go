// Package catalog serves the ad catalog to viewers and seeds it from the
// administration surface.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/watchearn-network/watchearn/internal/domain"
	adcatalog "github.com/watchearn-network/watchearn/internal/infra/catalog"
)

// Service reads and seeds ads.
type Service struct {
	store domain.AdStore
	log   *slog.Logger
}

// New creates the catalog service.
func New(store domain.AdStore, log *slog.Logger) *Service {
	return &Service{store: store, log: log.With("component", "catalog")}
}

// List returns every ad ordered by id.
func (s *Service) List(ctx context.Context) ([]domain.Ad, error) {
	return s.store.ListAds(ctx)
}

// Get returns the ad with id, or nil if there is none.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Ad, error) {
	return s.store.GetAd(ctx, id)
}

// Seed validates ads and upserts them. A nil slice seeds the built-in
// catalog. Returns the number of ads written.
func (s *Service) Seed(ctx context.Context, ads []domain.Ad) (int, error) {
	if ads == nil {
		ads = adcatalog.Catalog
	}
	if err := adcatalog.Validate(ads); err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	if err := s.store.UpsertAds(ctx, ads); err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	s.log.Info("catalog seeded", "count", len(ads))
	return len(ads), nil
}

// SeedIfEmpty seeds the built-in catalog when the store has no ads.
func (s *Service) SeedIfEmpty(ctx context.Context) (int, error) {
	ads, err := s.store.ListAds(ctx)
	if err != nil {
		return 0, err
	}
	if len(ads) > 0 {
		return 0, nil
	}
	return s.Seed(ctx, nil)
}
