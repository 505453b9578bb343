package catalog

import (
	"context"
	"testing"

	"github.com/watchearn-network/watchearn/internal/domain"
	adcatalog "github.com/watchearn-network/watchearn/internal/infra/catalog"
	"github.com/watchearn-network/watchearn/internal/infra/logging"
	"github.com/watchearn-network/watchearn/internal/infra/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("sqlite.Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, logging.Discard())
}

func TestSeed_Default(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	n, err := svc.Seed(ctx, nil)
	if err != nil {
		t.Fatalf("Seed(nil) error: %v", err)
	}
	if n != len(adcatalog.Catalog) {
		t.Errorf("seeded %d, want %d", n, len(adcatalog.Catalog))
	}

	ads, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ads) != len(adcatalog.Catalog) {
		t.Fatalf("List() = %d ads, want %d", len(ads), len(adcatalog.Catalog))
	}
	for i, ad := range ads {
		if ad != adcatalog.Catalog[i] {
			t.Errorf("ads[%d] = %+v, want %+v", i, ad, adcatalog.Catalog[i])
		}
	}
}

func TestSeed_InvalidWritesNothing(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	bad := []domain.Ad{
		{ID: 1, Title: "ok", DurationSeconds: 30, RewardAmount: 100},
		{ID: 2, Title: "", DurationSeconds: 30, RewardAmount: 100},
	}
	if _, err := svc.Seed(ctx, bad); err == nil {
		t.Fatal("Seed(invalid) error = nil")
	}
	ads, _ := svc.List(ctx)
	if len(ads) != 0 {
		t.Errorf("List() after failed seed = %d ads, want 0", len(ads))
	}
}

func TestGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	svc.Seed(ctx, nil)

	ad, err := svc.Get(ctx, 2)
	if err != nil || ad == nil {
		t.Fatalf("Get(2) = %v, %v", ad, err)
	}
	if ad.Title != adcatalog.Catalog[1].Title {
		t.Errorf("Get(2).Title = %q", ad.Title)
	}

	missing, err := svc.Get(ctx, 999)
	if err != nil || missing != nil {
		t.Errorf("Get(999) = %v, %v; want nil, nil", missing, err)
	}
}

func TestSeedIfEmpty(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	custom := []domain.Ad{{ID: 42, Title: "custom", DurationSeconds: 30, RewardAmount: 10}}
	if _, err := svc.Seed(ctx, custom); err != nil {
		t.Fatal(err)
	}
	n, err := svc.SeedIfEmpty(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("SeedIfEmpty() on populated catalog seeded %d", n)
	}
	ads, _ := svc.List(ctx)
	if len(ads) != 1 || ads[0].ID != 42 {
		t.Errorf("List() = %+v, want only ad 42", ads)
	}
}
