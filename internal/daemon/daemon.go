package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/watchearn-network/watchearn/internal/api"
	"github.com/watchearn-network/watchearn/internal/app/authority"
	"github.com/watchearn-network/watchearn/internal/app/catalog"
	"github.com/watchearn-network/watchearn/internal/app/dashboard"
	"github.com/watchearn-network/watchearn/internal/app/ledger"
	"github.com/watchearn-network/watchearn/internal/app/profile"
	"github.com/watchearn-network/watchearn/internal/app/withdrawal"
	"github.com/watchearn-network/watchearn/internal/infra/keylock"
	"github.com/watchearn-network/watchearn/internal/infra/observability"
	"github.com/watchearn-network/watchearn/internal/infra/sqlite"
)

// shutdownGrace bounds in-flight requests on shutdown.
const shutdownGrace = 10 * time.Second

// Daemon owns the store and the services built on it.
type Daemon struct {
	cfg      Config
	db       *sqlite.DB
	log      *slog.Logger
	Services api.Services
}

// Open opens the store under home and builds every service. Callers must
// Close the daemon.
func Open(cfg Config, home string, log *slog.Logger) (*Daemon, error) {
	db, err := sqlite.Open(cfg.DataDir(home))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	locks := keylock.New(keylock.Config{MaxWait: cfg.LockTimeout()})
	locks.OnWait(observability.ObserveLock)

	auth := authority.New(db, db, log)
	policy := withdrawal.Config{MinWithdrawal: cfg.Ledger.MinWithdrawal}
	d := &Daemon{
		cfg: cfg,
		db:  db,
		log: log,
		Services: api.Services{
			Authority:   auth,
			Profiles:    profile.New(db, auth, log),
			Catalog:     catalog.New(db, log),
			Ledger:      ledger.New(db, auth, locks, log),
			Withdrawals: withdrawal.New(policy, db, auth, locks, log),
			Dashboard:   dashboard.New(db),
		},
	}
	return d, nil
}

// DB exposes the store for administrative commands.
func (d *Daemon) DB() *sqlite.DB { return d.db }

// Close releases the store.
func (d *Daemon) Close() error { return d.db.Close() }

// Handler builds the HTTP handler from the configuration.
func (d *Daemon) Handler() (http.Handler, error) {
	tokens, err := d.cfg.TokenAuth()
	if err != nil {
		return nil, err
	}
	srv := api.NewServer(d.Services, tokens, d.log)
	srv.SetHealthCheck(d.db)
	srv.SetRequestTimeout(d.cfg.RequestTimeout())
	if d.cfg.API.Metrics {
		srv.EnableMetrics()
	}
	if d.cfg.RateLimit.Enabled {
		srv.SetRateLimiter(api.NewRateLimiter(d.cfg.RateLimit.RequestsPerSecond, d.cfg.RateLimit.Burst))
	}
	return srv.Handler(), nil
}

// Run seeds the catalog if configured, then serves HTTP on ln until ctx is
// done and shuts down gracefully.
func (d *Daemon) Run(ctx context.Context, ln net.Listener) error {
	if d.cfg.Ledger.SeedDefaults {
		n, err := d.Services.Catalog.SeedIfEmpty(ctx)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		if n > 0 {
			d.log.Info("seeded built-in catalog", "ads", n)
		}
	}

	handler, err := d.Handler()
	if err != nil {
		return err
	}
	hs := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.log.Info("api listening", "addr", ln.Addr().String())
		errCh <- hs.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	d.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ListenAndRun listens on the configured address and calls Run.
func (d *Daemon) ListenAndRun(ctx context.Context) error {
	ln, err := net.Listen("tcp", d.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", d.cfg.Addr(), err)
	}
	return d.Run(ctx, ln)
}
