package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/watchearn-network/watchearn/internal/app/authority"
	"github.com/watchearn-network/watchearn/internal/domain"
	"github.com/watchearn-network/watchearn/internal/infra/keylock"
	"github.com/watchearn-network/watchearn/internal/infra/logging"
	"github.com/watchearn-network/watchearn/internal/infra/sqlite"
)

type fixture struct {
	svc   *Service
	db    *sqlite.DB
	locks *keylock.Locker
	now   atomic.Pointer[time.Time]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("sqlite.Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{db: db, locks: keylock.New(keylock.Config{MaxWait: 50 * time.Millisecond})}
	f.setNow(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	log := logging.Discard()
	f.svc = New(db, authority.New(db, db, log), f.locks, log).
		WithClock(func() time.Time { return *f.now.Load() })

	ctx := context.Background()
	for _, id := range []domain.Identity{"u1", "u2"} {
		if err := db.InsertProfile(ctx, domain.Profile{Identity: id, Username: string(id), RegistrationTime: *f.now.Load()}); err != nil {
			t.Fatal(err)
		}
	}
	for id := int64(1); id <= 3; id++ {
		if err := db.UpsertAds(ctx, []domain.Ad{{ID: id, Title: "ad", DurationSeconds: 30, RewardAmount: 100}}); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func (f *fixture) setNow(t time.Time) { f.now.Store(&t) }

func (f *fixture) balance(t *testing.T, id domain.Identity) int64 {
	t.Helper()
	p, err := f.db.GetProfile(context.Background(), id)
	if err != nil || p == nil {
		t.Fatalf("GetProfile(%s) = %v, %v", id, p, err)
	}
	return p.Balance
}

func TestClaim_CreditsReward(t *testing.T) {
	f := newFixture(t)

	ev, err := f.svc.Claim(context.Background(), "u1", 1)
	if err != nil {
		t.Fatalf("Claim() error: %v", err)
	}
	if ev.Day != "2026-03-01" || ev.Reward != 100 || ev.AdID != 1 {
		t.Errorf("event = %+v", ev)
	}
	if got := f.balance(t, "u1"); got != 100 {
		t.Errorf("balance = %d, want 100", got)
	}
}

func TestClaim_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		id   domain.Identity
		ad   int64
		want error
	}{
		{"anonymous", "", 1, domain.ErrUnauthenticated},
		{"no profile", "ghost", 1, domain.ErrProfileRequired},
		{"unknown ad", "u1", 77, domain.ErrAdNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Claim(ctx, tt.id, tt.ad); !errors.Is(err, tt.want) {
				t.Errorf("Claim() error = %v, want %v", err, tt.want)
			}
		})
	}
	if got := f.balance(t, "u1"); got != 0 {
		t.Errorf("balance after failed claims = %d, want 0", got)
	}
}

func TestClaim_OncePerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Claim(ctx, "u1", 1); err != nil {
		t.Fatal(err)
	}
	f.setNow(time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC))
	if _, err := f.svc.Claim(ctx, "u1", 1); !errors.Is(err, domain.ErrAlreadyClaimedToday) {
		t.Fatalf("same-day Claim() error = %v, want ErrAlreadyClaimedToday", err)
	}
	// Other ads and other identities are independent keys.
	if _, err := f.svc.Claim(ctx, "u1", 2); err != nil {
		t.Errorf("different ad: %v", err)
	}
	if _, err := f.svc.Claim(ctx, "u2", 1); err != nil {
		t.Errorf("different identity: %v", err)
	}

	f.setNow(time.Date(2026, 3, 2, 0, 0, 1, 0, time.UTC))
	if _, err := f.svc.Claim(ctx, "u1", 1); err != nil {
		t.Errorf("next-day Claim() error: %v", err)
	}
	if got := f.balance(t, "u1"); got != 300 {
		t.Errorf("balance = %d, want 300", got)
	}
}

func TestClaim_ConcurrentExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.locks = keylock.New(keylock.Config{MaxWait: 5 * time.Second})
	f.svc.locks = f.locks
	ctx := context.Background()

	const callers = 25
	var (
		wg      sync.WaitGroup
		ok      atomic.Int32
		claimed atomic.Int32
		start   = make(chan struct{})
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Claim(ctx, "u1", 1)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrAlreadyClaimedToday):
				claimed.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if ok.Load() != 1 {
		t.Errorf("successful claims = %d, want 1", ok.Load())
	}
	if claimed.Load() != callers-1 {
		t.Errorf("AlreadyClaimedToday = %d, want %d", claimed.Load(), callers-1)
	}
	if got := f.balance(t, "u1"); got != 100 {
		t.Errorf("balance = %d, want 100", got)
	}
}

func TestClaim_BusyWhenLockHeld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unlock, err := f.locks.Lock(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	_, err = f.svc.Claim(ctx, "u1", 1)
	if !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("Claim() under held lock error = %v, want ErrBusy", err)
	}
	if !domain.IsRetryable(err) {
		t.Error("Busy must be retryable")
	}
	if got := f.balance(t, "u1"); got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}
}

func TestWatchesAndJournal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.Claim(ctx, "u1", 1)
	f.svc.Claim(ctx, "u1", 2)

	watches, err := f.svc.Watches(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(watches) != 2 {
		t.Errorf("Watches() = %d, want 2", len(watches))
	}

	entries, err := f.svc.Journal(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	var sum int64
	for _, e := range entries {
		sum += e.Signed()
	}
	if sum != f.balance(t, "u1") {
		t.Errorf("journal sum = %d, want balance %d", sum, f.balance(t, "u1"))
	}

	none, err := f.svc.Watches(ctx, "u2")
	if err != nil || len(none) != 0 {
		t.Errorf("Watches(u2) = %v, %v", none, err)
	}
}
