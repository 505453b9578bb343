package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/watchearn-network/watchearn/internal/app/authority"
	"github.com/watchearn-network/watchearn/internal/domain"
	"github.com/watchearn-network/watchearn/internal/infra/logging"
	"github.com/watchearn-network/watchearn/internal/infra/sqlite"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("sqlite.Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	log := logging.Discard()
	auth := authority.New(db, db, log)
	return New(db, auth, log).WithClock(func() time.Time { return testNow }), db
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, "u1", "  alice  ", "alice@example.com")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.Username != "alice" {
		t.Errorf("Username = %q, want alice (trimmed)", p.Username)
	}
	if p.Balance != 0 {
		t.Errorf("Balance = %d, want 0", p.Balance)
	}
	if !p.RegistrationTime.Equal(testNow) {
		t.Errorf("RegistrationTime = %v, want %v", p.RegistrationTime, testNow)
	}

	got, err := svc.Get(ctx, "u1")
	if err != nil || got == nil {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
}

func TestCreate_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		id       domain.Identity
		username string
		want     error
	}{
		{"anonymous", "", "alice", domain.ErrUnauthenticated},
		{"blank username", "u1", "   ", domain.ErrInvalidProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tt.id, tt.username, ""); !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := svc.Create(ctx, "u1", "alice", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, "u1", "again", ""); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("duplicate Create() error = %v, want ErrAlreadyExists", err)
	}
}

func TestGet_Absent(t *testing.T) {
	svc, _ := newTestService(t)
	p, err := svc.Get(context.Background(), "nobody")
	if err != nil || p != nil {
		t.Errorf("Get(nobody) = %v, %v; want nil, nil", p, err)
	}
}

func TestGetFor(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	svc.Create(ctx, "u1", "alice", "")
	svc.Create(ctx, "u2", "bob", "")
	db.SetRole(ctx, "boss", domain.RoleAdmin, "root", testNow)

	if p, err := svc.GetFor(ctx, "u1", "u1"); err != nil || p == nil {
		t.Errorf("self read = %v, %v", p, err)
	}
	if _, err := svc.GetFor(ctx, "u1", "u2"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("cross read error = %v, want ErrUnauthorized", err)
	}
	if p, err := svc.GetFor(ctx, "boss", "u2"); err != nil || p == nil || p.Username != "bob" {
		t.Errorf("admin read = %v, %v", p, err)
	}
}
