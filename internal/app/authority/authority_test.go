package authority

import (
	"context"
	"errors"
	"testing"
	"time"

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
	svc := New(db, db, logging.Discard()).WithClock(func() time.Time { return testNow })
	return svc, db
}

func addProfile(t *testing.T, db *sqlite.DB, id domain.Identity) {
	t.Helper()
	if err := db.InsertProfile(context.Background(), domain.Profile{
		Identity: id, Username: string(id), RegistrationTime: testNow,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestRoleOf(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	addProfile(t, db, "member")
	addProfile(t, db, "demoted")
	db.SetRole(ctx, "boss", domain.RoleAdmin, "root", testNow)
	db.SetRole(ctx, "demoted", domain.RoleGuest, "boss", testNow)

	tests := []struct {
		id   domain.Identity
		want domain.Role
	}{
		{"", domain.RoleGuest},
		{"stranger", domain.RoleGuest},
		{"member", domain.RoleUser},
		{"boss", domain.RoleAdmin},
		{"demoted", domain.RoleGuest},
	}
	for _, tt := range tests {
		got, err := svc.RoleOf(ctx, tt.id)
		if err != nil {
			t.Fatalf("RoleOf(%q) error: %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("RoleOf(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	addProfile(t, db, "member")
	db.SetRole(ctx, "boss", domain.RoleAdmin, "root", testNow)

	if err := svc.RequireAdmin(ctx, ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("anonymous: %v, want ErrUnauthenticated", err)
	}
	if err := svc.RequireAdmin(ctx, "member"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("member: %v, want ErrUnauthorized", err)
	}
	if err := svc.RequireAdmin(ctx, "boss"); err != nil {
		t.Errorf("boss: %v, want nil", err)
	}
}

func TestRequireProfile(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	addProfile(t, db, "member")

	if _, err := svc.RequireProfile(ctx, "ghost"); !errors.Is(err, domain.ErrProfileRequired) {
		t.Errorf("ghost: %v, want ErrProfileRequired", err)
	}
	p, err := svc.RequireProfile(ctx, "member")
	if err != nil || p.Identity != "member" {
		t.Errorf("member: %+v, %v", p, err)
	}
}

func TestAssignRole(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	addProfile(t, db, "member")
	db.SetRole(ctx, "boss", domain.RoleAdmin, "root", testNow)

	if err := svc.AssignRole(ctx, "member", "member", domain.RoleAdmin); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("self-promotion: %v, want ErrUnauthorized", err)
	}
	if err := svc.AssignRole(ctx, "boss", "member", domain.Role("root")); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("bad role: %v, want ErrInvalidRole", err)
	}
	if err := svc.AssignRole(ctx, "boss", "member", domain.RoleAdmin); err != nil {
		t.Fatalf("AssignRole() error: %v", err)
	}
	if ok, _ := svc.IsAdmin(ctx, "member"); !ok {
		t.Error("member should be admin after assignment")
	}
}

func TestAssignRole_DoesNotCreateProfile(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	db.SetRole(ctx, "boss", domain.RoleAdmin, "root", testNow)

	if err := svc.AssignRole(ctx, "boss", "newcomer", domain.RoleUser); err != nil {
		t.Fatal(err)
	}
	p, err := db.GetProfile(ctx, "newcomer")
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Errorf("profile created by AssignRole: %+v", p)
	}
}

func TestBootstrap(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Bootstrap(ctx, "first"); err != nil {
		t.Fatalf("first Bootstrap() error: %v", err)
	}
	if err := svc.Bootstrap(ctx, "first"); err != nil {
		t.Errorf("repeat Bootstrap() by admin error: %v", err)
	}
	if err := svc.Bootstrap(ctx, "second"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("second Bootstrap() = %v, want ErrUnauthorized", err)
	}
	if err := svc.Bootstrap(ctx, ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("anonymous Bootstrap() = %v, want ErrUnauthenticated", err)
	}
}
