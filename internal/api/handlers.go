package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/watchearn-network/watchearn/internal/domain"
)

// ─── Ledger API ─────────────────────────────────────────────────────────────
// Every handler reads the caller from the request context, calls exactly
// one application operation and writes its result or its mapped error.

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("ad id must be a positive integer")
	}
	return id, nil
}

// ─── Profiles & Roles ───────────────────────────────────────────────────────

type createProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// POST /api/profile
func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var body createProfileRequest
	if err := decodeBody(w, r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := s.svc.Profiles.Create(r.Context(), IdentityFrom(r.Context()), body.Username, body.Email)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GET /api/profile
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profiles.Get(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GET /api/users/{identity}/profile
func (s *Server) handleGetUserProfile(w http.ResponseWriter, r *http.Request) {
	target := domain.Identity(chi.URLParam(r, "identity"))
	p, err := s.svc.Profiles.GetFor(r.Context(), IdentityFrom(r.Context()), target)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GET /api/role
func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	role, err := s.svc.Authority.RoleOf(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"role": role})
}

// GET /api/role/admin
func (s *Server) handleIsAdmin(w http.ResponseWriter, r *http.Request) {
	ok, err := s.svc.Authority.IsAdmin(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_admin": ok})
}

type assignRoleRequest struct {
	Role string `json:"role"`
}

// PUT /api/users/{identity}/role
func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	var body assignRoleRequest
	if err := decodeBody(w, r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}
	role, err := domain.ParseRole(body.Role)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	target := domain.Identity(chi.URLParam(r, "identity"))
	if err := s.svc.Authority.AssignRole(r.Context(), IdentityFrom(r.Context()), target, role); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"identity": target, "role": role})
}

// POST /api/initialize
func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	caller := IdentityFrom(r.Context())
	if err := s.svc.Authority.Bootstrap(r.Context(), caller); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"identity": caller, "role": domain.RoleAdmin})
}

// ─── Catalog & Ledger ───────────────────────────────────────────────────────

// GET /api/ads
func (s *Server) handleListAds(w http.ResponseWriter, r *http.Request) {
	ads, err := s.svc.Catalog.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ads)
}

// GET /api/ads/{id} returns null for an unknown id.
func (s *Server) handleGetAd(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	ad, err := s.svc.Catalog.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

// POST /api/ads/{id}/claim
func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	ev, err := s.svc.Ledger.Claim(r.Context(), IdentityFrom(r.Context()), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// GET /api/watches
func (s *Server) handleWatches(w http.ResponseWriter, r *http.Request) {
	watches, err := s.svc.Ledger.Watches(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, watches)
}

// GET /api/journal
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Ledger.Journal(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ─── Withdrawals ────────────────────────────────────────────────────────────

type withdrawalRequest struct {
	Amount json.RawMessage `json:"amount"`
}

// amount accepts only a JSON integer literal. Fractions, strings and other
// value types are domain.ErrInvalidAmount, not a malformed body.
func (b withdrawalRequest) amount() (int64, error) {
	raw := bytes.TrimSpace(b.Amount)
	if len(raw) == 0 {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %s is not an integer: %w", raw, domain.ErrInvalidAmount)
	}
	return n, nil
}

// GET /api/policy
func (s *Server) handlePolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int64{
		"min_withdrawal": s.svc.Withdrawals.MinWithdrawal(),
	})
}

// POST /api/withdrawals
func (s *Server) handleRequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var body withdrawalRequest
	if err := decodeBody(w, r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}
	amount, err := body.amount()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	req, err := s.svc.Withdrawals.Request(r.Context(), IdentityFrom(r.Context()), amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// GET /api/withdrawals
func (s *Server) handleWithdrawalHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.svc.Withdrawals.History(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// GET /api/admin/withdrawals?status=pending
func (s *Server) handleAllWithdrawals(w http.ResponseWriter, r *http.Request) {
	var status domain.WithdrawalStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, ok := domain.ParseWithdrawalStatus(raw)
		if !ok {
			badRequest(w, fmt.Sprintf("unknown status %q", raw))
			return
		}
		status = parsed
	}
	all, err := s.svc.Withdrawals.All(r.Context(), IdentityFrom(r.Context()), status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// POST /api/admin/withdrawals/{id}/approve
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	req, err := s.svc.Withdrawals.Approve(r.Context(), IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// POST /api/admin/withdrawals/{id}/reject
func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	req, err := s.svc.Withdrawals.Reject(r.Context(), IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// ─── Dashboard ──────────────────────────────────────────────────────────────

// GET /api/dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Dashboard.Stats(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
