package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/watchearn-network/watchearn/internal/domain"
)

// ─── Caller Identity ────────────────────────────────────────────────────────
// Callers authenticate with an HS256 bearer token whose subject is their
// identity. Requests without a token proceed anonymously; a malformed or
// expired token is rejected with 401.

type contextKey string

const identityKey contextKey = "watchearn-identity"

// IdentityFrom returns the caller identity stored by TokenAuth.Middleware,
// or "" for anonymous requests.
func IdentityFrom(ctx context.Context) domain.Identity {
	id, _ := ctx.Value(identityKey).(domain.Identity)
	return id
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// TokenAuth issues and verifies identity tokens.
type TokenAuth struct {
	secret []byte
	issuer string
	now    func() time.Time // injectable clock
}

// NewTokenAuth creates a verifier for tokens signed with secret.
func NewTokenAuth(secret, issuer string) (*TokenAuth, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("jwt secret must be at least 16 bytes")
	}
	return &TokenAuth{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Issue mints a token for id valid for ttl.
func (a *TokenAuth) Issue(id domain.Identity, ttl time.Duration) (string, error) {
	if id == "" {
		return "", domain.ErrUnauthenticated
	}
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   string(id),
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses token and returns its subject.
func (a *TokenAuth) Verify(token string) (domain.Identity, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return "", fmt.Errorf("%w: token has no subject", domain.ErrUnauthenticated)
	}
	return domain.Identity(claims.Subject), nil
}

// Middleware resolves the caller identity from the Authorization header.
func (a *TokenAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authorization header must be a bearer token", false)
			return
		}
		id, err := a.Verify(strings.TrimSpace(raw))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error(), false)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}
