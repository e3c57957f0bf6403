// Package auth is the client's boundary with session management: it holds the
// bearer token and checks expiry locally so a doomed request never leaves the
// machine. Issuing and refreshing tokens happens elsewhere.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenExpired = errors.New("bearer token expired")

// TokenSource yields the bearer token to attach to outgoing requests.
type TokenSource interface {
	Token() (string, error)
}

// Bearer is a static token source. The exp claim is parsed without signature
// verification (the client has no key and does not need one) purely to fail
// fast before a network round-trip.
type Bearer struct {
	mu  sync.RWMutex
	raw string
	exp time.Time
	now func() time.Time
}

func NewBearer(raw string) *Bearer {
	b := &Bearer{now: time.Now}
	b.Set(raw)
	return b
}

// Set replaces the token, re-reading its expiry claim.
func (b *Bearer) Set(raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.raw = raw
	b.exp = time.Time{}

	if raw == "" {
		return
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		// Opaque (non-JWT) tokens are fine; we just can't pre-check expiry.
		return
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		b.exp = exp.Time
	}
}

func (b *Bearer) Token() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.exp.IsZero() && b.now().After(b.exp) {
		return "", ErrTokenExpired
	}
	return b.raw, nil
}
