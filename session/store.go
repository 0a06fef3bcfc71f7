package session

import (
	"context"

	"github.com/jrsteele09/go-teetime/internal/errors"
)

// Persisted field names, one set per browser session
const (
	KeyIDToken      = "idToken"
	KeyRefreshToken = "refreshToken"
	KeyExpiresAt    = "expiresAt" // absolute epoch millis, decimal string
	KeyUserName     = "userName"
)

// Keys lists every persisted field
var Keys = []string{KeyIDToken, KeyRefreshToken, KeyExpiresAt, KeyUserName}

var errNoSessionID = errors.Wrapf(errors.ErrSessionNotFound, "sid is required")

// KVStore persists the session fields of each browser session. Writes are applied immediately.
type KVStore interface {
	// Get returns the stored fields; an unknown sid yields an empty map
	Get(ctx context.Context, sid string) (map[string]string, error)
	// Set writes fields, leaving the others untouched
	Set(ctx context.Context, sid string, fields map[string]string) error
	// Delete removes the named fields
	Delete(ctx context.Context, sid string, keys ...string) error
}
