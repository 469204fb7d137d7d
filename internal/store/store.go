package store

import (
	"context"
	"errors"
)

// TokenKey is the single well-known key the bearer token is persisted under.
const TokenKey = "token"

// Sentinel errors shared across all backend implementations.
var (
	ErrTokenNotFound = errors.New("no persisted token")
	ErrStoreClosed   = errors.New("token store closed")
)

// TokenStore defines the contract that every backend (SQLite, Redis, memory)
// must satisfy. The bearer token is the only state that survives a restart.
type TokenStore interface {
	// LoadToken returns ErrTokenNotFound when nothing is persisted.
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	// DeleteToken succeeds when no token is persisted.
	DeleteToken(ctx context.Context) error

	// --- Lifecycle ---
	Close()
}
