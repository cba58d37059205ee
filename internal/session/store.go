// Package session tracks opaque bearer tokens issued at login. A token
// maps to exactly one user id and expires a fixed duration after it is
// minted; resolution never extends the lifetime.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	// Create mints a fresh random token for userID and stores it with
	// the given TTL.
	Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error)
	// Get resolves a token to its user id. Unknown and expired tokens
	// both return ErrNotFound.
	Get(ctx context.Context, token string) (uuid.UUID, error)
	// Delete removes the session for token; ErrNotFound if no live
	// session exists.
	Delete(ctx context.Context, token string) error
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
