package sessions

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Session is the server-side state behind a session cookie.
type Session struct {
	Authenticated bool
	Username      string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// Store keeps session state keyed by opaque session id. Implementations must
// be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Set(ctx context.Context, id string, s Session) error
	Destroy(ctx context.Context, id string) error
}
