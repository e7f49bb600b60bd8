package backend

import (
	"context"

	"github.com/dmitrijs2005/gymrecord/internal/client/models"
)

// SessionListener receives backend session changes in the order they happened.
// Implementations must not block: the auth client calls listeners while
// holding its emission lock.
type SessionListener func(change models.SessionChange)

type AuthClient interface {
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	// SignUp returns a nil session without error when the account awaits
	// e-mail verification.
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	SignInWithIDToken(ctx context.Context, provider, idToken string) (*models.Session, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*models.Session, error)
	OnSessionChange(listener SessionListener) (unsubscribe func())
}

// Eq is an equality filter on a single column.
type Eq struct {
	Column string
	Value  string
}

type DataClient interface {
	// Select decodes all matching rows into dest, which must point to a slice.
	Select(ctx context.Context, table, columns string, filters []Eq, dest any) error
	// SelectOne decodes exactly one row into dest; no row yields ErrNotFound.
	SelectOne(ctx context.Context, table, columns string, filters []Eq, dest any) error
	// Upsert inserts row or merges it into the row with the same primary key.
	Upsert(ctx context.Context, table string, row any) error
	// RPC calls a stored procedure and decodes its result into dest (may be nil).
	RPC(ctx context.Context, fn string, args any, dest any) error
}

type UploadOptions struct {
	ContentType string
	Upsert      bool
}

type ObjectStorage interface {
	Upload(ctx context.Context, bucket, name string, data []byte, opts UploadOptions) error
	PublicURL(bucket, name string) string
}

// TokenSource yields the access token for authenticated requests, or "" to
// fall back to the public key.
type TokenSource func() string
