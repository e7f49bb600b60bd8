// Package metadata is the client's local persistent key-value store. It keeps
// the persisted backend session and the legacy cached Google identity.
package metadata

import (
	"context"
)

// Repository is a string-keyed blob store. Get returns (nil, nil) for a
// missing key; Delete of a missing key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
