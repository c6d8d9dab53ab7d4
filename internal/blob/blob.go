// Package blob abstracts the content-addressable media store.
//
// The store is deliberately dumb: opaque bytes by opaque id, no versioning,
// no metadata. All policy (who may touch an id, what happens when the same
// id is written twice) lives in the service layer, which also keeps a
// byte-cache in front of this store as a materialized copy.
package blob

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get when no blob is stored under the id.
var ErrNotExist = errors.New("blob does not exist")

// Store is the contract every blob backend implements.
// Delete is idempotent: removing an absent blob is not an error.
type Store interface {
	Exists(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) ([]byte, error)
	Put(ctx context.Context, id string, data []byte) error
	Delete(ctx context.Context, id string) error
}
