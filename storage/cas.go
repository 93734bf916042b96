// Package storage defines the content-addressed store that holds exported
// vault documents, plus adapters that combine several stores.
//
// The store only ever sees bytes. Whether those bytes contain secret key
// material is decided by the caller's choice of export; confidentiality of a
// backend holding secret exports is the operator's responsibility.
package storage

import (
	"context"

	"github.com/ipfs/go-cid"
)

// CAS is a minimal content-addressable storage interface.
//
// Contract:
//   - Put is idempotent and returns the CID derived from the bytes written.
//   - Stored objects are immutable.
//   - Get returns ErrNotFound when the CID is absent and never returns bytes
//     that do not hash to the requested CID.
//   - The undefined CID is rejected with ErrInvalidCID.
type CAS interface {
	Put(ctx context.Context, data []byte) (cid.Cid, error)
	Get(ctx context.Context, id cid.Cid) ([]byte, error)
	Has(ctx context.Context, id cid.Cid) (bool, error)
}
