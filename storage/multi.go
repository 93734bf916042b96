package storage

import (
	"context"

	"github.com/ipfs/go-cid"
)

// MultiCAS reads through several stores in a fixed order and writes to the
// first one only.
//
// Order is the slice order; callers choose it explicitly so that lookups are
// deterministic.
type MultiCAS struct {
	Adapters []CAS
}

var _ CAS = MultiCAS{}

func (m MultiCAS) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	if len(m.Adapters) == 0 {
		return cid.Undef, ErrNoBackends
	}
	return m.Adapters[0].Put(ctx, data)
}

// Get returns the first hit. A backend error other than ErrNotFound stops the
// search.
func (m MultiCAS) Get(ctx context.Context, id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	for _, cas := range m.Adapters {
		b, err := cas.Get(ctx, id)
		if err == nil {
			return b, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (m MultiCAS) Has(ctx context.Context, id cid.Cid) (bool, error) {
	return anyHas(ctx, id, m.Adapters)
}

func anyHas(ctx context.Context, id cid.Cid, stores []CAS) (bool, error) {
	if !id.Defined() {
		return false, nil
	}
	var firstErr error
	for _, cas := range stores {
		ok, err := cas.Has(ctx, id)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, firstErr
}
