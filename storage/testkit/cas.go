// Package testkit holds the conformance suite every CAS backend must pass.
package testkit

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/vault/cidutil"
	"xdao.co/vault/storage"
)

// NewCAS constructs a fresh, empty CAS instance for a test.
// The returned CAS must be isolated from other tests.
type NewCAS func(t *testing.T) storage.CAS

// sampleDocument is shaped like a public vault export so backends see
// realistic payloads.
var sampleDocument = []byte(`{"primary_identity":{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com"},"vault_keys":[],"external_vaults":[]}`)

func RunCASConformance(t *testing.T, newCAS NewCAS) {
	t.Helper()
	ctx := context.Background()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		cas := newCAS(t)

		id, err := cas.Put(ctx, sampleDocument)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		wantID, err := cidutil.Of(sampleDocument)
		if err != nil {
			t.Fatalf("cidutil.Of failed: %v", err)
		}
		if !id.Equals(wantID) {
			t.Fatalf("Put CID mismatch: got %s want %s", id, wantID)
		}

		got, err := cas.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, sampleDocument) {
			t.Fatalf("Get bytes mismatch")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		cas := newCAS(t)

		id1, err := cas.Put(ctx, sampleDocument)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := cas.Put(ctx, sampleDocument)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if !id1.Equals(id2) {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("missing")
		id, err := cidutil.Of(b)
		if err != nil {
			t.Fatalf("cidutil.Of failed: %v", err)
		}

		ok, err := cas.Has(ctx, id)
		if err != nil {
			t.Fatalf("Has failed: %v", err)
		}
		if ok {
			t.Fatalf("Has returned true for missing CID")
		}
		if _, err := cas.Get(ctx, id); !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}

		if _, err := cas.Put(ctx, b); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		ok, err = cas.Has(ctx, id)
		if err != nil {
			t.Fatalf("Has failed: %v", err)
		}
		if !ok {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		cas := newCAS(t)
		var undef cid.Cid
		ok, _ := cas.Has(ctx, undef)
		if ok {
			t.Fatalf("Has should be false for undefined CID")
		}
		if _, err := cas.Get(ctx, undef); !errors.Is(err, storage.ErrInvalidCID) {
			t.Fatalf("Get undefined: got err=%v want ErrInvalidCID", err)
		}
	})
}
