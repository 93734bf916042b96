package vaultstore

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"xdao.co/vault/storage"
	"xdao.co/vault/vault"
)

// Archive puts vault exports into a CAS and reads them back.
//
// The CID covers the exact document bytes, so the same vault exported twice
// lands on the same CID.
type Archive struct {
	cas storage.CAS
	log *zap.Logger
}

// NewArchive wraps cas. A nil logger discards output.
func NewArchive(cas storage.CAS, log *zap.Logger) *Archive {
	if log == nil {
		log = zap.NewNop()
	}
	return &Archive{cas: cas, log: log}
}

// PutPublic stores the export of v with every secret key stripped.
func (a *Archive) PutPublic(ctx context.Context, v *vault.Vault) (cid.Cid, error) {
	doc, err := v.ExportWithoutSecrets()
	if err != nil {
		return cid.Undef, err
	}
	return a.put(ctx, doc, false)
}

// PutSecret stores the full export of v, secret keys included. The CAS
// backend must be trusted with that material.
func (a *Archive) PutSecret(ctx context.Context, v *vault.Vault) (cid.Cid, error) {
	doc, err := v.ExportWithSecrets()
	if err != nil {
		return cid.Undef, err
	}
	return a.put(ctx, doc, true)
}

// Get fetches the document at id and parses it.
func (a *Archive) Get(ctx context.Context, id cid.Cid) (*vault.Vault, error) {
	doc, err := a.cas.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("vaultstore: get %s: %w", id, err)
	}
	v, err := vault.Parse(doc)
	if err != nil {
		return nil, err
	}
	a.log.Debug("vault fetched", zap.Stringer("cid", id))
	return v, nil
}

func (a *Archive) put(ctx context.Context, doc []byte, secret bool) (cid.Cid, error) {
	id, err := a.cas.Put(ctx, doc)
	if err != nil {
		return cid.Undef, fmt.Errorf("vaultstore: put: %w", err)
	}
	a.log.Info("vault archived", zap.Stringer("cid", id), zap.Bool("secret", secret), zap.Int("bytes", len(doc)))
	return id, nil
}
