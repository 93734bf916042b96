// Package vault composes identities and keys into an exportable aggregate.
//
// A Vault owns one primary identity, optional secondary identities, an
// ordered list of keys and an ordered list of nested vaults. Nested vaults are
// held by value: attaching a vault stores an independent copy, so the
// containment relation is always a finite tree.
//
// Two exports exist. ExportWithSecrets is for local persistence that is
// already protected by the caller. ExportWithoutSecrets strips secret key
// material at every level of nesting and is safe to hand to others.
package vault

import (
	"xdao.co/vault/identity"
	"xdao.co/vault/keys"
)

// Vault is the aggregate root.
//
// The only mutators are AddSecondaryIdentity and AddExternalVault. Concurrent
// reads are safe; concurrent mutation of one Vault must be serialised by the
// caller.
type Vault struct {
	primary   identity.Identity
	secondary []identity.Identity // nil until the first AddSecondaryIdentity
	keys      []Key
	external  []*Vault
}

// New builds a vault from caller-supplied parts. A nil or empty secondary
// list leaves secondary identities absent. No keys are generated here.
func New(primary identity.Identity, secondary []identity.Identity, keyList []Key) *Vault {
	v := &Vault{primary: primary}
	if len(secondary) > 0 {
		v.secondary = append([]identity.Identity(nil), secondary...)
	}
	v.keys = append([]Key(nil), keyList...)
	return v
}

func (v *Vault) PrimaryIdentity() identity.Identity { return v.primary }

// SecondaryIdentities returns a copy of the secondary identities and whether
// the field has ever been populated.
func (v *Vault) SecondaryIdentities() ([]identity.Identity, bool) {
	if v.secondary == nil {
		return nil, false
	}
	return append([]identity.Identity(nil), v.secondary...), true
}

// AddSecondaryIdentity appends id, creating the list on first use.
func (v *Vault) AddSecondaryIdentity(id identity.Identity) {
	v.secondary = append(v.secondary, id)
}

// SecretKeys returns the full, unredacted key list. Keep it in-process.
func (v *Vault) SecretKeys() []Key {
	return append([]Key(nil), v.keys...)
}

// PublicKeys returns the key list with secret material stripped from every
// entry, in the same order.
func (v *Vault) PublicKeys() []Key {
	return publicKeys(v.keys)
}

// ExternalVaults returns copies of the nested vaults, in order.
func (v *Vault) ExternalVaults() []*Vault {
	out := make([]*Vault, len(v.external))
	for i, ev := range v.external {
		out[i] = ev.clone()
	}
	return out
}

// AddExternalVault attaches a copy of ev. Later changes to ev are not
// reflected; attaching a vault to itself nests a snapshot of it.
func (v *Vault) AddExternalVault(ev *Vault) {
	if ev == nil {
		return
	}
	v.external = append(v.external, ev.clone())
}

// SigningKey returns this vault's signing key with the given fingerprint.
// Nested vaults are not searched.
func (v *Vault) SigningKey(fingerprint string) (*keys.SigningKey, bool) {
	for _, k := range v.keys {
		if s, ok := k.(Signing); ok && s.Key != nil && s.Key.Fingerprint() == fingerprint {
			return s.Key, true
		}
	}
	return nil, false
}

// Redacted returns a deep copy with every key, at every level of nesting,
// replaced by its public counterpart. Identities are kept as they are.
func (v *Vault) Redacted() *Vault {
	out := &Vault{primary: v.primary, keys: publicKeys(v.keys)}
	if v.secondary != nil {
		out.secondary = append([]identity.Identity(nil), v.secondary...)
	}
	if len(v.external) > 0 {
		out.external = make([]*Vault, len(v.external))
		for i, ev := range v.external {
			out.external[i] = ev.Redacted()
		}
	}
	return out
}

func (v *Vault) clone() *Vault {
	out := &Vault{primary: v.primary, keys: append([]Key(nil), v.keys...)}
	if v.secondary != nil {
		out.secondary = append([]identity.Identity(nil), v.secondary...)
	}
	if len(v.external) > 0 {
		out.external = make([]*Vault, len(v.external))
		for i, ev := range v.external {
			out.external[i] = ev.clone()
		}
	}
	return out
}
