package vault

import (
	"encoding/json"
	"errors"

	"xdao.co/vault/identity"
)

// document is the wire form of a Vault. Field order is the order of the
// serialized object and must stay fixed for byte-stable exports.
type document struct {
	PrimaryIdentity     identity.Identity   `json:"primary_identity"`
	SecondaryIdentities []identity.Identity `json:"secondary_identities,omitempty"`
	VaultKeys           []keyEntry          `json:"vault_keys"`
	ExternalVaults      []*Vault            `json:"external_vaults"`
}

// incoming is used for decoding so that absent and empty fields can be told
// apart.
type incoming struct {
	PrimaryIdentity     *identity.Identity   `json:"primary_identity"`
	SecondaryIdentities *[]identity.Identity `json:"secondary_identities"`
	VaultKeys           []keyEntry           `json:"vault_keys"`
	ExternalVaults      []*Vault             `json:"external_vaults"`
}

func (v *Vault) MarshalJSON() ([]byte, error) {
	d := document{
		PrimaryIdentity:     v.primary,
		SecondaryIdentities: v.secondary,
		VaultKeys:           make([]keyEntry, len(v.keys)),
		ExternalVaults:      v.external,
	}
	for i, k := range v.keys {
		d.VaultKeys[i] = keyEntry{Key: k}
	}
	if d.ExternalVaults == nil {
		d.ExternalVaults = []*Vault{}
	}
	return json.Marshal(d)
}

func (v *Vault) UnmarshalJSON(b []byte) error {
	var in incoming
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if in.PrimaryIdentity == nil {
		return newError(KindDocument, "VAULT-DOC-002", "missing primary_identity")
	}
	out := Vault{primary: *in.PrimaryIdentity}
	if in.SecondaryIdentities != nil {
		if len(*in.SecondaryIdentities) == 0 {
			return newError(KindDocument, "VAULT-DOC-003", "secondary_identities present but empty")
		}
		out.secondary = *in.SecondaryIdentities
	}
	out.keys = make([]Key, 0, len(in.VaultKeys))
	for _, e := range in.VaultKeys {
		out.keys = append(out.keys, e.Key)
	}
	for _, ev := range in.ExternalVaults {
		if ev == nil {
			return newError(KindDocument, "VAULT-DOC-005", "null external vault")
		}
		out.external = append(out.external, ev)
	}
	*v = out
	return nil
}

// ExportWithSecrets serializes the whole tree including secret keys.
// The result must only be written to storage the caller already protects.
func (v *Vault) ExportWithSecrets() ([]byte, error) {
	return marshal(v)
}

// ExportWithoutSecrets serializes Redacted(): identities unchanged, every
// key at every depth reduced to its public form.
func (v *Vault) ExportWithoutSecrets() ([]byte, error) {
	return marshal(v.Redacted())
}

// Parse decodes a document produced by either export. Re-exporting the result
// with the matching export reproduces the input bytes.
func Parse(doc []byte) (*Vault, error) {
	var v Vault
	if err := json.Unmarshal(doc, &v); err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, wrapError(KindDocument, "VAULT-DOC-001", "malformed vault document", err)
	}
	return &v, nil
}

func marshal(v *Vault) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, e
		}
		return nil, wrapError(KindEncode, "VAULT-ENC-002", "encode vault", err)
	}
	return b, nil
}
