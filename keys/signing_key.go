package keys

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

// FingerprintLength is the number of public-key bytes covered by a fingerprint.
const FingerprintLength = 16

// PublicKeySize, SecretKeySize and SignatureSize are the raw encoding sizes
// of the underlying scheme.
const (
	PublicKeySize = mode3.PublicKeySize
	SecretKeySize = mode3.PrivateKeySize
	SignatureSize = mode3.SignatureSize
)

// keypairProbe is signed and verified when a stored secret key is decoded, to
// check it belongs to the stored public key.
var keypairProbe = []byte("xdao-vault/keypair-check/v1")

// SigningKey wraps one signing keypair.
//
// The secret half is present only for keys produced by Generate (or decoded
// from a document that carried it). A SigningKey is immutable and safe for
// concurrent use.
type SigningKey struct {
	pk    *mode3.PublicKey
	pkRaw []byte

	sk    *mode3.PrivateKey
	skRaw []byte

	fingerprint string
}

// Generate returns a new keypair drawn from crypto/rand.
func Generate() (*SigningKey, error) {
	return GenerateFrom(rand.Reader)
}

// GenerateFrom returns a new keypair drawn from r. Tests pass a
// deterministic reader; a nil r means crypto/rand.
func GenerateFrom(r io.Reader) (*SigningKey, error) {
	if r == nil {
		r = rand.Reader
	}
	pk, sk, err := mode3.GenerateKey(r)
	if err != nil {
		return nil, err
	}
	pkRaw := pk.Bytes()
	return &SigningKey{
		pk:          pk,
		pkRaw:       pkRaw,
		sk:          sk,
		skRaw:       sk.Bytes(),
		fingerprint: fingerprintOf(pkRaw),
	}, nil
}

// FromPublicKey builds a public-only key from its base64 encoding.
//
// It fails with KindInvalidEncoding when the text is not base64 and with
// KindInvalidKey when the bytes are not a public key of the scheme.
func FromPublicKey(encoded string) (*SigningKey, error) {
	pk, raw, err := decodePublicKey(encoded)
	if err != nil {
		return nil, err
	}
	return &SigningKey{pk: pk, pkRaw: raw, fingerprint: fingerprintOf(raw)}, nil
}

// Sign returns the base64 detached signature of message.
func (k *SigningKey) Sign(message []byte) (string, error) {
	if k == nil || k.sk == nil {
		return "", newError(KindNoSecretKey, "VAULT-KEY-201", "no secret key available")
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(k.sk, message, sig)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify reports whether signature is a valid base64 signature of message
// under this key. Malformed input and a failed check both give false.
func (k *SigningKey) Verify(message []byte, signature string) bool {
	if k == nil || k.pk == nil {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	if len(sig) != mode3.SignatureSize {
		return false
	}
	return mode3.Verify(k.pk, message, sig)
}

// Redacted returns a copy sharing the public key and fingerprint, with the
// secret key removed.
func (k *SigningKey) Redacted() *SigningKey {
	if k == nil {
		return nil
	}
	return &SigningKey{pk: k.pk, pkRaw: k.pkRaw, fingerprint: k.fingerprint}
}

// PublicKey returns the base64 public key.
func (k *SigningKey) PublicKey() string {
	if k == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(k.pkRaw)
}

// SecretKey returns the base64 secret key and true, or "" and false for a
// public-only key.
func (k *SigningKey) SecretKey() (string, bool) {
	if k == nil || k.sk == nil {
		return "", false
	}
	return base64.StdEncoding.EncodeToString(k.skRaw), true
}

// HasSecret reports whether the key can sign.
func (k *SigningKey) HasSecret() bool { return k != nil && k.sk != nil }

func (k *SigningKey) Fingerprint() string {
	if k == nil {
		return ""
	}
	return k.fingerprint
}

type wireSigningKey struct {
	PK          string  `json:"pk"`
	SK          *string `json:"sk,omitempty"`
	Fingerprint string  `json:"fingerprint"`
}

// MarshalJSON encodes {"pk", "sk", "fingerprint"}; "sk" is left out entirely
// for public-only keys.
func (k SigningKey) MarshalJSON() ([]byte, error) {
	if k.pk == nil {
		return nil, newError(KindInvalidKey, "VAULT-KEY-100", "empty signing key")
	}
	w := wireSigningKey{
		PK:          base64.StdEncoding.EncodeToString(k.pkRaw),
		Fingerprint: k.fingerprint,
	}
	if k.sk != nil {
		s := base64.StdEncoding.EncodeToString(k.skRaw)
		w.SK = &s
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes and validates a stored key: both halves must be
// well-formed, the secret half must belong to the public half, and the
// fingerprint must match the public key.
func (k *SigningKey) UnmarshalJSON(b []byte) error {
	var w wireSigningKey
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	pk, pkRaw, err := decodePublicKey(w.PK)
	if err != nil {
		return err
	}
	out := SigningKey{pk: pk, pkRaw: pkRaw, fingerprint: fingerprintOf(pkRaw)}
	if w.Fingerprint != out.fingerprint {
		return newError(KindInvalidKey, "VAULT-KEY-104", "fingerprint does not match public key")
	}
	if w.SK != nil {
		skRaw, err := base64.StdEncoding.DecodeString(*w.SK)
		if err != nil {
			return wrapError(KindInvalidEncoding, "VAULT-KEY-002", "invalid secret key base64", err)
		}
		var sk mode3.PrivateKey
		if err := sk.UnmarshalBinary(skRaw); err != nil {
			return wrapError(KindInvalidKey, "VAULT-KEY-102", "invalid secret key", err)
		}
		sig := make([]byte, mode3.SignatureSize)
		mode3.SignTo(&sk, keypairProbe, sig)
		if !mode3.Verify(pk, keypairProbe, sig) {
			return newError(KindInvalidKey, "VAULT-KEY-103", "secret key does not belong to public key")
		}
		out.sk = &sk
		out.skRaw = skRaw
	}
	*k = out
	return nil
}

func decodePublicKey(encoded string) (*mode3.PublicKey, []byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, nil, wrapError(KindInvalidEncoding, "VAULT-KEY-001", "invalid public key base64", err)
	}
	var pk mode3.PublicKey
	if err := pk.UnmarshalBinary(raw); err != nil {
		return nil, nil, wrapError(KindInvalidKey, "VAULT-KEY-101", "invalid public key", err)
	}
	return &pk, raw, nil
}

func fingerprintOf(pkRaw []byte) string {
	n := FingerprintLength
	if len(pkRaw) < n {
		n = len(pkRaw)
	}
	return hex.EncodeToString(pkRaw[:n])
}
