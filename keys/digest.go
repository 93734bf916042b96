package keys

import (
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/sha3"
)

// Digest pre-hashes message with hashAlg, one of: sha256, sha512, sha3-256.
// Signing the digest instead of the message keeps signatures over large
// files cheap; the verifier must apply the same algorithm.
func Digest(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, newError(KindDigest, "VAULT-KEY-301", "unsupported hash algorithm: "+hashAlg)
	}
}
