// Package keys provides the signing keys held by a vault.
//
// A SigningKey wraps one CRYSTALS-Dilithium (mode 3) keypair. Keys created by
// Generate carry their secret half; keys built from a public key, or returned
// by Redacted, are public-only and can verify but never sign.
//
// Encoding:
//   - public keys, secret keys and signatures are standard padded base64
//   - fingerprints are lowercase hex of the first FingerprintLength bytes of
//     the raw public-key encoding
//
// Errors are returned as *Error values; branch on Kind or RuleID, never on
// the message text. Verify never returns an error.
package keys
