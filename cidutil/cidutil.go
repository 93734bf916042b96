// Package cidutil derives content identifiers for exported vault documents.
//
// Every document is addressed by a CIDv1 with the "raw" multicodec and a
// sha2-256 multihash over its exact bytes, so two byte-identical exports
// always share a CID.
package cidutil

import (
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Of returns the CIDv1 (raw + sha2-256) of data.
func Of(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// String is Of rendered as text, or "" if the CID could not be computed.
func String(data []byte) string {
	id, err := Of(data)
	if err != nil {
		return ""
	}
	return id.String()
}

// Parse decodes s and rejects the undefined CID.
func Parse(s string) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, errors.New("cidutil: undefined cid")
	}
	return id, nil
}

// Matches reports whether data hashes to id.
func Matches(id cid.Cid, data []byte) bool {
	got, err := Of(data)
	if err != nil {
		return false
	}
	return got.Equals(id)
}
