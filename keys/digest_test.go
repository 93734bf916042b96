package keys

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		alg  string
		want string
	}{
		{alg: "sha256", want: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		{alg: "sha3-256", want: "3338be694f50c5f338814986cdf0686453a888b84f424d792af4b9202398f392"},
	}
	for _, tt := range tests {
		t.Run(tt.alg, func(t *testing.T) {
			got, err := Digest(tt.alg, []byte("hello"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, hex.EncodeToString(got))
		})
	}

	got, err := Digest("sha512", []byte("hello"))
	require.NoError(t, err)
	assert.Len(t, got, 64)
}

func TestDigest_Unsupported(t *testing.T) {
	_, err := Digest("md5", []byte("hello"))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDigest))
	assert.Equal(t, "VAULT-KEY-301", RuleID(err))
}

func TestDigest_SignedDigestVerifies(t *testing.T) {
	k, err := GenerateFrom(&deterministicReader{})
	require.NoError(t, err)

	d, err := Digest("sha3-256", []byte("a large file"))
	require.NoError(t, err)
	sig, err := k.Sign(d)
	require.NoError(t, err)
	assert.True(t, k.Verify(d, sig))
}
