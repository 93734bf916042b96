package casconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/vault/storage"
	"xdao.co/vault/storage/casregistry"
	"xdao.co/vault/storage/localfs"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_YAMLAndJSON(t *testing.T) {
	yml := writeFile(t, "cas.yaml", `
write_policy: all
backends:
  - name: localfs
    id: primary
    config:
      localfs-dir: /tmp/a
  - name: localfs
    id: mirror
    config:
      localfs-dir: /tmp/b
`)
	js := writeFile(t, "cas.json", `{"write_policy":"all","backends":[
		{"name":"localfs","id":"primary","config":{"localfs-dir":"/tmp/a"}},
		{"name":"localfs","id":"mirror","config":{"localfs-dir":"/tmp/b"}}]}`)

	fromYAML, err := LoadFile(yml)
	require.NoError(t, err)
	fromJSON, err := LoadFile(js)
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
	assert.Equal(t, WriteAll, fromYAML.WritePolicy)
	assert.Equal(t, "/tmp/b", fromYAML.Backends[1].Config[localfs.DirKey])
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile("")
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "bad.json", `{`))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "empty.yml", "backends: []\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"single", Config{Backends: []BackendConfig{{Name: "localfs"}}}, true},
		{"no backends", Config{}, false},
		{"missing name", Config{Backends: []BackendConfig{{ID: "x"}}}, false},
		{"duplicate id", Config{Backends: []BackendConfig{{Name: "localfs"}, {Name: "localfs"}}}, false},
		{"distinct ids", Config{Backends: []BackendConfig{{Name: "localfs", ID: "a"}, {Name: "localfs", ID: "b"}}}, true},
		{"bad policy", Config{WritePolicy: "some", Backends: []BackendConfig{{Name: "localfs"}}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func twoDirs(t *testing.T, policy string) (Config, string, string) {
	a, b := t.TempDir(), t.TempDir()
	return Config{
		WritePolicy: policy,
		Backends: []BackendConfig{
			{Name: "localfs", ID: "a", Config: map[string]string{localfs.DirKey: a}},
			{Name: "localfs", ID: "b", Config: map[string]string{localfs.DirKey: b}},
		},
	}, a, b
}

func stored(t *testing.T, dir, id string) bool {
	_, err := os.Stat(filepath.Join(dir, id[:2], id))
	return err == nil
}

func TestOpen_WriteAllReplicates(t *testing.T) {
	cfg, a, b := twoDirs(t, WriteAll)
	cas, closeFn, err := cfg.Open(casregistry.UsageCLI, "")
	require.NoError(t, err)
	defer closeFn()
	require.IsType(t, storage.ReplicatingCAS{}, cas)

	id, err := cas.Put(context.Background(), []byte("doc"))
	require.NoError(t, err)
	assert.True(t, stored(t, a, id.String()))
	assert.True(t, stored(t, b, id.String()))
}

func TestOpen_WriteFirstHonoursPreferred(t *testing.T) {
	cfg, a, b := twoDirs(t, "")
	cas, closeFn, err := cfg.Open(casregistry.UsageCLI, "b")
	require.NoError(t, err)
	defer closeFn()
	require.IsType(t, storage.MultiCAS{}, cas)

	id, err := cas.Put(context.Background(), []byte("doc"))
	require.NoError(t, err)
	assert.False(t, stored(t, a, id.String()))
	assert.True(t, stored(t, b, id.String()))

	_, _, err = cfg.Open(casregistry.UsageCLI, "nope")
	assert.Error(t, err)
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := Config{Backends: []BackendConfig{{Name: "does-not-exist"}}}
	_, _, err := cfg.Open(casregistry.UsageCLI, "")
	assert.Error(t, err)
}
