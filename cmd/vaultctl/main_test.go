package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/vault/cidutil"
	"xdao.co/vault/vault"
)

type env struct {
	t        *testing.T
	vaultDir string
	casDir   string
}

func newEnv(t *testing.T) *env {
	root := t.TempDir()
	return &env{t: t, vaultDir: filepath.Join(root, "vaults"), casDir: filepath.Join(root, "cas")}
}

func (e *env) run(stdin string, args ...string) (string, string, int) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--dir", e.vaultDir, "--localfs-dir", e.casDir}, args...)
	code := run(full, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), code
}

func (e *env) mustRun(args ...string) string {
	e.t.Helper()
	out, errOut, code := e.run("", args...)
	require.Equal(e.t, 0, code, "vaultctl %v: %s", args, errOut)
	return out
}

func (e *env) create(name, email string) {
	e.t.Helper()
	e.mustRun("init", "--name", name, "--first", "Test", "--last", "User", "--email", email)
}

func (e *env) load(name string) *vault.Vault {
	e.t.Helper()
	v, err := vault.Parse([]byte(e.mustRun("export", "--name", name)))
	require.NoError(e.t, err)
	return v
}

func writeTemp(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "msg.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestInitListAndKeys(t *testing.T) {
	e := newEnv(t)
	e.create("alice", "alice@example.com")
	e.create("bob", "bob@example.com")

	assert.Equal(t, "alice\nbob\n", e.mustRun("list"))

	_, _, code := e.run("", "init", "--name", "alice", "--email", "other@example.com")
	assert.Equal(t, 1, code, "init must not overwrite without --force")

	fp := strings.TrimSpace(e.mustRun("key", "add", "--name", "alice"))
	out := e.mustRun("key", "list", "--name", "alice")
	assert.Contains(t, out, fp)
	assert.Equal(t, 2, strings.Count(out, "Signing"))
	assert.Equal(t, 2, strings.Count(out, "secret"))
}

func TestIdentityAdd(t *testing.T) {
	e := newEnv(t)
	e.create("alice", "alice@example.com")

	_, ok := e.load("alice").SecondaryIdentities()
	assert.False(t, ok)

	e.mustRun("identity", "add", "--name", "alice", "--email", "a@work.example", "--comment", "work")
	e.mustRun("identity", "add", "--name", "alice", "--email", "a@home.example")

	ids, ok := e.load("alice").SecondaryIdentities()
	require.True(t, ok)
	require.Len(t, ids, 2)
	assert.Equal(t, "a@work.example", ids[0].Email())
	c, hasComment := ids[0].Comment()
	assert.True(t, hasComment)
	assert.Equal(t, "work", c)
	_, hasComment = ids[1].Comment()
	assert.False(t, hasComment)
}

func TestExportPublic(t *testing.T) {
	e := newEnv(t)
	e.create("alice", "alice@example.com")

	secret := e.mustRun("export", "--name", "alice")
	public := e.mustRun("export", "--name", "alice", "--public")
	assert.Contains(t, secret, `"sk"`)
	assert.NotContains(t, public, `"sk"`)
}

func TestSignVerify(t *testing.T) {
	e := newEnv(t)
	e.create("alice", "alice@example.com")
	file := writeTemp(t, "hello")
	other := writeTemp(t, "hello!")

	sig := strings.TrimSpace(e.mustRun("sign", "--name", "alice", file))
	assert.Contains(t, e.mustRun("verify", "--name", "alice", "--sig", sig, file), "signature OK")

	_, errOut, code := e.run("", "verify", "--name", "alice", "--sig", sig, other)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "INVALID")

	_, _, code = e.run("", "verify", "--name", "alice", "--sig", "not base64", file)
	assert.Equal(t, 1, code)

	pk := e.load("alice").PublicKeys()[0].(vault.Signing).Key.PublicKey()
	assert.Contains(t, e.mustRun("verify", "--pk", pk, "--sig", sig, file), "signature OK")

	// Pre-hashed signatures only verify with the same hash.
	hashed := strings.TrimSpace(e.mustRun("sign", "--name", "alice", "--hash", "sha3-256", file))
	e.mustRun("verify", "--name", "alice", "--hash", "sha3-256", "--sig", hashed, file)
	_, _, code = e.run("", "verify", "--name", "alice", "--sig", hashed, file)
	assert.Equal(t, 1, code)

	// stdin input.
	out, _, code := e.run("hello", "sign", "--name", "alice", "-")
	require.Equal(t, 0, code)
	e.mustRun("verify", "--name", "alice", "--sig", strings.TrimSpace(out), file)
}

func TestSignWithSelectedKey(t *testing.T) {
	e := newEnv(t)
	e.create("alice", "alice@example.com")
	fp := strings.TrimSpace(e.mustRun("key", "add", "--name", "alice"))
	file := writeTemp(t, "doc")

	sig := strings.TrimSpace(e.mustRun("sign", "--name", "alice", "--key", fp, file))
	e.mustRun("verify", "--name", "alice", "--key", fp, "--sig", sig, file)

	_, _, code := e.run("", "verify", "--name", "alice", "--sig", sig, file)
	assert.Equal(t, 1, code, "default key is the first one")

	_, _, code = e.run("", "sign", "--name", "alice", "--key", "00112233", file)
	assert.Equal(t, 1, code)
}

func TestFingerprintAndCID(t *testing.T) {
	e := newEnv(t)
	e.create("alice", "alice@example.com")
	k := e.load("alice").PublicKeys()[0].(vault.Signing).Key

	assert.Equal(t, "Fingerprint: "+k.Fingerprint()+"\n", e.mustRun("fingerprint", k.PublicKey()))

	file := writeTemp(t, "some document")
	assert.Equal(t, cidutil.String([]byte("some document"))+"\n", e.mustRun("cid", file))
}

func TestPutGetAttach(t *testing.T) {
	e := newEnv(t)
	e.create("alice", "alice@example.com")
	e.create("bob", "bob@example.com")

	publicCID := strings.TrimSpace(e.mustRun("put", "--name", "bob"))
	doc := e.mustRun("get", publicCID)
	assert.NotContains(t, doc, `"sk"`)
	assert.Equal(t, e.mustRun("export", "--name", "bob", "--public"), doc)

	e.mustRun("attach", "--name", "alice", "--cid", publicCID)
	alice := e.load("alice")
	require.Len(t, alice.ExternalVaults(), 1)
	assert.Equal(t, "bob@example.com", alice.ExternalVaults()[0].PrimaryIdentity().Email())

	secretCID := strings.TrimSpace(e.mustRun("put", "--name", "alice", "--secret"))
	assert.NotEqual(t, publicCID, secretCID)
	e.mustRun("get", secretCID, "--save", "restored")
	assert.Equal(t, e.mustRun("export", "--name", "alice"), e.mustRun("export", "--name", "restored"))

	_, _, code := e.run("", "get", "not-a-cid")
	assert.Equal(t, 1, code)
}

func TestAttachFromFileAndVault(t *testing.T) {
	e := newEnv(t)
	e.create("alice", "alice@example.com")
	e.create("bob", "bob@example.com")
	e.create("carol", "carol@example.com")

	e.mustRun("attach", "--name", "alice", "--vault", "bob")
	carolDoc := e.mustRun("export", "--name", "carol", "--public")
	_, errOut, code := e.run(carolDoc, "attach", "--name", "alice", "--file", "-")
	require.Equal(t, 0, code, errOut)

	out := e.mustRun("key", "list", "--name", "alice")
	assert.Contains(t, out, "bob@example.com")
	assert.Contains(t, out, "carol@example.com")
	assert.Equal(t, 2, strings.Count(out, "secret"), "alice and attached bob keep secrets; carol is public")

	_, _, code = e.run("", "attach", "--name", "alice", "--vault", "bob", "--file", "x")
	assert.Equal(t, 1, code)
}

func TestBackends(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun("backends")
	assert.Contains(t, out, "grpc\t")
	assert.Contains(t, out, "localfs\t")
}

func TestCASConfigFile(t *testing.T) {
	e := newEnv(t)
	e.create("alice", "alice@example.com")
	mirror := filepath.Join(t.TempDir(), "mirror")
	cfg := filepath.Join(t.TempDir(), "cas.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`write_policy: all
backends:
  - name: localfs
    id: main
    config:
      localfs-dir: `+e.casDir+`
  - name: localfs
    id: mirror
    config:
      localfs-dir: `+mirror+`
`), 0o600))

	id := strings.TrimSpace(e.mustRun("--cas-config", cfg, "put", "--name", "alice"))
	assert.FileExists(t, filepath.Join(mirror, id[:2], id))
	assert.FileExists(t, filepath.Join(e.casDir, id[:2], id))
}
