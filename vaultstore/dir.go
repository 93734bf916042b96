// Package vaultstore keeps vault documents on disk by name and archives
// exports in a content-addressed store.
package vaultstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"xdao.co/vault/vault"
)

const fileExt = ".vault.json"

// ErrNotFound is returned by Load when no vault is stored under the name.
var ErrNotFound = errors.New("vaultstore: vault not found")

// Dir stores secret vault exports as files under Directory, one per name.
//
// Files hold secret key material and are created 0600 inside a 0700
// directory.
type Dir struct {
	Directory string
	log       *zap.Logger
}

// DefaultDirectory returns ~/.xdao/vaults.
func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".xdao", "vaults"), nil
}

// OpenDir returns a Dir rooted at directory, or at DefaultDirectory when
// directory is empty. A nil logger discards output.
func OpenDir(directory string, log *zap.Logger) (*Dir, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dir{Directory: directory, log: log}, nil
}

// CheckName reports whether name is usable as a vault file name.
func CheckName(name string) error {
	if name == "" {
		return errors.New("vault name cannot be empty")
	}
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in vault name", char)
	}
	return nil
}

// Path returns the file that holds the named vault.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.Directory, name+fileExt)
}

// Save writes the secret export of v under name. Without overwrite an
// existing vault is never replaced.
func (d *Dir) Save(name string, v *vault.Vault, overwrite bool) (string, error) {
	if err := CheckName(name); err != nil {
		return "", err
	}
	doc, err := v.ExportWithSecrets()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Directory, 0o700); err != nil {
		return "", err
	}

	path := d.Path(name)
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return "", err
	}
	defer file.Close()
	if _, err := file.Write(append(doc, '\n')); err != nil {
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	d.logger().Debug("vault saved", zap.String("name", name), zap.Bool("overwrite", overwrite))
	return path, nil
}

// Load reads and parses the named vault.
func (d *Dir) Load(name string) (*vault.Vault, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, err
	}
	return vault.Parse([]byte(strings.TrimSpace(string(data))))
}

// List returns the stored vault names, sorted.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), fileExt)
		if CheckName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (d *Dir) logger() *zap.Logger {
	if d.log == nil {
		return zap.NewNop()
	}
	return d.log
}
