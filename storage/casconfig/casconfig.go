// Package casconfig opens one or more CAS backends from a config file.
//
// Callers still need to link the backend packages they want via blank
// imports; the config only selects among registered backends.
package casconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"xdao.co/vault/storage"
	"xdao.co/vault/storage/casregistry"
)

// Write policies.
const (
	// WriteFirst writes only to the first backend; reads fall back in order.
	WriteFirst = "first"
	// WriteAll writes to every backend and requires CID equality.
	WriteAll = "all"
)

// Config describes how to open one or more CAS backends via casregistry.
//
// Example (YAML):
//
//	write_policy: all
//	backends:
//	  - name: localfs
//	    config:
//	      localfs-dir: /var/lib/vault/cas
//	  - name: grpc
//	    id: shared
//	    config:
//	      grpc-target: cas.internal:7777
//
// Config values are backend-specific and mirror the backend's flag names.
type Config struct {
	WritePolicy string          `json:"write_policy,omitempty" yaml:"write_policy,omitempty"`
	Backends    []BackendConfig `json:"backends" yaml:"backends"`
}

type BackendConfig struct {
	// Name is the casregistry backend name to open (e.g. "grpc", "localfs").
	Name string `json:"name" yaml:"name"`
	// ID is an optional stable alias used in per-backend CID maps.
	// If empty, Name is used.
	ID     string            `json:"id,omitempty" yaml:"id,omitempty"`
	Config map[string]string `json:"config,omitempty" yaml:"config,omitempty"`
}

// LoadFile reads a config from path. Files ending in .yaml or .yml are
// decoded as YAML; everything else as JSON.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("casconfig: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		err = json.Unmarshal(b, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("casconfig: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("casconfig: at least one backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if b.Name == "" {
			return errors.New("casconfig: backend name is required")
		}
		id := b.id()
		if _, ok := seen[id]; ok {
			return fmt.Errorf("casconfig: duplicate backend id %q", id)
		}
		seen[id] = struct{}{}
	}
	switch c.WritePolicy {
	case "", WriteFirst, WriteAll:
		return nil
	default:
		return fmt.Errorf("casconfig: invalid write_policy %q", c.WritePolicy)
	}
}

// Open opens a CAS per config.
//
// If preferredBackend is non-empty, backends are reordered so it comes first
// and therefore takes writes under WriteFirst.
func (c Config) Open(usage casregistry.Usage, preferredBackend string) (storage.CAS, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	ordered, err := c.ordered(preferredBackend)
	if err != nil {
		return nil, nil, err
	}

	named := make([]storage.NamedCAS, 0, len(ordered))
	closers := make([]func() error, 0, len(ordered))
	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	for _, b := range ordered {
		cas, closeFn, err := casregistry.OpenWithConfig(b.Name, usage, b.Config)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("casconfig: backend %q: %w", b.id(), err)
		}
		named = append(named, storage.NamedCAS{Name: b.id(), CAS: cas})
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
	}

	if len(named) == 1 {
		return named[0].CAS, closeAll, nil
	}

	if c.WritePolicy == WriteAll {
		return storage.ReplicatingCAS{Backends: named}, closeAll, nil
	}
	adapters := make([]storage.CAS, 0, len(named))
	for _, n := range named {
		adapters = append(adapters, n.CAS)
	}
	return storage.MultiCAS{Adapters: adapters}, closeAll, nil
}

func (c Config) ordered(preferred string) ([]BackendConfig, error) {
	ordered := append([]BackendConfig(nil), c.Backends...)
	if preferred == "" {
		return ordered, nil
	}
	for i := range ordered {
		if ordered[i].Name == preferred || ordered[i].ID == preferred {
			b := ordered[i]
			copy(ordered[1:i+1], ordered[0:i])
			ordered[0] = b
			return ordered, nil
		}
	}
	return nil, fmt.Errorf("casconfig: preferred backend %q not found in config", preferred)
}

func (b BackendConfig) id() string {
	if b.ID != "" {
		return b.ID
	}
	return b.Name
}
