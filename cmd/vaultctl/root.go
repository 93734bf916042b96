package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"xdao.co/vault/internal/logging"
	"xdao.co/vault/storage"
	"xdao.co/vault/storage/casconfig"
	"xdao.co/vault/storage/casregistry"
	"xdao.co/vault/storage/localfs"
	"xdao.co/vault/vaultstore"
)

// app carries state shared by all subcommands.
type app struct {
	dir       string
	verbose   bool
	backend   string
	casConfig string

	flags *pflag.FlagSet
	log   *zap.Logger
	store *vaultstore.Dir
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "vaultctl",
		Short:         "Manage identity-and-key vaults",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if a.verbose {
				level = "debug"
			}
			log, err := logging.New(level)
			if err != nil {
				return err
			}
			a.log = log
			a.store, err = vaultstore.OpenDir(a.dir, log)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.dir, "dir", "", "vault directory (default ~/.xdao/vaults)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging on stderr")
	pf.StringVar(&a.backend, "backend", "localfs", "CAS backend name")
	pf.StringVar(&a.casConfig, "cas-config", "", "CAS config file (JSON or YAML); overrides --backend")
	casregistry.RegisterFlags(pf, casregistry.UsageCLI)
	a.flags = pf

	root.AddCommand(
		initCmd(a),
		identityCmd(a),
		keyCmd(a),
		exportCmd(a),
		attachCmd(a),
		signCmd(a),
		verifyCmd(a),
		fingerprintCmd(a),
		cidCmd(),
		putCmd(a),
		getCmd(a),
		listCmd(a),
		backendsCmd(),
	)
	return root
}

// openCAS opens the configured backend. A localfs backend without an
// explicit directory uses "cas" next to the vault directory.
func (a *app) openCAS() (storage.CAS, func() error, error) {
	if a.casConfig != "" {
		cfg, err := casconfig.LoadFile(a.casConfig)
		if err != nil {
			return nil, nil, err
		}
		return cfg.Open(casregistry.UsageCLI, "")
	}
	if a.backend == "localfs" {
		if f := a.flags.Lookup(localfs.DirKey); f != nil && !f.Changed {
			if err := f.Value.Set(filepath.Join(filepath.Dir(a.store.Directory), "cas")); err != nil {
				return nil, nil, err
			}
		}
	}
	return casregistry.Open(a.backend, casregistry.UsageCLI)
}

func withCAS(a *app, fn func(storage.CAS) error) error {
	cas, closeFn, err := a.openCAS()
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	return fn(cas)
}

// readInput reads a file argument; "-" reads stdin.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return b, nil
}
