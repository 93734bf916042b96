package main

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/spf13/cobra"

	"xdao.co/vault/cidutil"
	"xdao.co/vault/storage"
	"xdao.co/vault/storage/casregistry"
	"xdao.co/vault/vault"
	"xdao.co/vault/vaultstore"
)

func cidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cid <file>",
		Short: "Print the CID of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			id, err := cidutil.Of(b)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func putCmd(a *app) *cobra.Command {
	var (
		name   string
		secret bool
	)
	cmd := &cobra.Command{
		Use:   "put",
		Short: "Archive a vault export in the CAS and print its CID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.store.Load(name)
			if err != nil {
				return err
			}
			return withCAS(a, func(cas storage.CAS) error {
				archive := vaultstore.NewArchive(cas, a.log)
				var id cid.Cid
				if secret {
					id, err = archive.PutSecret(cmd.Context(), v)
				} else {
					id, err = archive.PutPublic(cmd.Context(), v)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "vault name")
	cmd.Flags().BoolVar(&secret, "secret", false, "archive the export with secret keys")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func getCmd(a *app) *cobra.Command {
	var (
		save  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "get <cid>",
		Short: "Fetch an archived vault; print it or store it under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := fetch(cmd, a, args[0])
			if err != nil {
				return err
			}
			if save != "" {
				path, err := a.store.Save(save, v, force)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored at: %s\n", path)
				return nil
			}
			doc, err := v.ExportWithSecrets()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc)
			return err
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "store the vault under this name instead of printing it")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing vault (with --save)")
	return cmd
}

func fetch(cmd *cobra.Command, a *app, s string) (*vault.Vault, error) {
	id, err := cidutil.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid cid %q: %w", s, err)
	}
	var v *vault.Vault
	err = withCAS(a, func(cas storage.CAS) error {
		v, err = vaultstore.NewArchive(cas, a.log).Get(cmd.Context(), id)
		return err
	})
	return v, err
}

func backendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List CAS backends linked into this binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, b := range casregistry.List(casregistry.UsageCLI) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", b.Name, b.Description)
			}
			return nil
		},
	}
}
