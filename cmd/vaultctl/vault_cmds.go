package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"xdao.co/vault/identity"
	"xdao.co/vault/keys"
	"xdao.co/vault/vault"
)

type identityFlags struct {
	first, last, email, comment string
}

func (f *identityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.first, "first", "", "first name")
	cmd.Flags().StringVar(&f.last, "last", "", "last name")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.comment, "comment", "", "optional comment")
	_ = cmd.MarkFlagRequired("email")
}

func (f *identityFlags) identity(cmd *cobra.Command) identity.Identity {
	if cmd.Flags().Changed("comment") {
		return identity.NewWithComment(f.first, f.last, f.email, f.comment)
	}
	return identity.New(f.first, f.last, f.email)
}

func initCmd(a *app) *cobra.Command {
	var (
		name  string
		force bool
		id    identityFlags
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a vault with a primary identity and one signing key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := keys.Generate()
			if err != nil {
				return err
			}
			v := vault.New(id.identity(cmd), nil, []vault.Key{vault.Signing{Key: k}})
			path, err := a.store.Save(name, v, force)
			if err != nil {
				return err
			}
			a.log.Info("vault created", zap.String("name", name), zap.String("fingerprint", k.Fingerprint()))
			fmt.Fprintf(cmd.OutOrStdout(), "Created vault %q\nFingerprint: %s\nStored at: %s\n", name, k.Fingerprint(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "vault name")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing vault")
	_ = cmd.MarkFlagRequired("name")
	id.register(cmd)
	return cmd
}

func identityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage vault identities",
	}

	var (
		name string
		id   identityFlags
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Append a secondary identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.store.Load(name)
			if err != nil {
				return err
			}
			v.AddSecondaryIdentity(id.identity(cmd))
			if _, err := a.store.Save(name, v, true); err != nil {
				return err
			}
			ids, _ := v.SecondaryIdentities()
			fmt.Fprintf(cmd.OutOrStdout(), "Secondary identities: %d\n", len(ids))
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "vault name")
	_ = add.MarkFlagRequired("name")
	id.register(add)

	cmd.AddCommand(add)
	return cmd
}

func keyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage vault keys",
	}

	var addName string
	add := &cobra.Command{
		Use:   "add",
		Short: "Generate a new signing key in a vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.store.Load(addName)
			if err != nil {
				return err
			}
			k, err := keys.Generate()
			if err != nil {
				return err
			}
			if _, err := a.store.Save(addName, withKey(v, vault.Signing{Key: k}), true); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), k.Fingerprint())
			return nil
		},
	}
	add.Flags().StringVar(&addName, "name", "", "vault name")
	_ = add.MarkFlagRequired("name")

	var listName string
	list := &cobra.Command{
		Use:   "list",
		Short: "List key fingerprints, including those of attached vaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.store.Load(listName)
			if err != nil {
				return err
			}
			printKeys(cmd, v, "")
			return nil
		},
	}
	list.Flags().StringVar(&listName, "name", "", "vault name")
	_ = list.MarkFlagRequired("name")

	cmd.AddCommand(add, list)
	return cmd
}

// withKey returns a copy of v with k appended to its keys.
func withKey(v *vault.Vault, k vault.Key) *vault.Vault {
	secondary, _ := v.SecondaryIdentities()
	out := vault.New(v.PrimaryIdentity(), secondary, append(v.SecretKeys(), k))
	for _, ev := range v.ExternalVaults() {
		out.AddExternalVault(ev)
	}
	return out
}

func printKeys(cmd *cobra.Command, v *vault.Vault, indent string) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s%s\n", indent, v.PrimaryIdentity().Email())
	for _, k := range v.SecretKeys() {
		s, ok := k.(vault.Signing)
		if !ok || s.Key == nil {
			fmt.Fprintf(w, "%s  %s\n", indent, k.Tag())
			continue
		}
		kind := "public"
		if s.Key.HasSecret() {
			kind = "secret"
		}
		fmt.Fprintf(w, "%s  %s %s %s\n", indent, k.Tag(), s.Key.Fingerprint(), kind)
	}
	for _, ev := range v.ExternalVaults() {
		printKeys(cmd, ev, indent+"    ")
	}
}

func exportCmd(a *app) *cobra.Command {
	var (
		name   string
		public bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a vault document to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.store.Load(name)
			if err != nil {
				return err
			}
			var doc []byte
			if public {
				doc, err = v.ExportWithoutSecrets()
			} else {
				doc, err = v.ExportWithSecrets()
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "vault name")
	cmd.Flags().BoolVar(&public, "public", false, "strip all secret keys")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func attachCmd(a *app) *cobra.Command {
	var (
		name, file, from, fromCID string
	)
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Attach another vault as an external vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.store.Load(name)
			if err != nil {
				return err
			}
			ev, err := loadExternal(cmd, a, file, from, fromCID)
			if err != nil {
				return err
			}
			v.AddExternalVault(ev)
			if _, err := a.store.Save(name, v, true); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Attached %s (%d external vaults)\n", ev.PrimaryIdentity().Email(), len(v.ExternalVaults()))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "vault name")
	cmd.Flags().StringVar(&file, "file", "", "vault document to attach (\"-\" for stdin)")
	cmd.Flags().StringVar(&from, "vault", "", "stored vault to attach")
	cmd.Flags().StringVar(&fromCID, "cid", "", "CID of an archived vault document to attach")
	cmd.MarkFlagsOneRequired("file", "vault", "cid")
	cmd.MarkFlagsMutuallyExclusive("file", "vault", "cid")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func loadExternal(cmd *cobra.Command, a *app, file, from, fromCID string) (*vault.Vault, error) {
	switch {
	case file != "":
		doc, err := readInput(cmd, file)
		if err != nil {
			return nil, err
		}
		return vault.Parse(doc)
	case from != "":
		return a.store.Load(from)
	case fromCID != "":
		return fetch(cmd, a, fromCID)
	default:
		return nil, errors.New("one of --file, --vault or --cid is required")
	}
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored vaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.store.List()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}
