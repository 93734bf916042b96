package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"xdao.co/vault/keys"
	"xdao.co/vault/vault"
)

// errInvalidSignature makes verify exit non-zero.
var errInvalidSignature = errors.New("signature INVALID")

type keySelector struct {
	name        string
	fingerprint string
	hash        string
}

func (s *keySelector) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.name, "name", "", "vault name")
	cmd.Flags().StringVar(&s.fingerprint, "key", "", "key fingerprint (default: first key that can sign)")
	cmd.Flags().StringVar(&s.hash, "hash", "", "pre-hash the input with sha256, sha512 or sha3-256")
}

// message returns the bytes to sign or verify.
func (s *keySelector) message(data []byte) ([]byte, error) {
	if s.hash == "" {
		return data, nil
	}
	return keys.Digest(s.hash, data)
}

func (s *keySelector) key(a *app, needSecret bool) (*keys.SigningKey, error) {
	v, err := a.store.Load(s.name)
	if err != nil {
		return nil, err
	}
	if s.fingerprint != "" {
		k, ok := v.SigningKey(strings.ToLower(s.fingerprint))
		if !ok {
			return nil, fmt.Errorf("no signing key %s in vault %q", s.fingerprint, s.name)
		}
		return k, nil
	}
	for _, k := range v.SecretKeys() {
		if sk, ok := k.(vault.Signing); ok && sk.Key != nil && (sk.Key.HasSecret() || !needSecret) {
			return sk.Key, nil
		}
	}
	return nil, fmt.Errorf("vault %q has no usable signing key", s.name)
}

func signCmd(a *app) *cobra.Command {
	var sel keySelector
	cmd := &cobra.Command{
		Use:   "sign <file>",
		Short: "Sign a file and print the base64 signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			msg, err := sel.message(data)
			if err != nil {
				return err
			}
			k, err := sel.key(a, true)
			if err != nil {
				return err
			}
			sig, err := k.Sign(msg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig)
			return nil
		},
	}
	sel.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func verifyCmd(a *app) *cobra.Command {
	var (
		sel       keySelector
		signature string
		publicKey string
	)
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check a signature against a vault key or a public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			msg, err := sel.message(data)
			if err != nil {
				return err
			}
			var k *keys.SigningKey
			if publicKey != "" {
				k, err = keys.FromPublicKey(strings.TrimSpace(publicKey))
			} else {
				k, err = sel.key(a, false)
			}
			if err != nil {
				return err
			}
			if !k.Verify(msg, strings.TrimSpace(signature)) {
				return errInvalidSignature
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signature OK (%s)\n", k.Fingerprint())
			return nil
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&signature, "sig", "", "base64 signature")
	cmd.Flags().StringVar(&publicKey, "pk", "", "base64 public key (instead of --name)")
	_ = cmd.MarkFlagRequired("sig")
	cmd.MarkFlagsOneRequired("name", "pk")
	cmd.MarkFlagsMutuallyExclusive("name", "pk")
	return cmd
}

func fingerprintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <public-key>",
		Short: "Print the fingerprint of a base64 public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := keys.FromPublicKey(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", k.Fingerprint())
			return nil
		},
	}
}
