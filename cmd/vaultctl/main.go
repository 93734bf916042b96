// Command vaultctl manages identity-and-key vaults on the local machine and
// moves their exports through a content-addressed store.
package main

import (
	"io"
	"os"

	_ "xdao.co/vault/storage/grpccas"
	_ "xdao.co/vault/storage/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	root := newRootCmd(&app{})
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
