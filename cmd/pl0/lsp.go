package main

import (
	"io"

	"github.com/chazu/pl0/server"
)

// lspCommand processes the `pl0 lsp` subcommand. The server speaks JSON-RPC
// on the process's own stdin and stdout.
func lspCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs, g := newFlagSet("lsp", "pl0 lsp [-v] [-config FILE]", stderr)
	if err := fs.Parse(args); err != nil {
		return exitOK
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return exitOK
	}
	if _, ok := setup(g, stderr); !ok {
		return exitIO
	}

	if err := server.NewLSP().Run(); err != nil {
		return report(stderr, err)
	}
	return exitOK
}
