package main

import (
	"io"
	"os"

	"github.com/chazu/pl0/compiler"
	"github.com/chazu/pl0/machine"
)

// lexCommand processes the `pl0 lex` subcommand.
// Usage:
//
//	pl0 lex squares.pl0              # lexer.log (or [lexer] log from pl0.toml)
//	pl0 lex -o tokens.log squares.pl0
func lexCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs, g := newFlagSet("lex", "pl0 lex [-o LOG] [-v] [-config FILE] FILE", stderr)
	output := fs.String("o", "", "Token log path (default: [lexer] log from pl0.toml, or lexer.log)")
	file, ok := parseFlags(fs, args)
	if !ok {
		return exitOK
	}
	m, ok := setup(g, stderr)
	if !ok {
		return exitIO
	}

	src, err := readSource(file)
	if err != nil {
		return report(stderr, err)
	}
	tokens, err := compiler.Tokenize(file, src)
	if err != nil {
		return report(stderr, err)
	}

	out := *output
	if out == "" {
		out = m.TokenLogPath()
	}
	if err := compiler.CreateTokenLog(out, file, tokens); err != nil {
		return report(stderr, &machine.Fault{Kind: machine.ErrIO, Err: err, File: out, PC: -1})
	}
	log.Infof("wrote %d tokens to %s", len(tokens), out)
	return exitOK
}

// parseCommand processes the `pl0 parse` subcommand.
func parseCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs, g := newFlagSet("parse", "pl0 parse [-v] [-config FILE] FILE", stderr)
	file, ok := parseFlags(fs, args)
	if !ok {
		return exitOK
	}
	if _, ok := setup(g, stderr); !ok {
		return exitIO
	}

	src, err := readSource(file)
	if err != nil {
		return report(stderr, err)
	}
	prog, err := compiler.Parse(file, src)
	if err != nil {
		return report(stderr, err)
	}
	if err := compiler.Dump(stdout, prog); err != nil {
		return report(stderr, &machine.Fault{Kind: machine.ErrIO, Err: err, PC: -1})
	}
	return exitOK
}

func readSource(path string) (string, error) {
	log.Infof("Reading file `%s`...", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &machine.Fault{Kind: machine.ErrIO, Err: err, File: path, PC: -1}
	}
	return string(data), nil
}
