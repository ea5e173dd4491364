// PL/0 CLI - runs, assembles and inspects PL/0 machine programs
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tliron/commonlog"

	"github.com/chazu/pl0/compiler"
	"github.com/chazu/pl0/machine"
	"github.com/chazu/pl0/manifest"

	_ "github.com/tliron/commonlog/simple"
)

// Exit statuses.
const (
	exitOK       = 0
	exitIO       = 1 // unreadable input, unwritable output, bad configuration
	exitLoad     = 2 // program failed to load
	exitRuntime  = 3 // program faulted while running
	exitFrontEnd = 4 // PL/0 source failed to lex or parse
)

var log = commonlog.GetLogger("pl0.cli")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// command is one pl0 subcommand.
type command struct {
	name    string
	summary string
	run     func(args []string, stdin io.Reader, stdout, stderr io.Writer) int
}

var commands []command

func init() {
	commands = []command{
		{"run", "execute a program listing or image", runCommand},
		{"asm", "assemble a listing into a program image", asmCommand},
		{"dis", "disassemble a listing or image", disCommand},
		{"lex", "write the token log of a PL/0 source file", lexCommand},
		{"parse", "print the syntax tree of a PL/0 source file", parseCommand},
		{"lsp", "start the PL/0 language server on stdio", lspCommand},
	}
}

// run dispatches args and returns the exit status. A first argument that is
// not a subcommand name runs a program.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "help", "-h", "-help", "--help":
			usage(stderr)
			return exitOK
		}
		for _, c := range commands {
			if c.name == args[0] {
				return c.run(args[1:], stdin, stdout, stderr)
			}
		}
	}
	return runCommand(args, stdin, stdout, stderr)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: pl0 [command] [options] FILE\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-6s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nWithout a command, pl0 runs FILE.\n")
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  pl0 prog.txt              # Run a numeric listing\n")
	fmt.Fprintf(w, "  pl0 -t prog.txt           # Run with an instruction trace\n")
	fmt.Fprintf(w, "  pl0 asm -o prog.pl0b a.s  # Assemble mnemonics into an image\n")
	fmt.Fprintf(w, "  pl0 dis prog.pl0b         # Print the ADDR/OP/M table\n")
	fmt.Fprintf(w, "  pl0 lex squares.pl0       # Write lexer.log\n")
	fmt.Fprintf(w, "  pl0 parse squares.pl0     # Print the syntax tree\n")
}

// countFlag is a boolean flag that counts its occurrences (-v -v).
type countFlag int

func (c *countFlag) String() string { return strconv.Itoa(int(*c)) }

func (c *countFlag) Set(s string) error {
	if s == "true" {
		*c++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid count %q", s)
	}
	*c = countFlag(n)
	return nil
}

func (c *countFlag) IsBoolFlag() bool { return true }

// globalFlags are accepted by every subcommand.
type globalFlags struct {
	verbose countFlag
	config  string
}

// newFlagSet creates a flag set for a subcommand with the global flags
// registered. Usage goes to stderr.
func newFlagSet(name, synopsis string, stderr io.Writer) (*flag.FlagSet, *globalFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	g := &globalFlags{}
	fs.Var(&g.verbose, "v", "Increase log verbosity (repeatable)")
	fs.StringVar(&g.config, "config", "", "Path to pl0.toml (default: search upward from the working directory)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s\n\nOptions:\n", synopsis)
		fs.PrintDefaults()
	}
	return fs, g
}

// parseFlags parses args and returns the single FILE operand. ok is false
// when the command should stop with exitOK after usage was printed.
func parseFlags(fs *flag.FlagSet, args []string) (file string, ok bool) {
	if err := fs.Parse(args); err != nil {
		// The flag package has already printed the error and usage.
		return "", false
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return "", false
	}
	return fs.Arg(0), true
}

// setup loads the manifest and configures logging.
func setup(g *globalFlags, stderr io.Writer) (*manifest.Manifest, bool) {
	m, err := loadManifest(g.config)
	if err != nil {
		fmt.Fprintf(stderr, "pl0: %v\n", err)
		return nil, false
	}

	verbosity := m.Log.Verbosity
	if g.verbose > 0 {
		verbosity = int(g.verbose)
	}
	var path *string
	if p := m.LogFilePath(); p != "" {
		path = &p
	}
	commonlog.Configure(verbosity, path)

	if m.Dir != "" {
		log.Debugf("using %s in %s", manifest.FileName, m.Dir)
	}
	return m, true
}

func loadManifest(path string) (*manifest.Manifest, error) {
	if path != "" {
		return manifest.LoadFile(path)
	}
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if m == nil {
		return manifest.Default(), nil
	}
	return m, nil
}

// report prints err on stderr and maps it to an exit status.
func report(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "pl0: %v\n", err)
	return exitStatus(err)
}

func exitStatus(err error) int {
	var cerr *compiler.Error
	var fault *machine.Fault
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &cerr):
		return exitFrontEnd
	case machine.IsLoadFault(err), errors.Is(err, machine.ErrInvalidImage):
		return exitLoad
	case errors.Is(err, machine.ErrIO):
		return exitIO
	case errors.As(err, &fault):
		return exitRuntime
	}
	return exitIO
}
