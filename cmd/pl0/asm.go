package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/pl0/machine"
)

// asmCommand processes the `pl0 asm` subcommand.
// Usage:
//
//	pl0 asm prog.s              # ./prog.pl0b
//	pl0 asm -o out.pl0b prog.s  # custom output
func asmCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs, g := newFlagSet("asm", "pl0 asm [-o OUT] [-v] [-config FILE] FILE", stderr)
	output := fs.String("o", "", "Output image path (default: FILE with the .pl0b extension)")
	file, ok := parseFlags(fs, args)
	if !ok {
		return exitOK
	}
	if _, ok := setup(g, stderr); !ok {
		return exitIO
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return report(stderr, &machine.Fault{Kind: machine.ErrIO, Err: err, File: file, PC: -1})
	}
	p, err := machine.ParseAssembly(file, string(data))
	if err != nil {
		return report(stderr, err)
	}
	img, err := machine.EncodeImage(p)
	if err != nil {
		return report(stderr, &machine.Fault{Kind: machine.ErrIO, Err: err, File: file, PC: -1})
	}

	out := *output
	if out == "" {
		out = imagePath(file)
	}
	if err := writeFile(out, img); err != nil {
		return report(stderr, err)
	}
	log.Infof("wrote %s (%d instructions, %d bytes)", out, p.Len(), len(img))
	return exitOK
}

// disCommand processes the `pl0 dis` subcommand.
// Usage:
//
//	pl0 dis prog.pl0b      # annotated ADDR/OP/M table
//	pl0 dis -n prog.pl0b   # numeric "<op> <m>" listing
func disCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs, g := newFlagSet("dis", "pl0 dis [-n] [-v] [-config FILE] FILE", stderr)
	numeric := fs.Bool("n", false, "Write the numeric listing instead of the annotated table")
	file, ok := parseFlags(fs, args)
	if !ok {
		return exitOK
	}
	if _, ok := setup(g, stderr); !ok {
		return exitIO
	}

	p, err := loadProgram(file)
	if err != nil {
		return report(stderr, err)
	}

	if *numeric {
		err = p.WriteText(stdout)
	} else {
		_, err = fmt.Fprint(stdout, p.Disassemble())
	}
	if err != nil {
		return report(stderr, &machine.Fault{Kind: machine.ErrIO, Err: err, PC: -1})
	}
	return exitOK
}
