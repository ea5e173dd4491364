package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/chazu/pl0/machine"
)

// ImageExt is the file extension of CBOR program images.
const ImageExt = ".pl0b"

// runCommand processes `pl0 run` and the bare `pl0 FILE` form.
// Usage:
//
//	pl0 prog.txt           # run a numeric listing
//	pl0 run -d prog.pl0b   # run an image with listing and state dumps
func runCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs, g := newFlagSet("run", "pl0 [run] [-d] [-t] [-v] [-config FILE] FILE", stderr)
	debug := fs.Bool("d", false, "Echo the listing and dump the machine before and after the run")
	trace := fs.Bool("t", false, "Print every executed instruction and the machine state after it")
	file, ok := parseFlags(fs, args)
	if !ok {
		return exitOK
	}
	m, ok := setup(g, stderr)
	if !ok {
		return exitIO
	}

	p, err := loadProgram(file)
	if err != nil {
		return report(stderr, err)
	}

	runID := uuid.NewString()
	opts := machine.Options{
		Debug:        *debug || m.Machine.Debug,
		Trace:        *trace || m.Machine.Trace,
		Stdin:        stdin,
		Stdout:       stdout,
		InputPrompt:  m.Machine.InputPrompt,
		OutputPrefix: m.Machine.OutputPrefix,
		RunID:        runID,
	}
	log.Infof("run %s: starting %s", runID, file)
	if err := machine.New(p, opts).Execute(machine.NewStack()); err != nil {
		log.Errorf("run %s: %v", runID, err)
		return report(stderr, err)
	}
	log.Infof("run %s: halted", runID)
	return exitOK
}

// loadProgram reads a listing, or an image when the file has the image
// extension.
func loadProgram(path string) (*machine.Program, error) {
	log.Infof("Reading file `%s`...", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &machine.Fault{Kind: machine.ErrIO, Err: err, File: path, PC: -1}
	}

	var p *machine.Program
	if filepath.Ext(path) == ImageExt {
		p, err = machine.DecodeImage(data, path)
	} else {
		p, err = machine.Load(bytes.NewReader(data), path)
	}
	if err != nil {
		return nil, err
	}
	log.Infof("File read successfully! Program length: %d", p.Len())
	return p, nil
}

// imagePath returns the default image file name for a listing.
func imagePath(listing string) string {
	ext := filepath.Ext(listing)
	if ext == ImageExt {
		return listing + ImageExt
	}
	return listing[:len(listing)-len(ext)] + ImageExt
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &machine.Fault{Kind: machine.ErrIO, Err: fmt.Errorf("write: %w", err), File: path, PC: -1}
	}
	return nil
}
