package machine

import (
	"errors"
	"fmt"
	"strings"
)

// Fault kinds. A *Fault matches its kind with errors.Is.
var (
	// Load-time faults.
	ErrMalformedInstruction = errors.New("malformed instruction")
	ErrIllegalOpcode        = errors.New("illegal opcode")
	ErrProgramTooLarge      = errors.New("program too large")

	// Run-time faults.
	ErrStackOverflow      = errors.New("stack overflow")
	ErrStackUnderflow     = errors.New("stack underflow")
	ErrIllegalAllocation  = errors.New("illegal allocation")
	ErrIllegalAddress     = errors.New("illegal address")
	ErrInvariant          = errors.New("stack invariant violated")
	ErrPCOutOfBounds      = errors.New("program counter out of bounds")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrModuloByZero       = errors.New("modulo by zero")
	ErrUnrecognizedOpcode = errors.New("unrecognized opcode")
	ErrIO                 = errors.New("I/O error")
)

// Fault describes an unrecoverable condition that ends a load or a run.
type Fault struct {
	Kind   error  // one of the Err* values above
	Detail string // extra context, e.g. "SP (3) < BP (5)"
	Err    error  // underlying error for ErrIO

	File string // source of the program, when known
	Line int    // 1-based source line, 0 when unknown

	PC    Address // address of the faulting instruction, -1 for load faults
	Instr Instr   // faulting instruction, nil when none was fetched
}

func (f *Fault) Error() string {
	var sb strings.Builder
	if f.File != "" && f.Line > 0 {
		fmt.Fprintf(&sb, "%s:%d: ", f.File, f.Line)
	} else if f.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", f.Line)
	}
	sb.WriteString(f.Kind.Error())
	if f.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(f.Detail)
	}
	if f.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(f.Err.Error())
	}
	switch {
	case f.Instr != nil:
		fmt.Fprintf(&sb, " at pc %d (%s)", f.PC, Format(f.Instr))
	case f.PC >= 0:
		fmt.Fprintf(&sb, " at pc %d", f.PC)
	}
	return sb.String()
}

// Unwrap exposes the fault kind and the underlying error.
func (f *Fault) Unwrap() []error {
	if f.Err != nil {
		return []error{f.Kind, f.Err}
	}
	return []error{f.Kind}
}

// LoadTime reports whether the fault was raised while decoding a program.
func (f *Fault) LoadTime() bool {
	switch f.Kind {
	case ErrMalformedInstruction, ErrIllegalOpcode, ErrProgramTooLarge:
		return true
	}
	return false
}

func loadFault(kind error, file string, line int, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Detail: fmt.Sprintf(format, args...), File: file, Line: line, PC: -1}
}

func runFault(kind error, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Detail: fmt.Sprintf(format, args...), PC: -1}
}

func ioFault(err error) *Fault {
	return &Fault{Kind: ErrIO, Err: err, PC: -1}
}

// IsLoadFault reports whether err is a load-time fault.
func IsLoadFault(err error) bool {
	var f *Fault
	return errors.As(err, &f) && f.LoadTime()
}
