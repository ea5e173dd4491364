package machine

import (
	"fmt"
	"io"
)

// Reporter prints machine state and executed instructions. It only observes;
// nothing it does feeds back into execution.
type Reporter struct {
	w   io.Writer
	err error
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Err returns the first write error, if any.
func (r *Reporter) Err() error {
	return r.err
}

func (r *Reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

// Heading starts a report for a run.
func (r *Reporter) Heading(runID string, p *Program) {
	if runID != "" {
		r.printf("Run %s\n", runID)
	}
	r.printf("Program %s: %d instructions\n\n", p.Name, p.Len())
	if r.err == nil {
		r.err = p.Listing(r.w)
	}
	r.printf("\nTracing...\n")
}

// Machine prints the registers and the current frame.
func (r *Reporter) Machine(pc Address, s *Stack) {
	r.printf("Machine:\n")
	r.printf("PC: %d, BP: %d, SP: %d\n", pc, s.Base(), s.Size())
	r.printf("Stack:\n")
	base := s.Base()
	for i, v := range s.Frame() {
		r.printf("S[%d]: %d\n", base+Address(i), v)
	}
}

// Instruction prints one executed instruction.
func (r *Reporter) Instruction(addr Address, in Instr) {
	r.printf("==> %5d %5s %5d\n", addr, in.Opcode(), in.Operand())
}
