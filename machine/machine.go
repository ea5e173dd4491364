package machine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("pl0.machine")

// Default console strings.
const (
	DefaultInputPrompt  = "INPUT > "
	DefaultOutputPrefix = "OUTPUT: "
)

// Options configures a run.
type Options struct {
	Debug bool // echo the listing and dump the machine before and after the run
	Trace bool // print every executed instruction and the state after it

	Stdin  io.Reader // CHI input, os.Stdin when nil
	Stdout io.Writer // CHO output, prompts and reports, os.Stdout when nil

	InputPrompt  string // printed by CHI, DefaultInputPrompt when empty
	OutputPrefix string // printed before each CHO value, DefaultOutputPrefix when empty

	RunID string // printed in the debug heading and log lines
}

// Machine executes one program. It owns the program counter and flags;
// the stack is supplied to Execute.
type Machine struct {
	pc       Address
	halt     bool
	noOutput bool
	debug    bool
	trace    bool

	program *Program

	in     *bufio.Reader
	out    io.Writer
	prompt string
	prefix string
	report *Reporter
	runID  string
}

// New creates a machine for p.
func New(p *Program, opts Options) *Machine {
	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	m := &Machine{
		debug:   opts.Debug,
		trace:   opts.Trace,
		program: p,
		in:      bufio.NewReader(stdin),
		out:     stdout,
		prompt:  opts.InputPrompt,
		prefix:  opts.OutputPrefix,
		report:  NewReporter(stdout),
		runID:   opts.RunID,
	}
	if m.prompt == "" {
		m.prompt = DefaultInputPrompt
	}
	if m.prefix == "" {
		m.prefix = DefaultOutputPrefix
	}
	return m
}

// Run loads program text from r and executes it on a fresh stack.
func Run(r io.Reader, name string, opts Options) error {
	p, err := Load(r, name)
	if err != nil {
		return err
	}
	return New(p, opts).Execute(NewStack())
}

// PC returns the program counter.
func (m *Machine) PC() Address {
	return m.pc
}

// Halted reports whether HLT has executed.
func (m *Machine) Halted() bool {
	return m.halt
}

// Suppressed reports whether NDB has turned off debug and trace output.
func (m *Machine) Suppressed() bool {
	return m.noOutput
}

// Execute runs the fetch-execute loop until HLT or a fault.
func (m *Machine) Execute(s *Stack) error {
	log.Debugf("run %s: executing %s (%d instructions)", m.runID, m.program.Name, m.program.Len())

	if m.debug && !m.noOutput {
		m.report.Heading(m.runID, m.program)
	}
	// Each dump after an instruction is the state before the next one, so
	// only the first instruction needs its own.
	if (m.debug || m.trace) && !m.noOutput {
		m.report.Machine(m.pc, s)
	}

	for !m.halt {
		if err := m.step(s); err != nil {
			log.Debugf("run %s: aborted: %v", m.runID, err)
			return err
		}
	}

	if m.debug && !m.noOutput {
		m.report.Machine(m.pc, s)
	}
	if err := m.report.Err(); err != nil {
		return ioFault(err)
	}
	log.Debugf("run %s: halted at pc %d", m.runID, m.pc)
	return nil
}

// Step executes a single instruction.
func (m *Machine) Step(s *Stack) error {
	return m.step(s)
}

func (m *Machine) step(s *Stack) error {
	if m.pc < 0 || int(m.pc) >= m.program.Len() {
		f := runFault(ErrPCOutOfBounds, "PC %d, program length %d", m.pc, m.program.Len())
		f.PC = m.pc
		f.File = m.program.Name
		return f
	}

	at := m.pc
	in := m.program.Code[at]
	m.pc++

	if m.trace && !m.noOutput {
		m.report.Instruction(at, in)
	}
	if err := m.exec(in, s); err != nil {
		return m.locate(err, at, in)
	}
	if m.trace && !m.noOutput {
		m.report.Machine(m.pc, s)
	}
	return nil
}

// locate attaches the faulting instruction to a fault raised below the loop.
func (m *Machine) locate(err error, at Address, in Instr) error {
	var f *Fault
	if !errors.As(err, &f) {
		f = ioFault(err)
	}
	f.PC = at
	f.Instr = in
	f.File = m.program.Name
	f.Line = m.program.Line(at)
	return f
}

func (m *Machine) exec(in Instr, s *Stack) error {
	switch in := in.(type) {
	case Literal:
		return s.Push(in.Value)

	case Call:
		if err := s.Enter(); err != nil {
			return err
		}
		m.pc = in.Target
		return nil

	case Frame:
		return m.execFrame(in, s)

	case Alloc:
		return s.Allocate(in.Size)

	case Branch:
		if in.Op == OpJpc {
			cond, err := s.Pop()
			if err != nil {
				return err
			}
			if cond == 0 {
				return nil
			}
		}
		m.pc += in.Offset - 1
		return nil

	case Simple:
		return m.execSimple(in.Op, s)
	}
	return runFault(ErrUnrecognizedOpcode, "opcode %d", int32(in.Opcode()))
}

func (m *Machine) execFrame(in Frame, s *Stack) error {
	switch in.Op {
	case OpLod:
		base, err := s.Pop()
		if err != nil {
			return err
		}
		addr, err := frameAddress(base, in.Offset)
		if err != nil {
			return err
		}
		v, err := s.Fetch(addr)
		if err != nil {
			return err
		}
		return s.Push(v)

	case OpSto:
		v, err := s.Pop()
		if err != nil {
			return err
		}
		base, err := s.Pop()
		if err != nil {
			return err
		}
		addr, err := frameAddress(base, in.Offset)
		if err != nil {
			return err
		}
		return s.Assign(addr, v)
	}
	return runFault(ErrUnrecognizedOpcode, "opcode %d", int32(in.Op))
}

// frameAddress adds offset to base without wrapping.
func frameAddress(base, offset Word) (Address, error) {
	addr := int64(base) + int64(offset)
	if addr < 0 || addr >= StackCapacity {
		return 0, runFault(ErrIllegalAddress, "stack index %d", addr)
	}
	return Address(addr), nil
}

func (m *Machine) execSimple(op Opcode, s *Stack) error {
	switch op {
	case OpNop:
		return nil

	case OpRtn:
		ra, err := s.Leave()
		if err != nil {
			return err
		}
		m.pc = ra
		return nil

	case OpPop:
		_, err := s.Pop()
		return err

	case OpPsi:
		addr, err := s.Pop()
		if err != nil {
			return err
		}
		v, err := s.Fetch(addr)
		if err != nil {
			return err
		}
		return s.Push(v)

	case OpCho:
		v, err := s.Pop()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(m.out, "%s%d\n", m.prefix, v); err != nil {
			return ioFault(err)
		}
		return nil

	case OpChi:
		v, err := m.readInput()
		if err != nil {
			return err
		}
		return s.Push(v)

	case OpHlt:
		m.halt = true
		return nil

	case OpNdb:
		m.noOutput = true
		return nil

	case OpNeg:
		x, err := s.Pop()
		if err != nil {
			return err
		}
		return s.Push(-x)

	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		a, b, err := popOperands(s)
		if err != nil {
			return err
		}
		v, err := arith(op, a, b)
		if err != nil {
			return err
		}
		return s.Push(v)

	case OpEql, OpNeq, OpLss, OpLeq, OpGtr, OpGeq:
		a, b, err := popOperands(s)
		if err != nil {
			return err
		}
		return s.Push(compare(op, a, b))

	case OpPsp:
		return s.Push(s.Size())

	case OpPbp:
		return s.Push(s.Base())

	case OpPpc:
		return s.Push(m.pc)

	case OpJmi:
		target, err := s.Pop()
		if err != nil {
			return err
		}
		m.pc = target
		return nil
	}
	return runFault(ErrUnrecognizedOpcode, "opcode %d", int32(op))
}

// readInput prompts for and reads one integer. Input that does not parse,
// including end of input, reads as 0.
func (m *Machine) readInput() (Word, error) {
	if _, err := fmt.Fprint(m.out, m.prompt); err != nil {
		return 0, ioFault(err)
	}
	line, err := m.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, ioFault(err)
	}
	v, perr := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
	if perr != nil {
		log.Debugf("run %s: unreadable input %q, using 0", m.runID, strings.TrimSpace(line))
		return 0, nil
	}
	return Word(v), nil
}

// popOperands pops b then a, so a is the deeper operand.
func popOperands(s *Stack) (a, b Word, err error) {
	if b, err = s.Pop(); err != nil {
		return 0, 0, err
	}
	if a, err = s.Pop(); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// arith applies a two's-complement arithmetic opcode.
func arith(op Opcode, a, b Word) (Word, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return 0, runFault(ErrDivisionByZero, "%d / 0", a)
		}
		return a / b, nil
	case OpMod:
		if b == 0 {
			return 0, runFault(ErrModuloByZero, "%d %% 0", a)
		}
		return a % b, nil
	}
	return 0, runFault(ErrUnrecognizedOpcode, "opcode %d", int32(op))
}

func compare(op Opcode, a, b Word) Word {
	var r bool
	switch op {
	case OpEql:
		r = a == b
	case OpNeq:
		r = a != b
	case OpLss:
		r = a < b
	case OpLeq:
		r = a <= b
	case OpGtr:
		r = a > b
	case OpGeq:
		r = a >= b
	}
	if r {
		return 1
	}
	return 0
}
