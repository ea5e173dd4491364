package machine

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxCodeLength bounds the number of instructions in a program. A program
// must hold fewer than MaxCodeLength instructions.
const MaxCodeLength = 512

// Program is a loaded instruction sequence. It is not modified after load.
type Program struct {
	Name  string  // file the program came from
	Code  []Instr // instructions, indexed by address
	Lines []int   // source line of each instruction, 0 when unknown
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Code)
}

// Line returns the source line of the instruction at addr, or 0.
func (p *Program) Line(addr Address) int {
	if addr < 0 || int(addr) >= len(p.Lines) {
		return 0
	}
	return p.Lines[addr]
}

// Pairs returns the wire form of every instruction.
func (p *Program) Pairs() []Pair {
	pairs := make([]Pair, len(p.Code))
	for i, in := range p.Code {
		pairs[i] = Encode(in)
	}
	return pairs
}

// builder accumulates instructions and applies the load-time checks shared
// by the text and image decoders.
type builder struct {
	prog *Program
}

func newBuilder(name string) *builder {
	return &builder{prog: &Program{Name: name}}
}

func (b *builder) add(op, m Word, line int) error {
	if !Legal(op) {
		return loadFault(ErrIllegalOpcode, b.prog.Name, line, "op code %d", op)
	}
	if len(b.prog.Code)+1 >= MaxCodeLength {
		return loadFault(ErrProgramTooLarge, b.prog.Name, line, "code length %d, max %d",
			len(b.prog.Code)+1, MaxCodeLength)
	}
	b.prog.Code = append(b.prog.Code, Decode(Opcode(op), m))
	b.prog.Lines = append(b.prog.Lines, line)
	return nil
}

// Load reads a program listing from r.
func Load(r io.Reader, name string) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		f := ioFault(err)
		f.File = name
		return nil, f
	}
	return ParseProgram(name, string(data))
}

// ParseProgram decodes a numeric listing: one "<op> <m>" pair per line.
// Lines that do not hold exactly two fields are skipped and not counted.
func ParseProgram(name, text string) (*Program, error) {
	b := newBuilder(name)
	for i, line := range splitLines(text) {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		op, err := parseWord(fields[0])
		if err != nil {
			return nil, loadFault(ErrMalformedInstruction, name, i+1, "%q", strings.TrimSpace(line))
		}
		m, err := parseWord(fields[1])
		if err != nil {
			return nil, loadFault(ErrMalformedInstruction, name, i+1, "%q", strings.TrimSpace(line))
		}
		if err := b.add(op, m, i+1); err != nil {
			return nil, err
		}
	}
	return b.prog, nil
}

// ParseAssembly decodes a hand-written listing. It accepts everything
// ParseProgram does, plus mnemonics in place of numeric opcodes, a bare
// mnemonic for operand-free instructions, and comments starting with '#'
// or ';'. Unlike ParseProgram, lines it cannot read are errors.
func ParseAssembly(name, text string) (*Program, error) {
	b := newBuilder(name)
	for i, line := range splitLines(text) {
		if idx := strings.IndexAny(line, "#;"); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) > 2 {
			return nil, loadFault(ErrMalformedInstruction, name, i+1, "%q", strings.TrimSpace(line))
		}

		op, ok := parseOpcode(fields[0])
		if !ok {
			return nil, loadFault(ErrMalformedInstruction, name, i+1, "unknown opcode %q", fields[0])
		}
		var m Word
		if len(fields) == 2 {
			v, err := parseWord(fields[1])
			if err != nil {
				return nil, loadFault(ErrMalformedInstruction, name, i+1, "bad operand %q", fields[1])
			}
			m = v
		} else if Legal(op) && Opcode(op).Operand() != OperandNone {
			return nil, loadFault(ErrMalformedInstruction, name, i+1, "%s needs an operand", Opcode(op))
		}
		if err := b.add(op, m, i+1); err != nil {
			return nil, err
		}
	}
	return b.prog, nil
}

func parseOpcode(s string) (Word, bool) {
	if op, ok := ParseMnemonic(s); ok {
		return Word(op), true
	}
	v, err := parseWord(s)
	return v, err == nil
}

func parseWord(s string) (Word, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return Word(v), nil
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Listing writes the ADDR/OP/M table of the program.
func (p *Program) Listing(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%5s %5s %5s\n", "ADDR", "OP", "M"); err != nil {
		return err
	}
	for addr, in := range p.Code {
		if _, err := fmt.Fprintf(w, "%5d %5s %5d\n", addr, in.Opcode(), in.Operand()); err != nil {
			return err
		}
	}
	return nil
}

// WriteText writes the program back in numeric "<op> <m>" form.
func (p *Program) WriteText(w io.Writer) error {
	for _, pair := range p.Pairs() {
		if _, err := fmt.Fprintf(w, "%d %d\n", pair.Op, pair.M); err != nil {
			return err
		}
	}
	return nil
}

// Disassemble returns a listing annotated with jump targets and source lines.
func (p *Program) Disassemble() string {
	var sb strings.Builder
	if p.Name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", p.Name))
	}
	sb.WriteString(fmt.Sprintf("; %d instructions\n", len(p.Code)))
	sb.WriteString(fmt.Sprintf("%5s %5s %5s\n", "ADDR", "OP", "M"))
	for addr, in := range p.Code {
		line := fmt.Sprintf("%5d %5s %5d", addr, in.Opcode(), in.Operand())
		var notes []string
		switch in := in.(type) {
		case Branch:
			notes = append(notes, fmt.Sprintf("-> %d", in.Target(Address(addr))))
		case Call:
			notes = append(notes, fmt.Sprintf("-> %d", in.Target))
		}
		if src := p.Line(Address(addr)); src > 0 {
			notes = append(notes, fmt.Sprintf("line %d", src))
		}
		if len(notes) > 0 {
			line = fmt.Sprintf("%-18s ; %s", line, strings.Join(notes, ", "))
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
