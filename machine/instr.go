package machine

import "fmt"

// Word is the only value type the machine manipulates.
type Word = int32

// Address is a Word used as an index into the stack or the program.
type Address = Word

// Pair is the wire form of an instruction: a numeric opcode and its operand,
// exactly as they appear in a listing or an image.
type Pair struct {
	_  struct{} `cbor:",toarray"`
	Op Word
	M  Word
}

// Instr is a decoded instruction. The set of implementations is closed:
// Literal, Call, Frame, Alloc, Branch and Simple.
type Instr interface {
	Opcode() Opcode
	Operand() Word
	instr() // marker method
}

// Literal pushes Value (LIT).
type Literal struct {
	Value Word
}

func (Literal) Opcode() Opcode  { return OpLit }
func (i Literal) Operand() Word { return i.Value }
func (Literal) instr()          {}

// Call transfers control to Target and opens a new frame (CAL).
type Call struct {
	Target Address
}

func (Call) Opcode() Opcode  { return OpCal }
func (i Call) Operand() Word { return i.Target }
func (Call) instr()          {}

// Frame reads or writes the word at a popped base address plus Offset
// (LOD, STO).
type Frame struct {
	Op     Opcode
	Offset Word
}

func (i Frame) Opcode() Opcode { return i.Op }
func (i Frame) Operand() Word  { return i.Offset }
func (Frame) instr()           {}

// Alloc moves the stack pointer by Size words (INC).
type Alloc struct {
	Size Word
}

func (Alloc) Opcode() Opcode  { return OpInc }
func (i Alloc) Operand() Word { return i.Size }
func (Alloc) instr()          {}

// Branch jumps Offset instructions from the jump itself (JMP, JPC).
type Branch struct {
	Op     Opcode
	Offset Word
}

func (i Branch) Opcode() Opcode { return i.Op }
func (i Branch) Operand() Word  { return i.Offset }
func (Branch) instr()           {}

// Target returns the address the branch lands on when taken from at.
func (i Branch) Target(at Address) Address {
	return at + i.Offset
}

// Simple is any instruction whose operand is ignored. Raw keeps the operand
// as written so a decoded program serializes back unchanged.
type Simple struct {
	Op  Opcode
	Raw Word
}

func (i Simple) Opcode() Opcode { return i.Op }
func (i Simple) Operand() Word  { return i.Raw }
func (Simple) instr()           {}

// Decode builds the instruction variant for a legal opcode.
func Decode(op Opcode, m Word) Instr {
	switch op.Operand() {
	case OperandLiteral:
		return Literal{Value: m}
	case OperandAddress:
		return Call{Target: m}
	case OperandOffset:
		return Frame{Op: op, Offset: m}
	case OperandSize:
		return Alloc{Size: m}
	case OperandJump:
		return Branch{Op: op, Offset: m}
	default:
		return Simple{Op: op, Raw: m}
	}
}

// Encode returns the wire form of an instruction.
func Encode(in Instr) Pair {
	return Pair{Op: Word(in.Opcode()), M: in.Operand()}
}

// Format renders an instruction as "MNEMONIC m".
func Format(in Instr) string {
	return fmt.Sprintf("%s %d", in.Opcode(), in.Operand())
}
