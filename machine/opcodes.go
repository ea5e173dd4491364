package machine

import (
	"fmt"
	"strings"
)

// Opcode represents a machine instruction. The numbering is positional and is
// the wire contract between a code generator and the machine.
type Opcode Word

const (
	OpNop Opcode = iota // No operation
	OpLit               // Push literal: LIT <value>
	OpRtn               // Return from the current frame
	OpCal               // Call: CAL <address>
	OpPop               // Discard top of stack
	OpPsi               // Pop address, push the word stored there
	OpLod               // Pop base, push S[base+m]: LOD <offset>
	OpSto               // Pop value, pop base, S[base+m] = value: STO <offset>
	OpInc               // Grow or shrink the stack: INC <words>
	OpJmp               // Relative jump: JMP <offset>
	OpJpc               // Pop cond, jump if non-zero: JPC <offset>
	OpCho               // Pop and print
	OpChi               // Read an integer and push it
	OpHlt               // Halt
	OpNdb               // Stop debug and trace output
	OpNeg               // Negate top of stack
	OpAdd               // Pop two, push a + b
	OpSub               // Pop two, push a - b (b is TOS)
	OpMul               // Pop two, push a * b
	OpDiv               // Pop two, push a / b
	OpMod               // Pop two, push a % b
	OpEql               // Pop two, push 1 if a == b
	OpNeq               // Pop two, push 1 if a != b
	OpLss               // Pop two, push 1 if a < b
	OpLeq               // Pop two, push 1 if a <= b
	OpGtr               // Pop two, push 1 if a > b
	OpGeq               // Pop two, push 1 if a >= b
	OpPsp               // Push sp
	OpPbp               // Push bp
	OpPpc               // Push pc
	OpJmi               // Pop address, jump there
)

// NumOpcodes is the number of entries in the instruction table.
const NumOpcodes = 31

// OperandKind says how an instruction interprets its operand.
type OperandKind uint8

const (
	OperandNone    OperandKind = iota // operand is not used
	OperandLiteral                    // value pushed on the stack
	OperandAddress                    // absolute program address
	OperandOffset                     // offset added to a popped stack address
	OperandSize                       // number of words to allocate
	OperandJump                       // program offset relative to the jump
)

// String returns a human-readable name for an OperandKind.
func (k OperandKind) String() string {
	switch k {
	case OperandNone:
		return "none"
	case OperandLiteral:
		return "literal"
	case OperandAddress:
		return "address"
	case OperandOffset:
		return "offset"
	case OperandSize:
		return "size"
	case OperandJump:
		return "jump"
	default:
		return fmt.Sprintf("OperandKind(%d)", k)
	}
}

// OpcodeInfo provides metadata about each opcode for decoding and listings.
type OpcodeInfo struct {
	Name    string      // Mnemonic
	Operand OperandKind // Operand interpretation
}

var opcodeInfoTable = [NumOpcodes]OpcodeInfo{
	OpNop: {"NOP", OperandNone},
	OpLit: {"LIT", OperandLiteral},
	OpRtn: {"RTN", OperandNone},
	OpCal: {"CAL", OperandAddress},
	OpPop: {"POP", OperandNone},
	OpPsi: {"PSI", OperandNone},
	OpLod: {"LOD", OperandOffset},
	OpSto: {"STO", OperandOffset},
	OpInc: {"INC", OperandSize},
	OpJmp: {"JMP", OperandJump},
	OpJpc: {"JPC", OperandJump},
	OpCho: {"CHO", OperandNone},
	OpChi: {"CHI", OperandNone},
	OpHlt: {"HLT", OperandNone},
	OpNdb: {"NDB", OperandNone},
	OpNeg: {"NEG", OperandNone},
	OpAdd: {"ADD", OperandNone},
	OpSub: {"SUB", OperandNone},
	OpMul: {"MUL", OperandNone},
	OpDiv: {"DIV", OperandNone},
	OpMod: {"MOD", OperandNone},
	OpEql: {"EQL", OperandNone},
	OpNeq: {"NEQ", OperandNone},
	OpLss: {"LSS", OperandNone},
	OpLeq: {"LEQ", OperandNone},
	OpGtr: {"GTR", OperandNone},
	OpGeq: {"GEQ", OperandNone},
	OpPsp: {"PSP", OperandNone},
	OpPbp: {"PBP", OperandNone},
	OpPpc: {"PPC", OperandNone},
	OpJmi: {"JMI", OperandNone},
}

var mnemonics = func() map[string]Opcode {
	m := make(map[string]Opcode, NumOpcodes)
	for op, info := range opcodeInfoTable {
		m[info.Name] = Opcode(op)
	}
	return m
}()

// Legal reports whether op names an entry of the instruction table.
func Legal(op Word) bool {
	return 0 <= op && op < NumOpcodes
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns an OpcodeInfo named "OP(n)" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if Legal(Word(op)) {
		return opcodeInfoTable[op]
	}
	return OpcodeInfo{Name: fmt.Sprintf("OP(%d)", int32(op)), Operand: OperandNone}
}

// String returns the mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Operand returns how the opcode interprets its operand.
func (op Opcode) Operand() OperandKind {
	return GetOpcodeInfo(op).Operand
}

// ParseMnemonic looks up an opcode by mnemonic, ignoring case.
func ParseMnemonic(s string) (Opcode, bool) {
	op, ok := mnemonics[strings.ToUpper(s)]
	return op, ok
}

// AllOpcodes returns every opcode in table order.
func AllOpcodes() []Opcode {
	ops := make([]Opcode, NumOpcodes)
	for i := range ops {
		ops[i] = Opcode(i)
	}
	return ops
}
