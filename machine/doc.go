// Package machine implements the PL/0 stack machine: a bytecode interpreter
// that loads a textual instruction listing and executes it against a single
// bounded value/activation stack.
//
// # Architecture Overview
//
// The machine is made of four parts:
//
//   - Opcodes and instructions: a fixed, positional table of 31 opcodes
//     (NOP=0 ... JMI=30). Decoded instructions are a closed set of variants
//     (Literal, Call, Frame, Alloc, Branch, Simple), each carrying only the
//     operand interpretation it needs.
//
//   - Program: an immutable instruction sequence produced by the decoder from
//     text (one "<op> <m>" pair per line) or from a CBOR program image.
//
//   - Stack: a fixed-capacity array of words with a stack pointer and a base
//     pointer. It is the only code that touches stack memory and it enforces
//     0 <= bp <= sp < StackCapacity after every mutation.
//
//   - Machine: the fetch-execute loop. It owns the program counter, the halt
//     flag and the output suppression flag; the Stack is passed in so a single
//     stack lives for the whole run.
//
// # Faults
//
// Every failure is a *Fault returned through the loop; nothing in this package
// exits the process or panics on input. Load-time faults (malformed line,
// illegal opcode, program too large) carry the source file and line; run-time
// faults carry the program counter and the faulting instruction.
//
// # Calling Convention
//
// CAL and RTN use a two word frame header that the caller builds right before
// the call:
//
//	... args ... | return address | dynamic link |   <- sp when CAL executes
//
// CAL sets bp to sp and jumps to its operand. RTN reads the header at bp-2
// and bp-1, collapses sp to bp-2, restores bp from the dynamic link and jumps
// to the return address. A typical call sequence is
//
//	PPC          ; push address of the next instruction
//	LIT 4
//	ADD          ; return address = instruction after CAL
//	PBP          ; dynamic link
//	CAL target
//
// Arguments pushed before the header stay on the caller's side of the stack
// and are addressed by the callee as PBP; LOD -3, PBP; LOD -4, and so on.
package machine
