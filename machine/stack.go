package machine

// StackCapacity is the number of words in the value stack.
const StackCapacity = 2048

// FrameHeaderSize is the number of words CAL expects below the new frame:
// the return address and the dynamic link.
const FrameHeaderSize = 2

// Stack is the machine's only mutable storage: operands and activation
// frames share one fixed array. sp is one past the highest occupied slot,
// bp is the base of the current frame.
type Stack struct {
	words [StackCapacity]Word
	sp    Address
	bp    Address
}

// NewStack returns an empty stack (sp = bp = 0).
func NewStack() *Stack {
	return &Stack{}
}

func (s *Stack) checkInvariant() error {
	switch {
	case s.bp < 0:
		return runFault(ErrInvariant, "BP (%d) < 0", s.bp)
	case s.sp < 0:
		return runFault(ErrInvariant, "SP (%d) < 0", s.sp)
	case s.sp < s.bp:
		return runFault(ErrInvariant, "SP (%d) < BP (%d)", s.sp, s.bp)
	case s.sp >= StackCapacity:
		return runFault(ErrInvariant, "SP (%d) >= capacity (%d)", s.sp, StackCapacity)
	}
	return nil
}

func legalIndex(addr Address) bool {
	return addr >= 0 && addr < StackCapacity
}

// Size returns sp.
func (s *Stack) Size() Address {
	return s.sp
}

// Base returns bp, the base of the current activation frame.
func (s *Stack) Base() Address {
	return s.bp
}

// Empty reports whether the stack holds no words.
func (s *Stack) Empty() bool {
	return s.sp == 0
}

// Push writes v at sp and advances sp. The last slot is never handed out so
// that sp stays below StackCapacity.
func (s *Stack) Push(v Word) error {
	if s.sp+1 >= StackCapacity {
		return runFault(ErrStackOverflow, "SP (%d), capacity %d", s.sp, StackCapacity)
	}
	s.words[s.sp] = v
	s.sp++
	return s.checkInvariant()
}

// Pop removes and returns the top word.
func (s *Stack) Pop() (Word, error) {
	if s.Empty() {
		return 0, runFault(ErrStackUnderflow, "pop of empty stack")
	}
	s.sp--
	if err := s.checkInvariant(); err != nil {
		return 0, err
	}
	return s.words[s.sp], nil
}

// Peek returns the top word without removing it.
func (s *Stack) Peek() (Word, error) {
	if s.Empty() {
		return 0, runFault(ErrStackUnderflow, "peek of empty stack")
	}
	return s.words[s.sp-1], nil
}

// Allocate moves sp by n words; a negative n releases words.
func (s *Stack) Allocate(n Word) error {
	newSP := int64(s.sp) + int64(n)
	if newSP < 0 || newSP >= StackCapacity {
		return runFault(ErrIllegalAllocation, "cannot change stack size by %d (new SP %d, capacity %d)",
			n, newSP, StackCapacity)
	}
	s.sp = Address(newSP)
	return s.checkInvariant()
}

// Fetch reads the word at addr. The index is checked against the capacity,
// not against sp.
func (s *Stack) Fetch(addr Address) (Word, error) {
	if !legalIndex(addr) {
		return 0, runFault(ErrIllegalAddress, "stack index %d", addr)
	}
	return s.words[addr], nil
}

// Assign writes v at addr, with the same bounds as Fetch.
func (s *Stack) Assign(addr Address, v Word) error {
	if !legalIndex(addr) {
		return runFault(ErrIllegalAddress, "stack index %d", addr)
	}
	s.words[addr] = v
	return nil
}

// Enter opens a frame whose base is the current top of stack.
func (s *Stack) Enter() error {
	s.bp = s.sp
	return s.checkInvariant()
}

// Leave closes the current frame: sp drops to the frame header, bp is
// restored from the dynamic link and the saved return address is returned.
func (s *Stack) Leave() (Address, error) {
	header := s.bp - FrameHeaderSize
	if header < 0 {
		return 0, runFault(ErrIllegalAddress, "frame header below stack bottom (BP %d)", s.bp)
	}
	ra, dl := s.words[header], s.words[header+1]
	s.sp = header
	s.bp = dl
	if err := s.checkInvariant(); err != nil {
		return 0, err
	}
	return ra, nil
}

// Frame returns a copy of the current frame, S[bp:sp].
func (s *Stack) Frame() []Word {
	if s.checkInvariant() != nil {
		return nil
	}
	return append([]Word(nil), s.words[s.bp:s.sp]...)
}

// Snapshot returns a copy of every occupied word, S[0:sp].
func (s *Stack) Snapshot() []Word {
	if !legalIndex(s.sp) {
		return nil
	}
	return append([]Word(nil), s.words[:s.sp]...)
}
