package machine

import (
	"errors"
	"testing"
)

func TestStackPushPop(t *testing.T) {
	s := NewStack()
	for i := Word(1); i <= 3; i++ {
		if err := s.Push(i); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if s.Size() != 3 {
		t.Errorf("Size() = %d, want 3", s.Size())
	}
	top, err := s.Peek()
	if err != nil || top != 3 {
		t.Errorf("Peek() = %d, %v; want 3, nil", top, err)
	}
	for want := Word(3); want >= 1; want-- {
		got, err := s.Pop()
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if got != want {
			t.Errorf("Pop() = %d, want %d", got, want)
		}
	}
	if !s.Empty() {
		t.Error("stack should be empty")
	}
}

func TestStackUnderflow(t *testing.T) {
	s := NewStack()
	if _, err := s.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Pop on empty stack: err = %v, want ErrStackUnderflow", err)
	}
	if _, err := s.Peek(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Peek on empty stack: err = %v, want ErrStackUnderflow", err)
	}
}

func TestStackOverflow(t *testing.T) {
	s := NewStack()
	for i := 0; i < StackCapacity-1; i++ {
		if err := s.Push(Word(i)); err != nil {
			t.Fatalf("Push #%d: %v", i, err)
		}
	}
	if s.Size() != StackCapacity-1 {
		t.Fatalf("Size() = %d, want %d", s.Size(), StackCapacity-1)
	}
	if err := s.Push(0); !errors.Is(err, ErrStackOverflow) {
		t.Errorf("Push past capacity: err = %v, want ErrStackOverflow", err)
	}
	if s.Size() != StackCapacity-1 {
		t.Errorf("failed Push changed Size() to %d", s.Size())
	}
}

func TestStackAllocate(t *testing.T) {
	tests := []struct {
		name    string
		start   Word
		n       Word
		wantSP  Address
		wantErr error
	}{
		{"grow", 0, 5, 5, nil},
		{"shrink", 5, -5, 0, nil},
		{"zero", 3, 0, 3, nil},
		{"below zero", 2, -3, 2, ErrIllegalAllocation},
		{"to capacity", 0, StackCapacity, 0, ErrIllegalAllocation},
		{"largest", 0, StackCapacity - 1, StackCapacity - 1, nil},
		{"huge", 10, 2147483647, 10, ErrIllegalAllocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStack()
			if err := s.Allocate(tt.start); err != nil {
				t.Fatalf("setup Allocate(%d): %v", tt.start, err)
			}
			err := s.Allocate(tt.n)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Allocate(%d) err = %v, want %v", tt.n, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Allocate(%d): %v", tt.n, err)
			}
			if s.Size() != tt.wantSP {
				t.Errorf("Size() = %d, want %d", s.Size(), tt.wantSP)
			}
		})
	}
}

func TestStackAllocateBelowBase(t *testing.T) {
	s := NewStack()
	if err := s.Allocate(4); err != nil {
		t.Fatal(err)
	}
	if err := s.Enter(); err != nil {
		t.Fatal(err)
	}
	if err := s.Allocate(-1); !errors.Is(err, ErrInvariant) {
		t.Errorf("Allocate below bp: err = %v, want ErrInvariant", err)
	}
}

func TestStackFetchAssign(t *testing.T) {
	s := NewStack()
	// Raw indexing is bounded by capacity, not by sp.
	if err := s.Assign(100, 42); err != nil {
		t.Fatalf("Assign(100): %v", err)
	}
	v, err := s.Fetch(100)
	if err != nil || v != 42 {
		t.Errorf("Fetch(100) = %d, %v; want 42, nil", v, err)
	}
	for _, addr := range []Address{-1, StackCapacity} {
		if _, err := s.Fetch(addr); !errors.Is(err, ErrIllegalAddress) {
			t.Errorf("Fetch(%d) err = %v, want ErrIllegalAddress", addr, err)
		}
		if err := s.Assign(addr, 1); !errors.Is(err, ErrIllegalAddress) {
			t.Errorf("Assign(%d) err = %v, want ErrIllegalAddress", addr, err)
		}
	}
}

func TestStackEnterLeave(t *testing.T) {
	s := NewStack()
	// args | RA | DL
	for _, v := range []Word{7, 55, 0} {
		if err := s.Push(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Enter(); err != nil {
		t.Fatal(err)
	}
	if s.Base() != 3 {
		t.Fatalf("Base() = %d, want 3", s.Base())
	}
	if err := s.Push(99); err != nil {
		t.Fatal(err)
	}
	if got := s.Frame(); len(got) != 1 || got[0] != 99 {
		t.Errorf("Frame() = %v, want [99]", got)
	}

	ra, err := s.Leave()
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if ra != 55 {
		t.Errorf("return address = %d, want 55", ra)
	}
	if s.Size() != 1 || s.Base() != 0 {
		t.Errorf("after Leave: SP = %d, BP = %d; want 1, 0", s.Size(), s.Base())
	}
	if got := s.Snapshot(); len(got) != 1 || got[0] != 7 {
		t.Errorf("Snapshot() = %v, want [7]", got)
	}
}

func TestStackLeaveWithoutHeader(t *testing.T) {
	s := NewStack()
	if _, err := s.Leave(); !errors.Is(err, ErrIllegalAddress) {
		t.Errorf("Leave at bp 0: err = %v, want ErrIllegalAddress", err)
	}
}

func TestStackLeaveBadDynamicLink(t *testing.T) {
	s := NewStack()
	// Dynamic link points above the restored sp.
	for _, v := range []Word{0, 10} {
		if err := s.Push(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Enter(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Leave(); !errors.Is(err, ErrInvariant) {
		t.Errorf("Leave with dl > sp: err = %v, want ErrInvariant", err)
	}
}
