package compiler

import (
	"errors"
	"strings"
	"testing"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `. ; , ( ) = <> < <= > >= + - * / :=`
	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenPeriod, "."},
		{TokenSemicolon, ";"},
		{TokenComma, ","},
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenEq, "="},
		{TokenNeq, "<>"},
		{TokenLss, "<"},
		{TokenLeq, "<="},
		{TokenGtr, ">"},
		{TokenGeq, ">="},
		{TokenPlus, "+"},
		{TokenMinus, "-"},
		{TokenMult, "*"},
		{TokenDiv, "/"},
		{TokenBecomes, ":="},
		{TokenEOF, ""},
	}

	l := NewLexer("ops.pl0", input)
	for i, exp := range expected {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("token[%d]: %v", i, err)
		}
		if tok.Type != exp.typ {
			t.Errorf("token[%d] type = %v, want %v", i, tok.Type, exp.typ)
		}
		if tok.Literal != exp.lit {
			t.Errorf("token[%d] literal = %q, want %q", i, tok.Literal, exp.lit)
		}
	}
}

func TestLexerAdjacentOperators(t *testing.T) {
	tokens, err := Tokenize("adj.pl0", "x:=y<>z<=1>=2<3")
	if err != nil {
		t.Fatal(err)
	}
	want := []TokenType{
		TokenIdent, TokenBecomes, TokenIdent, TokenNeq, TokenIdent, TokenLeq,
		TokenNumber, TokenGeq, TokenNumber, TokenLss, TokenNumber, TokenEOF,
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i := range want {
		if tokens[i].Type != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, tokens[i].Type, want[i])
		}
	}
}

func TestLexerReservedWords(t *testing.T) {
	words := ReservedWords()
	if len(words) != 15 {
		t.Fatalf("len(ReservedWords()) = %d, want 15", len(words))
	}
	if words[0] != "const" || words[len(words)-1] != "odd" {
		t.Errorf("ReservedWords() = %v, want const first and odd last", words)
	}
	for _, w := range words {
		tokens, err := Tokenize("kw.pl0", w)
		if err != nil {
			t.Fatal(err)
		}
		if tokens[0].Type == TokenIdent {
			t.Errorf("%q lexed as an identifier", w)
		}
		if tokens[0].Type != LookupIdent(w) {
			t.Errorf("%q lexed as %v, want %v", w, tokens[0].Type, LookupIdent(w))
		}
	}
	// Reserved words are case-sensitive.
	if LookupIdent("BEGIN") != TokenIdent {
		t.Error("BEGIN should be an identifier")
	}
}

func TestLexerNumbers(t *testing.T) {
	tokens, err := Tokenize("n.pl0", "0 42 2147483647")
	if err != nil {
		t.Fatal(err)
	}
	want := []int32{0, 42, 2147483647}
	for i, v := range want {
		if tokens[i].Type != TokenNumber || tokens[i].Value != v {
			t.Errorf("token[%d] = %v, want number %d", i, tokens[i], v)
		}
	}
}

func TestLexerPositions(t *testing.T) {
	src := "var x;\n# comment line\n  x := 10.\n"
	tokens, err := Tokenize("pos.pl0", src)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		typ       TokenType
		line, col int
	}{
		{TokenVar, 1, 1},
		{TokenIdent, 1, 5},
		{TokenSemicolon, 1, 6},
		{TokenIdent, 3, 3},
		{TokenBecomes, 3, 5},
		{TokenNumber, 3, 8},
		{TokenPeriod, 3, 10},
		{TokenEOF, 4, 1},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		tok := tokens[i]
		if tok.Type != w.typ || tok.Pos.Line != w.line || tok.Pos.Column != w.col {
			t.Errorf("token[%d] = %v at %d:%d, want %v at %d:%d",
				i, tok.Type, tok.Pos.Line, tok.Pos.Column, w.typ, w.line, w.col)
		}
		if tok.Pos.File != "pos.pl0" {
			t.Errorf("token[%d] file = %q", i, tok.Pos.File)
		}
	}
	if end := tokens[5].End(); end.Column != 10 {
		t.Errorf("End() of 10 = column %d, want 10", end.Column)
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		kind      error
		line, col int
	}{
		{"illegal character", "x := 1 ! 2", ErrIllegalCharacter, 1, 8},
		{"lone colon", "begin\n  x : 1", ErrUnterminatedBecome, 2, 5},
		{"number too large", "x := 2147483648", ErrNumberTooLarge, 1, 6},
		{"identifier too long", "\n" + strings.Repeat("a", MaxIdentLength+1), ErrIdentifierTooLong, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize("bad.pl0", tt.src)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("err = %v, want %v", err, tt.kind)
			}
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("err is %T, want *Error", err)
			}
			if e.Pos.Line != tt.line || e.Pos.Column != tt.col {
				t.Errorf("error at %d:%d, want %d:%d", e.Pos.Line, e.Pos.Column, tt.line, tt.col)
			}
			if !strings.HasPrefix(err.Error(), "bad.pl0:") {
				t.Errorf("Error() = %q, want file prefix", err.Error())
			}
		})
	}
}

func TestLexerLongestIdentifier(t *testing.T) {
	name := strings.Repeat("b", MaxIdentLength)
	tokens, err := Tokenize("long.pl0", name)
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Literal != name {
		t.Error("identifier of maximum length was not returned intact")
	}
}

func TestLexerEOFRepeats(t *testing.T) {
	l := NewLexer("e.pl0", "")
	for i := 0; i < 3; i++ {
		tok, err := l.NextToken()
		if err != nil || tok.Type != TokenEOF {
			t.Fatalf("call %d: %v, %v; want EOF", i, tok, err)
		}
		if tok.Pos.Line != 1 || tok.Pos.Column != 1 {
			t.Errorf("call %d: EOF at %d:%d, want 1:1", i, tok.Pos.Line, tok.Pos.Column)
		}
	}
}
