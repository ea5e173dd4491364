package compiler

import (
	"fmt"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Token types for the PL/0 lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token. The order is fixed: token logs
// and tools that read them depend on it.
type TokenType int

const (
	TokenPeriod    TokenType = iota // .
	TokenConst                      // const
	TokenSemicolon                  // ;
	TokenComma                      // ,
	TokenVar                        // var
	TokenProcedure                  // procedure
	TokenBecomes                    // :=
	TokenCall                       // call
	TokenBegin                      // begin
	TokenEnd                        // end
	TokenIf                         // if
	TokenThen                       // then
	TokenElse                       // else
	TokenWhile                      // while
	TokenDo                         // do
	TokenRead                       // read
	TokenWrite                      // write
	TokenSkip                       // skip
	TokenOdd                        // odd
	TokenLParen                     // (
	TokenRParen                     // )
	TokenIdent                      // x, count1
	TokenNumber                     // 42
	TokenEq                         // =
	TokenNeq                        // <>
	TokenLss                        // <
	TokenLeq                        // <=
	TokenGtr                        // >
	TokenGeq                        // >=
	TokenPlus                       // +
	TokenMinus                      // -
	TokenMult                       // *
	TokenDiv                        // /
	TokenEOF
)

// NumTokenTypes is the number of token types.
const NumTokenTypes = 34

var tokenNames = [NumTokenTypes]string{
	"periodsym", "constsym", "semisym", "commasym",
	"varsym", "procsym", "becomessym", "callsym", "beginsym", "endsym",
	"ifsym", "thensym", "elsesym", "whilesym", "dosym",
	"readsym", "writesym", "skipsym",
	"oddsym", "lparensym", "rparensym",
	"identsym", "numbersym",
	"eqsym", "neqsym", "lessym", "leqsym", "gtrsym", "geqsym",
	"plussym", "minussym", "multsym", "divsym",
	"eofsym",
}

func (t TokenType) String() string {
	if t >= 0 && t < NumTokenTypes {
		return tokenNames[t]
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Position is a source location.
type Position struct {
	File   string // source file name
	Offset int    // byte offset
	Line   int    // 1-based line number
	Column int    // 1-based column number, counted in characters
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw text
	Value   int32    // numeric value of a TokenNumber
	Pos     Position // start position
}

// End returns the position just past the token. Tokens never span lines.
func (t Token) End() Position {
	end := t.Pos
	end.Offset += len(t.Literal)
	end.Column += utf8.RuneCountInString(t.Literal)
	return end
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenNumber:
		return fmt.Sprintf("%s(%d)", t.Type, t.Value)
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Reserved words mapped to their token types.
var reservedWords = map[string]TokenType{
	"const":     TokenConst,
	"var":       TokenVar,
	"procedure": TokenProcedure,
	"call":      TokenCall,
	"begin":     TokenBegin,
	"end":       TokenEnd,
	"if":        TokenIf,
	"then":      TokenThen,
	"else":      TokenElse,
	"while":     TokenWhile,
	"do":        TokenDo,
	"read":      TokenRead,
	"write":     TokenWrite,
	"skip":      TokenSkip,
	"odd":       TokenOdd,
}

// LookupIdent returns the reserved-word token type for word, or TokenIdent.
func LookupIdent(word string) TokenType {
	if t, ok := reservedWords[word]; ok {
		return t
	}
	return TokenIdent
}

// ReservedWords returns the reserved words in declaration order of their
// token types.
func ReservedWords() []string {
	words := make([]string, 0, len(reservedWords))
	for t := TokenType(0); t < NumTokenTypes; t++ {
		for w, rt := range reservedWords {
			if rt == t {
				words = append(words, w)
			}
		}
	}
	return words
}
