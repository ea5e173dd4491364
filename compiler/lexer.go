package compiler

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for PL/0 source
// ---------------------------------------------------------------------------

// MaxIdentLength is the longest identifier the lexer accepts.
const MaxIdentLength = 255

// Lexer tokenizes PL/0 source code.
type Lexer struct {
	file    string
	input   string
	pos     int  // offset of ch
	readPos int  // offset after ch
	ch      rune // current character, 0 at end of input
	line    int  // line of ch (1-based)
	col     int  // column of ch (1-based)
	eof     bool
}

// NewLexer creates a new lexer for the given input. file is used only in
// token positions and errors.
func NewLexer(file, input string) *Lexer {
	l := &Lexer{
		file:  file,
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.eof {
		return
	}
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	l.col++
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input)
		l.eof = true
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the position of the current character.
func (l *Lexer) position() Position {
	return Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *Lexer) errorf(pos Position, kind error, format string, args ...any) *Error {
	return &Error{Pos: pos, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NextToken returns the next token. After the end of input it keeps
// returning TokenEOF.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespaceAndComments()

	pos := l.position()

	single := func(t TokenType) (Token, error) {
		lit := string(l.ch)
		l.readChar()
		return Token{Type: t, Literal: lit, Pos: pos}, nil
	}

	switch {
	case l.eof:
		return Token{Type: TokenEOF, Pos: pos}, nil

	case l.ch == '.':
		return single(TokenPeriod)
	case l.ch == ';':
		return single(TokenSemicolon)
	case l.ch == ',':
		return single(TokenComma)
	case l.ch == '(':
		return single(TokenLParen)
	case l.ch == ')':
		return single(TokenRParen)
	case l.ch == '=':
		return single(TokenEq)
	case l.ch == '+':
		return single(TokenPlus)
	case l.ch == '-':
		return single(TokenMinus)
	case l.ch == '*':
		return single(TokenMult)
	case l.ch == '/':
		return single(TokenDiv)

	case l.ch == ':':
		if l.peekChar() != '=' {
			return Token{}, l.errorf(pos, ErrUnterminatedBecome, "")
		}
		l.readChar()
		l.readChar()
		return Token{Type: TokenBecomes, Literal: ":=", Pos: pos}, nil

	case l.ch == '<':
		switch l.peekChar() {
		case '>':
			l.readChar()
			l.readChar()
			return Token{Type: TokenNeq, Literal: "<>", Pos: pos}, nil
		case '=':
			l.readChar()
			l.readChar()
			return Token{Type: TokenLeq, Literal: "<=", Pos: pos}, nil
		}
		return single(TokenLss)

	case l.ch == '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenGeq, Literal: ">=", Pos: pos}, nil
		}
		return single(TokenGtr)

	case isDigit(l.ch):
		return l.readNumber(pos)

	case isLetter(l.ch):
		return l.readIdentifier(pos)

	default:
		ch := l.ch
		return Token{}, l.errorf(pos, ErrIllegalCharacter, "%q", ch)
	}
}

// skipWhitespaceAndComments skips whitespace and '#' line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for !l.eof {
		switch {
		case isSpace(l.ch):
			l.readChar()
		case l.ch == '#':
			for !l.eof && l.ch != '\n' {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier(pos Position) (Token, error) {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.pos]
	if len(lit) > MaxIdentLength {
		return Token{}, l.errorf(pos, ErrIdentifierTooLong, "%d characters, max %d", len(lit), MaxIdentLength)
	}
	return Token{Type: LookupIdent(lit), Literal: lit, Pos: pos}, nil
}

func (l *Lexer) readNumber(pos Position) (Token, error) {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.pos]
	v, err := strconv.ParseInt(lit, 10, 32)
	if err != nil {
		return Token{}, l.errorf(pos, ErrNumberTooLarge, "%s", lit)
	}
	return Token{Type: TokenNumber, Literal: lit, Value: int32(v), Pos: pos}, nil
}

// Tokenize returns every token of src, ending with TokenEOF. It stops at the
// first lexical error.
func Tokenize(file, src string) ([]Token, error) {
	l := NewLexer(file, src)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

func isLetter(ch rune) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isSpace(ch rune) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
