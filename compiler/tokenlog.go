package compiler

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

// DefaultTokenLog is the file name CreateTokenLog uses when none is configured.
const DefaultTokenLog = "lexer.log"

// WriteTokenLog writes the token table for a source file. Numbers show their
// value and the end-of-file token shows EOF; every row is followed by a blank
// line.
func WriteTokenLog(w io.Writer, file string, tokens []Token) error {
	if _, err := fmt.Fprintf(w, "Tokens from file %s:\n\n", file); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-12s\t%-8s\t%-8s\t%-12s\n", "Type", "Line", "Column", "Text/Value"); err != nil {
		return err
	}
	for _, tok := range tokens {
		text := tok.Literal
		switch tok.Type {
		case TokenNumber:
			text = strconv.Itoa(int(tok.Value))
		case TokenEOF:
			text = "EOF"
		}
		if _, err := fmt.Fprintf(w, "%-12s\t%-8d\t%-8d\t%-12s\n\n", tok.Type, tok.Pos.Line, tok.Pos.Column, text); err != nil {
			return err
		}
	}
	return nil
}

// CreateTokenLog writes the token table to path, replacing any existing file.
func CreateTokenLog(path, file string, tokens []Token) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create token log: %w", err)
	}
	if err := WriteTokenLog(f, file, tokens); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
