package compiler

import "errors"

// Error kinds. An *Error matches its kind with errors.Is.
var (
	ErrIllegalCharacter   = errors.New("illegal character")
	ErrIdentifierTooLong  = errors.New("identifier too long")
	ErrNumberTooLarge     = errors.New("number too large")
	ErrUnexpectedToken    = errors.New("syntax error")
	ErrUnterminatedBecome = errors.New("expected '=' after ':'")
)

// Error is a lexical or syntax error at a source position.
type Error struct {
	Pos  Position
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Pos.String() + ": " + e.Kind.Error()
	}
	return e.Pos.String() + ": " + e.Kind.Error() + ": " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}
