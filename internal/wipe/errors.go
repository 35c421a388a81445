package wipe

import (
	"errors"
	"fmt"
)

//
// Manifest constants for the WIPE error messages.  Callers match on
// the Kind of an *Error; the message text is for the user
//

const (
	EBADCHAR         = "Invalid character"
	EBADLITERAL      = "Malformed literal"
	ELONGIDENT       = "Identifier too long"
	ELONGNAME        = "Program name too long"
	EUNARYSPACE      = "Unary operator must precede its operand"
	EOPERANDEXPECTED = "Operand expected"
	EOPERATOR        = "Operator expected"
	EBADOPERATOR     = "Malformed operator"
	EDELIMITER       = "Unexpected delimiter"
	EMISSINGDELIM    = "Missing ')'"
	EARGCOUNT        = "Wrong number of arguments"
	EUNKNOWNSTMT     = "Unknown statement"
	ETRAILING        = "Unexpected text at end of line"
	EBADTYPE         = "Unknown type"
	EBADSTRING       = "Unterminated string"
	EIMMEDIATE       = "Not valid in immediate mode"
	ELINETOOLONG     = "Line too long"
	EBADLINENO       = "Illegal line number"
	EBADCOMMAND      = "Unknown command"
	EINCOMPATIBLE    = "Incompatible operands"
	ECOERCE          = "Type mismatch"
	ERANGE           = "Value out of range"
	EUNDEFINED       = "Undefined identifier"
	ENOLABEL         = "Label not found"
	EDUPLICATE       = "Duplicate declaration"
	ESYMTABFULL      = "Symbol table full"
	EDIVISIONBYZERO  = "Division by zero"
	ENORAM           = "Insufficient RAM"
	ENOSPACE         = "Insufficient EEPROM space"
	EFILENOTFOUND    = "File not found"
	EFILEEXISTS      = "File already exists"
	EEMPTYPROGRAM    = "No program"
	ELINERANGE       = "Line range out of bounds"
	ERENUMBER        = "Too many lines to renumber"
	EINTERRUPTED     = "Interrupted"
)

// ErrorKind classifies interpreter failures
type ErrorKind int

const (
	LexicalError ErrorKind = iota + 1
	SyntaxError
	TypeError
	SemanticError
	StorageError
	RuntimeAbort
)

var errorKindNames = map[ErrorKind]string{
	LexicalError:  "Lexical error",
	SyntaxError:   "Syntax error",
	TypeError:     "Type error",
	SemanticError: "Semantic error",
	StorageError:  "Storage error",
	RuntimeAbort:  "Aborted",
}

func (k ErrorKind) String() string {

	if s, ok := errorKindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

//
// Error is what every interpreter operation reports.  Column is the
// 1-based position of the offending character within Source (0 when
// there is no useful position), Line the stored line number being
// executed (0 for compile errors and immediate statements)
//

type Error struct {
	Kind   ErrorKind
	Msg    string
	Source string
	Column int
	Line   int
}

func (e *Error) Error() string {

	s := e.Kind.String() + ": " + e.Msg

	if e.Line != 0 {
		s += fmt.Sprintf(" at line %d", e.Line)
	}

	if e.Column != 0 {
		s += fmt.Sprintf(" (column %d)", e.Column)
	}

	return s
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// errorAt builds an error located at 0-based offset pos of src
func errorAt(kind ErrorKind, msg string, src string, pos int) *Error {
	return &Error{Kind: kind, Msg: msg, Source: src, Column: pos + 1}
}

//
// Shift an error's column to account for the expression having been
// cut out of a longer line.  Only errors carrying a position are
// touched
//

func relocate(err error, src string, base int) error {

	if e, ok := err.(*Error); ok && e.Column != 0 {
		e.Column += base
		e.Source = src
	}

	return err
}

func withLine(err error, line int) error {

	if e, ok := err.(*Error); ok && e.Line == 0 {
		e.Line = line
	}

	return err
}

// IsKind reports whether err is an interpreter error of the given kind
func IsKind(err error, kind ErrorKind) bool {

	var e *Error

	return errors.As(err, &e) && e.Kind == kind
}
