// Package wipe implements the WIPE interpreter of the WASP controller:
// a small line-numbered language compiled to compact byte records,
// edited like a classic line editor, saved to EEPROM and executed one
// statement at a time against a WASP command sink.
package wipe

import (
	"fmt"

	"wasp/wipe/internal/wasp"
)

//
// Constants
//

const VERSION = "5.00"

const maxIdentLen = 4
const maxNameLen = 12
const nameFieldLen = maxNameLen + 1

const defaultProgramBytes = 1024
const defaultMaxSymbols = 200
const defaultMaxLine = 80

const minLineNo = 1
const maxLineNo = 255

const renumLow = 5
const renumHigh = 250

// Tokenized line header: line number, record length, statement kind
const hdrLineNo = 0
const hdrLength = 1
const hdrKind = 2
const hdrSize = 3

const maxRecordLen = 255

// Function call parameters must fit the protocol's byte width
const minParam = -128
const maxParam = 255

const myPrompt = "> "

//
// Value types.  The numbering is the type byte of a compiled var
// statement and must not change
//

type ValueType byte

const (
	TypeNone ValueType = iota
	TypeLabel
	TypeInt
	TypeFloat
	TypeBool
)

var typeNames = map[ValueType]string{
	TypeNone:  "none",
	TypeLabel: "label",
	TypeInt:   "int",
	TypeFloat: "float",
	TypeBool:  "bool",
}

func (t ValueType) String() string {

	if s, ok := typeNames[t]; ok {
		return s
	}

	return fmt.Sprintf("type(%d)", byte(t))
}

//
// Statement kinds.  Part of the persisted record format
//

type StmtKind byte

const (
	KindVar StmtKind = iota + 1
	KindLet
	KindLabel
	KindGoto
	KindIf
	KindPrint
	KindCall
)

var stmtKindNames = map[StmtKind]string{
	KindVar:   "var",
	KindLet:   "let",
	KindLabel: "label",
	KindGoto:  "goto",
	KindIf:    "if",
	KindPrint: "print",
	KindCall:  "call",
}

func (k StmtKind) String() string {

	if s, ok := stmtKindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("kind(%d)", byte(k))
}

// print discriminators
const (
	printString byte = iota
	printIdent
)

// function call discriminators
const (
	callWasp byte = iota
	callMisc
)

//
// A function name binds to exactly one opcode (or misc function id)
// and a fixed parameter count
//

type funcDef struct {
	name   string
	misc   bool
	opcode byte
	params int
}

var funcDefs = []funcDef{
	{"Bkgrd", false, byte(wasp.CmdBkgrd), 4},
	{"Group", false, byte(wasp.CmdGroup), 4},
	{"Line", false, byte(wasp.CmdLine), 6},
	{"Reset", false, byte(wasp.CmdReset), 1},
	{"State", false, byte(wasp.CmdState), 2},
	{"Shift", false, byte(wasp.CmdShift), 2},
	{"Swap", false, byte(wasp.CmdSwap), 7},
	{"Rainbow", false, byte(wasp.CmdRainbow), 2},
	{"RainCycle", false, byte(wasp.CmdRainCycle), 1},
	{"Speed", false, byte(wasp.CmdSpeed), 2},
	{"Twinkle", false, byte(wasp.CmdTwinkle), 5},
	{"Pause", true, byte(wasp.MiscPause), 3},
}

// RunState is the execution engine's state
type RunState int

const (
	Idle RunState = iota
	Executing
	Done
	Aborted
)

func (s RunState) String() string {

	switch s {
	case Idle:
		return "idle"
	case Executing:
		return "executing"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

// LineSource delivers console lines and the cancel signal polled
// while a program runs
type LineSource interface {
	ReadLine(prompt string) (string, error)
	Cancelled() bool
}
