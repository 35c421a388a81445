package wipe

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"wasp/wipe/internal/eeprom"
	"wasp/wipe/internal/wasp"
)

// Options configures a Session.  Zero sizes take the controller's
// defaults; Store, Sink and Source are required.
type Options struct {
	ProgramBytes int
	MaxSymbols   int
	MaxLine      int

	Store  eeprom.Store
	Sink   wasp.Sink
	Source LineSource

	Out   io.Writer
	Log   *zap.Logger
	Clock clockwork.Clock

	// TraceDump dumps every decoded statement before it executes
	TraceDump bool
}

// Stats describes the most recent run
type Stats struct {
	Statements int
	Elapsed    time.Duration
	User       time.Duration
	System     time.Duration
	CPUValid   bool
}

//
// A Session is one interpreter: program buffer, symbol table,
// directory, and the execution cursor.  Nothing in it is safe for
// concurrent use; the console drives it from a single goroutine
//

type Session struct {
	prog *Program
	syms *SymbolTable
	dir  *Directory
	ev   *evaluator
	comp *compiler

	sink  wasp.Sink
	src   LineSource
	out   *printer
	log   *zap.Logger
	clock clockwork.Clock

	maxLine   int
	traceDump bool

	state    RunState
	cursor   int
	stats    Stats
	runClock runClock
	exiting  bool
}

func New(opts Options) (*Session, error) {

	if opts.Store == nil || opts.Sink == nil || opts.Source == nil {
		return nil, fmt.Errorf("wipe: store, sink and source are required")
	}

	if opts.ProgramBytes <= 0 {
		opts.ProgramBytes = defaultProgramBytes
	}

	if opts.MaxSymbols <= 0 {
		opts.MaxSymbols = defaultMaxSymbols
	}

	if opts.MaxLine <= 0 {
		opts.MaxLine = defaultMaxLine
	}

	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	dir, err := OpenDirectory(opts.Store, opts.Log.Named("eeprom"))
	if err != nil {
		return nil, err
	}

	s := &Session{
		prog:      NewProgram(opts.ProgramBytes),
		syms:      NewSymbolTable(opts.MaxSymbols),
		dir:       dir,
		sink:      opts.Sink,
		src:       opts.Source,
		out:       &printer{w: opts.Out},
		log:       opts.Log,
		clock:     opts.Clock,
		maxLine:   opts.MaxLine,
		traceDump: opts.TraceDump,
	}

	s.ev = &evaluator{syms: s.syms}
	s.comp = &compiler{ev: s.ev}

	return s, nil
}

func (s *Session) Program() *Program { return s.prog }

func (s *Session) Symbols() *SymbolTable { return s.syms }

func (s *Session) Directory() *Directory { return s.dir }

func (s *Session) State() RunState { return s.state }

func (s *Session) Stats() Stats { return s.stats }

// Exiting reports whether the exit command has been given
func (s *Session) Exiting() bool { return s.exiting }

// Greeting prints the sign-on banner
func (s *Session) Greeting() {

	s.myPrintf("WIPE version %s, %d bytes program memory, %d bytes EEPROM free\n",
		VERSION, s.prog.Cap(), s.dir.Free())
}
