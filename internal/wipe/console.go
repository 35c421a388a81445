package wipe

import (
	"errors"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

//
// The console command surface.  A line is a command verb, a line
// number (store, replace or delete a program line), or else an
// immediate statement
//

type command struct {
	exec func(s *Session, sc *scanner) error
	help string
}

var commandMap map[string]*command

func init() {

	commandMap = map[string]*command{
		"del":   {executeDel, "Delete a line or range of lines: del 10, del 10-20, del 10-, del -20"},
		"dir":   {executeDir, "List the programs saved in EEPROM"},
		"erase": {executeErase, "Erase a saved program: erase <name>"},
		"exit":  {executeExit, "Leave the interpreter"},
		"help":  {executeHelp, "Show the commands, or describe one: help <command>"},
		"list":  {executeList, "List the program, optionally a range of lines"},
		"load":  {executeLoad, "Load a saved program into memory: load <name>"},
		"prof":  {executeProf, "Show memory usage and statistics of the last run"},
		"renum": {executeRenum, "Renumber the program from 5 to 250 in even steps"},
		"run":   {executeRun, "Run the program in memory"},
		"save":  {executeSave, "Save the program in memory to EEPROM: save <name>"},
		"start": {executeStart, "Load a saved program and run it: start <name>"},
	}
}

//
// Loop reads and executes console lines until exit or end of input.
// Errors are reported and never end the loop
//

func (s *Session) Loop() error {

	for !s.exiting {
		s.out.resetPrint()

		line, err := s.src.ReadLine(myPrompt)
		if errors.Is(err, io.EOF) {
			s.out.resetPrint()
			return nil
		} else if err != nil {
			return err
		}

		s.Interpret(line)
	}

	return nil
}

// Interpret executes one console line, reporting any error or panic
// on the console
func (s *Session) Interpret(line string) {

	s.call(func() {
		if err := s.Execute(line); err != nil {
			s.printError(err)
		}
	})

	s.state = Idle
}

// Execute processes one console line
func (s *Session) Execute(line string) error {

	if len(line) > s.maxLine {
		return newError(SyntaxError, ELINETOOLONG)
	}

	sc := newScanner(line)
	t := sc.scanCommand()

	switch t.kind {
	case tokLineNo:
		return s.storeLine(sc, t)

	case tokCommand:
		s.log.Debug("command", zap.String("verb", t.text))
		return commandMap[t.text].exec(s, sc)
	}

	if sc.atEOL() {
		return nil
	}

	return s.Immediate(line)
}

//
// <line#> [statement].  A bare line number deletes that line
//

func (s *Session) storeLine(sc *scanner, t token) error {

	number, err := parseLineNo(sc.src, t)
	if err != nil {
		return err
	}

	if sc.atEOL() {
		s.prog.DeleteRange(number, number)
		return nil
	}

	base := sc.pos

	_, rec, err := s.comp.compileLine(sc.src[base:], number)
	if err != nil {
		return relocate(err, sc.src, base)
	}

	return s.prog.Insert(rec)
}

func parseLineNo(src string, t token) (int, error) {

	if len(t.text) > 3 {
		return 0, errorAt(StorageError, ELINERANGE, src, t.pos)
	}

	n, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, errorAt(SyntaxError, EBADLINENO, src, t.pos)
	}

	if n < minLineNo || n > maxLineNo {
		return 0, errorAt(StorageError, ELINERANGE, src, t.pos)
	}

	return n, nil
}

// scanLineNo reads one line number of a range
func (s *scanner) scanLineNo() (int, error) {

	s.skipSpace()

	begin := s.pos
	for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
		s.pos++
	}

	if s.pos == begin {
		return 0, errorAt(SyntaxError, EBADLINENO, s.src, begin)
	}

	return parseLineNo(s.src, token{kind: tokLineNo, text: s.src[begin:s.pos], pos: begin})
}

//
// A range is n, n-m, n- or -m.  With nothing given, list means the
// whole program; del insists on a range
//

func parseRange(sc *scanner, required bool) (int, int, error) {

	lower, upper := minLineNo, maxLineNo

	if sc.atEOL() {
		if required {
			return 0, 0, errorAt(SyntaxError, EBADLINENO, sc.src, sc.pos)
		}

		return lower, upper, nil
	}

	var err error

	if sc.peek() != '-' {
		if lower, err = sc.scanLineNo(); err != nil {
			return 0, 0, err
		}

		upper = lower

		sc.skipSpace()
		if sc.peek() == '-' {
			sc.pos++
			upper = maxLineNo

			if !sc.atEOL() {
				if upper, err = sc.scanLineNo(); err != nil {
					return 0, 0, err
				}
			}
		}
	} else {
		sc.pos++

		if upper, err = sc.scanLineNo(); err != nil {
			return 0, 0, err
		}
	}

	if !sc.atEOL() {
		return 0, 0, errorAt(SyntaxError, ETRAILING, sc.src, sc.pos)
	}

	if lower > upper {
		return 0, 0, newError(StorageError, ELINERANGE)
	}

	return lower, upper, nil
}

// programName reads the single program name argument of a command
func programName(sc *scanner) (string, error) {

	name, err := sc.scanIdentifier(maxNameLen)
	if err != nil {
		return "", err
	}

	if !sc.atEOL() {
		return "", errorAt(SyntaxError, ETRAILING, sc.src, sc.pos)
	}

	return name, nil
}

func noArguments(sc *scanner) error {

	if !sc.atEOL() {
		return errorAt(SyntaxError, ETRAILING, sc.src, sc.pos)
	}

	return nil
}

func executeExit(s *Session, sc *scanner) error {

	if err := noArguments(sc); err != nil {
		return err
	}

	s.exiting = true

	return nil
}

func executeLoad(s *Session, sc *scanner) error {

	name, err := programName(sc)
	if err != nil {
		return err
	}

	return s.Load(name)
}

// Load replaces the program in memory with a saved one
func (s *Session) Load(name string) error {

	data, err := s.dir.Load(name)
	if err != nil {
		return err
	}

	if err := s.prog.Replace(data); err != nil {
		return err
	}

	s.log.Info("program loaded", zap.String("name", name), zap.Int("size", len(data)))

	return nil
}

func executeSave(s *Session, sc *scanner) error {

	name, err := programName(sc)
	if err != nil {
		return err
	}

	return s.dir.Save(name, s.prog.Bytes())
}

func executeErase(s *Session, sc *scanner) error {

	name, err := programName(sc)
	if err != nil {
		return err
	}

	return s.dir.Erase(name)
}

func executeStart(s *Session, sc *scanner) error {

	name, err := programName(sc)
	if err != nil {
		return err
	}

	return s.Start(name)
}

// Start loads a saved program and runs it
func (s *Session) Start(name string) error {

	if err := s.Load(name); err != nil {
		return err
	}

	return s.Run()
}

func executeDir(s *Session, sc *scanner) error {

	if err := noArguments(sc); err != nil {
		return err
	}

	entries := s.dir.Entries()

	for _, e := range entries {
		s.myPrintf("%-12s  %5d\n", e.Name, e.Size)
	}

	s.myPrintf("%d %s, %s free\n", len(entries), pluralize("program", len(entries)),
		humanize.Bytes(uint64(s.dir.Free())))

	return nil
}

func executeDel(s *Session, sc *scanner) error {

	lower, upper, err := parseRange(sc, true)
	if err != nil {
		return err
	}

	s.prog.DeleteRange(lower, upper)

	return nil
}

func executeList(s *Session, sc *scanner) error {

	lower, upper, err := parseRange(sc, false)
	if err != nil {
		return err
	}

	s.out.resetPrint()

	return s.prog.List(s.out, lower, upper)
}

func executeRenum(s *Session, sc *scanner) error {

	if err := noArguments(sc); err != nil {
		return err
	}

	return s.prog.Renumber()
}

func executeRun(s *Session, sc *scanner) error {

	if err := noArguments(sc); err != nil {
		return err
	}

	return s.Run()
}

func executeProf(s *Session, sc *scanner) error {

	if err := noArguments(sc); err != nil {
		return err
	}

	p := s.prog

	s.myPrintf("Program: %d %s, %s used, %s free\n", p.LineCount(),
		pluralize("line", p.LineCount()), humanize.Bytes(uint64(p.Len())),
		humanize.Bytes(uint64(p.Free())))

	n := len(s.dir.Entries())
	s.myPrintf("EEPROM: %d %s, %s of %s free\n", n, pluralize("program", n),
		humanize.Bytes(uint64(s.dir.Free())), humanize.Bytes(uint64(s.dir.Capacity())))

	s.myPrintf("Symbols: %d of %d\n", s.syms.Len(), s.syms.Cap())

	st := s.stats
	s.myPrintf("Last run: %s %s executed, elapsed %s\n", humanize.Comma(int64(st.Statements)),
		pluralize("statement", st.Statements), formatCPUTime(st.Elapsed))

	if st.CPUValid {
		s.myPrintf("CPU Usage: user = %s / system = %s\n",
			formatCPUTime(st.User), formatCPUTime(st.System))
	} else {
		s.myPrintln("CPU Usage: not available")
	}

	return nil
}
