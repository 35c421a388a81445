package wipe

import (
	"time"

	"github.com/goforj/godump"
	"go.uber.org/zap"

	"wasp/wipe/internal/wasp"
)

// How often a pause looks for the cancel key
const pausePoll = 10 * time.Millisecond

//
// Run executes the stored program from its first line.  The symbol
// table starts empty; whatever a failed run leaves in it stays there
// for inspection until the next run
//

func (s *Session) Run() error {

	s.syms.Clear()

	s.state = Executing
	s.cursor = 0
	s.resetStatistics()

	err := s.executeProgram()

	s.finishStatistics()

	if err != nil {
		s.state = Aborted
	} else {
		s.state = Done
	}

	s.log.Debug("run finished", zap.Stringer("state", s.state),
		zap.Int("statements", s.stats.Statements),
		zap.Duration("elapsed", s.stats.Elapsed), zap.Error(err))

	return err
}

func (s *Session) executeProgram() error {

	buf := s.prog.buf

	for s.cursor < s.prog.used {
		l, n, err := decodeLine(buf, s.cursor)
		wipeAssert(err == nil, "program buffer corrupt: %v", err)

		if s.src.Cancelled() {
			return withLine(newError(RuntimeAbort, EINTERRUPTED), l.Number)
		}

		if s.traceDump {
			godump.Dump(l)
		}

		next, err := s.executeStmt(l, s.cursor, n)

		s.stats.Statements++

		if err != nil {
			return withLine(err, l.Number)
		}

		s.cursor = next
	}

	return nil
}

//
// Execute one statement and compute where the next one starts.  off
// is the record's offset in the program buffer, n its length; both
// are meaningless for immediate statements, which never transfer
// control
//

func (s *Session) executeStmt(l Line, off, n int) (int, error) {

	next := off + n

	switch stmt := l.Stmt.(type) {
	default:
		wipeAssert(false, "unexpected statement %T", stmt)

	case VarStmt:
		if err := s.syms.Declare(stmt.Name, stmt.Type); err != nil {
			return off, err
		}

	case LetStmt:
		if err := s.executeLet(stmt); err != nil {
			return off, err
		}

	case LabelStmt:
		if err := s.syms.DefineLabel(stmt.Name, off); err != nil {
			return off, err
		}

	case GotoStmt:
		return s.resolveLabel(stmt.Name)

	case IfStmt:
		v, err := s.ev.evalExpr(stmt.Expr, TypeBool)
		if err != nil {
			return off, err
		}

		//
		// A false condition skips the following line, whatever it is
		//

		if !v.B && next < s.prog.used {
			next = s.prog.next(next)
		}

	case PrintStmt:
		if err := s.executePrint(stmt); err != nil {
			return off, err
		}

	case CallStmt:
		if err := s.executeCall(stmt); err != nil {
			return off, err
		}
	}

	return next, nil
}

func (s *Session) executeLet(stmt LetStmt) error {

	sym := s.syms.lookup(stmt.Name)
	if sym == nil {
		return newError(SemanticError, EUNDEFINED+" "+stmt.Name)
	}

	if sym.vType == TypeLabel {
		return newError(TypeError, EINCOMPATIBLE)
	}

	v, err := s.ev.evalExpr(stmt.Expr, sym.vType)
	if err != nil {
		return err
	}

	return s.syms.Assign(stmt.Name, v)
}

//
// Labels are resolved lazily.  A label statement records its own
// offset as it executes; a goto to a label not seen yet scans the
// whole program for it and caches what it finds
//

func (s *Session) resolveLabel(name string) (int, error) {

	if sym := s.syms.lookup(name); sym != nil {
		if sym.vType != TypeLabel {
			return 0, newError(TypeError, EINCOMPATIBLE)
		}

		return sym.offset, nil
	}

	buf := s.prog.buf

	for off := 0; off < s.prog.used; off = s.prog.next(off) {
		if StmtKind(buf[off+hdrKind]) != KindLabel {
			continue
		}

		l, _, err := decodeLine(buf, off)
		wipeAssert(err == nil, "program buffer corrupt: %v", err)

		if l.Stmt.(LabelStmt).Name == name {
			if err := s.syms.DefineLabel(name, off); err != nil {
				return 0, err
			}

			return off, nil
		}
	}

	return 0, newError(SemanticError, ENOLABEL+" "+name)
}

func (s *Session) executePrint(stmt PrintStmt) error {

	if !stmt.Ident {
		_, err := s.out.Write([]byte(stmt.Text))
		return err
	}

	sym := s.syms.lookup(stmt.Text)
	if sym == nil {
		return newError(SemanticError, EUNDEFINED+" "+stmt.Text)
	}

	if sym.vType == TypeLabel {
		return newError(TypeError, EINCOMPATIBLE)
	}

	_, err := s.out.Write([]byte(sym.value.String()))

	return err
}

//
// Function calls.  Every argument is an integer expression that must
// fit the protocol's byte wide parameters; negative values go out in
// two's complement
//

func (s *Session) executeCall(stmt CallStmt) error {

	args := make([]int32, len(stmt.Args))

	for i, expr := range stmt.Args {
		v, err := s.ev.evalExpr(expr, TypeInt)
		if err != nil {
			return err
		}

		if v.I < minParam || v.I > maxParam {
			return newError(TypeError, ERANGE)
		}

		args[i] = v.I
	}

	p := make([]byte, len(args))
	for i, a := range args {
		p[i] = byte(a)
	}

	if stmt.Misc {
		switch wasp.MiscFunc(stmt.Opcode) {
		case wasp.MiscPause:
			return s.executePause(args)
		}

		wipeAssert(false, "unexpected misc function %d", stmt.Opcode)
	}

	switch wasp.Opcode(stmt.Opcode) {
	default:
		wipeAssert(false, "unexpected opcode %d", stmt.Opcode)

	case wasp.CmdGroup:
		s.sink.Group(p[0], p[1], p[2], p[3])

	case wasp.CmdState:
		s.sink.State(p[0], p[1])

	case wasp.CmdBkgrd:
		s.sink.Background(p[0], p[1], p[2], p[3])

	case wasp.CmdLine:
		s.sink.Line(p[0], p[1], p[2], p[3], p[4], p[5])

	case wasp.CmdShift:
		s.sink.Shift(p[0], int8(p[1]))

	case wasp.CmdSwap:
		s.sink.Swap(p[0], p[1], p[2], p[3], p[4], p[5], p[6])

	case wasp.CmdReset:
		s.sink.Reset(p[0])

	case wasp.CmdSpeed:
		s.sink.Speed(p[0], p[1])

	case wasp.CmdRainbow:
		s.sink.Rainbow(p[0], p[1])

	case wasp.CmdRainCycle:
		s.sink.RainCycle(p[0])

	case wasp.CmdTwinkle:
		s.sink.Twinkle(p[0], p[1], p[2], p[3], p[4])
	}

	return nil
}

//
// Pause(minutes, seconds, hundredths) is reported to the sink, then
// blocks, looking for the cancel key between short sleeps
//

func (s *Session) executePause(args []int32) error {

	for _, a := range args {
		if a < 0 {
			return newError(TypeError, ERANGE)
		}
	}

	s.sink.Pause(byte(args[0]), byte(args[1]), byte(args[2]))

	d := time.Duration(args[0])*time.Minute +
		time.Duration(args[1])*time.Second +
		time.Duration(args[2])*10*time.Millisecond

	deadline := s.clock.Now().Add(d)

	for {
		if s.src.Cancelled() {
			return newError(RuntimeAbort, EINTERRUPTED)
		}

		left := deadline.Sub(s.clock.Now())
		if left <= 0 {
			return nil
		}

		s.clock.Sleep(min(left, pausePoll))
	}
}

//
// Immediate statements are compiled like stored ones, then executed
// straight from the compiled record.  The record still has to fit in
// what is left of program memory
//

func (s *Session) Immediate(src string) error {

	_, rec, err := s.comp.compileLine(src, 0)
	if err != nil {
		return err
	}

	if len(rec) > s.prog.Free() {
		return newError(StorageError, ENORAM)
	}

	l, n, err := decodeLine(rec, 0)
	wipeAssert(err == nil, "immediate record: %v", err)

	// an immediate statement sits past the end of the program
	_, err = s.executeStmt(l, s.prog.used, n)

	return err
}

//
// Statistics
//

type runClock struct {
	start      time.Time
	user, sys  time.Duration
	cpuAtStart bool
}

func (s *Session) resetStatistics() {

	s.stats = Stats{}
	s.runClock.start = s.clock.Now()

	var err error

	s.runClock.user, s.runClock.sys, err = getCPUInfo()
	s.runClock.cpuAtStart = err == nil
}

func (s *Session) finishStatistics() {

	s.stats.Elapsed = s.clock.Since(s.runClock.start)

	if !s.runClock.cpuAtStart {
		return
	}

	if user, sys, err := getCPUInfo(); err == nil {
		s.stats.User = user - s.runClock.user
		s.stats.System = sys - s.runClock.sys
		s.stats.CPUValid = true
	}
}
