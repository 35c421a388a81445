package wipe

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tklauser/go-sysconf"
	"go.uber.org/zap"
)

//
// Interpreter invariant failures.  These are bugs, not user errors, so
// they panic; the console loop recovers and reports them
//

type assertionError struct {
	msg  string
	file string
	line int
}

func (e *assertionError) Error() string {
	return fmt.Sprintf("%s at %s line %d", e.msg, filepath.Base(e.file), e.line)
}

func wipeAssert(chk bool, f string, args ...any) {

	if chk {
		return
	}

	_, file, line, _ := runtime.Caller(1)

	panic(&assertionError{msg: fmt.Sprintf(f, args...), file: file, line: line})
}

//
// Console output.  The printer remembers whether the cursor sits at
// the start of a line, so the prompt never lands after the text of a
// print statement that had no trailing newline
//

type printer struct {
	w     io.Writer
	dirty bool
}

func (p *printer) Write(b []byte) (int, error) {

	n, err := p.w.Write(b)
	if n > 0 {
		p.dirty = b[n-1] != '\n'
	}

	return n, err
}

func (p *printer) resetPrint() {

	if p.dirty {
		fmt.Fprintln(p.w)
		p.dirty = false
	}
}

func (s *Session) myPrintln(l ...any) {

	s.out.resetPrint()

	fmt.Fprintln(s.out, l...)
}

func (s *Session) myPrintf(f string, args ...any) {

	s.out.resetPrint()

	fmt.Fprintf(s.out, f, args...)
}

//
// Report an error on the console.  When the error knows where it
// happened, the source line is shown with the offending character in
// red
//

var colorizeRed = color.New(color.FgRed, color.Bold).SprintFunc()

func (s *Session) printError(err error) {

	s.out.resetPrint()

	if e, ok := err.(*Error); ok && e.Source != "" && e.Column > 0 {
		fmt.Fprintln(s.out, colorizeString(e.Source, e.Column-1))
	}

	fmt.Fprintln(s.out, err.Error())
}

// colorizeString highlights the character at 0-based offset pos
func colorizeString(str string, pos int) string {

	if pos >= len(str) {
		return str + colorizeRed("_")
	}

	return str[:pos] + colorizeRed(str[pos:pos+1]) + str[pos+1:]
}

//
// Walk the stack to find who panicked.  For Go runtime faults the
// caller of panic is somewhere inside the runtime, so we skip frames
// until we are out of it again
//

func (s *Session) decodePanic(e any) {

	switch e := e.(type) {
	case *assertionError:
		s.myPrintln("Internal error:", e.Error())
		s.log.Error("assertion failed", zap.String("msg", e.msg),
			zap.String("file", filepath.Base(e.file)), zap.Int("line", e.line))

	default:
		var where string

		pcs := make([]uintptr, 64)
		frames := runtime.CallersFrames(pcs[:runtime.Callers(1, pcs)])
		panicSeen := false

		for {
			frame, more := frames.Next()

			if frame.Function == "runtime.gopanic" {
				panicSeen = true
			} else if panicSeen && !strings.HasPrefix(frame.Function, "runtime.") {
				where = fmt.Sprintf("%s line %d", filepath.Base(frame.File), frame.Line)
				break
			}

			if !more {
				break
			}
		}

		s.myPrintln(fmt.Sprintf("Internal error: %v at %s", e, where))
		s.log.Error("recovered panic", zap.Any("panic", e), zap.String("where", where),
			zap.Stack("stack"))
	}

	s.state = Idle
}

// call runs f, turning a panic into a console report
func (s *Session) call(f func()) {

	defer func() {
		if err := recover(); err != nil {
			s.decodePanic(err)
		}
	}()

	f()
}

//
// Process CPU time, from /proc.  Only available on Linux; elsewhere
// prof just says so
//

func getCPUInfo() (time.Duration, time.Duration, error) {

	clktck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil {
		return 0, 0, err
	}

	contents, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		return 0, 0, err
	}

	//
	// The command name (field 2) is parenthesized and may contain
	// blanks, so count fields from the closing paren
	//

	i := strings.LastIndexByte(string(contents), ')')
	if i < 0 {
		return 0, 0, fmt.Errorf("malformed /proc/self/stat")
	}

	fields := strings.Fields(string(contents[i+1:]))
	if len(fields) < 13 {
		return 0, 0, fmt.Errorf("malformed /proc/self/stat")
	}

	utime, err := strconv.ParseInt(fields[11], 10, 64)
	if err != nil {
		return 0, 0, err
	}

	stime, err := strconv.ParseInt(fields[12], 10, 64)
	if err != nil {
		return 0, 0, err
	}

	tick := time.Second / time.Duration(clktck)

	return time.Duration(utime) * tick, time.Duration(stime) * tick, nil
}

func formatCPUTime(d time.Duration) string {

	t := int64(d / time.Millisecond)

	h := t / 3600000
	t %= 3600000

	m := t / 60000
	t %= 60000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, t/1000, t%1000)
}

func pluralize(str string, num int) string {

	//
	// Oddity: 0 is considered plural
	//

	if num != 1 {
		return str + "s"
	}

	return str
}
