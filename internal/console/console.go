// Package console supplies the interpreter with input lines and the
// cancel signal it polls while a program runs.
//
// A Terminal edits lines with liner and takes ^C as the cancel key.
// A Script reads piped input ahead of the interpreter so that a cancel
// line can arrive while a program is still executing.
package console

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/danswartzendruber/liner"
	"github.com/edwingeng/deque"
	"github.com/tevino/abool/v2"
)

// Terminal reads lines with editing and history
type Terminal struct {
	l         *liner.State
	cancelled *abool.AtomicBool
}

func NewTerminal() *Terminal {

	l := liner.NewLiner()

	l.SetMultiLineMode(false)

	return &Terminal{l: l, cancelled: abool.New()}
}

//
// Annoyingly, a non-nil error from Prompt can be okay.  ^C at the
// prompt just abandons the line, and ^D at the start of a line is EOF
//

func (t *Terminal) ReadLine(prompt string) (string, error) {

	s, err := t.l.Prompt(prompt)

	switch {
	case err == nil:

	case errors.Is(err, liner.ErrPromptAborted):
		return "", nil

	default:
		return "", err
	}

	if strings.TrimSpace(s) != "" {
		t.l.AppendHistory(s)
	}

	// a ^C typed before this line is stale
	t.cancelled.UnSet()

	return s, nil
}

// Interrupt is called from the SIGINT handler
func (t *Terminal) Interrupt() {
	t.cancelled.Set()
}

// Cancelled reports, once, an interrupt posted since the last check
func (t *Terminal) Cancelled() bool {
	return t.cancelled.SetToIf(true, false)
}

// Close puts the terminal back in cooked mode
func (t *Terminal) Close() error {
	return t.l.Close()
}

//
// Script feeds lines from a reader.  A line consisting of just the
// cancel character is not queued; it raises the cancel flag instead.
// The cancel belongs to the line before it: once a later line is
// handed out, a cancel nobody consumed is dropped
//

type Script struct {
	mu    sync.Mutex
	ready *sync.Cond
	q     deque.Deque
	err   error
	done  bool

	// lines queued and handed out so far, and the count of lines
	// queued when the cancel arrived
	queued   int
	read     int
	cancelAt int

	cancelChar string
	cancelled  *abool.AtomicBool
	echo       io.Writer
}

// NewScript starts reading r in the background.  If echo is non-nil
// each prompt and line is copied to it, so transcripts read like a
// terminal session.
func NewScript(r io.Reader, cancelChar string, echo io.Writer) *Script {

	s := &Script{
		q:          deque.NewDeque(),
		cancelChar: cancelChar,
		cancelled:  abool.New(),
		echo:       echo,
	}

	s.ready = sync.NewCond(&s.mu)

	go s.reader(r)

	return s
}

func (s *Script) reader(r io.Reader) {

	sc := bufio.NewScanner(r)

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")

		s.mu.Lock()

		if line == s.cancelChar {
			s.cancelAt = s.queued
			s.cancelled.Set()
			s.mu.Unlock()
			continue
		}

		s.q.PushBack(line)
		s.queued++
		s.ready.Signal()
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.err = sc.Err()
	s.done = true
	s.ready.Broadcast()
	s.mu.Unlock()
}

func (s *Script) ReadLine(prompt string) (string, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	for s.q.Empty() && !s.done {
		s.ready.Wait()
	}

	if s.q.Empty() {
		if s.err != nil {
			return "", s.err
		}

		return "", io.EOF
	}

	line := s.q.PopFront().(string)

	if s.cancelAt <= s.read {
		s.cancelled.UnSet()
	}
	s.read++

	if s.echo != nil {
		io.WriteString(s.echo, prompt+line+"\n")
	}

	return line, nil
}

// Interrupt cancels whatever the last line handed out started
func (s *Script) Interrupt() {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelAt = s.read
	s.cancelled.Set()
}

func (s *Script) Cancelled() bool {
	return s.cancelled.SetToIf(true, false)
}

func (s *Script) Close() error {
	return nil
}
