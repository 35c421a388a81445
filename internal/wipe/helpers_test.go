package wipe

import (
	"bytes"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap/zaptest"

	"wasp/wipe/internal/eeprom"
	"wasp/wipe/internal/wasp"
)

// scriptSource feeds canned lines and a cancel flag
type scriptSource struct {
	mu     sync.Mutex
	lines  []string
	cancel atomic.Bool
}

func (s *scriptSource) ReadLine(prompt string) (string, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return "", io.EOF
	}

	line := s.lines[0]
	s.lines = s.lines[1:]

	return line, nil
}

func (s *scriptSource) Cancelled() bool {
	return s.cancel.Load()
}

type fixture struct {
	s     *Session
	rec   *wasp.Recorder
	out   *bytes.Buffer
	src   *scriptSource
	clock clockwork.FakeClock
	store *eeprom.Memory
}

func newFixture(t *testing.T, lines ...string) *fixture {

	t.Helper()

	f := &fixture{
		rec:   wasp.NewRecorder(),
		out:   &bytes.Buffer{},
		src:   &scriptSource{lines: lines},
		clock: clockwork.NewFakeClock(),
		store: eeprom.NewMemory(1024),
	}

	s, err := New(Options{
		Store:  f.store,
		Sink:   f.rec,
		Source: f.src,
		Out:    f.out,
		Log:    zaptest.NewLogger(t),
		Clock:  f.clock,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	f.s = s

	return f
}

// enter executes console lines, failing the test on any error
func (f *fixture) enter(t *testing.T, lines ...string) {

	t.Helper()

	for _, line := range lines {
		if err := f.s.Execute(line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}
}

func wantKind(t *testing.T, err error, kind ErrorKind) {

	t.Helper()

	if err == nil {
		t.Fatalf("got no error, want %v", kind)
	}

	if !IsKind(err, kind) {
		t.Fatalf("got %v, want %v", err, kind)
	}
}

func mustRecord(t *testing.T, src string, number int) []byte {

	t.Helper()

	c := &compiler{ev: &evaluator{syms: NewSymbolTable(1)}}

	_, rec, err := c.compileLine(src, number)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}

	return rec
}
