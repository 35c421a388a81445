package wipe

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoopRunsUntilExit(t *testing.T) {

	f := newFixture(t,
		`10 print "hi"`,
		"run",
		"let",
		"exit",
		`print "never"`)

	if err := f.s.Loop(); err != nil {
		t.Fatal(err)
	}

	out := f.out.String()

	if !strings.HasPrefix(out, "hi\n") {
		t.Errorf("output = %q", out)
	}

	if !strings.Contains(out, "Syntax error: "+EOPERANDEXPECTED) {
		t.Errorf("error not reported: %q", out)
	}

	if strings.Contains(out, "never") {
		t.Errorf("kept going after exit")
	}

	if !f.s.Exiting() || f.s.State() != Idle {
		t.Errorf("exiting %v, state %v", f.s.Exiting(), f.s.State())
	}
}

func TestLoopStopsAtEndOfInput(t *testing.T) {

	f := newFixture(t, "10 print x")

	if err := f.s.Loop(); err != nil {
		t.Fatal(err)
	}

	if f.s.Program().LineCount() != 1 {
		t.Errorf("line not stored")
	}
}

func TestMalformedLineLeavesProgramAlone(t *testing.T) {

	f := newFixture(t)

	f.enter(t, "10 var y:int")
	before := f.s.Program().Len()

	err := f.s.Execute("20 let y = 1 +")
	wantKind(t, err, SyntaxError)

	if f.s.Program().Len() != before {
		t.Errorf("program grew from %d to %d", before, f.s.Program().Len())
	}

	// the column is relative to the whole console line
	if e := err.(*Error); e.Column != len("20 let y = 1 +")+1 || e.Source != "20 let y = 1 +" {
		t.Errorf("column %d in %q", e.Column, e.Source)
	}
}

func TestLineEditing(t *testing.T) {

	f := newFixture(t)

	f.enter(t,
		"30 print c",
		"10 print a",
		"20 print b",
		"25 print x",
		"20 print bb",
		"25",
		"list")

	want := "10 print a\n20 print bb\n30 print c\n"
	if f.out.String() != want {
		t.Errorf("list = %q, want %q", f.out.String(), want)
	}

	f.out.Reset()
	f.enter(t, "list 20-")

	if f.out.String() != "20 print bb\n30 print c\n" {
		t.Errorf("list 20- = %q", f.out.String())
	}

	f.out.Reset()
	f.enter(t, "list -10")

	if f.out.String() != "10 print a\n" {
		t.Errorf("list -10 = %q", f.out.String())
	}

	f.out.Reset()
	f.enter(t, "renum", "list 5")

	if f.out.String() != "5 print a\n" {
		t.Errorf("after renum = %q", f.out.String())
	}
}

func TestDelCommand(t *testing.T) {

	f := newFixture(t)

	for _, n := range []string{"5", "10", "15", "20", "25"} {
		f.enter(t, n+" print x")
	}

	f.enter(t, "del 10-20")

	if got := lineNumbers(t, f.s.Program()); len(got) != 2 || got[0] != 5 || got[1] != 25 {
		t.Errorf("lines = %v", got)
	}

	for _, bad := range []string{"del", "del 0", "del 256", "del 20-10", "del 1-2-3", "del x"} {
		if err := f.s.Execute(bad); err == nil {
			t.Errorf("%q accepted", bad)
		}
	}

	wantKind(t, f.s.Execute("300 print x"), StorageError)
}

func TestSaveLoadRoundTrip(t *testing.T) {

	f := newFixture(t)

	f.enter(t,
		"10 var x:int",
		"20 let x = 10+5",
		"30 Bkgrd(x, 0, 0, 0)",
		"save demo")

	saved := append([]byte(nil), f.s.Program().Bytes()...)

	f.enter(t, "del 1-255", "load demo")

	if !bytes.Equal(f.s.Program().Bytes(), saved) {
		t.Errorf("loaded %v, saved %v", f.s.Program().Bytes(), saved)
	}

	wantKind(t, f.s.Execute("save demo"), StorageError)
	wantKind(t, f.s.Execute("load nothere"), StorageError)

	f.enter(t, "erase demo")
	wantKind(t, f.s.Execute("start demo"), StorageError)

	f.enter(t, "save demo2", "start demo2")

	if f.rec.Len() != 1 {
		t.Errorf("start sent %d commands", f.rec.Len())
	}

	f.out.Reset()
	f.enter(t, "dir")

	if !strings.Contains(f.out.String(), "demo2") || !strings.Contains(f.out.String(), "1 program,") {
		t.Errorf("dir = %q", f.out.String())
	}
}

func TestSaveEmptyProgram(t *testing.T) {

	f := newFixture(t)

	wantKind(t, f.s.Execute("save nothing"), StorageError)
}

func TestHelpAndProf(t *testing.T) {

	f := newFixture(t)

	f.enter(t, "help")

	for name := range commandMap {
		if !strings.Contains(f.out.String(), name+"\n") {
			t.Errorf("help does not mention %s", name)
		}
	}

	f.out.Reset()
	f.enter(t, "help renum")

	if f.out.String() != commandMap["renum"].help+"\n" {
		t.Errorf("help renum = %q", f.out.String())
	}

	wantKind(t, f.s.Execute("help bogus"), SyntaxError)

	f.out.Reset()
	f.enter(t, "10 var a:int", "run", "prof")

	for _, want := range []string{"Program: 1 line", "Symbols: 1 of", "Last run: 1 statement executed"} {
		if !strings.Contains(f.out.String(), want) {
			t.Errorf("prof output %q lacks %q", f.out.String(), want)
		}
	}
}

func TestCommandsRejectArguments(t *testing.T) {

	f := newFixture(t)

	for _, line := range []string{"run now", "renum 10", "dir x", "exit 1", "prof x", "load a b"} {
		if err := f.s.Execute(line); !IsKind(err, SyntaxError) {
			t.Errorf("%q: got %v", line, err)
		}
	}

	wantKind(t, f.s.Execute("load thirteenchars"), LexicalError)
}

func TestLineTooLongForConsole(t *testing.T) {

	f := newFixture(t)

	wantKind(t, f.s.Execute(strings.Repeat("x", 81)), SyntaxError)
}

func TestPanicsAreRecovered(t *testing.T) {

	f := newFixture(t)

	f.s.call(func() { wipeAssert(false, "broken %d", 42) })

	if !strings.Contains(f.out.String(), "Internal error: broken 42") {
		t.Errorf("output = %q", f.out.String())
	}

	f.out.Reset()
	f.s.call(func() {
		var m map[string]int
		m["x"] = 1
	})

	if !strings.Contains(f.out.String(), "Internal error:") {
		t.Errorf("output = %q", f.out.String())
	}
}

func TestPromptFollowsOutputOnNewLine(t *testing.T) {

	f := newFixture(t, `print "no newline"`, `print "with newline\n"`)

	if err := f.s.Loop(); err != nil {
		t.Fatal(err)
	}

	if f.out.String() != "no newline\nwith newline\n" {
		t.Errorf("output = %q", f.out.String())
	}
}
