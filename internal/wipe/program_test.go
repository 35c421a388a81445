package wipe

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func lineNumbers(t *testing.T, p *Program) []int {

	t.Helper()

	lines, err := p.Lines()
	if err != nil {
		t.Fatal(err)
	}

	var nums []int
	for _, l := range lines {
		nums = append(nums, l.Number)
	}

	return nums
}

func TestInsertKeepsLinesOrdered(t *testing.T) {

	p := NewProgram(256)

	for _, n := range []int{30, 10, 20, 255, 1, 20} {
		if err := p.Insert(mustRecord(t, fmt.Sprintf("print %q", fmt.Sprint(n)), n)); err != nil {
			t.Fatal(err)
		}
	}

	got := fmt.Sprint(lineNumbers(t, p))
	if got != "[1 10 20 30 255]" {
		t.Errorf("lines = %s", got)
	}

	if err := p.Insert(mustRecord(t, `print "twenty"`, 20)); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := p.List(&out, 20, 20); err != nil {
		t.Fatal(err)
	}

	if out.String() != "20 print \"twenty\"\n" {
		t.Errorf("list 20 = %q", out.String())
	}

	if p.LineCount() != 5 {
		t.Errorf("count = %d after replace", p.LineCount())
	}
}

func TestSeekLineStart(t *testing.T) {

	p := NewProgram(256)

	for _, n := range []int{10, 20} {
		if err := p.Insert(mustRecord(t, "print x", n)); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		target int
		off    int
		found  bool
	}{
		{5, 0, false},
		{10, 0, true},
		{15, 6, false},
		{20, 6, true},
		{21, 12, false},
	}

	for _, tt := range tests {
		off, found := p.seekLineStart(tt.target)
		if off != tt.off || found != tt.found {
			t.Errorf("seek(%d) = %d, %v; want %d, %v", tt.target, off, found, tt.off, tt.found)
		}
	}
}

func TestDeleteRange(t *testing.T) {

	p := NewProgram(512)

	for n := 5; n <= 30; n += 5 {
		if err := p.Insert(mustRecord(t, "print x", n)); err != nil {
			t.Fatal(err)
		}
	}

	if removed := p.DeleteRange(10, 20); removed != 3 {
		t.Errorf("removed %d lines, want 3", removed)
	}

	if got := fmt.Sprint(lineNumbers(t, p)); got != "[5 25 30]" {
		t.Errorf("lines = %s", got)
	}

	if removed := p.DeleteRange(26, 29); removed != 0 {
		t.Errorf("removed %d lines from an empty range", removed)
	}

	if p.Len() != 3*6 {
		t.Errorf("used = %d", p.Len())
	}
}

func TestInsertOutOfMemory(t *testing.T) {

	p := NewProgram(14)
	rec := mustRecord(t, "print x", 10)

	if err := p.Insert(rec); err != nil {
		t.Fatal(err)
	}

	if err := p.Insert(mustRecord(t, "print x", 20)); err != nil {
		t.Fatal(err)
	}

	wantKind(t, p.Insert(mustRecord(t, "print x", 30)), StorageError)

	if p.LineCount() != 2 {
		t.Errorf("failed insert changed the program")
	}

	// replacing a line frees its bytes first
	if err := p.Insert(mustRecord(t, "print y", 20)); err != nil {
		t.Errorf("replace in a full buffer: %v", err)
	}
}

func TestFailedReplaceKeepsOldLine(t *testing.T) {

	p := NewProgram(16)

	if err := p.Insert(mustRecord(t, "print x", 10)); err != nil {
		t.Fatal(err)
	}

	before := append([]byte(nil), p.Bytes()...)

	wantKind(t, p.Insert(mustRecord(t, `print "longer than that"`, 10)), StorageError)

	if !bytes.Equal(p.Bytes(), before) {
		t.Errorf("program = %v, want %v", p.Bytes(), before)
	}
}

func TestRenumber(t *testing.T) {

	p := NewProgram(2048)

	for n := 1; n <= 123; n++ {
		if err := p.Insert(mustRecord(t, fmt.Sprintf(`print "%d"`, n), n)); err != nil {
			t.Fatal(err)
		}
	}

	if err := p.Renumber(); err != nil {
		t.Fatal(err)
	}

	lines, err := p.Lines()
	if err != nil {
		t.Fatal(err)
	}

	for i, l := range lines {
		if l.Number != renumLow+2*i {
			t.Fatalf("line %d renumbered to %d", i, l.Number)
		}

		if text := l.Stmt.(PrintStmt).Text; text != fmt.Sprint(i+1) {
			t.Fatalf("line %d holds %q", l.Number, text)
		}
	}

	if err := p.Insert(mustRecord(t, "print x", 255)); err != nil {
		t.Fatal(err)
	}

	before := append([]byte(nil), p.Bytes()...)

	wantKind(t, p.Renumber(), StorageError)

	if !bytes.Equal(before, p.Bytes()) {
		t.Errorf("failed renumber changed the program")
	}
}

func TestRenumberSpreadsEvenly(t *testing.T) {

	p := NewProgram(256)

	for _, n := range []int{1, 2, 3} {
		if err := p.Insert(mustRecord(t, "print x", n)); err != nil {
			t.Fatal(err)
		}
	}

	if err := p.Renumber(); err != nil {
		t.Fatal(err)
	}

	if got := fmt.Sprint(lineNumbers(t, p)); got != "[5 127 249]" {
		t.Errorf("lines = %s", got)
	}

	single := NewProgram(64)
	if err := single.Insert(mustRecord(t, "print x", 99)); err != nil {
		t.Fatal(err)
	}

	if err := single.Renumber(); err != nil {
		t.Fatal(err)
	}

	if got := fmt.Sprint(lineNumbers(t, single)); got != "[5]" {
		t.Errorf("lines = %s", got)
	}
}

func TestReplaceRejectsGarbage(t *testing.T) {

	p := NewProgram(64)

	if err := p.Replace([]byte{10, 2, 1}); err == nil {
		t.Error("accepted a record shorter than its header")
	}

	good := append(mustRecord(t, "print x", 20), mustRecord(t, "print x", 10)...)
	if err := p.Replace(good); err == nil || !strings.Contains(err.Error(), "order") {
		t.Errorf("accepted descending lines: %v", err)
	}

	if p.Len() != 0 {
		t.Errorf("failed replace left %d bytes", p.Len())
	}
}
