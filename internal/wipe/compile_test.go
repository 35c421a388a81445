package wipe

import (
	"bytes"
	"testing"
)

func TestCompileListsCanonically(t *testing.T) {

	tests := []struct {
		src  string
		want string
	}{
		{"var x:int", "10 var x:int"},
		{"var  flag : bool", "10 var flag:bool"},
		{"let x=10+5", "10 let x = 10+5"},
		{"let  x =  x * 2  ", "10 let x = x * 2"},
		{"label top", "10 label top"},
		{"goto top", "10 goto top"},
		{"if x >= 3", "10 if x >= 3"},
		{`print "a\nb \"q\""`, `10 print "a\nb \"q\""`},
		{"print x", "10 print x"},
		{"Bkgrd(255,0,0,0)", "10 Bkgrd(255, 0, 0, 0)"},
		{"Shift( 3 , -1 )", "10 Shift(3, -1)"},
		{"Pause(0, x + 1, 50)", "10 Pause(0, x + 1, 50)"},
	}

	c := &compiler{ev: &evaluator{syms: NewSymbolTable(1)}}

	for _, tt := range tests {
		line, rec, err := c.compileLine(tt.src, 10)
		if err != nil {
			t.Errorf("%q: %v", tt.src, err)
			continue
		}

		if got := line.String(); got != tt.want {
			t.Errorf("%q lists as %q, want %q", tt.src, got, tt.want)
		}

		decoded, n, err := decodeLine(rec, 0)
		if err != nil || n != len(rec) {
			t.Errorf("%q: decode = %d, %v", tt.src, n, err)
			continue
		}

		if decoded.String() != tt.want {
			t.Errorf("%q decodes as %q", tt.src, decoded.String())
		}

		again, err := encodeLine(decoded)
		if err != nil || !bytes.Equal(again, rec) {
			t.Errorf("%q: re-encoding differs", tt.src)
		}
	}
}

func TestRecordLayout(t *testing.T) {

	rec := mustRecord(t, "let ab = 1", 20)

	want := []byte{20, 0, byte(KindLet), 'a', 'b', 0, '1', 0}
	want[hdrLength] = byte(len(want))

	if !bytes.Equal(rec, want) {
		t.Errorf("record = %v, want %v", rec, want)
	}

	rec = mustRecord(t, "Reset(255)", 7)
	want = []byte{7, 0, byte(KindCall), callWasp, 7, 1, '2', '5', '5', 0}
	want[hdrLength] = byte(len(want))

	if !bytes.Equal(rec, want) {
		t.Errorf("record = %v, want %v", rec, want)
	}
}

func TestCompileErrors(t *testing.T) {

	tests := []struct {
		src    string
		number int
		kind   ErrorKind
	}{
		{"let y = 1 +", 10, SyntaxError},
		{"var abcde:int", 10, LexicalError},
		{"var x:string", 10, SyntaxError},
		{"var x int", 10, SyntaxError},
		{"let 1x = 2", 10, LexicalError},
		{"foo x", 10, SyntaxError},
		{"Bkgrd(1,2,3)", 10, SyntaxError},
		{"Bkgrd(1,2,3,4,5)", 10, SyntaxError},
		{"Bkgrd 1,2,3,4", 10, SyntaxError},
		{"Reset()", 10, SyntaxError},
		{"Reset(1) x", 10, SyntaxError},
		{"bkgrd(1,2,3,4)", 10, SyntaxError},
		{`print "open`, 10, LexicalError},
		{`print "bad\q"`, 10, LexicalError},
		{"print x y", 10, SyntaxError},
		{"goto", 10, SyntaxError},
		{"label here", 0, SyntaxError},
		{"goto here", 0, SyntaxError},
		{"if 1", 0, SyntaxError},
	}

	c := &compiler{ev: &evaluator{syms: NewSymbolTable(1)}}

	for _, tt := range tests {
		_, _, err := c.compileLine(tt.src, tt.number)
		if !IsKind(err, tt.kind) {
			t.Errorf("%q: got %v, want %v", tt.src, err, tt.kind)
		}
	}
}

func TestCompileErrorColumn(t *testing.T) {

	c := &compiler{ev: &evaluator{syms: NewSymbolTable(1)}}

	_, _, err := c.compileLine("let x = 1 $ 2", 10)

	e, ok := err.(*Error)
	if !ok {
		t.Fatalf("got %v", err)
	}

	if e.Column != 11 {
		t.Errorf("column = %d, want 11", e.Column)
	}
}

func TestLineTooLong(t *testing.T) {

	c := &compiler{ev: &evaluator{syms: NewSymbolTable(1)}}

	text := make([]byte, 260)
	for i := range text {
		text[i] = 'x'
	}

	_, _, err := c.compileLine(`print "`+string(text)+`"`, 10)
	if !IsKind(err, SyntaxError) {
		t.Errorf("got %v, want SyntaxError", err)
	}
}
