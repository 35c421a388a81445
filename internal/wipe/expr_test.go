package wipe

import (
	"fmt"
	"math"
	"testing"
)

func evalInt(t *testing.T, ev *evaluator, src string) int32 {

	t.Helper()

	v, err := ev.evalExpr(src, TypeInt)
	if err != nil {
		t.Fatalf("%q: %v", src, err)
	}

	return v.I
}

func TestEvalLeftToRight(t *testing.T) {

	ev := &evaluator{syms: NewSymbolTable(10)}

	tests := []struct {
		src  string
		want int32
	}{
		{"10+5", 15},
		{"2 + 3 * 4", 20},
		{"20 - 2 * 3", 54},
		{"-4 + 1", -3},
		{"7 - -2", 9},
		{"1 = 1", 1},
		{"3 < 2", 0},
		{"2 >= 2", 1},
		{"2147483647 + 1", -2147483648},
		{"2.7", 2},
	}

	for _, tt := range tests {
		if got := evalInt(t, ev, tt.src); got != tt.want {
			t.Errorf("%q = %d, want %d", tt.src, got, tt.want)
		}
	}
}

func TestDivisionTruncatesTowardZero(t *testing.T) {

	ev := &evaluator{syms: NewSymbolTable(10)}

	for _, a := range []int32{7, -7, 0, 13, -13, 100} {
		for _, b := range []int32{2, -2, 3, -3, 1, 7} {
			div := fmt.Sprintf("%d / %d", a, b)
			mod := fmt.Sprintf("%d %% %d", a, b)

			if got := evalInt(t, ev, div); got != a/b {
				t.Errorf("%q = %d, want %d", div, got, a/b)
			}

			if got := evalInt(t, ev, mod); got != a%b {
				t.Errorf("%q = %d, want %d", mod, got, a%b)
			}
		}
	}
}

func TestEvalErrors(t *testing.T) {

	ev := &evaluator{syms: NewSymbolTable(10)}

	tests := []struct {
		src  string
		want ValueType
		kind ErrorKind
	}{
		{"1 / 0", TypeInt, SemanticError},
		{"1.0 / 0.0", TypeFloat, SemanticError},
		{"5 % 0", TypeInt, SemanticError},
		{"1.5 % 2.0", TypeFloat, TypeError},
		{"1 + 1.5", TypeFloat, TypeError},
		{"2", TypeBool, TypeError},
		{"1.5", TypeBool, TypeError},
		{"1 = 1 && 2", TypeBool, TypeError},
		{"1 || 0", TypeInt, TypeError},
		{"nope + 1", TypeInt, SemanticError},
		{"2147483648", TypeInt, LexicalError},
		{"-2147483649", TypeInt, LexicalError},
		{"1.2.3", TypeInt, LexicalError},
		{"3000000000.0", TypeInt, TypeError},
		{"- 1", TypeInt, LexicalError},
		{"1 +", TypeInt, SyntaxError},
		{"1 2", TypeInt, SyntaxError},
		{"1 ||0", TypeBool, SyntaxError},
		{"1 ) 2", TypeInt, SyntaxError},
		{"a$", TypeInt, LexicalError},
		{"abcde", TypeInt, LexicalError},
	}

	for _, tt := range tests {
		_, err := ev.evalExpr(tt.src, tt.want)
		if !IsKind(err, tt.kind) {
			t.Errorf("%q: got %v, want %v", tt.src, err, tt.kind)
		}
	}
}

func TestEvalBoolAndFloat(t *testing.T) {

	syms := NewSymbolTable(10)
	ev := &evaluator{syms: syms}

	if err := syms.Declare("f", TypeFloat); err != nil {
		t.Fatal(err)
	}

	if err := syms.Assign("f", FloatValue(1.25)); err != nil {
		t.Fatal(err)
	}

	v, err := ev.evalExpr("f * 2.0", TypeFloat)
	if err != nil || v.F != 2.5 {
		t.Fatalf("f * 2.0 = %v, %v", v, err)
	}

	v, err = ev.evalExpr("3", TypeFloat)
	if err != nil || v.F != 3 {
		t.Fatalf("3 as float = %v, %v", v, err)
	}

	v, err = ev.evalExpr("1 = 1 && 1", TypeBool)
	if err != nil || !v.B {
		t.Fatalf("1 = 1 && 1 = %v, %v", v, err)
	}

	v, err = ev.evalExpr("!0", TypeBool)
	if err != nil || !v.B {
		t.Fatalf("!0 = %v, %v", v, err)
	}

	v, err = ev.evalExpr("-f", TypeFloat)
	if err != nil || v.F != -1.25 {
		t.Fatalf("-f = %v, %v", v, err)
	}

	if s := FloatValue(2.5).String(); s != "2.50" {
		t.Errorf("float prints as %q", s)
	}
}

func TestCheckExprListMode(t *testing.T) {

	ev := &evaluator{syms: NewSymbolTable(1)}

	src := "(a + 1, b)"

	end, err := ev.checkExpr(src, 1, true)
	if err != nil {
		t.Fatal(err)
	}

	if src[end] != ',' {
		t.Errorf("ended at %d (%q), want the comma", end, src[end])
	}

	if _, err := ev.checkExpr("a + 1", 0, true); !IsKind(err, SyntaxError) {
		t.Errorf("end of line in list mode: got %v", err)
	}
}

func TestMinIntLiteral(t *testing.T) {

	ev := &evaluator{syms: NewSymbolTable(10)}

	v, err := ev.evalExpr("-2147483648", TypeInt)
	if err != nil {
		t.Fatal(err)
	}

	if v.I != math.MinInt32 {
		t.Errorf("got %d", v.I)
	}

	v, err = ev.evalExpr("-2147483648 + 1", TypeInt)
	if err != nil || v.I != math.MinInt32+1 {
		t.Errorf("got %d, %v", v.I, err)
	}
}
