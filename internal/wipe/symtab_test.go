package wipe

import (
	"strings"
	"testing"
)

func TestSymbolTable(t *testing.T) {

	syms := NewSymbolTable(3)

	if err := syms.Declare("b", TypeBool); err != nil {
		t.Fatal(err)
	}

	if err := syms.Declare("a", TypeInt); err != nil {
		t.Fatal(err)
	}

	wantKind(t, syms.Declare("a", TypeFloat), SemanticError)

	if err := syms.DefineLabel("lp", 12); err != nil {
		t.Fatal(err)
	}

	// the same label at the same place is not a redefinition
	if err := syms.DefineLabel("lp", 12); err != nil {
		t.Errorf("redefining a label in place: %v", err)
	}

	wantKind(t, syms.DefineLabel("lp", 40), SemanticError)
	wantKind(t, syms.Declare("z", TypeInt), SemanticError)

	if err := syms.Assign("a", IntValue(42)); err != nil {
		t.Fatal(err)
	}

	sym, ok := syms.Lookup("a")
	if !ok || sym.Value.I != 42 || sym.Type != TypeInt {
		t.Errorf("a = %+v, %v", sym, ok)
	}

	sym, ok = syms.Lookup("b")
	if !ok || sym.Value.Type != TypeBool || sym.Value.B {
		t.Errorf("b does not start false: %+v", sym)
	}

	var names []string
	syms.Each(func(s Symbol) { names = append(names, s.Name) })

	if got := strings.Join(names, ","); got != "a,b,lp" {
		t.Errorf("in order = %s", got)
	}

	wantKind(t, syms.Assign("q", IntValue(1)), SemanticError)

	syms.Clear()

	if syms.Len() != 0 {
		t.Errorf("len after clear = %d", syms.Len())
	}

	if _, ok := syms.Lookup("a"); ok {
		t.Error("a survived clear")
	}
}
