package wipe

import (
	"strings"

	"github.com/danswartzendruber/avl"
)

//
// The symbol table is an AVL tree keyed by name.  Capacity is fixed
// (the controller has no heap to speak of), so we keep our own count.
// Labels live in the same namespace as variables; their value is the
// program offset of the label statement
//

type symbol struct {
	avl    avl.AvlNode
	name   string
	vType  ValueType
	value  Value
	offset int
}

// Symbol is a read-only view of a table entry
type Symbol struct {
	Name   string
	Type   ValueType
	Value  Value
	Offset int
}

type SymbolTable struct {
	root     *avl.AvlNode
	count    int
	capacity int
}

func NewSymbolTable(capacity int) *SymbolTable {

	t := &SymbolTable{capacity: capacity}
	t.Clear()

	return t
}

func cmpSymbolKey(key any, node any) int {

	return strings.Compare(key.(string), node.(*symbol).name)
}

func cmpSymbolNodes(node1, node2 any) int {

	return strings.Compare(node1.(*symbol).name, node2.(*symbol).name)
}

// Clear drops every symbol.  Done at the start of each run
func (t *SymbolTable) Clear() {

	t.root = nil
	t.count = 0
}

func (t *SymbolTable) Len() int {
	return t.count
}

func (t *SymbolTable) Cap() int {
	return t.capacity
}

func (t *SymbolTable) lookup(name string) *symbol {

	p := avl.AvlTreeLookup(t.root, name, cmpSymbolKey)
	if p != nil {
		return p.(*symbol)
	} else {
		return nil
	}
}

// Lookup returns the named symbol, if defined
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {

	sym := t.lookup(name)
	if sym == nil {
		return Symbol{}, false
	}

	return sym.view(), true
}

//
// Declare a variable.  The value starts as the zero of its type.
// Fails on a duplicate name or a full table
//

func (t *SymbolTable) Declare(name string, vType ValueType) error {

	_, err := t.insert(name, vType)

	return err
}

func (t *SymbolTable) insert(name string, vType ValueType) (*symbol, error) {

	if t.lookup(name) != nil {
		return nil, newError(SemanticError, EDUPLICATE+" of "+name)
	}

	if t.count >= t.capacity {
		return nil, newError(SemanticError, ESYMTABFULL)
	}

	sym := &symbol{name: name, vType: vType, value: zeroValue(vType)}

	p := avl.AvlTreeInsert(&t.root, &sym.avl, sym, cmpSymbolNodes)
	wipeAssert(p == nil, "symbol %q already in tree", name)

	t.count++

	return sym, nil
}

//
// Record a label's program offset.  Seeing the same label again at
// the same offset is fine (loops pass over their labels repeatedly);
// anything else by that name is a duplicate
//

func (t *SymbolTable) DefineLabel(name string, offset int) error {

	if sym := t.lookup(name); sym != nil {
		if sym.vType == TypeLabel && sym.offset == offset {
			return nil
		}

		return newError(SemanticError, EDUPLICATE+" of "+name)
	}

	sym, err := t.insert(name, TypeLabel)
	if err != nil {
		return err
	}

	sym.offset = offset

	return nil
}

// Assign stores v, which the caller has already coerced to the
// symbol's declared type
func (t *SymbolTable) Assign(name string, v Value) error {

	sym := t.lookup(name)
	if sym == nil {
		return newError(SemanticError, EUNDEFINED+" "+name)
	}

	wipeAssert(sym.vType == v.Type, "assigning %v to %v %s", v.Type, sym.vType, name)

	sym.value = v

	return nil
}

// Each visits the symbols in name order
func (t *SymbolTable) Each(f func(Symbol)) {

	p := avl.AvlTreeFirstInOrder(t.root)

	for p != nil {
		sym := p.(*symbol)
		f(sym.view())
		p = avl.AvlTreeNextInOrder(&sym.avl)
	}
}

func (sym *symbol) view() Symbol {

	return Symbol{Name: sym.name, Type: sym.vType, Value: sym.value, Offset: sym.offset}
}
