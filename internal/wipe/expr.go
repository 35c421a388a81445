package wipe

import (
	"math"
	"strconv"
	"strings"
)

//
// Typed values.  Integers are 32 bits, as on the controller
//

type Value struct {
	Type ValueType
	I    int32
	F    float64
	B    bool
}

func IntValue(i int32) Value {
	return Value{Type: TypeInt, I: i}
}

func FloatValue(f float64) Value {
	return Value{Type: TypeFloat, F: f}
}

func BoolValue(b bool) Value {
	return Value{Type: TypeBool, B: b}
}

func zeroValue(t ValueType) Value {
	return Value{Type: t}
}

func (v Value) String() string {

	switch v.Type {
	case TypeInt:
		return strconv.FormatInt(int64(v.I), 10)

	case TypeFloat:
		return strconv.FormatFloat(v.F, 'f', 2, 64)

	case TypeBool:
		return strconv.FormatBool(v.B)

	default:
		return "?"
	}
}

//
// The evaluator.  Expressions are evaluated strictly left to right,
// there is no precedence: a + b * c is (a + b) * c.  With want set to
// TypeNone the expression is only syntax checked, which is what the
// compiler does; nothing is looked up in the symbol table then
//

type evaluator struct {
	syms *SymbolTable
}

//
// eval evaluates src starting at offset start.  In list mode the
// expression must end at a ',' or ')' and the offset of that
// delimiter is returned; otherwise it must run to the end of the line
//

func (ev *evaluator) eval(src string, start int, want ValueType, list bool) (Value, int, error) {

	s := &scanner{src: src, pos: start}
	check := want == TypeNone

	t, err := s.scanOperand()
	if err != nil {
		return Value{}, s.pos, err
	}

	acc, err := ev.operand(src, t, check)
	if err != nil {
		return Value{}, s.pos, err
	}

	for {
		op, err := s.scanOperator()
		if err != nil {
			return Value{}, s.pos, err
		}

		switch op.kind {
		case tokEOL:
			if list {
				return Value{}, op.pos, errorAt(SyntaxError, EMISSINGDELIM, src, op.pos)
			}

			v, err := ev.finish(acc, want, check, src, start)

			return v, op.pos, err

		case tokDelim:
			if !list {
				return Value{}, op.pos, errorAt(SyntaxError, EDELIMITER, src, op.pos)
			}

			v, err := ev.finish(acc, want, check, src, start)

			return v, op.pos, err
		}

		t, err = s.scanOperand()
		if err != nil {
			return Value{}, s.pos, err
		}

		rhs, err := ev.operand(src, t, check)
		if err != nil {
			return Value{}, s.pos, err
		}

		if check {
			continue
		}

		acc, err = applyOperator(acc, op.text, rhs)
		if err != nil {
			return Value{}, op.pos, relocate(err, src, op.pos)
		}
	}
}

// evalExpr evaluates a whole stored expression to the requested type
func (ev *evaluator) evalExpr(src string, want ValueType) (Value, error) {

	v, _, err := ev.eval(src, 0, want, false)

	return v, err
}

// checkExpr syntax checks src from start, returning where it ended
func (ev *evaluator) checkExpr(src string, start int, list bool) (int, error) {

	_, end, err := ev.eval(src, start, TypeNone, list)

	return end, err
}

func (ev *evaluator) finish(acc Value, want ValueType, check bool, src string, start int) (Value, error) {

	if check {
		return Value{}, nil
	}

	v, ok := coerce(acc, want)
	if !ok {
		return Value{}, errorAt(TypeError, ECOERCE, src, start)
	}

	return v, nil
}

//
// Resolve an operand to a value and apply its unary operator
//

func (ev *evaluator) operand(src string, t token, check bool) (Value, error) {

	var v Value

	if t.kind == tokLiteral {
		lit, ok := parseLiteral(t.text, t.unary == '-')
		if !ok {
			return v, errorAt(LexicalError, EBADLITERAL, src, t.pos)
		}

		v = lit
	}

	if check {
		return v, nil
	}

	if t.kind != tokLiteral {
		sym := ev.syms.lookup(t.text)
		if sym == nil {
			return v, errorAt(SemanticError, EUNDEFINED+" "+t.text, src, t.pos)
		}

		if sym.vType == TypeLabel {
			return v, errorAt(TypeError, EINCOMPATIBLE, src, t.pos)
		}

		v = sym.value
	}

	switch t.unary {
	case '-':
		switch v.Type {
		case TypeInt:
			v.I = -v.I
		case TypeFloat:
			v.F = -v.F
		default:
			return v, errorAt(TypeError, EINCOMPATIBLE, src, t.pos-1)
		}

	case '!':
		b, ok := coerce(v, TypeBool)
		if !ok {
			return v, errorAt(TypeError, EINCOMPATIBLE, src, t.pos-1)
		}

		v = BoolValue(!b.B)
	}

	return v, nil
}

//
// Literals are accumulated digit by digit.  Anything with a decimal
// point is a float.  A negated literal may reach 2147483648, which
// wraps to MinInt32 here and stays there when the minus is applied
//

func parseLiteral(text string, neg bool) (Value, bool) {

	if !strings.Contains(text, ".") {
		var n int64

		limit := int64(math.MaxInt32)
		if neg {
			limit++
		}

		for i := 0; i < len(text); i++ {
			n = n*10 + int64(text[i]-'0')
			if n > limit {
				return Value{}, false
			}
		}

		return IntValue(int32(n)), true
	}

	var f float64
	var frac bool
	scale := 1.0

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == '.' {
			frac = true
			continue
		}

		d := float64(ch - '0')

		if frac {
			scale /= 10
			f += d * scale
		} else {
			f = f*10 + d
		}
	}

	return FloatValue(f), true
}

//
// coerce converts a result to the destination type: bool and int are
// interchangeable for 0 and 1, int widens to float, and float narrows
// to int only when it fits 32 bits
//

func coerce(v Value, want ValueType) (Value, bool) {

	if v.Type == want {
		return v, true
	}

	switch want {
	case TypeBool:
		if v.Type == TypeInt && (v.I == 0 || v.I == 1) {
			return BoolValue(v.I == 1), true
		}

	case TypeInt:
		switch v.Type {
		case TypeBool:
			if v.B {
				return IntValue(1), true
			}

			return IntValue(0), true

		case TypeFloat:
			if v.F >= math.MinInt32 && v.F <= math.MaxInt32 {
				return IntValue(int32(v.F)), true
			}
		}

	case TypeFloat:
		if v.Type == TypeInt {
			return FloatValue(float64(v.I)), true
		}
	}

	return Value{}, false
}

//
// A bool may pair with an int that is exactly 0 or 1; the int is then
// treated as a bool
//

func pairBool(l, r Value) (Value, Value) {

	if l.Type == TypeBool && r.Type == TypeInt {
		if b, ok := coerce(r, TypeBool); ok {
			r = b
		}
	} else if l.Type == TypeInt && r.Type == TypeBool {
		if b, ok := coerce(l, TypeBool); ok {
			l = b
		}
	}

	return l, r
}

func isRelational(op string) bool {

	switch op {
	case "=", "!=", "<", "<=", ">", ">=":
		return true
	}

	return false
}

func applyOperator(l Value, op string, r Value) (Value, error) {

	l, r = pairBool(l, r)

	if l.Type != r.Type {
		return Value{}, errorAt(TypeError, EINCOMPATIBLE, "", 0)
	}

	if isRelational(op) {
		return BoolValue(relation(compareValues(l, r), op)), nil
	}

	switch l.Type {
	case TypeInt:
		return intArith(l.I, op, r.I)

	case TypeFloat:
		return floatArith(l.F, op, r.F)

	case TypeBool:
		switch op {
		case "||":
			return BoolValue(l.B || r.B), nil
		case "&&":
			return BoolValue(l.B && r.B), nil
		}
	}

	return Value{}, errorAt(TypeError, EINCOMPATIBLE, "", 0)
}

func intArith(a int32, op string, b int32) (Value, error) {

	switch op {
	case "+":
		return IntValue(a + b), nil
	case "-":
		return IntValue(a - b), nil
	case "*":
		return IntValue(a * b), nil
	case "/", "%":
		if b == 0 {
			return Value{}, errorAt(SemanticError, EDIVISIONBYZERO, "", 0)
		}

		if op == "/" {
			return IntValue(a / b), nil
		}

		return IntValue(a % b), nil
	}

	return Value{}, errorAt(TypeError, EINCOMPATIBLE, "", 0)
}

func floatArith(a float64, op string, b float64) (Value, error) {

	switch op {
	case "+":
		return FloatValue(a + b), nil
	case "-":
		return FloatValue(a - b), nil
	case "*":
		return FloatValue(a * b), nil
	case "/":
		if b == 0 {
			return Value{}, errorAt(SemanticError, EDIVISIONBYZERO, "", 0)
		}

		return FloatValue(a / b), nil
	}

	return Value{}, errorAt(TypeError, EINCOMPATIBLE, "", 0)
}

func compareValues(l, r Value) int {

	switch l.Type {
	case TypeInt:
		return cmpOrdered(l.I, r.I)

	case TypeFloat:
		return cmpOrdered(l.F, r.F)

	default:
		return cmpOrdered(boolToInt(l.B), boolToInt(r.B))
	}
}

func cmpOrdered[T int | int32 | float64](a, b T) int {

	if a < b {
		return -1
	} else if a > b {
		return 1
	} else {
		return 0
	}
}

func boolToInt(b bool) int {

	if b {
		return 1
	}

	return 0
}

func relation(c int, op string) bool {

	switch op {
	case "=":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	default:
		return c >= 0
	}
}
