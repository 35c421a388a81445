package wipe

import (
	"bytes"
	"fmt"
	"strings"
)

//
// Compiled statements.  While compiling and executing, a statement is
// one of the types below; in the program buffer and in EEPROM it is a
// tokenized line record:
//
//	[lineNumber][length][kind][payload...]
//
// encodeLine and decodeLine are the only code that knows the byte
// layout.  Strings in the payload are NUL terminated
//

type Statement interface {
	Kind() StmtKind
	String() string
	encode(b *bytes.Buffer)
}

type VarStmt struct {
	Name string
	Type ValueType
}

type LetStmt struct {
	Name string
	Expr string
}

type LabelStmt struct {
	Name string
}

type GotoStmt struct {
	Name string
}

type IfStmt struct {
	Expr string
}

// PrintStmt prints Text literally, or the variable named Text when
// Ident is set
type PrintStmt struct {
	Ident bool
	Text  string
}

// CallStmt invokes a WASP command (or a misc function when Misc is
// set) with one expression per fixed parameter
type CallStmt struct {
	Misc   bool
	Opcode byte
	Args   []string
}

// Line is one decoded tokenized line
type Line struct {
	Number int
	Stmt   Statement
}

func (VarStmt) Kind() StmtKind   { return KindVar }
func (LetStmt) Kind() StmtKind   { return KindLet }
func (LabelStmt) Kind() StmtKind { return KindLabel }
func (GotoStmt) Kind() StmtKind  { return KindGoto }
func (IfStmt) Kind() StmtKind    { return KindIf }
func (PrintStmt) Kind() StmtKind { return KindPrint }
func (CallStmt) Kind() StmtKind  { return KindCall }

func putString(b *bytes.Buffer, s string) {

	b.WriteString(s)
	b.WriteByte(0)
}

func (s VarStmt) encode(b *bytes.Buffer) {

	putString(b, s.Name)
	b.WriteByte(byte(s.Type))
}

func (s LetStmt) encode(b *bytes.Buffer) {

	putString(b, s.Name)
	putString(b, s.Expr)
}

func (s LabelStmt) encode(b *bytes.Buffer) { putString(b, s.Name) }

func (s GotoStmt) encode(b *bytes.Buffer) { putString(b, s.Name) }

func (s IfStmt) encode(b *bytes.Buffer) { putString(b, s.Expr) }

func (s PrintStmt) encode(b *bytes.Buffer) {

	if s.Ident {
		b.WriteByte(printIdent)
	} else {
		b.WriteByte(printString)
	}

	putString(b, s.Text)
}

func (s CallStmt) encode(b *bytes.Buffer) {

	if s.Misc {
		b.WriteByte(callMisc)
	} else {
		b.WriteByte(callWasp)
	}

	b.WriteByte(s.Opcode)
	b.WriteByte(byte(len(s.Args)))

	for _, arg := range s.Args {
		putString(b, arg)
	}
}

//
// Source forms, as shown by list
//

func (s VarStmt) String() string {
	return fmt.Sprintf("var %s:%s", s.Name, s.Type)
}

func (s LetStmt) String() string {
	return fmt.Sprintf("let %s = %s", s.Name, s.Expr)
}

func (s LabelStmt) String() string {
	return "label " + s.Name
}

func (s GotoStmt) String() string {
	return "goto " + s.Name
}

func (s IfStmt) String() string {
	return "if " + s.Expr
}

func (s PrintStmt) String() string {

	if s.Ident {
		return "print " + s.Text
	}

	return "print " + escapeString(s.Text)
}

func (s CallStmt) String() string {

	name := "?"

	for _, fd := range funcDefs {
		if fd.misc == s.Misc && fd.opcode == s.Opcode {
			name = fd.name
			break
		}
	}

	return name + "(" + strings.Join(s.Args, ", ") + ")"
}

func (l Line) String() string {

	if l.Number == 0 {
		return l.Stmt.String()
	}

	return fmt.Sprintf("%d %s", l.Number, l.Stmt.String())
}

//
// encodeLine builds a complete record.  The length byte is patched in
// once the payload size is known
//

func encodeLine(l Line) ([]byte, error) {

	var b bytes.Buffer

	b.WriteByte(byte(l.Number))
	b.WriteByte(0)
	b.WriteByte(byte(l.Stmt.Kind()))

	l.Stmt.encode(&b)

	rec := b.Bytes()
	if len(rec) > maxRecordLen {
		return nil, newError(SyntaxError, ELINETOOLONG)
	}

	rec[hdrLength] = byte(len(rec))

	return rec, nil
}

// recordLen returns the length field of the record at off
func recordLen(buf []byte, off int) int {
	return int(buf[off+hdrLength])
}

func recordLineNo(buf []byte, off int) int {
	return int(buf[off+hdrLineNo])
}

//
// Payload reader.  A malformed record means the buffer is corrupt,
// which is an interpreter bug (or a bad EEPROM image that slipped past
// the directory checks), so failures are reported as errors rather
// than trusted
//

type payloadReader struct {
	buf []byte
	pos int
	err error
}

func (r *payloadReader) readByte() byte {

	if r.err != nil {
		return 0
	}

	if r.pos >= len(r.buf) {
		r.err = fmt.Errorf("record truncated")
		return 0
	}

	b := r.buf[r.pos]
	r.pos++

	return b
}

func (r *payloadReader) readString() string {

	if r.err != nil {
		return ""
	}

	i := bytes.IndexByte(r.buf[r.pos:], 0)
	if i < 0 {
		r.err = fmt.Errorf("unterminated string in record")
		return ""
	}

	s := string(r.buf[r.pos : r.pos+i])
	r.pos += i + 1

	return s
}

//
// decodeLine decodes the record at off, returning it and its length
//

func decodeLine(buf []byte, off int) (Line, int, error) {

	if off+hdrSize > len(buf) {
		return Line{}, 0, fmt.Errorf("record header at %d truncated", off)
	}

	n := recordLen(buf, off)
	if n < hdrSize || off+n > len(buf) {
		return Line{}, 0, fmt.Errorf("bad record length %d at %d", n, off)
	}

	l := Line{Number: recordLineNo(buf, off)}
	r := &payloadReader{buf: buf[off+hdrSize : off+n]}

	switch kind := StmtKind(buf[off+hdrKind]); kind {
	case KindVar:
		l.Stmt = VarStmt{Name: r.readString(), Type: ValueType(r.readByte())}

	case KindLet:
		l.Stmt = LetStmt{Name: r.readString(), Expr: r.readString()}

	case KindLabel:
		l.Stmt = LabelStmt{Name: r.readString()}

	case KindGoto:
		l.Stmt = GotoStmt{Name: r.readString()}

	case KindIf:
		l.Stmt = IfStmt{Expr: r.readString()}

	case KindPrint:
		disc := r.readByte()
		l.Stmt = PrintStmt{Ident: disc == printIdent, Text: r.readString()}

	case KindCall:
		s := CallStmt{Misc: r.readByte() == callMisc, Opcode: r.readByte()}
		count := int(r.readByte())
		for i := 0; i < count && r.err == nil; i++ {
			s.Args = append(s.Args, r.readString())
		}
		l.Stmt = s

	default:
		return Line{}, 0, fmt.Errorf("unknown statement kind %d at %d", kind, off)
	}

	if r.err != nil {
		return Line{}, 0, fmt.Errorf("record at %d: %w", off, r.err)
	}

	return l, n, nil
}
