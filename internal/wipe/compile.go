package wipe

import (
	"strings"
)

//
// The statement compiler turns one source line into one tokenized
// line.  Expressions are only syntax checked here and stored as text;
// they are evaluated when the statement executes, against whatever
// the symbol table holds then
//

type compiler struct {
	ev *evaluator
}

// compileLine compiles src as line number (0 for immediate)
func (c *compiler) compileLine(src string, number int) (Line, []byte, error) {

	if i := strings.IndexByte(src, 0); i >= 0 {
		return Line{}, nil, errorAt(LexicalError, EBADCHAR, src, i)
	}

	s := newScanner(src)
	t := s.scanToken()

	var stmt Statement
	var err error

	switch t.kind {
	case tokKeyword:
		kind := keywordMap[t.text]

		if number == 0 && (kind == KindLabel || kind == KindGoto || kind == KindIf) {
			return Line{}, nil, errorAt(SyntaxError, EIMMEDIATE, src, t.pos)
		}

		stmt, err = c.compileKeyword(s, kind)

	case tokFunc:
		stmt, err = c.compileCall(s, functionMap[t.text])

	default:
		return Line{}, nil, errorAt(SyntaxError, EUNKNOWNSTMT, src, t.pos)
	}

	if err != nil {
		return Line{}, nil, err
	}

	line := Line{Number: number, Stmt: stmt}

	rec, err := encodeLine(line)
	if err != nil {
		return Line{}, nil, err
	}

	return line, rec, nil
}

func (c *compiler) compileKeyword(s *scanner, kind StmtKind) (Statement, error) {

	var stmt Statement

	switch kind {
	case KindVar:
		name, err := s.scanIdentifier(maxIdentLen)
		if err != nil {
			return nil, err
		}

		if err := s.expect(':', EBADTYPE); err != nil {
			return nil, err
		}

		word, pos := s.scanWord()
		vType, ok := typeMap[word]
		if !ok {
			return nil, errorAt(SyntaxError, EBADTYPE, s.src, pos)
		}

		stmt = VarStmt{Name: name, Type: vType}

	case KindLet:
		name, err := s.scanIdentifier(maxIdentLen)
		if err != nil {
			return nil, err
		}

		if err := s.expect('=', EOPERATOR); err != nil {
			return nil, err
		}

		expr, err := c.wholeExpr(s)
		if err != nil {
			return nil, err
		}

		return LetStmt{Name: name, Expr: expr}, nil

	case KindIf:
		expr, err := c.wholeExpr(s)
		if err != nil {
			return nil, err
		}

		return IfStmt{Expr: expr}, nil

	case KindLabel, KindGoto:
		name, err := s.scanIdentifier(maxIdentLen)
		if err != nil {
			return nil, err
		}

		if kind == KindLabel {
			stmt = LabelStmt{Name: name}
		} else {
			stmt = GotoStmt{Name: name}
		}

	case KindPrint:
		s.skipSpace()

		if s.peek() == '"' {
			str, err := s.scanString()
			if err != nil {
				return nil, err
			}

			stmt = PrintStmt{Text: str}
		} else {
			name, err := s.scanIdentifier(maxIdentLen)
			if err != nil {
				return nil, err
			}

			stmt = PrintStmt{Ident: true, Text: name}
		}
	}

	if !s.atEOL() {
		return nil, errorAt(SyntaxError, ETRAILING, s.src, s.pos)
	}

	return stmt, nil
}

//
// The rest of the line is an expression.  It is checked, then kept
// verbatim (minus surrounding blanks)
//

func (c *compiler) wholeExpr(s *scanner) (string, error) {

	s.skipSpace()
	start := s.pos

	end, err := c.ev.checkExpr(s.src, start, false)
	if err != nil {
		return "", err
	}

	s.pos = end

	return strings.TrimSpace(s.src[start:end]), nil
}

//
// A function call takes exactly the parameter count bound to its
// opcode.  Each argument is checked in list mode and copied verbatim
//

func (c *compiler) compileCall(s *scanner, fd *funcDef) (Statement, error) {

	if err := s.expect('(', EARGCOUNT); err != nil {
		return nil, err
	}

	stmt := CallStmt{Misc: fd.misc, Opcode: fd.opcode}

	for i := 0; i < fd.params; i++ {
		s.skipSpace()
		start := s.pos

		if s.peek() == ')' {
			return nil, errorAt(SyntaxError, EARGCOUNT, s.src, start)
		}

		end, err := c.ev.checkExpr(s.src, start, true)
		if err != nil {
			return nil, err
		}

		want := byte(',')
		if i == fd.params-1 {
			want = ')'
		}

		if s.src[end] != want {
			return nil, errorAt(SyntaxError, EARGCOUNT, s.src, end)
		}

		stmt.Args = append(stmt.Args, strings.TrimSpace(s.src[start:end]))
		s.pos = end + 1
	}

	if !s.atEOL() {
		return nil, errorAt(SyntaxError, ETRAILING, s.src, s.pos)
	}

	return stmt, nil
}
