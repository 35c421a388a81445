package wipe

import (
	"strings"
)

//
// The WIPE lexer works directly on the raw input line.  Nothing is
// tokenized up front: the compiler and the evaluator pull operands,
// operators and names from a scanner as they need them, and every
// token remembers where in the line it came from so errors can
// point at the offending column
//

type tokenKind int

const (
	tokEOL tokenKind = iota
	tokLiteral
	tokIdent
	tokOperator
	tokDelim
	tokKeyword
	tokFunc
	tokCommand
	tokLineNo
)

type token struct {
	kind  tokenKind
	text  string
	pos   int
	unary byte
}

type scanner struct {
	src string
	pos int
}

var keywordMap = map[string]StmtKind{
	"if":    KindIf,
	"goto":  KindGoto,
	"label": KindLabel,
	"let":   KindLet,
	"print": KindPrint,
	"var":   KindVar,
}

var functionMap map[string]*funcDef

var typeMap = map[string]ValueType{
	"int":   TypeInt,
	"float": TypeFloat,
	"bool":  TypeBool,
}

func init() {

	functionMap = make(map[string]*funcDef)
	for i := range funcDefs {
		functionMap[funcDefs[i].name] = &funcDefs[i]
	}
}

func newScanner(src string) *scanner {
	return &scanner{src: src}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isOperandChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t'
}

//
// Characters that may start an operator or a list delimiter.  An
// operand must be followed by one of these, whitespace, or the end
// of the line
//

func isOperatorStart(ch byte) bool {
	return strings.IndexByte("+-*/%=<>!|&,)", ch) >= 0
}

func (s *scanner) skipSpace() {

	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func (s *scanner) peek() byte {

	if s.pos < len(s.src) {
		return s.src[s.pos]
	}

	return 0
}

// atEOL skips whitespace and reports whether nothing is left
func (s *scanner) atEOL() bool {

	s.skipSpace()

	return s.pos >= len(s.src)
}

// expect consumes ch (after optional whitespace)
func (s *scanner) expect(ch byte, msg string) error {

	s.skipSpace()

	if s.peek() != ch {
		return errorAt(SyntaxError, msg, s.src, s.pos)
	}

	s.pos++

	return nil
}

//
// scanOperand reads one operand, with its optional unary operator.
// The unary operator must be glued to the operand
//

func (s *scanner) scanOperand() (token, error) {

	var t token

	s.skipSpace()

	if ch := s.peek(); ch == '-' || ch == '!' {
		t.unary = ch
		s.pos++

		if isSpace(s.peek()) {
			return t, errorAt(LexicalError, EUNARYSPACE, s.src, s.pos-1)
		}
	}

	begin := s.pos
	for s.pos < len(s.src) && (isOperandChar(s.src[s.pos]) || s.src[s.pos] == '.') {
		s.pos++
	}

	t.text = s.src[begin:s.pos]
	t.pos = begin

	if t.text == "" {
		return t, errorAt(SyntaxError, EOPERANDEXPECTED, s.src, begin)
	}

	if ch := s.peek(); ch != 0 && !isSpace(ch) && !isOperatorStart(ch) {
		return t, errorAt(LexicalError, EBADCHAR, s.src, s.pos)
	}

	if isDigit(t.text[0]) {
		t.kind = tokLiteral

		dots := 0
		for i := 0; i < len(t.text); i++ {
			ch := t.text[i]
			if ch == '.' {
				dots++
			}

			if dots > 1 || (!isDigit(ch) && ch != '.') {
				return t, errorAt(LexicalError, EBADLITERAL, s.src, begin+i)
			}
		}

		return t, nil
	}

	t.kind = tokIdent

	if i := strings.IndexByte(t.text, '.'); i >= 0 {
		return t, errorAt(LexicalError, EBADCHAR, s.src, begin+i)
	}

	if len(t.text) > maxIdentLen {
		return t, errorAt(LexicalError, ELONGIDENT, s.src, begin)
	}

	return t, nil
}

//
// scanOperator reads a binary operator or a list delimiter, or
// reports the end of the line.  Two character operators need a
// trailing space
//

func (s *scanner) scanOperator() (token, error) {

	s.skipSpace()

	start := s.pos

	if start >= len(s.src) {
		return token{kind: tokEOL, pos: start}, nil
	}

	ch := s.src[start]

	switch ch {
	case ',', ')':
		s.pos++
		return token{kind: tokDelim, text: s.src[start:s.pos], pos: start}, nil

	case '+', '-', '*', '/', '%', '=':
		s.pos++
		return token{kind: tokOperator, text: s.src[start:s.pos], pos: start}, nil

	case '<', '>':
		if start+1 < len(s.src) && s.src[start+1] == '=' {
			return s.twoCharOperator(start)
		}

		s.pos++
		return token{kind: tokOperator, text: s.src[start:s.pos], pos: start}, nil

	case '!', '|', '&':
		second := ch
		if ch == '!' {
			second = '='
		}

		if start+1 >= len(s.src) || s.src[start+1] != second {
			return token{}, errorAt(SyntaxError, EBADOPERATOR, s.src, start)
		}

		return s.twoCharOperator(start)
	}

	return token{}, errorAt(SyntaxError, EOPERATOR, s.src, start)
}

func (s *scanner) twoCharOperator(start int) (token, error) {

	if start+2 >= len(s.src) || !isSpace(s.src[start+2]) {
		return token{}, errorAt(SyntaxError, EBADOPERATOR, s.src, start)
	}

	s.pos = start + 2

	return token{kind: tokOperator, text: s.src[start:s.pos], pos: start}, nil
}

//
// scanIdentifier reads a bare name of at most maxLen characters, as
// needed by var/let/label/goto/print and by program names
//

func (s *scanner) scanIdentifier(maxLen int) (string, error) {

	s.skipSpace()

	begin := s.pos
	for s.pos < len(s.src) && isOperandChar(s.src[s.pos]) {
		s.pos++
	}

	name := s.src[begin:s.pos]

	switch {
	case name == "":
		return "", errorAt(SyntaxError, EOPERANDEXPECTED, s.src, begin)

	case isDigit(name[0]):
		return "", errorAt(LexicalError, EBADCHAR, s.src, begin)

	case len(name) > maxLen:
		msg := ELONGIDENT
		if maxLen > maxIdentLen {
			msg = ELONGNAME
		}

		return "", errorAt(LexicalError, msg, s.src, begin)
	}

	return name, nil
}

// scanWord reads a run of letters, used for keyword recognition
func (s *scanner) scanWord() (string, int) {

	s.skipSpace()

	begin := s.pos
	for s.pos < len(s.src) && isLetter(s.src[s.pos]) {
		s.pos++
	}

	return s.src[begin:s.pos], begin
}

//
// scanToken classifies the leading word of a statement.  Anything
// that is not an exact keyword or function name is an identifier
//

func (s *scanner) scanToken() token {

	word, pos := s.scanWord()

	if _, ok := keywordMap[word]; ok {
		return token{kind: tokKeyword, text: word, pos: pos}
	}

	if _, ok := functionMap[word]; ok {
		return token{kind: tokFunc, text: word, pos: pos}
	}

	return token{kind: tokIdent, text: word, pos: pos}
}

//
// scanCommand classifies the leading word of a console line: a
// command verb, a line number, or nothing (the line is then an
// immediate statement).  The scanner is left untouched unless a verb
// or line number matched
//

func (s *scanner) scanCommand() token {

	save := s.pos

	s.skipSpace()
	begin := s.pos

	if isDigit(s.peek()) {
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}

		return token{kind: tokLineNo, text: s.src[begin:s.pos], pos: begin}
	}

	word, pos := s.scanWord()
	if _, ok := commandMap[word]; ok && (s.pos >= len(s.src) || isSpace(s.src[s.pos])) {
		return token{kind: tokCommand, text: word, pos: pos}
	}

	s.pos = save

	return token{kind: tokEOL, pos: begin}
}

//
// scanString reads a double quoted string, decoding the \n, \\ and
// \" escapes
//

func (s *scanner) scanString() (string, error) {

	var sb strings.Builder

	s.skipSpace()

	if s.peek() != '"' {
		return "", errorAt(SyntaxError, EOPERANDEXPECTED, s.src, s.pos)
	}

	begin := s.pos
	s.pos++

	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		s.pos++

		switch ch {
		case '"':
			return sb.String(), nil

		case '\\':
			if s.pos >= len(s.src) {
				return "", errorAt(LexicalError, EBADSTRING, s.src, begin)
			}

			switch esc := s.src[s.pos]; esc {
			case 'n':
				sb.WriteByte('\n')
			case '\\', '"':
				sb.WriteByte(esc)
			default:
				return "", errorAt(LexicalError, EBADCHAR, s.src, s.pos)
			}

			s.pos++

		default:
			sb.WriteByte(ch)
		}
	}

	return "", errorAt(LexicalError, EBADSTRING, s.src, begin)
}

// escapeString is the inverse of scanString's decoding, for listings
func escapeString(str string) string {

	var sb strings.Builder

	sb.WriteByte('"')

	for i := 0; i < len(str); i++ {
		switch ch := str[i]; ch {
		case '\n':
			sb.WriteString(`\n`)
		case '\\', '"':
			sb.WriteByte('\\')
			sb.WriteByte(ch)
		default:
			sb.WriteByte(ch)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}
