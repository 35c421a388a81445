package wipe

import (
	"fmt"
	"io"
)

//
// The program buffer: tokenized lines packed back to back in a fixed
// size byte array, sorted strictly ascending by line number.  There
// are no pointers; the next line starts length bytes after this one
//

type Program struct {
	buf  []byte
	used int
}

func NewProgram(capacity int) *Program {
	return &Program{buf: make([]byte, capacity)}
}

func (p *Program) Len() int { return p.used }

func (p *Program) Cap() int { return len(p.buf) }

func (p *Program) Free() int { return len(p.buf) - p.used }

// Bytes returns the occupied prefix.  The slice aliases the buffer
func (p *Program) Bytes() []byte { return p.buf[:p.used] }

// Clear empties the buffer
func (p *Program) Clear() { p.used = 0 }

// Replace installs a raw snapshot, e.g. one read from EEPROM
func (p *Program) Replace(data []byte) error {

	if len(data) > len(p.buf) {
		return newError(StorageError, ENORAM)
	}

	if err := validateRecords(data); err != nil {
		return fmt.Errorf("corrupt program: %w", err)
	}

	p.used = copy(p.buf, data)

	return nil
}

//
// Make sure a byte string is a well formed ascending sequence of
// records, so nothing downstream trips over a bad length byte
//

func validateRecords(data []byte) error {

	last := 0

	for off := 0; off < len(data); {
		l, n, err := decodeLine(data, off)
		if err != nil {
			return err
		}

		if l.Number <= last {
			return fmt.Errorf("line %d out of order at %d", l.Number, off)
		}

		last = l.Number
		off += n
	}

	return nil
}

//
// seekLineStart returns the offset of the first line numbered >=
// target, and whether that line is numbered exactly target.  The
// offset is p.used when every line is below target
//

func (p *Program) seekLineStart(target int) (int, bool) {

	off := 0

	for off < p.used {
		n := recordLineNo(p.buf, off)
		if n >= target {
			return off, n == target
		}

		off += recordLen(p.buf, off)
	}

	return off, false
}

// next returns the offset following the record at off
func (p *Program) next(off int) int {
	return off + recordLen(p.buf, off)
}

//
// Insert splices a compiled record into place, replacing any line with
// the same number.  Following lines shift up by the record's length
//

func (p *Program) Insert(rec []byte) error {

	number := int(rec[hdrLineNo])
	wipeAssert(number >= minLineNo && number <= maxLineNo, "inserting line %d", number)
	wipeAssert(int(rec[hdrLength]) == len(rec), "record length mismatch")

	off, found := p.seekLineStart(number)

	old := 0
	if found {
		old = recordLen(p.buf, off)
	}

	// a replacement that does not fit leaves the old line in place
	if len(rec) > p.Free()+old {
		return newError(StorageError, ENORAM)
	}

	if found {
		p.remove(off)
	}

	copy(p.buf[off+len(rec):], p.buf[off:p.used])
	copy(p.buf[off:], rec)
	p.used += len(rec)

	return nil
}

// remove deletes the record at off, compacting the bytes after it
func (p *Program) remove(off int) {

	n := recordLen(p.buf, off)

	copy(p.buf[off:], p.buf[off+n:p.used])
	p.used -= n
}

//
// DeleteRange removes every line numbered within [lower, upper] and
// returns how many went
//

func (p *Program) DeleteRange(lower, upper int) int {

	count := 0

	for {
		off, _ := p.seekLineStart(lower)
		if off >= p.used || recordLineNo(p.buf, off) > upper {
			return count
		}

		p.remove(off)
		count++
	}
}

// LineCount returns the number of stored lines
func (p *Program) LineCount() int {

	count := 0

	for off := 0; off < p.used; off = p.next(off) {
		count++
	}

	return count
}

//
// Renumber spreads the lines evenly between renumLow and renumHigh
// with an even step, preserving order.  Only the line number bytes
// change
//

func (p *Program) Renumber() error {

	count := p.LineCount()

	if count == 0 {
		return nil
	}

	step := 0
	if count > 1 {
		step = ((renumHigh - renumLow) / (count - 1)) &^ 1
		if step < 2 {
			return newError(StorageError, ERENUMBER)
		}
	}

	number := renumLow

	for off := 0; off < p.used; off = p.next(off) {
		p.buf[off+hdrLineNo] = byte(number)
		number += step
	}

	return nil
}

// Lines decodes every stored line
func (p *Program) Lines() ([]Line, error) {

	var lines []Line

	for off := 0; off < p.used; {
		l, n, err := decodeLine(p.buf, off)
		if err != nil {
			return nil, err
		}

		lines = append(lines, l)
		off += n
	}

	return lines, nil
}

// List writes the lines numbered within [lower, upper] as source text
func (p *Program) List(w io.Writer, lower, upper int) error {

	off, _ := p.seekLineStart(lower)

	for off < p.used && recordLineNo(p.buf, off) <= upper {
		l, n, err := decodeLine(p.buf, off)
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintln(w, l.String()); err != nil {
			return err
		}

		off += n
	}

	return nil
}
