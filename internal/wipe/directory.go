package wipe

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"

	"wasp/wipe/internal/eeprom"
)

//
// The EEPROM directory is a packed sequence of saved programs
//
//	[size lo][size hi][name, 13 bytes NUL padded][size bytes of records]
//
// terminated by a two byte zero size.  There is no index and no free
// list: saving appends at the sentinel, erasing slides everything
// after the victim down over it
//

const entryHdrSize = 2 + nameFieldLen
const sentinelSize = 2

// DirEntry describes one saved program
type DirEntry struct {
	Name string
	Size int
}

type Directory struct {
	store eeprom.Store
	end   int
	free  int
	log   *zap.Logger
}

//
// OpenDirectory walks the store.  If it does not hold a well formed
// directory (a fresh part reads all 0xff) it is formatted
//

func OpenDirectory(store eeprom.Store, log *zap.Logger) (*Directory, error) {

	if log == nil {
		log = zap.NewNop()
	}

	if store.Size() < entryHdrSize+sentinelSize {
		return nil, fmt.Errorf("eeprom of %d bytes is too small for a directory", store.Size())
	}

	d := &Directory{store: store, log: log}

	if err := d.scan(); err != nil {
		log.Warn("formatting eeprom", zap.Error(err))

		if err := d.Format(); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (d *Directory) scan() error {

	capacity := d.store.Size()
	off := 0

	for {
		if off+sentinelSize > capacity {
			return fmt.Errorf("no sentinel")
		}

		size := d.sizeAt(off)
		if size == 0 {
			break
		}

		if off+entryHdrSize+size+sentinelSize > capacity {
			return fmt.Errorf("entry at %d overruns the store", off)
		}

		if _, ok := d.nameAt(off); !ok {
			return fmt.Errorf("bad program name at %d", off)
		}

		if err := validateRecords(d.read(off+entryHdrSize, size)); err != nil {
			return fmt.Errorf("entry at %d: %w", off, err)
		}

		off += entryHdrSize + size
	}

	d.end = off
	d.free = capacity - off

	return nil
}

// Format empties the directory
func (d *Directory) Format() error {

	d.end = 0
	d.free = d.store.Size()
	d.putSentinel()

	return d.flush()
}

func (d *Directory) Capacity() int { return d.store.Size() }

// Free returns the bytes not taken by saved programs
func (d *Directory) Free() int { return d.free }

func (d *Directory) sizeAt(off int) int {
	return int(d.store.Get(off)) | int(d.store.Get(off+1))<<8
}

func (d *Directory) nameAt(off int) (string, bool) {

	field := d.read(off+2, nameFieldLen)

	i := bytes.IndexByte(field, 0)
	if i < 0 {
		return "", false
	}

	name := string(field[:i])

	return name, validName(name)
}

func (d *Directory) read(off, n int) []byte {

	b := make([]byte, n)
	for i := range b {
		b[i] = d.store.Get(off + i)
	}

	return b
}

func (d *Directory) write(off int, b []byte) {

	for i, c := range b {
		d.store.Put(off+i, c)
	}
}

func (d *Directory) putSentinel() {

	d.store.Put(d.end, 0)
	d.store.Put(d.end+1, 0)
}

func (d *Directory) flush() error {

	if f, ok := d.store.(eeprom.Flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("eeprom flush: %w", err)
		}
	}

	return nil
}

// find returns the offset of the named entry, or -1
func (d *Directory) find(name string) int {

	for off := 0; off < d.end; off += entryHdrSize + d.sizeAt(off) {
		if n, _ := d.nameAt(off); n == name {
			return off
		}
	}

	return -1
}

// Entries lists the saved programs in directory order
func (d *Directory) Entries() []DirEntry {

	var entries []DirEntry

	for off := 0; off < d.end; off += entryHdrSize + d.sizeAt(off) {
		name, _ := d.nameAt(off)
		entries = append(entries, DirEntry{Name: name, Size: d.sizeAt(off)})
	}

	return entries
}

//
// Save appends a program.  Names are unique; there is no overwrite, the
// old copy has to be erased first
//

func (d *Directory) Save(name string, program []byte) error {

	if !validName(name) {
		return newError(LexicalError, ELONGNAME)
	}

	if len(program) == 0 {
		return newError(StorageError, EEMPTYPROGRAM)
	}

	if d.find(name) >= 0 {
		return newError(StorageError, EFILEEXISTS)
	}

	need := entryHdrSize + len(program)
	if need+sentinelSize > d.free {
		return newError(StorageError, ENOSPACE)
	}

	var hdr [entryHdrSize]byte

	binary.LittleEndian.PutUint16(hdr[:2], uint16(len(program)))
	copy(hdr[2:], name)

	d.write(d.end, hdr[:])
	d.write(d.end+entryHdrSize, program)

	d.end += need
	d.free -= need
	d.putSentinel()

	d.log.Debug("program saved", zap.String("name", name), zap.Int("size", len(program)),
		zap.Int("free", d.free))

	return d.flush()
}

// Load returns a copy of the named program's records
func (d *Directory) Load(name string) ([]byte, error) {

	off := d.find(name)
	if off < 0 {
		return nil, newError(StorageError, EFILENOTFOUND)
	}

	return d.read(off+entryHdrSize, d.sizeAt(off)), nil
}

// Erase removes the named program, compacting the entries after it
func (d *Directory) Erase(name string) error {

	off := d.find(name)
	if off < 0 {
		return newError(StorageError, EFILENOTFOUND)
	}

	n := entryHdrSize + d.sizeAt(off)

	for src := off + n; src < d.end; src++ {
		d.store.Put(src-n, d.store.Get(src))
	}

	d.end -= n
	d.free += n
	d.putSentinel()

	d.log.Debug("program erased", zap.String("name", name), zap.Int("free", d.free))

	return d.flush()
}

//
// Program names are 1..12 letters, digits or underscores, and do not
// start with a digit
//

func validName(name string) bool {

	if name == "" || len(name) > maxNameLen || isDigit(name[0]) {
		return false
	}

	for i := 0; i < len(name); i++ {
		if !isOperandChar(name[i]) {
			return false
		}
	}

	return true
}
