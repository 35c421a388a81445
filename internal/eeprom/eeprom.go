// Package eeprom provides the controller's persistent byte store.
// The interpreter sees only byte get/put over a fixed-size region;
// the backing may be memory or an image file on disk.
package eeprom

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

// Erased is the value of a never-written EEPROM cell
const Erased = 0xff

const sumSize = 32

var ErrBadImage = errors.New("eeprom image checksum mismatch")

// Store is a fixed-size byte-addressable persistent region
type Store interface {
	Size() int
	Get(addr int) byte
	Put(addr int, b byte)
}

// Flusher is implemented by stores that buffer writes
type Flusher interface {
	Flush() error
}

// Memory is a volatile Store, handy for tests and for running
// without an image file
type Memory struct {
	cells []byte
}

func NewMemory(size int) *Memory {

	m := &Memory{cells: make([]byte, size)}
	for i := range m.cells {
		m.cells[i] = Erased
	}

	return m
}

func (m *Memory) Size() int { return len(m.cells) }

func (m *Memory) Get(addr int) byte { return m.cells[addr] }

func (m *Memory) Put(addr int, b byte) { m.cells[addr] = b }

// Bytes exposes the raw contents
func (m *Memory) Bytes() []byte { return m.cells }

//
// FileStore keeps the whole image in memory and writes it back on
// Flush.  The file holds the raw cells followed by a BLAKE3 digest of
// them, so a torn or foreign file is detected on open
//

type FileStore struct {
	Memory
	path  string
	dirty bool
	log   *zap.Logger
}

// OpenFile loads (or creates) an image of the given size.  A missing
// file yields an erased store.  A file of the wrong size or with a bad
// digest is discarded with a warning and the store starts erased.
func OpenFile(path string, size int, log *zap.Logger) (*FileStore, error) {

	if log == nil {
		log = zap.NewNop()
	}

	store := &FileStore{Memory: *NewMemory(size), path: path, log: log}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		store.dirty = true
		return store, nil

	case err != nil:
		return nil, fmt.Errorf("read eeprom image: %w", err)
	}

	cells, err := verifyImage(data, size)
	if err != nil {
		log.Warn("discarding eeprom image", zap.String("path", path), zap.Error(err))
		store.dirty = true
		return store, nil
	}

	copy(store.cells, cells)

	return store, nil
}

func verifyImage(data []byte, size int) ([]byte, error) {

	if len(data) != size+sumSize {
		return nil, fmt.Errorf("image is %d bytes, want %d", len(data), size+sumSize)
	}

	cells, sum := data[:size], data[size:]
	want := blake3.Sum256(cells)

	if !bytes.Equal(sum, want[:]) {
		return nil, ErrBadImage
	}

	return cells, nil
}

func (f *FileStore) Put(addr int, b byte) {

	if f.cells[addr] != b {
		f.cells[addr] = b
		f.dirty = true
	}
}

// Flush writes the image if anything changed since the last flush
func (f *FileStore) Flush() error {

	if !f.dirty {
		return nil
	}

	sum := blake3.Sum256(f.cells)

	buf := make([]byte, 0, len(f.cells)+sumSize)
	buf = append(buf, f.cells...)
	buf = append(buf, sum[:]...)

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0644); err != nil {
		return fmt.Errorf("write eeprom image: %w", err)
	}

	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace eeprom image: %w", err)
	}

	f.dirty = false
	f.log.Debug("eeprom image flushed", zap.String("path", f.path))

	return nil
}

func (f *FileStore) Path() string { return f.path }
