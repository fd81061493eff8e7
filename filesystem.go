package indexfs

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// MaxIndexes is the number of distinct index ids the archive format can hold;
// index ids are stored in a single byte.
const MaxIndexes = 256

// FileSystem is an ordered, slot-addressable collection of indexes that can
// be encoded to and decoded from a single compressed archive.
//
// Every index's id equals its position: inserting or removing an index
// renumbers the indexes after it, and inserting past the end back-fills the
// gap with empty placeholder indexes.
//
// FileSystem is not safe for concurrent use. Call Close when done with it.
type FileSystem struct {
	indexes []*Index
	cfg     config
}

// New returns an empty FileSystem.
func New(opts ...Option) *FileSystem {
	return &FileSystem{cfg: newConfig(opts)}
}

// log returns the logger, falling back to a discard logger if nil.
func (fsys *FileSystem) log() *slog.Logger {
	if fsys.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return fsys.cfg.logger
}

// Add inserts idx at the position given by its id and returns it.
//
// Indexes previously at or after that position move up one slot and are
// renumbered. If the id is past the end, placeholder indexes named "empty"
// fill the gap first; this applies to an empty FileSystem too, so adding id 2
// to it yields two placeholders followed by idx.
//
// An index belongs to at most one FileSystem at a time. Adding one that is
// already held, by fsys or any other FileSystem, fails with ErrIndexOwned.
func (fsys *FileSystem) Add(idx *Index) (*Index, error) {
	if idx == nil {
		return nil, errors.New("indexfs: add: nil index")
	}
	if idx.owner != nil {
		return nil, fmt.Errorf("%w: add: index %d (%s)", ErrIndexOwned, idx.ID(), idx.Name())
	}
	id := idx.ID()
	if id < 0 {
		return nil, invalidID("add", id, len(fsys.indexes))
	}
	if id >= MaxIndexes || len(fsys.indexes) >= MaxIndexes {
		return nil, fmt.Errorf("%w: add: id=%d with %d of %d indexes in use", ErrIDOverflow, id, len(fsys.indexes), MaxIndexes)
	}

	for i := len(fsys.indexes); i < id; i++ {
		fsys.indexes = append(fsys.indexes, fsys.adopt(NewNamedIndex(i, TombstoneName)))
	}

	fsys.indexes = slices.Insert(fsys.indexes, id, fsys.adopt(idx))
	fsys.renumber(id + 1)
	return idx, nil
}

// Remove removes the index at position id and renumbers the indexes after it.
// The removed index is released and may be added again.
func (fsys *FileSystem) Remove(id int) error {
	if err := fsys.checkID("remove", id); err != nil {
		return err
	}
	fsys.indexes[id].owner = nil
	fsys.indexes = slices.Delete(fsys.indexes, id, id+1)
	fsys.renumber(id)
	return nil
}

// Read returns the payload in slot fileID of index id.
func (fsys *FileSystem) Read(id, fileID int) ([]byte, error) {
	if err := fsys.checkID("read", id); err != nil {
		return nil, err
	}
	files := fsys.indexes[id].files
	if fileID < 0 || fileID >= len(files) {
		return nil, invalidID("read file", fileID, len(files))
	}
	return files[fileID].Payload, nil
}

// ReadByName returns the payload of the first file in index id whose name
// matches, ignoring case. The boolean is false if no file matches.
func (fsys *FileSystem) ReadByName(id int, name string) ([]byte, bool, error) {
	if err := fsys.checkID("read", id); err != nil {
		return nil, false, err
	}
	for _, f := range fsys.indexes[id].files {
		if strings.EqualFold(f.Header.Name, name) {
			return f.Payload, true, nil
		}
	}
	return nil, false, nil
}

// Index returns the index at position id. It panics if id is out of range.
func (fsys *FileSystem) Index(id int) *Index {
	return fsys.indexes[id]
}

// Indexes returns the indexes in order. The returned slice is a copy; the
// indexes themselves are shared with the FileSystem.
func (fsys *FileSystem) Indexes() []*Index {
	return slices.Clone(fsys.indexes)
}

// All returns an iterator over positions and indexes.
func (fsys *FileSystem) All() iter.Seq2[int, *Index] {
	return func(yield func(int, *Index) bool) {
		for i, idx := range fsys.indexes {
			if !yield(i, idx) {
				return
			}
		}
	}
}

// Len returns the number of indexes, placeholders included.
func (fsys *FileSystem) Len() int {
	return len(fsys.indexes)
}

// FileCount returns the total number of file slots across all indexes.
func (fsys *FileSystem) FileCount() int {
	n := 0
	for _, idx := range fsys.indexes {
		n += len(idx.files)
	}
	return n
}

// Close releases every index. It never fails and may be called repeatedly;
// it does not persist anything.
func (fsys *FileSystem) Close() error {
	for _, idx := range fsys.indexes {
		idx.owner = nil
	}
	clear(fsys.indexes)
	fsys.indexes = nil
	return nil
}

func (fsys *FileSystem) adopt(idx *Index) *Index {
	idx.owner = fsys
	return idx
}

func (fsys *FileSystem) checkID(op string, id int) error {
	if id < 0 || id >= len(fsys.indexes) {
		return invalidID(op, id, len(fsys.indexes))
	}
	return nil
}

func (fsys *FileSystem) renumber(start int) {
	for i := start; i < len(fsys.indexes); i++ {
		fsys.indexes[i].setID(i)
	}
}
