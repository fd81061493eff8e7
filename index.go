package indexfs

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// placeholderPayload is stored by Reserve and ReserveAt. It marks a slot as
// reserved, which a zero-length tombstone does not.
var placeholderPayload = []byte{0}

// Index is an ordered, slot-addressable collection of files.
//
// A file's position in the index is its canonical id. Removing a file that is
// not in the last slot leaves a tombstone behind so later files keep their
// ids; removing the last file shrinks the index.
//
// Index is not safe for concurrent use.
type Index struct {
	id    int
	name  string
	files []*File

	// owner is the FileSystem holding this index, or nil.
	owner *FileSystem
}

// NewIndex returns an index named "index<id>" holding files in order.
func NewIndex(id int, files ...*File) *Index {
	return NewNamedIndex(id, "index"+strconv.Itoa(id), files...)
}

// NewNamedIndex returns an index with the given name holding files in order.
func NewNamedIndex(id int, name string, files ...*File) *Index {
	return &Index{
		id:    id,
		name:  name,
		files: slices.Clone(files),
	}
}

// ID returns the index id, which equals its position in the owning FileSystem.
func (idx *Index) ID() int {
	return idx.id
}

// Name returns the index name.
func (idx *Index) Name() string {
	return idx.name
}

// SetName renames the index.
func (idx *Index) SetName(name string) {
	idx.name = name
}

func (idx *Index) setID(id int) {
	idx.id = id
}

// Len returns the number of slots, tombstones included.
func (idx *Index) Len() int {
	return len(idx.files)
}

// Files returns the files in slot order. The returned slice is a copy; the
// files themselves are shared with the index.
func (idx *Index) Files() []*File {
	return slices.Clone(idx.files)
}

// All returns an iterator over slot positions and files.
func (idx *Index) All() iter.Seq2[int, *File] {
	return func(yield func(int, *File) bool) {
		for i, f := range idx.files {
			if !yield(i, f) {
				return
			}
		}
	}
}

// Add appends a file at the next free slot and returns idx for chaining.
func (idx *Index) Add(name string, payload []byte) *Index {
	idx.files = append(idx.files, NewFile(len(idx.files), name, payload))
	return idx
}

// Reserve appends a file holding a one-byte placeholder payload.
func (idx *Index) Reserve(name string) *Index {
	return idx.Add(name, slices.Clone(placeholderPayload))
}

// AddAt inserts a file at slot id.
//
// Files at and after id move up one slot and are renumbered. If id is past
// the end, the gap is filled with tombstones first. When the index is empty
// the file always lands in slot 0, whatever id was requested.
func (idx *Index) AddAt(id int, name string, payload []byte) error {
	if id < 0 {
		return invalidID("add", id, len(idx.files))
	}

	if len(idx.files) == 0 {
		idx.files = append(idx.files, NewFile(0, name, payload))
		return nil
	}

	for i := len(idx.files); i < id; i++ {
		idx.files = append(idx.files, tombstone(i))
	}

	idx.files = slices.Insert(idx.files, id, NewFile(id, name, payload))
	idx.renumber(id + 1)
	return nil
}

// ReserveAt inserts a file holding a one-byte placeholder payload at slot id.
func (idx *Index) ReserveAt(id int, name string) error {
	return idx.AddAt(id, name, slices.Clone(placeholderPayload))
}

// AddFile reads the file at path into memory and appends it under its base name.
func (idx *Index) AddFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // caller-supplied path is intentional
	if err != nil {
		return fmt.Errorf("add file: %w", err)
	}
	idx.Add(filepath.Base(path), data)
	return nil
}

// Remove removes the file with the given id.
//
// A file in the last slot is dropped and the index shrinks. Any other file is
// replaced by a tombstone so the ids of later files do not change. Removing
// an id that is not present is a no-op.
func (idx *Index) Remove(id int) error {
	if id < 0 {
		return invalidID("remove", id, len(idx.files))
	}

	pos := idx.position(id)
	if pos < 0 {
		return nil
	}

	if pos == len(idx.files)-1 {
		idx.files = slices.Delete(idx.files, pos, pos+1)
		return nil
	}

	idx.files[pos] = tombstone(id)
	return nil
}

// RemoveByName removes the first file whose name matches, ignoring case.
// It is a no-op if nothing matches.
func (idx *Index) RemoveByName(name string) error {
	f, ok := idx.FileByName(name)
	if !ok {
		return nil
	}
	return idx.Remove(f.Header.ID)
}

// Replace overwrites the payload of the file with the given id.
// It reports whether a file was found.
func (idx *Index) Replace(id int, payload []byte) bool {
	f, ok := idx.File(id)
	if !ok {
		return false
	}
	f.ReplacePayload(payload)
	return true
}

// ReplaceByName overwrites the payload of the first file whose name matches,
// ignoring case. It reports whether a file was found.
func (idx *Index) ReplaceByName(name string, payload []byte) bool {
	f, ok := idx.FileByName(name)
	if !ok {
		return false
	}
	f.ReplacePayload(payload)
	return true
}

// ReplaceFromFile reads the file at path and stores its contents and base
// name in the file with the given id. The source is read even when no file
// matches, so I/O errors are always reported.
func (idx *Index) ReplaceFromFile(id int, path string) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // caller-supplied path is intentional
	if err != nil {
		return false, fmt.Errorf("replace file: %w", err)
	}
	f, ok := idx.File(id)
	if !ok {
		return false, nil
	}
	f.Header.Name = filepath.Base(path)
	f.ReplacePayload(data)
	return true, nil
}

// ReplaceByNameFromFile is like ReplaceFromFile but matches by name, ignoring case.
func (idx *Index) ReplaceByNameFromFile(name, path string) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // caller-supplied path is intentional
	if err != nil {
		return false, fmt.Errorf("replace file: %w", err)
	}
	f, ok := idx.FileByName(name)
	if !ok {
		return false, nil
	}
	f.Header.Name = filepath.Base(path)
	f.ReplacePayload(data)
	return true, nil
}

// File returns the file with the given id.
func (idx *Index) File(id int) (*File, bool) {
	pos := idx.position(id)
	if pos < 0 {
		return nil, false
	}
	return idx.files[pos], true
}

// FileByName returns the first file whose name matches, ignoring case.
func (idx *Index) FileByName(name string) (*File, bool) {
	for _, f := range idx.files {
		if strings.EqualFold(f.Header.Name, name) {
			return f, true
		}
	}
	return nil, false
}

// Copy returns a deep copy of idx with the same id, name, and files.
func (idx *Index) Copy() *Index {
	files := make([]*File, len(idx.files))
	for i, f := range idx.files {
		files[i] = f.Copy()
	}
	return &Index{id: idx.id, name: idx.name, files: files}
}

// position returns the slot holding the file with the given header id, or -1.
func (idx *Index) position(id int) int {
	if id >= 0 && id < len(idx.files) && idx.files[id].Header.ID == id {
		return id
	}
	return slices.IndexFunc(idx.files, func(f *File) bool {
		return f.Header.ID == id
	})
}

func (idx *Index) renumber(start int) {
	for i := start; i < len(idx.files); i++ {
		idx.files[i].Header.ID = i
	}
}
