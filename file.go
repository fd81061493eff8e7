package indexfs

import "bytes"

// TombstoneName is the name given to a slot emptied by a non-trailing remove
// and to the placeholder indexes created when gaps are back-filled.
const TombstoneName = "empty"

// FileHeader identifies a file within its index.
type FileHeader struct {
	// ID is the file's slot address within its index.
	ID int

	// Name is the file name. Lookups by name ignore case.
	Name string
}

// File is a single stored entry: a header plus its raw payload.
type File struct {
	Header  FileHeader
	Payload []byte
}

// NewFile returns a file with the given header fields and payload.
// The payload is retained, not copied.
func NewFile(id int, name string, payload []byte) *File {
	return &File{
		Header:  FileHeader{ID: id, Name: name},
		Payload: payload,
	}
}

// ReplacePayload overwrites the payload unconditionally.
func (f *File) ReplacePayload(payload []byte) {
	f.Payload = payload
}

// Copy returns a deep copy of f; the copy shares no memory with the original.
func (f *File) Copy() *File {
	return &File{
		Header:  f.Header,
		Payload: bytes.Clone(f.Payload),
	}
}

// IsTombstone reports whether f is the empty placeholder left behind by a
// non-trailing remove.
func (f *File) IsTombstone() bool {
	return f.Header.Name == TombstoneName && len(f.Payload) == 0
}

func tombstone(id int) *File {
	return &File{
		Header:  FileHeader{ID: id, Name: TombstoneName},
		Payload: []byte{},
	}
}
