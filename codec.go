package indexfs

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/softgate/indexfs/internal/atomicfile"
	"github.com/softgate/indexfs/internal/compress"
	"github.com/softgate/indexfs/internal/wire"
)

// Archive layout. The whole stream, count included, is a single zstd frame;
// integers are big-endian and strings carry a uint16 byte-length prefix.
//
//	archive := indexCount:int32 IndexRecord*
//	IndexRecord := id:uint8 name:string fileCount:int32 FileRecord*
//	FileRecord := fileID:int32 name:string payloadLength:int32 payload

// Encode writes the file system to path as a compressed archive.
//
// The archive is written to a temp file next to path and renamed into place,
// so a failed Encode leaves any existing file at path unchanged.
func (fsys *FileSystem) Encode(path string) error {
	fsys.log().Info("encoding archive", "path", path, "indexes", len(fsys.indexes), "level", fsys.cfg.level.String())
	if err := atomicfile.Write(path, fsys.EncodeTo); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// EncodeTo writes the file system to w as a compressed archive.
func (fsys *FileSystem) EncodeTo(w io.Writer) error {
	enc, err := compress.NewWriter(w, fsys.cfg.level)
	if err != nil {
		return err
	}

	if err := fsys.encodeStream(wire.NewWriter(enc)); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close zstd encoder: %w", err)
	}

	fsys.log().Info("archive encoded",
		"indexes", len(fsys.indexes),
		"files", fsys.FileCount(),
		"uncompressed_size", enc.In(),
		"compressed_size", enc.Out(),
	)
	return nil
}

func (fsys *FileSystem) encodeStream(w *wire.Writer) error {
	if err := w.PutInt32(int32(len(fsys.indexes))); err != nil { //nolint:gosec // bounded by MaxIndexes
		return fmt.Errorf("write index count: %w", err)
	}

	for _, idx := range fsys.indexes {
		if idx.id < 0 || idx.id > math.MaxUint8 {
			return fmt.Errorf("%w: index id=%d", ErrIDOverflow, idx.id)
		}
		if len(idx.files) > math.MaxInt32 {
			return fmt.Errorf("%w: index %d holds %d files", ErrIDOverflow, idx.id, len(idx.files))
		}

		if err := w.PutUint8(uint8(idx.id)); err != nil {
			return fmt.Errorf("write index %d: %w", idx.id, err)
		}
		if err := w.PutString(idx.name); err != nil {
			return fmt.Errorf("write index %d name: %w", idx.id, err)
		}
		if err := w.PutInt32(int32(len(idx.files))); err != nil {
			return fmt.Errorf("write index %d file count: %w", idx.id, err)
		}

		for _, f := range idx.files {
			if err := putFile(w, f); err != nil {
				return fmt.Errorf("write index %d: %w", idx.id, err)
			}
		}

		fsys.log().Debug("index encoded", "id", idx.id, "name", idx.name, "files", len(idx.files))
	}
	return nil
}

func putFile(w *wire.Writer, f *File) error {
	id := f.Header.ID
	if id < math.MinInt32 || id > math.MaxInt32 {
		return fmt.Errorf("%w: file id=%d", ErrIDOverflow, id)
	}
	if len(f.Payload) > math.MaxInt32 {
		return fmt.Errorf("%w: file %d is %d bytes", ErrPayloadTooLarge, id, len(f.Payload))
	}

	if err := w.PutInt32(int32(id)); err != nil {
		return fmt.Errorf("write file %d: %w", id, err)
	}
	if err := w.PutString(f.Header.Name); err != nil {
		return fmt.Errorf("write file %d name: %w", id, err)
	}
	if err := w.PutInt32(int32(len(f.Payload))); err != nil {
		return fmt.Errorf("write file %d length: %w", id, err)
	}
	if err := w.PutBytes(f.Payload); err != nil {
		return fmt.Errorf("write file %d payload: %w", id, err)
	}
	return nil
}

// Decode reads the archive at path into a new FileSystem.
//
// Index and file ids are taken from the archive verbatim. On failure the
// returned error is non-nil and no FileSystem is returned.
func Decode(path string, opts ...Option) (*FileSystem, error) {
	f, err := os.Open(path) //nolint:gosec // caller-supplied path is intentional
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	defer f.Close()

	fsys, _, err := decode(bufio.NewReaderSize(f, 64<<10), opts)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return fsys, nil
}

// DecodeFrom reads a compressed archive from r into a new FileSystem.
func DecodeFrom(r io.Reader, opts ...Option) (*FileSystem, error) {
	fsys, _, err := decode(r, opts)
	return fsys, err
}

// decode returns the decoded file system and the number of uncompressed bytes
// consumed from the stream.
func decode(r io.Reader, opts []Option) (*FileSystem, uint64, error) {
	fsys := New(opts...)

	zr, err := compress.NewReader(r, fsys.cfg.maxDecoderMemory)
	if err != nil {
		return nil, 0, err
	}
	defer zr.Close()

	if err := fsys.decodeStream(wire.NewReader(zr)); err != nil {
		fsys.Close()
		return nil, 0, err
	}

	fsys.log().Info("archive decoded",
		"indexes", len(fsys.indexes),
		"files", fsys.FileCount(),
		"uncompressed_size", zr.Out(),
	)
	return fsys, zr.Out(), nil
}

func (fsys *FileSystem) decodeStream(r *wire.Reader) error {
	count, err := r.ReadCount()
	if err != nil {
		return decodeErr("index count", err)
	}

	fsys.indexes = make([]*Index, 0, min(count, MaxIndexes))
	for i := range count {
		idx, err := fsys.decodeIndex(r, i)
		if err != nil {
			return err
		}
		fsys.indexes = append(fsys.indexes, fsys.adopt(idx))
		fsys.log().Debug("index decoded", "id", idx.id, "name", idx.name, "files", len(idx.files))
	}
	if err := r.ReadEnd(); err != nil {
		return decodeErr("end of archive", err)
	}
	return nil
}

func (fsys *FileSystem) decodeIndex(r *wire.Reader, pos int) (*Index, error) {
	id, err := r.ReadUint8()
	if err != nil {
		return nil, decodeErr(fmt.Sprintf("index record %d", pos), err)
	}
	name, err := r.ReadString()
	if err != nil {
		return nil, decodeErr(fmt.Sprintf("index %d name", id), err)
	}
	count, err := r.ReadCount()
	if err != nil {
		return nil, decodeErr(fmt.Sprintf("index %d file count", id), err)
	}

	idx := NewNamedIndex(int(id), name)
	idx.files = make([]*File, 0, min(count, 1024))
	for j := range count {
		fileID, err := r.ReadInt32()
		if err != nil {
			return nil, decodeErr(fmt.Sprintf("index %d file record %d", id, j), err)
		}
		fileName, err := r.ReadString()
		if err != nil {
			return nil, decodeErr(fmt.Sprintf("index %d file %d name", id, fileID), err)
		}
		payload, err := r.ReadPayload(fsys.cfg.maxPayloadSize)
		if err != nil {
			return nil, decodeErr(fmt.Sprintf("index %d file %d payload", id, fileID), err)
		}
		idx.files = append(idx.files, NewFile(int(fileID), fileName, payload))
	}
	return idx, nil
}
