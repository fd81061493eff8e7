// Package wire implements the primitive encodings of the archive stream.
//
// Every multi-byte integer is big-endian. Strings are UTF-8 bytes preceded by
// an unsigned 16-bit length, so a single name is limited to 65535 bytes.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// ByteOrder is the byte order of every multi-byte integer in the stream.
var ByteOrder = binary.BigEndian

// MaxStringLen is the longest string, in bytes, the length prefix can describe.
const MaxStringLen = math.MaxUint16

// Sentinel errors for malformed values.
var (
	// ErrStringTooLong is returned when a string does not fit its length prefix.
	ErrStringTooLong = errors.New("string exceeds length prefix")

	// ErrInvalidUTF8 is returned when a decoded string is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid utf-8 string")

	// ErrNegativeLength is returned when a decoded count or length is negative.
	ErrNegativeLength = errors.New("negative length")

	// ErrLengthLimit is returned when a decoded length exceeds the caller's limit.
	ErrLengthLimit = errors.New("length exceeds limit")

	// ErrTrailingData is returned by ReadEnd when bytes follow the last record.
	ErrTrailingData = errors.New("trailing data after last record")
)

// Writer encodes primitives onto an underlying writer.
type Writer struct {
	w   io.Writer
	buf [4]byte
}

// NewWriter returns a Writer that encodes onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// PutUint8 writes a single byte.
func (w *Writer) PutUint8(v uint8) error {
	w.buf[0] = v
	_, err := w.w.Write(w.buf[:1])
	return err
}

// PutInt32 writes a 4-byte signed integer.
func (w *Writer) PutInt32(v int32) error {
	ByteOrder.PutUint32(w.buf[:4], uint32(v)) //nolint:gosec // two's complement round trip
	_, err := w.w.Write(w.buf[:4])
	return err
}

// PutString writes s with its 2-byte length prefix.
func (w *Writer) PutString(s string) error {
	if len(s) > MaxStringLen {
		return fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
	}
	if !utf8.ValidString(s) {
		return ErrInvalidUTF8
	}
	ByteOrder.PutUint16(w.buf[:2], uint16(len(s))) //nolint:gosec // bounded above
	if _, err := w.w.Write(w.buf[:2]); err != nil {
		return err
	}
	_, err := io.WriteString(w.w, s)
	return err
}

// PutBytes writes p verbatim, without a length prefix.
func (w *Writer) PutBytes(p []byte) error {
	_, err := w.w.Write(p)
	return err
}

// Reader decodes primitives from an underlying reader.
//
// Short reads surface as io.EOF (nothing read) or io.ErrUnexpectedEOF.
type Reader struct {
	r   io.Reader
	buf [4]byte
}

// NewReader returns a Reader that decodes from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	if _, err := io.ReadFull(r.r, r.buf[:1]); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

// ReadInt32 reads a 4-byte signed integer.
func (r *Reader) ReadInt32() (int32, error) {
	if _, err := io.ReadFull(r.r, r.buf[:4]); err != nil {
		return 0, err
	}
	return int32(ByteOrder.Uint32(r.buf[:4])), nil //nolint:gosec // two's complement round trip
}

// ReadCount reads a 4-byte signed integer and rejects negative values.
func (r *Reader) ReadCount() (int, error) {
	v, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeLength, v)
	}
	return int(v), nil
}

// ReadString reads a length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	if _, err := io.ReadFull(r.r, r.buf[:2]); err != nil {
		return "", err
	}
	n := ByteOrder.Uint16(r.buf[:2])
	if n == 0 {
		return "", nil
	}
	p := make([]byte, n)
	if _, err := io.ReadFull(r.r, p); err != nil {
		return "", noEOF(err)
	}
	if !utf8.Valid(p) {
		return "", ErrInvalidUTF8
	}
	return string(p), nil
}

// ReadPayload reads a 4-byte length followed by that many bytes.
// A limit of 0 disables the length check.
func (r *Reader) ReadPayload(limit uint64) ([]byte, error) {
	n, err := r.ReadCount()
	if err != nil {
		return nil, err
	}
	if limit > 0 && uint64(n) > limit {
		return nil, fmt.Errorf("%w: %d > %d", ErrLengthLimit, n, limit)
	}
	p := make([]byte, n)
	if _, err := io.ReadFull(r.r, p); err != nil {
		return nil, noEOF(err)
	}
	return p, nil
}

// ReadEnd succeeds only if the underlying reader is exhausted.
func (r *Reader) ReadEnd() error {
	n, err := io.ReadFull(r.r, r.buf[:1])
	if n > 0 {
		return ErrTrailingData
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// noEOF converts io.EOF into io.ErrUnexpectedEOF for reads that follow a
// length prefix, where the body is never allowed to be missing.
func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
