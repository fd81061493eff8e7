package indexfs

import (
	"errors"
	"fmt"
	"io"

	"github.com/softgate/indexfs/internal/compress"
	"github.com/softgate/indexfs/internal/wire"
)

// Sentinel errors for container and codec operations.
var (
	// ErrInvalidID is returned, wrapped in a *ValidationError, when an id is
	// negative or outside the range of the sequence it addresses.
	ErrInvalidID = errors.New("indexfs: invalid id")

	// ErrIDOverflow is returned when an index id does not fit the one-byte
	// field of the archive format.
	ErrIDOverflow = errors.New("indexfs: index id overflow")

	// ErrIndexOwned is returned when adding an index that already belongs to
	// a FileSystem. Remove it first, or add a Copy.
	ErrIndexOwned = errors.New("indexfs: index already added to a file system")

	// ErrPayloadTooLarge is returned when a payload exceeds the int32 length
	// field or the configured decode limit.
	ErrPayloadTooLarge = errors.New("indexfs: payload too large")

	// ErrCorrupt is returned when an archive stream cannot be decoded
	// structurally (truncation, negative counts, malformed strings, or bytes
	// left over after the last record).
	ErrCorrupt = errors.New("indexfs: corrupt archive")

	// ErrDecompression is returned when the compressed stream is rejected.
	ErrDecompression = errors.New("indexfs: decompression failed")
)

// Errors re-exported from internal/wire.
var (
	// ErrStringTooLong is returned when a name does not fit its length prefix.
	ErrStringTooLong = wire.ErrStringTooLong
)

// ValidationError reports an id argument rejected before any state changed.
type ValidationError struct {
	// Op is the operation that rejected the id, e.g. "remove".
	Op string

	// ID is the offending id.
	ID int

	// Len is the length of the addressed sequence at the time of the call.
	Len int
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.ID < 0 {
		return fmt.Sprintf("indexfs: %s: id=%d cannot be negative", e.Op, e.ID)
	}
	return fmt.Sprintf("indexfs: %s: id=%d out of range [0, %d)", e.Op, e.ID, e.Len)
}

// Unwrap returns ErrInvalidID so callers can match with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidID
}

func invalidID(op string, id, n int) error {
	return &ValidationError{Op: op, ID: id, Len: n}
}

// decodeErr classifies a failure raised while reading the archive stream.
func decodeErr(what string, err error) error {
	switch {
	case errors.Is(err, compress.ErrStream):
		return fmt.Errorf("%w: %s: %w", ErrDecompression, what, err)
	case errors.Is(err, wire.ErrLengthLimit):
		return fmt.Errorf("%w: %s: %w", ErrPayloadTooLarge, what, err)
	case isStructural(err):
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, what, err)
	default:
		return fmt.Errorf("read %s: %w", what, err)
	}
}

func isStructural(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, wire.ErrNegativeLength) ||
		errors.Is(err, wire.ErrInvalidUTF8) ||
		errors.Is(err, wire.ErrTrailingData)
}
