// Package compress wraps the zstd codec used to frame an entire archive
// stream. Encoders and decoders run with a concurrency of one so every
// compression pass executes synchronously on the caller's goroutine.
package compress

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// ErrStream is returned when the decoder rejects the compressed stream.
var ErrStream = errors.New("invalid compressed stream")

// Level selects the encoder speed/ratio trade-off.
type Level uint8

const (
	LevelBest Level = iota
	LevelBetter
	LevelDefault
	LevelFastest
)

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case LevelBest:
		return "best"
	case LevelBetter:
		return "better"
	case LevelDefault:
		return "default"
	case LevelFastest:
		return "fastest"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name produced by String back into a Level.
func ParseLevel(s string) (Level, error) {
	for l := LevelBest; l <= LevelFastest; l++ {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown compression level %q", s)
}

func (l Level) encoderLevel() zstd.EncoderLevel {
	switch l {
	case LevelBetter:
		return zstd.SpeedBetterCompression
	case LevelDefault:
		return zstd.SpeedDefault
	case LevelFastest:
		return zstd.SpeedFastest
	default:
		return zstd.SpeedBestCompression
	}
}

// Writer compresses everything written to it into a single zstd frame and
// tracks the byte counts on both sides of the encoder.
type Writer struct {
	enc *zstd.Encoder
	dst *sink
	in  uint64
}

// NewWriter returns a Writer that compresses into w.
// The caller must Close the Writer to flush the frame trailer.
func NewWriter(w io.Writer, level Level) (*Writer, error) {
	dst := &sink{w: w}
	enc, err := zstd.NewWriter(dst,
		zstd.WithEncoderLevel(level.encoderLevel()),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &Writer{enc: enc, dst: dst}, nil
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.enc.Write(p)
	w.in += uint64(n) //nolint:gosec // n is never negative
	return n, err
}

// Close flushes the frame. It does not close the destination.
func (w *Writer) Close() error {
	return w.enc.Close()
}

// In returns the number of uncompressed bytes accepted so far.
func (w *Writer) In() uint64 {
	return w.in
}

// Out returns the number of compressed bytes written to the destination.
// The count is final once Close has returned.
func (w *Writer) Out() uint64 {
	return w.dst.n
}

// sink counts the compressed bytes the encoder emits.
type sink struct {
	w io.Writer
	n uint64
}

func (s *sink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	s.n += uint64(n) //nolint:gosec // n is never negative
	return n, err
}

// Reader decompresses a zstd stream.
//
// Errors raised by the source reader pass through unchanged, a truncated
// stream surfaces as io.ErrUnexpectedEOF, and anything the decoder itself
// rejects is wrapped with ErrStream.
type Reader struct {
	dec *zstd.Decoder
	src *sourceReader
	out uint64
}

// NewReader returns a Reader over r.
// If maxMemory is 0, no memory limit is applied to the decoder.
func NewReader(r io.Reader, maxMemory uint64) (*Reader, error) {
	opts := []zstd.DOption{zstd.WithDecoderConcurrency(1)}
	if maxMemory > 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(maxMemory))
	}
	src := &sourceReader{r: r}
	dec, err := zstd.NewReader(src, opts...)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Reader{dec: dec, src: src}, nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.dec.Read(p)
	r.out += uint64(n) //nolint:gosec // n is never negative
	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}
	if r.src.err != nil {
		return n, r.src.err
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return n, err
	}
	return n, fmt.Errorf("%w: %w", ErrStream, err)
}

// In returns the number of compressed bytes consumed from the source. The
// decoder reads ahead, so before the end of the frame this may exceed what
// the returned output accounts for.
func (r *Reader) In() uint64 {
	return r.src.n
}

// Out returns the number of decompressed bytes returned so far.
func (r *Reader) Out() uint64 {
	return r.out
}

// Close releases the decoder. It is safe to call more than once.
func (r *Reader) Close() {
	if r.dec == nil {
		return
	}
	r.dec.Close()
	r.dec = nil
}

// sourceReader remembers the last non-EOF error returned by the source so
// source faults can be told apart from decoder faults.
type sourceReader struct {
	r   io.Reader
	n   uint64
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.n += uint64(n) //nolint:gosec // n is never negative
	if err != nil && !errors.Is(err, io.EOF) {
		s.err = err
	}
	return n, err
}
