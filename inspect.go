package indexfs

import (
	"bufio"
	_ "crypto/sha256" // registers the digest.Canonical hash
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"
)

// InspectResult summarizes an archive on disk.
type InspectResult struct {
	path             string
	digest           digest.Digest
	compressedSize   uint64
	uncompressedSize uint64
	indexCount       int
	fileCount        int
	payloadSize      uint64
}

// Path returns the inspected archive path.
func (r *InspectResult) Path() string {
	return r.path
}

// Digest returns the SHA-256 digest of the archive file as stored.
func (r *InspectResult) Digest() digest.Digest {
	return r.digest
}

// CompressedSize returns the size of the archive file in bytes.
func (r *InspectResult) CompressedSize() uint64 {
	return r.compressedSize
}

// UncompressedSize returns the size of the decompressed archive stream,
// record framing included.
func (r *InspectResult) UncompressedSize() uint64 {
	return r.uncompressedSize
}

// PayloadSize returns the sum of all file payload lengths.
func (r *InspectResult) PayloadSize() uint64 {
	return r.payloadSize
}

// IndexCount returns the number of indexes in the archive.
func (r *InspectResult) IndexCount() int {
	return r.indexCount
}

// FileCount returns the number of file slots across all indexes.
func (r *InspectResult) FileCount() int {
	return r.fileCount
}

// CompressionRatio returns the ratio of compressed to uncompressed size.
// Returns 1.0 for an empty stream.
func (r *InspectResult) CompressionRatio() float64 {
	if r.uncompressedSize == 0 {
		return 1.0
	}
	return float64(r.compressedSize) / float64(r.uncompressedSize)
}

// Inspect decodes the archive at path and reports its statistics.
// The decoded contents are released before Inspect returns.
func Inspect(path string, opts ...Option) (*InspectResult, error) {
	f, err := os.Open(path) //nolint:gosec // caller-supplied path is intentional
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}

	digester := digest.Canonical.Digester()
	hashed := io.TeeReader(f, digester.Hash())

	fsys, uncompressed, err := decode(bufio.NewReaderSize(hashed, 64<<10), opts)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", path, err)
	}
	defer fsys.Close()

	// Hash whatever the buffered decoder left unread.
	if _, err := io.Copy(io.Discard, hashed); err != nil {
		return nil, fmt.Errorf("inspect %s: %w", path, err)
	}

	result := &InspectResult{
		path:             path,
		digest:           digester.Digest(),
		compressedSize:   uint64(info.Size()), //nolint:gosec // file sizes are never negative
		uncompressedSize: uncompressed,
		indexCount:       fsys.Len(),
		fileCount:        fsys.FileCount(),
	}
	for _, idx := range fsys.indexes {
		for _, file := range idx.files {
			result.payloadSize += uint64(len(file.Payload))
		}
	}
	return result, nil
}
