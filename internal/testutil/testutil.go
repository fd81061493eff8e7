// Package testutil provides fixtures shared by the indexfs tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFile describes a file to place in a test index.
type TestFile struct {
	Name    string
	Payload []byte
}

// TestIndex describes an index to place in a test file system.
type TestIndex struct {
	Name  string
	Files []TestFile
}

// SampleIndexes returns a small, deterministic set of indexes with
// distinct names and payloads.
func SampleIndexes() []TestIndex {
	return []TestIndex{
		{
			Name: "settings",
			Files: []TestFile{
				{Name: "item.dat", Payload: []byte("data inside item.dat")},
				{Name: "npc.dat", Payload: []byte("data inside npc.dat")},
				{Name: "obj.dat", Payload: []byte("data inside obj.dat")},
			},
		},
		{
			Name: "model",
			Files: []TestFile{
				{Name: "0.dat", Payload: bytes.Repeat([]byte{0xAB}, 4096)},
				{Name: "1.dat", Payload: []byte{}},
				{Name: "2.dat", Payload: []byte{0}},
			},
		},
		{
			Name: "music",
			Files: []TestFile{
				{Name: "soundtrack.midi", Payload: []byte{0}},
				{Name: "login_music.midi", Payload: []byte{0}},
			},
		},
		{
			Name: "empty",
		},
	}
}

// WriteFile writes data to name inside dir and returns the full path.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(path, data, 0o600), "write %s", name)
	return path
}

// NumberedPayloads returns n payloads whose contents identify their position.
func NumberedPayloads(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = fmt.Appendf(nil, "payload-%03d", i)
	}
	return out
}
