package indexfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCopy_IsDeep(t *testing.T) {
	t.Parallel()

	orig := NewFile(3, "npc.dat", []byte("abc"))
	cp := orig.Copy()

	require.Equal(t, orig.Header, cp.Header)
	require.Equal(t, orig.Payload, cp.Payload)

	cp.Payload[0] = 'z'
	cp.Header.Name = "renamed.dat"
	cp.Header.ID = 9

	assert.Equal(t, []byte("abc"), orig.Payload)
	assert.Equal(t, FileHeader{ID: 3, Name: "npc.dat"}, orig.Header)
}

func TestFileReplacePayload(t *testing.T) {
	t.Parallel()

	f := NewFile(0, "item.dat", []byte("old"))
	f.ReplacePayload([]byte("new"))
	assert.Equal(t, []byte("new"), f.Payload)

	f.ReplacePayload(nil)
	assert.Empty(t, f.Payload)
}

func TestFileIsTombstone(t *testing.T) {
	t.Parallel()

	assert.True(t, tombstone(4).IsTombstone())
	assert.False(t, NewFile(0, TombstoneName, []byte{0}).IsTombstone(), "reserved placeholder is not a tombstone")
	assert.False(t, NewFile(0, "item.dat", nil).IsTombstone())
}
