package indexfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softgate/indexfs/internal/testutil"
)

// fileNames returns the file names of idx in slot order.
func fileNames(idx *Index) []string {
	names := make([]string, 0, idx.Len())
	for _, f := range idx.All() {
		names = append(names, f.Header.Name)
	}
	return names
}

// fileIDs returns the file header ids of idx in slot order.
func fileIDs(idx *Index) []int {
	ids := make([]int, 0, idx.Len())
	for _, f := range idx.All() {
		ids = append(ids, f.Header.ID)
	}
	return ids
}

func threeFileIndex() *Index {
	return NewNamedIndex(0, "settings").
		Add("f0", []byte("zero")).
		Add("f1", []byte("one")).
		Add("f2", []byte("two"))
}

func TestNewIndex(t *testing.T) {
	t.Parallel()

	t.Run("default name", func(t *testing.T) {
		t.Parallel()
		idx := NewIndex(7)
		assert.Equal(t, 7, idx.ID())
		assert.Equal(t, "index7", idx.Name())
		assert.Equal(t, 0, idx.Len())
	})

	t.Run("named with files", func(t *testing.T) {
		t.Parallel()
		files := []*File{NewFile(0, "a", []byte("a")), NewFile(1, "b", []byte("b"))}
		idx := NewNamedIndex(2, "model", files...)
		assert.Equal(t, "model", idx.Name())
		assert.Equal(t, []string{"a", "b"}, fileNames(idx))

		// The index owns its own slot slice.
		files[0] = NewFile(0, "swapped", nil)
		assert.Equal(t, []string{"a", "b"}, fileNames(idx))
	})

	t.Run("rename", func(t *testing.T) {
		t.Parallel()
		idx := NewIndex(1)
		idx.SetName("sprites")
		assert.Equal(t, "sprites", idx.Name())
	})
}

func TestIndexAdd(t *testing.T) {
	t.Parallel()

	idx := threeFileIndex()
	assert.Equal(t, []string{"f0", "f1", "f2"}, fileNames(idx))
	assert.Equal(t, []int{0, 1, 2}, fileIDs(idx))

	f, ok := idx.File(1)
	require.True(t, ok)
	assert.Equal(t, []byte("one"), f.Payload)
}

func TestIndexReserve(t *testing.T) {
	t.Parallel()

	idx := NewIndex(3).Reserve("soundtrack.midi").Reserve("login_music.midi")
	require.Equal(t, 2, idx.Len())
	for _, f := range idx.All() {
		assert.Equal(t, []byte{0}, f.Payload, "reserved file holds a one-byte placeholder")
		assert.False(t, f.IsTombstone())
	}

	// Placeholders must not alias each other.
	idx.Files()[0].Payload[0] = 9
	assert.Equal(t, []byte{0}, idx.Files()[1].Payload)
}

func TestIndexAddAt(t *testing.T) {
	t.Parallel()

	t.Run("sequential ids append", func(t *testing.T) {
		t.Parallel()
		idx := NewIndex(1)
		require.NoError(t, idx.ReserveAt(0, "0.dat"))
		require.NoError(t, idx.ReserveAt(1, "1.dat"))
		require.NoError(t, idx.ReserveAt(2, "2.dat"))
		assert.Equal(t, []string{"0.dat", "1.dat", "2.dat"}, fileNames(idx))
		assert.Equal(t, []int{0, 1, 2}, fileIDs(idx))
	})

	t.Run("empty index forces slot zero", func(t *testing.T) {
		t.Parallel()
		idx := NewIndex(1)
		require.NoError(t, idx.AddAt(5, "first.dat", []byte("x")))
		require.Equal(t, 1, idx.Len())
		f, ok := idx.File(0)
		require.True(t, ok)
		assert.Equal(t, "first.dat", f.Header.Name)
	})

	t.Run("insert in middle renumbers later files", func(t *testing.T) {
		t.Parallel()
		idx := threeFileIndex()
		require.NoError(t, idx.AddAt(1, "new", []byte("new")))
		assert.Equal(t, []string{"f0", "new", "f1", "f2"}, fileNames(idx))
		assert.Equal(t, []int{0, 1, 2, 3}, fileIDs(idx))
	})

	t.Run("past the end fills gap with tombstones", func(t *testing.T) {
		t.Parallel()
		idx := threeFileIndex()
		require.NoError(t, idx.AddAt(5, "f5", []byte("five")))
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, fileIDs(idx))
		for _, id := range []int{3, 4} {
			f, ok := idx.File(id)
			require.True(t, ok)
			assert.True(t, f.IsTombstone(), "slot %d should be a tombstone", id)
		}
	})

	t.Run("negative id", func(t *testing.T) {
		t.Parallel()
		idx := threeFileIndex()
		err := idx.AddAt(-1, "bad", nil)
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.ErrorIs(t, err, ErrInvalidID)
		assert.Equal(t, 3, idx.Len())
	})
}

func TestIndexAddFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "sprites.dat", []byte("sprite data"))

	idx := NewNamedIndex(6, "sprites")
	require.NoError(t, idx.AddFile(path))

	f, ok := idx.FileByName("sprites.dat")
	require.True(t, ok)
	assert.Equal(t, 0, f.Header.ID)
	assert.Equal(t, []byte("sprite data"), f.Payload)

	err := idx.AddFile(filepath.Join(dir, "missing.dat"))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 1, idx.Len())
}

func TestIndexRemove(t *testing.T) {
	t.Parallel()

	t.Run("first slot leaves tombstone", func(t *testing.T) {
		t.Parallel()
		idx := threeFileIndex()
		require.NoError(t, idx.Remove(0))

		require.Equal(t, 3, idx.Len())
		f0, _ := idx.File(0)
		assert.True(t, f0.IsTombstone())
		assert.Equal(t, TombstoneName, f0.Header.Name)
		assert.Empty(t, f0.Payload)

		f1, _ := idx.File(1)
		f2, _ := idx.File(2)
		assert.Equal(t, FileHeader{ID: 1, Name: "f1"}, f1.Header)
		assert.Equal(t, []byte("one"), f1.Payload)
		assert.Equal(t, FileHeader{ID: 2, Name: "f2"}, f2.Header)
		assert.Equal(t, []byte("two"), f2.Payload)
	})

	t.Run("last slot shrinks", func(t *testing.T) {
		t.Parallel()
		idx := threeFileIndex()
		require.NoError(t, idx.Remove(2))
		assert.Equal(t, []string{"f0", "f1"}, fileNames(idx))
	})

	t.Run("missing id is a no-op", func(t *testing.T) {
		t.Parallel()
		idx := threeFileIndex()
		require.NoError(t, idx.Remove(10))
		assert.Equal(t, []string{"f0", "f1", "f2"}, fileNames(idx))
	})

	t.Run("negative id fails without mutation", func(t *testing.T) {
		t.Parallel()
		idx := threeFileIndex()
		err := idx.Remove(-1)
		require.ErrorIs(t, err, ErrInvalidID)
		assert.Equal(t, []string{"f0", "f1", "f2"}, fileNames(idx))
	})

	t.Run("by name ignores case", func(t *testing.T) {
		t.Parallel()
		idx := threeFileIndex()
		require.NoError(t, idx.RemoveByName("F1"))
		assert.Equal(t, []string{"f0", TombstoneName, "f2"}, fileNames(idx))

		require.NoError(t, idx.RemoveByName("f2"))
		assert.Equal(t, []string{"f0", TombstoneName}, fileNames(idx))

		require.NoError(t, idx.RemoveByName("nope"))
		assert.Equal(t, 2, idx.Len())
	})
}

func TestIndexReplace(t *testing.T) {
	t.Parallel()

	t.Run("by id", func(t *testing.T) {
		t.Parallel()
		idx := threeFileIndex()
		assert.True(t, idx.Replace(1, []byte("uno")))
		f, _ := idx.File(1)
		assert.Equal(t, []byte("uno"), f.Payload)
		assert.Equal(t, "f1", f.Header.Name)

		assert.False(t, idx.Replace(9, []byte("x")))
	})

	t.Run("by name", func(t *testing.T) {
		t.Parallel()
		idx := threeFileIndex()
		assert.True(t, idx.ReplaceByName("F2", []byte("dos")))
		f, _ := idx.File(2)
		assert.Equal(t, []byte("dos"), f.Payload)

		assert.False(t, idx.ReplaceByName("missing", []byte("x")))
	})

	t.Run("from file renames", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := testutil.WriteFile(t, dir, "replacement.dat", []byte("fresh"))

		idx := threeFileIndex()
		ok, err := idx.ReplaceFromFile(0, path)
		require.NoError(t, err)
		require.True(t, ok)

		f, _ := idx.File(0)
		assert.Equal(t, FileHeader{ID: 0, Name: "replacement.dat"}, f.Header)
		assert.Equal(t, []byte("fresh"), f.Payload)

		ok, err = idx.ReplaceByNameFromFile("f2", path)
		require.NoError(t, err)
		require.True(t, ok)
		f, _ = idx.File(2)
		assert.Equal(t, "replacement.dat", f.Header.Name)

		ok, err = idx.ReplaceFromFile(42, path)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("from missing file", func(t *testing.T) {
		t.Parallel()
		idx := threeFileIndex()
		missing := filepath.Join(t.TempDir(), "missing.dat")

		_, err := idx.ReplaceFromFile(0, missing)
		require.ErrorIs(t, err, os.ErrNotExist)
		_, err = idx.ReplaceByNameFromFile("f0", missing)
		require.ErrorIs(t, err, os.ErrNotExist)

		f, _ := idx.File(0)
		assert.Equal(t, []byte("zero"), f.Payload)
	})
}

func TestIndexFileLookup(t *testing.T) {
	t.Parallel()

	idx := NewNamedIndex(0, "settings").
		Add("item.dat", []byte("items")).
		Add("NPC.DAT", []byte("npcs"))

	upper, ok := idx.FileByName("NPC.DAT")
	require.True(t, ok)
	lower, ok := idx.FileByName("npc.dat")
	require.True(t, ok)
	assert.Same(t, upper, lower)

	_, ok = idx.FileByName("obj.dat")
	assert.False(t, ok)

	_, ok = idx.File(-1)
	assert.False(t, ok)
	_, ok = idx.File(2)
	assert.False(t, ok)
}

func TestIndexFileLookup_MisalignedIDs(t *testing.T) {
	t.Parallel()

	idx := NewNamedIndex(0, "legacy", NewFile(10, "a", nil), NewFile(20, "b", nil))
	f, ok := idx.File(20)
	require.True(t, ok)
	assert.Equal(t, "b", f.Header.Name)

	require.NoError(t, idx.Remove(10))
	assert.Equal(t, []string{TombstoneName, "b"}, fileNames(idx))
	require.NoError(t, idx.Remove(20))
	assert.Equal(t, []string{TombstoneName}, fileNames(idx))
}

func TestIndexCopy_IsDeep(t *testing.T) {
	t.Parallel()

	orig := threeFileIndex()
	cp := orig.Copy()

	assert.Equal(t, orig.ID(), cp.ID())
	assert.Equal(t, orig.Name(), cp.Name())
	assert.Equal(t, fileNames(orig), fileNames(cp))

	cp.Replace(0, []byte("changed"))
	cp.Files()[1].Payload[0] = 'X'
	cp.Add("f3", nil)

	f0, _ := orig.File(0)
	f1, _ := orig.File(1)
	assert.Equal(t, []byte("zero"), f0.Payload)
	assert.Equal(t, []byte("one"), f1.Payload)
	assert.Equal(t, 3, orig.Len())
}

func TestIndexFiles_ReturnsCopy(t *testing.T) {
	t.Parallel()

	idx := threeFileIndex()
	files := idx.Files()
	files[0] = nil

	assert.Equal(t, []string{"f0", "f1", "f2"}, fileNames(idx))
}

func TestIndexAll_StopsEarly(t *testing.T) {
	t.Parallel()

	idx := threeFileIndex()
	seen := 0
	for range idx.All() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}
