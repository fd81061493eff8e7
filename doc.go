// Package indexfs provides a two-level, slot-addressable virtual file system
// that is stored as a single compressed archive.
//
// A [FileSystem] holds an ordered list of [Index] values and each Index holds
// an ordered list of [File] values. At both levels an element's position is
// its id: the FileSystem renumbers indexes when one is inserted or removed,
// and an Index leaves a tombstone behind when a file other than the last one
// is removed so later files keep their ids.
//
// # Quick Start
//
// Build and persist an archive:
//
//	fsys := indexfs.New()
//	defer fsys.Close()
//
//	settings, err := fsys.Add(indexfs.NewNamedIndex(0, "settings"))
//	if err != nil {
//	    return err
//	}
//	settings.Add("item.dat", itemData).Add("npc.dat", npcData)
//
//	if err := fsys.Encode("cache.dat"); err != nil {
//	    return err
//	}
//
// Read it back:
//
//	fsys, err := indexfs.Decode("cache.dat")
//	if err != nil {
//	    return err
//	}
//	defer fsys.Close()
//
//	data, ok, err := fsys.ReadByName(0, "npc.dat")
//
// # Archive Format
//
// The entire archive is one zstd stream. Decompressed, it is an int32 index
// count followed by one record per index: a one-byte id, a name, an int32
// file count, and per file an int32 id, a name, an int32 payload length and
// the payload. Integers are big-endian and names are UTF-8 with a uint16
// length prefix. There is no magic number or version field.
//
// Neither FileSystem nor Index is safe for concurrent use.
package indexfs
