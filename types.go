package indexfs

import "github.com/softgate/indexfs/internal/compress"

// CompressionLevel selects the zstd encoder speed/ratio trade-off.
type CompressionLevel = compress.Level

// Compression levels, from highest ratio to fastest.
const (
	CompressionBest    = compress.LevelBest
	CompressionBetter  = compress.LevelBetter
	CompressionDefault = compress.LevelDefault
	CompressionFastest = compress.LevelFastest
)

// ParseCompressionLevel converts a level name ("best", "better", "default",
// "fastest") into a CompressionLevel.
var ParseCompressionLevel = compress.ParseLevel
