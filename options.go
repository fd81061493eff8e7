package indexfs

import (
	"log/slog"

	"github.com/softgate/indexfs/internal/compress"
)

const (
	// DefaultMaxDecoderMemory is the default zstd decoder memory limit (256MB).
	DefaultMaxDecoderMemory = 256 << 20

	// DefaultMaxPayloadSize is the default limit on a single decoded payload (256MB).
	DefaultMaxPayloadSize = 256 << 20
)

// config holds the settings shared by New, Decode, and Inspect.
type config struct {
	logger           *slog.Logger
	level            CompressionLevel
	maxDecoderMemory uint64
	maxPayloadSize   uint64
}

func newConfig(opts []Option) config {
	cfg := config{
		level:            compress.LevelBest,
		maxDecoderMemory: DefaultMaxDecoderMemory,
		maxPayloadSize:   DefaultMaxPayloadSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a FileSystem.
type Option func(*config)

// WithLogger sets the logger used for encode and decode diagnostics.
// A nil logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithCompressionLevel sets the encoder level used by Encode (default: CompressionBest).
func WithCompressionLevel(level CompressionLevel) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithMaxDecoderMemory limits the memory used by the zstd decoder.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(c *config) {
		c.maxDecoderMemory = limit
	}
}

// WithMaxPayloadSize limits the length of any single payload accepted by Decode.
// Set limit to 0 to disable the limit.
func WithMaxPayloadSize(limit uint64) Option {
	return func(c *config) {
		c.maxPayloadSize = limit
	}
}
