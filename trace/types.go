package trace

import "github.com/segalloc/segalloc/codec"

// Kind identifies the type of a trace entry.
type Kind uint8

const (
	// KindAllocate records an allocation query and its outcome.
	KindAllocate Kind = iota + 1
	// KindFree records a free query.
	KindFree
)

// Entry is a single applied query together with its outcome.
type Entry struct {
	// Seq is the 1-based sequence number, identical to the query index.
	Seq uint64 `json:"seq"`
	// Kind discriminates allocation and free entries.
	Kind Kind `json:"kind"`
	// Size is the requested block size (allocations only).
	Size int `json:"size,omitempty"`
	// Ref is the referenced query index (frees only).
	Ref int `json:"ref,omitempty"`
	// Addr is the granted 1-based address, or -1 for a failed allocation.
	Addr int `json:"addr,omitempty"`
	// Noop marks a free that targeted a failed or already-freed
	// allocation.
	Noop bool `json:"noop,omitempty"`
}

// Compression selects the algorithm applied to the entry stream.
type Compression uint8

const (
	// CompressionNone stores entries uncompressed.
	CompressionNone Compression = iota
	// CompressionLZ4 uses LZ4 framing (fast, moderate ratio).
	CompressionLZ4
	// CompressionZstd uses zstd (better ratio, slightly slower writes).
	CompressionZstd
)

// Options contains configuration for a trace Writer.
type Options struct {
	// Compression selects the entry stream compression. Default: none.
	Compression Compression

	// CompressionLevel sets the zstd compression level (1-22). Ignored
	// for other algorithms. Default (3) balances ratio and speed.
	CompressionLevel int

	// Codec encodes individual entries. The codec name is recorded in
	// the file header so readers can select it. Default: codec.Default.
	Codec codec.Codec

	// Sync fsyncs the file on Close.
	Sync bool
}

// DefaultOptions returns default trace options.
var DefaultOptions = Options{
	Compression:      CompressionNone,
	CompressionLevel: 3,
	Codec:            nil, // resolved to codec.Default
	Sync:             false,
}
