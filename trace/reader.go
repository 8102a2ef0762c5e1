package trace

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/segalloc/segalloc/codec"
)

// Reader streams entries back from a trace file.
type Reader struct {
	file         *os.File
	r            *bufio.Reader
	decompressor *zstd.Decoder // nil unless zstd
	codec        codec.Codec
	memorySize   int
}

// Open opens a trace file and parses its header.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path) //nolint:gosec // G304: path is configurable
	if err != nil {
		return nil, fmt.Errorf("trace: failed to open %s: %w", path, err)
	}

	r := &Reader{file: file}
	if err := r.readHeader(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	var head [11]byte // magic + version + compression + codec name length
	if _, err := io.ReadFull(r.file, head[:]); err != nil {
		return fmt.Errorf("trace: failed to read header: %w", err)
	}
	if [8]byte(head[:8]) != magic {
		return fmt.Errorf("trace: bad magic %q", head[:8])
	}
	if head[8] != formatVersion {
		return fmt.Errorf("trace: unsupported format version %d", head[8])
	}
	compression := Compression(head[9])

	name := make([]byte, head[10])
	if _, err := io.ReadFull(r.file, name); err != nil {
		return fmt.Errorf("trace: failed to read codec name: %w", err)
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return fmt.Errorf("trace: unknown codec %q", name)
	}
	r.codec = c

	var sizeBuf [8]byte
	if _, err := io.ReadFull(r.file, sizeBuf[:]); err != nil {
		return fmt.Errorf("trace: failed to read memory size: %w", err)
	}
	r.memorySize = int(binary.LittleEndian.Uint64(sizeBuf[:])) //nolint:gosec

	switch compression {
	case CompressionZstd:
		dec, err := zstd.NewReader(r.file)
		if err != nil {
			return fmt.Errorf("trace: failed to create zstd reader: %w", err)
		}
		r.decompressor = dec
		r.r = bufio.NewReader(dec)
	case CompressionLZ4:
		r.r = bufio.NewReader(lz4.NewReader(r.file))
	case CompressionNone:
		r.r = bufio.NewReader(r.file)
	default:
		return fmt.Errorf("trace: unknown compression %d", compression)
	}
	return nil
}

// MemorySize returns the address range size recorded in the header.
func (r *Reader) MemorySize() int { return r.memorySize }

// Next returns the next entry, or io.EOF after the last one.
func (r *Reader) Next() (Entry, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r.r, lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Entry{}, io.EOF
		}
		return Entry{}, fmt.Errorf("trace: failed to read entry length: %w", err)
	}

	payload := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return Entry{}, fmt.Errorf("trace: truncated entry: %w", err)
	}

	var e Entry
	if err := r.codec.Unmarshal(payload, &e); err != nil {
		return Entry{}, fmt.Errorf("trace: failed to decode entry: %w", err)
	}
	return e, nil
}

// Entries reads all remaining entries.
func (r *Reader) Entries() ([]Entry, error) {
	var out []Entry
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}

// Close releases the reader's resources.
func (r *Reader) Close() error {
	if r.decompressor != nil {
		r.decompressor.Close()
	}
	return r.file.Close()
}
