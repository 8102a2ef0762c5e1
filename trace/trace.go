// Package trace journals applied queries for later inspection and replay.
//
// A trace file is a self-describing header followed by length-prefixed
// codec-encoded entries, optionally behind an LZ4 or zstd stream. Replaying
// a trace through a fresh simulator reproduces the original run exactly:
// the simulator is deterministic, so the recorded outcomes double as a
// consistency check.
package trace

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/segalloc/segalloc/codec"
)

var magic = [8]byte{'S', 'E', 'G', 'T', 'R', 'A', 'C', 'E'}

const formatVersion = 1

// Writer appends entries to a trace file.
type Writer struct {
	mu         sync.Mutex
	file       *os.File
	bw         *bufio.Writer
	compressor io.WriteCloser // nil when compression is disabled
	codec      codec.Codec
	seq        uint64
	sync       bool
	closed     bool
}

// NewWriter creates a trace file at path, truncating any existing file.
// memorySize is recorded in the header so a trace is replayable on its own.
func NewWriter(path string, memorySize int, optFns ...func(*Options)) (*Writer, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600) //nolint:gosec // G304: path is configurable
	if err != nil {
		return nil, fmt.Errorf("trace: failed to create %s: %w", path, err)
	}

	if err := writeHeader(file, opts, memorySize); err != nil {
		_ = file.Close()
		return nil, err
	}

	w := &Writer{
		file:  file,
		codec: opts.Codec,
		sync:  opts.Sync,
	}

	switch opts.Compression {
	case CompressionZstd:
		level := zstd.EncoderLevelFromZstd(opts.CompressionLevel)
		enc, err := zstd.NewWriter(file, zstd.WithEncoderLevel(level))
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("trace: failed to create zstd writer: %w", err)
		}
		w.compressor = enc
		w.bw = bufio.NewWriter(enc)
	case CompressionLZ4:
		lw := lz4.NewWriter(file)
		w.compressor = lw
		w.bw = bufio.NewWriter(lw)
	default:
		w.bw = bufio.NewWriter(file)
	}

	return w, nil
}

func writeHeader(file *os.File, opts Options, memorySize int) error {
	name := opts.Codec.Name()
	if len(name) > 255 {
		return fmt.Errorf("trace: codec name too long: %q", name)
	}

	var buf []byte
	buf = append(buf, magic[:]...)
	buf = append(buf, formatVersion, byte(opts.Compression), byte(len(name)))
	buf = append(buf, name...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(memorySize))

	if _, err := file.Write(buf); err != nil {
		return fmt.Errorf("trace: failed to write header: %w", err)
	}
	return nil
}

// Append journals one entry, assigning the next sequence number.
func (w *Writer) Append(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("trace: writer is closed")
	}

	w.seq++
	e.Seq = w.seq

	payload, err := w.codec.Marshal(e)
	if err != nil {
		return fmt.Errorf("trace: failed to encode entry %d: %w", e.Seq, err)
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload))) //nolint:gosec
	if _, err := w.bw.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.bw.Write(payload); err != nil {
		return err
	}
	return nil
}

// Seq returns the sequence number of the last appended entry.
func (w *Writer) Seq() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seq
}

// Close flushes buffered entries, finalizes the compression stream and
// closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.bw.Flush(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("trace: failed to flush: %w", err)
	}
	if w.compressor != nil {
		if err := w.compressor.Close(); err != nil {
			_ = w.file.Close()
			return fmt.Errorf("trace: failed to finalize compression: %w", err)
		}
	}
	if w.sync {
		if err := w.file.Sync(); err != nil {
			_ = w.file.Close()
			return fmt.Errorf("trace: failed to sync: %w", err)
		}
	}
	return w.file.Close()
}
