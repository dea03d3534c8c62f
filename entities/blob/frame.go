//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

// Package blob implements the record frame shared by input BLOBs, run files
// and shards: a 4-byte big-endian length followed by that many payload bytes.
package blob

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	// HeaderSize is the size of the length prefix in front of every record.
	HeaderSize = 4
	// MaxRecordSize is the largest payload a well-formed frame may announce.
	MaxRecordSize = 10_000_000
	// BufferSize is the default size of buffered readers and writers.
	BufferSize = 4 * 1024 * 1024
)

// ErrInvalidRecord is returned when writing an empty or oversized record.
var ErrInvalidRecord = errors.New("invalid record length")

// FramedSize returns the on-disk size of a record with a payload of n bytes.
func FramedSize(n int) int64 {
	return int64(HeaderSize + n)
}

// ValidLength reports whether a frame may announce the given payload length.
func ValidLength(n uint32) bool {
	return n > 0 && n <= MaxRecordSize
}

// Reader reads records frame by frame. A malformed or incomplete frame ends
// the stream exactly like a clean end of file, Next returns io.EOF in both
// cases and Truncated tells them apart.
type Reader struct {
	r         *bufio.Reader
	hdr       [HeaderSize]byte
	offset    int64
	done      bool
	truncated bool
}

func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, BufferSize)
}

func NewReaderSize(r io.Reader, size int) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, size)}
}

// Next returns the payload of the next well-formed frame. The returned slice
// is owned by the caller.
func (r *Reader) Next() ([]byte, error) {
	if r.done {
		return nil, io.EOF
	}

	n, err := io.ReadFull(r.r, r.hdr[:])
	if err != nil {
		return nil, r.stop(err, n > 0)
	}

	length := binary.BigEndian.Uint32(r.hdr[:])
	if !ValidLength(length) {
		return nil, r.stop(io.EOF, true)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return nil, r.stop(err, true)
	}

	r.offset += FramedSize(int(length))
	return payload, nil
}

func (r *Reader) stop(err error, truncated bool) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		r.done = true
		r.truncated = truncated
		return io.EOF
	}
	return errors.Wrap(err, "read frame")
}

// Offset is the number of bytes consumed by well-formed frames so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Truncated reports whether the stream ended on a malformed or incomplete
// frame rather than on a frame boundary.
func (r *Reader) Truncated() bool {
	return r.truncated
}

// Writer writes records as frames through a buffer. Callers must Flush
// before closing the underlying writer.
type Writer struct {
	w       *bufio.Writer
	hdr     [HeaderSize]byte
	size    int64
	records int64
}

func NewWriter(w io.Writer) *Writer {
	return NewWriterSize(w, BufferSize)
}

func NewWriterSize(w io.Writer, size int) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, size)}
}

// Write appends one frame and returns the number of bytes it occupies.
func (w *Writer) Write(record []byte) (int64, error) {
	if len(record) == 0 || len(record) > MaxRecordSize {
		return 0, errors.Wrapf(ErrInvalidRecord, "length %d", len(record))
	}

	binary.BigEndian.PutUint32(w.hdr[:], uint32(len(record)))
	if _, err := w.w.Write(w.hdr[:]); err != nil {
		return 0, errors.Wrap(err, "write frame header")
	}
	if _, err := w.w.Write(record); err != nil {
		return 0, errors.Wrap(err, "write frame payload")
	}

	framed := FramedSize(len(record))
	w.size += framed
	w.records++
	return framed, nil
}

func (w *Writer) Flush() error {
	return errors.Wrap(w.w.Flush(), "flush frames")
}

// Size is the number of bytes written so far, including headers.
func (w *Writer) Size() int64 {
	return w.size
}

func (w *Writer) Records() int64 {
	return w.records
}

// CountFrames walks an in-memory image of a frame file, such as a memory
// mapped shard. It returns the number of well-formed frames and the bytes they
// cover. Walking stops at the first malformed or incomplete frame.
func CountFrames(data []byte) (records, consumed int64) {
	pos := int64(0)
	size := int64(len(data))
	for size-pos >= HeaderSize {
		length := binary.BigEndian.Uint32(data[pos : pos+HeaderSize])
		if !ValidLength(length) {
			break
		}
		end := pos + FramedSize(int(length))
		if end > size {
			break
		}
		records++
		pos = end
	}
	return records, pos
}
