// Package cursor provides bounds-checked little-endian field readers and
// writers over byte slices.
//
// Every read or write advances the cursor by exactly the width of the field.
// 40-bit fields occupy 5 bytes on the wire and are carried in a uint64.
//
// Both Reader and Writer keep the first error they hit and turn every later
// call into a no-op, so a fixed-layout record can be read or written field by
// field and checked once at the end:
//
//	r := cursor.NewReader(data)
//	tai := r.Uint40()
//	sub := r.Uint8()
//	if err := r.Err(); err != nil {
//		return err
//	}
package cursor

import "encoding/binary"

// Field widths in bytes.
const (
	Uint8Size  = 1
	Uint16Size = 2
	Uint40Size = 5
)

// MaxUint40 is the largest value a 40-bit field can hold.
const MaxUint40 uint64 = 1<<40 - 1

// Reader reads fixed-width fields from a byte slice.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// need reports whether n more bytes are available, recording ErrShortBuffer
// if they are not.
func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if len(r.buf)-r.off < n {
		r.err = ErrShortBuffer
		return false
	}
	return true
}

// Uint8 reads one byte.
func (r *Reader) Uint8() uint8 {
	if !r.need(Uint8Size) {
		return 0
	}
	v := r.buf[r.off]
	r.off += Uint8Size
	return v
}

// Uint16 reads a 16-bit little-endian value.
func (r *Reader) Uint16() uint16 {
	if !r.need(Uint16Size) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += Uint16Size
	return v
}

// Uint40 reads a 40-bit little-endian value.
func (r *Reader) Uint40() uint64 {
	if !r.need(Uint40Size) {
		return 0
	}
	b := r.buf[r.off : r.off+Uint40Size]
	v := uint64(b[0]) |
		uint64(b[1])<<8 |
		uint64(b[2])<<16 |
		uint64(b[3])<<24 |
		uint64(b[4])<<32
	r.off += Uint40Size
	return v
}

// Bool reads one byte that must be 0 or 1. Any other value records
// ErrInvalidBool.
func (r *Reader) Bool() bool {
	if !r.need(Uint8Size) {
		return false
	}
	v := r.buf[r.off]
	if v > 1 {
		r.err = ErrInvalidBool
		return false
	}
	r.off += Uint8Size
	return v == 1
}

// Bytes reads n raw bytes. The returned slice aliases the underlying buffer.
func (r *Reader) Bytes(n int) []byte {
	if n < 0 {
		if r.err == nil {
			r.err = ErrShortBuffer
		}
		return nil
	}
	if !r.need(n) {
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

// Rest returns the unread bytes without advancing the cursor.
func (r *Reader) Rest() []byte {
	return r.buf[r.off:]
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error {
	return r.err
}

// Writer writes fixed-width fields into a caller-provided buffer.
// The writer never grows the buffer; len(buf) is its capacity.
type Writer struct {
	buf []byte
	off int
	err error
}

// NewWriter returns a Writer that fills buf from the start.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

func (w *Writer) need(n int) bool {
	if w.err != nil {
		return false
	}
	if len(w.buf)-w.off < n {
		w.err = ErrShortBuffer
		return false
	}
	return true
}

// PutUint8 writes one byte.
func (w *Writer) PutUint8(v uint8) {
	if !w.need(Uint8Size) {
		return
	}
	w.buf[w.off] = v
	w.off += Uint8Size
}

// PutUint16 writes a 16-bit little-endian value.
func (w *Writer) PutUint16(v uint16) {
	if !w.need(Uint16Size) {
		return
	}
	binary.LittleEndian.PutUint16(w.buf[w.off:], v)
	w.off += Uint16Size
}

// PutUint40 writes the low 40 bits of v as a little-endian value.
// Values above MaxUint40 are rejected with ErrValueOverflow and nothing is
// written.
func (w *Writer) PutUint40(v uint64) {
	if w.err != nil {
		return
	}
	if v > MaxUint40 {
		w.err = ErrValueOverflow
		return
	}
	if !w.need(Uint40Size) {
		return
	}
	b := w.buf[w.off : w.off+Uint40Size]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	w.off += Uint40Size
}

// PutBool writes 1 for true and 0 for false.
func (w *Writer) PutBool(v bool) {
	var b uint8
	if v {
		b = 1
	}
	w.PutUint8(b)
}

// PutBytes writes p verbatim.
func (w *Writer) PutBytes(p []byte) {
	if !w.need(len(p)) {
		return
	}
	copy(w.buf[w.off:], p)
	w.off += len(p)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.off
}

// Bytes returns the written portion of the buffer.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.off]
}

// Err returns the first error encountered, or nil.
func (w *Writer) Err() error {
	return w.err
}
