package descriptor

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/bgrewell/isobuild/pkg/helpers"
	"github.com/bgrewell/isobuild/pkg/iso9660/encoding"
)

// fieldWriter fills a descriptor body front to back.
type fieldWriter struct {
	buf []byte
	off int
	err error
}

func (w *fieldWriter) next(n int) []byte {
	b := w.buf[w.off : w.off+n]
	w.off += n
	return b
}

func (w *fieldWriter) u8(v byte) { w.next(1)[0] = v }
func (w *fieldWriter) raw(v []byte, n int) { copy(w.next(n), v) }
func (w *fieldWriter) str(s string, n int) { copy(w.next(n), helpers.PadString(s, n)) }
func (w *fieldWriter) both16(v uint16) { encoding.PutBothByteOrders16(w.next(4), v) }
func (w *fieldWriter) both32(v uint32) { encoding.PutBothByteOrders32(w.next(8), v) }
func (w *fieldWriter) le32(v uint32) { binary.LittleEndian.PutUint32(w.next(4), v) }
func (w *fieldWriter) be32(v uint32) { binary.BigEndian.PutUint32(w.next(4), v) }
func (w *fieldWriter) dateTime(t time.Time) {
	b, err := encoding.MarshalDateTime(t)
	if err != nil && w.err == nil {
		w.err = err
	}
	copy(w.next(len(b)), b[:])
}

// fieldReader walks a descriptor body front to back, keeping the first error.
type fieldReader struct {
	buf []byte
	off int
	err error
}

func (r *fieldReader) next(n int) []byte {
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *fieldReader) u8() byte { return r.next(1)[0] }
func (r *fieldReader) raw(dst []byte) { copy(dst, r.next(len(dst))) }
func (r *fieldReader) str(n int) string { return strings.TrimRight(string(r.next(n)), " ") }
func (r *fieldReader) le32() uint32 { return binary.LittleEndian.Uint32(r.next(4)) }
func (r *fieldReader) be32() uint32 { return binary.BigEndian.Uint32(r.next(4)) }
func (r *fieldReader) keep(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

func (r *fieldReader) both16() uint16 {
	v, err := encoding.UnmarshalUint16LSBMSB([4]byte(r.next(4)))
	r.keep(err)
	return v
}

func (r *fieldReader) both32() uint32 {
	v, err := encoding.UnmarshalUint32LSBMSB([8]byte(r.next(8)))
	r.keep(err)
	return v
}

func (r *fieldReader) dateTime() time.Time {
	t, err := encoding.UnmarshalDateTime([17]byte(r.next(17)))
	r.keep(err)
	return t
}
