package cbor

import "sync"

// ByteBuffer is a growable append-only byte buffer backing the diagnostic
// renderer's scratch path.
//
// Guidelines:
//   - Do not call Reset() before Put() unless you intend to reuse the buffer
//     before putting it back. The pool Resets on Get.
//   - Use Ensure(n) to grow capacity up-front when you know you will append
//     at least n more bytes. This avoids repeated reallocations.
type ByteBuffer struct {
	b []byte
}

var bbPool = sync.Pool{New: func() any { return &ByteBuffer{b: make([]byte, 0, 1024)} }}

// GetByteBuffer obtains a pooled ByteBuffer. The buffer is Reset() before
// being returned so length is zero (capacity may be reused).
func GetByteBuffer() *ByteBuffer {
	bb := bbPool.Get().(*ByteBuffer)
	bb.Reset()
	return bb
}

// PutByteBuffer returns the buffer to the pool after resetting length to zero.
func PutByteBuffer(bb *ByteBuffer) { bb.Reset(); bbPool.Put(bb) }

// Bytes returns the underlying bytes.
func (bb *ByteBuffer) Bytes() []byte { return bb.b }

// Len returns length.
func (bb *ByteBuffer) Len() int { return len(bb.b) }

// Cap returns capacity.
func (bb *ByteBuffer) Cap() int { return cap(bb.b) }

// Reset resets the length to zero; capacity is unchanged.
func (bb *ByteBuffer) Reset() { bb.b = bb.b[:0] }

// Ensure ensures there is room for at least n more bytes without reallocation.
// If needed, it grows the underlying slice.
func (bb *ByteBuffer) Ensure(n int) {
	need := len(bb.b) + n
	if cap(bb.b) >= need {
		return
	}
	c := cap(bb.b)
	if c == 0 {
		c = 1024
	}
	for c < need {
		c <<= 1
	}
	nb := make([]byte, len(bb.b), c)
	copy(nb, bb.b)
	bb.b = nb
}

// Extend grows the buffer by n bytes and returns the newly added region for
// the caller to fill in place.
func (bb *ByteBuffer) Extend(n int) []byte {
	bb.Ensure(n)
	l := len(bb.b)
	bb.b = bb.b[:l+n]
	return bb.b[l:]
}

// Write implements io.Writer.
func (bb *ByteBuffer) Write(p []byte) (int, error) {
	bb.Ensure(len(p))
	bb.b = append(bb.b, p...)
	return len(p), nil
}

// WriteString appends a string.
func (bb *ByteBuffer) WriteString(s string) (int, error) {
	bb.Ensure(len(s))
	bb.b = append(bb.b, s...)
	return len(s), nil
}

// WriteByte appends a single byte.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.Ensure(1)
	bb.b = append(bb.b, c)
	return nil
}
