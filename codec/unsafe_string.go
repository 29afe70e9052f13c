package cbor

import "unsafe"

// UnsafeString returns a string sharing b's backing memory. Callers must
// guarantee b is not mutated while the string is live; the zero-copy decode
// paths uphold this by requiring an immutable source buffer.
func UnsafeString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}
