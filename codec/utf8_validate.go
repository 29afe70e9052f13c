package cbor

import "unicode/utf8"

// isUTF8Valid reports whether b is valid UTF-8. A variable so accelerated
// implementations can be swapped in via build tags.
var isUTF8Valid = func(b []byte) bool { return utf8.Valid(b) }
