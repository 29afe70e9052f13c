package cbor

// Decoded data items are represented by a closed set of Go values:
//
//	uint64      unsigned integer (major type 0)
//	int64       negative integer (major type 1)
//	*big.Int    bignum overflow of either sign (tags 2/3, or a
//	            negative head argument past int64 range)
//	float64     half/single/double float, including NaN and the infinities
//	[]byte      byte string (indefinite fragments concatenated)
//	string      text string (indefinite fragments concatenated)
//	[]any       array (definite and indefinite resolve identically)
//	Map         map with insertion order preserved
//	Tag         semantic tag the decoder passed through structurally
//	bool        true/false
//	nil         null
//	Undefined   the undefined simple value
//
// Composite items handed out by PopNextDataItem are always fully resolved;
// the head-level API (PeekNextType, PopNextArrayStart, ConsumeNextElement)
// exposes the unresolved fragment stream for advanced callers.

// MapEntry is a single key/value pair of a decoded map.
type MapEntry struct {
	Key   any
	Value any
}

// Map is a decoded CBOR map. Entries appear in wire order, which the codec
// preserves through encode and decode. Keys are not restricted to text.
type Map []MapEntry

// Get returns the value for the first entry whose key equals k, for the
// common case of text keys.
func (m Map) Get(k string) (any, bool) {
	for i := range m {
		if s, ok := m[i].Key.(string); ok && s == k {
			return m[i].Value, true
		}
	}
	return nil, false
}

// Tag is a semantic tag wrapping one data item.
type Tag struct {
	Num     uint64
	Content any
}

// Undefined is the CBOR undefined simple value (major type 7, argument 23).
type Undefined struct{}
