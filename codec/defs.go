// Package cbor implements a streaming CBOR (RFC 8949) encoder, a streaming
// decoder, and a shape-driven writer that serializes aggregate values under
// the guidance of an externally supplied schema description.
//
// The package exposes two API layers:
//   - AppendXxxx() appends an item to a []byte in CBOR encoding.
//   - ReadXxxxBytes() reads an item from a []byte and returns the remaining
//     bytes.
//
// On top of the function layer sit the stateful Encoder and Decoder types,
// which carry the buffer/cursor and the indefinite-container bookkeeping, and
// WriteDataItemShaped, which walks a value together with a Shape description
// and drives the Encoder.
//
// The encoder always emits 64-bit floats and definite-or-explicitly-indefinite
// containers; the decoder additionally accepts 16- and 32-bit floats and
// non-minimal integer head widths. Byte-for-byte canonical output per RFC 8949
// §4.2 is not a goal; decoded-value equality across a round trip is.
package cbor

const (
	// maxNestingDepth bounds container nesting on the decode path. Inputs
	// nested deeper than this fail with ErrMaxDepthExceeded instead of
	// exhausting the stack on adversarial data.
	maxNestingDepth = 4096
)

// CBOR major types (3 bits)
const (
	majorTypeUint   = 0 // unsigned integer
	majorTypeNegInt = 1 // negative integer
	majorTypeBytes  = 2 // byte string
	majorTypeText   = 3 // text string (UTF-8)
	majorTypeArray  = 4 // array
	majorTypeMap    = 5 // map
	majorTypeTag    = 6 // semantic tag
	majorTypeSimple = 7 // float, simple values, break
)

// Additional info values (5 bits)
const (
	// 0-23: literal value
	addInfoDirect     = 23 // max direct value
	addInfoUint8      = 24 // 1-byte uint8 follows
	addInfoUint16     = 25 // 2-byte uint16 follows
	addInfoUint32     = 26 // 4-byte uint32 follows
	addInfoUint64     = 27 // 8-byte uint64 follows
	addInfoIndefinite = 31 // indefinite length (for bytes, text, array, map)
)

// Simple values in major type 7
const (
	simpleFalse     = 20
	simpleTrue      = 21
	simpleNull      = 22
	simpleUndefined = 23
	simpleFloat16   = 25
	simpleFloat32   = 26
	simpleFloat64   = 27
	simpleBreak     = 31
)

// Semantic tags with reserved decode semantics
const (
	tagDateTimeString = 0 // RFC3339 date/time string (no converter registered here)
	tagEpochDateTime  = 1 // Unix timestamp (int or float seconds)
	tagPosBignum      = 2 // positive bignum (big-endian magnitude bytes)
	tagNegBignum      = 3 // negative bignum (-1-v transform on the magnitude)
)

// makeByte creates a CBOR initial byte from major type and additional info
func makeByte(majorType, addInfo uint8) byte {
	return byte((majorType << 5) | addInfo)
}

// getMajorType extracts the major type from a CBOR initial byte
func getMajorType(b byte) uint8 {
	return (b >> 5) & 0x07
}

// getAddInfo extracts the additional info from a CBOR initial byte
func getAddInfo(b byte) uint8 {
	return b & 0x1f
}

// ItemType identifies the kind of the next CBOR data item, including the
// indefinite-length container starts and the break marker, which a plain
// major-type lookup cannot distinguish.
type ItemType byte

// Item types
const (
	Unknown ItemType = iota

	UnsignedInt // unsigned integer (major type 0)
	NegativeInt // negative integer (major type 1)
	Float       // half/single/double float (major type 7)
	Bytes       // definite-length byte string
	Text        // definite-length text string
	ArrayStart  // definite-length array head
	MapStart    // definite-length map head
	TagType     // semantic tag head
	Bool        // true or false
	Null        // null
	Undef       // undefined
	Break       // indefinite-length terminator (0xff)
	IndefBytes  // indefinite-length byte string start
	IndefText   // indefinite-length text string start
	IndefArray  // indefinite-length array start
	IndefMap    // indefinite-length map start
)

// String implements fmt.Stringer
func (t ItemType) String() string {
	switch t {
	case UnsignedInt:
		return "uint"
	case NegativeInt:
		return "negint"
	case Float:
		return "float"
	case Bytes:
		return "bytes"
	case Text:
		return "text"
	case ArrayStart:
		return "array"
	case MapStart:
		return "map"
	case TagType:
		return "tag"
	case Bool:
		return "bool"
	case Null:
		return "null"
	case Undef:
		return "undefined"
	case Break:
		return "break"
	case IndefBytes:
		return "indef-bytes"
	case IndefText:
		return "indef-text"
	case IndefArray:
		return "indef-array"
	case IndefMap:
		return "indef-map"
	default:
		return "<unknown>"
	}
}

// itemTypeOf maps an initial byte to its ItemType. It inspects only the head
// byte and never touches the payload, so it is safe on truncated input past
// the first byte.
func itemTypeOf(lead byte) ItemType {
	major := getMajorType(lead)
	add := getAddInfo(lead)
	switch major {
	case majorTypeUint:
		return UnsignedInt
	case majorTypeNegInt:
		return NegativeInt
	case majorTypeBytes:
		if add == addInfoIndefinite {
			return IndefBytes
		}
		return Bytes
	case majorTypeText:
		if add == addInfoIndefinite {
			return IndefText
		}
		return Text
	case majorTypeArray:
		if add == addInfoIndefinite {
			return IndefArray
		}
		return ArrayStart
	case majorTypeMap:
		if add == addInfoIndefinite {
			return IndefMap
		}
		return MapStart
	case majorTypeTag:
		return TagType
	case majorTypeSimple:
		switch add {
		case simpleTrue, simpleFalse:
			return Bool
		case simpleNull:
			return Null
		case simpleUndefined:
			return Undef
		case simpleFloat16, simpleFloat32, simpleFloat64:
			return Float
		case simpleBreak:
			return Break
		}
	}
	return Unknown
}

// PeekTypeBytes returns the type of the next item in b without consuming
// anything. It fails only on empty input or a reserved head byte.
func PeekTypeBytes(b []byte) (ItemType, error) {
	if len(b) == 0 {
		return Unknown, ErrShortBytes
	}
	add := getAddInfo(b[0])
	if add >= 28 && add <= 30 {
		return Unknown, InvalidAdditionalInfoError{Major: getMajorType(b[0]), Info: add}
	}
	return itemTypeOf(b[0]), nil
}

// Marshaler is the interface implemented by types that know how to marshal
// themselves as CBOR. MarshalCBOR appends the marshalled form to the provided
// byte slice, returning the extended slice and any errors encountered.
type Marshaler interface {
	MarshalCBOR([]byte) ([]byte, error)
}

// Unmarshaler is the interface fulfilled by objects that know how to unmarshal
// themselves from CBOR. UnmarshalCBOR unmarshals the object from binary,
// returning any leftover bytes and any errors encountered.
type Unmarshaler interface {
	UnmarshalCBOR([]byte) ([]byte, error)
}
