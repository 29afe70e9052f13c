package cbor

import (
	"math"
)

// EpochTimeFunc converts a tag 1 payload, already resolved to epoch seconds,
// into the caller's temporal representation. It is supplied at Decoder
// construction; without one, tag 1 items pass through structurally as
// Tag values.
type EpochTimeFunc func(sec float64) any

// EpochTime is the stock EpochTimeFunc producing a time.Time with the
// fractional seconds rounded to nanoseconds.
func EpochTime(sec float64) any { return epochToTime(sec) }

// DecoderOption configures a Decoder at construction.
type DecoderOption func(*Decoder)

// WithEpochTime registers the epoch-time converter applied to tag 1 items by
// PopNextDataItem.
func WithEpochTime(fn EpochTimeFunc) DecoderOption {
	return func(d *Decoder) { d.epoch = fn }
}

// WithMaxContainerLen bounds the declared length of arrays and maps. Zero
// disables the limit. When exceeded, ErrContainerTooLarge is returned.
func WithMaxContainerLen(n uint64) DecoderOption {
	return func(d *Decoder) { d.maxContainer = n }
}

// WithZeroCopyStrings makes PopNextText return strings sharing the source
// buffer's memory. Only safe when the source slice outlives every returned
// string and is never mutated.
func WithZeroCopyStrings() DecoderOption {
	return func(d *Decoder) { d.zeroCopy = true }
}

// Decoder consumes a single in-memory CBOR buffer through a cursor. It owns
// its cursor exclusively; independent Decoders share no state. After any
// error the cursor position is unspecified and the Decoder must be discarded
// for that buffer.
type Decoder struct {
	buf          []byte
	epoch        EpochTimeFunc
	maxContainer uint64
	zeroCopy     bool
}

// NewDecoder constructs a Decoder over the provided buffer. The buffer is
// not copied and must not be mutated during the decode session.
func NewDecoder(b []byte, opts ...DecoderOption) *Decoder {
	d := &Decoder{buf: b}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// PeekNextType returns the type of the next item without advancing the
// cursor. It distinguishes definite from indefinite container heads.
func (d *Decoder) PeekNextType() (ItemType, error) {
	return PeekTypeBytes(d.buf)
}

// Remaining returns the unread portion of the underlying buffer.
func (d *Decoder) Remaining() []byte { return d.buf }

// RemainingLen returns the number of bytes not yet consumed.
func (d *Decoder) RemainingLen() int { return len(d.buf) }

// PopNextUnsignedInt pops an unsigned integer. A negative integer at the
// cursor is a TypeError, not an implicit cast.
func (d *Decoder) PopNextUnsignedInt() (uint64, error) {
	if err := d.expect(UnsignedInt); err != nil {
		return 0, err
	}
	v, rest, err := ReadUint64Bytes(d.buf)
	if err != nil {
		return 0, err
	}
	d.buf = rest
	return v, nil
}

// PopNextNegativeInt pops a negative integer as an int64. Values below
// -2^63 fail with IntOverflow; use PopNextDataItem to receive them as
// *big.Int.
func (d *Decoder) PopNextNegativeInt() (int64, error) {
	if err := d.expect(NegativeInt); err != nil {
		return 0, err
	}
	v, rest, err := ReadNegIntBytes(d.buf)
	if err != nil {
		return 0, err
	}
	d.buf = rest
	return v, nil
}

// PopNextFloat pops a float of any encoded width as a float64.
func (d *Decoder) PopNextFloat() (float64, error) {
	if err := d.expect(Float); err != nil {
		return 0, err
	}
	v, rest, err := ReadFloat64Bytes(d.buf)
	if err != nil {
		return 0, err
	}
	d.buf = rest
	return v, nil
}

// PopNextBool pops a boolean.
func (d *Decoder) PopNextBool() (bool, error) {
	v, rest, err := ReadBoolBytes(d.buf)
	if err != nil {
		return false, err
	}
	d.buf = rest
	return v, nil
}

// PopNextNull pops a null item.
func (d *Decoder) PopNextNull() error {
	rest, err := ReadNilBytes(d.buf)
	if err != nil {
		return err
	}
	d.buf = rest
	return nil
}

// PopNextBytes pops a byte string, concatenating indefinite fragments.
// Definite-length content aliases the source buffer.
func (d *Decoder) PopNextBytes() ([]byte, error) {
	if err := d.expect(Bytes, IndefBytes); err != nil {
		return nil, err
	}
	v, rest, err := ReadBytesBytes(d.buf, nil)
	if err != nil {
		return nil, err
	}
	d.buf = rest
	return v, nil
}

// PopNextText pops a text string, concatenating indefinite fragments and
// validating UTF-8.
func (d *Decoder) PopNextText() (string, error) {
	if err := d.expect(Text, IndefText); err != nil {
		return "", err
	}
	if d.zeroCopy && d.buf[0] != makeByte(majorTypeText, addInfoIndefinite) {
		v, rest, err := ReadStringZC(d.buf)
		if err != nil {
			return "", err
		}
		if !isUTF8Valid(v) {
			return "", ErrInvalidUTF8
		}
		d.buf = rest
		return UnsafeString(v), nil
	}
	s, rest, err := ReadStringBytes(d.buf)
	if err != nil {
		return "", err
	}
	d.buf = rest
	return s, nil
}

// PopNextArrayStart pops an array head. For definite arrays, sz is the
// declared element count and the caller pops exactly that many items. For
// indefinite arrays, indefinite is true, sz is meaningless, and the caller
// loops until a Break is observed.
func (d *Decoder) PopNextArrayStart() (sz uint64, indefinite bool, err error) {
	if err := d.expect(ArrayStart, IndefArray); err != nil {
		return 0, false, err
	}
	sz, indefinite, rest, err := ReadArrayStartBytes(d.buf)
	if err != nil {
		return 0, false, err
	}
	if d.maxContainer > 0 && sz > d.maxContainer {
		return 0, false, ErrContainerTooLarge
	}
	d.buf = rest
	return sz, indefinite, nil
}

// PopNextMapStart pops a map head. Semantics mirror PopNextArrayStart with
// sz counting key/value pairs.
func (d *Decoder) PopNextMapStart() (sz uint64, indefinite bool, err error) {
	if err := d.expect(MapStart, IndefMap); err != nil {
		return 0, false, err
	}
	sz, indefinite, rest, err := ReadMapStartBytes(d.buf)
	if err != nil {
		return 0, false, err
	}
	if d.maxContainer > 0 && sz > d.maxContainer {
		return 0, false, ErrContainerTooLarge
	}
	d.buf = rest
	return sz, indefinite, nil
}

// PopNextTagVal pops a semantic tag head and returns the tag number. The
// caller must separately pop the tagged payload. This is the raw access path
// for tags PopNextDataItem has no interpretation for.
func (d *Decoder) PopNextTagVal() (uint64, error) {
	if err := d.expect(TagType); err != nil {
		return 0, err
	}
	v, rest, err := ReadTagBytes(d.buf)
	if err != nil {
		return 0, err
	}
	d.buf = rest
	return v, nil
}

// PopNextBreak pops a break marker. Used by callers looping over an
// indefinite container popped via PopNextArrayStart/PopNextMapStart.
func (d *Decoder) PopNextBreak() error {
	rest, ok, err := ReadBreakBytes(d.buf)
	if err != nil {
		return err
	}
	if !ok {
		return TypeError{Method: Break, Encoded: itemTypeOf(d.buf[0])}
	}
	d.buf = rest
	return nil
}

// PopNextDataItem pops one complete data item, recursing into containers and
// resolving indefinite-length encodings, and returns it as a value of the
// closed union documented in item.go. Tag 1 payloads go through the
// registered epoch-time converter; tags 2/3 become *big.Int; any other tag
// fails with UnsupportedTagError.
func (d *Decoder) PopNextDataItem() (any, error) {
	v, rest, err := d.popItem(d.buf, 0)
	if err != nil {
		return nil, err
	}
	d.buf = rest
	return v, nil
}

// PopNextList pops a complete array item as []any. Anything but an array at
// the cursor is a TypeError.
func (d *Decoder) PopNextList() ([]any, error) {
	if err := d.expect(ArrayStart, IndefArray); err != nil {
		return nil, err
	}
	v, err := d.PopNextDataItem()
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

// PopNextMap pops a complete map item as a Map. Anything but a map at the
// cursor is a TypeError.
func (d *Decoder) PopNextMap() (Map, error) {
	if err := d.expect(MapStart, IndefMap); err != nil {
		return nil, err
	}
	v, err := d.PopNextDataItem()
	if err != nil {
		return nil, err
	}
	return v.(Map), nil
}

// ConsumeNextElement skips exactly one structural unit without materializing
// it: a scalar, one fragment head, or one container head.
func (d *Decoder) ConsumeNextElement() error {
	rest, err := SkipElement(d.buf)
	if err != nil {
		return err
	}
	d.buf = rest
	return nil
}

// ConsumeNextDataItem skips one complete, possibly nested, data item. The
// traversal is iterative, so attacker-controlled nesting depth cannot
// overflow the call stack.
func (d *Decoder) ConsumeNextDataItem() error {
	rest, err := Skip(d.buf)
	if err != nil {
		return err
	}
	d.buf = rest
	return nil
}

// expect verifies the next item is one of the wanted types.
func (d *Decoder) expect(want ...ItemType) error {
	t, err := PeekTypeBytes(d.buf)
	if err != nil {
		return err
	}
	for _, w := range want {
		if t == w {
			return nil
		}
	}
	return TypeError{Method: want[0], Encoded: t}
}

func (d *Decoder) popItem(b []byte, depth int) (any, []byte, error) {
	if depth > maxNestingDepth {
		return nil, b, ErrMaxDepthExceeded
	}
	t, err := PeekTypeBytes(b)
	if err != nil {
		return nil, b, err
	}

	switch t {
	case UnsignedInt:
		v, o, err := ReadUint64Bytes(b)
		if err != nil {
			return nil, b, err
		}
		return v, o, nil

	case NegativeInt:
		n, o, err := readUintCore(b, majorTypeNegInt)
		if err != nil {
			return nil, b, err
		}
		if n > math.MaxInt64 {
			// Past int64 but still a native head: -1-n as a bignum.
			return negBig(n), o, nil
		}
		return -1 - int64(n), o, nil

	case Float:
		v, o, err := ReadFloat64Bytes(b)
		if err != nil {
			return nil, b, err
		}
		return v, o, nil

	case Bytes, IndefBytes:
		v, o, err := ReadBytesBytes(b, nil)
		if err != nil {
			return nil, b, err
		}
		return v, o, nil

	case Text, IndefText:
		s, o, err := ReadStringBytes(b)
		if err != nil {
			return nil, b, err
		}
		return s, o, nil

	case ArrayStart, IndefArray:
		sz, indef, o, err := ReadArrayStartBytes(b)
		if err != nil {
			return nil, b, err
		}
		if indef {
			out := []any{}
			for {
				rest, done, err := ReadBreakBytes(o)
				if err != nil {
					return nil, b, err
				}
				if done {
					return out, rest, nil
				}
				var v any
				v, o, err = d.popItem(o, depth+1)
				if err != nil {
					return nil, b, err
				}
				out = append(out, v)
			}
		}
		if d.maxContainer > 0 && sz > d.maxContainer {
			return nil, b, ErrContainerTooLarge
		}
		// Every element takes at least one byte; a declared count past the
		// remaining input is truncation, not an allocation request.
		if sz > uint64(len(o)) {
			return nil, b, ErrShortBytes
		}
		out := make([]any, 0, sz)
		for i := uint64(0); i < sz; i++ {
			var v any
			v, o, err = d.popItem(o, depth+1)
			if err != nil {
				return nil, b, err
			}
			out = append(out, v)
		}
		return out, o, nil

	case MapStart, IndefMap:
		sz, indef, o, err := ReadMapStartBytes(b)
		if err != nil {
			return nil, b, err
		}
		if indef {
			out := Map{}
			for {
				rest, done, err := ReadBreakBytes(o)
				if err != nil {
					return nil, b, err
				}
				if done {
					return out, rest, nil
				}
				var k, v any
				k, o, err = d.popItem(o, depth+1)
				if err != nil {
					return nil, b, err
				}
				v, o, err = d.popItem(o, depth+1)
				if err != nil {
					return nil, b, err
				}
				out = append(out, MapEntry{Key: k, Value: v})
			}
		}
		if d.maxContainer > 0 && sz > d.maxContainer {
			return nil, b, ErrContainerTooLarge
		}
		if sz > uint64(len(o))/2 {
			return nil, b, ErrShortBytes
		}
		out := make(Map, 0, sz)
		for i := uint64(0); i < sz; i++ {
			var k, v any
			k, o, err = d.popItem(o, depth+1)
			if err != nil {
				return nil, b, err
			}
			v, o, err = d.popItem(o, depth+1)
			if err != nil {
				return nil, b, err
			}
			out = append(out, MapEntry{Key: k, Value: v})
		}
		return out, o, nil

	case TagType:
		tag, o, err := ReadTagBytes(b)
		if err != nil {
			return nil, b, err
		}
		switch tag {
		case tagPosBignum, tagNegBignum:
			z, o2, err := ReadBignumBytes(b)
			if err != nil {
				return nil, b, err
			}
			return z, o2, nil
		case tagEpochDateTime:
			payload, o2, err := d.popItem(o, depth+1)
			if err != nil {
				return nil, b, err
			}
			var sec float64
			switch n := payload.(type) {
			case uint64:
				sec = float64(n)
			case int64:
				sec = float64(n)
			case float64:
				sec = n
			default:
				// Tag 1 requires a numeric payload.
				pt, _ := PeekTypeBytes(o)
				return nil, b, TypeError{Method: Float, Encoded: pt}
			}
			if d.epoch != nil {
				return d.epoch(sec), o2, nil
			}
			return Tag{Num: tag, Content: payload}, o2, nil
		default:
			return nil, b, UnsupportedTagError{Num: tag}
		}

	case Bool:
		v, o, err := ReadBoolBytes(b)
		if err != nil {
			return nil, b, err
		}
		return v, o, nil

	case Null:
		o, err := ReadNilBytes(b)
		if err != nil {
			return nil, b, err
		}
		return nil, o, nil

	case Undef:
		o, err := ReadUndefinedBytes(b)
		if err != nil {
			return nil, b, err
		}
		return Undefined{}, o, nil

	case Break:
		return nil, b, ErrUnmatchedBreak

	default:
		return nil, b, InvalidAdditionalInfoError{Major: getMajorType(b[0]), Info: getAddInfo(b[0])}
	}
}
