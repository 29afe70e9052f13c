package cbor

import (
	"encoding/binary"
	"math"
	bigmath "math/big"
	"time"
)

var be = binary.BigEndian

// readUintCore reads an unsigned head argument with the given expected
// major type
func readUintCore(b []byte, expectedMajor uint8) (uint64, []byte, error) {
	if len(b) < 1 {
		return 0, b, ErrShortBytes
	}

	major := getMajorType(b[0])
	if major != expectedMajor {
		return 0, b, badPrefix(major, expectedMajor)
	}

	addInfo := getAddInfo(b[0])

	switch {
	case addInfo <= addInfoDirect:
		return uint64(addInfo), b[1:], nil
	case addInfo == addInfoUint8:
		if len(b) < 2 {
			return 0, b, ErrShortBytes
		}
		return uint64(b[1]), b[2:], nil
	case addInfo == addInfoUint16:
		if len(b) < 3 {
			return 0, b, ErrShortBytes
		}
		return uint64(be.Uint16(b[1:])), b[3:], nil
	case addInfo == addInfoUint32:
		if len(b) < 5 {
			return 0, b, ErrShortBytes
		}
		return uint64(be.Uint32(b[1:])), b[5:], nil
	case addInfo == addInfoUint64:
		if len(b) < 9 {
			return 0, b, ErrShortBytes
		}
		return be.Uint64(b[1:]), b[9:], nil
	default:
		return 0, b, InvalidAdditionalInfoError{Major: expectedMajor, Info: addInfo}
	}
}

// ReadUint64Bytes reads an unsigned integer (major type 0). Non-minimal head
// widths are accepted.
func ReadUint64Bytes(b []byte) (u uint64, o []byte, err error) {
	return readUintCore(b, majorTypeUint)
}

// ReadNegIntBytes reads a negative integer (major type 1) as an int64.
// Arguments past the int64 range (values below -2^63) fail with IntOverflow;
// the materializing decode represents those as *big.Int instead.
func ReadNegIntBytes(b []byte) (i int64, o []byte, err error) {
	n, o, err := readUintCore(b, majorTypeNegInt)
	if err != nil {
		return 0, b, err
	}
	if n > math.MaxInt64 {
		return 0, b, IntOverflow{Value: -1, FailedBitsize: 64}
	}
	return -1 - int64(n), o, nil
}

// ReadInt64Bytes reads an integer of either sign (major type 0 or 1).
func ReadInt64Bytes(b []byte) (i int64, o []byte, err error) {
	if len(b) < 1 {
		return 0, b, ErrShortBytes
	}
	switch getMajorType(b[0]) {
	case majorTypeUint:
		u, o, err := readUintCore(b, majorTypeUint)
		if err != nil {
			return 0, b, err
		}
		if u > math.MaxInt64 {
			return 0, b, IntOverflow{Value: int64(u), FailedBitsize: 64}
		}
		return int64(u), o, nil
	case majorTypeNegInt:
		return ReadNegIntBytes(b)
	default:
		return 0, b, badPrefix(getMajorType(b[0]), majorTypeUint)
	}
}

// ReadFloat64Bytes reads a float (major type 7, argument 25/26/27) and widens
// half- and single-precision encodings to float64. NaN and infinity bit
// patterns pass through.
func ReadFloat64Bytes(b []byte) (f float64, o []byte, err error) {
	if len(b) < 1 {
		return 0, b, ErrShortBytes
	}
	switch b[0] {
	case 0xfb: // float64
		if len(b) < 9 {
			return 0, b, ErrShortBytes
		}
		return math.Float64frombits(be.Uint64(b[1:])), b[9:], nil
	case 0xfa: // float32
		if len(b) < 5 {
			return 0, b, ErrShortBytes
		}
		return float64(math.Float32frombits(be.Uint32(b[1:]))), b[5:], nil
	case 0xf9: // float16
		if len(b) < 3 {
			return 0, b, ErrShortBytes
		}
		return float64(float16BitsToFloat32(be.Uint16(b[1:]))), b[3:], nil
	default:
		return 0, b, TypeError{Method: Float, Encoded: itemTypeOf(b[0])}
	}
}

// ReadBoolBytes reads a bool
func ReadBoolBytes(b []byte) (bool, []byte, error) {
	if len(b) < 1 {
		return false, b, ErrShortBytes
	}
	if b[0] == 0xf5 { // true
		return true, b[1:], nil
	}
	if b[0] == 0xf4 { // false
		return false, b[1:], nil
	}
	return false, b, TypeError{Method: Bool, Encoded: itemTypeOf(b[0])}
}

// ReadNilBytes reads a null value
func ReadNilBytes(b []byte) ([]byte, error) {
	if len(b) < 1 {
		return b, ErrShortBytes
	}
	if b[0] != makeByte(majorTypeSimple, simpleNull) {
		return b, ErrNotNil
	}
	return b[1:], nil
}

// ReadUndefinedBytes reads an undefined simple value
func ReadUndefinedBytes(b []byte) ([]byte, error) {
	if len(b) < 1 {
		return b, ErrShortBytes
	}
	if b[0] != makeByte(majorTypeSimple, simpleUndefined) {
		return b, TypeError{Method: Undef, Encoded: itemTypeOf(b[0])}
	}
	return b[1:], nil
}

// ReadBytesBytes reads a byte string into scratch (which may be nil).
// Indefinite-length strings are resolved by concatenating their definite
// chunks up to the break.
func ReadBytesBytes(b []byte, scratch []byte) (v []byte, o []byte, err error) {
	if len(b) < 1 {
		return nil, b, ErrShortBytes
	}
	if b[0] == makeByte(majorTypeBytes, addInfoIndefinite) {
		out := scratch[:0]
		p := b[1:]
		for {
			if len(p) < 1 {
				return nil, b, ErrShortBytes
			}
			if p[0] == makeByte(majorTypeSimple, simpleBreak) {
				if out == nil {
					out = []byte{}
				}
				return out, p[1:], nil
			}
			// Chunks must be definite-length strings of the same major type.
			sz, q, e := readUintCore(p, majorTypeBytes)
			if e != nil {
				return nil, b, e
			}
			if uint64(len(q)) < sz {
				return nil, b, ErrShortBytes
			}
			out = append(out, q[:sz]...)
			p = q[sz:]
		}
	}
	sz, o, err := readUintCore(b, majorTypeBytes)
	if err != nil {
		return nil, b, err
	}
	if sz > math.MaxInt || uint64(len(o)) < sz {
		return nil, b, ErrShortBytes
	}
	if sz == 0 {
		// Alias the source buffer so the result is never nil.
		return o[:0], o, nil
	}
	return o[:sz], o[sz:], nil
}

// ReadStringZC reads a definite-length text string zero-copy (returns a slice
// into the original buffer, not validated as UTF-8).
func ReadStringZC(b []byte) (v []byte, o []byte, err error) {
	sz, o, err := readUintCore(b, majorTypeText)
	if err != nil {
		return nil, b, err
	}
	if sz > math.MaxInt || uint64(len(o)) < sz {
		return nil, b, ErrShortBytes
	}
	return o[:sz], o[sz:], nil
}

// ReadStringBytes reads a text string, resolving indefinite-length fragments
// and validating UTF-8.
func ReadStringBytes(b []byte) (s string, o []byte, err error) {
	if len(b) < 1 {
		return "", b, ErrShortBytes
	}
	if b[0] == makeByte(majorTypeText, addInfoIndefinite) {
		p := b[1:]
		var out []byte
		for {
			if len(p) < 1 {
				return "", b, ErrShortBytes
			}
			if p[0] == makeByte(majorTypeSimple, simpleBreak) {
				if !isUTF8Valid(out) {
					return "", b, ErrInvalidUTF8
				}
				return string(out), p[1:], nil
			}
			chunk, q, e := ReadStringZC(p)
			if e != nil {
				return "", b, e
			}
			out = append(out, chunk...)
			p = q
		}
	}
	v, o, err := ReadStringZC(b)
	if err != nil {
		return "", b, err
	}
	if !isUTF8Valid(v) {
		return "", b, ErrInvalidUTF8
	}
	return string(v), o, nil
}

// ReadArrayHeaderBytes reads a definite-length array header
func ReadArrayHeaderBytes(b []byte) (sz uint64, o []byte, err error) {
	return readUintCore(b, majorTypeArray)
}

// ReadMapHeaderBytes reads a definite-length map header
func ReadMapHeaderBytes(b []byte) (sz uint64, o []byte, err error) {
	return readUintCore(b, majorTypeMap)
}

// ReadArrayStartBytes reads an array start and indicates whether it is
// indefinite-length. When indefinite is true, sz is zero and rest points
// after the header byte (0x9f); callers loop until a break instead of
// counting.
func ReadArrayStartBytes(b []byte) (sz uint64, indefinite bool, rest []byte, err error) {
	if len(b) < 1 {
		return 0, false, b, ErrShortBytes
	}
	if b[0] == makeByte(majorTypeArray, addInfoIndefinite) {
		return 0, true, b[1:], nil
	}
	s, o, e := ReadArrayHeaderBytes(b)
	return s, false, o, e
}

// ReadMapStartBytes reads a map start and indicates whether it is
// indefinite-length. When indefinite is true, sz is zero and rest points
// after the header byte (0xbf).
func ReadMapStartBytes(b []byte) (sz uint64, indefinite bool, rest []byte, err error) {
	if len(b) < 1 {
		return 0, false, b, ErrShortBytes
	}
	if b[0] == makeByte(majorTypeMap, addInfoIndefinite) {
		return 0, true, b[1:], nil
	}
	s, o, e := ReadMapHeaderBytes(b)
	return s, false, o, e
}

// ReadBreakBytes checks whether the next byte is a break (0xff) and consumes
// it if so.
func ReadBreakBytes(b []byte) (rest []byte, ok bool, err error) {
	if len(b) < 1 {
		return b, false, ErrShortBytes
	}
	if b[0] == makeByte(majorTypeSimple, simpleBreak) {
		return b[1:], true, nil
	}
	return b, false, nil
}

// ReadTagBytes reads a semantic tag head (major type 6). The caller must
// separately read the tagged item.
func ReadTagBytes(b []byte) (tag uint64, o []byte, err error) {
	return readUintCore(b, majorTypeTag)
}

// ReadBignumBytes reads a bignum (tag 2 or 3) into a big.Int
func ReadBignumBytes(b []byte) (z *bigmath.Int, o []byte, err error) {
	tag, o, err := ReadTagBytes(b)
	if err != nil {
		return nil, b, err
	}
	if tag != tagPosBignum && tag != tagNegBignum {
		return nil, b, UnsupportedTagError{Num: tag}
	}
	bs, o2, err := ReadBytesBytes(o, nil)
	if err != nil {
		return nil, b, err
	}
	mag := new(bigmath.Int).SetBytes(bs)
	if tag == tagNegBignum {
		mag.Add(mag, bigmath.NewInt(1))
		mag.Neg(mag)
	}
	return mag, o2, nil
}

// negBig returns -1-n as a big.Int, for negative arguments past int64 range.
func negBig(n uint64) *bigmath.Int {
	z := new(bigmath.Int).SetUint64(n)
	z.Add(z, bigmath.NewInt(1))
	z.Neg(z)
	return z
}

// ReadTimeBytes reads a tag 1 epoch timestamp into a time.Time
func ReadTimeBytes(b []byte) (t time.Time, o []byte, err error) {
	tag, o, err := ReadTagBytes(b)
	if err != nil {
		return time.Time{}, b, err
	}
	if tag != tagEpochDateTime {
		return time.Time{}, b, UnsupportedTagError{Num: tag}
	}
	if len(o) < 1 {
		return time.Time{}, b, ErrShortBytes
	}
	switch getMajorType(o[0]) {
	case majorTypeUint, majorTypeNegInt:
		sec, o2, e := ReadInt64Bytes(o)
		if e != nil {
			return time.Time{}, b, e
		}
		return time.Unix(sec, 0), o2, nil
	case majorTypeSimple:
		f, o2, e := ReadFloat64Bytes(o)
		if e != nil {
			return time.Time{}, b, e
		}
		return epochToTime(f), o2, nil
	default:
		return time.Time{}, b, TypeError{Method: Float, Encoded: itemTypeOf(o[0])}
	}
}

// epochToTime converts fractional epoch seconds to a time.Time, rounding the
// nanosecond part.
func epochToTime(f float64) time.Time {
	sec := math.Floor(f)
	ns := int64(math.Round((f - sec) * 1e9))
	secs := int64(sec)
	if ns >= 1e9 {
		secs++
		ns -= 1e9
	}
	return time.Unix(secs, ns)
}

// float16BitsToFloat32 converts IEEE 754 binary16 bits to float32
func float16BitsToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := (h >> 10) & 0x1F
	mant := uint32(h & 0x03FF)
	var bits uint32
	switch exp {
	case 0:
		if mant == 0 {
			bits = sign << 31
		} else {
			// subnormal: value = mant * 2^-24
			f := math.Ldexp(float64(mant), -24)
			if sign != 0 {
				f = -f
			}
			return float32(f)
		}
	case 0x1F:
		// Inf/NaN
		bits = (sign << 31) | (0xFF << 23)
		if mant != 0 {
			bits |= (mant << 13)
		}
	default:
		e32 := int(exp) - 15 + 127
		bits = (sign << 31) | (uint32(e32) << 23) | (mant << 13)
	}
	return math.Float32frombits(bits)
}

// skipFrame tracks one open container during the iterative skip. remaining
// counts items still owed; indef frames run until their break.
type skipFrame struct {
	remaining uint64
	indef     bool
}

// Skip skips over the next CBOR data item, containers included. Traversal is
// iterative with an explicit frame stack, so pathological nesting depth
// cannot exhaust the call stack; depth past maxNestingDepth fails closed
// with ErrMaxDepthExceeded.
func Skip(b []byte) ([]byte, error) {
	frames := make([]skipFrame, 1, 8)
	frames[0] = skipFrame{remaining: 1}

	for {
		top := &frames[len(frames)-1]
		if !top.indef && top.remaining == 0 {
			frames = frames[:len(frames)-1]
			if len(frames) == 0 {
				return b, nil
			}
			continue
		}
		if len(b) < 1 {
			return b, ErrShortBytes
		}

		lead := b[0]
		major := getMajorType(lead)
		addInfo := getAddInfo(lead)

		switch major {
		case majorTypeUint, majorTypeNegInt:
			_, o, err := readUintCore(b, major)
			if err != nil {
				return b, err
			}
			b = o
			if !top.indef {
				top.remaining--
			}

		case majorTypeTag:
			// Consume the head only; the tagged item settles the count.
			_, o, err := readUintCore(b, major)
			if err != nil {
				return b, err
			}
			b = o

		case majorTypeBytes, majorTypeText:
			if addInfo == addInfoIndefinite {
				o := b[1:]
				for {
					if len(o) < 1 {
						return b, ErrShortBytes
					}
					if o[0] == makeByte(majorTypeSimple, simpleBreak) {
						o = o[1:]
						break
					}
					sz, q, err := readUintCore(o, major)
					if err != nil {
						return b, err
					}
					if uint64(len(q)) < sz {
						return b, ErrShortBytes
					}
					o = q[sz:]
				}
				b = o
			} else {
				sz, o, err := readUintCore(b, major)
				if err != nil {
					return b, err
				}
				if uint64(len(o)) < sz {
					return b, ErrShortBytes
				}
				b = o[sz:]
			}
			if !top.indef {
				top.remaining--
			}

		case majorTypeArray, majorTypeMap:
			if !top.indef {
				top.remaining--
			}
			if len(frames) > maxNestingDepth {
				return b, ErrMaxDepthExceeded
			}
			if addInfo == addInfoIndefinite {
				b = b[1:]
				frames = append(frames, skipFrame{indef: true})
			} else {
				sz, o, err := readUintCore(b, major)
				if err != nil {
					return b, err
				}
				b = o
				owed := sz
				if major == majorTypeMap {
					if sz > math.MaxUint64/2 {
						return b, UintOverflow{Value: sz, FailedBitsize: 64}
					}
					owed = 2 * sz
				}
				frames = append(frames, skipFrame{remaining: owed})
			}

		case majorTypeSimple:
			switch addInfo {
			case simpleBreak:
				if !top.indef {
					return b, ErrUnmatchedBreak
				}
				b = b[1:]
				frames = frames[:len(frames)-1]
				if len(frames) == 0 {
					return b, nil
				}
			case simpleFalse, simpleTrue, simpleNull, simpleUndefined:
				b = b[1:]
				if !top.indef {
					top.remaining--
				}
			case simpleFloat16:
				if len(b) < 3 {
					return b, ErrShortBytes
				}
				b = b[3:]
				if !top.indef {
					top.remaining--
				}
			case simpleFloat32:
				if len(b) < 5 {
					return b, ErrShortBytes
				}
				b = b[5:]
				if !top.indef {
					top.remaining--
				}
			case simpleFloat64:
				if len(b) < 9 {
					return b, ErrShortBytes
				}
				b = b[9:]
				if !top.indef {
					top.remaining--
				}
			case addInfoUint8:
				// One-byte simple value (0xf8 xx).
				if len(b) < 2 {
					return b, ErrShortBytes
				}
				b = b[2:]
				if !top.indef {
					top.remaining--
				}
			default:
				if addInfo < simpleFalse {
					b = b[1:]
					if !top.indef {
						top.remaining--
					}
					continue
				}
				return b, InvalidAdditionalInfoError{Major: major, Info: addInfo}
			}
		}
	}
}

// SkipElement skips exactly one structural unit: a scalar with its payload, a
// definite string with its payload, or just the head of a container, tag, or
// indefinite start. Break counts as a unit. Used for fast structural
// traversal where the caller does its own container bookkeeping.
func SkipElement(b []byte) ([]byte, error) {
	if len(b) < 1 {
		return b, ErrShortBytes
	}
	lead := b[0]
	major := getMajorType(lead)
	addInfo := getAddInfo(lead)

	switch major {
	case majorTypeUint, majorTypeNegInt, majorTypeTag, majorTypeArray, majorTypeMap:
		if addInfo == addInfoIndefinite {
			if major == majorTypeArray || major == majorTypeMap {
				return b[1:], nil
			}
			return b, InvalidAdditionalInfoError{Major: major, Info: addInfo}
		}
		_, o, err := readUintCore(b, major)
		return o, err

	case majorTypeBytes, majorTypeText:
		if addInfo == addInfoIndefinite {
			return b[1:], nil
		}
		sz, o, err := readUintCore(b, major)
		if err != nil {
			return b, err
		}
		if uint64(len(o)) < sz {
			return b, ErrShortBytes
		}
		return o[sz:], nil

	default: // majorTypeSimple
		switch addInfo {
		case simpleFloat16:
			if len(b) < 3 {
				return b, ErrShortBytes
			}
			return b[3:], nil
		case simpleFloat32:
			if len(b) < 5 {
				return b, ErrShortBytes
			}
			return b[5:], nil
		case simpleFloat64:
			if len(b) < 9 {
				return b, ErrShortBytes
			}
			return b[9:], nil
		case addInfoUint8:
			if len(b) < 2 {
				return b, ErrShortBytes
			}
			return b[2:], nil
		case 28, 29, 30:
			return b, InvalidAdditionalInfoError{Major: major, Info: addInfo}
		default:
			return b[1:], nil
		}
	}
}

// IsNil checks if the next value is null
func IsNil(b []byte) bool {
	return len(b) > 0 && b[0] == makeByte(majorTypeSimple, simpleNull)
}
