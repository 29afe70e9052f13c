package cbor

import (
	"encoding/binary"
	"math"
	bigmath "math/big"
	"time"
)

// ensure 'sz' extra bytes in 'b' btw len(b) and cap(b)
func ensure(b []byte, sz int) ([]byte, int) {
	l := len(b)
	c := cap(b)
	if c-l < sz {
		o := make([]byte, (2*c)+sz) // exponential growth
		n := copy(o, b)
		return o[:n+sz], n
	}
	return b[:l+sz], l
}

// appendUintCore encodes an unsigned argument with the given major type,
// using the minimal head width.
func appendUintCore(b []byte, majorType uint8, u uint64) []byte {
	switch {
	case u <= addInfoDirect:
		return append(b, makeByte(majorType, uint8(u)))
	case u <= math.MaxUint8:
		o, n := ensure(b, 2)
		o[n] = makeByte(majorType, addInfoUint8)
		o[n+1] = uint8(u)
		return o
	case u <= math.MaxUint16:
		o, n := ensure(b, 3)
		o[n] = makeByte(majorType, addInfoUint16)
		binary.BigEndian.PutUint16(o[n+1:], uint16(u))
		return o
	case u <= math.MaxUint32:
		o, n := ensure(b, 5)
		o[n] = makeByte(majorType, addInfoUint32)
		binary.BigEndian.PutUint32(o[n+1:], uint32(u))
		return o
	default:
		o, n := ensure(b, 9)
		o[n] = makeByte(majorType, addInfoUint64)
		binary.BigEndian.PutUint64(o[n+1:], u)
		return o
	}
}

// AppendMapHeader appends a definite-length map header with the given
// pair count
func AppendMapHeader(b []byte, sz uint64) []byte {
	return appendUintCore(b, majorTypeMap, sz)
}

// AppendArrayHeader appends a definite-length array header with the given
// element count
func AppendArrayHeader(b []byte, sz uint64) []byte {
	return appendUintCore(b, majorTypeArray, sz)
}

// AppendArrayHeaderIndefinite appends an indefinite-length array header (0x9f)
func AppendArrayHeaderIndefinite(b []byte) []byte {
	return append(b, makeByte(majorTypeArray, addInfoIndefinite))
}

// AppendMapHeaderIndefinite appends an indefinite-length map header (0xbf)
func AppendMapHeaderIndefinite(b []byte) []byte {
	return append(b, makeByte(majorTypeMap, addInfoIndefinite))
}

// AppendTextHeaderIndefinite appends an indefinite-length text string header (0x7f)
func AppendTextHeaderIndefinite(b []byte) []byte {
	return append(b, makeByte(majorTypeText, addInfoIndefinite))
}

// AppendBytesHeaderIndefinite appends an indefinite-length byte string header (0x5f)
func AppendBytesHeaderIndefinite(b []byte) []byte {
	return append(b, makeByte(majorTypeBytes, addInfoIndefinite))
}

// AppendBreak appends a break stop code (0xff)
func AppendBreak(b []byte) []byte {
	return append(b, makeByte(majorTypeSimple, simpleBreak))
}

// AppendNil appends a null value
func AppendNil(b []byte) []byte {
	return append(b, makeByte(majorTypeSimple, simpleNull))
}

// AppendUndefined appends an undefined simple value (23)
func AppendUndefined(b []byte) []byte {
	return append(b, makeByte(majorTypeSimple, simpleUndefined))
}

// AppendBool appends a bool
func AppendBool(b []byte, val bool) []byte {
	if val {
		return append(b, makeByte(majorTypeSimple, simpleTrue))
	}
	return append(b, makeByte(majorTypeSimple, simpleFalse))
}

// AppendFloat64 appends a float64. All floats are written in the 8-byte
// encoding; NaN and the infinities keep their IEEE-754 bit patterns.
func AppendFloat64(b []byte, f float64) []byte {
	o, n := ensure(b, Float64Size)
	o[n] = makeByte(majorTypeSimple, simpleFloat64)
	binary.BigEndian.PutUint64(o[n+1:], math.Float64bits(f))
	return o
}

// AppendInt64 appends an int64.
//
// For small values in the common ranges the encoding is specialized inline
// rather than routed through appendUintCore, preserving CBOR's major-type and
// additional-info layout.
func AppendInt64(b []byte, i int64) []byte {
	// Fast path for small positive values 0..23 (single-byte encoding).
	if i >= 0 && i <= addInfoDirect {
		return append(b, makeByte(majorTypeUint, uint8(i)))
	}
	// CBOR encodes negative integers as -1-n with unsigned argument n.
	if i < 0 {
		neg := -1 - i
		if neg <= addInfoDirect {
			return append(b, makeByte(majorTypeNegInt, uint8(neg)))
		}
		return appendUintCore(b, majorTypeNegInt, uint64(neg))
	}
	return appendUintCore(b, majorTypeUint, uint64(i))
}

// AppendInt appends an int
func AppendInt(b []byte, i int) []byte {
	return AppendInt64(b, int64(i))
}

// AppendUint64 appends a uint64
func AppendUint64(b []byte, u uint64) []byte {
	return appendUintCore(b, majorTypeUint, u)
}

// AppendUint appends a uint
func AppendUint(b []byte, u uint) []byte {
	return AppendUint64(b, uint64(u))
}

// AppendBytes appends a definite-length byte string
func AppendBytes(b []byte, data []byte) []byte {
	sz := uint64(len(data))
	// Compute head size and reserve in one shot to avoid double ensure + copy
	var h int
	switch {
	case sz <= addInfoDirect:
		h = 1
	case sz <= math.MaxUint8:
		h = 2
	case sz <= math.MaxUint16:
		h = 3
	case sz <= math.MaxUint32:
		h = 5
	default:
		h = 9
	}
	o, n := ensure(b, h+int(sz))
	switch h {
	case 1:
		o[n] = makeByte(majorTypeBytes, uint8(sz))
		n++
	case 2:
		o[n] = makeByte(majorTypeBytes, addInfoUint8)
		o[n+1] = uint8(sz)
		n += 2
	case 3:
		o[n] = makeByte(majorTypeBytes, addInfoUint16)
		binary.BigEndian.PutUint16(o[n+1:], uint16(sz))
		n += 3
	case 5:
		o[n] = makeByte(majorTypeBytes, addInfoUint32)
		binary.BigEndian.PutUint32(o[n+1:], uint32(sz))
		n += 5
	case 9:
		o[n] = makeByte(majorTypeBytes, addInfoUint64)
		binary.BigEndian.PutUint64(o[n+1:], sz)
		n += 9
	}
	copy(o[n:], data)
	return o[:n+int(sz)]
}

// AppendString appends a definite-length text string
func AppendString(b []byte, s string) []byte {
	sz := uint64(len(s))
	var h int
	switch {
	case sz <= addInfoDirect:
		h = 1
	case sz <= math.MaxUint8:
		h = 2
	case sz <= math.MaxUint16:
		h = 3
	case sz <= math.MaxUint32:
		h = 5
	default:
		h = 9
	}
	o, n := ensure(b, h+int(sz))
	switch h {
	case 1:
		o[n] = makeByte(majorTypeText, uint8(sz))
		n++
	case 2:
		o[n] = makeByte(majorTypeText, addInfoUint8)
		o[n+1] = uint8(sz)
		n += 2
	case 3:
		o[n] = makeByte(majorTypeText, addInfoUint16)
		binary.BigEndian.PutUint16(o[n+1:], uint16(sz))
		n += 3
	case 5:
		o[n] = makeByte(majorTypeText, addInfoUint32)
		binary.BigEndian.PutUint32(o[n+1:], uint32(sz))
		n += 5
	case 9:
		o[n] = makeByte(majorTypeText, addInfoUint64)
		binary.BigEndian.PutUint64(o[n+1:], sz)
		n += 9
	}
	copy(o[n:], s)
	return o[:n+int(sz)]
}

// AppendTag appends a semantic tag head. The caller must follow with exactly
// one data item.
func AppendTag(b []byte, tag uint64) []byte {
	return appendUintCore(b, majorTypeTag, tag)
}

// AppendTime appends a time.Time as CBOR tag 1 (epoch timestamp). Whole
// seconds are written as an integer, fractional seconds as a float.
func AppendTime(b []byte, t time.Time) []byte {
	b = AppendTag(b, tagEpochDateTime)
	sec := t.Unix()
	nsec := t.Nanosecond()
	if nsec == 0 {
		return AppendInt64(b, sec)
	}
	f := float64(sec) + float64(nsec)/1e9
	return AppendFloat64(b, f)
}

// AppendBignum appends a big integer using the bignum tags (2 positive,
// 3 negative) with the minimal big-endian magnitude byte string. The negative
// byte content carries the -1-v transform.
func AppendBignum(b []byte, z *bigmath.Int) []byte {
	if z == nil {
		return AppendNil(b)
	}
	if z.Sign() >= 0 {
		b = AppendTag(b, tagPosBignum)
		return AppendBytes(b, z.Bytes())
	}
	tmp := new(bigmath.Int).Neg(z)  // -z
	tmp.Sub(tmp, bigmath.NewInt(1)) // -z - 1
	b = AppendTag(b, tagNegBignum)
	return AppendBytes(b, tmp.Bytes())
}

// AppendInteger appends a big.Int as a native CBOR integer when the value
// fits a 64-bit head argument, falling back to the bignum tags otherwise.
// -(2^64) is the most negative value with a native encoding (argument
// 2^64-1 under major type 1).
func AppendInteger(b []byte, z *bigmath.Int) []byte {
	if z == nil {
		return AppendNil(b)
	}
	if z.Sign() >= 0 {
		if z.BitLen() <= 64 {
			return AppendUint64(b, z.Uint64())
		}
		return AppendBignum(b, z)
	}
	n := new(bigmath.Int).Neg(z)
	n.Sub(n, bigmath.NewInt(1)) // argument for major type 1
	if n.BitLen() <= 64 {
		return appendUintCore(b, majorTypeNegInt, n.Uint64())
	}
	return AppendBignum(b, z)
}
