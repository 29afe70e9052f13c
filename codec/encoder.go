package cbor

import (
	bigmath "math/big"
	"reflect"
	"time"
)

// Encoder accumulates a CBOR encoding in memory. It tracks open
// indefinite-length containers so an unmatched WriteBreak is rejected at
// write time rather than surfacing as malformed output. The zero value is
// ready to use.
type Encoder struct {
	buf  []byte
	open []uint8
}

// NewEncoder returns an Encoder with the given initial buffer capacity.
func NewEncoder(sizeHint int) *Encoder {
	return &Encoder{buf: make([]byte, 0, sizeHint)}
}

// EncodedData returns the bytes written so far. It does not reset the
// Encoder and may be called repeatedly; later writes extend the same
// encoding. The returned slice aliases the Encoder's buffer.
func (e *Encoder) EncodedData() []byte { return e.buf }

// Reset truncates the encoding and forgets any open containers, keeping the
// allocated buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
	e.open = e.open[:0]
}

// WriteUint writes an unsigned integer.
func (e *Encoder) WriteUint(u uint64) error {
	e.buf = AppendUint64(e.buf, u)
	return nil
}

// WriteInt writes a signed integer under whichever major type its sign
// selects.
func (e *Encoder) WriteInt(i int64) error {
	e.buf = AppendInt64(e.buf, i)
	return nil
}

// WriteBigInt writes an arbitrary-precision integer, using a native head
// when the magnitude fits and a tag 2/3 bignum otherwise.
func (e *Encoder) WriteBigInt(z *bigmath.Int) error {
	e.buf = AppendInteger(e.buf, z)
	return nil
}

// WriteFloat writes a float. All floats are emitted at full width; NaN and
// the infinities are preserved bit-for-bit.
func (e *Encoder) WriteFloat(f float64) error {
	e.buf = AppendFloat64(e.buf, f)
	return nil
}

// WriteBool writes a boolean.
func (e *Encoder) WriteBool(v bool) error {
	e.buf = AppendBool(e.buf, v)
	return nil
}

// WriteNull writes a null item.
func (e *Encoder) WriteNull() error {
	e.buf = AppendNil(e.buf)
	return nil
}

// WriteUndefined writes the undefined simple value.
func (e *Encoder) WriteUndefined() error {
	e.buf = AppendUndefined(e.buf)
	return nil
}

// WriteBytes writes a definite-length byte string.
func (e *Encoder) WriteBytes(v []byte) error {
	e.buf = AppendBytes(e.buf, v)
	return nil
}

// WriteText writes a definite-length text string. The caller is responsible
// for providing valid UTF-8.
func (e *Encoder) WriteText(s string) error {
	e.buf = AppendString(e.buf, s)
	return nil
}

// WriteArrayStart writes a definite-length array head. The caller must
// follow it with exactly sz items.
func (e *Encoder) WriteArrayStart(sz uint64) error {
	e.buf = AppendArrayHeader(e.buf, sz)
	return nil
}

// WriteMapStart writes a definite-length map head. The caller must follow
// it with exactly sz key/value pairs.
func (e *Encoder) WriteMapStart(sz uint64) error {
	e.buf = AppendMapHeader(e.buf, sz)
	return nil
}

// WriteTag writes a semantic tag head. The caller must follow it with the
// tagged item.
func (e *Encoder) WriteTag(num uint64) error {
	e.buf = AppendTag(e.buf, num)
	return nil
}

// WriteTime writes t as a tag 1 epoch timestamp.
func (e *Encoder) WriteTime(t time.Time) error {
	e.buf = AppendTime(e.buf, t)
	return nil
}

// WriteIndefBytesStart opens an indefinite-length byte string. Only
// definite byte-string fragments may follow until the matching WriteBreak.
func (e *Encoder) WriteIndefBytesStart() error {
	e.buf = AppendBytesHeaderIndefinite(e.buf)
	e.open = append(e.open, majorTypeBytes)
	return nil
}

// WriteIndefTextStart opens an indefinite-length text string.
func (e *Encoder) WriteIndefTextStart() error {
	e.buf = AppendTextHeaderIndefinite(e.buf)
	e.open = append(e.open, majorTypeText)
	return nil
}

// WriteIndefArrayStart opens an indefinite-length array.
func (e *Encoder) WriteIndefArrayStart() error {
	e.buf = AppendArrayHeaderIndefinite(e.buf)
	e.open = append(e.open, majorTypeArray)
	return nil
}

// WriteIndefMapStart opens an indefinite-length map.
func (e *Encoder) WriteIndefMapStart() error {
	e.buf = AppendMapHeaderIndefinite(e.buf)
	e.open = append(e.open, majorTypeMap)
	return nil
}

// WriteBreak closes the innermost open indefinite-length container. With no
// container open it fails with ErrUnmatchedBreak and writes nothing.
func (e *Encoder) WriteBreak() error {
	if len(e.open) == 0 {
		return ErrUnmatchedBreak
	}
	e.open = e.open[:len(e.open)-1]
	e.buf = AppendBreak(e.buf)
	return nil
}

// WriteDataItem writes an arbitrary value from the closed union documented
// in item.go, recursing into containers. Aggregate Go conveniences
// ([]string, map[string]any and friends) are accepted alongside the union.
// Any value outside the union, at any depth, fails with ErrUnsupportedType
// naming the offending Go type.
func (e *Encoder) WriteDataItem(v any) error {
	b, err := AppendDataItem(e.buf, v)
	if err != nil {
		return err
	}
	e.buf = b
	return nil
}

// AppendDataItem appends the encoding of an arbitrary value to b. It is the
// append-layer twin of Encoder.WriteDataItem.
func AppendDataItem(b []byte, v any) ([]byte, error) {
	switch v := v.(type) {
	case nil:
		return AppendNil(b), nil
	case bool:
		return AppendBool(b, v), nil
	case int:
		return AppendInt64(b, int64(v)), nil
	case int8:
		return AppendInt64(b, int64(v)), nil
	case int16:
		return AppendInt64(b, int64(v)), nil
	case int32:
		return AppendInt64(b, int64(v)), nil
	case int64:
		return AppendInt64(b, v), nil
	case uint:
		return AppendUint64(b, uint64(v)), nil
	case uint8:
		return AppendUint64(b, uint64(v)), nil
	case uint16:
		return AppendUint64(b, uint64(v)), nil
	case uint32:
		return AppendUint64(b, uint64(v)), nil
	case uint64:
		return AppendUint64(b, v), nil
	case float32:
		return AppendFloat64(b, float64(v)), nil
	case float64:
		return AppendFloat64(b, v), nil
	case string:
		return AppendString(b, v), nil
	case []byte:
		return AppendBytes(b, v), nil
	case *bigmath.Int:
		return AppendInteger(b, v), nil
	case time.Time:
		return AppendTime(b, v), nil
	case Undefined:
		return AppendUndefined(b), nil
	case Tag:
		b = AppendTag(b, v.Num)
		return AppendDataItem(b, v.Content)
	case Map:
		b = AppendMapHeader(b, uint64(len(v)))
		var err error
		for _, ent := range v {
			if b, err = AppendDataItem(b, ent.Key); err != nil {
				return b, err
			}
			if b, err = AppendDataItem(b, ent.Value); err != nil {
				return b, err
			}
		}
		return b, nil
	case []any:
		b = AppendArrayHeader(b, uint64(len(v)))
		var err error
		for _, el := range v {
			if b, err = AppendDataItem(b, el); err != nil {
				return b, err
			}
		}
		return b, nil
	case []string:
		b = AppendArrayHeader(b, uint64(len(v)))
		for _, s := range v {
			b = AppendString(b, s)
		}
		return b, nil
	case map[string]any:
		b = AppendMapHeader(b, uint64(len(v)))
		var err error
		for k, el := range v {
			b = AppendString(b, k)
			if b, err = AppendDataItem(b, el); err != nil {
				return b, err
			}
		}
		return b, nil
	case map[string]string:
		b = AppendMapHeader(b, uint64(len(v)))
		for k, el := range v {
			b = AppendString(b, k)
			b = AppendString(b, el)
		}
		return b, nil
	case Marshaler:
		return v.MarshalCBOR(b)
	default:
		return b, &ErrUnsupportedType{T: reflect.TypeOf(v)}
	}
}
