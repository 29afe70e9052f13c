package cbor

import (
	"encoding/hex"
	"math"
	"strconv"
)

// DiagBytes renders the next data item in RFC 8949 diagnostic notation and
// returns the remaining bytes. Indefinite-length items render with the
// `(_ ...)`, `[_ ...]` and `{_ ...}` spellings.
func DiagBytes(b []byte) (string, []byte, error) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	rest, err := diagItem(bb, b, 0)
	if err != nil {
		return "", b, err
	}
	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return string(out), rest, nil
}

func diagItem(buf *ByteBuffer, b []byte, depth int) ([]byte, error) {
	if depth > maxNestingDepth {
		return b, ErrMaxDepthExceeded
	}
	t, err := PeekTypeBytes(b)
	if err != nil {
		return b, err
	}

	switch t {
	case UnsignedInt:
		u, o, err := ReadUint64Bytes(b)
		if err != nil {
			return b, err
		}
		buf.WriteString(strconv.FormatUint(u, 10))
		return o, nil

	case NegativeInt:
		n, o, err := readUintCore(b, majorTypeNegInt)
		if err != nil {
			return b, err
		}
		if n > math.MaxInt64 {
			buf.WriteString(negBig(n).String())
			return o, nil
		}
		buf.WriteString(strconv.FormatInt(-1-int64(n), 10))
		return o, nil

	case Bytes:
		bs, o, err := ReadBytesBytes(b, nil)
		if err != nil {
			return b, err
		}
		writeHexLiteral(buf, bs)
		return o, nil

	case IndefBytes:
		p := b[1:]
		buf.WriteString("(_")
		first := true
		for {
			rest, done, err := ReadBreakBytes(p)
			if err != nil {
				return b, err
			}
			if done {
				buf.WriteString(")")
				return rest, nil
			}
			chunk, o, err := ReadBytesBytes(p, nil)
			if err != nil {
				return b, err
			}
			diagSep(buf, &first)
			writeHexLiteral(buf, chunk)
			p = o
		}

	case Text:
		s, o, err := ReadStringBytes(b)
		if err != nil {
			return b, err
		}
		buf.WriteString(strconv.Quote(s))
		return o, nil

	case IndefText:
		p := b[1:]
		buf.WriteString("(_")
		first := true
		for {
			rest, done, err := ReadBreakBytes(p)
			if err != nil {
				return b, err
			}
			if done {
				buf.WriteString(")")
				return rest, nil
			}
			chunk, o, err := ReadStringZC(p)
			if err != nil {
				return b, err
			}
			diagSep(buf, &first)
			buf.WriteString(strconv.Quote(string(chunk)))
			p = o
		}

	case ArrayStart, IndefArray:
		sz, indef, p, err := ReadArrayStartBytes(b)
		if err != nil {
			return b, err
		}
		if indef {
			buf.WriteString("[_")
			first := true
			for {
				rest, done, err := ReadBreakBytes(p)
				if err != nil {
					return b, err
				}
				if done {
					buf.WriteString("]")
					return rest, nil
				}
				diagSep(buf, &first)
				if p, err = diagItem(buf, p, depth+1); err != nil {
					return b, err
				}
			}
		}
		buf.WriteString("[")
		for i := uint64(0); i < sz; i++ {
			if i > 0 {
				buf.WriteString(", ")
			}
			if p, err = diagItem(buf, p, depth+1); err != nil {
				return b, err
			}
		}
		buf.WriteString("]")
		return p, nil

	case MapStart, IndefMap:
		sz, indef, p, err := ReadMapStartBytes(b)
		if err != nil {
			return b, err
		}
		if indef {
			buf.WriteString("{_")
			first := true
			for {
				rest, done, err := ReadBreakBytes(p)
				if err != nil {
					return b, err
				}
				if done {
					buf.WriteString("}")
					return rest, nil
				}
				diagSep(buf, &first)
				if p, err = diagPair(buf, p, depth); err != nil {
					return b, err
				}
			}
		}
		buf.WriteString("{")
		for i := uint64(0); i < sz; i++ {
			if i > 0 {
				buf.WriteString(", ")
			}
			if p, err = diagPair(buf, p, depth); err != nil {
				return b, err
			}
		}
		buf.WriteString("}")
		return p, nil

	case TagType:
		tag, o, err := ReadTagBytes(b)
		if err != nil {
			return b, err
		}
		buf.WriteString(strconv.FormatUint(tag, 10))
		buf.WriteString("(")
		o2, err := diagItem(buf, o, depth+1)
		if err != nil {
			return b, err
		}
		buf.WriteString(")")
		return o2, nil

	case Bool:
		v, o, err := ReadBoolBytes(b)
		if err != nil {
			return b, err
		}
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return o, nil

	case Null:
		buf.WriteString("null")
		return b[1:], nil

	case Undef:
		buf.WriteString("undefined")
		return b[1:], nil

	case Float:
		f, o, err := ReadFloat64Bytes(b)
		if err != nil {
			return b, err
		}
		buf.WriteString(formatFloatDiag(f))
		return o, nil

	case Break:
		return b, ErrUnmatchedBreak

	default:
		add := getAddInfo(b[0])
		if add < simpleFalse {
			buf.WriteString("simple(" + strconv.Itoa(int(add)) + ")")
			return b[1:], nil
		}
		if add == addInfoUint8 {
			if len(b) < 2 {
				return b, ErrShortBytes
			}
			buf.WriteString("simple(" + strconv.Itoa(int(b[1])) + ")")
			return b[2:], nil
		}
		return b, InvalidAdditionalInfoError{Major: getMajorType(b[0]), Info: add}
	}
}

func diagPair(buf *ByteBuffer, p []byte, depth int) ([]byte, error) {
	p, err := diagItem(buf, p, depth+1)
	if err != nil {
		return p, err
	}
	buf.WriteString(": ")
	return diagItem(buf, p, depth+1)
}

func diagSep(buf *ByteBuffer, first *bool) {
	if *first {
		buf.WriteString(" ")
		*first = false
	} else {
		buf.WriteString(", ")
	}
}

func writeHexLiteral(buf *ByteBuffer, bs []byte) {
	buf.WriteString("h'")
	d := buf.Extend(hex.EncodedLen(len(bs)))
	hex.Encode(d, bs)
	buf.WriteString("'")
}

// formatFloatDiag matches the float spellings used in the RFC's diagnostic
// examples: integral floats carry a trailing ".0" so they stay visually
// distinct from integers.
func formatFloatDiag(f float64) string {
	if math.IsInf(f, +1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	var s string
	if af := math.Abs(f); af == 0 || af < 1e15 {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	} else {
		s = strconv.FormatFloat(f, 'g', -1, 64)
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == 'e' {
			return s
		}
	}
	return s + ".0"
}
