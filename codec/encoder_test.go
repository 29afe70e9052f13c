package cbor

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"testing"
)

func TestEncoderScalars(t *testing.T) {
	e := NewEncoder(0)
	e.WriteUint(100)
	e.WriteInt(-100)
	e.WriteFloat(1.1)
	e.WriteBool(true)
	e.WriteNull()
	e.WriteUndefined()
	e.WriteText("IETF")
	e.WriteBytes([]byte{1, 2, 3, 4})
	checkHex(t, e.EncodedData(), "18643863fb3ff199999999999af5f6f76449455446"+"4401020304")
}

func TestEncoderEncodedDataRepeatable(t *testing.T) {
	e := NewEncoder(8)
	e.WriteUint(1)
	first := append([]byte(nil), e.EncodedData()...)
	if !bytes.Equal(e.EncodedData(), first) {
		t.Fatal("EncodedData must be repeatable")
	}
	e.WriteUint(2)
	checkHex(t, e.EncodedData(), "0102")
}

func TestEncoderIndefiniteContainers(t *testing.T) {
	e := NewEncoder(0)
	e.WriteIndefArrayStart()
	e.WriteUint(1)
	e.WriteIndefMapStart()
	e.WriteText("a")
	e.WriteUint(2)
	if err := e.WriteBreak(); err != nil {
		t.Fatalf("inner break: %v", err)
	}
	if err := e.WriteBreak(); err != nil {
		t.Fatalf("outer break: %v", err)
	}
	checkHex(t, e.EncodedData(), "9f01bf616102ffff")

	if err := e.WriteBreak(); !errors.Is(err, ErrUnmatchedBreak) {
		t.Fatalf("expected ErrUnmatchedBreak, got %v", err)
	}
	// the failed break must not have written anything
	checkHex(t, e.EncodedData(), "9f01bf616102ffff")
}

func TestEncoderBreakWithNothingOpen(t *testing.T) {
	e := NewEncoder(0)
	if err := e.WriteBreak(); !errors.Is(err, ErrUnmatchedBreak) {
		t.Fatalf("expected ErrUnmatchedBreak, got %v", err)
	}
	if len(e.EncodedData()) != 0 {
		t.Fatal("encoding must be untouched after rejected break")
	}
}

func TestEncoderBigIntBoundaries(t *testing.T) {
	negMin, _ := new(big.Int).SetString("-18446744073709551616", 10)
	e := NewEncoder(0)
	e.WriteBigInt(new(big.Int).SetUint64(math.MaxUint64))
	e.WriteBigInt(negMin)
	checkHex(t, e.EncodedData(), "1bffffffffffffffff3bffffffffffffffff")

	big65, _ := new(big.Int).SetString("36893488147419103232", 10)
	e.Reset()
	e.WriteBigInt(big65)
	checkHex(t, e.EncodedData(), "c249020000000000000000")
}

func TestWriteDataItemDispatch(t *testing.T) {
	e := NewEncoder(0)
	err := e.WriteDataItem([]any{
		uint64(1),
		int64(-1),
		"a",
		[]byte{0xff},
		true,
		nil,
		Undefined{},
		Tag{Num: 1, Content: uint64(1363896240)},
		Map{{Key: "k", Value: uint64(2)}},
	})
	if err != nil {
		t.Fatalf("WriteDataItem: %v", err)
	}
	checkHex(t, e.EncodedData(), "890120616141fff5f6f7c11a514b67b0a1616b02")
}

func TestWriteDataItemUnsupported(t *testing.T) {
	type opaque struct{ x int }

	cases := []struct {
		name string
		v    any
	}{
		{"top-level", opaque{1}},
		{"inside-list", []any{uint64(1), opaque{1}}},
		{"as-map-key", Map{{Key: opaque{1}, Value: uint64(1)}}},
		{"as-map-value", Map{{Key: "k", Value: opaque{1}}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := NewEncoder(0)
			err := e.WriteDataItem(c.v)
			var ut *ErrUnsupportedType
			if !errors.As(err, &ut) {
				t.Fatalf("expected ErrUnsupportedType, got %v", err)
			}
			if want := "opaque"; ut.T == nil || !bytes.Contains([]byte(ut.T.String()), []byte(want)) {
				t.Fatalf("error must name the offending type, got %v", ut.T)
			}
		})
	}
}

func TestWriteDataItemMarshaler(t *testing.T) {
	e := NewEncoder(0)
	if err := e.WriteDataItem(Raw(mustHex(t, "83010203"))); err != nil {
		t.Fatalf("WriteDataItem(Raw): %v", err)
	}
	checkHex(t, e.EncodedData(), "83010203")
}
