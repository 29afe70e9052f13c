package cbor

import (
	"errors"
	"math/big"
	"reflect"
	"testing"
	"time"
)

func TestDecoderTypedPops(t *testing.T) {
	d := NewDecoder(mustHex(t, "18643863fb3ff199999999999af5f6644945544644010203049f01ff"))
	if v, err := d.PopNextUnsignedInt(); err != nil || v != 100 {
		t.Fatalf("PopNextUnsignedInt: %d %v", v, err)
	}
	if v, err := d.PopNextNegativeInt(); err != nil || v != -100 {
		t.Fatalf("PopNextNegativeInt: %d %v", v, err)
	}
	if v, err := d.PopNextFloat(); err != nil || v != 1.1 {
		t.Fatalf("PopNextFloat: %v %v", v, err)
	}
	if v, err := d.PopNextBool(); err != nil || !v {
		t.Fatalf("PopNextBool: %v %v", v, err)
	}
	if err := d.PopNextNull(); err != nil {
		t.Fatalf("PopNextNull: %v", err)
	}
	if v, err := d.PopNextText(); err != nil || v != "IETF" {
		t.Fatalf("PopNextText: %q %v", v, err)
	}
	if v, err := d.PopNextBytes(); err != nil || len(v) != 4 {
		t.Fatalf("PopNextBytes: %x %v", v, err)
	}
	sz, indef, err := d.PopNextArrayStart()
	if err != nil || !indef || sz != 0 {
		t.Fatalf("PopNextArrayStart: %d %v %v", sz, indef, err)
	}
	if v, err := d.PopNextUnsignedInt(); err != nil || v != 1 {
		t.Fatalf("array element: %d %v", v, err)
	}
	if err := d.PopNextBreak(); err != nil {
		t.Fatalf("PopNextBreak: %v", err)
	}
	if d.RemainingLen() != 0 {
		t.Fatalf("leftover %d bytes", d.RemainingLen())
	}
}

func TestDecoderTypeMismatch(t *testing.T) {
	d := NewDecoder(mustHex(t, "6161")) // "a"
	_, err := d.PopNextUnsignedInt()
	var te TypeError
	if !errors.As(err, &te) {
		t.Fatalf("expected TypeError, got %v", err)
	}
	if te.Encoded != Text {
		t.Fatalf("TypeError.Encoded = %v want Text", te.Encoded)
	}
	// the cursor must not have advanced past the mismatching item
	if v, err := d.PopNextText(); err != nil || v != "a" {
		t.Fatalf("retry after mismatch: %q %v", v, err)
	}
}

func TestDecoderSignMismatch(t *testing.T) {
	d := NewDecoder(mustHex(t, "20")) // -1
	if _, err := d.PopNextUnsignedInt(); err == nil {
		t.Fatal("negative int must not pop as unsigned")
	}
	d = NewDecoder(mustHex(t, "01"))
	if _, err := d.PopNextNegativeInt(); err == nil {
		t.Fatal("unsigned int must not pop as negative")
	}
}

func TestPopNextDataItemScalars(t *testing.T) {
	cases := []struct {
		hex  string
		want any
	}{
		{"00", uint64(0)},
		{"1bffffffffffffffff", uint64(18446744073709551615)},
		{"20", int64(-1)},
		{"3b7fffffffffffffff", int64(-9223372036854775808)},
		{"fb3ff199999999999a", 1.1},
		{"f93c00", 1.0},
		{"f4", false},
		{"f6", nil},
		{"f7", Undefined{}},
		{"6161", "a"},
		{"80", []any{}},
		{"a0", Map{}},
	}
	for _, c := range cases {
		d := NewDecoder(mustHex(t, c.hex))
		got, err := d.PopNextDataItem()
		if err != nil {
			t.Fatalf("PopNextDataItem(%s): %v", c.hex, err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("PopNextDataItem(%s) = %#v want %#v", c.hex, got, c.want)
		}
	}
}

func TestPopNextDataItemBigBoundaries(t *testing.T) {
	// -(2^64): native head past int64 becomes a big.Int
	d := NewDecoder(mustHex(t, "3bffffffffffffffff"))
	got, err := d.PopNextDataItem()
	if err != nil {
		t.Fatalf("PopNextDataItem: %v", err)
	}
	want, _ := new(big.Int).SetString("-18446744073709551616", 10)
	z, ok := got.(*big.Int)
	if !ok || z.Cmp(want) != 0 {
		t.Fatalf("got %#v want %s", got, want)
	}

	// tag 2 / tag 3 bignums
	d = NewDecoder(mustHex(t, "c249010000000000000000c349010000000000000000"))
	got, err = d.PopNextDataItem()
	if err != nil {
		t.Fatalf("pos bignum: %v", err)
	}
	want, _ = new(big.Int).SetString("18446744073709551616", 10)
	if got.(*big.Int).Cmp(want) != 0 {
		t.Fatalf("pos bignum = %v", got)
	}
	got, err = d.PopNextDataItem()
	if err != nil {
		t.Fatalf("neg bignum: %v", err)
	}
	want, _ = new(big.Int).SetString("-18446744073709551617", 10)
	if got.(*big.Int).Cmp(want) != 0 {
		t.Fatalf("neg bignum = %v", got)
	}
}

func TestPopNextDataItemContainers(t *testing.T) {
	// {"a": 1, "b": [_ 2, 3]}
	d := NewDecoder(mustHex(t, "a26161016162" + "9f0203ff"))
	got, err := d.PopNextDataItem()
	if err != nil {
		t.Fatalf("PopNextDataItem: %v", err)
	}
	want := Map{
		{Key: "a", Value: uint64(1)},
		{Key: "b", Value: []any{uint64(2), uint64(3)}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestPopNextDataItemTagPolicy(t *testing.T) {
	// tag 0 (and any other uninterpreted tag) is an error
	d := NewDecoder(mustHex(t, "c074323031332d30332d32315432303a30343a30305a"))
	_, err := d.PopNextDataItem()
	var ut UnsupportedTagError
	if !errors.As(err, &ut) {
		t.Fatalf("expected UnsupportedTagError for tag 0, got %v", err)
	}
	if ut.Num != 0 {
		t.Fatalf("UnsupportedTagError.Num = %d want 0", ut.Num)
	}

	// tag 1 without a converter passes through structurally
	d = NewDecoder(mustHex(t, "c11a514b67b0"))
	got, err := d.PopNextDataItem()
	if err != nil {
		t.Fatalf("tag 1 passthrough: %v", err)
	}
	if want := (Tag{Num: 1, Content: uint64(1363896240)}); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}

	// tag 1 with the stock converter yields a time.Time
	d = NewDecoder(mustHex(t, "c11a514b67b0"), WithEpochTime(EpochTime))
	got, err = d.PopNextDataItem()
	if err != nil {
		t.Fatalf("tag 1 converted: %v", err)
	}
	ts, ok := got.(time.Time)
	if !ok || !ts.Equal(time.Unix(1363896240, 0)) {
		t.Fatalf("got %#v want 2013-03-21T20:04:00Z", got)
	}

	// fractional epoch: 1(1363896240.5)
	d = NewDecoder(mustHex(t, "c1fb41d452d9ec200000"), WithEpochTime(EpochTime))
	got, err = d.PopNextDataItem()
	if err != nil {
		t.Fatalf("fractional epoch: %v", err)
	}
	if ts := got.(time.Time); !ts.Equal(time.Unix(1363896240, 500_000_000)) {
		t.Fatalf("fractional epoch = %v", ts)
	}

	// tag 1 with a non-numeric payload is malformed
	d = NewDecoder(mustHex(t, "c16161"))
	if _, err := d.PopNextDataItem(); err == nil {
		t.Fatal("tag 1 over text must error")
	}
}

func TestDecoderContainerLimit(t *testing.T) {
	d := NewDecoder(mustHex(t, "9819"), WithMaxContainerLen(10))
	if _, _, err := d.PopNextArrayStart(); !errors.Is(err, ErrContainerTooLarge) {
		t.Fatalf("expected ErrContainerTooLarge, got %v", err)
	}
	d = NewDecoder(mustHex(t, "83010203"), WithMaxContainerLen(10))
	if _, err := d.PopNextList(); err != nil {
		t.Fatalf("within limit: %v", err)
	}
}

func TestDecoderHugeDeclaredCountIsTruncation(t *testing.T) {
	// array claiming 2^32-1 elements with no content must not allocate
	d := NewDecoder(mustHex(t, "9affffffff"))
	if _, err := d.PopNextDataItem(); !errors.Is(err, ErrShortBytes) {
		t.Fatalf("expected ErrShortBytes, got %v", err)
	}
}

func TestDecoderConsume(t *testing.T) {
	d := NewDecoder(mustHex(t, "83010203" + "1864"))
	if err := d.ConsumeNextDataItem(); err != nil {
		t.Fatalf("ConsumeNextDataItem: %v", err)
	}
	if v, err := d.PopNextUnsignedInt(); err != nil || v != 100 {
		t.Fatalf("after consume: %d %v", v, err)
	}

	d = NewDecoder(mustHex(t, "83010203"))
	if err := d.ConsumeNextElement(); err != nil {
		t.Fatalf("ConsumeNextElement: %v", err)
	}
	if d.RemainingLen() != 3 {
		t.Fatalf("element consume must stop after the head, leftover %d", d.RemainingLen())
	}
}

func TestDecoderZeroCopyStrings(t *testing.T) {
	src := mustHex(t, "6449455446")
	d := NewDecoder(src, WithZeroCopyStrings())
	s, err := d.PopNextText()
	if err != nil || s != "IETF" {
		t.Fatalf("zero-copy text: %q %v", s, err)
	}
}

func TestPopNextRaw(t *testing.T) {
	d := NewDecoder(mustHex(t, "83010203f5"))
	raw, err := d.PopNextRaw()
	if err != nil {
		t.Fatalf("PopNextRaw: %v", err)
	}
	checkHex(t, raw, "83010203")
	if v, err := d.PopNextBool(); err != nil || !v {
		t.Fatalf("after raw: %v %v", v, err)
	}
}
