package cbor

import (
	"errors"
	"testing"
	"time"
)

var (
	shpInt    = &ScalarDef{Name: "Count", Kind: ShapeInteger}
	shpLong   = &ScalarDef{Name: "Offset", Kind: ShapeLong}
	shpDouble = &ScalarDef{Name: "Ratio", Kind: ShapeDouble}
	shpBool   = &ScalarDef{Name: "Enabled", Kind: ShapeBoolean}
	shpString = &ScalarDef{Name: "Name", Kind: ShapeString}
	shpBlob   = &ScalarDef{Name: "Payload", Kind: ShapeBlob}
	shpTime   = &ScalarDef{Name: "CreatedAt", Kind: ShapeTimestamp}
)

func shapedHex(t *testing.T, s Shape, v any) []byte {
	t.Helper()
	e := NewEncoder(0)
	w := NewShapeWriter(e)
	if err := w.Write(s, v); err != nil {
		t.Fatalf("ShapeWriter.Write(%s, %#v): %v", s.ShapeName(), v, err)
	}
	return e.EncodedData()
}

func TestShapeScalars(t *testing.T) {
	checkHex(t, shapedHex(t, shpInt, 100), "1864")
	checkHex(t, shapedHex(t, shpInt, int32(-1)), "20")
	checkHex(t, shapedHex(t, shpLong, int64(1000000)), "1a000f4240")
	checkHex(t, shapedHex(t, shpDouble, 1.1), "fb3ff199999999999a")
	checkHex(t, shapedHex(t, shpBool, true), "f5")
	checkHex(t, shapedHex(t, shpString, "IETF"), "6449455446")
	checkHex(t, shapedHex(t, shpBlob, []byte{1, 2, 3, 4}), "4401020304")
}

func TestShapeIntegerRange(t *testing.T) {
	e := NewEncoder(0)
	w := NewShapeWriter(e)
	err := w.Write(shpInt, int64(1)<<40)
	var ov IntOverflow
	if !errors.As(err, &ov) {
		t.Fatalf("expected IntOverflow, got %v", err)
	}
	if ov.FailedBitsize != 32 {
		t.Fatalf("FailedBitsize = %d want 32", ov.FailedBitsize)
	}
	if err := w.Write(shpLong, int64(1)<<40); err != nil {
		t.Fatalf("long accepts the same value: %v", err)
	}
}

func TestShapeTimestamp(t *testing.T) {
	ts := time.Unix(1363896240, 0).UTC()
	// tag 1 with a full-width float payload
	checkHex(t, shapedHex(t, shpTime, ts), "c1fb41d452d9ec000000")

	half := time.Unix(1363896240, 500_000_000).UTC()
	checkHex(t, shapedHex(t, shpTime, half), "c1fb41d452d9ec200000")
}

func TestShapeMismatch(t *testing.T) {
	cases := []struct {
		s Shape
		v any
	}{
		{shpInt, "nope"},
		{shpBool, 1},
		{shpString, 1.5},
		{shpBlob, "text not blob"},
		{shpTime, "2013-03-21"},
	}
	for _, c := range cases {
		e := NewEncoder(0)
		w := NewShapeWriter(e)
		err := w.Write(c.s, c.v)
		var se ShapeError
		if !errors.As(err, &se) {
			t.Fatalf("Write(%s, %#v): expected ShapeError, got %v", c.s.ShapeName(), c.v, err)
		}
		if se.TypeName != c.s.ShapeName() {
			t.Fatalf("ShapeError.TypeName = %q want %q", se.TypeName, c.s.ShapeName())
		}
		if len(e.EncodedData()) != 0 {
			t.Fatalf("failed scalar write must not emit bytes, got %x", e.EncodedData())
		}
	}
}

func TestShapeList(t *testing.T) {
	ls := &ListDef{Name: "Names", Elem: shpString}
	checkHex(t, shapedHex(t, ls, []any{"a", "b"}), "8261616162")
	checkHex(t, shapedHex(t, ls, []string{"a", "b"}), "8261616162")
	checkHex(t, shapedHex(t, ls, []any{}), "80")
}

func TestShapeMap(t *testing.T) {
	ms := &MapDef{Name: "Counts", Elem: shpLong}
	checkHex(t, shapedHex(t, ms, Map{{Key: "a", Value: 1}, {Key: "b", Value: 2}}), "a2616101616202")
	checkHex(t, shapedHex(t, ms, map[string]any{"a": 1}), "a1616101")
}

func TestShapeStructureDropsNilMembers(t *testing.T) {
	st := &StructDef{
		Name: "Device",
		Fields: []Member{
			{Name: "name", Shape: shpString},
			{Name: "count", Shape: shpInt},
			{Name: "ratio", Shape: shpDouble},
		},
	}
	// count absent, ratio explicitly nil: both dropped, header counts 1
	v := map[string]any{"name": "x", "ratio": nil}
	checkHex(t, shapedHex(t, st, v), "a1646e616d656178")

	// all present, emitted in declared member order regardless of source
	v = map[string]any{"ratio": 2.5, "name": "x", "count": 3}
	checkHex(t, shapedHex(t, st, v), "a3646e616d65617865636f756e740365726174696ffb4004000000000000")

	// ordered source works the same way
	ov := Map{{Key: "count", Value: 3}, {Key: "name", Value: "x"}}
	checkHex(t, shapedHex(t, st, ov), "a2646e616d656178"+"65636f756e7403")
}

func TestShapeNestedStructure(t *testing.T) {
	inner := &StructDef{Name: "Point", Fields: []Member{
		{Name: "x", Shape: shpLong},
		{Name: "y", Shape: shpLong},
	}}
	outer := &StructDef{Name: "Path", Fields: []Member{
		{Name: "points", Shape: &ListDef{Name: "Points", Elem: inner}},
	}}
	v := map[string]any{
		"points": []any{
			map[string]any{"x": 1, "y": 2},
			map[string]any{"x": 3, "y": nil},
		},
	}
	checkHex(t, shapedHex(t, outer, v),
		"a166706f696e747382a26178016179" + "02a1617803")
}

func TestShapeScalarConverter(t *testing.T) {
	conv := func(s Shape, v any) (any, error) {
		if s.ShapeKind() == ShapeString {
			if b, ok := v.([]byte); ok {
				return string(b), nil
			}
		}
		return v, nil
	}
	e := NewEncoder(0)
	w := NewShapeWriter(e, WithScalarConverter(conv))
	if err := w.Write(shpString, []byte("ok")); err != nil {
		t.Fatalf("converted write: %v", err)
	}
	checkHex(t, e.EncodedData(), "626f6b")
}

func TestShapeUnknownKind(t *testing.T) {
	bad := &ScalarDef{Name: "Mystery", Kind: ShapeKind(200)}
	e := NewEncoder(0)
	w := NewShapeWriter(e)
	err := w.Write(bad, 1)
	var ue UnknownShapeTypeError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnknownShapeTypeError, got %v", err)
	}
	if ue.TypeName != "Mystery" {
		t.Fatalf("TypeName = %q", ue.TypeName)
	}
}

func TestWriteDataItemShaped(t *testing.T) {
	e := NewEncoder(0)
	if err := WriteDataItemShaped(e, shpInt, 7); err != nil {
		t.Fatalf("shaped write: %v", err)
	}
	if err := e.WriteText("next"); err != nil {
		t.Fatalf("interleaved write: %v", err)
	}
	checkHex(t, e.EncodedData(), "07646e657874")
}

func TestShapeStructureWireNames(t *testing.T) {
	dev := &StructDef{Name: "Device", Fields: []Member{
		{Name: "deviceName", Wire: "dn", Shape: shpString},
		{Name: "count", Shape: shpInt},
	}}
	if got := dev.SerializationName("deviceName"); got != "dn" {
		t.Fatalf("SerializationName(deviceName) = %q", got)
	}
	if got := dev.SerializationName("count"); got != "count" {
		t.Fatalf("SerializationName(count) = %q", got)
	}

	// {"dn": "x", "count": 1} with members looked up by their model names
	got := shapedHex(t, dev, map[string]any{"deviceName": "x", "count": 1})
	checkHex(t, got, "a262646e617865636f756e7401")
}

func TestShapeMapKeyShape(t *testing.T) {
	byID := &MapDef{Name: "ByID", Keys: shpLong, Elem: shpDouble}

	// {1: 0.5, -2: 1.0}
	got := shapedHex(t, byID, Map{
		{Key: int64(1), Value: 0.5},
		{Key: int64(-2), Value: 1.0},
	})
	checkHex(t, got, "a201fb3fe000000000000021fb3ff0000000000000")

	// a key the key shape cannot encode
	e := NewEncoder(0)
	err := NewShapeWriter(e).Write(byID, Map{{Key: "oops", Value: 1.0}})
	var se ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("expected ShapeError for string key under long keys, got %v", err)
	}

	// nil key shape keeps plain text-string keys
	plain := &MapDef{Name: "Plain", Elem: shpInt}
	checkHex(t, shapedHex(t, plain, Map{{Key: "a", Value: 1}}), "a1616101")
}
