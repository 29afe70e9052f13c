package benchmarks

import (
	json "encoding/json"
	"testing"
	"time"

	fxcbor "github.com/fxamacker/cbor/v2"
	msgp "github.com/tinylib/msgp/msgp"

	cbor "github.com/shapewire/cbor.go/codec"
	"github.com/shapewire/cbor.go/tests/shapes"
)

// benchDevice mirrors the shapes.Device fixture with plain Go types so the
// comparison encoders can work from the same data.
func benchDevice() map[string]any {
	return map[string]any{
		"name":        "sensor-001",
		"attributes":  map[string]any{"site": "plant-7", "rack": "b12"},
		"readings":    []any{20.0, 20.25, 20.5, 20.75},
		"sampleCount": 4,
	}
}

func mustEncodeDevice(b *testing.B) []byte {
	b.Helper()
	enc, err := shapes.EncodeDevice(shapes.BuildDeviceFixture(4))
	if err != nil {
		b.Fatalf("EncodeDevice: %v", err)
	}
	return enc
}

func BenchmarkShapedEncode(b *testing.B) {
	fix := shapes.BuildDeviceFixture(4)
	e := cbor.NewEncoder(256)
	w := cbor.NewShapeWriter(e)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Reset()
		if err := w.Write(shapes.Device, fix); err != nil {
			b.Fatalf("Write: %v", err)
		}
	}
}

func BenchmarkDataItemEncode(b *testing.B) {
	v := benchDevice()
	e := cbor.NewEncoder(256)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Reset()
		if err := e.WriteDataItem(v); err != nil {
			b.Fatalf("WriteDataItem: %v", err)
		}
	}
}

func BenchmarkStreamedEncode(b *testing.B) {
	e := cbor.NewEncoder(256)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Reset()
		e.WriteMapStart(3)
		e.WriteText("name")
		e.WriteText("sensor-001")
		e.WriteText("readings")
		e.WriteArrayStart(4)
		e.WriteFloat(20.0)
		e.WriteFloat(20.25)
		e.WriteFloat(20.5)
		e.WriteFloat(20.75)
		e.WriteText("reportedAt")
		e.WriteTime(ts)
	}
}

func BenchmarkDataItemDecode(b *testing.B) {
	enc := mustEncodeDevice(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d := cbor.NewDecoder(enc, cbor.WithEpochTime(cbor.EpochTime))
		if _, err := d.PopNextDataItem(); err != nil {
			b.Fatalf("PopNextDataItem: %v", err)
		}
	}
}

func BenchmarkSkip(b *testing.B) {
	enc := mustEncodeDevice(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := cbor.Skip(enc); err != nil {
			b.Fatalf("Skip: %v", err)
		}
	}
}

func BenchmarkValidate(b *testing.B) {
	enc := mustEncodeDevice(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := cbor.ValidateDocument(enc); err != nil {
			b.Fatalf("ValidateDocument: %v", err)
		}
	}
}

func BenchmarkFxamackerEncode(b *testing.B) {
	v := benchDevice()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := fxcbor.Marshal(v); err != nil {
			b.Fatalf("fxcbor.Marshal: %v", err)
		}
	}
}

func BenchmarkFxamackerDecode(b *testing.B) {
	enc, err := fxcbor.Marshal(benchDevice())
	if err != nil {
		b.Fatalf("fxcbor.Marshal: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var out any
		if err := fxcbor.Unmarshal(enc, &out); err != nil {
			b.Fatalf("fxcbor.Unmarshal: %v", err)
		}
	}
}

func BenchmarkMsgpEncode(b *testing.B) {
	v := benchDevice()
	b.ReportAllocs()
	b.ResetTimer()
	var out []byte
	for i := 0; i < b.N; i++ {
		var err error
		out, err = msgp.AppendIntf(out[:0], v)
		if err != nil {
			b.Fatalf("msgp.AppendIntf: %v", err)
		}
	}
	_ = out
}

func BenchmarkJSONEncode(b *testing.B) {
	v := benchDevice()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := json.Marshal(v); err != nil {
			b.Fatalf("json.Marshal: %v", err)
		}
	}
}
