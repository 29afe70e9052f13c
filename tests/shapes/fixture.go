package shapes

import (
	"fmt"
	"time"

	cbor "github.com/shapewire/cbor.go/codec"
)

// BuildDeviceFixture constructs a device telemetry payload shaped by the
// Device structure. Passing n <= 0 yields the default of 16 readings.
func BuildDeviceFixture(n int) map[string]any {
	if n <= 0 {
		n = 16
	}
	readings := make([]any, 0, n)
	for i := 0; i < n; i++ {
		readings = append(readings, 20.0+float64(i)*0.25)
	}
	return map[string]any{
		"name": "sensor-001",
		"attributes": cbor.Map{
			{Key: "site", Value: "plant-7"},
			{Key: "rack", Value: "b12"},
		},
		"readings":    readings,
		"sampleCount": n,
		"reportedAt":  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// EncodeDevice writes the fixture under the Device shape and returns the
// encoding.
func EncodeDevice(v map[string]any) ([]byte, error) {
	e := cbor.NewEncoder(256)
	w := cbor.NewShapeWriter(e)
	if err := w.Write(Device, v); err != nil {
		return nil, fmt.Errorf("encode device: %w", err)
	}
	return e.EncodedData(), nil
}
