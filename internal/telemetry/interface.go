package telemetry

import (
	"context"
	"time"
)

// Reader produces a fresh Snapshot on every call. Implementations never
// fail; unavailable readings are reported as Unknown.
type Reader interface {
	Read(ctx context.Context) Snapshot
}

// Metric names a single reading of a Snapshot.
type Metric string

const (
	CPUTemperature Metric = "cpu_temperature"
	CPULoad        Metric = "cpu_load"
	CPUClock       Metric = "cpu_clock"
	GPUTemperature Metric = "gpu_temperature"
	GPULoad        Metric = "gpu_load"
	VRAMUsed       Metric = "vram_used"
	VRAMTotal      Metric = "vram_total"
	RAMUsed        Metric = "ram_used"
	RAMTotal       Metric = "ram_total"
)

// Reading is an optional numeric value. The zero value is Unknown.
type Reading struct {
	Value float64
	Valid bool
}

// Unknown is the reading of a sensor that could not be read.
var Unknown = Reading{}

// Known wraps a measured value.
func Known(v float64) Reading {
	return Reading{Value: v, Valid: true}
}

// Get returns the value and whether it is known.
func (r Reading) Get() (float64, bool) {
	return r.Value, r.Valid
}

// Or returns r if it is known and fallback otherwise.
func (r Reading) Or(fallback Reading) Reading {
	if r.Valid {
		return r
	}
	return fallback
}

// Snapshot is the full set of readings of one poll. Temperatures are in °C,
// loads in percent, the CPU clock in MHz, VRAM in MB and RAM in GiB.
// Snapshots are values and are replaced wholesale, never patched.
type Snapshot struct {
	Timestamp time.Time

	CPUTemperature Reading
	CPULoad        Reading
	CPUClock       Reading
	GPUTemperature Reading
	GPULoad        Reading
	VRAMUsed       Reading
	VRAMTotal      Reading
	RAMUsed        Reading
	RAMTotal       Reading
}

// Readings returns every reading keyed by metric name.
func (s Snapshot) Readings() map[Metric]Reading {
	return map[Metric]Reading{
		CPUTemperature: s.CPUTemperature,
		CPULoad:        s.CPULoad,
		CPUClock:       s.CPUClock,
		GPUTemperature: s.GPUTemperature,
		GPULoad:        s.GPULoad,
		VRAMUsed:       s.VRAMUsed,
		VRAMTotal:      s.VRAMTotal,
		RAMUsed:        s.RAMUsed,
		RAMTotal:       s.RAMTotal,
	}
}
