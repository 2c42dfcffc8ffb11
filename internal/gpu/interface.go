package gpu

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"codeberg.org/mutker/lhmoled/internal/telemetry"
)

// Reader samples GPU sensors directly from the driver.
type Reader interface {
	Read() (Sample, error)
	Shutdown() error
}

// Sample holds one reading of each sensor. Temperature is in °C, load in
// percent and memory in MB, matching the units of telemetry.Snapshot.
type Sample struct {
	Temperature telemetry.Reading
	Load        telemetry.Reading
	MemoryUsed  telemetry.Reading
	MemoryTotal telemetry.Reading
}

// nvmlController abstracts NVML operations for testing
type nvmlController interface {
	Initialize() error
	Shutdown() error
	GetDevice(index int) (device, error)
}

// device is the subset of nvml.Device used for sampling.
type device interface {
	GetName() (string, nvml.Return)
	GetTemperature(sensor nvml.TemperatureSensors) (uint32, nvml.Return)
	GetUtilizationRates() (nvml.Utilization, nvml.Return)
	GetMemoryInfo() (nvml.Memory, nvml.Return)
}

var _ Reader = (*GPU)(nil)
