// Package gpu reads NVIDIA GPU sensors through NVML. It backs up the
// telemetry tree when LibreHardwareMonitor does not report the GPU.
package gpu

import (
	"sync"

	"codeberg.org/mutker/lhmoled/internal/errors"
	"codeberg.org/mutker/lhmoled/internal/logger"
	"codeberg.org/mutker/lhmoled/internal/telemetry"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const bytesPerMB = 1 << 20

type GPU struct {
	lib    nvmlController
	device device
	name   string
	mu     sync.Mutex
}

// New initializes NVML and opens the device at index.
func New(index int) (*GPU, error) {
	return open(&nvmlWrapper{}, index)
}

func open(lib nvmlController, index int) (*GPU, error) {
	if err := lib.Initialize(); err != nil {
		return nil, err
	}

	dev, err := lib.GetDevice(index)
	if err != nil {
		_ = lib.Shutdown()
		return nil, err
	}

	g := &GPU{lib: lib, device: dev}
	if name, ret := dev.GetName(); IsNVMLSuccess(ret) {
		g.name = name
		logger.Info().Msgf("Detected GPU: %v", name)
	} else {
		logger.Warn().Msgf("Failed to get GPU name: %v", nvml.ErrorString(ret))
	}

	return g, nil
}

func (g *GPU) Name() string {
	return g.name
}

// Read samples every sensor. A failed sensor is Unknown in the sample and
// its error is joined into the returned error.
func (g *GPU) Read() (Sample, error) {
	errFactory := errors.New()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.device == nil {
		return Sample{}, errFactory.New(ErrNotInitialized)
	}

	var (
		sample Sample
		errs   []error
	)

	if temp, ret := g.device.GetTemperature(nvml.TEMPERATURE_GPU); IsNVMLSuccess(ret) {
		sample.Temperature = telemetry.Known(float64(temp))
	} else {
		errs = append(errs, errFactory.Wrap(ErrTemperatureReadFailed, newNVMLError(ret)))
	}

	if util, ret := g.device.GetUtilizationRates(); IsNVMLSuccess(ret) {
		sample.Load = telemetry.Known(float64(util.Gpu))
	} else {
		errs = append(errs, errFactory.Wrap(ErrUtilizationReadFailed, newNVMLError(ret)))
	}

	if mem, ret := g.device.GetMemoryInfo(); IsNVMLSuccess(ret) {
		sample.MemoryUsed = telemetry.Known(float64(mem.Used) / bytesPerMB)
		sample.MemoryTotal = telemetry.Known(float64(mem.Total) / bytesPerMB)
	} else {
		errs = append(errs, errFactory.Wrap(ErrMemoryReadFailed, newNVMLError(ret)))
	}

	return sample, errors.Join(errs...)
}

func (g *GPU) Shutdown() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.device = nil

	return g.lib.Shutdown()
}

// Supplement fills GPU readings the telemetry tree did not provide. Values
// already present in s are kept.
func Supplement(s telemetry.Snapshot, sample Sample) telemetry.Snapshot {
	s.GPUTemperature = s.GPUTemperature.Or(sample.Temperature)
	s.GPULoad = s.GPULoad.Or(sample.Load)
	s.VRAMUsed = s.VRAMUsed.Or(sample.MemoryUsed)
	s.VRAMTotal = s.VRAMTotal.Or(sample.MemoryTotal)

	return s
}
