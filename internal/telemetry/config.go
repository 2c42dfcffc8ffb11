package telemetry

import (
	"strings"
	"time"

	"codeberg.org/mutker/lhmoled/internal/errors"
)

const (
	defaultURL           = "http://localhost:8085/data.json"
	defaultTimeout       = 2 * time.Second
	defaultReadyTimeout  = 1500 * time.Millisecond
	defaultRetryInterval = time.Second
	maxDocumentSize      = 8 << 20
)

// LoadSource selects which LibreHardwareMonitor node feeds the GPU load.
type LoadSource string

const (
	// LoadSourceD3D prefers the "D3D 3D" engine load.
	LoadSourceD3D LoadSource = "d3d"
	// LoadSourceCore prefers the "GPU Core" load.
	LoadSourceCore LoadSource = "core"
)

// ParseLoadSource maps a configured name onto a LoadSource.
func ParseLoadSource(name string) (LoadSource, error) {
	switch LoadSource(strings.ToLower(strings.TrimSpace(name))) {
	case LoadSourceD3D:
		return LoadSourceD3D, nil
	case LoadSourceCore:
		return LoadSourceCore, nil
	default:
		return LoadSourceD3D, errors.New().WithData(ErrInvalidLoadSource, name)
	}
}

type Config struct {
	URL           string
	Timeout       time.Duration
	ReadyTimeout  time.Duration
	RetryInterval time.Duration
	LoadSource    LoadSource
}

func DefaultConfig() Config {
	return Config{
		URL:           defaultURL,
		Timeout:       defaultTimeout,
		ReadyTimeout:  defaultReadyTimeout,
		RetryInterval: defaultRetryInterval,
		LoadSource:    LoadSourceD3D,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.URL == "" {
		return errFactory.New(ErrInvalidURL)
	}
	if c.Timeout <= 0 || c.ReadyTimeout <= 0 || c.RetryInterval <= 0 {
		return errFactory.WithData(ErrInvalidConfig, "timeouts must be positive")
	}
	if _, err := ParseLoadSource(string(c.LoadSource)); err != nil {
		return err
	}
	return nil
}
