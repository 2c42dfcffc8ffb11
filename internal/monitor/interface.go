package monitor

import (
	"context"
	"time"

	"codeberg.org/mutker/lhmoled/internal/ram"
	"codeberg.org/mutker/lhmoled/internal/telemetry"
)

// TelemetrySource provides sensor snapshots.
type TelemetrySource interface {
	telemetry.Reader
	Ready(ctx context.Context) bool
	WaitReady(ctx context.Context, timeout time.Duration) bool
}

// Publisher delivers frames to the display.
type Publisher interface {
	Heartbeat(ctx context.Context) error
	Register(ctx context.Context) error
	BindAll(ctx context.Context) error
	Send(ctx context.Context, event, line1, line2 string) error
	Recover(ctx context.Context) bool
	WaitReady(ctx context.Context, timeout time.Duration) bool
}

// MemoryReader reads host memory usage.
type MemoryReader interface {
	Read(ctx context.Context) (ram.Usage, error)
}
