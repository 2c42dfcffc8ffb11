// Package ram reads physical memory usage from the operating system.
package ram

import (
	"context"

	"codeberg.org/mutker/lhmoled/internal/errors"
	"codeberg.org/mutker/lhmoled/internal/telemetry"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	ErrMemoryRead = errors.ErrorCode("ram_read_failed")

	bytesPerGiB = 1 << 30
)

// Usage is physical memory in GiB. Used counts everything that is not
// available to new allocations, so reclaimable cache is excluded.
type Usage struct {
	Used  float64
	Total float64
}

// Reader reads memory usage through gopsutil.
type Reader struct {
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

func NewReader() *Reader {
	return &Reader{virtualMemory: mem.VirtualMemoryWithContext}
}

func (r *Reader) Read(ctx context.Context) (Usage, error) {
	v, err := r.virtualMemory(ctx)
	if err != nil {
		return Usage{}, errors.New().Wrap(ErrMemoryRead, err)
	}

	return Usage{
		Used:  float64(v.Total-v.Available) / bytesPerGiB,
		Total: float64(v.Total) / bytesPerGiB,
	}, nil
}

// Apply stores the usage on a snapshot, or marks RAM unknown when err is set.
func Apply(s telemetry.Snapshot, u Usage, err error) telemetry.Snapshot {
	if err != nil {
		s.RAMUsed = telemetry.Unknown
		s.RAMTotal = telemetry.Unknown
		return s
	}

	s.RAMUsed = telemetry.Known(u.Used)
	s.RAMTotal = telemetry.Known(u.Total)

	return s
}
