// Package monitor ties telemetry, rendering and the GameSense publisher
// together on one scheduler.
package monitor

import (
	"context"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/lhmoled/internal/display"
	"codeberg.org/mutker/lhmoled/internal/errors"
	"codeberg.org/mutker/lhmoled/internal/gpu"
	"codeberg.org/mutker/lhmoled/internal/logger"
	"codeberg.org/mutker/lhmoled/internal/ram"
	"codeberg.org/mutker/lhmoled/internal/telemetry"
)

type Config struct {
	UpdateInterval    time.Duration
	PageInterval      time.Duration
	HeartbeatInterval time.Duration
	WatchdogInterval  time.Duration
	// PageLock renders after every refresh instead of on its own timer.
	PageLock      bool
	TelemetryWait time.Duration
	GameSenseWait time.Duration
	Tick          time.Duration
}

func DefaultConfig() Config {
	return Config{
		UpdateInterval:    3 * time.Second,
		PageInterval:      12 * time.Second,
		HeartbeatInterval: 5 * time.Second,
		WatchdogInterval:  10 * time.Second,
		TelemetryWait:     30 * time.Second,
		GameSenseWait:     120 * time.Second,
		Tick:              DefaultTick,
	}
}

// Monitor owns the current snapshot and page. Snapshots are swapped
// atomically so readers never see a partial update.
type Monitor struct {
	cfg       Config
	source    TelemetrySource
	publisher Publisher
	memory    MemoryReader
	gpu       gpu.Reader
	renderer  *display.Renderer
	scheduler *Scheduler

	snapshot atomic.Pointer[telemetry.Snapshot]
	page     atomic.Int32
}

type Option func(*Monitor)

// WithGPU fills GPU readings missing from the telemetry tree from r.
func WithGPU(r gpu.Reader) Option {
	return func(m *Monitor) {
		m.gpu = r
	}
}

func New(cfg Config, source TelemetrySource, publisher Publisher, memory MemoryReader, renderer *display.Renderer, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:       cfg,
		source:    source,
		publisher: publisher,
		memory:    memory,
		renderer:  renderer,
		scheduler: NewScheduler(cfg.Tick),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.snapshot.Store(&telemetry.Snapshot{})

	m.scheduler.Every("heartbeat", cfg.HeartbeatInterval, m.Heartbeat)
	m.scheduler.Every("refresh", cfg.UpdateInterval, m.Refresh)
	if !cfg.PageLock {
		m.scheduler.Every("render", cfg.UpdateInterval, m.Render)
	}
	m.scheduler.Every("rotate", cfg.PageInterval, m.Rotate)
	m.scheduler.Every("watchdog", cfg.WatchdogInterval, m.Watchdog)

	return m
}

// Run performs the startup sequence and then runs the scheduler until ctx
// is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.Start(ctx)
	if ctx.Err() != nil {
		return nil
	}

	logger.Info().
		Dur("update_interval", m.cfg.UpdateInterval).
		Dur("page_interval", m.cfg.PageInterval).
		Bool("page_lock", m.cfg.PageLock).
		Msg("Monitor running")

	return m.scheduler.Run(ctx)
}

// Start waits for both collaborators, registers the screen layout and shows
// the first frame. Collaborators that never become ready are not fatal.
func (m *Monitor) Start(ctx context.Context) {
	m.source.WaitReady(ctx, m.cfg.TelemetryWait)
	m.publisher.WaitReady(ctx, m.cfg.GameSenseWait)
	if ctx.Err() != nil {
		return
	}

	if err := errors.Join(m.publisher.Register(ctx), m.publisher.BindAll(ctx)); err != nil {
		logger.Warn().Err(err).Msg("Initial registration incomplete")
	}

	m.send(ctx, display.Splash())

	m.Refresh(ctx)
	if !m.cfg.PageLock {
		m.Render(ctx)
	}
}

// Heartbeat keeps the GameSense registration alive.
func (m *Monitor) Heartbeat(ctx context.Context) {
	if err := m.publisher.Heartbeat(ctx); err != nil {
		logger.Debug().Str("error_code", string(errors.CodeOf(err))).Err(err).Msg("Heartbeat failed")
	}
}

// Refresh polls every source and replaces the current snapshot.
func (m *Monitor) Refresh(ctx context.Context) {
	snapshot := m.source.Read(ctx)

	usage, err := m.memory.Read(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("RAM unavailable")
	}
	snapshot = ram.Apply(snapshot, usage, err)

	if m.gpu != nil {
		sample, err := m.gpu.Read()
		if err != nil {
			logger.Debug().Err(err).Msg("NVML read incomplete")
		}
		snapshot = gpu.Supplement(snapshot, sample)
	}

	m.snapshot.Store(&snapshot)

	logger.Debug().
		Interface("readings", snapshot.Readings()).
		Msg("Snapshot refreshed")

	if m.cfg.PageLock {
		m.Render(ctx)
	}
}

// Render sends the current page.
func (m *Monitor) Render(ctx context.Context) {
	m.send(ctx, m.renderer.Render(m.Page(), m.Snapshot()))
}

// Rotate advances to the next page.
func (m *Monitor) Rotate(ctx context.Context) {
	next := m.Page().Next()
	m.page.Store(int32(next))

	logger.Debug().Str("page", next.String()).Msg("Page rotated")

	if !m.cfg.PageLock {
		m.Render(ctx)
	}
}

// Watchdog reports telemetry outages and repairs the GameSense binding.
func (m *Monitor) Watchdog(ctx context.Context) {
	if !m.source.Ready(ctx) {
		logger.Warn().Msg("LHM not ready")
	}

	if m.publisher.Recover(ctx) {
		logger.Info().Msg("GameSense recovered by watchdog")
	}
}

func (m *Monitor) Snapshot() telemetry.Snapshot {
	return *m.snapshot.Load()
}

func (m *Monitor) Page() display.Page {
	return display.Page(m.page.Load())
}

func (m *Monitor) send(ctx context.Context, f display.Frame) {
	if err := m.publisher.Send(ctx, f.Event, f.Line1, f.Line2); err != nil {
		logger.Debug().
			Str("event", f.Event).
			Str("error_code", string(errors.CodeOf(err))).
			Err(err).
			Msg("Frame not delivered")
	}
}
