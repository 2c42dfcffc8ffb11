package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/mutker/lhmoled/internal/display"
	"codeberg.org/mutker/lhmoled/internal/errors"
	"codeberg.org/mutker/lhmoled/internal/gpu"
	"codeberg.org/mutker/lhmoled/internal/ram"
	"codeberg.org/mutker/lhmoled/internal/telemetry"
)

// recorder collects calls across fakes so tests can assert ordering.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

type fakeSource struct {
	rec      *recorder
	snapshot telemetry.Snapshot
	ready    bool
}

func (s *fakeSource) Read(context.Context) telemetry.Snapshot {
	s.rec.add("telemetry.read")
	return s.snapshot
}

func (s *fakeSource) Ready(context.Context) bool {
	s.rec.add("telemetry.ready")
	return s.ready
}

func (s *fakeSource) WaitReady(_ context.Context, timeout time.Duration) bool {
	s.rec.add("telemetry.wait %s", timeout)
	return s.ready
}

type frame struct {
	Event, Line1, Line2 string
}

type fakePublisher struct {
	rec       *recorder
	mu        sync.Mutex
	frames    []frame
	sendErr   error
	recovered bool
}

func (p *fakePublisher) Heartbeat(context.Context) error {
	p.rec.add("gamesense.heartbeat")
	return nil
}

func (p *fakePublisher) Register(context.Context) error {
	p.rec.add("gamesense.register")
	return nil
}

func (p *fakePublisher) BindAll(context.Context) error {
	p.rec.add("gamesense.bind_all")
	return nil
}

func (p *fakePublisher) Send(_ context.Context, event, line1, line2 string) error {
	p.rec.add("gamesense.send %s", event)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, frame{event, line1, line2})
	return p.sendErr
}

func (p *fakePublisher) Recover(context.Context) bool {
	p.rec.add("gamesense.recover")
	return p.recovered
}

func (p *fakePublisher) WaitReady(_ context.Context, timeout time.Duration) bool {
	p.rec.add("gamesense.wait %s", timeout)
	return true
}

func (p *fakePublisher) sent() []frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]frame(nil), p.frames...)
}

type fakeMemory struct {
	usage ram.Usage
	err   error
}

func (m *fakeMemory) Read(context.Context) (ram.Usage, error) {
	return m.usage, m.err
}

type fakeGPU struct {
	sample gpu.Sample
	err    error
}

func (g *fakeGPU) Read() (gpu.Sample, error) { return g.sample, g.err }
func (g *fakeGPU) Shutdown() error          { return nil }

type harness struct {
	rec       *recorder
	source    *fakeSource
	publisher *fakePublisher
	memory    *fakeMemory
	monitor   *Monitor
}

func treeSnapshot() telemetry.Snapshot {
	return telemetry.Snapshot{
		CPUTemperature: telemetry.Known(52.4),
		CPULoad:        telemetry.Known(37),
		CPUClock:       telemetry.Known(4123.4),
		GPUTemperature: telemetry.Known(61),
		GPULoad:        telemetry.Known(52),
		VRAMUsed:       telemetry.Known(2048),
		VRAMTotal:      telemetry.Known(8192),
	}
}

func newHarness(cfg Config, opts ...Option) *harness {
	rec := &recorder{}
	h := &harness{
		rec:       rec,
		source:    &fakeSource{rec: rec, snapshot: treeSnapshot(), ready: true},
		publisher: &fakePublisher{rec: rec},
		memory:    &fakeMemory{usage: ram.Usage{Used: 12, Total: 32}},
	}
	h.monitor = New(cfg, h.source, h.publisher, h.memory, display.NewRenderer(display.DefaultConfig()), opts...)
	return h
}

var errUnavailable = errors.New().New(errors.ErrInternal)
