package display_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/lhmoled/internal/display"
	"codeberg.org/mutker/lhmoled/internal/telemetry"
)

var known = telemetry.Known

func TestPageCycle(t *testing.T) {
	p := display.PageCPU
	var seen []string
	for range 4 {
		seen = append(seen, p.Event())
		p = p.Next()
	}

	assert.Equal(t, []string{"CPU_PAGE", "GPU_PAGE", "RAM_PAGE", "CPU_PAGE"}, seen)
	assert.Equal(t, []string{"CPU_PAGE", "GPU_PAGE", "RAM_PAGE"}, display.Events())
	assert.Equal(t, "gpu", display.PageGPU.String())
}

func TestEventsIsACopy(t *testing.T) {
	events := display.Events()
	events[0] = "changed"

	assert.Equal(t, "CPU_PAGE", display.Events()[0])
}

func TestPercent(t *testing.T) {
	r := display.NewRenderer(display.DefaultConfig())

	tests := []struct {
		in   telemetry.Reading
		want string
	}{
		{telemetry.Unknown, "?"},
		{known(37.0), "37%"},
		{known(36.6), "37%"},
		{known(0), "0%"},
		{known(42.5), "42%"},
		{known(43.5), "44%"},
		{known(100), "100%"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Percent(tt.in))
	}
}

func TestTemperature(t *testing.T) {
	r := display.NewRenderer(display.DefaultConfig())
	assert.Equal(t, "52°C", r.Temperature(known(52.4)))
	assert.Equal(t, "52°C", r.Temperature(known(52.5)))
	assert.Equal(t, "?", r.Temperature(telemetry.Unknown))

	cfg := display.DefaultConfig()
	cfg.UseDegreeSymbol = false
	assert.Equal(t, "61C", display.NewRenderer(cfg).Temperature(known(61)))

	cfg = display.DefaultConfig()
	cfg.DegreeSymbol = "º"
	assert.Equal(t, "61ºC", display.NewRenderer(cfg).Temperature(known(61)))
}

func TestGigabytesAndClock(t *testing.T) {
	r := display.NewRenderer(display.DefaultConfig())

	assert.Equal(t, "31.9G", r.Gigabytes(known(31.93)))
	assert.Equal(t, "8.0G", r.Gigabytes(known(8)))
	assert.Equal(t, "?", r.Gigabytes(telemetry.Unknown))

	assert.Equal(t, "4.12GHz", r.Clock(known(4123.4)))
	assert.Equal(t, "0.80GHz", r.Clock(known(800)))
	assert.Equal(t, "?", r.Clock(telemetry.Unknown))
}

func TestBar(t *testing.T) {
	r := display.NewRenderer(display.DefaultConfig())

	tests := []struct {
		name        string
		used, total telemetry.Reading
		want        string
	}{
		{"half", known(16), known(32), "[########--------]"},
		{"full", known(32), known(32), "[################]"},
		{"over", known(40), known(32), "[################]"},
		{"empty", known(0), known(32), "[----------------]"},
		{"negative", known(-1), known(32), "[----------------]"},
		{"unknown used", telemetry.Unknown, known(32), "[----------------]"},
		{"unknown total", known(12), telemetry.Unknown, "[----------------]"},
		{"zero total", known(12), known(0), "[----------------]"},
		// 12/32*16 = 6
		{"partial", known(12), known(32), "[######----------]"},
		// 1/32*16 = 0.5 rounds to 0
		{"half cell", known(1), known(32), "[----------------]"},
		// 3/32*16 = 1.5 rounds to 2
		{"one and a half", known(3), known(32), "[##--------------]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Bar(tt.used, tt.total)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, 18)
		})
	}
}

func TestBarCustomCells(t *testing.T) {
	cfg := display.DefaultConfig()
	cfg.BarWidth = 4
	cfg.BarFilled = "="
	cfg.BarEmpty = "."

	assert.Equal(t, "[==..]", display.NewRenderer(cfg).Bar(known(1), known(2)))
}

func TestRender(t *testing.T) {
	r := display.NewRenderer(display.DefaultConfig())
	s := telemetry.Snapshot{
		CPUTemperature: known(52.4),
		CPULoad:        known(37.0),
		CPUClock:       known(4123.4),
		GPUTemperature: known(61),
		GPULoad:        known(52),
		VRAMUsed:       known(2048),
		VRAMTotal:      known(8192),
		RAMUsed:        known(12),
		RAMTotal:       known(32),
	}

	tests := []struct {
		page display.Page
		want display.Frame
	}{
		{display.PageCPU, display.Frame{Event: "CPU_PAGE", Line1: "CPU 4.12GHz", Line2: "CPU 37% 52°C"}},
		{display.PageGPU, display.Frame{Event: "GPU_PAGE", Line1: "GPU 52% 61°C", Line2: "VRAM 8.0G/2.0G"}},
		{display.PageRAM, display.Frame{Event: "RAM_PAGE", Line1: "RAM 32.0G/12.0G", Line2: "[######----------]"}},
	}

	for _, tt := range tests {
		t.Run(tt.page.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, r.Render(tt.page, s))
		})
	}
}

func TestRenderUnknown(t *testing.T) {
	r := display.NewRenderer(display.DefaultConfig())
	s := telemetry.Snapshot{}

	assert.Equal(t, display.Frame{Event: "CPU_PAGE", Line1: "CPU ?", Line2: "CPU ? ?"}, r.Render(display.PageCPU, s))
	assert.Equal(t, display.Frame{Event: "GPU_PAGE", Line1: "GPU ? ?", Line2: "VRAM ?/?"}, r.Render(display.PageGPU, s))
	assert.Equal(t, display.Frame{Event: "RAM_PAGE", Line1: "RAM ?/?", Line2: "[----------------]"}, r.Render(display.PageRAM, s))
}

func TestSplash(t *testing.T) {
	assert.Equal(t, display.Frame{Event: "CPU_PAGE", Line1: "LHM OLED", Line2: "starting..."}, display.Splash())
}

func TestRenderFromTelemetryTree(t *testing.T) {
	doc := `{"Children":[{"Text":"PC","Children":[
		{"Text":"CPU","Children":[{"Text":"Load","Children":[
			{"Text":"CPU Total","Value":"37,0 %"}]}]},
		{"Children":[{"Children":[{"Children":[
			{"Text":"Core (Tctl/Tdie)","Value":"52,4 °C"}]}]}]}
	]}]}`

	root, err := telemetry.Decode([]byte(doc))
	require.NoError(t, err)

	s := telemetry.Extract(root, telemetry.LoadSourceD3D)
	assert.Equal(t, known(37.0), s.CPULoad)
	assert.Equal(t, known(52.4), s.CPUTemperature)

	f := display.NewRenderer(display.DefaultConfig()).Render(display.PageCPU, s)
	assert.Equal(t, "CPU 37% 52°C", f.Line2)
}
