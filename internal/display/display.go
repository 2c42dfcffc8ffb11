// Package display renders telemetry snapshots into the two text lines of
// the OLED pages.
package display

import (
	"codeberg.org/mutker/lhmoled/internal/telemetry"
)

const (
	splashLine1 = "LHM OLED"
	splashLine2 = "starting..."
)

type Config struct {
	UseDegreeSymbol bool
	DegreeSymbol    string
	BarWidth        int
	BarFilled       string
	BarEmpty        string
}

func DefaultConfig() Config {
	return Config{
		UseDegreeSymbol: true,
		DegreeSymbol:    "°",
		BarWidth:        16,
		BarFilled:       "#",
		BarEmpty:        "-",
	}
}

// Frame is one screen update for a page event.
type Frame struct {
	Event string
	Line1 string
	Line2 string
}

type Renderer struct {
	cfg Config
}

func NewRenderer(cfg Config) *Renderer {
	if cfg.BarWidth < 1 {
		cfg.BarWidth = DefaultConfig().BarWidth
	}
	return &Renderer{cfg: cfg}
}

// Render formats the page template from s.
func (r *Renderer) Render(page Page, s telemetry.Snapshot) Frame {
	f := Frame{Event: page.Event()}

	switch page.normalize() {
	case PageCPU:
		f.Line1 = "CPU " + r.Clock(s.CPUClock)
		f.Line2 = "CPU " + r.Percent(s.CPULoad) + " " + r.Temperature(s.CPUTemperature)
	case PageGPU:
		f.Line1 = "GPU " + r.Percent(s.GPULoad) + " " + r.Temperature(s.GPUTemperature)
		f.Line2 = "VRAM " + r.Gigabytes(megabytesToGigabytes(s.VRAMTotal)) + "/" + r.Gigabytes(megabytesToGigabytes(s.VRAMUsed))
	case PageRAM:
		f.Line1 = "RAM " + r.Gigabytes(s.RAMTotal) + "/" + r.Gigabytes(s.RAMUsed)
		f.Line2 = r.Bar(s.RAMUsed, s.RAMTotal)
	}

	return f
}

// Splash is shown on the CPU page while the first poll runs.
func Splash() Frame {
	return Frame{Event: PageCPU.Event(), Line1: splashLine1, Line2: splashLine2}
}
