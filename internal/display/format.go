package display

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"codeberg.org/mutker/lhmoled/internal/telemetry"
)

const (
	unknownText = "?"
	mbPerGB     = 1024
	mhzPerGHz   = 1000
)

// round rounds half to even so 52.5 °C shows as 52.
func round(v float64) int {
	return int(math.RoundToEven(v))
}

func (r *Renderer) Percent(v telemetry.Reading) string {
	if !v.Valid {
		return unknownText
	}
	return strconv.Itoa(round(v.Value)) + "%"
}

func (r *Renderer) Temperature(v telemetry.Reading) string {
	if !v.Valid {
		return unknownText
	}

	t := strconv.Itoa(round(v.Value))
	if r.cfg.UseDegreeSymbol {
		return t + r.cfg.DegreeSymbol + "C"
	}
	return t + "C"
}

// Gigabytes formats a GiB value with one decimal.
func (r *Renderer) Gigabytes(v telemetry.Reading) string {
	if !v.Valid {
		return unknownText
	}
	return fmt.Sprintf("%.1fG", v.Value)
}

// Clock formats a MHz value as GHz.
func (r *Renderer) Clock(mhz telemetry.Reading) string {
	if !mhz.Valid {
		return unknownText
	}
	return fmt.Sprintf("%.2fGHz", mhz.Value/mhzPerGHz)
}

// Bar draws used/total as a bracketed bar of BarWidth cells. Unknown or
// zero totals draw an empty bar.
func (r *Renderer) Bar(used, total telemetry.Reading) string {
	width := r.cfg.BarWidth

	filled := 0
	if used.Valid && total.Valid && total.Value > 0 {
		frac := min(max(used.Value/total.Value, 0), 1)
		filled = min(max(round(frac*float64(width)), 0), width)
	}

	return "[" + strings.Repeat(r.cfg.BarFilled, filled) + strings.Repeat(r.cfg.BarEmpty, width-filled) + "]"
}

func megabytesToGigabytes(v telemetry.Reading) telemetry.Reading {
	if !v.Valid {
		return v
	}
	return telemetry.Known(v.Value / mbPerGB)
}
