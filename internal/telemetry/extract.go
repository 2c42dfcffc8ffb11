package telemetry

import (
	"strconv"
	"strings"
)

const (
	labelKey = "Text"
	valueKey = "Value"
)

// sensor is an intermediate reading before source selection.
type sensor int

const (
	sensorCPUTemperature sensor = iota
	sensorCPULoad
	sensorCPUClock
	sensorGPUCoreTemperature
	sensorGPUHotSpot
	sensorGPUCoreLoad
	sensorGPUD3DLoad
	sensorVRAMUsed
	sensorVRAMTotal
	sensorCount
)

// rule binds a LibreHardwareMonitor node label to a sensor. The value text
// must contain unit for the node to qualify, which tells apart nodes that
// share a label ("GPU Core" exists as temperature, clock and load).
// Labels and units are lower case.
type rule struct {
	label  string
	unit   string
	sensor sensor
}

var rules = []rule{
	{label: "core (tctl/tdie)", unit: "c", sensor: sensorCPUTemperature},
	{label: "cpu total", unit: "%", sensor: sensorCPULoad},
	{label: "cores (average)", unit: "mhz", sensor: sensorCPUClock},
	{label: "gpu core", unit: "c", sensor: sensorGPUCoreTemperature},
	{label: "gpu hot spot", unit: "c", sensor: sensorGPUHotSpot},
	{label: "gpu core", unit: "%", sensor: sensorGPUCoreLoad},
	{label: "d3d 3d", unit: "%", sensor: sensorGPUD3DLoad},
	{label: "gpu memory used", unit: "mb", sensor: sensorVRAMUsed},
	{label: "gpu memory total", unit: "mb", sensor: sensorVRAMTotal},
}

// Extract collects the known sensors from a LibreHardwareMonitor tree.
// Every object carrying both "Text" and "Value" is matched against the rule
// table regardless of where it sits. The first qualifying node in Walk order
// wins; later matches never overwrite a known reading, but a node whose
// value does not parse leaves the sensor open for the next match.
func Extract(root *Node, source LoadSource) Snapshot {
	var found [sensorCount]Reading

	Walk(root, func(n *Node) {
		if n.Kind != KindObject {
			return
		}
		labelNode, ok := n.Get(labelKey)
		if !ok {
			return
		}
		valueNode, ok := n.Get(valueKey)
		if !ok {
			return
		}
		label, ok := labelNode.Text()
		if !ok {
			return
		}
		value, ok := valueNode.Text()
		if !ok {
			return
		}

		label = strings.ToLower(strings.TrimSpace(label))
		unitText := strings.ToLower(strings.TrimSpace(value))

		for _, r := range rules {
			if found[r.sensor].Valid || label != r.label || !strings.Contains(unitText, r.unit) {
				continue
			}
			found[r.sensor] = ParseNumber(value)
		}
	})

	snapshot := Snapshot{
		CPUTemperature: found[sensorCPUTemperature],
		CPULoad:        found[sensorCPULoad],
		CPUClock:       found[sensorCPUClock],
		GPUTemperature: found[sensorGPUCoreTemperature].Or(found[sensorGPUHotSpot]),
		VRAMUsed:       found[sensorVRAMUsed],
		VRAMTotal:      found[sensorVRAMTotal],
	}

	if source == LoadSourceCore {
		snapshot.GPULoad = found[sensorGPUCoreLoad].Or(found[sensorGPUD3DLoad])
	} else {
		snapshot.GPULoad = found[sensorGPUD3DLoad].Or(found[sensorGPUCoreLoad])
	}

	return snapshot
}

// ParseNumber reads the leading number of a locale formatted value such as
// "52,6 °C" or "1.234 MHz". Digits, '.', ',' and '-' are collected up to the
// first other character that follows them; commas then become decimal
// points. Text without a parseable number is Unknown.
func ParseNumber(text string) Reading {
	var num strings.Builder
	for _, ch := range strings.TrimSpace(text) {
		if (ch >= '0' && ch <= '9') || ch == '.' || ch == ',' || ch == '-' {
			num.WriteRune(ch)
			continue
		}
		if num.Len() > 0 {
			break
		}
	}
	if num.Len() == 0 {
		return Unknown
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(num.String(), ",", "."), 64)
	if err != nil {
		return Unknown
	}

	return Known(v)
}
