package display

import "slices"

// Page selects which two line template is rendered.
type Page int

const (
	PageCPU Page = iota
	PageGPU
	PageRAM

	pageCount = 3
)

var pageEvents = [pageCount]string{
	PageCPU: "CPU_PAGE",
	PageGPU: "GPU_PAGE",
	PageRAM: "RAM_PAGE",
}

var pageNames = [pageCount]string{
	PageCPU: "cpu",
	PageGPU: "gpu",
	PageRAM: "ram",
}

// Next returns the page after p in the CPU, GPU, RAM cycle.
func (p Page) Next() Page {
	return (p.normalize() + 1) % pageCount
}

// Event is the GameSense event bound to the page.
func (p Page) Event() string {
	return pageEvents[p.normalize()]
}

func (p Page) String() string {
	return pageNames[p.normalize()]
}

func (p Page) normalize() Page {
	return ((p % pageCount) + pageCount) % pageCount
}

// Events returns the events of every page in cycle order.
func Events() []string {
	return slices.Clone(pageEvents[:])
}
