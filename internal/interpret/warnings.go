package interpret

import "fmt"

// warnings collects diagnostics in detection order.
type warnings struct {
	items []string
}

func (w *warnings) add(format string, args ...any) {
	w.items = append(w.items, fmt.Sprintf(format, args...))
}

func (w *warnings) list() []string {
	if w.items == nil {
		return []string{}
	}
	return w.items
}

// sliceRef identifies a slice in warnings by its 1-based position and title.
type sliceRef struct {
	index int
	title string
}

func (r sliceRef) String() string {
	return fmt.Sprintf("Slice %d %q", r.index, r.title)
}
