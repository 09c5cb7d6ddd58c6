package fuzzy

// Entry records one control step of a fuzzy controller.
type Entry struct {
	Inputs      map[string]float64
	Output      float64
	Memberships map[string]map[string]float64
}

// History is an append-only log of control steps. It is diagnostic only;
// nothing in the control law reads it back.
type History struct {
	entries []Entry
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Append(e Entry) {
	h.entries = append(h.entries, e)
}

func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the log.
func (h *History) Entries() []Entry {
	return append([]Entry(nil), h.entries...)
}

// Outputs returns the crisp output of every recorded step.
func (h *History) Outputs() []float64 {
	os := make([]float64, len(h.entries))
	for i, e := range h.entries {
		os[i] = e.Output
	}
	return os
}

func (h *History) Clear() {
	h.entries = nil
}
