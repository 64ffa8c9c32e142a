package indicator

// Series is a bar-aligned sequence of optional values. Entries inside an
// indicator's warm-up window are absent rather than zero, so a missing
// value can never be confused with a real reading of 0.
type Series struct {
	values []float64
	valid  []bool
}

// NewSeries returns a series of n absent entries.
func NewSeries(n int) Series {
	return Series{
		values: make([]float64, n),
		valid:  make([]bool, n),
	}
}

// FromValues builds a series from bar-aligned values, marking the first
// warmup entries absent.
func FromValues(values []float64, warmup int) Series {
	s := Series{
		values: values,
		valid:  make([]bool, len(values)),
	}
	if warmup < 0 {
		warmup = 0
	}
	for i := warmup; i < len(values); i++ {
		s.valid[i] = true
	}
	return s
}

// Len returns the number of bars the series spans.
func (s Series) Len() int {
	return len(s.values)
}

// At returns the value at bar index i and whether it is present.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.values) {
		return 0, false
	}
	if !s.valid[i] {
		return 0, false
	}
	return s.values[i], true
}

// Set places a present value at bar index i.
func (s Series) Set(i int, v float64) {
	if i < 0 || i >= len(s.values) {
		return
	}
	s.values[i] = v
	s.valid[i] = true
}
