package indicator

import (
	"fmt"

	"github.com/ridopark/JonBuhBacktest/pkg/series"
)

// Computer is the boundary to the external indicator-computation
// library. The engine never inspects indicator math; it hands over the
// bars and receives a bar-aligned series of optional values. Warm-up
// gaps are expressed as absent entries, not errors; structural problems
// (unknown indicator, invalid parameters, mismatched input lengths)
// surface as *Error.
type Computer interface {
	// Compute calculates the named indicator over the full bar series.
	Compute(name string, params map[string]float64, bars series.Series) (Series, error)

	// MinBars reports the minimum number of bars the indicator needs
	// before it produces its first value.
	MinBars(name string, params map[string]float64) (int, error)
}

// Error reports a structural problem from the computation boundary.
type Error struct {
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("indicator %q: %v", e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
