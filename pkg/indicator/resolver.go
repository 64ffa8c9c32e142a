package indicator

import (
	"fmt"

	"github.com/ridopark/JonBuhBacktest/pkg/series"
)

// ResolvedSet holds the precomputed series for one run, keyed by
// canonical ref. It is built before the bar loop starts and read-only
// after that; it is never shared across runs.
type ResolvedSet struct {
	bars   series.Series
	byKey  map[string]Series
	maxMin int
}

// Resolve computes every unique computed indicator in refs exactly once
// over the full bar series. Price-field refs are served straight from
// the bars and need no precomputation. Errors from the computation
// boundary propagate unchanged.
func Resolve(refs []Ref, bars series.Series, computer Computer) (*ResolvedSet, error) {
	rs := &ResolvedSet{
		bars:  bars,
		byKey: make(map[string]Series),
	}
	for _, ref := range Dedupe(refs) {
		if err := ref.Validate(); err != nil {
			return nil, err
		}
		if ref.IsPrice() {
			continue
		}
		min, err := computer.MinBars(ref.Name, ref.Params)
		if err != nil {
			return nil, err
		}
		if min > rs.maxMin {
			rs.maxMin = min
		}
		s, err := computer.Compute(ref.Name, ref.Params, bars)
		if err != nil {
			return nil, err
		}
		if s.Len() != len(bars) {
			return nil, &Error{Name: ref.Name, Err: fmt.Errorf("series length %d does not match %d bars", s.Len(), len(bars))}
		}
		rs.byKey[ref.Key()] = s
	}
	return rs, nil
}

// MaxMinBars returns the largest warm-up requirement across all
// resolved indicators; zero when only price fields were requested.
func (rs *ResolvedSet) MaxMinBars() int {
	return rs.maxMin
}

// MaxWarmup reports the largest warm-up requirement across refs without
// computing anything, so a caller can reject a too-short bar series
// before any indicator work starts.
func MaxWarmup(refs []Ref, computer Computer) (int, error) {
	max := 0
	for _, ref := range Dedupe(refs) {
		if err := ref.Validate(); err != nil {
			return 0, err
		}
		if ref.IsPrice() {
			continue
		}
		m, err := computer.MinBars(ref.Name, ref.Params)
		if err != nil {
			return 0, err
		}
		if m > max {
			max = m
		}
	}
	return max, nil
}

// Value returns the ref's value at bar index i, with ok reporting
// whether it is present. Price fields are always present inside the
// series bounds; computed indicators are absent during warm-up or when
// the ref was never resolved.
func (rs *ResolvedSet) Value(ref Ref, i int) (float64, bool) {
	if i < 0 || i >= len(rs.bars) {
		return 0, false
	}
	if ref.IsPrice() {
		v, err := ref.Field.Value(rs.bars[i])
		if err != nil {
			return 0, false
		}
		return v, true
	}
	s, ok := rs.byKey[ref.Key()]
	if !ok {
		return 0, false
	}
	return s.At(i)
}
