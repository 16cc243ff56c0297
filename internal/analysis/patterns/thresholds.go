package patterns

import (
	"cupscan/internal/errors"
)

// Pair labels for the threshold maps. Distance thresholds cover the four
// consecutive pairs; price thresholds additionally constrain the a-c and b-d
// relationships that give the cup its shape.
const (
	PairAB = "a_b"
	PairBC = "b_c"
	PairAC = "a_c"
	PairCD = "c_d"
	PairBD = "b_d"
	PairDE = "d_e"
)

// DistancePairs is the required key set for distance thresholds.
var DistancePairs = []string{PairAB, PairBC, PairCD, PairDE}

// PricePairs is the required key set for price thresholds.
var PricePairs = []string{PairAB, PairBC, PairAC, PairCD, PairBD, PairDE}

// Thresholds configures a pattern search. Distance entries are minimum index
// gaps between consecutive turning points; price entries are minimum
// fractional moves relative to the anchor point of each pair.
type Thresholds struct {
	Distance map[string]int
	Price    map[string]float64
}

// DefaultThresholds returns the stock configuration: 10 samples between
// turning points, 0.5% moves. Tuned for roughly three trading days of
// 5-minute bars; tighten for longer or less noisy series.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Distance: map[string]int{
			PairAB: 10,
			PairBC: 10,
			PairCD: 10,
			PairDE: 10,
		},
		Price: map[string]float64{
			PairAB: 0.005,
			PairBC: 0.005,
			PairAC: 0.005,
			PairCD: 0.005,
			PairBD: 0.005,
			PairDE: 0.005,
		},
	}
}

// Validate checks that both maps carry exactly the required keys with
// positive values. The search rejects an invalid configuration up front
// instead of silently treating missing entries as failed constraints.
func (t Thresholds) Validate() error {
	if t.Distance == nil {
		return errors.NewConfigError("distance_thresholds", "", "missing threshold map")
	}
	if t.Price == nil {
		return errors.NewConfigError("price_thresholds", "", "missing threshold map")
	}
	for _, pair := range DistancePairs {
		v, ok := t.Distance[pair]
		if !ok {
			return errors.NewConfigError("distance_thresholds", pair, "missing required key")
		}
		if v <= 0 {
			return errors.NewConfigError("distance_thresholds", pair, "must be a positive integer")
		}
	}
	for _, pair := range PricePairs {
		v, ok := t.Price[pair]
		if !ok {
			return errors.NewConfigError("price_thresholds", pair, "missing required key")
		}
		if v <= 0 {
			return errors.NewConfigError("price_thresholds", pair, "must be a positive fraction")
		}
	}
	return nil
}

// Clone returns a deep copy, useful when deriving a tightened or loosened
// variant without mutating a shared configuration.
func (t Thresholds) Clone() Thresholds {
	out := Thresholds{
		Distance: make(map[string]int, len(t.Distance)),
		Price:    make(map[string]float64, len(t.Price)),
	}
	for k, v := range t.Distance {
		out.Distance[k] = v
	}
	for k, v := range t.Price {
		out.Price[k] = v
	}
	return out
}
