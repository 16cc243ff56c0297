package patterns

import (
	"math"
)

// Match is an ordered index quintuple a<b<c<d<e where a, c, e are local
// maxima and b, d are local minima: peak, cup bottom, recovery peak, handle
// dip, breakout peak.
type Match struct {
	A int `json:"a"`
	B int `json:"b"`
	C int `json:"c"`
	D int `json:"d"`
	E int `json:"e"`
}

// exceedsMove reports whether the move delta clears the required fraction of
// the anchor price. A zero anchor fails the check: the fractional
// requirement is undefined there, so the constraint cannot hold.
func exceedsMove(delta, fraction, anchor float64) bool {
	if anchor == 0 {
		return false
	}
	return delta > fraction*anchor
}

// withinBand reports whether |delta| stays strictly inside the allowed
// fraction of the anchor price, with the same zero-anchor rule.
func withinBand(delta, fraction, anchor float64) bool {
	if anchor == 0 {
		return false
	}
	return math.Abs(delta) < fraction*anchor
}

// Search enumerates every quintuple (a,b,c,d,e) drawn from the extrema lists
// that satisfies all spacing and price-shape constraints:
//
//	a->b  drop of at least price[a_b], at least distance[a_b] samples apart
//	b->c  rise of at least price[b_c], c within price[a_c] of a
//	c->d  drop of at least price[c_d], d still at least price[b_d] above b
//	d->e  rise of at least price[d_e]
//
// Candidates are examined in ascending index order at every level and the
// partial constraints are checked as soon as their endpoints are fixed,
// pruning most candidates early. Every valid quintuple is reported; matches
// sharing sub-points are not deduplicated. The configuration is validated
// before the search begins and an invalid one rejects the whole call.
func Search(prices []float64, ex ExtremaSet, th Thresholds) ([]Match, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}

	var matches []Match
	// The last four maxima cannot anchor a complete five-point pattern.
	for ai := 0; ai < len(ex.Maxima)-4; ai++ {
		a := ex.Maxima[ai]
		for _, b := range ex.Minima {
			if b <= a || b-a < th.Distance[PairAB] {
				continue
			}
			if !exceedsMove(prices[a]-prices[b], th.Price[PairAB], prices[a]) {
				continue
			}
			for _, c := range ex.Maxima {
				if c <= b || c-b < th.Distance[PairBC] {
					continue
				}
				if !exceedsMove(prices[c]-prices[b], th.Price[PairBC], prices[b]) ||
					!withinBand(prices[c]-prices[a], th.Price[PairAC], prices[a]) {
					continue
				}
				for _, d := range ex.Minima {
					if d <= c || d-c < th.Distance[PairCD] {
						continue
					}
					if !exceedsMove(prices[c]-prices[d], th.Price[PairCD], prices[c]) ||
						!exceedsMove(prices[d]-prices[b], th.Price[PairBD], prices[b]) {
						continue
					}
					for _, e := range ex.Maxima {
						if e <= d || e-d < th.Distance[PairDE] {
							continue
						}
						if !exceedsMove(prices[e]-prices[d], th.Price[PairDE], prices[d]) {
							continue
						}
						matches = append(matches, Match{A: a, B: b, C: c, D: d, E: e})
					}
				}
			}
		}
	}
	return matches, nil
}
