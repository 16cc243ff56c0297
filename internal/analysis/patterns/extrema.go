// Package patterns implements cup-and-handle pattern detection over
// closing-price series.
package patterns

// ExtremaSet holds indices of local maxima and minima found in a price
// series. Both lists are ascending (scan order) and mutually disjoint:
// under strict comparison no index can qualify as both.
type ExtremaSet struct {
	Maxima []int
	Minima []int
}

// IsLocalMax reports whether prices[i] is strictly greater than every value
// in the window-sized neighborhoods on both sides. Neighborhoods are clipped
// at the sequence bounds, so a point near an edge is tested against a
// shorter window than an interior point. An empty neighborhood fails the
// test.
func IsLocalMax(prices []float64, i, window int) bool {
	if i < 0 || i >= len(prices) {
		return false
	}
	left := prices[maxInt(0, i-window):i]
	right := prices[i+1 : minInt(i+window+1, len(prices))]
	if len(left) == 0 || len(right) == 0 {
		return false
	}
	return prices[i] > sliceMax(left) && prices[i] > sliceMax(right)
}

// IsLocalMin reports whether prices[i] is strictly less than every value in
// the window-sized neighborhoods on both sides, with the same clipping rule
// as IsLocalMax.
func IsLocalMin(prices []float64, i, window int) bool {
	if i < 0 || i >= len(prices) {
		return false
	}
	left := prices[maxInt(0, i-window):i]
	right := prices[i+1 : minInt(i+window+1, len(prices))]
	if len(left) == 0 || len(right) == 0 {
		return false
	}
	return prices[i] < sliceMin(left) && prices[i] < sliceMin(right)
}

// Detect scans the price series once and classifies each index in the
// eligible range [window, len-window) as a local maximum, local minimum, or
// neither. When 2*window >= len(prices) the eligible range is empty and both
// lists come back empty; an empty series likewise yields an empty set.
func Detect(prices []float64, window int) ExtremaSet {
	var ex ExtremaSet
	for i := window; i < len(prices)-window; i++ {
		if IsLocalMax(prices, i, window) {
			ex.Maxima = append(ex.Maxima, i)
		}
		if IsLocalMin(prices, i, window) {
			ex.Minima = append(ex.Minima, i)
		}
	}
	return ex
}

// maxInt returns the maximum of two integers.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// sliceMax returns the maximum value in a non-empty slice.
func sliceMax(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// sliceMin returns the minimum value in a non-empty slice.
func sliceMin(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
