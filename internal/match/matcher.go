// Package match finds the best extracted candidate for a reference document
// number under an exact-then-nearest policy.
package match

// DefaultTolerance is the maximum absolute difference between normalized
// document numbers for an approximate match to be accepted.
const DefaultTolerance = 5

// Best scans candidates for the target document number. candidates[i] holds
// the normalized number of record i, or nil when normalization failed.
//
// An exact match always wins and the first one encountered is returned with
// distance 0. Otherwise the candidate with the minimum absolute difference
// wins, ties broken by list order. A minimum difference beyond tolerance is
// treated as not found; the boundary itself is accepted.
func Best(target int64, candidates []*int64, tolerance int64) (idx int, distance int64, found bool) {
	for i, c := range candidates {
		if c != nil && *c == target {
			return i, 0, true
		}
	}
	bestIdx := -1
	var bestDiff int64
	for i, c := range candidates {
		if c == nil {
			continue
		}
		diff := *c - target
		if diff < 0 {
			diff = -diff
		}
		if bestIdx < 0 || diff < bestDiff {
			bestIdx = i
			bestDiff = diff
		}
	}
	if bestIdx < 0 || bestDiff > tolerance {
		return -1, 0, false
	}
	return bestIdx, bestDiff, true
}
