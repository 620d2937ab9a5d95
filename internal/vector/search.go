package vector

import "fmt"

// NearestIndex returns the index of the candidate with the smallest squared
// distance to v. Ties go to the lowest index. A nil candidate is treated as
// the origin.
func (v *SparseVector) NearestIndex(candidates []*SparseVector) (int, error) {
	if len(candidates) == 0 {
		return 0, fmt.Errorf("%w: no candidates for nearest", ErrInvalidArgument)
	}
	best := 0
	bestDist := v.SquaredDistance(candidates[0])
	for i := 1; i < len(candidates); i++ {
		if d := v.SquaredDistance(candidates[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

// ClosestIndex returns the index of the candidate with the highest
// CosineSimilarity to v. Nil candidates are skipped; if every candidate is
// nil the result is 0. Ties go to the lowest index.
func (v *SparseVector) ClosestIndex(candidates []*SparseVector) (int, error) {
	if len(candidates) == 0 {
		return 0, fmt.Errorf("%w: no candidates for closest", ErrInvalidArgument)
	}
	return maxIndex(candidates, func(c *SparseVector) float32 {
		// c is never nil here, so the error is always nil.
		s, _ := v.CosineSimilarity(c)
		return s
	}), nil
}

// MaxDotProductIndex returns the index of the candidate with the largest dot
// product with v, skipping nil candidates like ClosestIndex.
func (v *SparseVector) MaxDotProductIndex(candidates []*SparseVector) (int, error) {
	if len(candidates) == 0 {
		return 0, fmt.Errorf("%w: no candidates for max dot product", ErrInvalidArgument)
	}
	return maxIndex(candidates, v.DotProduct), nil
}

// maxIndex scores the non-nil candidates and returns the first maximum.
func maxIndex(candidates []*SparseVector, score func(*SparseVector) float32) int {
	best := -1
	var bestScore float32
	for i, c := range candidates {
		if c == nil {
			continue
		}
		s := score(c)
		if best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return 0
	}
	return best
}
