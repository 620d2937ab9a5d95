package vector

import (
	"fmt"
	"math"
)

// DotProduct sums v[name]*other[name] over the coordinates of v. A nil other
// gives 0.
func (v *SparseVector) DotProduct(other *SparseVector) float32 {
	if other == nil {
		return 0
	}
	var product float32
	for name, value := range v.coords {
		if otherValue, ok := other.coords[name]; ok {
			product += value * otherValue
		}
	}
	return product
}

// SquaredDistance is the squared length of v - other. A nil other is treated
// as the origin.
func (v *SparseVector) SquaredDistance(other *SparseVector) float32 {
	if other == nil {
		return v.SquaredLength(false)
	}
	return v.Minus(other).SquaredLength(false)
}

// Distance is the Euclidean distance between v and other.
func (v *SparseVector) Distance(other *SparseVector) float32 {
	return float32(math.Sqrt(float64(v.SquaredDistance(other))))
}

// CosineSimilarity returns dot(v, other) / (|v|² · |other|²).
//
// The denominator uses squared lengths, so the result is not bounded to
// [-1, 1]. Existing scores depend on this exact formula. Zero-length
// operands produce Inf or NaN rather than an error.
func (v *SparseVector) CosineSimilarity(other *SparseVector) (float32, error) {
	if other == nil {
		return 0, fmt.Errorf("%w: similarity undefined against a nil vector", ErrInvalidArgument)
	}
	return v.DotProduct(other) / (v.SquaredLength(false) * other.SquaredLength(false)), nil
}

// JaccardSimilarity returns the number of shared coordinate names divided by
// len(v)+len(other). Shared names are counted on both sides of the
// denominator. A nil other or two empty vectors give 0.
func (v *SparseVector) JaccardSimilarity(other *SparseVector) float32 {
	if other == nil {
		return 0
	}
	total := v.Len() + other.Len()
	if total == 0 {
		return 0
	}
	small, large := v.coords, other.coords
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for name := range small {
		if _, ok := large[name]; ok {
			shared++
		}
	}
	return float32(shared) / float32(total)
}
