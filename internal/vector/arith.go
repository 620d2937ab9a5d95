package vector

// CombineFunc merges two values of a coordinate present in both operands.
type CombineFunc func(a, b float32) float32

// Add and Subtract are the combiners used by Plus and Minus.
var (
	Add      CombineFunc = func(a, b float32) float32 { return a + b }
	Subtract CombineFunc = func(a, b float32) float32 { return a - b }
)

// Merge returns a new vector over the union of both coordinate sets. Where
// both vectors hold a coordinate the result is fn(v, other); where only one
// does, its value is copied unchanged.
func (v *SparseVector) Merge(other *SparseVector, fn CombineFunc) *SparseVector {
	out := &SparseVector{coords: make(map[string]float32, v.Len()+other.Len())}
	out.MergeSelf(v, fn)
	out.MergeSelf(other, fn)
	return out
}

// MergeSelf merges other into v in place.
func (v *SparseVector) MergeSelf(other *SparseVector, fn CombineFunc) {
	if other == nil {
		return
	}
	for name, value := range other.coords {
		if current, ok := v.coords[name]; ok {
			v.Set(name, fn(current, value))
		} else {
			v.Set(name, value)
		}
	}
}

// MergeWithPruning merges like Merge and then prunes the result with
// Prune(minRatio).
func (v *SparseVector) MergeWithPruning(other *SparseVector, fn CombineFunc, minRatio float32) *SparseVector {
	out := v.Merge(other, fn)
	out.Prune(minRatio)
	return out
}

// MergeWithPruningSelf is the in-place form of MergeWithPruning.
func (v *SparseVector) MergeWithPruningSelf(other *SparseVector, fn CombineFunc, minRatio float32) {
	v.MergeSelf(other, fn)
	v.Prune(minRatio)
}

// Prune removes every coordinate whose share of the total sum is below
// minRatio and reports how many were removed. The sum is always recomputed.
// With a zero sum the ratios are ±Inf or NaN and follow IEEE comparison.
func (v *SparseVector) Prune(minRatio float32) int {
	total := v.Sum(true)
	removed := 0
	for name, value := range v.coords {
		if value/total < minRatio {
			delete(v.coords, name)
			removed++
		}
	}
	if removed > 0 {
		v.invalidate()
	}
	return removed
}

// Plus returns v + other.
func (v *SparseVector) Plus(other *SparseVector) *SparseVector { return v.Merge(other, Add) }

// PlusSelf adds other to v.
func (v *SparseVector) PlusSelf(other *SparseVector) { v.MergeSelf(other, Add) }

// Minus returns v - other. Coordinates present only in other are copied
// unchanged, as with every Merge.
func (v *SparseVector) Minus(other *SparseVector) *SparseVector { return v.Merge(other, Subtract) }

// MinusSelf subtracts other from v.
func (v *SparseVector) MinusSelf(other *SparseVector) { v.MergeSelf(other, Subtract) }

// Multiply returns v scaled by factor.
func (v *SparseVector) Multiply(factor float32) *SparseVector {
	out := &SparseVector{coords: make(map[string]float32, v.Len())}
	for name, value := range v.coords {
		out.Set(name, value*factor)
	}
	return out
}

// MultiplySelf scales v by factor.
func (v *SparseVector) MultiplySelf(factor float32) {
	for name, value := range v.coords {
		v.Set(name, value*factor)
	}
}

// Divide returns v divided by divisor. A zero divisor yields Inf or NaN values.
func (v *SparseVector) Divide(divisor float32) *SparseVector {
	out := &SparseVector{coords: make(map[string]float32, v.Len())}
	for name, value := range v.coords {
		out.Set(name, value/divisor)
	}
	return out
}

// DivideSelf divides v by divisor.
func (v *SparseVector) DivideSelf(divisor float32) {
	for name, value := range v.coords {
		v.Set(name, value/divisor)
	}
}

// Centroid returns the coordinate-wise mean of vectors. An empty input gives
// an empty vector.
func Centroid(vectors []*SparseVector) *SparseVector {
	out := New()
	for _, vec := range vectors {
		out.MergeSelf(vec, Add)
	}
	if len(vectors) > 0 {
		out.DivideSelf(float32(len(vectors)))
	}
	return out
}

// CentroidWithPruning is Centroid with Prune(minRatio) applied after every
// accumulation step and once more on the final mean, which keeps the
// coordinate set of the running sum bounded.
func CentroidWithPruning(vectors []*SparseVector, minRatio float32) *SparseVector {
	out := New()
	for _, vec := range vectors {
		out.MergeWithPruningSelf(vec, Add, minRatio)
	}
	if len(vectors) > 0 {
		out.DivideSelf(float32(len(vectors)))
	}
	out.Prune(minRatio)
	return out
}
