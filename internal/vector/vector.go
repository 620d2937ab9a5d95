// Package vector implements a sparse vector keyed by coordinate name.
//
// Only coordinates that were explicitly set are stored; a missing name reads
// as 0 in every arithmetic and similarity operation. Two aggregates, the
// squared length and the coordinate sum, are cached lazily and invalidated on
// every mutation.
//
// A SparseVector is not safe for concurrent use. Read-only operations may
// fill a cache, so sharing an instance across goroutines is only safe after
// WarmCaches has been called and no further mutation happens.
package vector

import (
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"
)

// cachedScalar is an optional float32. valid == false means "not computed".
type cachedScalar struct {
	value float32
	valid bool
}

func (c *cachedScalar) set(v float32) { c.value, c.valid = v, true }

// SparseVector stores non-zero coordinates by name.
type SparseVector struct {
	coords        map[string]float32
	lengthSquared cachedScalar
	sum           cachedScalar
}

// New returns an empty vector.
func New() *SparseVector {
	return &SparseVector{coords: make(map[string]float32)}
}

// FromValues builds a vector from parallel name and value slices.
func FromValues(names []string, values []float32) (*SparseVector, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("%w: %d names but %d values", ErrInvalidArgument, len(names), len(values))
	}
	v := &SparseVector{coords: make(map[string]float32, len(names))}
	for i, name := range names {
		v.Set(name, values[i])
	}
	return v, nil
}

// FromNames builds a vector where every named coordinate has value 1.
func FromNames(names []string) *SparseVector {
	v := &SparseVector{coords: make(map[string]float32, len(names))}
	for _, name := range names {
		v.Set(name, 1)
	}
	return v
}

// FromMap copies m into a new vector.
func FromMap(m map[string]float32) *SparseVector {
	v := &SparseVector{coords: make(map[string]float32, len(m))}
	for name, value := range m {
		v.Set(name, value)
	}
	return v
}

// Clone returns a deep copy, caches included.
func (v *SparseVector) Clone() *SparseVector {
	return &SparseVector{
		coords:        maps.Clone(v.coords),
		lengthSquared: v.lengthSquared,
		sum:           v.sum,
	}
}

// Set inserts or overwrites a coordinate. Any float is accepted, NaN and
// infinities included.
func (v *SparseVector) Set(name string, value float32) {
	if v.coords == nil {
		v.coords = make(map[string]float32)
	}
	v.coords[name] = value
	v.invalidate()
}

// Get returns the stored value and whether the coordinate is present.
// A present zero and an absent coordinate are different results.
func (v *SparseVector) Get(name string) (float32, bool) {
	value, ok := v.coords[name]
	return value, ok
}

// Delete removes a coordinate if present.
func (v *SparseVector) Delete(name string) {
	if _, ok := v.coords[name]; !ok {
		return
	}
	delete(v.coords, name)
	v.invalidate()
}

func (v *SparseVector) invalidate() {
	v.lengthSquared = cachedScalar{}
	v.sum = cachedScalar{}
}

// Len is the number of stored coordinates. A nil vector has none.
func (v *SparseVector) Len() int {
	if v == nil {
		return 0
	}
	return len(v.coords)
}

// Names returns the stored coordinate names in sorted order.
func (v *SparseVector) Names() []string {
	return slices.Sorted(maps.Keys(v.coords))
}

// All iterates over the stored coordinates in unspecified order.
func (v *SparseVector) All() iter.Seq2[string, float32] {
	return maps.All(v.coords)
}

// SquaredLength returns the sum of squared coordinate values. The cached
// value is used unless force is set or no cache exists.
func (v *SparseVector) SquaredLength(force bool) float32 {
	if !force && v.lengthSquared.valid {
		return v.lengthSquared.value
	}
	var total float32
	for _, value := range v.coords {
		total += value * value
	}
	v.lengthSquared.set(total)
	return total
}

// Sum returns the sum of coordinate values with the same caching rules as
// SquaredLength.
func (v *SparseVector) Sum(force bool) float32 {
	if !force && v.sum.valid {
		return v.sum.value
	}
	var total float32
	for _, value := range v.coords {
		total += value
	}
	v.sum.set(total)
	return total
}

// Length is the Euclidean norm.
func (v *SparseVector) Length(force bool) float32 {
	return float32(math.Sqrt(float64(v.SquaredLength(force))))
}

// WarmCaches fills both caches. After it returns, read-only operations on v
// no longer write to v.
func (v *SparseVector) WarmCaches() {
	v.SquaredLength(false)
	v.Sum(false)
}
