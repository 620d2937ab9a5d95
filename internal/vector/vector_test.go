package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(m map[string]float32) *SparseVector { return FromMap(m) }

func TestGetDistinguishesAbsentFromZero(t *testing.T) {
	v := New()
	v.Set("zero", 0)

	got, ok := v.Get("zero")
	assert.True(t, ok)
	assert.Equal(t, float32(0), got)

	_, ok = v.Get("missing")
	assert.False(t, ok)
}

func TestFromValues(t *testing.T) {
	v, err := FromValues([]string{"a", "b"}, []float32{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "{a:1, b:2}", v.String())

	_, err = FromValues([]string{"a"}, []float32{1, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestFromNames(t *testing.T) {
	v := FromNames([]string{"go", "rust", "go"})
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, float32(2), v.Sum(false))
	assert.Equal(t, []string{"go", "rust"}, v.Names())
}

func TestCloneIsIndependent(t *testing.T) {
	a := vec(map[string]float32{"x": 1})
	a.WarmCaches()
	b := a.Clone()
	b.Set("y", 3)

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, float32(1), a.SquaredLength(false))
	assert.Equal(t, float32(10), b.SquaredLength(false))
}

func TestCacheCoherence(t *testing.T) {
	v := vec(map[string]float32{"a": 1, "b": 2})
	other := vec(map[string]float32{"b": 5, "c": -1})

	steps := []struct {
		name   string
		mutate func()
	}{
		{"set", func() { v.Set("d", 4) }},
		{"plusSelf", func() { v.PlusSelf(other) }},
		{"minusSelf", func() { v.MinusSelf(other) }},
		{"multiplySelf", func() { v.MultiplySelf(3) }},
		{"divideSelf", func() { v.DivideSelf(2) }},
		{"mergeSelf", func() { v.MergeSelf(other, func(a, b float32) float32 { return a * b }) }},
		{"prune", func() { v.Prune(0.2) }},
		{"delete", func() { v.Delete("a") }},
	}

	for _, step := range steps {
		// Prime both caches so a stale value would be observable.
		v.SquaredLength(false)
		v.Sum(false)
		step.mutate()
		assert.Equal(t, v.SquaredLength(true), v.SquaredLength(false), step.name)
		assert.Equal(t, v.Sum(true), v.Sum(false), step.name)
	}
}

func TestLength(t *testing.T) {
	v := vec(map[string]float32{"x": 3, "y": 4})
	assert.Equal(t, float32(25), v.SquaredLength(false))
	assert.Equal(t, float32(5), v.Length(false))
	assert.Equal(t, float32(7), v.Sum(false))
}

func TestConcreteScenario(t *testing.T) {
	a := vec(map[string]float32{"x": 1, "y": 2})
	b := vec(map[string]float32{"y": 3, "z": 4})

	assert.Equal(t, "{x:1, y:5, z:4}", a.Plus(b).String())
	assert.Equal(t, float32(6), a.DotProduct(b))
	assert.Equal(t, float32(18), a.SquaredDistance(b))
	assert.InDelta(t, math.Sqrt(18), a.Distance(b), 1e-6)

	// Operands are untouched by the pure forms.
	assert.Equal(t, "{x:1, y:2}", a.String())
	assert.Equal(t, "{y:3, z:4}", b.String())
}

func TestProperties(t *testing.T) {
	vectors := []*SparseVector{
		New(),
		vec(map[string]float32{"x": 1.5}),
		vec(map[string]float32{"x": -2, "y": 0.25, "z": 7}),
		vec(map[string]float32{"a": 3, "y": -1}),
	}

	for _, a := range vectors {
		assert.InDelta(t, a.SquaredLength(true), a.DotProduct(a), 1e-5)
		assert.Equal(t, float32(0), a.SquaredDistance(a))

		for _, b := range vectors {
			roundTrip := a.Plus(b).Minus(b)
			for _, name := range a.Names() {
				want, _ := a.Get(name)
				got, ok := roundTrip.Get(name)
				require.True(t, ok)
				assert.InDelta(t, want, got, 1e-5)
			}
			assert.Equal(t, a.JaccardSimilarity(b), b.JaccardSimilarity(a))
		}
	}
}

func TestMinusPassesRightOnlyCoordinatesThrough(t *testing.T) {
	a := vec(map[string]float32{"x": 1})
	b := vec(map[string]float32{"x": 3, "z": 4})

	diff := a.Minus(b)
	x, _ := diff.Get("x")
	z, _ := diff.Get("z")
	assert.Equal(t, float32(-2), x)
	assert.Equal(t, float32(4), z)
}

func TestMergeWithNil(t *testing.T) {
	a := vec(map[string]float32{"x": 1})
	assert.Equal(t, "{x:1}", a.Merge(nil, Add).String())
}

func TestScalarOps(t *testing.T) {
	v := vec(map[string]float32{"x": 2, "y": -4})

	assert.Equal(t, "{x:6, y:-12}", v.Multiply(3).String())
	assert.Equal(t, "{x:1, y:-2}", v.Divide(2).String())

	v.MultiplySelf(0.5)
	assert.Equal(t, "{x:1, y:-2}", v.String())
	v.DivideSelf(-1)
	assert.Equal(t, "{x:-1, y:2}", v.String())
}

func TestDivideByZeroPropagates(t *testing.T) {
	v := vec(map[string]float32{"pos": 1, "zero": 0})
	q := v.Divide(0)

	pos, _ := q.Get("pos")
	zero, _ := q.Get("zero")
	assert.True(t, math.IsInf(float64(pos), 1))
	assert.True(t, math.IsNaN(float64(zero)))
}

func TestMergeWithPruning(t *testing.T) {
	v := vec(map[string]float32{"a": 1, "b": 99})

	merged := v.MergeWithPruning(v, Add, 0.05)
	_, hasA := merged.Get("a")
	b, hasB := merged.Get("b")
	assert.False(t, hasA)
	assert.True(t, hasB)
	assert.Equal(t, float32(198), b)
	assert.Equal(t, float32(198), merged.Sum(false))

	// The source is unchanged by the pure form.
	assert.Equal(t, 2, v.Len())

	v.MergeWithPruningSelf(v.Clone(), Add, 0.05)
	assert.Equal(t, "{b:198}", v.String())
}

func TestPruneUsesFreshSum(t *testing.T) {
	v := vec(map[string]float32{"a": 10, "b": 10})
	v.Sum(false)
	v.Set("c", 980)

	removed := v.Prune(0.05)
	assert.Equal(t, 2, removed)
	assert.Equal(t, "{c:980}", v.String())
}

func TestCentroid(t *testing.T) {
	vectors := []*SparseVector{
		vec(map[string]float32{"x": 2}),
		vec(map[string]float32{"x": 4, "y": 2}),
	}
	assert.Equal(t, "{x:3, y:1}", Centroid(vectors).String())
	assert.Equal(t, 0, Centroid(nil).Len())

	// Inputs are not modified.
	assert.Equal(t, "{x:2}", vectors[0].String())
}

func TestCentroidWithPruning(t *testing.T) {
	vectors := []*SparseVector{
		vec(map[string]float32{"a": 1, "b": 99}),
		vec(map[string]float32{"a": 1, "b": 99}),
		vec(map[string]float32{"b": 100, "c": 50}),
	}

	c := CentroidWithPruning(vectors, 0.05)
	_, hasA := c.Get("a")
	assert.False(t, hasA)
	b, _ := c.Get("b")
	cc, _ := c.Get("c")
	assert.InDelta(t, 298.0/3, b, 1e-4)
	assert.InDelta(t, 50.0/3, cc, 1e-4)
}

func TestCosineSimilarity(t *testing.T) {
	a := vec(map[string]float32{"x": 1, "y": 2})
	b := vec(map[string]float32{"y": 3, "z": 4})

	got, err := a.CosineSimilarity(b)
	require.NoError(t, err)
	// dot / (|a|² · |b|²) = 6 / (5 · 25)
	assert.InDelta(t, 0.048, got, 1e-6)

	_, err = a.CosineSimilarity(nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestJaccardSimilarity(t *testing.T) {
	a := vec(map[string]float32{"x": 1, "y": 2})
	b := vec(map[string]float32{"y": 3, "z": 4})

	assert.Equal(t, float32(0.25), a.JaccardSimilarity(b))
	assert.Equal(t, float32(0.5), a.JaccardSimilarity(a))
	assert.Equal(t, float32(0), a.JaccardSimilarity(nil))
	assert.Equal(t, float32(0), New().JaccardSimilarity(New()))
}

func TestDotProductNil(t *testing.T) {
	a := vec(map[string]float32{"x": 1})
	assert.Equal(t, float32(0), a.DotProduct(nil))
	assert.Equal(t, float32(1), a.SquaredDistance(nil))
}
