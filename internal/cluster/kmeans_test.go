package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparsevec/internal/logging"
	"sparsevec/internal/vector"
)

func twoTopics() []*vector.SparseVector {
	return []*vector.SparseVector{
		vector.FromMap(map[string]float32{"a": 1, "b": 1}),
		vector.FromMap(map[string]float32{"a": 1.1, "b": 0.9}),
		vector.FromMap(map[string]float32{"x": 1, "y": 1}),
		vector.FromMap(map[string]float32{"x": 0.9, "y": 1.2}),
	}
}

func TestKMeansSeparatesTopics(t *testing.T) {
	for _, rule := range []Rule{RuleNearest, RuleClosest, RuleDot} {
		t.Run(string(rule), func(t *testing.T) {
			vectors := twoTopics()
			res, err := KMeans(context.Background(), vectors, Config{K: 2, Rule: rule, Workers: 2, Logger: logging.Discard()})
			require.NoError(t, err)

			assert.True(t, res.Converged)
			require.Len(t, res.Centers, 2)
			require.Len(t, res.Groups, 2)
			assert.Equal(t, res.Assignments[0], res.Assignments[1])
			assert.Equal(t, res.Assignments[2], res.Assignments[3])
			assert.NotEqual(t, res.Assignments[0], res.Assignments[2])
			assert.Equal(t, 4, len(res.Groups[0])+len(res.Groups[1]))
		})
	}
}

func TestKMeansPrunesCenters(t *testing.T) {
	vectors := []*vector.SparseVector{
		vector.FromMap(map[string]float32{"a": 1, "noise": 0.01}),
		vector.FromMap(map[string]float32{"a": 1}),
		vector.FromMap(map[string]float32{"z": 1}),
		vector.FromMap(map[string]float32{"z": 1.1}),
	}

	res, err := KMeans(context.Background(), vectors, Config{K: 2, MinRatio: 0.05, Logger: logging.Discard()})
	require.NoError(t, err)

	center := res.Centers[res.Assignments[0]]
	_, hasNoise := center.Get("noise")
	assert.False(t, hasNoise)
	a, _ := center.Get("a")
	assert.InDelta(t, 1, a, 1e-6)
}

func TestKMeansDoesNotModifyInput(t *testing.T) {
	vectors := twoTopics()
	before := vectors[0].String()

	_, err := KMeans(context.Background(), vectors, Config{K: 2, Logger: logging.Discard()})
	require.NoError(t, err)
	assert.Equal(t, before, vectors[0].String())
}

func TestKMeansSeedsSkipDuplicates(t *testing.T) {
	vectors := []*vector.SparseVector{
		vector.FromMap(map[string]float32{"a": 1}),
		vector.FromMap(map[string]float32{"a": 1}),
		vector.FromMap(map[string]float32{"b": 1}),
	}
	centers := seedCenters(vectors, 2)
	require.Len(t, centers, 2)
	assert.Equal(t, "{a:1}", centers[0].String())
	assert.Equal(t, "{b:1}", centers[1].String())

	// Falls back to duplicates when there are not enough distinct vectors.
	centers = seedCenters(vectors[:2], 2)
	assert.Len(t, centers, 2)
}

func TestKMeansInvalidK(t *testing.T) {
	for _, k := range []int{0, -1, 5} {
		_, err := KMeans(context.Background(), twoTopics(), Config{K: k})
		assert.True(t, errors.Is(err, ErrInvalidK))
		assert.True(t, errors.Is(err, vector.ErrInvalidArgument))
	}
}

func TestKMeansRejectsNilVector(t *testing.T) {
	vectors := append(twoTopics(), nil)
	_, err := KMeans(context.Background(), vectors, Config{K: 2})
	assert.ErrorIs(t, err, vector.ErrInvalidArgument)
}

func TestKMeansCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := KMeans(ctx, twoTopics(), Config{K: 2, Logger: logging.Discard()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseRule(t *testing.T) {
	tests := []struct {
		in   string
		want Rule
	}{
		{"", RuleNearest},
		{"nearest", RuleNearest},
		{" Closest ", RuleClosest},
		{"DOT", RuleDot},
	}
	for _, tt := range tests {
		got, err := ParseRule(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseRule("manhattan")
	assert.ErrorIs(t, err, vector.ErrInvalidArgument)
}

func TestRuleScore(t *testing.T) {
	q := vector.FromMap(map[string]float32{"x": 1, "y": 2})
	c := vector.FromMap(map[string]float32{"y": 3, "z": 4})

	assert.Equal(t, float32(-18), RuleNearest.Score(q, c))
	assert.Equal(t, float32(6), RuleDot.Score(q, c))
	assert.InDelta(t, 0.048, RuleClosest.Score(q, c), 1e-6)
	assert.Equal(t, float32(0), RuleClosest.Score(q, nil))
}
