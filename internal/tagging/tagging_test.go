package tagging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparsevec/internal/logging"
	"sparsevec/internal/vector"
)

func mustNew(t *testing.T, id int64, names []string, values []float32) *Vector {
	t.Helper()
	v, err := New(id, names, values)
	require.NoError(t, err)
	return v
}

func sampleCenters(t *testing.T) []*Vector {
	t.Helper()
	sports := mustNew(t, 100, []string{"ball", "goal"}, []float32{1, 1})
	sports.Tag = "sports"
	tech := mustNew(t, 101, []string{"cpu", "code"}, []float32{1, 1})
	tech.Tag = "tech"
	return []*Vector{sports, tech}
}

func TestTag(t *testing.T) {
	vectors := []*Vector{
		mustNew(t, 1, []string{"goal", "team"}, []float32{2, 1}),
		mustNew(t, 2, []string{"code", "cpu"}, []float32{1, 3}),
	}

	err := Tag(context.Background(), logging.Discard(), vectors, sampleCenters(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "sports", vectors[0].Tag)
	assert.Equal(t, "tech", vectors[1].Tag)
}

func TestTagThresholdFallsBackToFirstCenter(t *testing.T) {
	weak := mustNew(t, 3, []string{"cpu", "weather"}, []float32{0.1, 5})
	strong := mustNew(t, 4, []string{"cpu"}, []float32{2})
	threshold := float32(0.5)

	err := Tag(context.Background(), logging.Discard(), []*Vector{weak, strong}, sampleCenters(t), &threshold)
	require.NoError(t, err)
	assert.Equal(t, "sports", weak.Tag)
	assert.Equal(t, "tech", strong.Tag)
}

func TestTagNoCenters(t *testing.T) {
	v := FromNames([]string{"x"})
	err := Tag(context.Background(), logging.Discard(), []*Vector{v}, nil, nil)
	assert.True(t, errors.Is(err, vector.ErrInvalidArgument))
}

func TestTagCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Tag(ctx, logging.Discard(), []*Vector{FromNames([]string{"x"})}, sampleCenters(t), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestString(t *testing.T) {
	v := mustNew(t, 7, []string{"b", "a"}, []float32{2, 1})
	v.Tag = "demo"
	assert.Equal(t, "id=7, tag=demo{a:1, b:2}", v.String())
}

func TestNewLengthMismatch(t *testing.T) {
	_, err := New(1, []string{"a", "b"}, []float32{1})
	assert.ErrorIs(t, err, vector.ErrInvalidArgument)
}
