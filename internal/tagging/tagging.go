// Package tagging attaches an identifier and a tag to sparse vectors and
// labels vectors from a set of tagged centers.
package tagging

import (
	"context"
	"fmt"
	"log/slog"

	"sparsevec/internal/vector"
)

// Vector is a sparse vector with an identifier and a tag.
type Vector struct {
	*vector.SparseVector
	ID  int64
	Tag string
}

// New builds a tagged vector from parallel name and value slices. The tag is
// left empty.
func New(id int64, names []string, values []float32) (*Vector, error) {
	sv, err := vector.FromValues(names, values)
	if err != nil {
		return nil, err
	}
	return &Vector{SparseVector: sv, ID: id}, nil
}

// FromNames builds an untagged vector with value 1 on every name and ID 0.
func FromNames(names []string) *Vector {
	return &Vector{SparseVector: vector.FromNames(names)}
}

// Wrap tags an existing sparse vector without copying it.
func Wrap(id int64, tag string, sv *vector.SparseVector) *Vector {
	return &Vector{SparseVector: sv, ID: id, Tag: tag}
}

// Tag sets every vector's tag to the tag of the center it has the largest dot
// product with. When threshold is non-nil and that best dot product is below
// it, the vector falls back to the first center's tag.
func Tag(ctx context.Context, logger *slog.Logger, vectors, centers []*Vector, threshold *float32) error {
	if len(centers) == 0 {
		return fmt.Errorf("%w: no centers to tag from", vector.ErrInvalidArgument)
	}
	if logger == nil {
		logger = slog.Default()
	}
	plain := make([]*vector.SparseVector, len(centers))
	for i, c := range centers {
		if c != nil {
			plain[i] = c.SparseVector
		}
	}
	for i, v := range vectors {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx, err := v.MaxDotProductIndex(plain)
		if err != nil {
			return fmt.Errorf("tag vector %d: %w", v.ID, err)
		}
		if threshold != nil {
			if product := v.DotProduct(plain[idx]); product < *threshold {
				logger.DebugContext(ctx, "best center below threshold, using default",
					"vector_id", v.ID,
					"product", product,
					"threshold", *threshold,
				)
				idx = 0
			}
		}
		if centers[idx] != nil {
			v.Tag = centers[idx].Tag
		}
		logger.InfoContext(ctx, "tagged vector", "position", i, "vector_id", v.ID, "center", idx, "tag", v.Tag)
	}
	return nil
}

// String prefixes the coordinate listing with the ID and tag.
func (v *Vector) String() string {
	return fmt.Sprintf("id=%d, tag=%s%s", v.ID, v.Tag, v.SparseVector.String())
}
