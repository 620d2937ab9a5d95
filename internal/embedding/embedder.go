package embedding

import "sparsevec/internal/vector"

// Embedder converts free text into a sparse term vector.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Embed(text string) (*vector.SparseVector, error)
}
