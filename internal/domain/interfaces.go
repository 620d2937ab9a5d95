package domain

import (
	"context"

	"sparsevec/internal/vector"
)

// Document represents a single text file loaded into the system.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Passage is a run of sentences from a document; it is the unit that gets
// vectorized, clustered and tagged.
type Passage struct {
	DocumentID string
	PassageID  string
	Text       string
	Index      int
}

// Match is a passage scored against a query.
type Match struct {
	Passage Passage
	Score   float32
	// Tag is the label of the cluster the passage was tagged with.
	Tag string
}

// Cluster is one group produced by clustering, named after its center.
type Cluster struct {
	Index    int
	Label    string
	Center   *vector.SparseVector
	Passages []Passage
}

// Chunker splits documents into passages.
type Chunker interface {
	Chunk(document Document) ([]Passage, error)
}

// PassageStore holds passage vectors and ranks them against a query vector.
type PassageStore interface {
	Reset()
	Add(passages []Passage, vectors []*vector.SparseVector) error
	SetTags(tags []string) error
	Search(query *vector.SparseVector, topK int) ([]Match, error)
	Len() int
}

// Labeler names a cluster from its center.
type Labeler interface {
	Label(center *vector.SparseVector) string
}

// QueryResult is the answer to a free-text query.
type QueryResult struct {
	Matches []Match
	// Cluster is the index of the cluster the query itself falls into.
	Cluster int
	Label   string
}

// ClusterService defines the operations exposed by the application core.
type ClusterService interface {
	Ingest(ctx context.Context, paths []string) ([]Cluster, error)
	Query(ctx context.Context, text string, topK int) (*QueryResult, error)
	Clusters() []Cluster
}
