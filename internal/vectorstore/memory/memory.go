package memory

import (
	"cmp"
	"errors"
	"slices"
	"sync"

	"sparsevec/internal/cluster"
	"sparsevec/internal/domain"
	"sparsevec/internal/vector"
)

// Storage is an in-memory passage store ranking by brute force under a
// cluster.Rule.
//
// Stored vectors have their caches filled on Add and are never mutated
// afterwards, so concurrent searches only read them.
type Storage struct {
	mu       sync.RWMutex
	rule     cluster.Rule
	passages []domain.Passage
	vectors  []*vector.SparseVector
	tags     []string
}

// NewStorage creates an empty store scoring with rule.
func NewStorage(rule cluster.Rule) *Storage { return &Storage{rule: rule} }

// Reset drops every stored passage.
func (s *Storage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passages, s.vectors, s.tags = nil, nil, nil
}

// Add appends passages with their vectors.
func (s *Storage) Add(passages []domain.Passage, vectors []*vector.SparseVector) error {
	if len(passages) != len(vectors) {
		return errors.New("passages and vectors length mismatch")
	}
	for _, v := range vectors {
		if v == nil {
			return errors.New("nil passage vector")
		}
		v.WarmCaches()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passages = append(s.passages, passages...)
	s.vectors = append(s.vectors, vectors...)
	s.tags = append(s.tags, make([]string, len(passages))...)
	return nil
}

// SetTags replaces the tag of every stored passage, in insertion order.
func (s *Storage) SetTags(tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(tags) != len(s.passages) {
		return errors.New("tags and passages length mismatch")
	}
	s.tags = slices.Clone(tags)
	return nil
}

// Len is the number of stored passages.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages)
}

// Search returns up to topK passages, best first. Equal scores keep
// insertion order. The query vector is cloned, so callers may share it.
func (s *Storage) Search(query *vector.SparseVector, topK int) ([]domain.Match, error) {
	if query == nil {
		return nil, errors.New("nil query vector")
	}
	q := query.Clone()
	q.WarmCaches()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	matches := make([]domain.Match, len(s.vectors))
	for i, v := range s.vectors {
		matches[i] = domain.Match{Passage: s.passages[i], Score: s.rule.Score(q, v), Tag: s.tags[i]}
	}
	slices.SortStableFunc(matches, func(a, b domain.Match) int { return cmp.Compare(b.Score, a.Score) })
	if topK > len(matches) {
		topK = len(matches)
	}
	return matches[:topK], nil
}
