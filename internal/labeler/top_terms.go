package labeler

import (
	"strings"

	"sparsevec/internal/vector"
)

// Unlabeled is returned for centers without positive coordinates.
const Unlabeled = "unlabeled"

// TopTermsLabeler names a cluster after the heaviest coordinates of its center.
type TopTermsLabeler struct {
	terms     int
	separator string
}

// NewTopTermsLabeler creates a labeler using up to terms names (default 3).
func NewTopTermsLabeler(terms int) *TopTermsLabeler {
	if terms <= 0 {
		terms = 3
	}
	return &TopTermsLabeler{terms: terms, separator: "/"}
}

// Label joins the names of the largest positive coordinates of center.
func (l *TopTermsLabeler) Label(center *vector.SparseVector) string {
	if center == nil {
		return Unlabeled
	}
	names := make([]string, 0, l.terms)
	for _, c := range center.Top(l.terms) {
		if c.Value <= 0 {
			break
		}
		names = append(names, c.Name)
	}
	if len(names) == 0 {
		return Unlabeled
	}
	return strings.Join(names, l.separator)
}
