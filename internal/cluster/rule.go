package cluster

import (
	"fmt"
	"strings"

	"sparsevec/internal/vector"
)

// Rule selects how a vector is matched to a center.
type Rule string

const (
	// RuleNearest picks the center with the smallest squared distance.
	RuleNearest Rule = "nearest"
	// RuleClosest picks the center with the highest cosine similarity.
	RuleClosest Rule = "closest"
	// RuleDot picks the center with the largest dot product.
	RuleDot Rule = "dot"
)

// ParseRule accepts a rule name, case-insensitively. Empty means nearest.
func ParseRule(s string) (Rule, error) {
	switch r := Rule(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RuleNearest, nil
	case RuleNearest, RuleClosest, RuleDot:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown rule %q", vector.ErrInvalidArgument, s)
	}
}

// AssignFunc returns the selector implementing r.
func (r Rule) AssignFunc() vector.AssignFunc {
	switch r {
	case RuleClosest:
		return (*vector.SparseVector).ClosestIndex
	case RuleDot:
		return (*vector.SparseVector).MaxDotProductIndex
	default:
		return (*vector.SparseVector).NearestIndex
	}
}

// Score rates candidate against query so that a higher score is a better
// match under r. For RuleNearest this is the negated squared distance.
func (r Rule) Score(query, candidate *vector.SparseVector) float32 {
	switch r {
	case RuleClosest:
		if candidate == nil {
			return 0
		}
		s, _ := query.CosineSimilarity(candidate)
		return s
	case RuleDot:
		return query.DotProduct(candidate)
	default:
		return -query.SquaredDistance(candidate)
	}
}
