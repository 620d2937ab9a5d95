package vector

import "fmt"

// AssignFunc picks the index of the center a vector belongs to. The method
// expressions (*SparseVector).NearestIndex, (*SparseVector).ClosestIndex and
// (*SparseVector).MaxDotProductIndex all satisfy it.
type AssignFunc func(v *SparseVector, centers []*SparseVector) (int, error)

// Aggregate groups vectors by the center rule assigns them to. The result has
// one group per center, in center order; groups nobody was assigned to are
// empty, not nil. Vectors keep their input order inside a group.
func Aggregate(vectors, centers []*SparseVector, rule AssignFunc) ([][]*SparseVector, error) {
	return Partition(vectors, len(centers), func(v *SparseVector) (int, error) {
		return rule(v, centers)
	})
}

// Partition splits items into k ordered groups using assign. An index outside
// [0, k) is reported as ErrInvalidArgument; errors from assign are returned
// wrapped with the item position.
func Partition[T any](items []T, k int, assign func(T) (int, error)) ([][]T, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: negative group count %d", ErrInvalidArgument, k)
	}
	groups := make([][]T, k)
	for i := range groups {
		groups[i] = []T{}
	}
	for i, item := range items {
		idx, err := assign(item)
		if err != nil {
			return nil, fmt.Errorf("assign item %d: %w", i, err)
		}
		if idx < 0 || idx >= k {
			return nil, fmt.Errorf("%w: item %d assigned to group %d of %d", ErrInvalidArgument, i, idx, k)
		}
		groups[idx] = append(groups[idx], item)
	}
	return groups, nil
}
