package vector

import (
	"cmp"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Coordinate is a single named value.
type Coordinate struct {
	Name  string
	Value float32
}

// Top returns the count largest coordinates by value, descending. Equal
// values are ordered by name. A negative count, or one at least Len, returns
// every coordinate.
func (v *SparseVector) Top(count int) []Coordinate {
	out := make([]Coordinate, 0, v.Len())
	for name, value := range v.coords {
		out = append(out, Coordinate{Name: name, Value: value})
	}
	slices.SortFunc(out, func(a, b Coordinate) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if count >= 0 && count < len(out) {
		out = out[:count]
	}
	return out
}

// TopString formats Top(count) in the String layout, largest first.
func (v *SparseVector) TopString(count int) string {
	return formatCoordinates(v.Top(count))
}

// String lists the coordinates as {name:value, ...} sorted by name.
func (v *SparseVector) String() string {
	if v == nil {
		return "{}"
	}
	out := make([]Coordinate, 0, v.Len())
	for _, name := range slices.Sorted(maps.Keys(v.coords)) {
		out = append(out, Coordinate{Name: name, Value: v.coords[name]})
	}
	return formatCoordinates(out)
}

func formatCoordinates(coords []Coordinate) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range coords {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.Name)
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(float64(c.Value), 'g', -1, 32))
	}
	b.WriteByte('}')
	return b.String()
}
