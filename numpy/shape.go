package numpy

import (
	"slices"
	"strconv"
	"strings"
)

// UnknownDim marks a dimension whose size is not known at graph construction time.
// It is printed as "None".
const UnknownDim = -1

// Shape is a symbolic shape: each dimension is either a non-negative size or UnknownDim.
// The empty shape is a scalar.
type Shape []int

// MakeShape returns a Shape with the given dimensions. Any negative dimension is taken as UnknownDim.
func MakeShape(dims ...int) Shape {
	s := make(Shape, len(dims))
	for i, d := range dims {
		if d < 0 {
			d = UnknownDim
		}
		s[i] = d
	}
	return s
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s) }

// IsScalar returns whether the shape has rank 0.
func (s Shape) IsScalar() bool { return len(s) == 0 }

// IsFullyKnown returns whether no dimension is UnknownDim.
func (s Shape) IsFullyKnown() bool {
	for _, d := range s {
		if d < 0 {
			return false
		}
	}
	return true
}

// Size returns the number of elements, or UnknownDim if any dimension is unknown.
func (s Shape) Size() int {
	size := 1
	for _, d := range s {
		if d < 0 {
			return UnknownDim
		}
		size *= d
	}
	return size
}

// Clone returns a copy of the shape. The copy of a nil shape is an empty (scalar) shape.
func (s Shape) Clone() Shape {
	c := make(Shape, len(s))
	copy(c, s)
	return c
}

// Equal returns whether both shapes have the same rank and dimensions, UnknownDim only matching UnknownDim.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// String formats the shape like a Python tuple, e.g. "(None, 3)" or "(5,)".
func (s Shape) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, d := range s {
		if i > 0 {
			sb.WriteString(", ")
		}
		if d < 0 {
			sb.WriteString("None")
		} else {
			sb.WriteString(strconv.Itoa(d))
		}
	}
	if len(s) == 1 {
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
	return sb.String()
}

// ShapeEqual compares two shapes dimension by dimension.
//
// Shapes of different rank are never equal. If allowNone is true an unknown dimension
// matches anything. Axes listed in ignoreAxes (negative values count from the end) are
// not compared.
func ShapeEqual(a, b Shape, allowNone bool, ignoreAxes ...int) bool {
	if len(a) != len(b) {
		return false
	}
	rank := len(a)
	for i := range a {
		ignored := false
		for _, axis := range ignoreAxes {
			if axis < 0 {
				axis += rank
			}
			if axis == i {
				ignored = true
				break
			}
		}
		if ignored {
			continue
		}
		if allowNone && (a[i] < 0 || b[i] < 0) {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// normalizeAxis maps a possibly negative axis into [0, rank), returning false if out of range.
func normalizeAxis(axis, rank int) (int, bool) {
	if axis < -rank || axis >= rank {
		return 0, false
	}
	if axis < 0 {
		axis += rank
	}
	return axis, true
}

// mergeDims returns the dimension compatible with both d1 and d2, where unknown is a wildcard.
func mergeDims(d1, d2 int) (int, bool) {
	switch {
	case d1 < 0:
		return d2, true
	case d2 < 0:
		return d1, true
	case d1 == d2:
		return d1, true
	default:
		return 0, false
	}
}

func addDims(d1, d2 int) int {
	if d1 < 0 || d2 < 0 {
		return UnknownDim
	}
	return d1 + d2
}

func mulDims(d1, d2 int) int {
	if d1 < 0 || d2 < 0 {
		return UnknownDim
	}
	return d1 * d2
}
