package numpy

import (
	"github.com/pkg/errors"
)

// broadcastDim joins one pair of right-aligned dimensions.
//
// Size 1 yields to the other side, and an unknown dimension yields to any known size other
// than 1: a known size is taken as the runtime size of the unknown one, and broadcasting an
// unknown against 1 keeps it unknown.
func broadcastDim(d1, d2 int) (int, bool) {
	switch {
	case d1 == d2:
		return d1, true
	case d1 == 1:
		return d2, true
	case d2 == 1:
		return d1, true
	case d1 < 0:
		return d2, true
	case d2 < 0:
		return d1, true
	default:
		return 0, false
	}
}

// broadcastShapes applies numpy broadcasting to any number of shapes.
func broadcastShapes(inputs ...Shape) (Shape, error) {
	if len(inputs) == 0 {
		return Shape{}, nil
	}
	output := inputs[0].Clone()
	for _, input := range inputs[1:] {
		rank := max(len(output), len(input))
		joined := make(Shape, rank)
		for i := range rank {
			d1, d2 := 1, 1
			if j := i - (rank - len(output)); j >= 0 {
				d1 = output[j]
			}
			if j := i - (rank - len(input)); j >= 0 {
				d2 = input[j]
			}
			d, ok := broadcastDim(d1, d2)
			if !ok {
				return nil, errors.Errorf("cannot broadcast shape %s with %s: dimension %d (size %d) is incompatible with size %d",
					output, input, i, d1, d2)
			}
			joined[i] = d
		}
		output = joined
	}
	return output, nil
}

// BroadcastShapes returns the shape resulting from broadcasting a with b, following numpy rules
// extended to unknown dimensions. It returns a *ShapeError if they are not compatible.
//
// Example:
//
//	BroadcastShapes(MakeShape(-1, 3), MakeShape(5, 1)) // -> (5, 3)
func BroadcastShapes(a, b Shape) (Shape, error) {
	output, err := broadcastShapes(a, b)
	if err != nil {
		return nil, newShapeError(OpBroadcastShape, []Shape{a, b}, err)
	}
	return output, nil
}
