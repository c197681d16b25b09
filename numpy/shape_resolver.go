package numpy

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// shapeRule computes the output shapes of an op. Errors are wrapped into a *ShapeError by the caller.
type shapeRule func(r *Resolver, op Op, inputs []Shape) ([]Shape, error)

// single adapts a single-output rule to a shapeRule.
func single(rule func(r *Resolver, op Op, inputs []Shape) (Shape, error)) shapeRule {
	return func(r *Resolver, op Op, inputs []Shape) ([]Shape, error) {
		output, err := rule(r, op, inputs)
		if err != nil {
			return nil, err
		}
		return []Shape{output}, nil
	}
}

// ResolveShapes returns the output shapes of op applied to inputs of the given shapes.
// Most ops have one output; split has one per section.
//
// It returns a *ShapeError if the op is unknown or the shapes are incompatible.
func (r *Resolver) ResolveShapes(op Op, inputs ...Shape) ([]Shape, error) {
	info, err := lookupOp(op.Type, len(inputs))
	if err != nil {
		return nil, newShapeError(op.Type, inputs, err)
	}
	outputs, err := info.shape(r, op, inputs)
	if err != nil {
		return nil, newShapeError(op.Type, inputs, err)
	}
	if klog.V(3).Enabled() {
		klog.Infof("numpy.%s%v -> %v", op.Type, inputs, outputs)
	}
	return outputs, nil
}

// ResolveShape returns the output shape of a single-output op applied to inputs of the given shapes.
//
// It returns a *ShapeError if the op is unknown, has more than one output, or the shapes are incompatible.
func (r *Resolver) ResolveShape(op Op, inputs ...Shape) (Shape, error) {
	outputs, err := r.ResolveShapes(op, inputs...)
	if err != nil {
		return nil, err
	}
	if len(outputs) != 1 {
		return nil, newShapeError(op.Type, inputs,
			errors.Errorf("op has %d outputs, use ResolveShapes instead", len(outputs)))
	}
	return outputs[0], nil
}

// MustResolveShape is like ResolveShape but panics (with exceptions.Panicf) on error.
func (r *Resolver) MustResolveShape(op Op, inputs ...Shape) Shape {
	output, err := r.ResolveShape(op, inputs...)
	if err != nil {
		exceptions.Panicf("%+v", err)
	}
	return output
}

// singleAxis returns the axis of ops taking one optional axis. isNone is set for axis None (nil Axes).
func singleAxis(op Op) (axis int, isNone bool, err error) {
	switch {
	case op.Axes == nil:
		return 0, true, nil
	case len(op.Axes) != 1:
		return 0, false, errors.Errorf("%s takes a single axis or None, got %v", op.Type, op.Axes)
	}
	return op.Axes[0], false, nil
}

// normalizeAxes normalizes the axes to [0, rank), rejecting duplicates and out-of-range values.
func normalizeAxes(axes []int, rank int) ([]int, error) {
	normalized := make([]int, len(axes))
	for i, axis := range axes {
		a, ok := normalizeAxis(axis, rank)
		if !ok {
			return nil, errors.Errorf("axis %d is out of bounds for rank %d", axis, rank)
		}
		if slices.Contains(normalized[:i], a) {
			return nil, errors.Errorf("repeated axis %d in %v", axis, axes)
		}
		normalized[i] = a
	}
	return normalized, nil
}

// sameShape returns a copy of the first input, checking the axis argument if there is one.
func sameShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	if op.Axes != nil {
		if _, err := normalizeAxes(op.Axes, x.Rank()); err != nil {
			return nil, err
		}
	}
	return x.Clone(), nil
}

// elementwiseShape broadcasts all inputs together.
func elementwiseShape(_ *Resolver, _ Op, inputs []Shape) (Shape, error) {
	return broadcastShapes(inputs...)
}

// whereShape broadcasts condition, x and y. With only the condition, it returns the condition's shape.
func whereShape(_ *Resolver, _ Op, inputs []Shape) (Shape, error) {
	if len(inputs) == 1 {
		return inputs[0].Clone(), nil
	}
	if len(inputs) != 3 {
		return nil, errors.Errorf("where takes either 1 or 3 inputs, got %d", len(inputs))
	}
	return broadcastShapes(inputs...)
}

func scalarShape(_ *Resolver, _ Op, _ []Shape) (Shape, error) {
	return Shape{}, nil
}

// reducedShape removes (or sets to 1 if keepDims) the given axes. Nil axes reduce everything.
func reducedShape(x Shape, axes []int, keepDims bool) (Shape, error) {
	if axes == nil {
		if !keepDims {
			return Shape{}, nil
		}
		output := make(Shape, x.Rank())
		for i := range output {
			output[i] = 1
		}
		return output, nil
	}
	normalized, err := normalizeAxes(axes, x.Rank())
	if err != nil {
		return nil, err
	}
	output := make(Shape, 0, x.Rank())
	for i, d := range x {
		if slices.Contains(normalized, i) {
			if keepDims {
				output = append(output, 1)
			}
			continue
		}
		output = append(output, d)
	}
	return output, nil
}

func reduceShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	if (op.Type == OpArgmax || op.Type == OpArgmin) && len(op.Axes) > 1 {
		return nil, errors.Errorf("%s accepts at most one axis, got %v", op.Type, op.Axes)
	}
	return reducedShape(inputs[0], op.Axes, op.KeepDims)
}

// quantileShape reduces x (first input) and prepends the shape of q (second input).
func quantileShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x, q := inputs[0], inputs[1]
	if q.Rank() > 1 {
		return nil, errors.Errorf("q must be a scalar or 1D, got shape %s", q)
	}
	reduced, err := reducedShape(x, op.Axes, op.KeepDims)
	if err != nil {
		return nil, err
	}
	return append(q.Clone(), reduced...), nil
}

// averageShape reduces x, validating the optional weights (second input): they must either
// match x, or be 1D matching the single reduced axis.
func averageShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	if len(inputs) == 2 {
		weights := inputs[1]
		switch {
		case ShapeEqual(x, weights, true):
		case weights.Rank() == 1 && len(op.Axes) == 1:
			axis, ok := normalizeAxis(op.Axes[0], x.Rank())
			if !ok {
				return nil, errors.Errorf("axis %d is out of bounds for rank %d", op.Axes[0], x.Rank())
			}
			if _, ok := mergeDims(x[axis], weights[0]); !ok {
				return nil, errors.Errorf("weights of shape %s don't match axis %d of shape %s", weights, op.Axes[0], x)
			}
		default:
			return nil, errors.Errorf("weights of shape %s are incompatible with input shape %s and axis %v", weights, x, op.Axes)
		}
	}
	return reducedShape(x, op.Axes, op.KeepDims)
}

// matmulShape follows numpy's matmul: 1D operands are promoted to matrices and the
// added axis removed afterwards, and the batch axes broadcast.
func matmulShape(_ *Resolver, _ Op, inputs []Shape) (Shape, error) {
	x1, x2 := inputs[0], inputs[1]
	if x1.IsScalar() || x2.IsScalar() {
		return nil, errors.New("matmul does not accept scalars")
	}
	vectorLHS, vectorRHS := x1.Rank() == 1, x2.Rank() == 1
	if vectorLHS {
		x1 = Shape{1, x1[0]}
	}
	if vectorRHS {
		x2 = Shape{x2[0], 1}
	}
	r1, r2 := x1.Rank(), x2.Rank()
	if _, ok := mergeDims(x1[r1-1], x2[r2-2]); !ok {
		return nil, errors.Errorf("contracting dimensions don't match: %d (last axis of %s) vs %d (axis -2 of %s)",
			x1[r1-1], inputs[0], x2[r2-2], inputs[1])
	}
	batch, err := broadcastShapes(x1[:r1-2], x2[:r2-2])
	if err != nil {
		return nil, errors.WithMessage(err, "batch axes")
	}
	output := batch
	if !vectorLHS {
		output = append(output, x1[r1-2])
	}
	if !vectorRHS {
		output = append(output, x2[r2-1])
	}
	return output, nil
}

// dotShape follows numpy's dot: scalars multiply elementwise, 1D·1D is an inner product,
// and otherwise the last axis of x is contracted with the second-to-last axis of y
// (or its only axis).
func dotShape(_ *Resolver, _ Op, inputs []Shape) (Shape, error) {
	x, y := inputs[0], inputs[1]
	switch {
	case x.IsScalar():
		return y.Clone(), nil
	case y.IsScalar():
		return x.Clone(), nil
	}
	yAxis := 0
	if y.Rank() >= 2 {
		yAxis = y.Rank() - 2
	}
	if _, ok := mergeDims(x[x.Rank()-1], y[yAxis]); !ok {
		return nil, errors.Errorf("shapes %s and %s not aligned: %d (last axis) != %d (axis %d)",
			x, y, x[x.Rank()-1], y[yAxis], yAxis)
	}
	output := x[:x.Rank()-1].Clone()
	if y.Rank() >= 2 {
		output = append(output, y[:yAxis]...)
		output = append(output, y[y.Rank()-1])
	}
	return output, nil
}

func tensordotShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x, y := inputs[0], inputs[1]
	var xAxes, yAxes []int
	if op.TensorDotAxes == nil {
		n := op.N
		if n < 0 || n > x.Rank() || n > y.Rank() {
			return nil, errors.Errorf("cannot contract %d axes of shapes %s and %s", n, x, y)
		}
		for i := range n {
			xAxes = append(xAxes, x.Rank()-n+i)
			yAxes = append(yAxes, i)
		}
	} else {
		var err error
		if len(op.TensorDotAxes[0]) != len(op.TensorDotAxes[1]) {
			return nil, errors.Errorf("tensordot axes must have the same length, got %v", *op.TensorDotAxes)
		}
		if xAxes, err = normalizeAxes(op.TensorDotAxes[0], x.Rank()); err != nil {
			return nil, err
		}
		if yAxes, err = normalizeAxes(op.TensorDotAxes[1], y.Rank()); err != nil {
			return nil, err
		}
	}
	for i := range xAxes {
		if _, ok := mergeDims(x[xAxes[i]], y[yAxes[i]]); !ok {
			return nil, errors.Errorf("shape mismatch for contracted axes %d of %s and %d of %s", xAxes[i], x, yAxes[i], y)
		}
	}
	output := make(Shape, 0, x.Rank()+y.Rank()-2*len(xAxes))
	for i, d := range x {
		if !slices.Contains(xAxes, i) {
			output = append(output, d)
		}
	}
	for i, d := range y {
		if !slices.Contains(yAxes, i) {
			output = append(output, d)
		}
	}
	return output, nil
}

func outerShape(_ *Resolver, _ Op, inputs []Shape) (Shape, error) {
	return Shape{inputs[0].Size(), inputs[1].Size()}, nil
}

func innerShape(_ *Resolver, _ Op, inputs []Shape) (Shape, error) {
	x, y := inputs[0], inputs[1]
	if x.IsScalar() || y.IsScalar() {
		return broadcastShapes(x, y)
	}
	if _, ok := mergeDims(x[x.Rank()-1], y[y.Rank()-1]); !ok {
		return nil, errors.Errorf("last dimensions must match: %s vs %s", x, y)
	}
	output := x[:x.Rank()-1].Clone()
	return append(output, y[:y.Rank()-1]...), nil
}

func vdotShape(_ *Resolver, _ Op, inputs []Shape) (Shape, error) {
	if _, ok := mergeDims(inputs[0].Size(), inputs[1].Size()); !ok {
		return nil, errors.Errorf("vdot requires the same number of elements, got %s and %s", inputs[0], inputs[1])
	}
	return Shape{}, nil
}

// crossShape accepts vectors of 2 or 3 components on the last axis and broadcasts the other axes.
// If both vectors have 2 components the output drops the last axis.
func crossShape(_ *Resolver, _ Op, inputs []Shape) (Shape, error) {
	x, y := inputs[0], inputs[1]
	if x.IsScalar() || y.IsScalar() {
		return nil, errors.New("cross does not accept scalars")
	}
	dx, dy := x[x.Rank()-1], y[y.Rank()-1]
	for _, d := range []int{dx, dy} {
		if d != 2 && d != 3 {
			if d < 0 {
				return nil, errors.New("cross requires a known size (2 or 3) on the last axis")
			}
			return nil, errors.Errorf("incompatible dimension %d for cross product (dimension must be 2 or 3)", d)
		}
	}
	output, err := broadcastShapes(x[:x.Rank()-1], y[:y.Rank()-1])
	if err != nil {
		return nil, err
	}
	if dx == 2 && dy == 2 {
		return output, nil
	}
	return append(output, 3), nil
}
