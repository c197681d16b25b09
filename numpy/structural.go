package numpy

import (
	"slices"

	"github.com/pkg/errors"
)

// reshapeShape accepts one -1 placeholder in the new shape, inferred from the total number of elements
// only when the input and the other new dimensions are all known. Otherwise it stays unknown.
func reshapeShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	output := make(Shape, len(op.NewShape))
	placeholder := -1
	knownSize := 1
	for i, d := range op.NewShape {
		switch {
		case d == -1:
			if placeholder >= 0 {
				return nil, errors.Errorf("can only specify one unknown dimension in new shape %v", op.NewShape)
			}
			placeholder = i
			output[i] = UnknownDim
		case d < 0:
			return nil, errors.Errorf("invalid dimension %d in new shape %v", d, op.NewShape)
		default:
			output[i] = d
			knownSize *= d
		}
	}
	size := x.Size()
	if size < 0 {
		return output, nil
	}
	if placeholder < 0 {
		if knownSize != size {
			return nil, errors.Errorf("cannot reshape array of size %d into shape %v", size, op.NewShape)
		}
		return output, nil
	}
	if knownSize == 0 || size%knownSize != 0 {
		return nil, errors.Errorf("cannot reshape array of size %d into shape %v", size, op.NewShape)
	}
	output[placeholder] = size / knownSize
	return output, nil
}

func transposeShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	perm := op.Perm
	if perm == nil {
		perm = make([]int, x.Rank())
		for i := range perm {
			perm[i] = x.Rank() - 1 - i
		}
	}
	if len(perm) != x.Rank() {
		return nil, errors.Errorf("permutation %v doesn't match rank %d", perm, x.Rank())
	}
	normalized, err := normalizeAxes(perm, x.Rank())
	if err != nil {
		return nil, err
	}
	output := make(Shape, len(normalized))
	for i, axis := range normalized {
		output[i] = x[axis]
	}
	return output, nil
}

// squeezeShape removes the given axes, which must be statically 1. Without axes, it removes every axis
// known to be 1. An unknown axis can only be squeezed if the resolver's StrictSqueeze is off.
func squeezeShape(r *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	if op.Axes == nil {
		output := make(Shape, 0, x.Rank())
		for _, d := range x {
			if d != 1 {
				output = append(output, d)
			}
		}
		return output, nil
	}
	axes, err := normalizeAxes(op.Axes, x.Rank())
	if err != nil {
		return nil, err
	}
	for _, axis := range axes {
		d := x[axis]
		if d < 0 && r.config.StrictSqueeze {
			return nil, errors.Errorf("cannot squeeze axis %d of unknown size", axis)
		}
		if d >= 0 && d != 1 {
			return nil, errors.Errorf("cannot select an axis to squeeze out which has size %d not equal to one (axis %d)", d, axis)
		}
	}
	output := make(Shape, 0, x.Rank()-len(axes))
	for i, d := range x {
		if !slices.Contains(axes, i) {
			output = append(output, d)
		}
	}
	return output, nil
}

func expandDimsShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	if len(op.Axes) == 0 {
		return nil, errors.New("expand_dims requires at least one axis")
	}
	rank := x.Rank() + len(op.Axes)
	axes, err := normalizeAxes(op.Axes, rank)
	if err != nil {
		return nil, err
	}
	output := make(Shape, rank)
	next := 0
	for i := range output {
		if slices.Contains(axes, i) {
			output[i] = 1
			continue
		}
		output[i] = x[next]
		next++
	}
	return output, nil
}

// concatShapes joins shapes along axis: the other dimensions must be compatible and the axis sizes add up.
func concatShapes(inputs []Shape, axis int) (Shape, error) {
	if len(inputs) == 0 {
		return nil, errors.New("need at least one array to concatenate")
	}
	rank := inputs[0].Rank()
	if rank == 0 {
		return nil, errors.New("zero-dimensional arrays cannot be concatenated")
	}
	a, ok := normalizeAxis(axis, rank)
	if !ok {
		return nil, errors.Errorf("axis %d is out of bounds for rank %d", axis, rank)
	}
	output := inputs[0].Clone()
	for i, input := range inputs[1:] {
		if input.Rank() != rank {
			return nil, errors.Errorf("all inputs must have the same rank: input #0 has rank %d and input #%d has rank %d",
				rank, i+1, input.Rank())
		}
		for j, d := range input {
			if j == a {
				output[j] = addDims(output[j], d)
				continue
			}
			merged, ok := mergeDims(output[j], d)
			if !ok {
				return nil, errors.Errorf("dimension %d of input #%d (%s) doesn't match: %d vs %d",
					j, i+1, input, d, output[j])
			}
			output[j] = merged
		}
	}
	return output, nil
}

func concatenateShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	if op.Axes == nil {
		return nil, errors.New("concatenate with axis=None is not supported, flatten the inputs first")
	}
	if len(op.Axes) != 1 {
		return nil, errors.Errorf("concatenate takes one axis, got %v", op.Axes)
	}
	return concatShapes(inputs, op.Axes[0])
}

func stackShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	axis := 0
	if len(op.Axes) > 0 {
		axis = op.Axes[0]
	}
	merged := inputs[0].Clone()
	for i, input := range inputs[1:] {
		if !ShapeEqual(merged, input, true) {
			return nil, errors.Errorf("all input arrays must have the same shape: input #%d has shape %s, expected %s",
				i+1, input, merged)
		}
		for j, d := range input {
			merged[j], _ = mergeDims(merged[j], d)
		}
	}
	a, ok := normalizeAxis(axis, merged.Rank()+1)
	if !ok {
		return nil, errors.Errorf("axis %d is out of bounds for rank %d", axis, merged.Rank()+1)
	}
	output := slices.Insert(merged, a, len(inputs))
	return output, nil
}

// splitShapes splits into op.Sections equal parts, or at op.Indices.
func splitShapes(_ *Resolver, op Op, inputs []Shape) ([]Shape, error) {
	x := inputs[0]
	axis := 0
	if len(op.Axes) > 0 {
		axis = op.Axes[0]
	}
	a, ok := normalizeAxis(axis, x.Rank())
	if !ok {
		return nil, errors.Errorf("axis %d is out of bounds for rank %d", axis, x.Rank())
	}
	dim := x[a]
	var sizes []int
	if op.Indices != nil {
		sizes = splitSizesAt(dim, op.Indices)
	} else {
		if op.Sections <= 0 {
			return nil, errors.Errorf("number of sections must be larger than 0, got %d", op.Sections)
		}
		size := UnknownDim
		if dim >= 0 {
			if dim%op.Sections != 0 {
				return nil, errors.Errorf("array split does not result in an equal division: axis %d of size %d into %d sections",
					a, dim, op.Sections)
			}
			size = dim / op.Sections
		}
		sizes = make([]int, op.Sections)
		for i := range sizes {
			sizes[i] = size
		}
	}
	outputs := make([]Shape, len(sizes))
	for i, size := range sizes {
		outputs[i] = x.Clone()
		outputs[i][a] = size
	}
	return outputs, nil
}

// splitSizesAt returns the sizes of the len(indices)+1 parts of an axis of size dim cut at indices.
// Indices are clipped to the axis and parts never have negative size.
func splitSizesAt(dim int, indices []int) []int {
	bounds := make([]int, 0, len(indices)+2)
	bounds = append(bounds, 0)
	for _, index := range indices {
		switch {
		case index < 0 && dim < 0:
			index = UnknownDim
		case index < 0:
			index = max(index+dim, 0)
		case dim >= 0:
			index = min(index, dim)
		}
		bounds = append(bounds, index)
	}
	bounds = append(bounds, dim)
	sizes := make([]int, len(bounds)-1)
	for i := range sizes {
		start, end := bounds[i], bounds[i+1]
		if start < 0 || end < 0 {
			sizes[i] = UnknownDim
			continue
		}
		sizes[i] = max(end-start, 0)
	}
	return sizes
}

func padShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	pads := op.Pads
	switch len(pads) {
	case x.Rank():
	case 1:
		pads = slices.Repeat(pads, x.Rank())
	default:
		return nil, errors.Errorf("pad width must have one pair per axis (%d), or a single pair, got %d pairs",
			x.Rank(), len(pads))
	}
	output := make(Shape, x.Rank())
	for i, d := range x {
		if pads[i][0] < 0 || pads[i][1] < 0 {
			return nil, errors.Errorf("negative padding %v for axis %d", pads[i], i)
		}
		output[i] = addDims(d, pads[i][0]+pads[i][1])
	}
	return output, nil
}

// takeShape returns x[:axis] + indices + x[axis+1:], or the indices shape for axis None.
func takeShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x, indices := inputs[0], inputs[1]
	opAxis, isNone, err := singleAxis(op)
	if err != nil {
		return nil, err
	}
	if isNone {
		return indices.Clone(), nil
	}
	axis, ok := normalizeAxis(opAxis, x.Rank())
	if !ok {
		return nil, errors.Errorf("axis %d is out of bounds for rank %d", opAxis, x.Rank())
	}
	output := make(Shape, 0, x.Rank()-1+indices.Rank())
	output = append(output, x[:axis]...)
	output = append(output, indices...)
	output = append(output, x[axis+1:]...)
	return output, nil
}

// takeAlongAxisShape takes the indices size on the axis and broadcasts the other axes.
func takeAlongAxisShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x, indices := inputs[0], inputs[1]
	opAxis, isNone, err := singleAxis(op)
	if err != nil {
		return nil, err
	}
	if isNone {
		x = Shape{x.Size()}
	}
	if x.Rank() != indices.Rank() {
		return nil, errors.Errorf("x and indices must have the same rank, got %s and %s", x, indices)
	}
	axis := 0
	if !isNone {
		var ok bool
		if axis, ok = normalizeAxis(opAxis, x.Rank()); !ok {
			return nil, errors.Errorf("axis %d is out of bounds for rank %d", opAxis, x.Rank())
		}
	}
	output := x.Clone()
	output[axis] = indices[axis]
	return broadcastShapes(output, indices)
}

// tileShape pads the shorter of shape and reps with leading ones, then multiplies.
func tileShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	reps := op.Repeats
	for _, rep := range reps {
		if rep < 0 {
			return nil, errors.Errorf("negative repetitions %v", reps)
		}
	}
	rank := max(x.Rank(), len(reps))
	output := make(Shape, rank)
	for i := range output {
		d, rep := 1, 1
		if j := i - (rank - x.Rank()); j >= 0 {
			d = x[j]
		}
		if j := i - (rank - len(reps)); j >= 0 {
			rep = reps[j]
		}
		output[i] = mulDims(d, rep)
	}
	return output, nil
}

// repeatShape repeats along an axis (or the flattened input): a single count multiplies
// the size, while one count per element sums up.
func repeatShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	repeats := op.Repeats
	if len(repeats) == 0 {
		return nil, errors.New("repeat requires repeats")
	}
	total := 0
	for _, rep := range repeats {
		if rep < 0 {
			return nil, errors.Errorf("negative repeats %v", repeats)
		}
		total += rep
	}
	repeatDim := func(d int) (int, error) {
		if len(repeats) == 1 {
			return mulDims(d, repeats[0]), nil
		}
		if d >= 0 && d != len(repeats) {
			return 0, errors.Errorf("%d repeats given for an axis of size %d", len(repeats), d)
		}
		return total, nil
	}
	opAxis, isNone, err := singleAxis(op)
	if err != nil {
		return nil, err
	}
	if isNone {
		d, err := repeatDim(x.Size())
		if err != nil {
			return nil, err
		}
		return Shape{d}, nil
	}
	axis, ok := normalizeAxis(opAxis, x.Rank())
	if !ok {
		return nil, errors.Errorf("axis %d is out of bounds for rank %d", opAxis, x.Rank())
	}
	d, err := repeatDim(x[axis])
	if err != nil {
		return nil, err
	}
	output := x.Clone()
	output[axis] = d
	return output, nil
}

// moveAxisShape follows numpy's moveaxis: the other axes keep their relative order.
func moveAxisShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	if len(op.Source) != len(op.Destination) {
		return nil, errors.Errorf("source %v and destination %v must have the same number of elements", op.Source, op.Destination)
	}
	source, err := normalizeAxes(op.Source, x.Rank())
	if err != nil {
		return nil, errors.WithMessage(err, "source")
	}
	destination, err := normalizeAxes(op.Destination, x.Rank())
	if err != nil {
		return nil, errors.WithMessage(err, "destination")
	}
	order := make([]int, 0, x.Rank())
	for axis := range x.Rank() {
		if !slices.Contains(source, axis) {
			order = append(order, axis)
		}
	}
	type move struct{ dst, src int }
	moves := make([]move, len(source))
	for i := range source {
		moves[i] = move{destination[i], source[i]}
	}
	slices.SortFunc(moves, func(a, b move) int { return a.dst - b.dst })
	for _, m := range moves {
		order = slices.Insert(order, m.dst, m.src)
	}
	output := make(Shape, x.Rank())
	for i, axis := range order {
		output[i] = x[axis]
	}
	return output, nil
}

func swapAxesShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	a1, ok1 := normalizeAxis(op.Axis1, x.Rank())
	a2, ok2 := normalizeAxis(op.Axis2, x.Rank())
	if !ok1 || !ok2 {
		return nil, errors.Errorf("axes (%d, %d) out of bounds for rank %d", op.Axis1, op.Axis2, x.Rank())
	}
	output := x.Clone()
	output[a1], output[a2] = output[a2], output[a1]
	return output, nil
}

// diagonalLength returns the length of the offset diagonal of a d1 x d2 matrix.
func diagonalLength(d1, d2, offset int) int {
	if d1 < 0 || d2 < 0 {
		return UnknownDim
	}
	if offset >= 0 {
		return max(min(d1, d2-offset), 0)
	}
	return max(min(d1+offset, d2), 0)
}

// diagonalAxes normalizes op.Axis1 and op.Axis2, which must differ, and returns the remaining axes' dimensions.
func diagonalAxes(op Op, x Shape) (a1, a2 int, rest Shape, err error) {
	if x.Rank() < 2 {
		return 0, 0, nil, errors.Errorf("%s requires at least 2 dimensions, got shape %s", op.Type, x)
	}
	var ok1, ok2 bool
	a1, ok1 = normalizeAxis(op.Axis1, x.Rank())
	a2, ok2 = normalizeAxis(op.Axis2, x.Rank())
	if !ok1 || !ok2 {
		return 0, 0, nil, errors.Errorf("axes (%d, %d) out of bounds for rank %d", op.Axis1, op.Axis2, x.Rank())
	}
	if a1 == a2 {
		return 0, 0, nil, errors.Errorf("axis1 and axis2 cannot be the same (%d)", a1)
	}
	rest = make(Shape, 0, x.Rank()-2)
	for i, d := range x {
		if i != a1 && i != a2 {
			rest = append(rest, d)
		}
	}
	return a1, a2, rest, nil
}

func diagonalShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	a1, a2, rest, err := diagonalAxes(op, x)
	if err != nil {
		return nil, err
	}
	return append(rest, diagonalLength(x[a1], x[a2], op.Offset)), nil
}

func traceShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	_, _, rest, err := diagonalAxes(op, inputs[0])
	return rest, err
}

// diagShape builds a square matrix from a vector, or extracts the diagonal of a matrix.
func diagShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	switch x.Rank() {
	case 1:
		k := op.Offset
		if k < 0 {
			k = -k
		}
		n := addDims(x[0], k)
		return Shape{n, n}, nil
	case 2:
		return Shape{diagonalLength(x[0], x[1], op.Offset)}, nil
	default:
		return nil, errors.Errorf("diag requires a 1D or 2D input, got shape %s", x)
	}
}

// broadcastToShape checks that x broadcasts to op.NewShape, where -1 entries are unknown and take x's size.
func broadcastToShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	target := MakeShape(op.NewShape...)
	if x.Rank() > target.Rank() {
		return nil, errors.Errorf("input of rank %d cannot be broadcast to the lower rank shape %s", x.Rank(), target)
	}
	offset := target.Rank() - x.Rank()
	for i, d := range x {
		t := target[offset+i]
		switch {
		case d == 1 || d == t || d < 0:
		case t < 0:
			target[offset+i] = d
		default:
			return nil, errors.Errorf("cannot broadcast axis %d of size %d to size %d", i, d, t)
		}
	}
	return target, nil
}

func ravelShape(_ *Resolver, _ Op, inputs []Shape) (Shape, error) {
	return Shape{inputs[0].Size()}, nil
}

// diffShape shrinks the axis (-1 if not given) by n, clipping at 0.
func diffShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	if x.IsScalar() {
		return nil, errors.New("diff requires input that is at least one dimensional")
	}
	if op.N < 0 {
		return nil, errors.Errorf("order must be non-negative but got %d", op.N)
	}
	axis := -1
	if len(op.Axes) > 0 {
		axis = op.Axes[0]
	}
	a, ok := normalizeAxis(axis, x.Rank())
	if !ok {
		return nil, errors.Errorf("axis %d is out of bounds for rank %d", axis, x.Rank())
	}
	output := x.Clone()
	if d := output[a]; d >= 0 {
		output[a] = max(d-op.N, 0)
	}
	return output, nil
}

func appendShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	axis, isNone, err := singleAxis(op)
	if err != nil {
		return nil, err
	}
	if isNone {
		return Shape{addDims(inputs[0].Size(), inputs[1].Size())}, nil
	}
	return concatShapes(inputs, axis)
}

// hstackShape concatenates along the first axis for 1D inputs and along the second otherwise.
func hstackShape(_ *Resolver, _ Op, inputs []Shape) (Shape, error) {
	atLeast1D := make([]Shape, len(inputs))
	for i, input := range inputs {
		if input.IsScalar() {
			input = Shape{1}
		}
		atLeast1D[i] = input
	}
	axis := 1
	if atLeast1D[0].Rank() == 1 {
		axis = 0
	}
	return concatShapes(atLeast1D, axis)
}

// vstackShape concatenates along the first axis, after making inputs at least 2D.
func vstackShape(_ *Resolver, _ Op, inputs []Shape) (Shape, error) {
	atLeast2D := make([]Shape, len(inputs))
	for i, input := range inputs {
		switch input.Rank() {
		case 0:
			input = Shape{1, 1}
		case 1:
			input = Shape{1, input[0]}
		}
		atLeast2D[i] = input
	}
	return concatShapes(atLeast2D, 0)
}

// cumulativeShape keeps the shape along an axis, or flattens for axis None.
func cumulativeShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	axis, isNone, err := singleAxis(op)
	if err != nil {
		return nil, err
	}
	if isNone {
		return Shape{inputs[0].Size()}, nil
	}
	if _, err := normalizeAxes([]int{axis}, inputs[0].Rank()); err != nil {
		return nil, err
	}
	return inputs[0].Clone(), nil
}

func bincountShape(_ *Resolver, _ Op, inputs []Shape) (Shape, error) {
	x := inputs[0]
	if x.Rank() != 1 {
		return nil, errors.Errorf("bincount requires a 1D input, got shape %s", x)
	}
	if len(inputs) == 2 && !ShapeEqual(x, inputs[1], true) {
		return nil, errors.Errorf("weights of shape %s don't match input shape %s", inputs[1], x)
	}
	// The number of bins depends on the values.
	return Shape{UnknownDim}, nil
}

func fullLikeShape(_ *Resolver, _ Op, inputs []Shape) (Shape, error) {
	if len(inputs) == 2 {
		if _, err := broadcastShapes(inputs[0], inputs[1]); err != nil {
			return nil, errors.WithMessage(err, "fill value")
		}
	}
	return inputs[0].Clone(), nil
}
