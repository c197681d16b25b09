package numpy

// OpType identifies a numpy operation by its numpy name.
type OpType string

// Elementwise unary operations.
const (
	OpAbs         OpType = "abs"
	OpAbsolute    OpType = "absolute"
	OpNegative    OpType = "negative"
	OpPositive    OpType = "positive"
	OpSign        OpType = "sign"
	OpSquare      OpType = "square"
	OpSqrt        OpType = "sqrt"
	OpExp         OpType = "exp"
	OpExp2        OpType = "exp2"
	OpExpm1       OpType = "expm1"
	OpLog         OpType = "log"
	OpLog10       OpType = "log10"
	OpLog1p       OpType = "log1p"
	OpLog2        OpType = "log2"
	OpSin         OpType = "sin"
	OpCos         OpType = "cos"
	OpTan         OpType = "tan"
	OpArcsin      OpType = "arcsin"
	OpArccos      OpType = "arccos"
	OpArctan      OpType = "arctan"
	OpSinh        OpType = "sinh"
	OpCosh        OpType = "cosh"
	OpTanh        OpType = "tanh"
	OpArcsinh     OpType = "arcsinh"
	OpArccosh     OpType = "arccosh"
	OpArctanh     OpType = "arctanh"
	OpReciprocal  OpType = "reciprocal"
	OpCeil        OpType = "ceil"
	OpFloor       OpType = "floor"
	OpTrunc       OpType = "trunc"
	OpRound       OpType = "round"
	OpConj        OpType = "conj"
	OpConjugate   OpType = "conjugate"
	OpReal        OpType = "real"
	OpImag        OpType = "imag"
	OpAngle       OpType = "angle"
	OpIsNaN       OpType = "isnan"
	OpIsInf       OpType = "isinf"
	OpIsFinite    OpType = "isfinite"
	OpLogicalNot  OpType = "logical_not"
	OpBitwiseNot  OpType = "bitwise_not"
	OpInvert      OpType = "invert"
	OpNanToNum    OpType = "nan_to_num"
	OpCopy        OpType = "copy"
	OpArray       OpType = "array"
	OpZerosLike   OpType = "zeros_like"
	OpOnesLike    OpType = "ones_like"
	OpFullLike    OpType = "full_like"
	OpClip        OpType = "clip"
	OpFlip        OpType = "flip"
	OpRoll        OpType = "roll"
	OpTril        OpType = "tril"
	OpTriu        OpType = "triu"
	OpSort        OpType = "sort"
	OpArgsort     OpType = "argsort"
	OpCast        OpType = "cast"
)

// Elementwise binary (broadcasting) operations.
const (
	OpAdd          OpType = "add"
	OpSubtract     OpType = "subtract"
	OpMultiply     OpType = "multiply"
	OpDivide       OpType = "divide"
	OpTrueDivide   OpType = "true_divide"
	OpFloorDivide  OpType = "floor_divide"
	OpMod          OpType = "mod"
	OpPower        OpType = "power"
	OpMaximum      OpType = "maximum"
	OpMinimum      OpType = "minimum"
	OpArctan2      OpType = "arctan2"
	OpLogAddExp    OpType = "logaddexp"
	OpHypot        OpType = "hypot"
	OpCopySign     OpType = "copysign"
	OpEqual        OpType = "equal"
	OpNotEqual     OpType = "not_equal"
	OpGreater      OpType = "greater"
	OpGreaterEqual OpType = "greater_equal"
	OpLess         OpType = "less"
	OpLessEqual    OpType = "less_equal"
	OpIsClose      OpType = "isclose"
	OpLogicalAnd   OpType = "logical_and"
	OpLogicalOr    OpType = "logical_or"
	OpLogicalXor   OpType = "logical_xor"
	OpBitwiseAnd   OpType = "bitwise_and"
	OpBitwiseOr    OpType = "bitwise_or"
	OpBitwiseXor   OpType = "bitwise_xor"
	OpLeftShift    OpType = "left_shift"
	OpRightShift   OpType = "right_shift"
	OpWhere        OpType = "where"
)

// Reductions.
const (
	OpSum          OpType = "sum"
	OpProd         OpType = "prod"
	OpMean         OpType = "mean"
	OpStd          OpType = "std"
	OpVar          OpType = "var"
	OpMax          OpType = "max"
	OpMin          OpType = "min"
	OpAmax         OpType = "amax"
	OpAmin         OpType = "amin"
	OpAll          OpType = "all"
	OpAny          OpType = "any"
	OpMedian       OpType = "median"
	OpCountNonzero OpType = "count_nonzero"
	OpArgmax       OpType = "argmax"
	OpArgmin       OpType = "argmin"
	OpQuantile     OpType = "quantile"
	OpAverage      OpType = "average"
)

// Contractions.
const (
	OpEinsum    OpType = "einsum"
	OpMatmul    OpType = "matmul"
	OpDot       OpType = "dot"
	OpTensordot OpType = "tensordot"
	OpOuter     OpType = "outer"
	OpInner     OpType = "inner"
	OpVdot      OpType = "vdot"
	OpCross     OpType = "cross"
)

// Structural operations.
const (
	OpReshape        OpType = "reshape"
	OpTranspose      OpType = "transpose"
	OpSqueeze        OpType = "squeeze"
	OpExpandDims     OpType = "expand_dims"
	OpConcatenate    OpType = "concatenate"
	OpStack          OpType = "stack"
	OpSplit          OpType = "split"
	OpPad            OpType = "pad"
	OpTake           OpType = "take"
	OpTakeAlongAxis  OpType = "take_along_axis"
	OpTile           OpType = "tile"
	OpMoveAxis       OpType = "moveaxis"
	OpSwapAxes       OpType = "swapaxes"
	OpDiagonal       OpType = "diagonal"
	OpTrace          OpType = "trace"
	OpDiag           OpType = "diag"
	OpBroadcastTo    OpType = "broadcast_to"
	OpRavel          OpType = "ravel"
	OpRepeat         OpType = "repeat"
	OpDiff           OpType = "diff"
	OpAppend         OpType = "append"
	OpHStack         OpType = "hstack"
	OpVStack         OpType = "vstack"
	OpCumsum         OpType = "cumsum"
	OpCumprod        OpType = "cumprod"
	OpSize           OpType = "size"
	OpNDim           OpType = "ndim"
	OpBincount       OpType = "bincount"
	OpBroadcastShape OpType = "broadcast_shapes"
)

// Op describes one call of a numpy operation: its type and the static arguments that
// affect its output shape or dtype. Ops are plain values, created with the constructors
// below (Unary, Reduce, Einsum, Reshape, ...) or as struct literals.
type Op struct {
	Type OpType

	// Axes for reductions, squeeze, expand_dims, concatenate, stack, split, take, repeat, diff,
	// cumsum/cumprod and the like. Nil means "axis None", which has op-specific meaning:
	// reduce over all axes, squeeze all unit axes, flatten first, ...
	Axes []int

	// KeepDims keeps reduced axes with size 1.
	KeepDims bool

	// Subscripts of einsum, e.g. "ij,jk->ik".
	Subscripts string

	// NewShape for reshape and broadcast_to. Reshape accepts one -1 placeholder.
	NewShape []int

	// Perm for transpose. Nil reverses the axes.
	Perm []int

	// Pads for pad: either one (before, after) pair applied to every axis or one pair per axis.
	Pads [][2]int

	// Repeats for repeat and tile.
	Repeats []int

	// Sections is the number of equal sections of split. If Indices is set instead, they are the split points.
	Sections int
	Indices  []int

	// Source and Destination axes for moveaxis.
	Source, Destination []int

	// Offset of diagonal, trace and diag (numpy's offset or k).
	Offset int

	// Axis1 and Axis2 of diagonal, trace and swapaxes.
	Axis1, Axis2 int

	// N is the order of diff, or the number of contracted axes of tensordot when TensorDotAxes is nil.
	N int

	// TensorDotAxes lists the contracted axes of each tensordot operand.
	TensorDotAxes *[2][]int

	// DType is the target dtype of cast.
	DType DType
}

// Unary returns an Op with no static arguments. It also serves binary elementwise ops,
// where and the other ops whose defaults suffice.
//
// diagonal and trace get numpy's default axes (0, 1).
func Unary(opType OpType) Op {
	op := Op{Type: opType}
	if opType == OpDiagonal || opType == OpTrace {
		op.Axis2 = 1
	}
	return op
}

// Elementwise is an alias for Unary, reading better for broadcasting binary ops.
func Elementwise(opType OpType) Op {
	return Unary(opType)
}

// Reduce returns a reduction op over the given axes. No axes means reducing over all axes.
func Reduce(opType OpType, keepDims bool, axes ...int) Op {
	return Op{Type: opType, KeepDims: keepDims, Axes: axesOrNil(axes)}
}

// Einsum returns an einsum op with the given subscripts.
func Einsum(subscripts string) Op {
	return Op{Type: OpEinsum, Subscripts: subscripts}
}

// Reshape returns a reshape op to newShape, which may hold one -1 placeholder.
func Reshape(newShape ...int) Op {
	return Op{Type: OpReshape, NewShape: newShape}
}

// BroadcastTo returns a broadcast_to op to the given shape.
func BroadcastTo(shape ...int) Op {
	return Op{Type: OpBroadcastTo, NewShape: shape}
}

// Transpose returns a transpose op. No permutation reverses the axes.
func Transpose(perm ...int) Op {
	return Op{Type: OpTranspose, Perm: axesOrNil(perm)}
}

// Squeeze returns a squeeze op over the given axes. No axes squeezes every axis of size 1.
func Squeeze(axes ...int) Op {
	return Op{Type: OpSqueeze, Axes: axesOrNil(axes)}
}

// ExpandDims returns an expand_dims op inserting unit axes at the given (output) positions.
func ExpandDims(axes ...int) Op {
	return Op{Type: OpExpandDims, Axes: axes}
}

// Concatenate returns a concatenate op along axis.
func Concatenate(axis int) Op {
	return Op{Type: OpConcatenate, Axes: []int{axis}}
}

// ConcatenateFlat returns a concatenate op with axis None, which is rejected by the resolver.
func ConcatenateFlat() Op {
	return Op{Type: OpConcatenate}
}

// Stack returns a stack op inserting the new axis at axis.
func Stack(axis int) Op {
	return Op{Type: OpStack, Axes: []int{axis}}
}

// Split returns a split op into sections equal parts along axis.
func Split(sections, axis int) Op {
	return Op{Type: OpSplit, Sections: sections, Axes: []int{axis}}
}

// SplitAt returns a split op cutting axis at the given indices.
func SplitAt(axis int, indices ...int) Op {
	if indices == nil {
		indices = []int{}
	}
	return Op{Type: OpSplit, Indices: indices, Axes: []int{axis}}
}

// Pad returns a pad op. Pass one pair to pad every axis the same way, or one pair per axis.
func Pad(pads ...[2]int) Op {
	return Op{Type: OpPad, Pads: pads}
}

// PadAll returns a pad op padding every axis with n before and after.
func PadAll(n int) Op {
	return Op{Type: OpPad, Pads: [][2]int{{n, n}}}
}

// Take returns a take op along axis.
func Take(axis int) Op {
	return Op{Type: OpTake, Axes: []int{axis}}
}

// TakeFlat returns a take op with axis None: the input is flattened first.
func TakeFlat() Op {
	return Op{Type: OpTake}
}

// TakeAlongAxis returns a take_along_axis op.
func TakeAlongAxis(axis int) Op {
	return Op{Type: OpTakeAlongAxis, Axes: []int{axis}}
}

// Tile returns a tile op with the given repetitions.
func Tile(reps ...int) Op {
	return Op{Type: OpTile, Repeats: reps}
}

// Repeat returns a repeat op along axis. Use RepeatFlat for axis None.
func Repeat(axis int, repeats ...int) Op {
	return Op{Type: OpRepeat, Repeats: repeats, Axes: []int{axis}}
}

// RepeatFlat returns a repeat op on the flattened input.
func RepeatFlat(repeats ...int) Op {
	return Op{Type: OpRepeat, Repeats: repeats}
}

// MoveAxis returns a moveaxis op.
func MoveAxis(source, destination []int) Op {
	return Op{Type: OpMoveAxis, Source: source, Destination: destination}
}

// SwapAxes returns a swapaxes op.
func SwapAxes(axis1, axis2 int) Op {
	return Op{Type: OpSwapAxes, Axis1: axis1, Axis2: axis2}
}

// Diagonal returns a diagonal op.
func Diagonal(offset, axis1, axis2 int) Op {
	return Op{Type: OpDiagonal, Offset: offset, Axis1: axis1, Axis2: axis2}
}

// Trace returns a trace op.
func Trace(offset, axis1, axis2 int) Op {
	return Op{Type: OpTrace, Offset: offset, Axis1: axis1, Axis2: axis2}
}

// Diag returns a diag op with offset k.
func Diag(k int) Op {
	return Op{Type: OpDiag, Offset: k}
}

// Diff returns a diff op of order n along axis.
func Diff(n, axis int) Op {
	return Op{Type: OpDiff, N: n, Axes: []int{axis}}
}

// Append returns an append op along axis.
func Append(axis int) Op {
	return Op{Type: OpAppend, Axes: []int{axis}}
}

// AppendFlat returns an append op with axis None: both inputs are flattened.
func AppendFlat() Op {
	return Op{Type: OpAppend}
}

// Cumulative returns a cumsum or cumprod op along axis.
func Cumulative(opType OpType, axis int) Op {
	return Op{Type: opType, Axes: []int{axis}}
}

// CumulativeFlat returns a cumsum or cumprod op on the flattened input.
func CumulativeFlat(opType OpType) Op {
	return Op{Type: opType}
}

// Sort returns a sort or argsort op along axis.
func Sort(opType OpType, axis int) Op {
	return Op{Type: opType, Axes: []int{axis}}
}

// TensorDot returns a tensordot op contracting the last n axes of the first operand with the first n of the second.
func TensorDot(n int) Op {
	return Op{Type: OpTensordot, N: n}
}

// TensorDotOn returns a tensordot op contracting the listed axes of each operand.
func TensorDotOn(xAxes, yAxes []int) Op {
	return Op{Type: OpTensordot, TensorDotAxes: &[2][]int{xAxes, yAxes}}
}

// Cross returns a cross op along the last axis.
func Cross() Op {
	return Op{Type: OpCross}
}

// Cast returns a cast op to dtype.
func Cast(dtype DType) Op {
	return Op{Type: OpCast, DType: dtype}
}

func axesOrNil(axes []int) []int {
	if len(axes) == 0 {
		return nil
	}
	return axes
}

// AxisNone reports whether the op's axis argument is None.
func (op Op) AxisNone() bool { return op.Axes == nil }
