package numpy

import (
	"slices"

	"github.com/gomlx/gomlx/pkg/support/sets"
	"github.com/pkg/errors"
)

// dtypeCategory selects how the output dtype of an op is derived from its inputs.
type dtypeCategory int

const (
	// dtypePromote: result type of the inputs.
	dtypePromote dtypeCategory = iota

	// dtypeTranscendental: integer and boolean inputs become FloatX.
	dtypeTranscendental

	// dtypeTrueDivide: result type of the inputs and a weak float.
	dtypeTrueDivide

	// dtypeCounting: always int32.
	dtypeCounting

	// dtypeBool: always bool (logical ops and comparisons).
	dtypeBool

	// dtypeStatistics: integer and boolean inputs become FloatX.
	dtypeStatistics

	// dtypeAccumulate: small integers and booleans widen to 32 bits.
	dtypeAccumulate

	// dtypeMatmul: int8 x int8 accumulates into int32.
	dtypeMatmul

	// dtypeCast: the op's target dtype.
	dtypeCast

	// dtypeRealPart: complex inputs become their real counterpart.
	dtypeRealPart

	// dtypeBitwise: like dtypePromote, but only on integers and booleans.
	dtypeBitwise
)

// sparseRule selects how the sparseness of the output is derived.
type sparseRule int

const (
	sparseDense sparseRule = iota
	sparsePreserve
	sparseDensify
	sparseUnion
	sparseIntersection
	sparseDivision
	sparseConcat
)

// opInfo is the entry of an op in opRegistry.
type opInfo struct {
	// minInputs and maxInputs bound the number of inputs; maxInputs < 0 means unbounded.
	minInputs, maxInputs int

	shape  shapeRule
	dtype  dtypeCategory
	sparse sparseRule

	// dtypeOperands lists which inputs take part in dtype resolution; nil means all.
	dtypeOperands []int
}

var (
	// transcendentalOps return floats: integer or boolean inputs are converted to FloatX.
	transcendentalOps = sets.MakeWith(
		OpSin, OpCos, OpTan, OpArcsin, OpArccos, OpArctan,
		OpSinh, OpCosh, OpTanh, OpArcsinh, OpArccosh, OpArctanh,
		OpExp, OpExp2, OpExpm1, OpLog, OpLog10, OpLog1p, OpLog2,
		OpSqrt, OpReciprocal, OpCeil, OpFloor, OpTrunc)

	// trueDivisionOps promote their inputs together with a weak float.
	trueDivisionOps = sets.MakeWith(OpDivide, OpTrueDivide, OpArctan2, OpLogAddExp, OpHypot)

	// countingOps always return int32.
	countingOps = sets.MakeWith(OpCountNonzero, OpArgmax, OpArgmin, OpArgsort, OpSize, OpNDim, OpBincount)

	// logicalOps always return bool.
	logicalOps = sets.MakeWith(OpLogicalAnd, OpLogicalOr, OpLogicalXor, OpLogicalNot, OpAll, OpAny)

	// comparisonOps always return bool.
	comparisonOps = sets.MakeWith(
		OpEqual, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual,
		OpIsClose, OpIsNaN, OpIsInf, OpIsFinite)

	// statisticsOps return floats for integer or boolean inputs.
	statisticsOps = sets.MakeWith(OpMean, OpStd, OpVar, OpMedian, OpQuantile, OpAverage)

	// accumulationOps widen booleans and small integers to 32 bits.
	accumulationOps = sets.MakeWith(OpSum, OpProd, OpCumsum, OpCumprod)

	// matmulOps are the products: int8 x int8 accumulates into int32.
	matmulOps = sets.MakeWith(OpMatmul, OpDot, OpTensordot, OpOuter, OpInner, OpVdot, OpCross, OpEinsum)

	// bitwiseOps only accept integers and booleans.
	bitwiseOps = sets.MakeWith(OpBitwiseAnd, OpBitwiseOr, OpBitwiseXor, OpBitwiseNot, OpInvert, OpLeftShift, OpRightShift)

	// densifyingOps turn sparse inputs dense, since f(0) != 0.
	densifyingOps = sets.MakeWith(OpArccos, OpArccosh, OpCos, OpCosh, OpExp, OpLog, OpLog10, OpLog2, OpReciprocal)
)

var unaryOps = []OpType{
	OpAbs, OpAbsolute, OpNegative, OpPositive, OpSign, OpSquare, OpSqrt,
	OpExp, OpExp2, OpExpm1, OpLog, OpLog10, OpLog1p, OpLog2,
	OpSin, OpCos, OpTan, OpArcsin, OpArccos, OpArctan,
	OpSinh, OpCosh, OpTanh, OpArcsinh, OpArccosh, OpArctanh,
	OpReciprocal, OpCeil, OpFloor, OpTrunc, OpRound,
	OpConj, OpConjugate, OpReal, OpImag, OpAngle,
	OpIsNaN, OpIsInf, OpIsFinite, OpLogicalNot, OpBitwiseNot, OpInvert,
	OpNanToNum, OpCopy, OpArray, OpZerosLike, OpOnesLike,
	OpFlip, OpRoll, OpTril, OpTriu, OpSort, OpArgsort, OpCast,
}

var binaryOps = []OpType{
	OpAdd, OpSubtract, OpMultiply, OpDivide, OpTrueDivide, OpFloorDivide, OpMod, OpPower,
	OpMaximum, OpMinimum, OpArctan2, OpLogAddExp, OpHypot, OpCopySign,
	OpEqual, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpIsClose,
	OpLogicalAnd, OpLogicalOr, OpLogicalXor,
	OpBitwiseAnd, OpBitwiseOr, OpBitwiseXor, OpLeftShift, OpRightShift,
}

var reductionOps = []OpType{
	OpSum, OpProd, OpMean, OpStd, OpVar, OpMax, OpMin, OpAmax, OpAmin,
	OpAll, OpAny, OpMedian, OpCountNonzero, OpArgmax, OpArgmin,
}

// opRegistry maps every supported op to its shape rule, dtype category and sparse rule.
var opRegistry = make(map[OpType]*opInfo)

func register(op OpType, minInputs, maxInputs int, rule shapeRule) *opInfo {
	info := &opInfo{minInputs: minInputs, maxInputs: maxInputs, shape: rule}
	opRegistry[op] = info
	return info
}

func init() {
	for _, op := range unaryOps {
		register(op, 1, 1, single(sameShape)).sparse = sparsePreserve
	}
	for _, op := range binaryOps {
		register(op, 2, 2, single(elementwiseShape))
	}
	for _, op := range reductionOps {
		register(op, 1, 1, single(reduceShape))
	}
	register(OpClip, 1, 3, single(elementwiseShape)).sparse = sparsePreserve
	register(OpFullLike, 1, 2, single(fullLikeShape)).dtypeOperands = []int{0}
	register(OpWhere, 1, 3, single(whereShape)).dtypeOperands = []int{1, 2}
	register(OpQuantile, 2, 2, single(quantileShape)).dtypeOperands = []int{0}
	register(OpAverage, 1, 2, single(averageShape))

	register(OpEinsum, 1, -1, single(einsumShape))
	register(OpMatmul, 2, 2, single(matmulShape))
	register(OpDot, 2, 2, single(dotShape))
	register(OpTensordot, 2, 2, single(tensordotShape))
	register(OpOuter, 2, 2, single(outerShape))
	register(OpInner, 2, 2, single(innerShape))
	register(OpVdot, 2, 2, single(vdotShape))
	register(OpCross, 2, 2, single(crossShape))

	register(OpReshape, 1, 1, single(reshapeShape)).sparse = sparsePreserve
	register(OpTranspose, 1, 1, single(transposeShape)).sparse = sparsePreserve
	register(OpSqueeze, 1, 1, single(squeezeShape)).sparse = sparsePreserve
	register(OpExpandDims, 1, 1, single(expandDimsShape)).sparse = sparsePreserve
	register(OpConcatenate, 1, -1, single(concatenateShape)).sparse = sparseConcat
	register(OpStack, 1, -1, single(stackShape))
	register(OpSplit, 1, 1, splitShapes)
	register(OpPad, 1, 1, single(padShape))
	register(OpTake, 2, 2, single(takeShape)).dtypeOperands = []int{0}
	register(OpTakeAlongAxis, 2, 2, single(takeAlongAxisShape)).dtypeOperands = []int{0}
	register(OpTile, 1, 1, single(tileShape))
	register(OpRepeat, 1, 1, single(repeatShape))
	register(OpMoveAxis, 1, 1, single(moveAxisShape))
	register(OpSwapAxes, 1, 1, single(swapAxesShape))
	register(OpDiagonal, 1, 1, single(diagonalShape))
	register(OpTrace, 1, 1, single(traceShape))
	register(OpDiag, 1, 1, single(diagShape))
	register(OpBroadcastTo, 1, 1, single(broadcastToShape))
	register(OpRavel, 1, 1, single(ravelShape))
	register(OpDiff, 1, 1, single(diffShape))
	register(OpAppend, 2, 2, single(appendShape))
	register(OpHStack, 1, -1, single(hstackShape))
	register(OpVStack, 1, -1, single(vstackShape))
	register(OpCumsum, 1, 1, single(cumulativeShape))
	register(OpCumprod, 1, 1, single(cumulativeShape))
	register(OpSize, 1, 1, single(scalarShape))
	register(OpNDim, 1, 1, single(scalarShape))
	register(OpBincount, 1, 2, single(bincountShape)).dtypeOperands = []int{1}

	for op, info := range opRegistry {
		info.dtype = dtypeCategoryOf(op)
		switch {
		case densifyingOps.Has(op):
			info.sparse = sparseDensify
		case op == OpAdd || op == OpSubtract || op == OpMaximum || op == OpMinimum:
			info.sparse = sparseUnion
		case op == OpMultiply:
			info.sparse = sparseIntersection
		case op == OpDivide || op == OpTrueDivide || op == OpMod || op == OpFloorDivide:
			info.sparse = sparseDivision
		}
	}
}

func dtypeCategoryOf(op OpType) dtypeCategory {
	switch {
	case op == OpCast:
		return dtypeCast
	case countingOps.Has(op):
		return dtypeCounting
	case logicalOps.Has(op), comparisonOps.Has(op):
		return dtypeBool
	case transcendentalOps.Has(op):
		return dtypeTranscendental
	case trueDivisionOps.Has(op):
		return dtypeTrueDivide
	case statisticsOps.Has(op):
		return dtypeStatistics
	case accumulationOps.Has(op):
		return dtypeAccumulate
	case matmulOps.Has(op):
		return dtypeMatmul
	case bitwiseOps.Has(op):
		return dtypeBitwise
	case op == OpAbs || op == OpAbsolute || op == OpReal || op == OpImag || op == OpAngle:
		return dtypeRealPart
	default:
		return dtypePromote
	}
}

// lookupOp returns the registry entry of op, checking the number of inputs.
func lookupOp(op OpType, numInputs int) (*opInfo, error) {
	info, found := opRegistry[op]
	if !found {
		return nil, errors.Errorf("unsupported op %q", op)
	}
	if numInputs < info.minInputs || (info.maxInputs >= 0 && numInputs > info.maxInputs) {
		switch {
		case info.minInputs == info.maxInputs:
			return nil, errors.Errorf("%s takes %d inputs, got %d", op, info.minInputs, numInputs)
		case info.maxInputs < 0:
			return nil, errors.Errorf("%s takes at least %d inputs, got %d", op, info.minInputs, numInputs)
		default:
			return nil, errors.Errorf("%s takes from %d to %d inputs, got %d", op, info.minInputs, info.maxInputs, numInputs)
		}
	}
	return info, nil
}

// SupportedOps returns the types of all the ops known to the resolvers, sorted by name.
func SupportedOps() []OpType {
	ops := make([]OpType, 0, len(opRegistry))
	for op := range opRegistry {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

// TranscendentalOps returns the ops that convert integer or boolean inputs to FloatX, sorted by name.
// The returned slice is a copy.
func TranscendentalOps() []OpType { return sortedOps(transcendentalOps) }

// DensifyingOps returns the ops that turn sparse inputs dense, sorted by name.
// The returned slice is a copy.
func DensifyingOps() []OpType { return sortedOps(densifyingOps) }

func sortedOps(set sets.Set[OpType]) []OpType {
	ops := make([]OpType, 0, len(set))
	for op := range set {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}
