package numpy

import (
	"slices"

	"github.com/gomlx/compute/dtypes"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ResolveDType returns the output dtype of op for inputs of the given dtypes.
//
// The result is always a strong dtype: weak results are resolved to the configured FloatX width (or to the
// widest input, if all inputs are strong), and then the narrowing policy is applied.
//
// It returns a *DTypeError if the op is unknown, a dtype is not supported, or the combination is invalid
// (e.g. subtracting booleans or bitwise ops on floats).
func (r *Resolver) ResolveDType(op Op, inputs ...DType) (DType, error) {
	info, err := lookupOp(op.Type, len(inputs))
	if err != nil {
		return DType{}, newDTypeError(op.Type, inputs, err)
	}
	for i, input := range inputs {
		if !input.IsSupported() {
			return DType{}, newDTypeError(op.Type, inputs,
				errors.Errorf("input #%d has unsupported dtype %s", i, input))
		}
	}
	operands := inputs
	if info.dtypeOperands != nil {
		operands = make([]DType, 0, len(info.dtypeOperands))
		for _, idx := range info.dtypeOperands {
			if idx < len(inputs) {
				operands = append(operands, inputs[idx])
			}
		}
	}
	output, err := r.resolveCategory(op, info.dtype, operands)
	if err != nil {
		return DType{}, newDTypeError(op.Type, inputs, err)
	}
	if info.dtype != dtypeCounting && info.dtype != dtypeBool {
		output = r.narrow(output, operands)
	}
	return output, nil
}

// MustResolveDType is like ResolveDType but panics (with exceptions.Panicf) on error.
func (r *Resolver) MustResolveDType(op Op, inputs ...DType) DType {
	output, err := r.ResolveDType(op, inputs...)
	if err != nil {
		exceptions.Panicf("%+v", err)
	}
	return output
}

func (r *Resolver) resolveCategory(op Op, category dtypeCategory, operands []DType) (DType, error) {
	if len(operands) == 0 {
		// where(condition) and bincount without weights return indices or counts.
		return Int32, nil
	}
	switch category {
	case dtypeCast:
		if !op.DType.IsSupported() {
			return DType{}, errors.Errorf("unsupported cast target dtype %s", op.DType)
		}
		if op.DType.Weak {
			return r.resolveWeak(op.DType, nil), nil
		}
		return op.DType, nil

	case dtypeCounting:
		if op.Type == OpBincount {
			// Weighted bincount sums the weights.
			return r.ResultType(operands...)
		}
		return Int32, nil

	case dtypeBool:
		return Bool, nil

	case dtypeTranscendental, dtypeStatistics:
		x, err := r.ResultType(operands...)
		if err != nil {
			return DType{}, err
		}
		if x.IsBool() || x.IsInt() {
			return Strong(r.config.FloatX), nil
		}
		return x, nil

	case dtypeTrueDivide:
		return r.ResultType(append(slices.Clone(operands), WeakFloat)...)

	case dtypeAccumulate:
		x, err := r.ResultType(operands...)
		if err != nil {
			return DType{}, err
		}
		switch x.DType {
		case dtypes.Bool, dtypes.Int8, dtypes.Int16:
			return Int32, nil
		case dtypes.Uint8, dtypes.Uint16:
			return Uint32, nil
		}
		return x, nil

	case dtypeMatmul:
		allInt8 := true
		for _, operand := range operands {
			if operand != Int8 {
				allInt8 = false
				break
			}
		}
		if allInt8 {
			return Int32, nil
		}
		return r.ResultType(operands...)

	case dtypeRealPart:
		x, err := r.ResultType(operands...)
		if err != nil {
			return DType{}, err
		}
		if x.IsComplex() {
			return Strong(x.RealDType()), nil
		}
		return x, nil

	case dtypeBitwise:
		for _, operand := range operands {
			if operand.IsFloat() || operand.IsComplex() {
				return DType{}, errors.Errorf("%s is only defined for integer and boolean dtypes, got %s", op.Type, operand)
			}
		}
		return r.ResultType(operands...)
	}

	// dtypePromote, with a few op specific rules.
	allBool := true
	for _, operand := range operands {
		allBool = allBool && operand.IsBool()
	}
	switch {
	case op.Type == OpSubtract && allBool:
		return DType{}, errors.New("numpy boolean subtract is not supported, use logical_xor instead")
	case op.Type == OpNegative && allBool:
		return DType{}, errors.New("the numpy boolean negative is not supported, use logical_not instead")
	case (op.Type == OpSquare || op.Type == OpMod) && allBool:
		return Int32, nil
	}
	return r.ResultType(operands...)
}

// ResultType returns the least upper bound of the inputs in the promotion lattice, with a weak result
// resolved to a concrete dtype. Narrowing is not applied.
func (r *Resolver) ResultType(inputs ...DType) (DType, error) {
	joined, err := ResultType(inputs...)
	if err != nil {
		return DType{}, err
	}
	if !joined.Weak {
		return joined, nil
	}
	return r.resolveWeak(joined, inputs), nil
}

// resolveWeak converts a weak dtype into a strong one.
//
// With at least one weak input (or no inputs), the FloatX bit width is used: integers take its width,
// floats become FloatX and complex numbers the complex type holding FloatX. If all inputs are strong,
// which only happens when (u)int64 meets an unsigned/signed counterpart, the widest input decides.
func (r *Resolver) resolveWeak(dtype DType, inputs []DType) DType {
	bits := r.config.FloatX.Bits()
	allStrong := len(inputs) > 0
	widest := 0
	for _, input := range inputs {
		if input.Weak {
			allStrong = false
			continue
		}
		widest = max(widest, input.Bits())
	}
	if allStrong {
		bits = widest
	}

	var resolved DType
	switch {
	case dtype.IsBool():
		resolved = Bool
	case dtype.IsInt():
		resolved = intOfBits(bits)
	case dtype.IsFloat():
		if allStrong {
			resolved = floatOfBits(bits)
		} else {
			resolved = Strong(r.config.FloatX)
		}
	default:
		resolved = Complex64
		if bits > 32 {
			resolved = Complex128
		}
	}
	if klog.V(2).Enabled() {
		klog.Infof("numpy: weak %s resolved to %s (FloatX=%s, inputs=%v)", dtype, resolved, Strong(r.config.FloatX), inputs)
	}
	return resolved
}

func intOfBits(bits int) DType {
	switch {
	case bits <= 8:
		return Int8
	case bits <= 16:
		return Int16
	case bits <= 32:
		return Int32
	default:
		return Int64
	}
}

func floatOfBits(bits int) DType {
	switch {
	case bits <= 16:
		return Float16
	case bits <= 32:
		return Float32
	default:
		return Float64
	}
}

// narrowed64 maps 64 bits dtypes to their 32 bits counterpart.
var narrowed64 = map[dtypes.DType]DType{
	dtypes.Int64:      Int32,
	dtypes.Uint64:     Uint32,
	dtypes.Float64:    Float32,
	dtypes.Complex128: Complex64,
}

// narrow applies the narrowing policy to a resolved dtype.
func (r *Resolver) narrow(dtype DType, inputs []DType) DType {
	switch r.config.Narrowing {
	case NarrowNone:
		return dtype
	case NarrowWeak:
		anyWeak := false
		for _, input := range inputs {
			anyWeak = anyWeak || input.Weak
		}
		if !anyWeak {
			return dtype
		}
	}
	narrowed, found := narrowed64[dtype.DType]
	if !found {
		return dtype
	}
	klog.V(2).Infof("numpy: narrowing %s to %s (policy %s)", dtype, narrowed, r.config.Narrowing)
	return narrowed
}
