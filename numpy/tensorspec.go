package numpy

import (
	"fmt"

	"github.com/gomlx/compute/dtypes"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// TensorSpec is the symbolic description of a tensor: everything known about it before it is computed.
type TensorSpec struct {
	Shape      Shape
	DType      DType
	Sparseness Sparseness
}

// Spec returns a dense TensorSpec with the given dtype and dimensions.
func Spec(dtype DType, dims ...int) TensorSpec {
	return TensorSpec{Shape: MakeShape(dims...), DType: dtype}
}

// String implements fmt.Stringer, e.g. "float32(None, 3)" or "sparse int8(5,)".
func (t TensorSpec) String() string {
	if t.Sparseness == Dense || t.Sparseness == Scalar {
		return fmt.Sprintf("%s%s", t.DType, t.Shape)
	}
	return fmt.Sprintf("%s %s%s", t.Sparseness, t.DType, t.Shape)
}

// Literal returns the TensorSpec of a Go scalar used as a literal operand.
//
// Untyped-like Go values (int, float64, complex128 and bool) become weak dtypes, the way
// Python scalars are. Other Go numeric types (int8, float32, float16.Float16, ...) are strong.
// It panics for non-scalar values.
func Literal(value any) TensorSpec {
	spec := TensorSpec{Shape: Shape{}, Sparseness: Scalar}
	switch value.(type) {
	case int:
		spec.DType = WeakInt
	case float64:
		spec.DType = WeakFloat
	case complex128:
		spec.DType = WeakComplex
	case bool:
		spec.DType = WeakBool
	case nil:
		exceptions.Panicf("numpy.Literal(nil) is not valid")
	default:
		spec.DType = Strong(dtypes.FromAny(value))
		if !spec.DType.IsSupported() {
			exceptions.Panicf("numpy.Literal(%v): type %T is not supported", value, value)
		}
	}
	return spec
}

// Call resolves the TensorSpec of the output of op, running the shape, dtype and sparseness
// resolution. Use CallN for ops with more than one output (split).
func (r *Resolver) Call(op Op, inputs ...TensorSpec) (TensorSpec, error) {
	outputs, err := r.CallN(op, inputs...)
	if err != nil {
		return TensorSpec{}, err
	}
	if len(outputs) != 1 {
		return TensorSpec{}, errors.Errorf("numpy.%s has %d outputs, use CallN instead", op.Type, len(outputs))
	}
	return outputs[0], nil
}

// CallN is like Call, but returns all the outputs of op.
func (r *Resolver) CallN(op Op, inputs ...TensorSpec) ([]TensorSpec, error) {
	inputShapes := make([]Shape, len(inputs))
	inputDTypes := make([]DType, len(inputs))
	inputTags := make([]Sparseness, len(inputs))
	for i, input := range inputs {
		inputShapes[i] = input.Shape
		inputDTypes[i] = input.DType
		inputTags[i] = input.Sparseness
	}
	shapes, err := r.ResolveShapes(op, inputShapes...)
	if err != nil {
		return nil, err
	}
	dtype, err := r.ResolveDType(op, inputDTypes...)
	if err != nil {
		return nil, err
	}
	sparseness, err := ResolveSparseness(op, inputTags...)
	if err != nil {
		return nil, err
	}
	outputs := make([]TensorSpec, len(shapes))
	for i, shape := range shapes {
		outputs[i] = TensorSpec{Shape: shape, DType: dtype, Sparseness: sparseness}
	}
	return outputs, nil
}

// MustCall is like Call, but panics (with exceptions.Panicf) on error.
func (r *Resolver) MustCall(op Op, inputs ...TensorSpec) TensorSpec {
	output, err := r.Call(op, inputs...)
	if err != nil {
		exceptions.Panicf("%+v", err)
	}
	return output
}

// Call resolves the output TensorSpec of op using the default configuration.
func Call(op Op, inputs ...TensorSpec) (TensorSpec, error) {
	return defaultResolver.Call(op, inputs...)
}
