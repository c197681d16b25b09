// Package togomlx converts between the symbolic shapes and dtypes of the numpy package and GoMLX shapes.
//
// GoMLX shapes are static, so numpy.UnknownDim axes must be bound to a concrete dimension (e.g. the
// batch size of the data at hand) when converting to GoMLX. UnknownAxes records which axes those were,
// so the symbolic shape can be recovered with FromShape.
package togomlx

import (
	"github.com/gomlx/compute/shapes"
	"github.com/gomlx/numpy-gomlx/numpy"
	"github.com/pkg/errors"
)

// Shape converts a numpy shape and dtype to a GoMLX shapes.Shape.
//
// Each unknown dimension is replaced, in axis order, by the next value of bindings: there must be exactly
// one binding per unknown axis.
// Weak dtypes are not valid GoMLX tensor dtypes and must be resolved first (see numpy.Resolver.ResultType).
func Shape(shape numpy.Shape, dtype numpy.DType, bindings ...int) (shapes.Shape, error) {
	if dtype.Weak {
		return shapes.Shape{}, errors.Errorf("weak dtype %s has no GoMLX equivalent, resolve it first", dtype)
	}
	if !dtype.IsSupported() {
		return shapes.Shape{}, errors.Errorf("dtype %s is not supported", dtype)
	}
	dims, err := bindDims(shape, bindings)
	if err != nil {
		return shapes.Shape{}, err
	}
	return shapes.Make(dtype.DType, dims...), nil
}

// Spec converts a numpy.TensorSpec to a GoMLX shape, binding its unknown dimensions as in Shape.
// The sparseness tag has no GoMLX equivalent and is dropped.
func Spec(spec numpy.TensorSpec, bindings ...int) (shapes.Shape, error) {
	shape, err := Shape(spec.Shape, spec.DType, bindings...)
	if err != nil {
		return shapes.Shape{}, errors.WithMessagef(err, "converting %s to GoMLX", spec)
	}
	return shape, nil
}

// bindDims returns the dimensions of shape with its unknown axes replaced by bindings.
func bindDims(shape numpy.Shape, bindings []int) ([]int, error) {
	unknownAxes := UnknownAxes(shape)
	if len(unknownAxes) != len(bindings) {
		return nil, errors.Errorf("shape %s has %d unknown dimensions, but %d bindings were given",
			shape, len(unknownAxes), len(bindings))
	}
	dims := make([]int, len(shape))
	copy(dims, shape)
	for i, axis := range unknownAxes {
		if bindings[i] < 0 {
			return nil, errors.Errorf("invalid binding %d for axis %d of shape %s", bindings[i], axis, shape)
		}
		dims[axis] = bindings[i]
	}
	return dims, nil
}

// UnknownAxes returns the axes of shape whose dimension is unknown.
func UnknownAxes(shape numpy.Shape) []int {
	var axes []int
	for axis, d := range shape {
		if d == numpy.UnknownDim {
			axes = append(axes, axis)
		}
	}
	return axes
}

// FromShape converts a GoMLX shape to a numpy shape and (strong) dtype.
// The dimensions of unknownAxes are set to numpy.UnknownDim: FromShape(s, UnknownAxes(original)...)
// recovers the symbolic shape that s was bound from.
func FromShape(shape shapes.Shape, unknownAxes ...int) (numpy.Shape, numpy.DType, error) {
	if !shape.Ok() || shape.IsTuple() {
		return nil, numpy.DType{}, errors.Errorf("GoMLX shape %s is not a tensor shape", shape)
	}
	dtype := numpy.Strong(shape.DType)
	if !dtype.IsSupported() {
		return nil, numpy.DType{}, errors.Errorf("GoMLX shape %s has a dtype not supported by the numpy rules", shape)
	}
	s := numpy.MakeShape(shape.Dimensions...)
	for _, axis := range unknownAxes {
		if axis < 0 || axis >= s.Rank() {
			return nil, numpy.DType{}, errors.Errorf("unknown axis %d out of range for GoMLX shape %s", axis, shape)
		}
		s[axis] = numpy.UnknownDim
	}
	return s, dtype, nil
}

// FromSpec is like FromShape but returns a dense numpy.TensorSpec.
func FromSpec(shape shapes.Shape, unknownAxes ...int) (numpy.TensorSpec, error) {
	s, dtype, err := FromShape(shape, unknownAxes...)
	if err != nil {
		return numpy.TensorSpec{}, err
	}
	return numpy.TensorSpec{Shape: s, DType: dtype}, nil
}
