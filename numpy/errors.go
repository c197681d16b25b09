package numpy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// ShapeError is returned when the input shapes of an operation are incompatible.
type ShapeError struct {
	Op     OpType
	Shapes []Shape
	cause  error
}

// Error implements error. It includes the op name and the offending shapes.
func (e *ShapeError) Error() string {
	parts := make([]string, len(e.Shapes))
	for i, s := range e.Shapes {
		parts[i] = s.String()
	}
	return fmt.Sprintf("numpy.%s(%s): %v", e.Op, strings.Join(parts, ", "), e.cause)
}

// Unwrap returns the underlying error.
func (e *ShapeError) Unwrap() error { return e.cause }

// Cause returns the underlying error, for github.com/pkg/errors.Cause.
func (e *ShapeError) Cause() error { return e.cause }

// DTypeError is returned when the input dtypes of an operation cannot be resolved.
type DTypeError struct {
	Op     OpType
	DTypes []DType
	cause  error
}

// Error implements error. It includes the op name and the offending dtypes.
func (e *DTypeError) Error() string {
	parts := make([]string, len(e.DTypes))
	for i, dt := range e.DTypes {
		parts[i] = dt.String()
	}
	return fmt.Sprintf("numpy.%s(%s): %v", e.Op, strings.Join(parts, ", "), e.cause)
}

// Unwrap returns the underlying error.
func (e *DTypeError) Unwrap() error { return e.cause }

// Cause returns the underlying error, for github.com/pkg/errors.Cause.
func (e *DTypeError) Cause() error { return e.cause }

func newShapeError(op OpType, inputs []Shape, cause error) *ShapeError {
	cloned := make([]Shape, len(inputs))
	for i, s := range inputs {
		cloned[i] = s.Clone()
	}
	return &ShapeError{Op: op, Shapes: cloned, cause: cause}
}

func newDTypeError(op OpType, inputs []DType, cause error) *DTypeError {
	return &DTypeError{Op: op, DTypes: slices.Clone(inputs), cause: cause}
}

// IsShapeError returns whether err is or wraps a *ShapeError.
func IsShapeError(err error) bool {
	var shapeErr *ShapeError
	return errors.As(err, &shapeErr)
}

// IsDTypeError returns whether err is or wraps a *DTypeError.
func IsDTypeError(err error) bool {
	var dtypeErr *DTypeError
	return errors.As(err, &dtypeErr)
}
