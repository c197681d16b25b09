package togomlx

import (
	"testing"

	"github.com/gomlx/compute/dtypes"
	"github.com/gomlx/compute/shapes"
	"github.com/gomlx/numpy-gomlx/numpy"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	t.Run("Static", func(t *testing.T) {
		s, err := Shape(numpy.MakeShape(2, 3), numpy.Float32)
		require.NoError(t, err)
		require.Equal(t, dtypes.Float32, s.DType)
		require.Equal(t, []int{2, 3}, s.Dimensions)
	})

	t.Run("Scalar", func(t *testing.T) {
		s, err := Shape(numpy.MakeShape(), numpy.Int8)
		require.NoError(t, err)
		require.True(t, s.IsScalar())
	})

	t.Run("Bound", func(t *testing.T) {
		s, err := Shape(numpy.MakeShape(numpy.UnknownDim, 3, numpy.UnknownDim), numpy.BFloat16, 16, 7)
		require.NoError(t, err)
		require.Equal(t, dtypes.BFloat16, s.DType)
		require.Equal(t, []int{16, 3, 7}, s.Dimensions)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := Shape(numpy.MakeShape(2), numpy.WeakFloat)
		require.ErrorContains(t, err, "weak")
		_, err = Shape(numpy.MakeShape(2), numpy.Strong(dtypes.F8E5M2))
		require.Error(t, err)

		// Unknown dimensions must be bound, never handed to shapes.Make as negative values.
		_, err = Shape(numpy.MakeShape(numpy.UnknownDim, 3), numpy.Float32)
		require.ErrorContains(t, err, "1 unknown dimensions, but 0 bindings")
		_, err = Shape(numpy.MakeShape(2, 3), numpy.Float32, 4)
		require.Error(t, err)
		_, err = Shape(numpy.MakeShape(numpy.UnknownDim), numpy.Float32, -1)
		require.ErrorContains(t, err, "invalid binding")
	})
}

func TestUnknownAxes(t *testing.T) {
	require.Empty(t, UnknownAxes(numpy.MakeShape(2, 3)))
	require.Equal(t, []int{0, 2}, UnknownAxes(numpy.MakeShape(numpy.UnknownDim, 3, numpy.UnknownDim)))
}

func TestFromShape(t *testing.T) {
	s, dtype, err := FromShape(shapes.Make(dtypes.Int32, 4, 5))
	require.NoError(t, err)
	require.Equal(t, numpy.Shape{4, 5}, s)
	require.Equal(t, numpy.Int32, dtype)

	_, _, err = FromShape(shapes.Make(dtypes.F8E4M3FN, 4))
	require.Error(t, err)
	_, _, err = FromShape(shapes.Invalid())
	require.Error(t, err)
	_, _, err = FromShape(shapes.Make(dtypes.Int32, 4), 1)
	require.ErrorContains(t, err, "out of range")

	// The unknown axis survives a round trip through GoMLX.
	symbolic := numpy.MakeShape(numpy.UnknownDim, 3)
	gomlxShape, err := Shape(symbolic, numpy.Float32, 32)
	require.NoError(t, err)
	require.Equal(t, []int{32, 3}, gomlxShape.Dimensions)
	back, dtype, err := FromShape(gomlxShape, UnknownAxes(symbolic)...)
	require.NoError(t, err)
	require.Equal(t, symbolic, back)
	require.Equal(t, numpy.Float32, dtype)
}

func TestSpec(t *testing.T) {
	spec := numpy.Spec(numpy.Float16, numpy.UnknownDim, 7)
	gomlxShape, err := Spec(spec, 2)
	require.NoError(t, err)
	require.Equal(t, shapes.Make(dtypes.Float16, 2, 7), gomlxShape)
	back, err := FromSpec(gomlxShape, 0)
	require.NoError(t, err)
	require.Equal(t, spec, back)

	_, err = Spec(spec)
	require.ErrorContains(t, err, "float16(None, 7)")

	// Resolved shapes can be handed to GoMLX once the batch dimension is known.
	output := numpy.Default().MustCall(numpy.Elementwise(numpy.OpMatmul),
		numpy.Spec(numpy.Float32, numpy.UnknownDim, 3, 4), numpy.Spec(numpy.Float32, 4, 5))
	gomlxShape, err = Spec(output, 8)
	require.NoError(t, err)
	require.Equal(t, []int{8, 3, 5}, gomlxShape.Dimensions)
}
