package numpy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func requireSparseness(t *testing.T, want Sparseness, op Op, inputs ...Sparseness) {
	t.Helper()
	got, err := ResolveSparseness(op, inputs...)
	require.NoError(t, err, "numpy.%s%v", op.Type, inputs)
	require.Equal(t, want, got, "numpy.%s%v: want %s, got %s", op.Type, inputs, want, got)
}

func TestResolveSparseness(t *testing.T) {
	require.Equal(t, "slices", Slices.String())

	t.Run("Unary", func(t *testing.T) {
		requireSparseness(t, Sparse, Unary(OpAbs), Sparse)
		requireSparseness(t, Slices, Unary(OpSin), Slices)
		requireSparseness(t, Dense, Unary(OpSqrt), Dense)
		requireSparseness(t, Dense, Unary(OpNegative), Scalar)
		for _, op := range DensifyingOps() {
			requireSparseness(t, Dense, Unary(op), Sparse)
			requireSparseness(t, Dense, Unary(op), Slices)
		}
		requireSparseness(t, Sparse, Reshape(-1), Sparse)
		requireSparseness(t, Sparse, Transpose(), Sparse)
		requireSparseness(t, Sparse, Squeeze(), Sparse)
		requireSparseness(t, Sparse, ExpandDims(0), Sparse)
		requireSparseness(t, Sparse, Unary(OpClip), Sparse, Scalar, Scalar)
	})

	t.Run("Union", func(t *testing.T) {
		for _, op := range []OpType{OpAdd, OpSubtract, OpMaximum, OpMinimum} {
			requireSparseness(t, Sparse, Elementwise(op), Sparse, Sparse)
			requireSparseness(t, Slices, Elementwise(op), Slices, Slices)
			requireSparseness(t, Dense, Elementwise(op), Sparse, Dense)
			requireSparseness(t, Dense, Elementwise(op), Scalar, Slices)
			_, err := ResolveSparseness(Elementwise(op), Sparse, Slices)
			require.Error(t, err)
		}
	})

	t.Run("Intersection", func(t *testing.T) {
		multiply := Elementwise(OpMultiply)
		requireSparseness(t, Sparse, multiply, Sparse, Sparse)
		requireSparseness(t, Sparse, multiply, Sparse, Dense)
		requireSparseness(t, Sparse, multiply, Dense, Sparse)
		requireSparseness(t, Slices, multiply, Scalar, Slices)
		requireSparseness(t, Slices, multiply, Slices, Scalar)
		requireSparseness(t, Dense, multiply, Dense, Dense)
		requireSparseness(t, Dense, multiply, Scalar, Scalar)
		_, err := ResolveSparseness(multiply, Slices, Sparse)
		require.Error(t, err)
	})

	t.Run("Division", func(t *testing.T) {
		for _, op := range []OpType{OpDivide, OpTrueDivide, OpMod, OpFloorDivide} {
			requireSparseness(t, Sparse, Elementwise(op), Sparse, Dense)
			requireSparseness(t, Slices, Elementwise(op), Slices, Scalar)
			requireSparseness(t, Dense, Elementwise(op), Sparse, Sparse)
			requireSparseness(t, Dense, Elementwise(op), Dense, Slices)
			requireSparseness(t, Dense, Elementwise(op), Scalar, Dense)
		}
	})

	t.Run("Concatenate", func(t *testing.T) {
		requireSparseness(t, Sparse, Concatenate(0), Sparse, Sparse, Sparse)
		requireSparseness(t, Dense, Concatenate(0), Sparse, Dense)
		requireSparseness(t, Dense, Concatenate(0), Slices, Slices)
	})

	t.Run("Dense", func(t *testing.T) {
		requireSparseness(t, Dense, Elementwise(OpMatmul), Sparse, Sparse)
		requireSparseness(t, Dense, Reduce(OpSum, false), Sparse)
		requireSparseness(t, Dense, Elementwise(OpPower), Sparse, Scalar)
	})

	_, err := ResolveSparseness(Unary("not_an_op"), Dense)
	require.Error(t, err)
	_, err = ResolveSparseness(Elementwise(OpMultiply), Dense)
	require.Error(t, err)
}
