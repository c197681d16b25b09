package numpy

import (
	"testing"

	"github.com/gomlx/compute/dtypes/float16"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

func TestLiteral(t *testing.T) {
	require.Equal(t, WeakInt, Literal(3).DType)
	require.Equal(t, WeakFloat, Literal(3.0).DType)
	require.Equal(t, WeakComplex, Literal(1i).DType)
	require.Equal(t, WeakBool, Literal(true).DType)
	require.Equal(t, Int8, Literal(int8(3)).DType)
	require.Equal(t, Float32, Literal(float32(3)).DType)
	require.Equal(t, Float16, Literal(float16.FromFloat32(1)).DType)
	require.Equal(t, Shape{}, Literal(3).Shape)
	require.Equal(t, Scalar, Literal(3).Sparseness)

	require.Panics(t, func() { Literal(nil) })
	err := exceptions.TryCatch[error](func() { Literal("three") })
	require.ErrorContains(t, err, "not supported")
}

func TestCall(t *testing.T) {
	x := Spec(Float16, None, 3)
	require.Equal(t, "float16(None, 3)", x.String())

	got, err := Call(Elementwise(OpAdd), x, Literal(2.0))
	require.NoError(t, err)
	require.Equal(t, Spec(Float16, None, 3), got)

	got, err = Call(Elementwise(OpDivide), Spec(Int8, 4, 1), Spec(Int8, 3))
	require.NoError(t, err)
	require.Equal(t, Spec(Float32, 4, 3), got)

	sparse := TensorSpec{Shape: MakeShape(None, 8), DType: Float32, Sparseness: Sparse}
	require.Equal(t, "sparse float32(None, 8)", sparse.String())
	got, err = Call(Elementwise(OpMultiply), sparse, Literal(2))
	require.NoError(t, err)
	require.Equal(t, sparse, got)

	got, err = Call(Reduce(OpArgmax, false, 1), sparse)
	require.NoError(t, err)
	require.Equal(t, Spec(Int32, None), got)

	// Each stage can fail.
	_, err = Call(Elementwise(OpAdd), Spec(Float32, 2), Spec(Float32, 3))
	require.True(t, IsShapeError(err))
	_, err = Call(Elementwise(OpSubtract), Spec(Bool, 2), Spec(Bool, 2))
	require.True(t, IsDTypeError(err))
	_, err = Call(Elementwise(OpAdd), sparse, TensorSpec{Shape: MakeShape(None, 8), DType: Float32, Sparseness: Slices})
	require.Error(t, err)

	// Split needs CallN.
	_, err = Call(Split(2, 1), sparse)
	require.ErrorContains(t, err, "CallN")
	parts, err := Default().CallN(Split(2, 1), sparse)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	require.Equal(t, Spec(Float32, None, 4), parts[0])

	r := must.M1(NewResolver(DefaultConfig().WithNarrowing(NarrowWeak)))
	require.Equal(t, Spec(Int32, 5), r.MustCall(Elementwise(OpMultiply), Spec(Int64, 5), Literal(2)))
	require.Panics(t, func() { r.MustCall(Elementwise(OpAdd), Spec(Int64, 5), Spec(Int64, 4)) })
}
