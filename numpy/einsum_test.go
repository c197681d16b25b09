package numpy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEinsum(t *testing.T) {
	eq, err := parseEinsum("ij, jk -> ik")
	require.NoError(t, err)
	require.Len(t, eq.inputs, 2)
	require.Equal(t, []byte("ij"), eq.inputs[0].labels)
	require.True(t, eq.hasOutput)
	require.Equal(t, []byte("ik"), eq.output.labels)

	eq, err = parseEinsum("i...j,...")
	require.NoError(t, err)
	require.Equal(t, 1, eq.inputs[0].ellipsisAt)
	require.Equal(t, 0, eq.inputs[1].ellipsisAt)
	require.False(t, eq.hasOutput)

	_, err = parseEinsum("i..j")
	require.Error(t, err)
	_, err = parseEinsum("...i...")
	require.Error(t, err)
	_, err = parseEinsum("ij->ii")
	require.Error(t, err)
	_, err = parseEinsum("ij->i->j")
	require.Error(t, err)
}

func TestEinsumShapes(t *testing.T) {
	t.Run("Explicit", func(t *testing.T) {
		requireShape(t, Shape{None, 3, 5}, Einsum("bij,bjk->bik"), MakeShape(None, 3, 4), MakeShape(None, 4, 5))
		requireShape(t, Shape{None, 3, 5}, Einsum("bij,jk->bik"), MakeShape(None, 3, 4), MakeShape(4, 5))
		requireShape(t, Shape{3}, Einsum("ij->j"), MakeShape(None, 3))
		requireShape(t, Shape{}, Einsum("i,i->"), MakeShape(None), MakeShape(5))
		requireShape(t, Shape{3, None}, Einsum("ij->ji"), MakeShape(None, 3))
	})

	t.Run("Implicit", func(t *testing.T) {
		requireShape(t, Shape{None, 5}, Einsum("ij,jk"), MakeShape(None, 4), MakeShape(4, 5))
		// Implicit output is sorted: "ba" transposes.
		requireShape(t, Shape{None, 3}, Einsum("ba"), MakeShape(3, None))
		requireShape(t, Shape{3, 2}, Einsum("ab"), MakeShape(3, 2))
		requireShape(t, Shape{}, Einsum("ii"), MakeShape(3, 3))
		requireShape(t, Shape{}, Einsum("i,i"), MakeShape(3), MakeShape(3))
	})

	t.Run("Diagonal", func(t *testing.T) {
		requireShape(t, Shape{3}, Einsum("ii->i"), MakeShape(3, 3))
		requireShape(t, Shape{3}, Einsum("ii->i"), MakeShape(None, 3))
		requireShapeError(t, Einsum("ii->i"), MakeShape(3, 4))
	})

	t.Run("Broadcast", func(t *testing.T) {
		// Labels shared by operands broadcast like elementwise ops.
		requireShape(t, Shape{4, 3}, Einsum("ij,ij->ij"), MakeShape(1, 3), MakeShape(4, 3))
		requireShapeError(t, Einsum("ij,jk->ik"), MakeShape(2, 3), MakeShape(4, 5))
	})

	t.Run("Ellipsis", func(t *testing.T) {
		requireShape(t, Shape{2, None, 3, 5}, Einsum("...ij,...jk->...ik"), MakeShape(2, None, 3, 4), MakeShape(4, 5))
		requireShape(t, Shape{2, 7, 3}, Einsum("...ij,...jk"), MakeShape(2, 7, 4), MakeShape(4, 3))
		requireShape(t, Shape{3, 2, 7}, Einsum("i...->...i"), MakeShape(7, 3, 2))
		requireShape(t, Shape{2, 3}, Einsum("...->..."), MakeShape(2, 3))
		// Ellipsis dimensions missing from the output are summed out.
		requireShape(t, Shape{4}, Einsum("...i->i"), MakeShape(2, 3, 4))
		requireShapeError(t, Einsum("...ij,...jk->...ik"), MakeShape(2, 3, 4), MakeShape(5, 4, 6))
	})

	t.Run("Errors", func(t *testing.T) {
		requireShapeError(t, Einsum("ij,jk->ik"), MakeShape(2, 3))
		requireShapeError(t, Einsum("ijk->ik"), MakeShape(2, 3))
		requireShapeError(t, Einsum("ij->ix"), MakeShape(2, 3))
		requireShapeError(t, Einsum("i1->i"), MakeShape(2, 3))
		requireShapeError(t, Einsum("...ijk->i"), MakeShape(2, 3))
	})

	t.Run("Deterministic", func(t *testing.T) {
		x, y := MakeShape(None, 2, 3), MakeShape(3, 4, 5)
		first := MustResolveShape(Einsum("abc,cde"), x, y)
		for range 20 {
			require.Equal(t, first, MustResolveShape(Einsum("abc,cde"), x, y))
		}
		require.Equal(t, Shape{None, 2, 4, 5}, first)
	})
}
