package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gomlx/compute/dtypes"
	"github.com/gomlx/numpy-gomlx/numpy"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

func TestNewResolver(t *testing.T) {
	r, err := newResolver()
	require.NoError(t, err)
	require.Equal(t, dtypes.Float32, r.Config().FloatX)
	require.Equal(t, numpy.NarrowNone, r.Config().Narrowing)

	*flagFloatX = "float16"
	*flagNarrowing = "weak"
	defer func() {
		*flagFloatX = "float32"
		*flagNarrowing = "none"
	}()
	r, err = newResolver()
	require.NoError(t, err)
	require.Equal(t, dtypes.Float16, r.Config().FloatX)
	require.Equal(t, numpy.NarrowWeak, r.Config().Narrowing)

	*flagFloatX = "int32"
	_, err = newResolver()
	require.Error(t, err)
}

func TestWeakName(t *testing.T) {
	require.Equal(t, "float*", weakName(numpy.WeakFloat))
	require.Equal(t, "float32", weakName(numpy.Float32))
}

func TestPrintPromotionTable(t *testing.T) {
	t.Run("Weak", func(t *testing.T) {
		var buf bytes.Buffer
		printPromotionTable(&buf, numpy.Default(), true)
		out := buf.String()
		require.Contains(t, out, "floatx=float32, narrowing=none")
		require.Contains(t, out, "float*")
		require.Contains(t, out, "complex*")
		require.Contains(t, out, "361 pairs")
		require.Contains(t, out, "0 errors")
	})

	t.Run("NarrowAll", func(t *testing.T) {
		r := must.M1(numpy.Default().WithNarrowing(numpy.NarrowAll))
		var buf bytes.Buffer
		printPromotionTable(&buf, r, false)
		out := buf.String()
		require.Contains(t, out, "narrowing=all")
		require.Contains(t, out, "225 pairs")
		// 64 bits dtypes only appear in the header and as row labels, never as a result.
		for _, name := range []string{"float64", "uint64", "complex128"} {
			require.Equal(t, 2, strings.Count(out, name), "dtype %s", name)
		}
		require.Equal(t, 4, strings.Count(out, "int64")) // Also matches uint64.

		buf.Reset()
		printPromotionTable(&buf, numpy.Default(), false)
		require.Greater(t, strings.Count(buf.String(), "float64"), 2)
	})
}

func TestResolveOp(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, resolveOp(&buf, numpy.Default(), "true_divide", []string{"int8", "int8"}))
	require.Equal(t, "numpy.true_divide[int8 int8] -> float32\n", buf.String())

	buf.Reset()
	require.NoError(t, resolveOp(&buf, numpy.Default(), "add", []string{"int8", "float"}))
	require.Equal(t, "numpy.add[int8 float] -> float32\n", buf.String())

	buf.Reset()
	err := resolveOp(&buf, numpy.Default(), "not_an_op", []string{"int8"})
	require.ErrorContains(t, err, "unsupported op")
	require.Empty(t, buf.String())

	err = resolveOp(&buf, numpy.Default(), "add", []string{"int8", "int9"})
	require.ErrorContains(t, err, "int9")
}
