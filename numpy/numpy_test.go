package numpy

import (
	"slices"
	"sync"
	"testing"

	"github.com/gomlx/compute/dtypes"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	config := DefaultConfig()
	require.Equal(t, dtypes.Float32, config.FloatX)
	require.Equal(t, NarrowNone, config.Narrowing)
	require.True(t, config.StrictSqueeze)
	require.NoError(t, config.Validate())

	// With* return copies.
	modified := config.WithFloatX(dtypes.Float64).WithNarrowing(NarrowAll).WithStrictSqueeze(false)
	require.Equal(t, dtypes.Float32, config.FloatX)
	require.Equal(t, dtypes.Float64, modified.FloatX)
	require.Equal(t, NarrowAll, modified.Narrowing)
	require.False(t, modified.StrictSqueeze)

	require.Error(t, config.WithFloatX(dtypes.Int32).Validate())
	require.Error(t, config.WithNarrowing(NarrowingPolicy(7)).Validate())

	_, err := NewResolver(config.WithFloatX(dtypes.Complex64))
	require.ErrorContains(t, err, "FloatX")

	r, err := NewResolver(modified)
	require.NoError(t, err)
	require.Equal(t, modified, r.Config())
	r2, err := r.WithFloatX(dtypes.Float16)
	require.NoError(t, err)
	require.Equal(t, dtypes.Float16, r2.Config().FloatX)
	require.Equal(t, dtypes.Float64, r.Config().FloatX)
	_, err = r.WithFloatX(dtypes.Bool)
	require.Error(t, err)
}

func TestNarrowingPolicy(t *testing.T) {
	for _, policy := range []NarrowingPolicy{NarrowNone, NarrowWeak, NarrowAll} {
		parsed, err := ParseNarrowingPolicy(policy.String())
		require.NoError(t, err)
		require.Equal(t, policy, parsed)
	}
	parsed, err := ParseNarrowingPolicy("ALL")
	require.NoError(t, err)
	require.Equal(t, NarrowAll, parsed)
	_, err = ParseNarrowingPolicy("some")
	require.Error(t, err)
	require.Equal(t, "NarrowingPolicy(?)", NarrowingPolicy(-1).String())
}

func TestSupportedOps(t *testing.T) {
	ops := SupportedOps()
	require.True(t, slices.IsSorted(ops))
	require.Contains(t, ops, OpEinsum)
	require.Contains(t, ops, OpSplit)
	require.NotContains(t, ops, OpBroadcastShape)
	for _, op := range ops {
		info := opRegistry[op]
		require.NotNil(t, info.shape, "op %s", op)
		require.GreaterOrEqual(t, info.minInputs, 1, "op %s", op)
	}
}

func TestOpCategories(t *testing.T) {
	transcendental := TranscendentalOps()
	require.True(t, slices.IsSorted(transcendental))
	require.Contains(t, transcendental, OpSin)
	densifying := DensifyingOps()
	require.True(t, slices.IsSorted(densifying))
	require.Contains(t, densifying, OpExp)

	// Changing the returned copies does not change dispatch.
	for i := range transcendental {
		transcendental[i] = OpAdd
	}
	clear(densifying)
	require.Contains(t, TranscendentalOps(), OpSin)
	require.Contains(t, DensifyingOps(), OpExp)
	requireDType(t, Default(), Float32, Unary(OpSin), Int8)
	requireSparseness(t, Dense, Unary(OpExp), Sparse)
}

func TestResolverConcurrency(t *testing.T) {
	r := Default()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				s, err := r.ResolveShape(Einsum("bij,bjk->bik"), MakeShape(None, 3, 4), MakeShape(None, 4, 5))
				if err != nil || !s.Equal(Shape{None, 3, 5}) {
					t.Errorf("unexpected result %v, %v", s, err)
					return
				}
				dtype, err := r.ResolveDType(Elementwise(OpAdd), Int8, WeakFloat)
				if err != nil || dtype != Float32 {
					t.Errorf("unexpected dtype %s, %v", dtype, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
