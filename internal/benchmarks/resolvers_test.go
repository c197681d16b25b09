// Package benchmarks measures the cost of resolving numpy shapes and dtypes.
//
// Run with, e.g.:
//
//	go test ./internal/benchmarks -run TestBench -bench_duration=10s
package benchmarks

import (
	"flag"
	"fmt"
	"testing"

	"github.com/gomlx/numpy-gomlx/numpy"
	"github.com/janpfeifer/go-benchmarks"
	"github.com/janpfeifer/must"
)

var (
	flagBenchDuration = flag.Duration("bench_duration", 0, "Benchmark duration, typically use 10 seconds. If left as 0, benchmark tests are disabled")

	// Benchmark inputs.
	batched   = numpy.MakeShape(numpy.UnknownDim, 32, 64)
	weights   = numpy.MakeShape(64, 16)
	rowVector = numpy.MakeShape(1, 64)
)

func shapeFunctions(r *numpy.Resolver) []benchmarks.NamedFunction {
	return []benchmarks.NamedFunction{
		{
			Name: "Broadcast",
			Func: func() { must.M1(r.ResolveShape(numpy.Elementwise(numpy.OpAdd), batched, rowVector)) },
		},
		{
			Name: "Matmul",
			Func: func() { must.M1(r.ResolveShape(numpy.Elementwise(numpy.OpMatmul), batched, weights)) },
		},
		{
			Name: "Einsum",
			Func: func() {
				must.M1(r.ResolveShape(numpy.Einsum("bij,jk->bik"), batched, weights))
			},
		},
		{
			Name: "Reduce",
			Func: func() { must.M1(r.ResolveShape(numpy.Reduce(numpy.OpSum, true, -1), batched)) },
		},
		{
			Name: "Reshape",
			Func: func() { must.M1(r.ResolveShape(numpy.Reshape(-1, 64), batched)) },
		},
	}
}

// dtypePairs enumerates all pairs of dtypes, weak ones included.
func dtypePairs() [][2]numpy.DType {
	all := append([]numpy.DType{numpy.WeakBool, numpy.WeakInt, numpy.WeakFloat, numpy.WeakComplex}, numpy.AllDTypes...)
	pairs := make([][2]numpy.DType, 0, len(all)*len(all))
	for _, x := range all {
		for _, y := range all {
			pairs = append(pairs, [2]numpy.DType{x, y})
		}
	}
	return pairs
}

func TestBenchShapes(t *testing.T) {
	if testing.Short() || *flagBenchDuration == 0 {
		t.SkipNow()
	}
	for _, testFn := range shapeFunctions(numpy.Default()) {
		benchmarks.New(testFn).
			WithWarmUps(100).
			WithDuration(*flagBenchDuration).
			Done()
	}
}

func TestBenchDTypes(t *testing.T) {
	if testing.Short() || *flagBenchDuration == 0 {
		t.SkipNow()
	}
	pairs := dtypePairs()
	var testFns []benchmarks.NamedFunction
	for _, policy := range []numpy.NarrowingPolicy{numpy.NarrowNone, numpy.NarrowAll} {
		r := must.M1(numpy.Default().WithNarrowing(policy))
		pairIdx := 0
		testFns = append(testFns, benchmarks.NamedFunction{
			Name: fmt.Sprintf("ResultType/narrow=%s", policy),
			Func: func() {
				pair := pairs[pairIdx]
				_, _ = r.ResultType(pair[0], pair[1])
				pairIdx = (pairIdx + 1) % len(pairs)
			},
		})
		divIdx := 0
		testFns = append(testFns, benchmarks.NamedFunction{
			Name: fmt.Sprintf("TrueDivide/narrow=%s", policy),
			Func: func() {
				pair := pairs[divIdx]
				_, _ = r.ResolveDType(numpy.Elementwise(numpy.OpTrueDivide), pair[0], pair[1])
				divIdx = (divIdx + 1) % len(pairs)
			},
		})
	}
	for _, testFn := range testFns {
		benchmarks.New(testFn).
			WithWarmUps(100).
			WithDuration(*flagBenchDuration).
			Done()
	}
}

func BenchmarkResolveShape(b *testing.B) {
	for _, fn := range shapeFunctions(numpy.Default()) {
		b.Run(fn.Name, func(b *testing.B) {
			for b.Loop() {
				fn.Func()
			}
		})
	}
}

func BenchmarkResultType(b *testing.B) {
	pairs := dtypePairs()
	r := numpy.Default()
	for b.Loop() {
		for _, pair := range pairs {
			_, _ = r.ResultType(pair[0], pair[1])
		}
	}
}

func BenchmarkCall(b *testing.B) {
	x := numpy.Spec(numpy.BFloat16, numpy.UnknownDim, 32, 64)
	w := numpy.Spec(numpy.Float32, 64, 16)
	r := numpy.Default()
	for b.Loop() {
		must.M1(r.Call(numpy.Elementwise(numpy.OpMatmul), x, w))
	}
}
