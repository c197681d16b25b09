// Package numpy resolves the output shapes and dtypes of numpy-compatible operations during
// symbolic graph construction, before any backend is involved.
//
//   - ResolveShape / ResolveShapes: symbolic shape inference where dimensions may be unknown (UnknownDim),
//     covering broadcasting, reductions, einsum, the matmul family and structural ops.
//   - ResolveDType: dtype promotion over a JAX compatible lattice with weak (Python scalar) types,
//     per-category overrides and an optional 64 to 32 bits narrowing policy.
//   - ResolveSparseness: propagation of the dense/sparse/slices tag.
//   - Resolver: holds a Config (default float dtype, narrowing policy, squeeze strictness) and exposes
//     all of the above, plus Call to resolve a TensorSpec in one go.
//
// The package-level functions use DefaultConfig.
package numpy

import (
	"strings"

	"github.com/gomlx/compute/dtypes"
	"github.com/pkg/errors"
)

// NarrowingPolicy controls when 64 bits results are narrowed to 32 bits.
type NarrowingPolicy int

const (
	// NarrowNone keeps 64 bits results.
	NarrowNone NarrowingPolicy = iota

	// NarrowWeak narrows a 64 bits result only if at least one input was weak.
	// Results computed purely from strong 64 bits inputs are kept.
	NarrowWeak

	// NarrowAll narrows every 64 bits result.
	NarrowAll
)

var narrowingNames = []string{"none", "weak", "all"}

// String implements fmt.Stringer.
func (p NarrowingPolicy) String() string {
	if p < 0 || int(p) >= len(narrowingNames) {
		return "NarrowingPolicy(?)"
	}
	return narrowingNames[p]
}

// ParseNarrowingPolicy parses "none", "weak" or "all".
func ParseNarrowingPolicy(name string) (NarrowingPolicy, error) {
	for i, n := range narrowingNames {
		if strings.EqualFold(n, name) {
			return NarrowingPolicy(i), nil
		}
	}
	return NarrowNone, errors.Errorf("unknown narrowing policy %q, valid values are %q", name, narrowingNames)
}

// Config holds the policies used by a Resolver.
type Config struct {
	// FloatX is the default float dtype: weak results and integer inputs of float-only ops resolve to it.
	// Weak integer results take its bit width. It defaults to Float32.
	FloatX dtypes.DType

	// Narrowing selects when 64 bits results are narrowed to 32 bits. Defaults to NarrowNone.
	Narrowing NarrowingPolicy

	// StrictSqueeze makes squeezing an axis of unknown size an error. If false, the axis
	// is assumed to be 1. Defaults to true.
	StrictSqueeze bool
}

// DefaultConfig returns the default configuration: FloatX is Float32, no narrowing and strict squeeze.
func DefaultConfig() Config {
	return Config{
		FloatX:        dtypes.Float32,
		Narrowing:     NarrowNone,
		StrictSqueeze: true,
	}
}

// WithFloatX returns a copy of the configuration with the given default float dtype.
func (c Config) WithFloatX(dtype dtypes.DType) Config {
	c.FloatX = dtype
	return c
}

// WithNarrowing returns a copy of the configuration with the given narrowing policy.
func (c Config) WithNarrowing(policy NarrowingPolicy) Config {
	c.Narrowing = policy
	return c
}

// WithStrictSqueeze returns a copy of the configuration with StrictSqueeze set to strict.
func (c Config) WithStrictSqueeze(strict bool) Config {
	c.StrictSqueeze = strict
	return c
}

// Validate returns an error if the configuration is not usable.
func (c Config) Validate() error {
	if !c.FloatX.IsFloat() {
		return errors.Errorf("FloatX must be one of bfloat16, float16, float32 or float64, got %s", Strong(c.FloatX))
	}
	if c.Narrowing < NarrowNone || c.Narrowing > NarrowAll {
		return errors.Errorf("invalid narrowing policy %d", int(c.Narrowing))
	}
	return nil
}

// Resolver resolves shapes, dtypes and sparseness of numpy operations according to its Config.
//
// It is immutable and safe for concurrent use.
type Resolver struct {
	config Config
}

// NewResolver returns a Resolver for the given configuration.
func NewResolver(config Config) (*Resolver, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WithMessage(err, "numpy.NewResolver")
	}
	return &Resolver{config: config}, nil
}

// Config returns the configuration of the resolver.
func (r *Resolver) Config() Config { return r.config }

// WithFloatX returns a new Resolver with the given default float dtype.
func (r *Resolver) WithFloatX(dtype dtypes.DType) (*Resolver, error) {
	return NewResolver(r.config.WithFloatX(dtype))
}

// WithNarrowing returns a new Resolver with the given narrowing policy.
func (r *Resolver) WithNarrowing(policy NarrowingPolicy) (*Resolver, error) {
	return NewResolver(r.config.WithNarrowing(policy))
}

var defaultResolver = &Resolver{config: DefaultConfig()}

// Default returns the Resolver used by the package-level functions.
func Default() *Resolver { return defaultResolver }

// ResolveShape returns the output shape of op using the default configuration.
func ResolveShape(op Op, inputs ...Shape) (Shape, error) {
	return defaultResolver.ResolveShape(op, inputs...)
}

// ResolveShapes returns the output shapes of op using the default configuration.
func ResolveShapes(op Op, inputs ...Shape) ([]Shape, error) {
	return defaultResolver.ResolveShapes(op, inputs...)
}

// ResolveDType returns the output dtype of op using the default configuration.
func ResolveDType(op Op, inputs ...DType) (DType, error) {
	return defaultResolver.ResolveDType(op, inputs...)
}

// MustResolveShape is like ResolveShape, but panics (with exceptions.Panicf) on error.
func MustResolveShape(op Op, inputs ...Shape) Shape {
	return defaultResolver.MustResolveShape(op, inputs...)
}

// MustResolveDType is like ResolveDType, but panics (with exceptions.Panicf) on error.
func MustResolveDType(op Op, inputs ...DType) DType {
	return defaultResolver.MustResolveDType(op, inputs...)
}
