package numpy

import (
	"github.com/pkg/errors"
)

// Sparseness tags how a tensor is stored. It is carried alongside the shape, independent of it.
type Sparseness int

const (
	// Dense is a regular tensor.
	Dense Sparseness = iota

	// Sparse is a sparse tensor: only the non-zero entries are stored, with their indices.
	Sparse

	// Slices is an indexed-slices tensor: a subset of the rows of a dense tensor.
	Slices

	// Scalar is a Python scalar literal, which takes the tag of the other operand where it matters.
	Scalar
)

var sparsenessNames = []string{"dense", "sparse", "slices", "scalar"}

// String implements fmt.Stringer.
func (s Sparseness) String() string {
	if s < 0 || int(s) >= len(sparsenessNames) {
		return "Sparseness(?)"
	}
	return sparsenessNames[s]
}

// isSparse returns whether s is one of the sparse representations.
func (s Sparseness) isSparse() bool { return s == Sparse || s == Slices }

// ResolveSparseness returns the storage tag of the output of op, given the tags of its inputs.
//
// Ops that map zero to zero keep the tag of their input, binary ops combine them (union for
// add-like ops, intersection for multiply) and everything else is dense. It returns an error
// for an unknown op or when sparse and indexed-slices operands are mixed.
func ResolveSparseness(op Op, inputs ...Sparseness) (Sparseness, error) {
	info, err := lookupOp(op.Type, len(inputs))
	if err != nil {
		return Dense, errors.WithMessage(err, "numpy.ResolveSparseness")
	}
	output, err := resolveSparseness(info.sparse, inputs)
	if err != nil {
		return Dense, errors.WithMessagef(err, "numpy.%s(%v)", op.Type, inputs)
	}
	return output, nil
}

func resolveSparseness(rule sparseRule, inputs []Sparseness) (Sparseness, error) {
	switch rule {
	case sparsePreserve:
		if inputs[0] == Scalar {
			return Dense, nil
		}
		return inputs[0], nil

	case sparseUnion:
		x, y := inputs[0], inputs[1]
		if !x.isSparse() || !y.isSparse() {
			return Dense, nil
		}
		if x != y {
			return Dense, errors.Errorf("cannot combine %s and %s operands", x, y)
		}
		return x, nil

	case sparseIntersection:
		x, y := inputs[0], inputs[1]
		switch {
		case x == Scalar:
			if y == Scalar {
				return Dense, nil
			}
			return y, nil
		case !y.isSparse():
			return x, nil
		case x == Dense:
			return y, nil
		case x != y:
			return Dense, errors.Errorf("cannot combine %s and %s operands", x, y)
		}
		return x, nil

	case sparseDivision:
		x, y := inputs[0], inputs[1]
		if y.isSparse() || x == Scalar {
			return Dense, nil
		}
		return x, nil

	case sparseConcat:
		for _, input := range inputs {
			if input != Sparse {
				return Dense, nil
			}
		}
		return Sparse, nil
	}
	return Dense, nil
}
