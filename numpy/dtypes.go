package numpy

import (
	"github.com/gomlx/compute/dtypes"
	"github.com/pkg/errors"
)

// DType is a GoMLX dtype plus a Weak flag.
//
// Weak dtypes stand for untyped scalar literals (Python's int, float, complex and bool):
// they take part in promotion without widening their strongly typed partners. For a weak
// dtype, the base dtype only records its kind (integer, float, complex or boolean).
type DType struct {
	dtypes.DType
	Weak bool
}

var (
	// WeakBool is the dtype of an untyped boolean literal. It promotes exactly like Bool.
	WeakBool = DType{DType: dtypes.Bool, Weak: true}

	// WeakInt is the dtype of an untyped integer literal.
	WeakInt = DType{DType: dtypes.Int64, Weak: true}

	// WeakFloat is the dtype of an untyped float literal.
	WeakFloat = DType{DType: dtypes.Float64, Weak: true}

	// WeakComplex is the dtype of an untyped complex literal.
	WeakComplex = DType{DType: dtypes.Complex128, Weak: true}
)

// Strong wraps a GoMLX dtype as a (non-weak) DType.
func Strong(dtype dtypes.DType) DType {
	return DType{DType: dtype}
}

// Shortcuts for the strong dtypes the resolver supports.
var (
	Bool       = Strong(dtypes.Bool)
	Int8       = Strong(dtypes.Int8)
	Int16      = Strong(dtypes.Int16)
	Int32      = Strong(dtypes.Int32)
	Int64      = Strong(dtypes.Int64)
	Uint8      = Strong(dtypes.Uint8)
	Uint16     = Strong(dtypes.Uint16)
	Uint32     = Strong(dtypes.Uint32)
	Uint64     = Strong(dtypes.Uint64)
	BFloat16   = Strong(dtypes.BFloat16)
	Float16    = Strong(dtypes.Float16)
	Float32    = Strong(dtypes.Float32)
	Float64    = Strong(dtypes.Float64)
	Complex64  = Strong(dtypes.Complex64)
	Complex128 = Strong(dtypes.Complex128)
)

// numpyNames maps the supported GoMLX dtypes to their numpy names.
var numpyNames = map[dtypes.DType]string{
	dtypes.Bool:       "bool",
	dtypes.Int8:       "int8",
	dtypes.Int16:      "int16",
	dtypes.Int32:      "int32",
	dtypes.Int64:      "int64",
	dtypes.Uint8:      "uint8",
	dtypes.Uint16:     "uint16",
	dtypes.Uint32:     "uint32",
	dtypes.Uint64:     "uint64",
	dtypes.BFloat16:   "bfloat16",
	dtypes.Float16:    "float16",
	dtypes.Float32:    "float32",
	dtypes.Float64:    "float64",
	dtypes.Complex64:  "complex64",
	dtypes.Complex128: "complex128",
}

// AllDTypes lists the strong dtypes supported by the resolver, in lattice order.
var AllDTypes = []DType{
	Bool,
	Uint8, Uint16, Uint32, Uint64,
	Int8, Int16, Int32, Int64,
	BFloat16, Float16, Float32, Float64,
	Complex64, Complex128,
}

// String returns the numpy name of the dtype. Weak dtypes are named after the Python type
// they represent ("int", "float", "complex").
func (d DType) String() string {
	if d.Weak {
		switch {
		case d.DType == dtypes.Bool:
			return "bool"
		case d.DType.IsInt():
			return "int"
		case d.DType.IsFloat():
			return "float"
		case d.DType.IsComplex():
			return "complex"
		}
	}
	if name, found := numpyNames[d.DType]; found {
		return name
	}
	return d.DType.String()
}

// IsSupported returns whether the dtype takes part in the promotion lattice.
func (d DType) IsSupported() bool {
	_, err := latticeNodeOf(d)
	return err == nil
}

// IsBool returns whether the dtype is boolean, weak or not.
func (d DType) IsBool() bool { return d.DType == dtypes.Bool }

// ParseDType parses a numpy dtype name ("float32", "uint8", ...) or one of the weak
// Python type names ("int", "float", "complex").
func ParseDType(name string) (DType, error) {
	switch name {
	case "int":
		return WeakInt, nil
	case "float":
		return WeakFloat, nil
	case "complex":
		return WeakComplex, nil
	}
	for dtype, numpyName := range numpyNames {
		if numpyName == name {
			return Strong(dtype), nil
		}
	}
	// GoMLX spellings, e.g. "Float32" or "f32".
	if dtype, found := dtypes.MapOfNames[name]; found {
		if _, supported := numpyNames[dtype]; supported {
			return Strong(dtype), nil
		}
		return DType{}, errors.Errorf("dtype %q is not supported by the numpy promotion rules", name)
	}
	return DType{}, errors.Errorf("unknown dtype %q", name)
}

// latticeNode is a node of the promotion lattice: one per strong dtype plus
// the weak nodes i*, f* and c*.
type latticeNode int

const (
	nodeBool latticeNode = iota
	nodeWeakInt
	nodeUint8
	nodeUint16
	nodeUint32
	nodeUint64
	nodeInt8
	nodeInt16
	nodeInt32
	nodeInt64
	nodeWeakFloat
	nodeBFloat16
	nodeFloat16
	nodeFloat32
	nodeFloat64
	nodeWeakComplex
	nodeComplex64
	nodeComplex128
	numLatticeNodes
)

// latticeEdges lists the direct promotions of each node.
var latticeEdges = map[latticeNode][]latticeNode{
	nodeBool:        {nodeWeakInt},
	nodeWeakInt:     {nodeUint8, nodeInt8},
	nodeUint8:       {nodeInt16, nodeUint16},
	nodeUint16:      {nodeInt32, nodeUint32},
	nodeUint32:      {nodeInt64, nodeUint64},
	nodeUint64:      {nodeWeakFloat},
	nodeInt8:        {nodeInt16},
	nodeInt16:       {nodeInt32},
	nodeInt32:       {nodeInt64},
	nodeInt64:       {nodeWeakFloat},
	nodeWeakFloat:   {nodeBFloat16, nodeFloat16, nodeWeakComplex},
	nodeBFloat16:    {nodeFloat32},
	nodeFloat16:     {nodeFloat32},
	nodeFloat32:     {nodeFloat64, nodeComplex64},
	nodeFloat64:     {nodeComplex128},
	nodeWeakComplex: {nodeComplex64},
	nodeComplex64:   {nodeComplex128},
}

var strongNodes = map[dtypes.DType]latticeNode{
	dtypes.Bool:       nodeBool,
	dtypes.Uint8:      nodeUint8,
	dtypes.Uint16:     nodeUint16,
	dtypes.Uint32:     nodeUint32,
	dtypes.Uint64:     nodeUint64,
	dtypes.Int8:       nodeInt8,
	dtypes.Int16:      nodeInt16,
	dtypes.Int32:      nodeInt32,
	dtypes.Int64:      nodeInt64,
	dtypes.BFloat16:   nodeBFloat16,
	dtypes.Float16:    nodeFloat16,
	dtypes.Float32:    nodeFloat32,
	dtypes.Float64:    nodeFloat64,
	dtypes.Complex64:  nodeComplex64,
	dtypes.Complex128: nodeComplex128,
}

// upperBounds[n] is the set of nodes reachable from n, n included.
var upperBounds [numLatticeNodes]uint32

func init() {
	for n := range numLatticeNodes {
		upperBounds[n] = reachable(n)
	}
}

func reachable(n latticeNode) uint32 {
	set := uint32(1) << n
	for _, next := range latticeEdges[n] {
		set |= reachable(next)
	}
	return set
}

func (n latticeNode) isWeak() bool {
	return n == nodeWeakInt || n == nodeWeakFloat || n == nodeWeakComplex
}

func latticeNodeOf(d DType) (latticeNode, error) {
	if d.Weak {
		switch {
		case d.DType == dtypes.Bool:
			return nodeBool, nil
		case d.DType.IsInt():
			return nodeWeakInt, nil
		case d.DType.IsFloat():
			return nodeWeakFloat, nil
		case d.DType.IsComplex():
			return nodeWeakComplex, nil
		}
		return 0, errors.Errorf("unsupported weak dtype %s", d.DType)
	}
	if n, found := strongNodes[d.DType]; found {
		return n, nil
	}
	return 0, errors.Errorf("unsupported dtype %s", d.DType)
}

func (n latticeNode) dtype() DType {
	switch n {
	case nodeWeakInt:
		return WeakInt
	case nodeWeakFloat:
		return WeakFloat
	case nodeWeakComplex:
		return WeakComplex
	}
	for dtype, node := range strongNodes {
		if node == n {
			return Strong(dtype)
		}
	}
	return DType{}
}

// latticeJoin returns the least upper bound of the given nodes.
func latticeJoin(nodes ...latticeNode) latticeNode {
	common := ^uint32(0)
	for _, n := range nodes {
		common &= upperBounds[n]
	}
	for candidate := range numLatticeNodes {
		if common&(1<<candidate) == 0 {
			continue
		}
		// The join is the common bound that reaches every other common bound.
		if upperBounds[candidate]&common == common {
			return candidate
		}
	}
	// Unreachable: every pair of nodes meets at complex128.
	return nodeComplex128
}

// ResultType returns the least upper bound of the given dtypes in the promotion lattice.
//
// The result is weak if it lands on one of the weak nodes, e.g. ResultType(WeakInt, WeakFloat) is WeakFloat
// and ResultType(Int64, Uint64) is also WeakFloat. Use Resolver.ResultType to get a concrete dtype.
func ResultType(inputs ...DType) (DType, error) {
	if len(inputs) == 0 {
		return DType{}, errors.New("ResultType requires at least one dtype")
	}
	nodes := make([]latticeNode, len(inputs))
	for i, input := range inputs {
		n, err := latticeNodeOf(input)
		if err != nil {
			return DType{}, err
		}
		nodes[i] = n
	}
	return latticeJoin(nodes...).dtype(), nil
}
