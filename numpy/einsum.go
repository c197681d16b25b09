package numpy

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
)

const ellipsis = "..."

// einsumTerm is one parsed operand (or the output) of an einsum equation.
type einsumTerm struct {
	// labels in order; ellipsisAt is the position of "..." among them, or -1.
	labels     []byte
	ellipsisAt int
}

func (t einsumTerm) hasEllipsis() bool { return t.ellipsisAt >= 0 }

// einsumEquation is the parsed form of an einsum subscripts string.
type einsumEquation struct {
	inputs    []einsumTerm
	output    einsumTerm
	hasOutput bool
}

func parseEinsumTerm(term string) (einsumTerm, error) {
	t := einsumTerm{ellipsisAt: -1}
	for i := 0; i < len(term); i++ {
		c := term[i]
		switch {
		case strings.HasPrefix(term[i:], ellipsis):
			if t.hasEllipsis() {
				return t, errors.Errorf("subscript %q has more than one ellipsis", term)
			}
			t.ellipsisAt = len(t.labels)
			i += len(ellipsis) - 1
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			t.labels = append(t.labels, c)
		default:
			return t, errors.Errorf("invalid character %q in subscript %q", c, term)
		}
	}
	return t, nil
}

// parseEinsum parses subscripts like "ij,jk->ik", "i...,...j" or ",ij". Spaces are ignored.
func parseEinsum(subscripts string) (*einsumEquation, error) {
	subscripts = strings.ReplaceAll(subscripts, " ", "")
	eq := &einsumEquation{}
	lhs, rhs, hasOutput := strings.Cut(subscripts, "->")
	if strings.Contains(rhs, "->") {
		return nil, errors.Errorf("subscripts %q has more than one \"->\"", subscripts)
	}
	for _, term := range strings.Split(lhs, ",") {
		t, err := parseEinsumTerm(term)
		if err != nil {
			return nil, err
		}
		eq.inputs = append(eq.inputs, t)
	}
	if hasOutput {
		t, err := parseEinsumTerm(rhs)
		if err != nil {
			return nil, err
		}
		for i, label := range t.labels {
			if slices.Contains(t.labels[:i], label) {
				return nil, errors.Errorf("output subscript %q has repeated label %q", rhs, label)
			}
		}
		eq.output = t
		eq.hasOutput = true
	}
	return eq, nil
}

// einsumShape resolves the output shape of an einsum.
//
// Dimensions of a label shared by several operands broadcast against each other, while a label
// repeated within one operand (a diagonal) needs equal sizes. The ellipsis spans of all operands
// broadcast together. Without an explicit output, the output is the ellipsis dimensions followed by
// the labels appearing exactly once, in alphabetical order.
func einsumShape(_ *Resolver, op Op, inputs []Shape) (Shape, error) {
	eq, err := parseEinsum(op.Subscripts)
	if err != nil {
		return nil, err
	}
	if len(eq.inputs) != len(inputs) {
		return nil, errors.Errorf("subscripts %q have %d operands, but %d inputs were given",
			op.Subscripts, len(eq.inputs), len(inputs))
	}

	labelDims := make(map[byte]int)
	labelCounts := make(map[byte]int)
	var ellipsisShapes []Shape
	anyEllipsis := false
	for i, term := range eq.inputs {
		x := inputs[i]
		ellipsisRank := 0
		if term.hasEllipsis() {
			anyEllipsis = true
			ellipsisRank = x.Rank() - len(term.labels)
			if ellipsisRank < 0 {
				return nil, errors.Errorf("operand #%d has rank %d, fewer than the %d labels of its subscripts",
					i, x.Rank(), len(term.labels))
			}
		} else if len(term.labels) != x.Rank() {
			return nil, errors.Errorf("operand #%d has rank %d, but its subscripts have %d labels",
				i, x.Rank(), len(term.labels))
		}

		localDims := make(map[byte]int)
		axis := 0
		for j, label := range term.labels {
			if j == term.ellipsisAt {
				ellipsisShapes = append(ellipsisShapes, x[axis:axis+ellipsisRank])
				axis += ellipsisRank
			}
			d := x[axis]
			axis++
			if prev, found := localDims[label]; found {
				merged, ok := mergeDims(prev, d)
				if !ok {
					return nil, errors.Errorf("label %q is repeated in operand #%d with different sizes %d and %d",
						label, i, prev, d)
				}
				localDims[label] = merged
				continue
			}
			localDims[label] = d
		}
		if term.ellipsisAt == len(term.labels) {
			ellipsisShapes = append(ellipsisShapes, x[axis:axis+ellipsisRank])
		}

		for label, d := range localDims {
			labelCounts[label]++
			if prev, found := labelDims[label]; found {
				joined, ok := broadcastDim(prev, d)
				if !ok {
					return nil, errors.Errorf("size of label %q for operand #%d (%d) does not match previous size (%d)",
						label, i, d, prev)
				}
				d = joined
			}
			labelDims[label] = d
		}
		// Labels repeated within an operand count once per repetition for the implicit output.
		for j, label := range term.labels {
			if slices.Contains(term.labels[:j], label) {
				labelCounts[label]++
			}
		}
	}

	broadcastDims, err := broadcastShapes(ellipsisShapes...)
	if err != nil {
		return nil, errors.WithMessage(err, "ellipsis dimensions")
	}

	output := make(Shape, 0)
	if !eq.hasOutput {
		if anyEllipsis {
			output = append(output, broadcastDims...)
		}
		var once []byte
		for label, count := range labelCounts {
			if count == 1 {
				once = append(once, label)
			}
		}
		slices.Sort(once)
		for _, label := range once {
			output = append(output, labelDims[label])
		}
		return output, nil
	}

	for j, label := range eq.output.labels {
		if j == eq.output.ellipsisAt {
			output = append(output, broadcastDims...)
		}
		d, found := labelDims[label]
		if !found {
			return nil, errors.Errorf("output label %q does not appear in the input subscripts", label)
		}
		output = append(output, d)
	}
	if eq.output.ellipsisAt == len(eq.output.labels) {
		output = append(output, broadcastDims...)
	}
	return output, nil
}
