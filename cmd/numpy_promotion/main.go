// numpy_promotion prints the dtype promotion table of the numpy rules, or resolves the dtype of one op.
//
// Examples:
//
//	numpy_promotion -weak
//	numpy_promotion -floatx=float16 -narrowing=all
//	numpy_promotion -op=true_divide int8 int8
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/numpy-gomlx/numpy"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagFloatX    = flag.String("floatx", "float32", "Default float dtype used to resolve weak floats and integer-to-float promotions.")
	flagNarrowing = flag.String("narrowing", "none", "64-bit narrowing policy: none, weak or all.")
	flagWeak      = flag.Bool("weak", false, "Include the weak (Python scalar) dtypes in the promotion table.")
	flagOp        = flag.String("op", "", "If set, resolves the dtype of the given op applied to the dtypes passed as arguments, "+
		"instead of printing the promotion table.")
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 1, 0, 1).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	r, err := newResolver()
	if err != nil {
		klog.Fatalf("Invalid flags: %+v", err)
	}
	if *flagOp != "" {
		if err := resolveOp(os.Stdout, r, *flagOp, flag.Args()); err != nil {
			klog.Fatalf("%+v", err)
		}
		return
	}
	if flag.NArg() > 0 {
		klog.Errorf("Unexpected arguments %q: dtypes are only used with -op. See 'numpy_promotion -help'.", flag.Args())
		os.Exit(1)
	}
	printPromotionTable(os.Stdout, r, *flagWeak)
}

func newResolver() (*numpy.Resolver, error) {
	floatX, err := numpy.ParseDType(*flagFloatX)
	if err != nil {
		return nil, err
	}
	narrowing, err := numpy.ParseNarrowingPolicy(*flagNarrowing)
	if err != nil {
		return nil, err
	}
	config := numpy.DefaultConfig().WithFloatX(floatX.DType).WithNarrowing(narrowing)
	return numpy.NewResolver(config)
}

// resolveOp writes the dtype resolved for op applied to the dtypes named in args.
func resolveOp(w io.Writer, r *numpy.Resolver, opName string, args []string) error {
	inputs := make([]numpy.DType, 0, len(args))
	for _, arg := range args {
		dtype, err := numpy.ParseDType(arg)
		if err != nil {
			return errors.WithMessagef(err, "failed to parse dtype %q", arg)
		}
		inputs = append(inputs, dtype)
	}
	result, err := r.ResolveDType(numpy.Unary(numpy.OpType(opName)), inputs...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "numpy.%s%v -> %s\n", opName, inputs, result)
	return err
}

// printPromotionTable writes the dtype of add for every pair of dtypes, weak ones included if withWeak is set.
func printPromotionTable(w io.Writer, r *numpy.Resolver, withWeak bool) {
	var dtypes []numpy.DType
	if withWeak {
		dtypes = append(dtypes, numpy.WeakBool, numpy.WeakInt, numpy.WeakFloat, numpy.WeakComplex)
	}
	dtypes = append(dtypes, numpy.AllDTypes...)

	header := make([]string, 0, len(dtypes)+1)
	header = append(header, "")
	for _, dtype := range dtypes {
		header = append(header, weakName(dtype))
	}
	table := newPlainTable().Headers(header...)

	var numPairs, numPromoted, numErrors int
	for _, x := range dtypes {
		row := make([]string, 0, len(dtypes)+1)
		row = append(row, weakName(x))
		for _, y := range dtypes {
			numPairs++
			// add resolves through the plain promotion category, so narrowing is applied too.
			result, err := r.ResolveDType(numpy.Elementwise(numpy.OpAdd), x, y)
			if err != nil {
				numErrors++
				klog.V(1).Infof("numpy.add(%s, %s) failed: %v", x, y, err)
				row = append(row, "-")
				continue
			}
			if result != x && result != y {
				numPromoted++
			}
			row = append(row, weakName(result))
		}
		table.Row(row...)
	}

	config := r.Config()
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Promotion table (floatx=%s, narrowing=%s)",
		numpy.Strong(config.FloatX), config.Narrowing)))
	fmt.Fprintln(w, table.Render())
	fmt.Fprintf(w, "%s pairs, %s promoted to a third dtype, %s errors.\n",
		humanize.Comma(int64(numPairs)), humanize.Comma(int64(numPromoted)), humanize.Comma(int64(numErrors)))
}

// weakName marks weak dtypes with a "*", since they share their names with the Python types.
func weakName(dtype numpy.DType) string {
	if dtype.Weak {
		return dtype.String() + "*"
	}
	return dtype.String()
}

func newPlainTable() *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			switch {
			case row < 0:
				s = headerRowStyle
				return
			case row%2 == 0:
				s = oddRowStyle
			default:
				s = evenRowStyle
			}
			if col == 0 {
				s = s.Bold(true)
			}
			return
		})
}
