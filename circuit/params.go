package circuit

import (
	"fmt"
	"math"
	"strings"
)

// piDenominators are tried in order, so a value is shown in lowest terms.
var piDenominators = [...]int{1, 2, 3, 4, 6, 8}

// maxPiTurns bounds the multiples of pi written symbolically.
const maxPiTurns = 4

// FormatParam formats a parameter value, writing rational multiples of pi
// such as pi/2, 3*pi/4 or -2*pi symbolically and anything else with %g.
func FormatParam(val float64) string {
	if val == 0 {
		return "0"
	}
	sign, abs := "", val
	if val < 0 {
		sign, abs = "-", -val
	}
	for _, d := range piDenominators {
		k := math.Round(abs * float64(d) / math.Pi)
		if k == 0 || k > maxPiTurns*float64(d) {
			continue
		}
		if math.Abs(abs-k*math.Pi/float64(d)) >= 1e-10 {
			continue
		}
		num := "pi"
		if k != 1 {
			num = fmt.Sprintf("%d*pi", int(k))
		}
		if d == 1 {
			return sign + num
		}
		return fmt.Sprintf("%s%s/%d", sign, num, d)
	}
	return fmt.Sprintf("%g", val)
}

// FormatParams joins parameters for display, e.g. "pi/2, 0.1".
func FormatParams(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = FormatParam(v)
	}
	return strings.Join(parts, ", ")
}

// Label returns the display name of a node: the gate name followed by its
// parameters when it has any.
func (n *Node) Label() string {
	if !n.HasParameter {
		return n.Gate
	}
	return fmt.Sprintf("%s(%s)", n.Gate, FormatParams(n.Params))
}
