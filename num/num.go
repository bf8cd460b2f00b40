// Package num provides the integer infinities used by rule flags and range
// selectors, plus parsing helpers for the flow language's number literals.
package num

import (
	"math"
	"strconv"

	"github.com/rotisserie/eris"
)

// Inf and NegInf are integer stand-ins for the open ends of a range. They
// survive ordinary comparisons (anything < Inf, anything > NegInf) which is
// all the engine ever does with them.
const (
	Inf    = math.MaxInt
	NegInf = math.MinInt
)

// Parse converts a flow-language number literal to an int. The literals
// "inf" and "-inf" map to Inf and NegInf.
func Parse(s string) (int, error) {
	switch s {
	case "inf":
		return Inf, nil
	case "-inf":
		return NegInf, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, eris.Errorf("invalid number literal %q", s)
	}
	return n, nil
}

// Format renders an int back into its flow-language literal form.
func Format(n int) string {
	switch n {
	case Inf:
		return "inf"
	case NegInf:
		return "-inf"
	}
	return strconv.Itoa(n)
}
