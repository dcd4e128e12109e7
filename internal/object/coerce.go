package object

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ToNumber converts a value the way the host coerces operands of arithmetic
// operators. Values with no numeric reading produce NaN.
func ToNumber(obj Object) float64 {
	switch obj := obj.(type) {
	case *Number:
		return obj.Value
	case *String:
		return StringToNumber(obj.Value)
	case *Boolean:
		if obj.Value {
			return 1
		}
		return 0
	case *Null:
		return 0
	default:
		return math.NaN()
	}
}

// StringToNumber parses surrounding-whitespace-trimmed decimal, 0x/0o/0b
// integer and Infinity spellings. The empty string is 0.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return parseInteger(s[2:], base)
		}
	}

	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return v
}

func parseInteger(digits string, base int) float64 {
	if strings.ContainsAny(digits, "_+-") {
		return math.NaN()
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err == nil {
		return float64(v)
	}
	if !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	// wider than 64 bits, accumulate in floating point
	var f float64
	for _, c := range digits {
		d, err := strconv.ParseUint(string(c), base, 8)
		if err != nil {
			return math.NaN()
		}
		f = f*float64(base) + float64(d)
	}
	return f
}

// FormatNumber renders a float64 the way the host prints numbers: integral
// values have no fraction and very large or small magnitudes use exponent
// notation.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		if exp == "" {
			exp = "0"
		}
		return mantissa + "e" + sign + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToDisplayString is the text a value contributes to string concatenation.
func ToDisplayString(obj Object) string {
	if obj == nil {
		return "null"
	}
	return obj.Inspect()
}
