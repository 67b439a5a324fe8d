package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type numKind uint8

const (
	numInt numKind = iota
	numUint
	numFloat
)

// Number is a JSON number that remembers whether it was an integer. Integers
// that fit in an int64 are always stored signed; larger ones are unsigned.
type Number struct {
	i    int64
	u    uint64
	f    float64
	kind numKind
}

func intNumber(i int64) Number {
	return Number{kind: numInt, i: i}
}

func uintNumber(u uint64) Number {
	if u <= math.MaxInt64 {
		return Number{kind: numInt, i: int64(u)}
	}
	return Number{kind: numUint, u: u}
}

// ParseNumber parses the textual form of a JSON number. Literals without a
// fraction or exponent become integers when they fit in 64 bits.
func ParseNumber(s string) (Number, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return intNumber(i), nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return uintNumber(u), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, fmt.Errorf("value: invalid number %q: %w", s, err)
	}
	if math.IsInf(f, 0) {
		return Number{}, fmt.Errorf("value: number %q out of range", s)
	}
	return Number{kind: numFloat, f: f}, nil
}

// IsInteger reports whether n holds an integer.
func (n Number) IsInteger() bool {
	return n.kind != numFloat
}

// Int64 returns n as an int64 when it is an integer that fits.
func (n Number) Int64() (int64, bool) {
	if n.kind == numInt {
		return n.i, true
	}
	return 0, false
}

// Uint64 returns n as a uint64 when it is a non-negative integer.
func (n Number) Uint64() (uint64, bool) {
	switch n.kind {
	case numInt:
		if n.i < 0 {
			return 0, false
		}
		return uint64(n.i), true
	case numUint:
		return n.u, true
	default:
		return 0, false
	}
}

// Float64 returns n converted to a float64. Large integers may lose precision.
func (n Number) Float64() float64 {
	switch n.kind {
	case numInt:
		return float64(n.i)
	case numUint:
		return float64(n.u)
	default:
		return n.f
	}
}

// Equal reports whether two numbers are the same integer or the same float.
// An integer never equals a float, even when numerically identical.
func (n Number) Equal(other Number) bool {
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case numInt:
		return n.i == other.i
	case numUint:
		return n.u == other.u
	default:
		return n.f == other.f
	}
}

// String returns the JSON text of n.
func (n Number) String() string {
	switch n.kind {
	case numInt:
		return strconv.FormatInt(n.i, 10)
	case numUint:
		return strconv.FormatUint(n.u, 10)
	default:
		s := strconv.FormatFloat(n.f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			// keep floats distinguishable from integers after a round trip
			s += ".0"
		}
		return s
	}
}

// JSONNumber returns n as a json.Number.
func (n Number) JSONNumber() json.Number {
	return json.Number(n.String())
}
