package pkg

import (
	"math"
	"strconv"
	"strings"
)

// InvalidCoordinate is out of range on every axis.
const InvalidCoordinate = -1

// ParseCoordinate converts a decoded JSON value to a board coordinate. Integral
// numbers and numeric strings pass through; anything else becomes InvalidCoordinate
// so that the move is refused by the rules rather than by the decoder.
func ParseCoordinate(value any) int {
	switch v := value.(type) {
	case float64:
		return integral(v)
	case int:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return InvalidCoordinate
		}

		return integral(f)
	default:
		return InvalidCoordinate
	}
}

func integral(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return InvalidCoordinate
	}

	if f < math.MinInt32 || f > math.MaxInt32 {
		return InvalidCoordinate
	}

	return int(f)
}
