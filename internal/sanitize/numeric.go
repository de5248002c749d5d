package sanitize

import (
	"math"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
)

var intPattern = regexp.MustCompile(`^[+-]?\d+$`)

// SanitizeInt accepts finite numbers or strictly `^[+-]?\d+$` strings within
// the platform safe-integer range; rejects everything else (§4.2).
func SanitizeInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		if t != math.Trunc(t) {
			return 0, false
		}
		if t < -(1<<53) || t > (1<<53) {
			return 0, false
		}
		return int64(t), true
	case string:
		if !intPattern.MatchString(t) {
			return 0, false
		}
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// SanitizeFloat accepts finite numbers or strict decimal strings (no
// thousands separators), returning an exact shopspring/decimal.Decimal.
// Rejects NaN/Infinity and comma-formatted numbers (§4.2).
func SanitizeFloat(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case decimal.Decimal:
		return t, true
	case string:
		if t == "" {
			return decimal.Decimal{}, false
		}
		for _, r := range t {
			if r == ',' {
				return decimal.Decimal{}, false
			}
		}
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// SanitizeBool accepts native booleans, {0,1}, and the case-insensitive
// tokens {true,false,yes,no,y,n,on,off,1,0} (§4.2).
func SanitizeBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case int:
		switch t {
		case 0:
			return false, true
		case 1:
			return true, true
		}
		return false, false
	case float64:
		switch t {
		case 0:
			return false, true
		case 1:
			return true, true
		}
		return false, false
	case string:
		switch lowerASCII(t) {
		case "true", "yes", "y", "on", "1":
			return true, true
		case "false", "no", "n", "off", "0":
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
