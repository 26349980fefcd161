package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToNumber converts a decoded JSON value to a number. Strings are trimmed and
// parsed, the empty string is zero and booleans map to 1 and 0. Nil, objects,
// arrays and unparsable strings report false, as do NaN and the infinities.
// Payloads decoded with UseNumber yield json.Number, which is parsed the same
// way, so a literal such as 1e999 is rejected instead of failing the decode.
func ToNumber(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case json.Number:
		n, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, true
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Truthy reports whether a decoded JSON value counts as true: false, zero,
// NaN, the empty string and nil are false, everything else is true.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	case json.Number:
		// out of range literals parse to an infinity, which is truthy
		f, _ := strconv.ParseFloat(string(x), 64)
		return f != 0 && !math.IsNaN(f)
	case string:
		return x != ""
	default:
		return true
	}
}
