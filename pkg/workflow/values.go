package workflow

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Entity field values arrive from JSON snapshots and loosely typed editors.
// The helpers below give them the scalar semantics rules were written
// against: one numeric type, "undefined" for absent fields, and the
// String()/Number() coercions used by contains and the ordering operators.

// undefined marks a field that is absent from the entity.
type undefined struct{}

// normalize unwraps named scalar kinds and json.Number so the comparisons
// below only deal with base types.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, undefined, string, bool, float64, int:
		return v
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}

		return f
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}

		return normalize(rv.Elem().Interface())
	}

	return v
}

func isUndefined(v any) bool {
	_, ok := v.(undefined)

	return ok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}

	return 0, false
}

// strictEquals compares without coercion. Composite values are never equal
// since they are distinct objects.
func strictEquals(a, b any) bool {
	if isUndefined(a) || isUndefined(b) {
		return isUndefined(a) && isUndefined(b)
	}

	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if x, ok := asFloat(a); ok {
		y, ok := asFloat(b)

		return ok && x == y
	}

	switch x := a.(type) {
	case string:
		y, ok := b.(string)

		return ok && x == y
	case bool:
		y, ok := b.(bool)

		return ok && x == y
	case time.Time:
		y, ok := b.(time.Time)

		return ok && x.Equal(y)
	}

	return false
}

// toNumber coerces a value to a float, yielding NaN where no number exists.
func toNumber(v any) float64 {
	if isUndefined(v) {
		return math.NaN()
	}

	if v == nil {
		return 0
	}

	if f, ok := asFloat(v); ok {
		return f
	}

	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}

		return 0
	case string:
		return parseNumber(x)
	case time.Time:
		return float64(x.UnixMilli())
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return parseNumber(toString(v))
	}

	return math.NaN()
}

func parseNumber(s string) float64 {
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

	lower := strings.ToLower(s)
	for prefix, base := range map[string]int{"0x": 16, "0o": 8, "0b": 2} {
		if strings.HasPrefix(lower, prefix) {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}

			return float64(n)
		}
	}

	// ParseFloat accepts spellings such as "inf", "nan" and "1_000" that are
	// not numeric literals here.
	if strings.ContainsAny(lower, "in_") {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}

	return f
}

// toString renders a value the way string concatenation would.
func toString(v any) string {
	if isUndefined(v) {
		return "undefined"
	}

	if v == nil {
		return "null"
	}

	if f, ok := asFloat(v); ok {
		return formatNumber(f)
	}

	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())

		for i := range rv.Len() {
			elem := rv.Index(i).Interface()
			if elem == nil {
				continue
			}

			parts[i] = toString(elem)
		}

		return strings.Join(parts, ",")
	case reflect.Map, reflect.Struct:
		return "[object Object]"
	}

	return fmt.Sprint(v)
}

func formatNumber(f float64) string {
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
		// 'e' formatting pads the exponent to two digits; the shortest form does not.
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")

		return mantissa + "e" + sign + digits
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// isFalsy mirrors boolean coercion: undefined, nil, false, zero, NaN and
// the empty string are falsy. Empty maps and slices are truthy.
func isFalsy(v any) bool {
	if isUndefined(v) || v == nil {
		return true
	}

	if f, ok := asFloat(v); ok {
		return f == 0 || math.IsNaN(f)
	}

	switch x := v.(type) {
	case bool:
		return !x
	case string:
		return x == ""
	}

	return false
}
