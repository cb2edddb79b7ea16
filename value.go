package draft3

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Kind classifies an instance value. Instance trees are the shapes produced
// by JSON decoders: map[string]any, []any, string, bool, nil, and numbers as
// Go integers, float64 or json.Number.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBoolean
	KindInteger
	KindNumber // non-integral number
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindNull:    "null",
	KindBoolean: "boolean",
	KindInteger: "integer",
	KindNumber:  "number",
	KindString:  "string",
	KindArray:   "array",
	KindObject:  "object",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// Numeric reports whether the kind is integer or number.
func (k Kind) Numeric() bool { return k == KindInteger || k == KindNumber }

// KindOf classifies v. Integral float64 values count as integers because
// plain encoding/json decoding cannot tell 5 from 5.0; json.Number keeps the
// literal and is an integer only when written without fraction or exponent.
// The same value can therefore classify differently by representation:
// float64(5) is an integer while json.Number("5.0") is a number, so a
// document validates the same only when decoded the same way.
func KindOf(v any) Kind {
	switch t := v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case string:
		return KindString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInteger
	case float32:
		return floatKind(float64(t))
	case float64:
		return floatKind(t)
	case json.Number:
		if strings.ContainsAny(string(t), ".eE") {
			return KindNumber
		}
		return KindInteger
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	case Schema:
		return KindObject
	default:
		return KindInvalid
	}
}

func floatKind(f float64) Kind {
	if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) {
		return KindInteger
	}
	return KindNumber
}

// describe names v's runtime kind for messages.
func describe(v any) string {
	if k := KindOf(v); k != KindInvalid {
		return k.String()
	}
	return fmt.Sprintf("%T", v)
}

// numberRat converts a numeric value into an exact rational.
func numberRat(v any) (*big.Rat, bool) {
	r := new(big.Rat)
	switch t := v.(type) {
	case int:
		return r.SetInt64(int64(t)), true
	case int8:
		return r.SetInt64(int64(t)), true
	case int16:
		return r.SetInt64(int64(t)), true
	case int32:
		return r.SetInt64(int64(t)), true
	case int64:
		return r.SetInt64(t), true
	case uint:
		return r.SetUint64(uint64(t)), true
	case uint8:
		return r.SetUint64(uint64(t)), true
	case uint16:
		return r.SetUint64(uint64(t)), true
	case uint32:
		return r.SetUint64(uint64(t)), true
	case uint64:
		return r.SetUint64(t), true
	case float32:
		return ratFromFloat(float64(t))
	case float64:
		return ratFromFloat(t)
	case json.Number:
		if _, ok := r.SetString(string(t)); ok {
			return r, true
		}
	}
	return nil, false
}

func ratFromFloat(f float64) (*big.Rat, bool) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, false
	}
	return new(big.Rat).SetFloat64(f), true
}

// compareNumbers returns -1, 0 or +1; ok is false when either side is not a
// finite number.
func compareNumbers(a, b any) (int, bool) {
	ra, ok := numberRat(a)
	if !ok {
		return 0, false
	}
	rb, ok := numberRat(b)
	if !ok {
		return 0, false
	}
	return ra.Cmp(rb), true
}

// decimalString renders a number the way its fractional digits are counted.
func decimalString(v any) string {
	switch t := v.(type) {
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		s := string(t)
		if strings.ContainsAny(s, "eE") {
			if f, err := t.Float64(); err == nil {
				return strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
		return s
	default:
		return fmt.Sprint(v)
	}
}

// fractionDigits counts digits after the decimal point.
func fractionDigits(v any) int {
	s := decimalString(v)
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	n := 0
	for _, c := range s[i+1:] {
		if c < '0' || c > '9' {
			break
		}
		n++
	}
	return n
}

// asInt reads a schema bound such as minLength. Non-numeric values are
// reported as absent. Bounds beyond the int range saturate.
func asInt(v any) (int, bool) {
	r, ok := numberRat(v)
	if !ok {
		return 0, false
	}
	f, _ := r.Float64()
	switch {
	case f >= math.MaxInt:
		return math.MaxInt, true
	case f <= math.MinInt:
		return math.MinInt, true
	}
	return int(f), true
}

// Equal reports value equality between two instance values. Numbers compare
// by value across representations (1 equals 1.0).
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka.Numeric() && kb.Numeric() {
		c, ok := compareNumbers(a, b)
		return ok && c == 0
	}
	if ka != kb {
		return false
	}
	switch ka {
	case KindNull:
		return true
	case KindBoolean:
		return a.(bool) == b.(bool)
	case KindString:
		return a.(string) == b.(string)
	case KindArray:
		xa, xb := a.([]any), b.([]any)
		if len(xa) != len(xb) {
			return false
		}
		for i := range xa {
			if !Equal(xa[i], xb[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ma, mb := asMap(a), asMap(b)
		if len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, ok := mb[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func asMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case Schema:
		return t
	}
	return nil
}
