package tabular

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the type of a field value.
type Kind int

// Field value kinds. A value is always exactly one of these.
const (
	KindNull Kind = iota
	KindString
	KindNumber
)

// Value is a tagged field value: a string, a finite number, or null.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Null is the null value.
var Null = Value{}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric value. NaN and infinities collapse to null
// since downstream consumers require finite quantities.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null
	}
	return Value{kind: KindNumber, num: f}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string content and whether the value is a string.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Num returns the numeric content and whether the value is a number.
func (v Value) Num() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text renders the value for delimited-text output. Numbers use the
// shortest representation that round-trips; null renders empty.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Interface returns the value as any, for JSON encoding.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	default:
		return nil
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	default:
		return true
	}
}

// Coerce interprets a raw field as a typed value: empty (after trimming)
// becomes null and anything that parses as a number becomes numeric,
// mirroring how spreadsheet exports type their cells.
func Coerce(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Null
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Number(f)
	}
	return String(trimmed)
}
