// Package cifval holds the typed value of a single token from an mmcif
// file. A token is classified once, when it is read, as an integer,
// a real number, a null marker or text. The original text is always
// kept, since comparisons for filtering are done on the text.
package cifval

import (
	"errors"
	"fmt"
	"strconv"

	"fortio.org/safecast"
)

// Kind says which of the four shapes a Value has.
type Kind uint8

const (
	KindNull Kind = iota // "." or "?" in the file, or a missing value
	KindInt
	KindFloat
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Value is the typed form of a token. Only the field that belongs to
// kind is set. raw is the text as it came from the file, without quotes.
// The zero Value is a null.
type Value struct {
	raw  string
	i    int64
	f    float64
	kind Kind
}

const (
	inapplicable = "." // CIF marker for a value that does not apply
	unknown      = "?" // and for one that is missing
)

// ErrTypeCoercion is matched by every CoercionError.
var ErrTypeCoercion = errors.New("type coercion")

// CoercionError is returned when a numeric accessor is called on a
// value that is not a number.
type CoercionError struct {
	Text string
	Got  Kind
	Want Kind
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot read %q (%s) as %s", e.Text, e.Got, e.Want)
}

func (e *CoercionError) Is(target error) bool { return target == ErrTypeCoercion }

// New classifies a token. quoted should be true if the token was
// delimited by quotes or was a multi-line text field. Quoted tokens
// are always text, so '1' stays a string and '.' is not a null.
// The order of checks is integer, real, null, text.
func New(text string, quoted bool) Value {
	if quoted {
		return Value{raw: text, kind: KindText}
	}
	num, ok := stripSU(text)
	if ok && isInt(num) {
		if i, err := strconv.ParseInt(num, 10, 64); err == nil {
			return Value{raw: text, i: i, kind: KindInt}
		} // too big for an int64, fall through and try as a float
	}
	if ok && (isInt(num) || isFloat(num)) {
		if f, err := strconv.ParseFloat(num, 64); err == nil {
			return Value{raw: text, f: f, kind: KindFloat}
		}
	}
	if text == inapplicable || text == unknown {
		return Value{raw: text, kind: KindNull}
	}
	return Value{raw: text, kind: KindText}
}

// Parse is New for an unquoted token.
func Parse(text string) Value { return New(text, false) }

// Text makes a text value without looking at its contents.
func Text(s string) Value { return Value{raw: s, kind: KindText} }

// Null returns the value used for things that are not there.
func Null() Value { return Value{raw: inapplicable} }

// Kind returns the kind fixed when the value was made.
func (v Value) Kind() Kind { return v.kind }

// IsNull is true for "." and "?" and for missing values.
func (v Value) IsNull() bool { return v.kind == KindNull }

// String returns the original text. It never fails.
func (v Value) String() string {
	if v.kind == KindNull && v.raw == "" {
		return inapplicable
	}
	return v.raw
}

// Int returns the integer. Reals are not truncated, they are an error,
// as is anything else that is not an integer.
func (v Value) Int() (int64, error) {
	if v.kind != KindInt {
		return 0, &CoercionError{Text: v.String(), Got: v.kind, Want: KindInt}
	}
	return v.i, nil
}

// Int32 is Int, but also fails if the number does not fit.
func (v Value) Int32() (int32, error) {
	i, err := v.Int()
	if err != nil {
		return 0, err
	}
	n, err := safecast.Conv[int32](i)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", v.raw, err)
	}
	return n, nil
}

// Float returns the number as a float64. Integers are widened.
func (v Value) Float() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	}
	return 0, &CoercionError{Text: v.String(), Got: v.kind, Want: KindFloat}
}

// Equal compares two values by their text, which is what the selection
// code wants. Int 1 and text "1" are equal, "1.0" and "1" are not.
func (v Value) Equal(w Value) bool { return v.String() == w.String() }
