package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the type of value a field holds.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindDate
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// DateLayout is the calendar date format accepted from users and sent to the backend.
const DateLayout = "2006-01-02"

// Value is a single field value. The zero Value is an empty string.
type Value struct {
	kind Kind
	str  string    // string value, or raw text for dates
	num  float64   // number value
	flag bool      // bool value
	date time.Time // parsed date
	ok   bool      // date text parsed
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Int returns a numeric value from an int.
func Int(n int) Value {
	return Number(float64(n))
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

// Date returns a date value for t, truncated to its calendar day.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Value{kind: KindDate, str: day.Format(DateLayout), date: day, ok: true}
}

// DateText returns a date value from user input. The raw text is kept even
// when it does not parse, so the validator can report it.
func DateText(raw string) Value {
	raw = strings.TrimSpace(raw)
	v := Value{kind: KindDate, str: raw}
	if raw == "" {
		return v
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return v
	}
	v.date = t
	v.ok = true
	return v
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string value, or the raw text of a date.
func (v Value) Str() string { return v.str }

// Num returns the numeric value.
func (v Value) Num() float64 { return v.num }

// Bool returns the boolean value.
func (v Value) Bool() bool { return v.flag }

// Date returns the parsed date and whether the raw text was a valid calendar date.
func (v Value) Date() (time.Time, bool) { return v.date, v.ok }

// IsEmpty reports whether the value carries no user input. Numbers and
// booleans are never empty once set.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindString, KindDate:
		return strings.TrimSpace(v.str) == ""
	default:
		return false
	}
}

// JSON returns the value in the form sent to the backend.
func (v Value) JSON() any {
	switch v.kind {
	case KindNumber:
		if v.num == float64(int64(v.num)) {
			return int64(v.num)
		}
		return v.num
	case KindBool:
		return v.flag
	case KindDate:
		if v.ok {
			return v.date.Format(DateLayout)
		}
		return v.str
	default:
		return v.str
	}
}

// Text renders the value for display.
func (v Value) Text() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		if v.flag {
			return "yes"
		}
		return "no"
	default:
		return v.str
	}
}

// Equal reports whether two values are identical.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.str == o.str && v.num == o.num &&
		v.flag == o.flag && v.ok == o.ok && v.date.Equal(o.date)
}

// GoString implements fmt.GoStringer for readable test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("form.Value{%s:%q}", v.kind, v.Text())
}
