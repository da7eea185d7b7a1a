package validate

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/mark3labs/leadwizard/internal/form"
	"github.com/mark3labs/leadwizard/internal/product"
)

// MinPhoneDigits is the fewest digits a phone number may have.
const MinPhoneDigits = 10

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipPattern   = regexp.MustCompile(`^\d{5}$`)
)

// Required fails when the field is unset or blank.
func Required(reason string) Check {
	return func(v form.Value, present bool, _ time.Time) string {
		if !present || v.IsEmpty() {
			return reason
		}
		return ""
	}
}

// Email fails when a non-empty value is not local@domain.tld.
func Email() Check {
	return func(v form.Value, present bool, _ time.Time) string {
		if !present || v.IsEmpty() {
			return ""
		}
		if !emailPattern.MatchString(strings.TrimSpace(v.Str())) {
			return "Enter a valid email address"
		}
		return ""
	}
}

// Phone fails when a non-empty value has fewer than MinPhoneDigits digits.
func Phone() Check {
	return func(v form.Value, present bool, _ time.Time) string {
		if !present || v.IsEmpty() {
			return ""
		}
		if CountDigits(v.Str()) < MinPhoneDigits {
			return "Phone number must have at least 10 digits"
		}
		return ""
	}
}

// ZipCode fails when a non-empty value is not five digits.
func ZipCode() Check {
	return func(v form.Value, present bool, _ time.Time) string {
		if !present || v.IsEmpty() {
			return ""
		}
		if !zipPattern.MatchString(strings.TrimSpace(v.Str())) {
			return "ZIP code must be 5 digits"
		}
		return ""
	}
}

// PastDate fails when a non-empty date does not parse or lies after today.
func PastDate() Check {
	return func(v form.Value, present bool, now time.Time) string {
		if !present || v.IsEmpty() {
			return ""
		}
		d, ok := v.Date()
		if !ok {
			return "Enter a valid date (YYYY-MM-DD)"
		}
		if d.After(today(now)) {
			return "Date cannot be in the future"
		}
		return ""
	}
}

// FutureDate fails when a non-empty date does not parse or lies before today.
func FutureDate() Check {
	return func(v form.Value, present bool, now time.Time) string {
		if !present || v.IsEmpty() {
			return ""
		}
		d, ok := v.Date()
		if !ok {
			return "Enter a valid date (YYYY-MM-DD)"
		}
		if d.Before(today(now)) {
			return "Date cannot be in the past"
		}
		return ""
	}
}

// OneOf fails when a non-empty value is not one of options.
func OneOf(options ...string) Check {
	return func(v form.Value, present bool, _ time.Time) string {
		if !present || v.IsEmpty() {
			return ""
		}
		for _, o := range options {
			if v.Str() == o {
				return ""
			}
		}
		return "Choose one of: " + strings.Join(options, ", ")
	}
}

// NonNegative fails when a number is below zero.
func NonNegative() Check {
	return func(v form.Value, present bool, _ time.Time) string {
		if present && v.Num() < 0 {
			return "Must be zero or more"
		}
		return ""
	}
}

// WholeNumber fails when a number has a fractional part.
func WholeNumber() Check {
	return func(v form.Value, present bool, _ time.Time) string {
		if present && v.Num() != math.Trunc(v.Num()) {
			return "Must be a whole number"
		}
		return ""
	}
}

// Answered fails when a boolean question has never been answered.
func Answered(reason string) Check {
	return func(_ form.Value, present bool, _ time.Time) string {
		if !present {
			return reason
		}
		return ""
	}
}

// Checked fails unless an agreement box is ticked.
func Checked(reason string) Check {
	return func(v form.Value, present bool, _ time.Time) string {
		if !present || !v.Bool() {
			return reason
		}
		return ""
	}
}

// ProductNeedsTobacco applies a rule only when the selected product asks
// about tobacco use.
func ProductNeedsTobacco(s form.Store) bool {
	p, err := product.Parse(s.String(form.InsuranceType))
	return err == nil && p.RequiresTobacco()
}

// CountDigits returns the number of ASCII digits in s.
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
