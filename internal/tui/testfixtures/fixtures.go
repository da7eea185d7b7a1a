package testfixtures

import (
	"time"

	"github.com/mark3labs/leadwizard/internal/form"
	"github.com/mark3labs/leadwizard/internal/wizard"
)

// Fixed test values for stable assertions
const (
	FixedToken = "captcha-token-123"
)

var (
	FixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
)

// Clock returns FixedNow.
func Clock() time.Time { return FixedNow }

// Contact returns valid answers for the shared contact fields.
func Contact() map[string]form.Value {
	return map[string]form.Value{
		form.FirstName: form.String("Ada"),
		form.LastName:  form.String("Lovelace"),
		form.Email:     form.String("ada@example.com"),
		form.Phone:     form.String("(555) 123-4567"),
	}
}

// Answers returns values that pass every step of the wizard for p.
func Answers(p wizard.Purpose) map[string]form.Value {
	out := Contact()
	switch p {
	case wizard.PurposeQuote:
		out[form.DateOfBirth] = form.Date(time.Date(1985, 3, 14, 0, 0, 0, 0, time.UTC))
		out[form.InsuranceType] = form.String("life")
		out[form.ZipCode] = form.String("30301")
		out[form.Dependents] = form.Int(2)
		out[form.Smoker] = form.Bool(true)
		out[form.PreferredContact] = form.String("email")
		out[form.AgreeTerms] = form.Bool(true)
		out[form.AgreeContact] = form.Bool(true)
	case wizard.PurposeSchedule:
		out[form.InsuranceType] = form.String("auto")
		out[form.PreferredDate] = form.Date(FixedNow.AddDate(0, 0, 7))
		out[form.PreferredTime] = form.String("morning")
		out[form.AgreeTerms] = form.Bool(true)
	case wizard.PurposeJoin:
		out[form.Licensed] = form.Bool(true)
		out[form.YearsExperience] = form.Int(5)
		out[form.ZipCode] = form.String("30301")
		out[form.AgreeTerms] = form.Bool(true)
	case wizard.PurposeContact:
		out[form.Subject] = form.String("Policy question")
		out[form.Message] = form.String("Can I add my spouse?")
		out[form.AgreeTerms] = form.Bool(true)
	}
	return out
}

// AnswersForStep returns the subset of Answers(def.Purpose) shown on step.
func AnswersForStep(def wizard.Definition, step int) map[string]form.Value {
	all := Answers(def.Purpose)
	s, ok := def.Step(step)
	if !ok {
		return nil
	}
	out := make(map[string]form.Value, len(s.Fields))
	for _, f := range s.Fields {
		if v, ok := all[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out
}
