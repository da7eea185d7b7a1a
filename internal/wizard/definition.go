package wizard

import (
	"fmt"

	"github.com/mark3labs/leadwizard/internal/form"
	"github.com/mark3labs/leadwizard/internal/product"
	"github.com/mark3labs/leadwizard/internal/validate"
)

// Purpose names the kind of lead a wizard collects. Each purpose posts to its
// own endpoint.
type Purpose string

const (
	PurposeQuote    Purpose = "quote"
	PurposeSchedule Purpose = "schedule"
	PurposeJoin     Purpose = "join"
	PurposeContact  Purpose = "contact"
)

// Option lists for choice fields.
var (
	Genders           = []string{"female", "male", "non-binary", "prefer-not-to-say"}
	MaritalStatuses   = []string{"single", "married", "domestic-partner", "divorced", "widowed"}
	ContactMethods    = []string{"phone", "email", "text"}
	AppointmentBlocks = []string{"morning", "afternoon", "evening"}
)

// FieldSpec describes how a field is presented on a step.
type FieldSpec struct {
	Name      string
	Label     string
	Kind      form.Kind
	Options   []string // choice fields
	Multiline bool
	Agreement bool // rendered as a checkbox
	Help      string
}

// Step is one screen of a wizard.
type Step struct {
	ID     int
	Title  string
	Fields []FieldSpec
}

// Definition fully describes one wizard variant.
type Definition struct {
	Purpose      Purpose
	Title        string
	Endpoint     string
	Steps        []Step
	Rules        validate.Table
	Initial      map[string]form.Value
	Estimate     bool // attach the premium estimate to the payload
	Confirmation string
}

// Len returns the step count N.
func (d Definition) Len() int {
	return len(d.Steps)
}

// Step returns the step with the given id.
func (d Definition) Step(id int) (Step, bool) {
	if id < 1 || id > len(d.Steps) {
		return Step{}, false
	}
	return d.Steps[id-1], true
}

// PayloadFields returns every field shown by the wizard, in step order.
func (d Definition) PayloadFields() []string {
	var names []string
	for _, st := range d.Steps {
		for _, f := range st.Fields {
			names = append(names, f.Name)
		}
	}
	return names
}

// Check verifies that step ids are contiguous from 1 and that every field
// and rule refers to a schema field of the right kind.
func (d Definition) Check(schema form.Schema) error {
	if len(d.Steps) == 0 {
		return fmt.Errorf("wizard %s has no steps", d.Purpose)
	}
	for i, st := range d.Steps {
		if st.ID != i+1 {
			return fmt.Errorf("wizard %s: step %d has id %d", d.Purpose, i+1, st.ID)
		}
		for _, f := range st.Fields {
			kind, ok := schema[f.Name]
			if !ok {
				return fmt.Errorf("wizard %s: step %d: %w: %s", d.Purpose, st.ID, form.ErrUnknownField, f.Name)
			}
			if kind != f.Kind {
				return fmt.Errorf("wizard %s: step %d: %w: %s", d.Purpose, st.ID, form.ErrKindMismatch, f.Name)
			}
		}
	}
	if n := d.Rules.Steps(); n > len(d.Steps) {
		return fmt.Errorf("wizard %s: rules reference step %d of %d", d.Purpose, n, len(d.Steps))
	}
	return nil
}

var contactFields = []FieldSpec{
	{Name: form.FirstName, Label: "First name", Kind: form.KindString},
	{Name: form.LastName, Label: "Last name", Kind: form.KindString},
	{Name: form.Email, Label: "Email", Kind: form.KindString},
	{Name: form.Phone, Label: "Phone", Kind: form.KindString},
}

func contactRules(step int, phoneRequired bool) validate.Table {
	t := validate.Table{
		{Step: step, Field: form.FirstName, Check: validate.Required("First name is required")},
		{Step: step, Field: form.LastName, Check: validate.Required("Last name is required")},
		{Step: step, Field: form.Email, Check: validate.Required("Email is required")},
		{Step: step, Field: form.Email, Check: validate.Email()},
	}
	if phoneRequired {
		t = append(t, validate.Rule{Step: step, Field: form.Phone, Check: validate.Required("Phone is required")})
	}
	return append(t, validate.Rule{Step: step, Field: form.Phone, Check: validate.Phone()})
}

var termsField = FieldSpec{Name: form.AgreeTerms, Label: "I agree to the terms and privacy policy", Kind: form.KindBool, Agreement: true}

func termsRule(step int) validate.Rule {
	return validate.Rule{Step: step, Field: form.AgreeTerms, Check: validate.Checked("You must accept the terms to continue")}
}

// Quote is the five-step quote request wizard.
func Quote() Definition {
	rules := contactRules(1, true)
	rules = append(rules,
		validate.Rule{Step: 1, Field: form.DateOfBirth, Check: validate.Required("Date of birth is required")},
		validate.Rule{Step: 1, Field: form.DateOfBirth, Check: validate.PastDate()},

		validate.Rule{Step: 2, Field: form.InsuranceType, Check: validate.Required("Choose a type of insurance")},
		validate.Rule{Step: 2, Field: form.InsuranceType, Check: validate.OneOf(product.Names()...)},
		validate.Rule{Step: 2, Field: form.ZipCode, Check: validate.Required("ZIP code is required")},
		validate.Rule{Step: 2, Field: form.ZipCode, Check: validate.ZipCode()},

		validate.Rule{Step: 3, Field: form.Gender, Check: validate.OneOf(Genders...)},
		validate.Rule{Step: 3, Field: form.MaritalStatus, Check: validate.OneOf(MaritalStatuses...)},
		validate.Rule{Step: 3, Field: form.Dependents, Check: validate.NonNegative()},
		validate.Rule{Step: 3, Field: form.Dependents, Check: validate.WholeNumber()},
		validate.Rule{Step: 3, Field: form.Smoker, Check: validate.Answered("Tell us whether you use tobacco"), When: validate.ProductNeedsTobacco},

		validate.Rule{Step: 4, Field: form.PreferredContact, Check: validate.Required("Choose how we should reach you")},
		validate.Rule{Step: 4, Field: form.PreferredContact, Check: validate.OneOf(ContactMethods...)},

		termsRule(5),
		validate.Rule{Step: 5, Field: form.AgreeContact, Check: validate.Checked("We need your consent to contact you")},
	)

	return Definition{
		Purpose:  PurposeQuote,
		Title:    "Get a Quote",
		Endpoint: "/api/quote",
		Steps: []Step{
			{ID: 1, Title: "About You", Fields: append(append([]FieldSpec{}, contactFields...),
				FieldSpec{Name: form.DateOfBirth, Label: "Date of birth", Kind: form.KindDate, Help: "YYYY-MM-DD"})},
			{ID: 2, Title: "Coverage", Fields: []FieldSpec{
				{Name: form.InsuranceType, Label: "Type of insurance", Kind: form.KindString, Options: product.Names()},
				{Name: form.ZipCode, Label: "ZIP code", Kind: form.KindString},
			}},
			{ID: 3, Title: "Household", Fields: []FieldSpec{
				{Name: form.Gender, Label: "Gender", Kind: form.KindString, Options: Genders},
				{Name: form.MaritalStatus, Label: "Marital status", Kind: form.KindString, Options: MaritalStatuses},
				{Name: form.Dependents, Label: "Dependents", Kind: form.KindNumber},
				{Name: form.Smoker, Label: "Tobacco use", Kind: form.KindBool},
			}},
			{ID: 4, Title: "Your Estimate", Fields: []FieldSpec{
				{Name: form.PreferredContact, Label: "Preferred contact", Kind: form.KindString, Options: ContactMethods},
				{Name: form.Message, Label: "Anything else we should know?", Kind: form.KindString, Multiline: true},
			}},
			{ID: 5, Title: "Confirm", Fields: []FieldSpec{
				termsField,
				{Name: form.AgreeContact, Label: "I agree to be contacted by a licensed advisor", Kind: form.KindBool, Agreement: true},
			}},
		},
		Rules:        rules,
		Initial:      map[string]form.Value{form.Dependents: form.Int(0)},
		Estimate:     true,
		Confirmation: "Thanks! A licensed advisor will reach out with your quote shortly.",
	}
}

// Schedule books a consultation with an advisor.
func Schedule() Definition {
	rules := contactRules(1, true)
	rules = append(rules,
		validate.Rule{Step: 2, Field: form.InsuranceType, Check: validate.Required("Choose a type of insurance")},
		validate.Rule{Step: 2, Field: form.InsuranceType, Check: validate.OneOf(product.Names()...)},
		validate.Rule{Step: 2, Field: form.PreferredDate, Check: validate.Required("Pick a date")},
		validate.Rule{Step: 2, Field: form.PreferredDate, Check: validate.FutureDate()},
		validate.Rule{Step: 2, Field: form.PreferredTime, Check: validate.Required("Pick a time of day")},
		validate.Rule{Step: 2, Field: form.PreferredTime, Check: validate.OneOf(AppointmentBlocks...)},
		termsRule(3),
	)

	return Definition{
		Purpose:  PurposeSchedule,
		Title:    "Schedule a Consultation",
		Endpoint: "/api/schedule",
		Steps: []Step{
			{ID: 1, Title: "About You", Fields: append([]FieldSpec{}, contactFields...)},
			{ID: 2, Title: "Appointment", Fields: []FieldSpec{
				{Name: form.InsuranceType, Label: "Topic", Kind: form.KindString, Options: product.Names()},
				{Name: form.PreferredDate, Label: "Preferred date", Kind: form.KindDate, Help: "YYYY-MM-DD"},
				{Name: form.PreferredTime, Label: "Preferred time", Kind: form.KindString, Options: AppointmentBlocks},
			}},
			{ID: 3, Title: "Confirm", Fields: []FieldSpec{
				{Name: form.Message, Label: "Notes for your advisor", Kind: form.KindString, Multiline: true},
				termsField,
			}},
		},
		Rules:        rules,
		Confirmation: "You're booked! We'll confirm your appointment by email.",
	}
}

// Join is the agent recruitment wizard.
func Join() Definition {
	rules := contactRules(1, true)
	rules = append(rules,
		validate.Rule{Step: 2, Field: form.Licensed, Check: validate.Answered("Tell us whether you are licensed")},
		validate.Rule{Step: 2, Field: form.YearsExperience, Check: validate.NonNegative()},
		validate.Rule{Step: 2, Field: form.YearsExperience, Check: validate.WholeNumber()},
		validate.Rule{Step: 2, Field: form.ZipCode, Check: validate.Required("ZIP code is required")},
		validate.Rule{Step: 2, Field: form.ZipCode, Check: validate.ZipCode()},
		termsRule(3),
	)

	return Definition{
		Purpose:  PurposeJoin,
		Title:    "Join Our Team",
		Endpoint: "/api/join",
		Steps: []Step{
			{ID: 1, Title: "About You", Fields: append([]FieldSpec{}, contactFields...)},
			{ID: 2, Title: "Experience", Fields: []FieldSpec{
				{Name: form.Licensed, Label: "Licensed to sell insurance", Kind: form.KindBool},
				{Name: form.YearsExperience, Label: "Years of experience", Kind: form.KindNumber},
				{Name: form.ZipCode, Label: "ZIP code", Kind: form.KindString},
			}},
			{ID: 3, Title: "Confirm", Fields: []FieldSpec{
				{Name: form.Message, Label: "Tell us about yourself", Kind: form.KindString, Multiline: true},
				termsField,
			}},
		},
		Rules:        rules,
		Initial:      map[string]form.Value{form.YearsExperience: form.Int(0)},
		Confirmation: "Thanks for your interest! Our recruiting team will be in touch.",
	}
}

// Contact is the general enquiry form.
func Contact() Definition {
	rules := contactRules(1, false)
	rules = append(rules,
		validate.Rule{Step: 2, Field: form.Subject, Check: validate.Required("Subject is required")},
		validate.Rule{Step: 2, Field: form.Message, Check: validate.Required("Message is required")},
		termsRule(2),
	)

	return Definition{
		Purpose:  PurposeContact,
		Title:    "Contact Us",
		Endpoint: "/api/contact",
		Steps: []Step{
			{ID: 1, Title: "About You", Fields: append([]FieldSpec{}, contactFields...)},
			{ID: 2, Title: "Your Message", Fields: []FieldSpec{
				{Name: form.Subject, Label: "Subject", Kind: form.KindString},
				{Name: form.Message, Label: "Message", Kind: form.KindString, Multiline: true},
				termsField,
			}},
		},
		Rules:        rules,
		Confirmation: "Message sent! We usually reply within one business day.",
	}
}

// Lookup returns the definition for a purpose.
func Lookup(p Purpose) (Definition, error) {
	switch p {
	case PurposeQuote:
		return Quote(), nil
	case PurposeSchedule:
		return Schedule(), nil
	case PurposeJoin:
		return Join(), nil
	case PurposeContact:
		return Contact(), nil
	default:
		return Definition{}, fmt.Errorf("unknown wizard %q", p)
	}
}

// Purposes lists every wizard purpose.
func Purposes() []Purpose {
	return []Purpose{PurposeQuote, PurposeSchedule, PurposeJoin, PurposeContact}
}
