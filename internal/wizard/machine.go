package wizard

import (
	"html"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/mark3labs/leadwizard/internal/form"
	"github.com/mark3labs/leadwizard/internal/pricing"
	"github.com/mark3labs/leadwizard/internal/product"
	"github.com/mark3labs/leadwizard/internal/submit"
	"github.com/mark3labs/leadwizard/internal/validate"
	"github.com/microcosm-cc/bluemonday"
)

// InvalidValue is the reason recorded for an edit the store rejected. It
// blocks the step until the field is edited again.
const InvalidValue = "Invalid value"

// DefaultResetDelay is how long the confirmation stays up before the wizard
// starts over.
const DefaultResetDelay = 4 * time.Second

// Machine applies actions to wizard state for one Definition.
type Machine struct {
	def        Definition
	schema     form.Schema
	table      pricing.Table
	now        func() time.Time
	resetDelay time.Duration
	language   string
	agentSlug  string
	agentName  string
	policy     *bluemonday.Policy
}

// Option configures a Machine.
type Option func(*Machine)

// WithPricing replaces the estimate table.
func WithPricing(t pricing.Table) Option {
	return func(m *Machine) { m.table = t }
}

// WithClock replaces time.Now for date validation.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithResetDelay sets the delay between success and reset.
func WithResetDelay(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.resetDelay = d
		}
	}
}

// WithLanguage sets the language sent with every lead.
func WithLanguage(lang string) Option {
	return func(m *Machine) {
		if lang != "" {
			m.language = lang
		}
	}
}

// WithAgent attributes leads to an agent micro-site.
func WithAgent(name string) Option {
	return func(m *Machine) {
		name = strings.TrimSpace(name)
		m.agentName = name
		if name != "" {
			m.agentSlug = slug.Make(name)
		}
	}
}

// New creates a machine after checking the definition.
func New(def Definition, opts ...Option) (*Machine, error) {
	m := &Machine{
		def:        def,
		schema:     form.DefaultSchema(),
		table:      pricing.DefaultTable(),
		now:        time.Now,
		resetDelay: DefaultResetDelay,
		language:   "en",
		policy:     bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := def.Check(m.schema); err != nil {
		return nil, err
	}
	if _, err := m.initialStore(); err != nil {
		return nil, err
	}
	return m, nil
}

// Definition returns the wizard definition.
func (m *Machine) Definition() Definition { return m.def }

// AgentSlug returns the micro-site slug, or "".
func (m *Machine) AgentSlug() string { return m.agentSlug }

// AgentName returns the micro-site agent's display name, or "".
func (m *Machine) AgentName() string { return m.agentName }

// ResetDelay returns the configured post-success delay.
func (m *Machine) ResetDelay() time.Duration { return m.resetDelay }

func (m *Machine) initialStore() (form.Store, error) {
	initial := make(map[string]form.Value, len(m.def.Initial)+1)
	for k, v := range m.def.Initial {
		initial[k] = v
	}
	initial[form.Language] = form.String(m.language)
	return form.NewStore(m.schema, initial)
}

// Init returns the state of a freshly mounted wizard.
func (m *Machine) Init() State {
	store, _ := m.initialStore()
	return State{Step: 1, Fields: store, Status: StatusIdle}
}

// Apply returns the state after a, plus any effect the caller must run.
func (m *Machine) Apply(s State, a Action) (State, Effect) {
	switch a := a.(type) {
	case SetField:
		return m.setField(s, a.Name, a.Value), nil

	case Advance:
		if s.Status == StatusSubmitting {
			return s, nil
		}
		errs := m.Validate(s)
		if len(errs) > 0 {
			s.Errors = errs
			return s, nil
		}
		s.Errors = nil
		s.Step = m.clamp(s.Step + 1)
		return s, nil

	case Retreat:
		if s.Status == StatusSubmitting {
			return s, nil
		}
		s.Errors = nil
		s.Step = m.clamp(s.Step - 1)
		return s, nil

	case JumpTo:
		if s.Status == StatusSubmitting {
			return s, nil
		}
		if a.Field != "" {
			s = m.setField(s, a.Field, a.Value)
		}
		s.Errors = nil
		s.Step = m.clamp(a.Step)
		return s, nil

	case Captcha:
		s.Captcha = s.Captcha.Apply(a.Event)
		return s, nil

	case Submit:
		if !m.CanSubmit(s) {
			return s, nil
		}
		if step, errs := m.firstInvalidStep(s); step != 0 {
			s.Step = step
			s.Errors = errs
			return s, nil
		}
		token, _ := s.Captcha.Token()
		s.Attempt++
		s.Status = StatusSubmitting
		s.Notice = ""
		s.Errors = nil
		s.Captcha = s.Captcha.Consume()
		return s, SendEffect{Attempt: s.Attempt, Path: m.def.Endpoint, Payload: m.Payload(s, token)}

	case SubmitDone:
		if s.Status != StatusSubmitting || a.Attempt != s.Attempt {
			return s, nil
		}
		if a.Err != nil {
			s.Status = StatusError
			s.Notice = submit.GenericMessage
			return s, nil
		}
		s.Status = StatusSuccess
		s.Notice = m.def.Confirmation
		return s, ResetEffect{Attempt: s.Attempt, Delay: m.resetDelay}

	case ResetElapsed:
		if s.Status != StatusSuccess || a.Attempt != s.Attempt {
			return s, nil
		}
		next := m.Init()
		next.Attempt = s.Attempt
		return next, nil

	case Retry:
		if s.Status == StatusError {
			s.Status = StatusIdle
			s.Notice = ""
		}
		return s, nil
	}
	return s, nil
}

func (m *Machine) setField(s State, name string, v form.Value) State {
	next, err := s.Fields.With(name, v)
	if err != nil {
		s.Errors = withError(s.Errors, name, InvalidValue)
		return s
	}
	s.Fields = next
	s.Errors = withoutError(s.Errors, name)
	return s
}

// Validate runs the rule table for the current step. Rejected edits still
// pending on the step's fields are reported too.
func (m *Machine) Validate(s State) validate.Errors {
	errs := m.def.Rules.Validate(s.Step, s.Fields, m.now())
	step, ok := m.def.Step(s.Step)
	if !ok {
		return errs
	}
	for _, f := range step.Fields {
		if s.Errors[f.Name] == InvalidValue {
			if errs == nil {
				errs = validate.Errors{}
			}
			errs[f.Name] = InvalidValue
		}
	}
	return errs
}

// firstInvalidStep validates every step in order and returns the first one
// that fails with its errors, or 0 when all pass.
func (m *Machine) firstInvalidStep(s State) (int, validate.Errors) {
	for id := 1; id <= m.def.Len(); id++ {
		at := s
		at.Step = id
		if id != s.Step {
			at.Errors = nil
		}
		if errs := m.Validate(at); len(errs) > 0 {
			return id, errs
		}
	}
	return 0, nil
}

// IsFinal reports whether s is on the last step.
func (m *Machine) IsFinal(s State) bool {
	return s.Step == m.def.Len()
}

// CanSubmit reports whether the submit control is enabled: final step, no
// call outstanding or just succeeded, and a valid captcha token.
func (m *Machine) CanSubmit(s State) bool {
	return len(m.SubmitBlockers(s)) == 0
}

// SubmitBlockers explains why the submit control is disabled.
func (m *Machine) SubmitBlockers(s State) []string {
	var out []string
	if !m.IsFinal(s) {
		out = append(out, "Complete the remaining steps")
	}
	switch s.Status {
	case StatusSubmitting:
		out = append(out, "Submission in progress")
	case StatusSuccess:
		out = append(out, "Already submitted")
	}
	if !s.Captcha.Open() {
		out = append(out, "Complete the verification challenge")
	}
	return out
}

// Estimate returns the premium estimate for the current answers. ok is
// false until an insurance type has been chosen.
func (m *Machine) Estimate(s State) (amount int, ok bool) {
	p, err := product.Parse(s.Fields.String(form.InsuranceType))
	if err != nil {
		return 0, false
	}
	amount, err = m.table.Estimate(p, s.Fields.Bool(form.Smoker), int(s.Fields.Number(form.Dependents)))
	if err != nil {
		return 0, false
	}
	return amount, true
}

// Payload builds the request body for s with the given captcha token.
func (m *Machine) Payload(s State, token string) submit.Payload {
	p := submit.Payload(s.Fields.Map(m.def.PayloadFields()...))
	for name, raw := range p {
		v, ok := raw.(string)
		if !ok {
			continue
		}
		switch name {
		case form.Message, form.Subject, form.FirstName, form.LastName:
			p[name] = m.sanitize(v)
		default:
			p[name] = strings.TrimSpace(v)
		}
	}
	if m.def.Estimate {
		if amount, ok := m.Estimate(s); ok {
			p["estimate"] = amount
		}
	}
	p[form.Language] = s.Fields.String(form.Language)
	p["captchaToken"] = token
	p["source"] = string(m.def.Purpose)
	if m.agentSlug != "" {
		p["agentSlug"] = m.agentSlug
	}
	return p
}

func (m *Machine) sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(m.policy.Sanitize(s)))
}

func (m *Machine) clamp(step int) int {
	if step < 1 {
		return 1
	}
	if n := m.def.Len(); step > n {
		return n
	}
	return step
}

func withError(errs map[string]string, field, reason string) map[string]string {
	next := make(map[string]string, len(errs)+1)
	for k, v := range errs {
		next[k] = v
	}
	next[field] = reason
	return next
}

func withoutError(errs map[string]string, field string) map[string]string {
	if _, ok := errs[field]; !ok {
		return errs
	}
	next := make(map[string]string, len(errs))
	for k, v := range errs {
		if k != field {
			next[k] = v
		}
	}
	return next
}
