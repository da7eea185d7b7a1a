package wizard

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/leadwizard/internal/captcha"
	"github.com/mark3labs/leadwizard/internal/form"
	"github.com/mark3labs/leadwizard/internal/submit"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newQuoteMachine(t *testing.T, opts ...Option) *Machine {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	m, err := New(Quote(), opts...)
	require.NoError(t, err)
	return m
}

func apply(t *testing.T, m *Machine, s State, actions ...Action) State {
	t.Helper()
	for _, a := range actions {
		var eff Effect
		s, eff = m.Apply(s, a)
		require.Nil(t, eff, "unexpected effect for %T", a)
	}
	return s
}

func set(name string, v form.Value) SetField { return SetField{Name: name, Value: v} }

func validContact() []Action {
	return []Action{
		set(form.FirstName, form.String("Ada")),
		set(form.LastName, form.String("Lovelace")),
		set(form.Email, form.String("ada@example.com")),
		set(form.Phone, form.String("(555) 010-1234")),
		set(form.DateOfBirth, form.DateText("1985-12-10")),
	}
}

// quoteAtFinalStep walks a quote wizard to step 5 with every field valid.
func quoteAtFinalStep(t *testing.T, m *Machine) State {
	t.Helper()
	s := apply(t, m, m.Init(), validContact()...)
	s = apply(t, m, s,
		Advance{},
		set(form.InsuranceType, form.String("health")),
		set(form.ZipCode, form.String("30301")),
		Advance{},
		set(form.Smoker, form.Bool(true)),
		set(form.Dependents, form.Int(2)),
		Advance{},
		set(form.PreferredContact, form.String("email")),
		Advance{},
		set(form.AgreeTerms, form.Bool(true)),
		set(form.AgreeContact, form.Bool(true)),
	)
	require.Equal(t, 5, s.Step)
	require.Empty(t, s.Errors)
	return s
}

func TestAdvance_InvalidStepKeepsIndex(t *testing.T) {
	m := newQuoteMachine(t)
	for step := 1; step <= m.Definition().Len(); step++ {
		s := m.Init()
		s.Step = step
		if len(m.Validate(s)) == 0 {
			continue // step 3 has no unconditional requirements
		}
		next := apply(t, m, s, Advance{})
		require.Equal(t, step, next.Step, "step %d", step)
		require.NotEmpty(t, next.Errors)
	}
}

func TestAdvance_ValidStepOneIncrementsByOne(t *testing.T) {
	m := newQuoteMachine(t)
	s := apply(t, m, m.Init(), validContact()...)
	s = apply(t, m, s, Advance{})
	require.Equal(t, 2, s.Step)
	require.Empty(t, s.Errors)
}

func TestAdvance_TodayIsValidDateOfBirth(t *testing.T) {
	m := newQuoteMachine(t)
	s := apply(t, m, m.Init(), validContact()...)
	s = apply(t, m, s, set(form.DateOfBirth, form.DateText("2026-10-19")), Advance{})
	require.Equal(t, 2, s.Step)
}

func TestAdvance_ReportsAllErrorsAtOnce(t *testing.T) {
	m := newQuoteMachine(t)
	s := apply(t, m, m.Init(),
		set(form.Email, form.String("nope")),
		set(form.Phone, form.String("12345")),
		set(form.DateOfBirth, form.DateText("2030-01-01")),
		Advance{},
	)
	require.Equal(t, []string{form.DateOfBirth, form.Email, form.FirstName, form.LastName, form.Phone}, s.Errors.Fields())
}

func TestAdvance_ClampsAtFinalStep(t *testing.T) {
	m := newQuoteMachine(t)
	s := quoteAtFinalStep(t, m)
	s = apply(t, m, s, Advance{})
	require.Equal(t, 5, s.Step)
}

func TestRetreat_NeverValidatesAndClamps(t *testing.T) {
	m := newQuoteMachine(t)
	s := m.Init()
	s = apply(t, m, s, Retreat{})
	require.Equal(t, 1, s.Step)

	s.Step = 3
	s = apply(t, m, s, Retreat{})
	require.Equal(t, 2, s.Step)
	require.Empty(t, s.Errors)
}

func TestRetreatThenAdvance_IsIdempotent(t *testing.T) {
	m := newQuoteMachine(t)
	s := apply(t, m, m.Init(), validContact()...)
	s = apply(t, m, s, Advance{}, set(form.InsuranceType, form.String("auto")), set(form.ZipCode, form.String("10001")), Advance{})
	require.Equal(t, 3, s.Step)

	before := s.Fields
	s = apply(t, m, s, Retreat{}, Advance{})
	require.Equal(t, 3, s.Step)
	require.True(t, before.Equal(s.Fields))
}

func TestScenario_SelectLifeOnStepTwo(t *testing.T) {
	m := newQuoteMachine(t)
	s := apply(t, m, m.Init(), validContact()...)
	s = apply(t, m, s, Advance{})
	require.Equal(t, 2, s.Step)

	s = apply(t, m, s,
		set(form.InsuranceType, form.String("life")),
		set(form.ZipCode, form.String("73301")),
		Advance{},
	)
	require.Equal(t, 3, s.Step)
	require.Equal(t, "life", s.Fields.String(form.InsuranceType))
}

func TestTobaccoRequiredOnlyForHealthAndLife(t *testing.T) {
	m := newQuoteMachine(t)
	s := m.Init()
	s.Step = 3

	s = apply(t, m, s, set(form.InsuranceType, form.String("life")), Advance{})
	require.Equal(t, 3, s.Step)
	require.Contains(t, s.Errors, form.Smoker)

	s = apply(t, m, s, set(form.InsuranceType, form.String("home")), Advance{})
	require.Equal(t, 4, s.Step)
}

func TestJumpTo_PrefillsWithoutBypassingValidation(t *testing.T) {
	m := newQuoteMachine(t)
	s := apply(t, m, m.Init(), JumpTo{Step: 2, Field: form.InsuranceType, Value: form.String("auto")})
	require.Equal(t, 2, s.Step)
	require.Equal(t, "auto", s.Fields.String(form.InsuranceType))

	// ZIP is still required before leaving step 2
	s = apply(t, m, s, Advance{})
	require.Equal(t, 2, s.Step)
	require.Contains(t, s.Errors, form.ZipCode)

	s = apply(t, m, s, JumpTo{Step: 99})
	require.Equal(t, 5, s.Step)
}

func TestSetField_KindMismatchIsFieldError(t *testing.T) {
	m := newQuoteMachine(t)
	s := apply(t, m, m.Init(), set(form.Dependents, form.String("two")))
	require.Equal(t, "Invalid value", s.Errors[form.Dependents])
	require.Equal(t, form.KindNumber, mustGet(t, s.Fields, form.Dependents).Kind())

	s = apply(t, m, s, set(form.Dependents, form.Int(2)))
	require.NotContains(t, s.Errors, form.Dependents)
}

func mustGet(t *testing.T, s form.Store, name string) form.Value {
	t.Helper()
	v, ok := s.Get(name)
	require.True(t, ok)
	return v
}

func TestSubmit_BlockedWithoutCaptcha(t *testing.T) {
	m := newQuoteMachine(t)
	s := quoteAtFinalStep(t, m)

	require.False(t, m.CanSubmit(s))
	next, eff := m.Apply(s, Submit{})
	require.Nil(t, eff, "no network call without a token")
	require.Equal(t, StatusIdle, next.Status)

	// An expired token blocks just the same
	s = apply(t, m, s, Captcha{Event: captcha.Verified("tok")}, Captcha{Event: captcha.Expired()})
	_, eff = m.Apply(s, Submit{})
	require.Nil(t, eff)
	require.Contains(t, m.SubmitBlockers(s), "Complete the verification challenge")
}

func TestSubmit_BlockedBeforeFinalStep(t *testing.T) {
	m := newQuoteMachine(t)
	s := apply(t, m, m.Init(), Captcha{Event: captcha.Verified("tok")})
	_, eff := m.Apply(s, Submit{})
	require.Nil(t, eff)
}

func TestSubmit_RequiresAgreements(t *testing.T) {
	m := newQuoteMachine(t)
	s := quoteAtFinalStep(t, m)
	s = apply(t, m, s, set(form.AgreeContact, form.Bool(false)), Captcha{Event: captcha.Verified("tok")})

	require.True(t, m.CanSubmit(s))
	next, eff := m.Apply(s, Submit{})
	require.Nil(t, eff)
	require.Contains(t, next.Errors, form.AgreeContact)
	require.Equal(t, StatusIdle, next.Status)
}

func TestSubmit_SuccessResetsAfterDelay(t *testing.T) {
	m := newQuoteMachine(t, WithResetDelay(3*time.Second))
	s := quoteAtFinalStep(t, m)
	s = apply(t, m, s, Captcha{Event: captcha.Verified("tok-123")})

	s, eff := m.Apply(s, Submit{})
	send, ok := eff.(SendEffect)
	require.True(t, ok, "expected SendEffect, got %T", eff)
	require.Equal(t, "/api/quote", send.Path)
	require.Equal(t, StatusSubmitting, s.Status)
	require.False(t, m.CanSubmit(s), "submit disabled while outstanding")

	// A second click while outstanding does nothing
	_, dup := m.Apply(s, Submit{})
	require.Nil(t, dup)

	s, eff = m.Apply(s, SubmitDone{Attempt: send.Attempt})
	reset, ok := eff.(ResetEffect)
	require.True(t, ok, "expected ResetEffect, got %T", eff)
	require.Equal(t, 3*time.Second, reset.Delay)
	require.Equal(t, StatusSuccess, s.Status)
	require.Equal(t, Quote().Confirmation, s.Notice)

	// Before the delay elapses nothing is reset
	require.Equal(t, 5, s.Step)
	require.Equal(t, "Ada", s.Fields.String(form.FirstName))

	// A stale timer from an older attempt is ignored
	stale := apply(t, m, s, ResetElapsed{Attempt: reset.Attempt - 1})
	require.Equal(t, StatusSuccess, stale.Status)

	s = apply(t, m, s, ResetElapsed{Attempt: reset.Attempt})
	require.Equal(t, 1, s.Step)
	require.Equal(t, StatusIdle, s.Status)
	require.True(t, m.Init().Fields.Equal(s.Fields))
	require.False(t, s.Captcha.Open())
}

func TestSubmit_ErrorKeepsFieldsAndRequiresNewToken(t *testing.T) {
	m := newQuoteMachine(t)
	s := quoteAtFinalStep(t, m)
	s = apply(t, m, s, Captcha{Event: captcha.Verified("tok")})
	fields := s.Fields

	s, eff := m.Apply(s, Submit{})
	send := eff.(SendEffect)
	s = apply(t, m, s, SubmitDone{Attempt: send.Attempt, Err: errors.New("boom")})

	require.Equal(t, StatusError, s.Status)
	require.Equal(t, submit.GenericMessage, s.Notice)
	require.Equal(t, 5, s.Step)
	require.True(t, fields.Equal(s.Fields))
	require.False(t, s.Captcha.Open(), "token must be re-verified")

	_, eff = m.Apply(s, Submit{})
	require.Nil(t, eff)

	s = apply(t, m, s, Captcha{Event: captcha.Verified("tok-2")})
	s, eff = m.Apply(s, Submit{})
	retry, ok := eff.(SendEffect)
	require.True(t, ok)
	require.Equal(t, send.Attempt+1, retry.Attempt)
	require.Equal(t, "tok-2", retry.Payload["captchaToken"])
	require.Equal(t, StatusSubmitting, s.Status)
}

func TestRetry_ClearsError(t *testing.T) {
	m := newQuoteMachine(t)
	s := m.Init()
	s.Status = StatusError
	s.Notice = submit.GenericMessage
	s = apply(t, m, s, Retry{})
	require.Equal(t, StatusIdle, s.Status)
	require.Empty(t, s.Notice)
}

func TestSubmitDone_StaleResultDiscarded(t *testing.T) {
	m := newQuoteMachine(t)
	s := m.Init()
	s = apply(t, m, s, SubmitDone{Attempt: 7})
	require.Equal(t, StatusIdle, s.Status)
}

func TestNavigationIgnoredWhileSubmitting(t *testing.T) {
	m := newQuoteMachine(t)
	s := quoteAtFinalStep(t, m)
	s.Status = StatusSubmitting
	s = apply(t, m, s, Retreat{}, JumpTo{Step: 1}, Advance{})
	require.Equal(t, 5, s.Step)
}

func TestPayload(t *testing.T) {
	m := newQuoteMachine(t, WithAgent("Jane Doe"), WithLanguage("es"))
	s := quoteAtFinalStep(t, m)
	s = apply(t, m, s,
		set(form.Message, form.String("<script>alert(1)</script>Call me <b>after 5</b> & thanks")),
		Captcha{Event: captcha.Verified("tok")},
	)

	_, eff := m.Apply(s, Submit{})
	send := eff.(SendEffect)

	want := submit.Payload{
		"firstName":        "Ada",
		"lastName":         "Lovelace",
		"email":            "ada@example.com",
		"phone":            "(555) 010-1234",
		"dateOfBirth":      "1985-12-10",
		"insuranceType":    "health",
		"zipCode":          "30301",
		"dependents":       int64(2),
		"smoker":           true,
		"preferredContact": "email",
		"message":          "Call me after 5 & thanks",
		"agreeTerms":       true,
		"agreeContact":     true,
		"estimate":         625,
		"language":         "es",
		"captchaToken":     "tok",
		"source":           "quote",
		"agentSlug":        "jane-doe",
	}
	if diff := cmp.Diff(want, send.Payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestEstimate(t *testing.T) {
	m := newQuoteMachine(t)
	s := m.Init()
	_, ok := m.Estimate(s)
	require.False(t, ok)

	s = apply(t, m, s, set(form.InsuranceType, form.String("life")))
	amount, ok := m.Estimate(s)
	require.True(t, ok)
	require.Equal(t, 50, amount)
}

func TestSubmit_ValidatesEveryStep(t *testing.T) {
	m := newQuoteMachine(t)
	s := apply(t, m, m.Init(),
		JumpTo{Step: 5},
		set(form.AgreeTerms, form.Bool(true)),
		set(form.AgreeContact, form.Bool(true)),
		Captcha{Event: captcha.Verified("tok")},
	)
	require.True(t, m.CanSubmit(s))

	next, eff := m.Apply(s, Submit{})
	require.Nil(t, eff, "skipped steps must block the network call")
	require.Equal(t, 1, next.Step, "returns to the first incomplete step")
	require.Contains(t, next.Errors, form.FirstName)
	require.Contains(t, next.Errors, form.Email)
	require.Equal(t, StatusIdle, next.Status)
	require.True(t, next.Captcha.Open(), "token is kept for the next attempt")
}

// quoteAtHouseholdStep walks a quote wizard to step 3 for a home policy.
func quoteAtHouseholdStep(t *testing.T, m *Machine) State {
	t.Helper()
	s := apply(t, m, m.Init(), validContact()...)
	s = apply(t, m, s,
		Advance{},
		set(form.InsuranceType, form.String("home")),
		set(form.ZipCode, form.String("30301")),
		Advance{},
	)
	require.Equal(t, 3, s.Step)
	return s
}

func TestAdvance_RejectedEditBlocksStep(t *testing.T) {
	m := newQuoteMachine(t)
	s := quoteAtHouseholdStep(t, m)

	s = apply(t, m, s, set(form.Dependents, form.String("two")), Advance{})
	require.Equal(t, 3, s.Step)
	require.Equal(t, InvalidValue, s.Errors[form.Dependents])

	s = apply(t, m, s, set(form.Dependents, form.Int(1)), Advance{})
	require.Equal(t, 4, s.Step)
	require.Empty(t, s.Errors)
}

func TestAdvance_FractionalDependentsRejected(t *testing.T) {
	m := newQuoteMachine(t)
	s := quoteAtHouseholdStep(t, m)

	s = apply(t, m, s, set(form.Dependents, form.Number(1.5)), Advance{})
	require.Equal(t, 3, s.Step)
	require.Equal(t, "Must be a whole number", s.Errors[form.Dependents])
}

func TestPayload_TrimsStrings(t *testing.T) {
	m := newQuoteMachine(t)
	s := quoteAtFinalStep(t, m)
	s = apply(t, m, s,
		JumpTo{Step: 1},
		set(form.Email, form.String("  ada@example.com ")),
		set(form.Phone, form.String(" (555) 010-1234\t")),
		JumpTo{Step: 2},
		set(form.ZipCode, form.String(" 30301 ")),
		JumpTo{Step: 5},
		Captcha{Event: captcha.Verified("tok")},
	)

	_, eff := m.Apply(s, Submit{})
	send, ok := eff.(SendEffect)
	require.True(t, ok, "expected SendEffect, got %T", eff)
	require.Equal(t, "ada@example.com", send.Payload[form.Email])
	require.Equal(t, "(555) 010-1234", send.Payload[form.Phone])
	require.Equal(t, "30301", send.Payload[form.ZipCode])
}
