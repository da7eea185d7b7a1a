package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/leadwizard/internal/captcha"
	"github.com/mark3labs/leadwizard/internal/form"
	"github.com/mark3labs/leadwizard/internal/submit"
	"github.com/mark3labs/leadwizard/internal/tui/testfixtures"
	"github.com/mark3labs/leadwizard/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriver answers prompts from per-message queues. A message with no
// queued answer falls back to the prompt's default.
type fakeDriver struct {
	mu      sync.Mutex
	answers map[string][]any
	asked   []string
	info    []string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{answers: map[string][]any{}}
}

func (f *fakeDriver) queue(message string, answers ...any) *fakeDriver {
	f.answers[message] = append(f.answers[message], answers...)
	return f
}

func (f *fakeDriver) next(message string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, message)
	q := f.answers[message]
	if len(q) == 0 {
		return nil, false
	}
	f.answers[message] = q[1:]
	return q[0], true
}

func (f *fakeDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	v, ok := f.next(cfg.Message)
	if !ok {
		return cfg.Default, nil
	}
	if err, isErr := v.(error); isErr {
		return "", err
	}
	s := v.(string)
	if cfg.Validator != nil {
		if err := cfg.Validator(s); err != nil {
			return "", err
		}
	}
	return s, nil
}

func (f *fakeDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	v, ok := f.next(cfg.Message)
	if !ok {
		return cfg.Default, nil
	}
	return v.(bool), nil
}

func (f *fakeDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	v, ok := f.next(cfg.Message)
	if !ok {
		return cfg.DefaultIndex, nil
	}
	return indexOf(cfg.Options, v.(string)), nil
}

func (f *fakeDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	v, ok := f.next(cfg.Message)
	if !ok {
		return cfg.Default, nil
	}
	return v.(string), nil
}

func (f *fakeDriver) Info(ctx context.Context, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.info = append(f.info, msg)
	return nil
}

func (f *fakeDriver) printed() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.info, "\n")
}

func (f *fakeDriver) askedCount(message string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.asked {
		if m == message {
			n++
		}
	}
	return n
}

// contactAnswers queues a valid contact wizard run.
func contactAnswers(f *fakeDriver) *fakeDriver {
	return f.
		queue("First name", "Ada").
		queue("Last name", "Lovelace").
		queue("Email", "ada@example.com").
		queue("Phone", "").
		queue("Subject", "Policy question").
		queue("Message", "Can I add my spouse? <b>thanks</b>").
		queue("I agree to the terms and privacy policy", true)
}

func newRunner(t *testing.T, def wizard.Definition, d Driver, sub submit.Submitter, w captcha.Widget) *Runner {
	t.Helper()
	machine, err := wizard.New(def,
		wizard.WithClock(testfixtures.Clock),
		wizard.WithResetDelay(5*time.Millisecond),
	)
	require.NoError(t, err)
	return NewRunner(machine, d, sub, w)
}

func TestRunner_ContactHappyPath(t *testing.T) {
	widget := captcha.NewTokenWidget("site", time.Minute)
	defer func() { _ = widget.Close() }()

	d := contactAnswers(newFakeDriver()).queue("Verification token", testfixtures.FixedToken)
	sub := testfixtures.NewMockSubmitter()
	r := newRunner(t, wizard.Contact(), d, sub, widget)

	require.NoError(t, r.Run(context.Background()))

	require.Equal(t, 1, sub.CallCount())
	last, _ := sub.Last()
	assert.Equal(t, "/api/contact", last.Path)
	assert.Equal(t, "Ada", last.Payload[form.FirstName])
	assert.Equal(t, "Can I add my spouse? thanks", last.Payload[form.Message])
	assert.Equal(t, testfixtures.FixedToken, last.Payload["captchaToken"])

	// reset after the delay
	assert.Equal(t, 1, r.State().Step)
	assert.Equal(t, wizard.StatusIdle, r.State().Status)
	assert.False(t, r.State().Fields.Has(form.FirstName))
	assert.Contains(t, d.printed(), wizard.Contact().Confirmation)
}

func TestRunner_ReasksOnlyFailingFields(t *testing.T) {
	widget := captcha.NewTokenWidget("", time.Minute)
	defer func() { _ = widget.Close() }()

	d := newFakeDriver().
		queue("First name", "Ada").
		queue("Last name", "Lovelace").
		queue("Email", "not-an-email", "ada@example.com").
		queue("Phone", "123", "").
		queue("Subject", "Hi").
		queue("Message", "Hello").
		queue("I agree to the terms and privacy policy", false, true).
		queue("Verification token", testfixtures.FixedToken)
	sub := testfixtures.NewMockSubmitter()
	r := newRunner(t, wizard.Contact(), d, sub, widget)

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 1, d.askedCount("First name"))
	assert.Equal(t, 2, d.askedCount("Email"))
	assert.Equal(t, 2, d.askedCount("Phone"))
	assert.Equal(t, 2, d.askedCount("I agree to the terms and privacy policy"))
	assert.Contains(t, d.printed(), "✗ Email")
	assert.Equal(t, 1, sub.CallCount())
}

func TestRunner_BlankTokenIsRejected(t *testing.T) {
	widget := captcha.NewTokenWidget("", time.Minute)
	defer func() { _ = widget.Close() }()

	d := contactAnswers(newFakeDriver()).queue("Verification token", "   ", testfixtures.FixedToken)
	sub := testfixtures.NewMockSubmitter()
	r := newRunner(t, wizard.Contact(), d, sub, widget)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, d.askedCount("Verification token"))
	assert.Contains(t, d.printed(), "Verification failed")
	assert.Equal(t, 1, sub.CallCount())
}

func TestRunner_FailureRetriesWithFreshToken(t *testing.T) {
	widget := captcha.NewTokenWidget("", time.Minute)
	defer func() { _ = widget.Close() }()

	d := contactAnswers(newFakeDriver()).
		queue("Verification token", "first-token", "second-token").
		queue("Try again?", true)

	sub := &flakySubmitter{failures: 1}
	r := newRunner(t, wizard.Contact(), d, sub, widget)

	require.NoError(t, r.Run(context.Background()))
	require.Len(t, sub.tokens, 2)
	assert.Equal(t, []string{"first-token", "second-token"}, sub.tokens)
	assert.Contains(t, d.printed(), submit.GenericMessage)
}

func TestRunner_FailureGiveUp(t *testing.T) {
	widget := captcha.NewTokenWidget("", time.Minute)
	defer func() { _ = widget.Close() }()

	d := contactAnswers(newFakeDriver()).
		queue("Verification token", testfixtures.FixedToken).
		queue("Try again?", false)

	sub := testfixtures.NewMockSubmitter()
	sub.Err = &submit.Failure{Cause: errors.New("503")}
	r := newRunner(t, wizard.Contact(), d, sub, widget)

	err := r.Run(context.Background())
	require.ErrorIs(t, err, submit.ErrSubmission)
	assert.Equal(t, 2, r.State().Step, "answers and step are kept")
	assert.Equal(t, "Ada", r.State().Fields.String(form.FirstName))
	assert.Equal(t, wizard.StatusIdle, r.State().Status)
}

func TestRunner_QuoteShowsEstimateAndPrefill(t *testing.T) {
	widget := testfixtures.NewMockWidget()
	widget.Emit(captcha.Verified(testfixtures.FixedToken))

	d := newFakeDriver().
		queue("Date of birth", "1985-03-14").
		queue("ZIP code", "30301").
		queue("Dependents", "2").
		queue("Tobacco use", true).
		queue("Preferred contact", "email").
		queue("I agree to the terms and privacy policy", true).
		queue("I agree to be contacted by a licensed advisor", true)
	for name, v := range testfixtures.Contact() {
		label := map[string]string{form.FirstName: "First name", form.LastName: "Last name", form.Email: "Email", form.Phone: "Phone"}[name]
		d.queue(label, v.Str())
	}

	sub := testfixtures.NewMockSubmitter()
	r := newRunner(t, wizard.Quote(), d, sub, widget)
	r.Prefill(1, form.InsuranceType, form.String("health"))

	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, d.printed(), "Estimated premium: $625/mo")
	assert.Contains(t, d.printed(), "Estimate only")
	last, _ := sub.Last()
	assert.Equal(t, "health", last.Payload[form.InsuranceType])
	assert.Equal(t, 625, last.Payload["estimate"])
}

func TestRunner_NoWidget(t *testing.T) {
	d := contactAnswers(newFakeDriver())
	r := newRunner(t, wizard.Contact(), d, testfixtures.NewMockSubmitter(), nil)

	require.ErrorIs(t, r.Run(context.Background()), ErrNoWidget)
}

func TestRunner_AbortPropagates(t *testing.T) {
	d := newFakeDriver().queue("First name", ErrAborted)
	r := newRunner(t, wizard.Contact(), d, testfixtures.NewMockSubmitter(), testfixtures.NewMockWidget())

	require.ErrorIs(t, r.Run(context.Background()), ErrAborted)
}

func TestToValue(t *testing.T) {
	assert.Equal(t, form.Int(3), toValue(form.KindNumber, " 3 "))
	assert.Equal(t, form.Int(0), toValue(form.KindNumber, ""))
	assert.Equal(t, form.KindString, toValue(form.KindNumber, "x").Kind())
	assert.Equal(t, form.KindDate, toValue(form.KindDate, "2000-01-01").Kind())
}

// flakySubmitter fails the first n calls and records each captcha token.
type flakySubmitter struct {
	failures int
	tokens   []string
}

func (f *flakySubmitter) Submit(ctx context.Context, path string, p submit.Payload) error {
	f.tokens = append(f.tokens, fmt.Sprint(p["captchaToken"]))
	if len(f.tokens) <= f.failures {
		return &submit.Failure{Cause: errors.New("connection reset")}
	}
	return nil
}

// resetCountingWidget records how often the pending token expiry is dropped.
type resetCountingWidget struct {
	*captcha.TokenWidget
	resets int
}

func (w *resetCountingWidget) Reset() {
	w.resets++
	w.TokenWidget.Reset()
}

func TestRunner_ResetsWidgetOnceTokenIsSpent(t *testing.T) {
	widget := &resetCountingWidget{TokenWidget: captcha.NewTokenWidget("", time.Minute)}
	defer func() { _ = widget.Close() }()

	d := contactAnswers(newFakeDriver()).
		queue("Verification token", "first-token", "second-token").
		queue("Try again?", true)

	sub := &flakySubmitter{failures: 1}
	r := newRunner(t, wizard.Contact(), d, sub, widget)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, widget.resets, "one reset per submitted token")
}

func TestRunner_SkippedStepIsCompletedBeforeSending(t *testing.T) {
	widget := captcha.NewTokenWidget("", time.Minute)
	defer func() { _ = widget.Close() }()

	d := contactAnswers(newFakeDriver()).
		queue("Verification token", testfixtures.FixedToken)

	sub := testfixtures.NewMockSubmitter()
	r := newRunner(t, wizard.Contact(), d, sub, widget)
	r.Prefill(2, form.Subject, form.String("Policy question"))

	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, d.printed(), "Step 1 needs attention.")
	assert.Equal(t, 1, d.askedCount("First name"))
	assert.Equal(t, 1, d.askedCount("Verification token"), "the verified token survives the detour")
	require.Equal(t, 1, sub.CallCount())
	last, _ := sub.Last()
	assert.Equal(t, "Ada", last.Payload[form.FirstName])
}
