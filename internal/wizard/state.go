// Package wizard is the lead-capture engine shared by the quote, schedule,
// join and contact flows.
//
// All transitions go through Machine.Apply, a reducer over an immutable
// State. Side effects (the network call, the post-success reset timer) are
// returned as Effect values and executed by the caller, which feeds their
// outcome back in as actions.
package wizard

import (
	"time"

	"github.com/mark3labs/leadwizard/internal/captcha"
	"github.com/mark3labs/leadwizard/internal/form"
	"github.com/mark3labs/leadwizard/internal/submit"
	"github.com/mark3labs/leadwizard/internal/validate"
)

// Status is the submission status.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSuccess
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of one wizard instance.
type State struct {
	Step    int // 1..N
	Fields  form.Store
	Errors  validate.Errors
	Captcha captcha.Gate
	Status  Status
	Notice  string // confirmation or failure text shown to the user
	Attempt int    // increments on every submission
}

// Action is an input to Machine.Apply.
type Action interface{ action() }

// SetField records a user edit.
type SetField struct {
	Name  string
	Value form.Value
}

// Advance moves to the next step if the current one validates.
type Advance struct{}

// Retreat moves to the previous step without validating.
type Retreat struct{}

// JumpTo moves directly to Step, optionally pre-filling Field with Value.
// Product cards use it to pre-select an insurance type.
type JumpTo struct {
	Step  int
	Field string
	Value form.Value
}

// Captcha forwards a widget callback to the gate.
type Captcha struct {
	Event captcha.Event
}

// Submit asks to send the lead.
type Submit struct{}

// SubmitDone reports the outcome of the submission started by Attempt.
type SubmitDone struct {
	Attempt int
	Err     error
}

// ResetElapsed reports that the post-success delay for Attempt has passed.
type ResetElapsed struct {
	Attempt int
}

// Retry dismisses a failure so the user can try again.
type Retry struct{}

func (SetField) action()     {}
func (Advance) action()      {}
func (Retreat) action()      {}
func (JumpTo) action()       {}
func (Captcha) action()      {}
func (Submit) action()       {}
func (SubmitDone) action()   {}
func (ResetElapsed) action() {}
func (Retry) action()        {}

// Effect is work the caller must perform after a transition.
type Effect interface{ effect() }

// SendEffect asks the caller to post Payload to Path exactly once and report
// back with SubmitDone{Attempt}.
type SendEffect struct {
	Attempt int
	Path    string
	Payload submit.Payload
}

// ResetEffect asks the caller to send ResetElapsed{Attempt} after Delay.
type ResetEffect struct {
	Attempt int
	Delay   time.Duration
}

func (SendEffect) effect()  {}
func (ResetEffect) effect() {}
