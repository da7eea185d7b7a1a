package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/leadwizard/internal/captcha"
	"github.com/mark3labs/leadwizard/internal/form"
	"github.com/mark3labs/leadwizard/internal/logger"
	"github.com/mark3labs/leadwizard/internal/pricing"
	"github.com/mark3labs/leadwizard/internal/submit"
	"github.com/mark3labs/leadwizard/internal/wizard"
)

// tokenEntry is implemented by widgets that accept a token typed by the user.
type tokenEntry interface {
	Submit(token string)
	Reset()
}

// Runner asks every question of a wizard through a Driver.
type Runner struct {
	Machine      *wizard.Machine
	Driver       Driver
	Submitter    submit.Submitter
	Widget       captcha.Widget
	ChallengeURL string

	state wizard.State
	log   *logger.Logger
}

// NewRunner creates a Runner for machine.
func NewRunner(machine *wizard.Machine, driver Driver, sub submit.Submitter, widget captcha.Widget) *Runner {
	return &Runner{
		Machine:   machine,
		Driver:    driver,
		Submitter: sub,
		Widget:    widget,
		state:     machine.Init(),
		log:       logger.Named("prompt"),
	}
}

// State returns the current wizard state.
func (r *Runner) State() wizard.State { return r.state }

// Prefill jumps to step with field set to v, as a product card would.
func (r *Runner) Prefill(step int, field string, v form.Value) {
	r.apply(wizard.JumpTo{Step: step, Field: field, Value: v})
}

// Run walks the remaining steps, submits, and waits out the reset delay.
// It returns nil after one successful submission, or the first driver error.
func (r *Runner) Run(ctx context.Context) error {
	def := r.Machine.Definition()
	if err := r.Driver.Info(ctx, def.Title); err != nil {
		return err
	}
	if name := r.Machine.AgentName(); name != "" {
		if err := r.Driver.Info(ctx, "Your advisor: "+name); err != nil {
			return err
		}
	}

	if err := r.completeRemaining(ctx); err != nil {
		return err
	}
	return r.submitLoop(ctx)
}

// completeRemaining completes the current step and every step after it.
func (r *Runner) completeRemaining(ctx context.Context) error {
	for !r.Machine.IsFinal(r.state) {
		if err := r.completeStep(ctx); err != nil {
			return err
		}
	}
	return r.completeStep(ctx)
}

// completeStep asks every field on the current step, then re-asks the
// failing ones until the step validates.
func (r *Runner) completeStep(ctx context.Context) error {
	step, _ := r.Machine.Definition().Step(r.state.Step)
	if err := r.Driver.Info(ctx, fmt.Sprintf("\nStep %d of %d: %s", step.ID, r.Machine.Definition().Len(), step.Title)); err != nil {
		return err
	}

	pending := step.Fields
	for {
		for _, spec := range pending {
			v, err := r.ask(ctx, spec)
			if err != nil {
				return err
			}
			r.apply(wizard.SetField{Name: spec.Name, Value: v})
		}

		errs := r.Machine.Validate(r.state)
		if len(errs) == 0 {
			break
		}
		pending = pending[:0:0]
		for _, spec := range step.Fields {
			if reason, ok := errs[spec.Name]; ok {
				if err := r.Driver.Info(ctx, "  ✗ "+spec.Label+": "+reason); err != nil {
					return err
				}
				pending = append(pending, spec)
			}
		}
	}

	if r.Machine.IsFinal(r.state) {
		return nil
	}
	before := r.state.Step
	r.apply(wizard.Advance{})
	if r.state.Step == before {
		return fmt.Errorf("step %d did not advance", before)
	}
	return r.showEstimate(ctx)
}

func (r *Runner) showEstimate(ctx context.Context) error {
	if !r.Machine.Definition().Estimate || r.state.Step < 3 {
		return nil
	}
	amount, ok := r.Machine.Estimate(r.state)
	if !ok {
		return nil
	}
	return r.Driver.Info(ctx, fmt.Sprintf("Estimated premium: %s\n%s", pricing.Format(amount), pricing.Disclaimer))
}

// ask prompts for one field using the control that fits its kind.
func (r *Runner) ask(ctx context.Context, spec wizard.FieldSpec) (form.Value, error) {
	current, has := r.state.Fields.Get(spec.Name)

	switch {
	case len(spec.Options) > 0:
		def := 0
		if has {
			if i := indexOf(spec.Options, current.Str()); i >= 0 {
				def = i
			}
		}
		i, err := r.Driver.Select(ctx, SelectConfig{Message: spec.Label, Options: spec.Options, DefaultIndex: def, Help: spec.Help})
		if err != nil {
			return form.Value{}, err
		}
		if i < 0 || i >= len(spec.Options) {
			return form.String(""), nil
		}
		return form.String(spec.Options[i]), nil

	case spec.Kind == form.KindBool:
		ok, err := r.Driver.Confirm(ctx, ConfirmConfig{Message: spec.Label, Default: has && current.Bool(), Help: spec.Help})
		if err != nil {
			return form.Value{}, err
		}
		return form.Bool(ok), nil

	case spec.Multiline:
		text, err := r.Driver.TextArea(ctx, TextAreaConfig{Message: spec.Label, Default: current.Text(), Help: spec.Help})
		if err != nil {
			return form.Value{}, err
		}
		return form.String(text), nil
	}

	cfg := InputConfig{Message: spec.Label, Help: spec.Help}
	if has {
		cfg.Default = current.Text()
	}
	if spec.Kind == form.KindNumber {
		cfg.Validator = func(s string) error {
			if strings.TrimSpace(s) == "" {
				return nil
			}
			if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
				return fmt.Errorf("enter a whole number")
			}
			return nil
		}
	}
	text, err := r.Driver.Input(ctx, cfg)
	if err != nil {
		return form.Value{}, err
	}
	return toValue(spec.Kind, text), nil
}

func toValue(kind form.Kind, text string) form.Value {
	text = strings.TrimSpace(text)
	switch kind {
	case form.KindNumber:
		if text == "" {
			return form.Int(0)
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return form.String(text)
		}
		return form.Int(n)
	case form.KindDate:
		return form.DateText(text)
	default:
		return form.String(text)
	}
}

// submitLoop verifies, submits and retries on failure while the user agrees.
func (r *Runner) submitLoop(ctx context.Context) error {
	for {
		if err := r.verify(ctx); err != nil {
			return err
		}

		if blockers := r.Machine.SubmitBlockers(r.state); len(blockers) > 0 {
			if err := r.Driver.Info(ctx, strings.Join(blockers, "; ")); err != nil {
				return err
			}
			continue
		}

		effect := r.apply(wizard.Submit{})
		send, ok := effect.(wizard.SendEffect)
		if !ok {
			if len(r.state.Errors) == 0 {
				return fmt.Errorf("submission refused on step %d", r.state.Step)
			}
			// An earlier step was skipped; go back and finish it.
			if err := r.Driver.Info(ctx, fmt.Sprintf("Step %d needs attention.", r.state.Step)); err != nil {
				return err
			}
			if err := r.completeRemaining(ctx); err != nil {
				return err
			}
			continue
		}
		if entry, ok := r.Widget.(tokenEntry); ok {
			entry.Reset()
		}

		r.log.Info("submitting attempt %d to %s", send.Attempt, send.Path)
		err := r.Submitter.Submit(ctx, send.Path, send.Payload)
		if err != nil {
			r.log.Warn("submission %d failed: %v", send.Attempt, err)
		}
		effect = r.apply(wizard.SubmitDone{Attempt: send.Attempt, Err: err})

		if reset, ok := effect.(wizard.ResetEffect); ok {
			if err := r.Driver.Info(ctx, r.state.Notice); err != nil {
				return err
			}
			return r.waitReset(ctx, reset)
		}

		if err := r.Driver.Info(ctx, r.state.Notice); err != nil {
			return err
		}
		again, err := r.Driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
		if err != nil {
			return err
		}
		r.apply(wizard.Retry{})
		if !again {
			return submit.ErrSubmission
		}
	}
}

// verify obtains a fresh captcha token until the gate is open.
func (r *Runner) verify(ctx context.Context) error {
	if r.Widget == nil {
		return ErrNoWidget
	}
	for !r.state.Captcha.Open() {
		if entry, ok := r.Widget.(tokenEntry); ok {
			msg := "Verification token"
			help := ""
			if c, ok := r.Widget.(interface{ ChallengeURL(string) string }); ok && r.ChallengeURL != "" {
				help = "Open " + c.ChallengeURL(r.ChallengeURL) + " to obtain a token"
			}
			token, err := r.Driver.Input(ctx, InputConfig{Message: msg, Help: help})
			if err != nil {
				return err
			}
			entry.Submit(token)
		}

		select {
		case ev, ok := <-r.Widget.Events():
			if !ok {
				return ErrNoWidget
			}
			r.apply(wizard.Captcha{Event: ev})
			if ev.Kind != captcha.EventVerify || !r.state.Captcha.Open() {
				if err := r.Driver.Info(ctx, "Verification failed, please try again."); err != nil {
					return err
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (r *Runner) waitReset(ctx context.Context, reset wizard.ResetEffect) error {
	timer := time.NewTimer(reset.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		r.apply(wizard.ResetElapsed{Attempt: reset.Attempt})
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) apply(a wizard.Action) wizard.Effect {
	next, effect := r.Machine.Apply(r.state, a)
	r.state = next
	return effect
}
