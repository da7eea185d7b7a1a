// Package wizard renders a lead wizard in the terminal with Bubbletea and
// drives the wizard state machine from key presses, captcha callbacks and
// submission results.
package wizard

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/leadwizard/internal/captcha"
	"github.com/mark3labs/leadwizard/internal/form"
	"github.com/mark3labs/leadwizard/internal/logger"
	"github.com/mark3labs/leadwizard/internal/pricing"
	"github.com/mark3labs/leadwizard/internal/submit"
	"github.com/mark3labs/leadwizard/internal/wizard"
)

// Options configures a Model.
type Options struct {
	Submitter submit.Submitter
	// Widget supplies captcha callbacks. Without one, submission stays disabled.
	Widget       captcha.Widget
	ChallengeURL string
	// ExitAfterSubmit quits once a successful submission has been reset.
	ExitAfterSubmit bool
}

// Result summarizes a finished wizard run.
type Result struct {
	Submissions int
	Cancelled   bool
}

// submitDoneMsg reports the outcome of a SendEffect.
type submitDoneMsg struct {
	attempt int
	err     error
}

// Model is the Bubbletea model for one lead wizard.
type Model struct {
	machine *wizard.Machine
	state   wizard.State
	opts    Options
	log     *logger.Logger

	inputs     []fieldInput // controls for the current step
	focus      int          // fields, then token input (final step only), then buttons
	tokenInput textinput.Model
	spinner    spinner.Model
	review     viewport.Model // answer summary on the final step
	banner     *Banner

	width       int
	height      int
	cancelled   bool
	submissions int
}

// New creates a model for machine.
func New(machine *wizard.Machine, opts Options) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	token := textinput.New()
	token.Prompt = ""
	token.Placeholder = "Paste verification token..."
	token.SetWidth(40)

	m := &Model{
		machine:    machine,
		state:      machine.Init(),
		opts:       opts,
		log:        logger.Named("tui"),
		tokenInput: token,
		spinner:    s,
		review:     viewport.New(viewport.WithWidth(60), viewport.WithHeight(reviewHeight)),
		banner:     NewBanner(),
		width:      80,
		height:     24,
	}
	m.loadStep()
	return m
}

// Run is the entry point for the terminal wizard. It runs m in a standalone
// BubbleTea program and returns the result.
func (m *Model) Run() (*Result, error) {
	finalModel, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	wizModel, ok := finalModel.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	return &Result{Submissions: wizModel.submissions, Cancelled: wizModel.cancelled}, nil
}

// Prefill jumps to step with field set to v, as a product card would.
func (m *Model) Prefill(step int, field string, v form.Value) {
	m.dispatch(wizard.JumpTo{Step: step, Field: field, Value: v})
}

// State returns the current wizard state.
func (m *Model) State() wizard.State { return m.state }

// Cancelled reports whether the user quit before finishing.
func (m *Model) Cancelled() bool { return m.cancelled }

// Submissions returns the number of successful submissions.
func (m *Model) Submissions() int { return m.submissions }

// Init starts listening for captcha callbacks.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.focusCurrent(), listenCaptcha(m.opts.Widget))
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, in := range m.inputs {
			if tf, ok := in.(*textField); ok {
				tf.input.SetWidth(m.contentWidth() - 4)
			}
		}
		m.refreshReview()
		return m, nil

	case CaptchaMsg:
		m.log.Debug("captcha %s", msg.Event.Kind)
		cmd := m.dispatch(wizard.Captcha{Event: msg.Event})
		return m, tea.Batch(cmd, listenCaptcha(m.opts.Widget))

	case submitDoneMsg:
		if msg.err != nil {
			m.log.Warn("submission %d failed: %v", msg.attempt, msg.err)
		} else {
			m.log.Info("submission %d accepted", msg.attempt)
		}
		return m, m.dispatch(wizard.SubmitDone{Attempt: msg.attempt, Err: msg.err})

	case BannerDismissMsg:
		m.banner.Hide()
		cmd := m.dispatch(wizard.ResetElapsed{Attempt: msg.Attempt})
		if m.opts.ExitAfterSubmit && m.submissions > 0 && m.state.Status == wizard.StatusIdle {
			return m, tea.Quit
		}
		return m, cmd

	case EditorDoneMsg:
		cmd := m.dispatch(wizard.SetField{Name: msg.Field, Value: form.String(msg.Content)})
		m.syncInputs()
		return m, cmd

	case spinner.TickMsg:
		if m.state.Status != wizard.StatusSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Forward everything else (cursor blink) to the focused control
	return m, m.forward(msg)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.cancelled = true
		return tea.Quit

	case "esc":
		if m.state.Step == 1 {
			m.cancelled = true
			return tea.Quit
		}
		return m.dispatch(wizard.Retreat{})

	case "tab", "down":
		m.moveFocus(1)
		return m.focusCurrent()

	case "shift+tab", "up":
		m.moveFocus(-1)
		return m.focusCurrent()

	case "ctrl+s":
		return m.dispatch(wizard.Submit{})

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.review, cmd = m.review.Update(msg)
		return cmd

	case "ctrl+r":
		return m.dispatch(wizard.Retry{})

	case "ctrl+e":
		if in := m.focusedInput(); in != nil && in.Spec().Multiline && editorAvailable() {
			return openEditor(in.Spec().Name, m.state.Fields.String(in.Spec().Name))
		}
		return nil

	case "enter":
		return m.handleEnter()
	}

	return m.forward(msg)
}

func (m *Model) handleEnter() tea.Cmd {
	final := m.machine.IsFinal(m.state)
	switch {
	case m.focus < len(m.inputs):
		if m.focus == len(m.inputs)-1 && !final {
			return m.dispatch(wizard.Advance{})
		}
		m.moveFocus(1)
		return m.focusCurrent()

	case m.isTokenSlot(m.focus):
		if entry, ok := m.opts.Widget.(tokenEntry); ok {
			entry.Submit(m.tokenInput.Value())
		}
		return nil
	}

	switch m.buttonAt(m.focus) {
	case ButtonBack:
		return m.dispatch(wizard.Retreat{})
	case ButtonSubmit:
		return m.dispatch(wizard.Submit{})
	default:
		return m.dispatch(wizard.Advance{})
	}
}

// forward sends msg to the focused control and records any edit.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	if m.isTokenSlot(m.focus) {
		var cmd tea.Cmd
		m.tokenInput, cmd = m.tokenInput.Update(msg)
		return cmd
	}
	in := m.focusedInput()
	if in == nil {
		return nil
	}
	cmd, v, changed := in.Update(msg)
	if !changed {
		return cmd
	}
	return tea.Batch(cmd, m.dispatch(wizard.SetField{Name: in.Spec().Name, Value: v}))
}

// dispatch applies a to the machine and turns the resulting effect into commands.
func (m *Model) dispatch(a wizard.Action) tea.Cmd {
	prev := m.state
	next, effect := m.machine.Apply(prev, a)
	m.state = next

	var cmds []tea.Cmd

	if _, edit := a.(wizard.SetField); !edit && (next.Step != prev.Step || !next.Fields.Equal(prev.Fields)) {
		m.loadStep()
		cmds = append(cmds, m.focusCurrent())
	}

	if prev.Captcha.Open() && !next.Captcha.Open() {
		m.tokenInput.SetValue("")
		if entry, ok := m.opts.Widget.(tokenEntry); ok {
			entry.Reset()
		}
	}

	if prev.Status != next.Status {
		switch next.Status {
		case wizard.StatusError:
			m.banner.ShowError(next.Notice)
		case wizard.StatusIdle:
			m.banner.Hide()
		}
	}

	m.refreshReview()

	switch e := effect.(type) {
	case wizard.SendEffect:
		m.banner.Hide()
		m.log.Info("submitting attempt %d to %s", e.Attempt, e.Path)
		cmds = append(cmds, m.spinner.Tick, m.send(e))
	case wizard.ResetEffect:
		m.submissions++
		cmds = append(cmds, m.banner.ShowSuccess(next.Notice, e.Attempt, e.Delay))
	}

	return tea.Batch(cmds...)
}

// send performs the single network call for e.
func (m *Model) send(e wizard.SendEffect) tea.Cmd {
	sub := m.opts.Submitter
	return func() tea.Msg {
		if sub == nil {
			return submitDoneMsg{attempt: e.Attempt, err: fmt.Errorf("no submitter configured")}
		}
		err := sub.Submit(context.Background(), e.Path, e.Payload)
		return submitDoneMsg{attempt: e.Attempt, err: err}
	}
}

// loadStep rebuilds the controls for the current step from the store.
func (m *Model) loadStep() {
	step, ok := m.machine.Definition().Step(m.state.Step)
	if !ok {
		m.inputs = nil
		return
	}
	m.inputs = make([]fieldInput, len(step.Fields))
	for i, spec := range step.Fields {
		m.inputs[i] = newFieldInput(spec, m.contentWidth()-4)
	}
	m.syncInputs()
	m.focus = 0
	m.refreshReview()
}

// reviewHeight caps the summary pane on the final step.
const reviewHeight = 10

// refreshReview re-renders the answer summary when on the final step.
func (m *Model) refreshReview() {
	if !m.machine.IsFinal(m.state) {
		return
	}
	def := m.machine.Definition()
	amount, ok := m.machine.Estimate(m.state)
	content := renderMarkdown(reviewMarkdown(def, m.state.Fields, amount, ok && def.Estimate), m.contentWidth()-4)

	m.review.SetWidth(m.contentWidth() - 4)
	m.review.SetHeight(min(reviewHeight, lipgloss.Height(content)))
	m.review.SetContent(content)
}

// syncInputs loads stored values into the controls.
func (m *Model) syncInputs() {
	for _, in := range m.inputs {
		v, ok := m.state.Fields.Get(in.Spec().Name)
		in.SetValue(v, ok)
	}
}

func (m *Model) hasTokenSlot() bool {
	_, ok := m.opts.Widget.(tokenEntry)
	return ok && m.machine.IsFinal(m.state)
}

func (m *Model) slotCount() int {
	n := len(m.inputs) + 2
	if m.hasTokenSlot() {
		n++
	}
	return n
}

func (m *Model) isTokenSlot(i int) bool {
	return m.hasTokenSlot() && i == len(m.inputs)
}

func (m *Model) buttonAt(i int) ButtonID {
	first := len(m.inputs)
	if m.hasTokenSlot() {
		first++
	}
	if i == first {
		return ButtonBack
	}
	if m.machine.IsFinal(m.state) {
		return ButtonSubmit
	}
	return ButtonNext
}

func (m *Model) focusedInput() fieldInput {
	if m.focus < len(m.inputs) {
		return m.inputs[m.focus]
	}
	return nil
}

func (m *Model) moveFocus(delta int) {
	n := m.slotCount()
	m.focus = ((m.focus+delta)%n + n) % n
}

// focusCurrent blurs every control and focuses the one at m.focus.
func (m *Model) focusCurrent() tea.Cmd {
	for _, in := range m.inputs {
		in.Blur()
	}
	m.tokenInput.Blur()
	if in := m.focusedInput(); in != nil {
		return in.Focus()
	}
	if m.isTokenSlot(m.focus) {
		return m.tokenInput.Focus()
	}
	return nil
}

func (m *Model) contentWidth() int {
	w := m.width - 10
	if w < 60 {
		w = 60
	}
	if w > 100 {
		w = 100
	}
	return w
}

// View renders the wizard UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	content := m.renderModal(m.renderBody())

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// renderBody renders the current step without the modal frame.
func (m *Model) renderBody() string {
	def := m.machine.Definition()
	st := styles()
	var sections []string

	if name := m.machine.AgentName(); name != "" {
		sections = append(sections, st.Help.Render("Your advisor: "+name))
	}
	sections = append(sections, styleProgress.Render(progressDots(m.state.Step, def.Len())), "")

	for i, in := range m.inputs {
		sections = append(sections, renderField(in, i == m.focus, m.state.Errors[in.Spec().Name]))
	}

	if def.Estimate && m.state.Step >= 3 {
		if amount, ok := m.machine.Estimate(m.state); ok {
			sections = append(sections, "",
				st.Estimate.Render("Estimated premium: "+pricing.Format(amount)),
				st.Help.Render(pricing.Disclaimer))
		}
	}

	if m.machine.IsFinal(m.state) {
		sections = append(sections, "", m.review.View())
		sections = append(sections, "", m.renderCaptcha())
	}

	if banner := m.banner.View(m.contentWidth() - 4); banner != "" {
		sections = append(sections, "", banner)
	}
	if m.state.Status == wizard.StatusSubmitting {
		sections = append(sections, "", m.spinner.View()+" Sending...")
	}

	sections = append(sections, "", m.renderButtons())
	sections = append(sections, m.renderHints())
	return strings.Join(sections, "\n")
}

func (m *Model) renderCaptcha() string {
	st := styles()
	if m.state.Captcha.Open() {
		return st.Estimate.Render("✓ Verified")
	}
	lines := []string{st.Label.Render("Verification")}
	if c, ok := m.opts.Widget.(challenger); ok && m.opts.ChallengeURL != "" {
		lines = append(lines, st.Help.Render("  Open "+c.ChallengeURL(m.opts.ChallengeURL)+" and paste the token below."))
	}
	if m.hasTokenSlot() {
		prefix := "  "
		if m.isTokenSlot(m.focus) {
			prefix = st.LabelFocused.Render("› ")
		}
		lines = append(lines, prefix+m.tokenInput.View())
	} else if m.opts.Widget == nil {
		lines = append(lines, st.FieldError.Render("  Verification is unavailable"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderButtons() string {
	final := m.machine.IsFinal(m.state)
	forwardEnabled := m.state.Status != wizard.StatusSubmitting
	if final {
		forwardEnabled = m.machine.CanSubmit(m.state)
	}

	focused := -1
	if m.focus >= len(m.inputs) && !m.isTokenSlot(m.focus) {
		if m.buttonAt(m.focus) == ButtonBack {
			focused = 0
		} else {
			focused = 1
		}
	}

	bar := NewButtonBar(CreateNavButtons(m.state.Step > 1, final, forwardEnabled, focused))
	bar.SetWidth(m.contentWidth() - 4)
	out := bar.Render()

	if final && !m.machine.CanSubmit(m.state) && m.state.Status == wizard.StatusIdle {
		out += "\n" + styles().Help.Render(strings.Join(m.machine.SubmitBlockers(m.state), " · "))
	}
	return out
}

func (m *Model) renderHints() string {
	pairs := []string{"tab", "next field", "enter", "continue", "esc", "back"}
	if in := m.focusedInput(); in != nil && in.Spec().Multiline && editorAvailable() {
		pairs = append(pairs, "ctrl+e", "edit")
	}
	if m.machine.IsFinal(m.state) {
		pairs = append(pairs, "pgup/pgdn", "scroll", "ctrl+s", "submit")
	}
	if m.state.Status == wizard.StatusError {
		pairs = append(pairs, "ctrl+r", "dismiss")
	}
	return renderHintBar(pairs...)
}

// renderModal wraps the step content in a modal container with title.
func (m *Model) renderModal(body string) string {
	def := m.machine.Definition()
	stepTitle := ""
	if step, ok := def.Step(m.state.Step); ok {
		stepTitle = step.Title
	}
	title := fmt.Sprintf("%s - Step %d of %d: %s", def.Title, m.state.Step, def.Len(), stepTitle)

	content := strings.Join([]string{styleModalTitle.Render(title), "", body}, "\n")
	modal := styleModalContainer.Width(m.contentWidth()).Render(content)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

// progressDots renders "● ● ○ ○ ○" for step of n.
func progressDots(step, n int) string {
	dots := make([]string, n)
	for i := range dots {
		if i < step {
			dots[i] = "●"
		} else {
			dots[i] = "○"
		}
	}
	return strings.Join(dots, " ")
}
