package wizard

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/leadwizard/internal/form"
	"github.com/mark3labs/leadwizard/internal/wizard"
)

// fieldInput is one editable control on a step.
type fieldInput interface {
	Spec() wizard.FieldSpec
	Focus() tea.Cmd
	Blur()
	// Update handles msg and reports the new value when the user changed it.
	Update(msg tea.Msg) (cmd tea.Cmd, v form.Value, changed bool)
	// SetValue loads the stored value without reporting a change.
	SetValue(v form.Value, present bool)
	View(focused bool) string
}

// newFieldInput picks the control for spec.
func newFieldInput(spec wizard.FieldSpec, width int) fieldInput {
	switch {
	case len(spec.Options) > 0:
		return &choiceField{spec: spec, selected: -1}
	case spec.Kind == form.KindBool && spec.Agreement:
		return &checkboxField{spec: spec}
	case spec.Kind == form.KindBool:
		return &toggleField{spec: spec}
	default:
		return newTextField(spec, width)
	}
}

// textField edits strings, numbers and dates through a textinput.
type textField struct {
	spec  wizard.FieldSpec
	input textinput.Model
}

func newTextField(spec wizard.FieldSpec, width int) *textField {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = spec.Help
	input.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(colorText),
			Placeholder: lipgloss.NewStyle().Foreground(colorSubtext0),
			Prompt:      lipgloss.NewStyle().Foreground(colorBorderFocused),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(colorSubtext0),
			Placeholder: lipgloss.NewStyle().Foreground(colorOverlay0),
			Prompt:      lipgloss.NewStyle().Foreground(colorOverlay0),
		},
		Cursor: textinput.CursorStyle{
			Color: colorPrimary,
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	input.SetWidth(width)
	return &textField{spec: spec, input: input}
}

func (f *textField) Spec() wizard.FieldSpec { return f.spec }
func (f *textField) Focus() tea.Cmd         { return f.input.Focus() }
func (f *textField) Blur()                  { f.input.Blur() }

func (f *textField) SetValue(v form.Value, present bool) {
	if !present {
		f.input.SetValue("")
		return
	}
	f.input.SetValue(v.Text())
}

// Value returns the raw text.
func (f *textField) Value() string {
	return f.input.Value()
}

func (f *textField) Update(msg tea.Msg) (tea.Cmd, form.Value, bool) {
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	after := f.input.Value()
	if after == before {
		return cmd, form.Value{}, false
	}
	return cmd, parseText(f.spec.Kind, after), true
}

// parseText converts raw input into a value of kind. Text that is not a
// whole number is passed through as a string so the store rejects it.
func parseText(kind form.Kind, raw string) form.Value {
	switch kind {
	case form.KindNumber:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return form.Int(0)
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return form.String(raw)
		}
		return form.Int(n)
	case form.KindDate:
		return form.DateText(strings.TrimSpace(raw))
	default:
		return form.String(raw)
	}
}

func (f *textField) View(focused bool) string {
	return f.input.View()
}

// choiceField picks one of spec.Options.
type choiceField struct {
	spec     wizard.FieldSpec
	selected int // -1 when nothing chosen
}

func (f *choiceField) Spec() wizard.FieldSpec { return f.spec }
func (f *choiceField) Focus() tea.Cmd         { return nil }
func (f *choiceField) Blur()                  {}

func (f *choiceField) SetValue(v form.Value, present bool) {
	f.selected = -1
	if !present {
		return
	}
	for i, opt := range f.spec.Options {
		if opt == v.Str() {
			f.selected = i
			return
		}
	}
}

func (f *choiceField) Update(msg tea.Msg) (tea.Cmd, form.Value, bool) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil, form.Value{}, false
	}
	n := len(f.spec.Options)
	switch key.String() {
	case "right", "l", "space":
		f.selected = (f.selected + 1) % n
	case "left", "h":
		if f.selected <= 0 {
			f.selected = n - 1
		} else {
			f.selected--
		}
	default:
		return nil, form.Value{}, false
	}
	return nil, form.String(f.spec.Options[f.selected]), true
}

func (f *choiceField) View(focused bool) string {
	parts := make([]string, len(f.spec.Options))
	for i, opt := range f.spec.Options {
		if i == f.selected {
			style := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
			parts[i] = style.Render("[" + opt + "]")
		} else {
			parts[i] = lipgloss.NewStyle().Foreground(colorSubtext0).Render(" " + opt + " ")
		}
	}
	return strings.Join(parts, " ")
}

// toggleField answers a yes/no question. It starts unanswered.
type toggleField struct {
	spec     wizard.FieldSpec
	answered bool
	value    bool
}

func (f *toggleField) Spec() wizard.FieldSpec { return f.spec }
func (f *toggleField) Focus() tea.Cmd         { return nil }
func (f *toggleField) Blur()                  {}

func (f *toggleField) SetValue(v form.Value, present bool) {
	f.answered = present
	f.value = present && v.Bool()
}

func (f *toggleField) Update(msg tea.Msg) (tea.Cmd, form.Value, bool) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil, form.Value{}, false
	}
	switch key.String() {
	case "y", "left", "h":
		f.value = true
	case "n", "right", "l":
		f.value = false
	case "space":
		f.value = !f.answered || !f.value
	default:
		return nil, form.Value{}, false
	}
	f.answered = true
	return nil, form.Bool(f.value), true
}

func (f *toggleField) View(focused bool) string {
	yes, no := "( )", "( )"
	if f.answered && f.value {
		yes = "(•)"
	}
	if f.answered && !f.value {
		no = "(•)"
	}
	return yes + " Yes   " + no + " No"
}

// checkboxField is an agreement box.
type checkboxField struct {
	spec    wizard.FieldSpec
	checked bool
}

func (f *checkboxField) Spec() wizard.FieldSpec { return f.spec }
func (f *checkboxField) Focus() tea.Cmd         { return nil }
func (f *checkboxField) Blur()                  {}

func (f *checkboxField) SetValue(v form.Value, present bool) {
	f.checked = present && v.Bool()
}

func (f *checkboxField) Update(msg tea.Msg) (tea.Cmd, form.Value, bool) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil, form.Value{}, false
	}
	switch key.String() {
	case "space", "x":
		f.checked = !f.checked
		return nil, form.Bool(f.checked), true
	}
	return nil, form.Value{}, false
}

func (f *checkboxField) View(focused bool) string {
	box := "[ ]"
	if f.checked {
		box = "[x]"
	}
	return box + " " + f.spec.Label
}

// renderField renders label, control, help and error for one field.
func renderField(in fieldInput, focused bool, errMsg string) string {
	spec := in.Spec()
	st := styles()

	var lines []string
	if !spec.Agreement {
		label := st.Label.Render(spec.Label)
		if focused {
			label = st.LabelFocused.Render("› " + spec.Label)
		}
		lines = append(lines, label)
	}

	control := in.View(focused)
	if spec.Agreement && focused {
		control = st.LabelFocused.Render("› ") + control
	}
	lines = append(lines, "  "+control)

	if errMsg != "" {
		lines = append(lines, "  "+st.FieldError.Render(errMsg))
	}
	return strings.Join(lines, "\n")
}
