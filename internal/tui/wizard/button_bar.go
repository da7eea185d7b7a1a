package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// ButtonID identifies what a button does.
type ButtonID int

const (
	ButtonBack ButtonID = iota
	ButtonNext
	ButtonSubmit
)

// Button represents a single button in the button bar.
type Button struct {
	ID    ButtonID
	Label string
	State ButtonState
}

// ButtonBar manages a set of buttons with consistent styling.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		width:   60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// Buttons returns the bar's buttons.
func (b *ButtonBar) Buttons() []Button {
	return b.buttons
}

// Render renders the button bar with proper spacing and styling.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	base := lipgloss.NewStyle().
		Padding(0, 2).
		MarginLeft(1).
		MarginRight(1)

	normalStyle := base.
		Foreground(colorText).
		Background(colorSurface0)

	disabledStyle := base.
		Foreground(colorOverlay0).
		Background(colorMantle)

	focusedStyle := base.
		Foreground(colorBase).
		Background(colorBorderFocused).
		Bold(true)

	var rendered []string
	for _, btn := range b.buttons {
		switch btn.State {
		case ButtonDisabled:
			rendered = append(rendered, disabledStyle.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, focusedStyle.Render(btn.Label))
		default: // ButtonNormal
			rendered = append(rendered, normalStyle.Render(btn.Label))
		}
	}

	// Center the button bar
	return lipgloss.PlaceHorizontal(b.width, lipgloss.Center, strings.Join(rendered, ""))
}

// CreateNavButtons creates the Back plus Next or Submit button set.
// backEnabled: whether Back button is enabled (false on step 1)
// final: whether the forward button submits instead of advancing
// forwardEnabled: whether the forward button is enabled
// focused: index of the focused button, or -1
func CreateNavButtons(backEnabled, final, forwardEnabled bool, focused int) []Button {
	back := Button{ID: ButtonBack, Label: "← Back", State: ButtonNormal}
	if !backEnabled {
		back.State = ButtonDisabled
	}

	forward := Button{ID: ButtonNext, Label: "Next →", State: ButtonNormal}
	if final {
		forward = Button{ID: ButtonSubmit, Label: "Submit", State: ButtonNormal}
	}
	if !forwardEnabled {
		forward.State = ButtonDisabled
	}

	buttons := []Button{back, forward}
	if focused >= 0 && focused < len(buttons) && buttons[focused].State != ButtonDisabled {
		buttons[focused].State = ButtonFocused
	}
	return buttons
}
