package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	Title        lipgloss.Style
	Label        lipgloss.Style
	LabelFocused lipgloss.Style
	Help         lipgloss.Style
	FieldError   lipgloss.Style
	Estimate     lipgloss.Style
	Banner       lipgloss.Style // background set per status
	Modal        lipgloss.Style
}
