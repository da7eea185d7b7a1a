package wizard

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/leadwizard/internal/tui/theme"
	"github.com/mark3labs/leadwizard/internal/wizard"
)

// BannerDismissMsg is sent when a success banner's delay has elapsed.
type BannerDismissMsg struct {
	Attempt int
}

// Banner shows the outcome of a submission. Success banners dismiss
// themselves after a delay; error banners stay until the user retries.
type Banner struct {
	message   string
	status    wizard.Status
	attempt   int
	visible   bool
	dismissAt time.Time
}

// NewBanner creates a hidden banner.
func NewBanner() *Banner {
	return &Banner{}
}

// ShowSuccess displays msg and returns a command that fires
// BannerDismissMsg{attempt} after delay.
func (b *Banner) ShowSuccess(msg string, attempt int, delay time.Duration) tea.Cmd {
	b.message = msg
	b.status = wizard.StatusSuccess
	b.attempt = attempt
	b.visible = true
	b.dismissAt = time.Now().Add(delay)
	return b.dismissCmd()
}

// ShowError displays msg until Hide is called.
func (b *Banner) ShowError(msg string) {
	b.message = msg
	b.status = wizard.StatusError
	b.visible = true
}

// Hide clears the banner.
func (b *Banner) Hide() {
	b.visible = false
	b.message = ""
}

// dismissCmd returns a command that will dismiss the banner after the remaining time.
func (b *Banner) dismissCmd() tea.Cmd {
	remaining := time.Until(b.dismissAt)
	if remaining <= 0 {
		remaining = 1 * time.Millisecond
	}
	attempt := b.attempt
	return tea.Tick(remaining, func(time.Time) tea.Msg {
		return BannerDismissMsg{Attempt: attempt}
	})
}

// View renders the banner at the given width.
// Returns empty string if the banner is not visible.
func (b *Banner) View(width int) string {
	if !b.visible || b.message == "" {
		return ""
	}

	th := theme.Current()
	bg := th.Success
	if b.status == wizard.StatusError {
		bg = th.Error
	}
	style := th.S().Banner.Background(lipgloss.Color(bg))
	if lipgloss.Width(style.Render(b.message)) > width {
		style = style.Width(width)
	}
	return style.Render(b.message)
}

// IsVisible returns whether the banner is currently visible.
func (b *Banner) IsVisible() bool {
	return b.visible
}

// Message returns the current banner text (empty if not visible).
func (b *Banner) Message() string {
	if !b.visible {
		return ""
	}
	return b.message
}
