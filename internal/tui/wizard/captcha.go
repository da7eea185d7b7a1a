package wizard

import (
	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/leadwizard/internal/captcha"
)

// CaptchaMsg carries one widget callback into the update loop.
type CaptchaMsg struct {
	Event captcha.Event
}

// tokenEntry is implemented by widgets that accept a token typed by the user.
type tokenEntry interface {
	Submit(token string)
	Reset()
}

// challenger is implemented by widgets that can point the user at a challenge page.
type challenger interface {
	ChallengeURL(base string) string
}

// listenCaptcha waits for the next widget callback.
// Returns nil once the widget is closed.
func listenCaptcha(w captcha.Widget) tea.Cmd {
	if w == nil {
		return nil
	}
	events := w.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return CaptchaMsg{Event: ev}
	}
}
