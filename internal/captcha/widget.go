package captcha

import (
	"strings"
	"sync"
	"time"
)

// Widget is a source of verification callbacks.
type Widget interface {
	Events() <-chan Event
	Close() error
}

// DefaultTTL is how long a verified token stays usable.
const DefaultTTL = 300 * time.Second

// TokenWidget is a terminal stand-in for the hosted challenge: the user
// completes the challenge in a browser and pastes the issued token.
type TokenWidget struct {
	SiteKey string

	mu     sync.Mutex
	events chan Event
	ttl    time.Duration
	timer  *time.Timer
	closed bool
}

// NewTokenWidget creates a widget whose tokens expire after ttl. A ttl of
// zero uses DefaultTTL.
func NewTokenWidget(siteKey string, ttl time.Duration) *TokenWidget {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenWidget{
		SiteKey: siteKey,
		events:  make(chan Event, 4),
		ttl:     ttl,
	}
}

// Events returns the callback stream.
func (w *TokenWidget) Events() <-chan Event {
	return w.events
}

// Submit reports a token entered by the user. Blank input is reported as a
// widget error.
func (w *TokenWidget) Submit(token string) {
	token = strings.TrimSpace(token)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.stopTimerLocked()

	if token == "" {
		w.emitLocked(Failed())
		return
	}
	w.emitLocked(Verified(token))
	w.timer = time.AfterFunc(w.ttl, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if !w.closed {
			w.emitLocked(Expired())
		}
	})
}

// Reset drops any pending expiry, ready for a fresh challenge.
func (w *TokenWidget) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopTimerLocked()
}

// ChallengeURL returns the page the user opens to obtain a token.
func (w *TokenWidget) ChallengeURL(base string) string {
	if w.SiteKey == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/verify?sitekey=" + w.SiteKey
}

// Close stops the widget and closes the event stream.
func (w *TokenWidget) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.stopTimerLocked()
	w.closed = true
	close(w.events)
	return nil
}

func (w *TokenWidget) stopTimerLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// emitLocked drops the event if the buffer is full.
func (w *TokenWidget) emitLocked(ev Event) {
	select {
	case w.events <- ev:
	default:
	}
}
