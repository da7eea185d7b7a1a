// Package captcha tracks the human-verification token that gates the final
// wizard submission.
//
// The hosted challenge widget is modelled as a stream of Events. The Gate
// only remembers the last token and whether it is still usable; re-prompting
// after an error or expiry is the widget's job.
package captcha

// EventKind identifies a widget callback.
type EventKind int

const (
	EventVerify EventKind = iota
	EventError
	EventExpire
)

// String returns the callback name.
func (k EventKind) String() string {
	switch k {
	case EventVerify:
		return "verify"
	case EventError:
		return "error"
	case EventExpire:
		return "expire"
	default:
		return "unknown"
	}
}

// Event is a single widget callback.
type Event struct {
	Kind  EventKind
	Token string // set for EventVerify
}

// Verified builds an EventVerify.
func Verified(token string) Event { return Event{Kind: EventVerify, Token: token} }

// Failed builds an EventError.
func Failed() Event { return Event{Kind: EventError} }

// Expired builds an EventExpire.
func Expired() Event { return Event{Kind: EventExpire} }

// Gate holds the last token received and its validity. The zero Gate is
// closed.
type Gate struct {
	token string
	valid bool
}

// Apply returns the gate after ev. A verify with an empty token closes the gate.
func (g Gate) Apply(ev Event) Gate {
	switch ev.Kind {
	case EventVerify:
		return Gate{token: ev.Token, valid: ev.Token != ""}
	case EventError, EventExpire:
		return Gate{token: g.token, valid: false}
	default:
		return g
	}
}

// Consume closes the gate once its token has been sent. Tokens are single use.
func (g Gate) Consume() Gate {
	return Gate{token: g.token, valid: false}
}

// Open reports whether a usable token is held.
func (g Gate) Open() bool {
	return g.valid && g.token != ""
}

// Token returns the last token and whether it is still valid.
func (g Gate) Token() (string, bool) {
	return g.token, g.Open()
}
