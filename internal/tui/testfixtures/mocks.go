// Package testfixtures provides mock implementations and test utilities for TUI testing.
//
// This file contains mock implementations for the dependencies of the wizard drivers:
//   - MockSubmitter: records lead submissions and returns a configured error
//   - MockWidget: a captcha widget whose callbacks are fired by the test
//
// All mocks are thread-safe and provide verification methods for assertions in tests.
//
// Example usage:
//
//	func TestMyComponent(t *testing.T) {
//	    sub := testfixtures.NewMockSubmitter()
//	    sub.Err = errors.New("boom")
//
//	    widget := testfixtures.NewMockWidget()
//	    widget.Emit(captcha.Verified("tok"))
//
//	    // Use mocks in your test...
//	    require.Equal(t, 1, sub.CallCount())
//	}
package testfixtures

import (
	"context"
	"sync"

	"github.com/mark3labs/leadwizard/internal/captcha"
	"github.com/mark3labs/leadwizard/internal/submit"
)

// Submission is one recorded call to MockSubmitter.Submit.
type Submission struct {
	Path    string
	Payload submit.Payload
}

// MockSubmitter is a mock implementation of submit.Submitter.
type MockSubmitter struct {
	mu sync.Mutex

	// Error to return from Submit
	Err error
	// If non-nil, Submit blocks until the channel is closed or ctx is done
	Block chan struct{}

	calls []Submission
}

// NewMockSubmitter creates a MockSubmitter that succeeds.
func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{}
}

// Submit records the call and returns the configured error.
func (m *MockSubmitter) Submit(ctx context.Context, path string, p submit.Payload) error {
	m.mu.Lock()
	m.calls = append(m.calls, Submission{Path: path, Payload: p})
	block, err := m.Block, m.Err
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// CallCount returns how many times Submit was called.
func (m *MockSubmitter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded submissions.
func (m *MockSubmitter) Calls() []Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Submission, len(m.calls))
	copy(out, m.calls)
	return out
}

// Last returns the most recent submission.
func (m *MockSubmitter) Last() (Submission, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Submission{}, false
	}
	return m.calls[len(m.calls)-1], true
}

var _ submit.Submitter = (*MockSubmitter)(nil)

// MockWidget is a captcha.Widget driven by the test.
type MockWidget struct {
	mu     sync.Mutex
	events chan captcha.Event
	closed bool
}

// NewMockWidget creates a widget with a buffered event channel.
func NewMockWidget() *MockWidget {
	return &MockWidget{events: make(chan captcha.Event, 8)}
}

// Events implements captcha.Widget.
func (m *MockWidget) Events() <-chan captcha.Event {
	return m.events
}

// Emit fires a widget callback. It is a no-op after Close.
func (m *MockWidget) Emit(ev captcha.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.events <- ev
}

// Close implements captcha.Widget.
func (m *MockWidget) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

// Closed reports whether Close was called.
func (m *MockWidget) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ captcha.Widget = (*MockWidget)(nil)
