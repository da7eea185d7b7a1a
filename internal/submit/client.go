// Package submit posts completed wizard payloads to the brokerage backend.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/leadwizard/internal/logger"
)

// GenericMessage is the only failure text shown to users.
const GenericMessage = "Something went wrong, please try again."

// ErrSubmission is the user-facing failure. Every error returned by Submit
// wraps it.
var ErrSubmission = errors.New(GenericMessage)

// DefaultTimeout bounds a single submission request.
const DefaultTimeout = 15 * time.Second

// Payload is the JSON body sent to an endpoint.
type Payload map[string]any

// StatusError records a non-2xx response. It is kept for logs and tests;
// users only ever see GenericMessage.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("post %s: unexpected status %d", e.Path, e.StatusCode)
}

// ClientError reports whether the backend rejected the request (4xx).
func (e *StatusError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Failure wraps the underlying cause of a failed submission.
type Failure struct {
	Cause error
}

func (f *Failure) Error() string { return GenericMessage }

// Unwrap exposes both the user-facing sentinel and the cause.
func (f *Failure) Unwrap() []error { return []error{ErrSubmission, f.Cause} }

// Submitter sends a payload to an endpoint path.
type Submitter interface {
	Submit(ctx context.Context, path string, p Payload) error
}

// Client posts payloads to a fixed base URL.
type Client struct {
	Base    string
	HTTP    *http.Client
	Timeout time.Duration
	log     *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTP = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.Timeout = d }
}

// NewClient creates a client for base.
func NewClient(base string, opts ...Option) *Client {
	c := &Client{
		Base:    strings.TrimRight(base, "/"),
		HTTP:    http.DefaultClient,
		Timeout: DefaultTimeout,
		log:     logger.Named("submit"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit performs exactly one POST of p to path. Only a 2xx status counts as
// success; the response body is ignored.
func (c *Client) Submit(ctx context.Context, path string, p Payload) error {
	if err := c.post(ctx, path, p); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.ClientError() {
			c.log.Warn("submission rejected: %v", err)
		} else {
			c.log.Error("submission failed: %v", err)
		}
		return &Failure{Cause: err}
	}
	c.log.Info("submission accepted: %s", path)
	return nil
}

func (c *Client) post(ctx context.Context, path string, in any) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return &StatusError{Path: path, StatusCode: resp.StatusCode}
	}
	return nil
}

var _ Submitter = (*Client)(nil)
