package submit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SubmitSuccess(t *testing.T) {
	var got map[string]any
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/quote", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	err := c.Submit(context.Background(), "/api/quote", Payload{
		"firstName":    "Ada",
		"captchaToken": "tok",
		"dependents":   2,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, calls.Load())

	want := map[string]any{"firstName": "Ada", "captchaToken": "tok", "dependents": float64(2)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_EmptyBodyIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL).Submit(context.Background(), "/api/contact", Payload{}))
}

func TestClient_NonSuccessStatusIsGenericError(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusInternalServerError, http.StatusBadGateway, http.StatusMultipleChoices} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(status)
			}))
			defer srv.Close()

			err := NewClient(srv.URL).Submit(context.Background(), "/api/join", Payload{})
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrSubmission))
			require.Equal(t, GenericMessage, err.Error())

			var se *StatusError
			require.True(t, errors.As(err, &se))
			require.Equal(t, status, se.StatusCode)
			require.EqualValues(t, 1, calls.Load(), "no automatic retry")
		})
	}
}

func TestClient_TransportFailureIsGenericError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewClient(url).Submit(context.Background(), "/api/schedule", Payload{})
	require.True(t, errors.Is(err, ErrSubmission))
	require.Equal(t, GenericMessage, err.Error())
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	err := NewClient(srv.URL, WithTimeout(30*time.Millisecond)).Submit(context.Background(), "/api/quote", Payload{})
	require.True(t, errors.Is(err, ErrSubmission))
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestStatusError_ClientError(t *testing.T) {
	require.True(t, (&StatusError{StatusCode: 422}).ClientError())
	require.False(t, (&StatusError{StatusCode: 503}).ClientError())
}
