package mediator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestMediator(retryable StatusSet) *Mediator {
	return New(DefaultConfig(retryable, "test"))
}

func TestProcess_SuccessOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := newTestMediator(NewStatusSet(500, 502, 503))
	res := m.Process(context.Background(), srv.URL, []byte(`{}`), time.Second)

	assert.Equal(t, Success, res.Outcome)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestProcess_RetryableOnAllowedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := newTestMediator(NewStatusSet(500))
	res := m.Process(context.Background(), srv.URL, []byte(`{}`), time.Second)

	assert.Equal(t, Retryable, res.Outcome)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestProcess_SuccessOnNonRetryableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	m := newTestMediator(NewStatusSet(500))
	res := m.Process(context.Background(), srv.URL, []byte(`{}`), time.Second)

	assert.Equal(t, Success, res.Outcome)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestProcess_TransportFailureOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := newTestMediator(NewStatusSet(500))
	res := m.Process(context.Background(), srv.URL, []byte(`{}`), 5*time.Millisecond)

	assert.Equal(t, TransportFailure, res.Outcome)
	assert.Error(t, res.Err)
}

func TestProcess_TransportFailureOnUnreachableHost(t *testing.T) {
	m := newTestMediator(NewStatusSet(500))
	res := m.Process(context.Background(), "http://127.0.0.1:1", []byte(`{}`), time.Second)

	assert.Equal(t, TransportFailure, res.Outcome)
	assert.Error(t, res.Err)
}
