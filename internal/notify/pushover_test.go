package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/emissary-ai/emissary/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func fastRetry() *apperrors.Policy {
	return &apperrors.Policy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		RetryIf:      apperrors.IsRetryable,
	}
}

func TestPush_DeliversFormPayload(t *testing.T) {
	var mu sync.Mutex
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		mu.Lock()
		got = map[string]string{
			"user":    r.PostForm.Get("user"),
			"token":   r.PostForm.Get("token"),
			"message": r.PostForm.Get("message"),
		}
		mu.Unlock()
	}))
	defer srv.Close()

	p := New(Config{URL: srv.URL, User: "u1", Token: "t1", Retry: fastRetry()}, quietLogger())
	p.Push(context.Background(), "New User Interest Notification")
	p.Flush()

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, got)
	assert.Equal(t, "u1", got["user"])
	assert.Equal(t, "t1", got["token"])
	assert.Equal(t, "New User Interest Notification", got["message"])
}

func TestPush_RetriesServerErrors(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	p := New(Config{URL: srv.URL, User: "u1", Token: "t1", Retry: fastRetry()}, quietLogger())
	p.Push(context.Background(), "hello")
	p.Flush()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestPush_NoRetryOnClientError(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := New(Config{URL: srv.URL, User: "u1", Token: "t1", Retry: fastRetry()}, quietLogger())
	p.Push(context.Background(), "hello")
	p.Flush()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, attempts, "4xx responses must not be retried")
}

func TestNew_DefaultsToSlowRetry(t *testing.T) {
	p := New(Config{User: "u1", Token: "t1"}, quietLogger())
	require.NotNil(t, p.cfg.Retry)
	assert.Equal(t, apperrors.SlowPolicy().InitialDelay, p.cfg.Retry.InitialDelay)
	assert.Equal(t, apperrors.SlowPolicy().MaxDelay, p.cfg.Retry.MaxDelay)
}

func TestPush_UnconfiguredDrops(t *testing.T) {
	p := New(Config{}, quietLogger())
	assert.False(t, p.Configured())
	// Must not panic or spawn work.
	p.Push(context.Background(), "hello")
	p.Flush()
}

func TestPush_FailureNeverSurfaces(t *testing.T) {
	// Endpoint that is not listening.
	p := New(Config{URL: "http://127.0.0.1:1", User: "u1", Token: "t1", Retry: fastRetry()}, quietLogger())
	p.Push(context.Background(), "hello")
	p.Flush()
	// Reaching here without an error or panic is the contract.
}
