package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebook/tastebook/internal/ratelimit"
	"github.com/tastebook/tastebook/internal/requestlog"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewSlidingWindow(2, time.Minute)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimitMiddleware(quietLogger(), limiter)(next)

	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodGet, "/posts", nil)
		r.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code)
	}

	r := httptest.NewRequest(http.MethodGet, "/posts", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t,
		`{"error":"Too many requests from this IP, please try again later."}`,
		w.Body.String())

	// A different client address is unaffected.
	r = httptest.NewRequest(http.MethodGet, "/posts", nil)
	r.RemoteAddr = "10.0.0.2:5000"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("backend down")
}

func TestRateLimitMiddlewareBackendFailure(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not pass through on limiter failure")
	})
	handler := RateLimitMiddleware(quietLogger(), failingLimiter{})(next)

	r := httptest.NewRequest(http.MethodGet, "/posts", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type recordingSink struct {
	batches chan []byte
}

func (s *recordingSink) Write(content []byte) error {
	s.batches <- content
	return nil
}

func TestLoggingMiddlewareRecordsBeforeHandler(t *testing.T) {
	sink := &recordingSink{batches: make(chan []byte, 1)}
	buffer := requestlog.NewBuffer(quietLogger(), sink, 1)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := LoggingMiddleware(quietLogger(), buffer)(next)

	r := httptest.NewRequest(http.MethodGet, "/posts/7", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	select {
	case batch := <-sink.batches:
		line := string(batch)
		assert.Contains(t, line, "203.0.113.9")
		assert.Contains(t, line, "GET")
		assert.Contains(t, line, "/posts/7")
	case <-time.After(time.Second):
		t.Fatal("expected an audit line")
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:4000"
	assert.Equal(t, "192.0.2.1", getClientIP(r))

	r.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", getClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 198.51.100.7")
	assert.Equal(t, "203.0.113.9", getClientIP(r))
}
