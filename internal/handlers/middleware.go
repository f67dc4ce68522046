package handlers

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tastebook/tastebook/internal/ratelimit"
	"github.com/tastebook/tastebook/internal/requestlog"
)

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	bytesSent  int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesSent += n
	return n, err
}

// LoggingMiddleware appends the request to the buffered audit log before
// any admission decision, and emits a structured line once the handler
// finishes.
func LoggingMiddleware(logger *logrus.Logger, buffer *requestlog.Buffer) func(http.Handler) http.Handler {
	logEntry := logger.WithField("component", "http_middleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			buffer.Record(start, getClientIP(r), r.Method, r.URL.Path)

			lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(lrw, r)

			logEntry.WithFields(logrus.Fields{
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    lrw.statusCode,
				"duration":  time.Since(start),
				"client_ip": getClientIP(r),
				"bytes":     lrw.bytesSent,
			}).Info("Request processed")
		})
	}
}

// RateLimitMiddleware rejects over-limit clients with 429. A limiter
// backend failure maps to 500, never to a silent admit.
func RateLimitMiddleware(logger *logrus.Logger, limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	logEntry := logger.WithField("component", "rate_limit")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, err := limiter.Allow(r.Context(), clientIP)
			if err != nil {
				logEntry.WithError(err).Error("Rate limit check failed")
				respondError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !allowed {
				respondError(w, http.StatusTooManyRequests,
					"Too many requests from this IP, please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func getClientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	if ip == "" {
		var err error
		ip, _, err = net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
	}
	if strings.Contains(ip, ",") {
		parts := strings.Split(ip, ",")
		ip = strings.TrimSpace(parts[0])
	}
	return ip
}
