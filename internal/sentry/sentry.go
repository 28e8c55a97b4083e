package sentry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"nexus/internal/api"
	"nexus/internal/client/logger"
)

// ignoredErrors contains error messages that should be logged but not sent to Sentry.
// These come from the user's network, not from bugs in the client.
var ignoredErrors = []string{
	"connection refused",               // Backend not running
	"connection reset by peer",         // Network dropped mid-request
	"no such host",                     // DNS failure or typo in NEXUS_API_URL
	"broken pipe",                      // Write to closed connection
	"use of closed network connection", // Operation on already closed connection
	"EOF",                              // Server closed connection without a response
}

// Enabled reports whether Init configured a client.
func Enabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// Init configures error reporting. An empty dsn disables it.
func Init(dsn, release string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

// Flush waits for buffered events to be sent.
func Flush() {
	if Enabled() {
		sentry.Flush(2 * time.Second)
	}
}

// shouldIgnore checks if an error should be filtered out from Sentry.
// Backend responses below 500 are user-facing outcomes, not client faults.
func shouldIgnore(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if code := api.StatusCode(err); code != 0 && code < 500 {
		return true
	}

	type timeoutError interface{ Timeout() bool }
	var te timeoutError
	if errors.As(err, &te) && te.Timeout() {
		return true
	}

	errStr := err.Error()
	for _, ignored := range ignoredErrors {
		if strings.Contains(errStr, ignored) {
			return true
		}
	}
	return false
}

// CaptureError logs an error locally and reports it to Sentry.
func CaptureError(err error, message string) {
	logger.Error("%s: %v", message, err)
	if shouldIgnore(err) || !Enabled() {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetExtra("message", message)
		if code := api.StatusCode(err); code != 0 {
			scope.SetTag("http.status", fmt.Sprint(code))
		}
		sentry.CaptureException(err)
	})
}

// CaptureErrorf logs and reports an error with a formatted message.
func CaptureErrorf(err error, format string, args ...interface{}) {
	CaptureError(err, fmt.Sprintf(format, args...))
}
