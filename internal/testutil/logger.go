// Package testutil provides shared test helpers: a logger that writes to
// the test log and semantic model fixtures used across packages.
package testutil

import (
	"log/slog"
	"strings"
	"testing"
)

// NewTestLogger returns a debug-level logger for code under test, such as a
// sampler or an adapter. Records go through t.Log, so they are attached to
// the test that produced them and only printed on failure or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	h := slog.NewTextHandler(tbWriter{tb: t}, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h).With("test", t.Name())
}

// tbWriter adapts testing.TB to io.Writer. The text handler emits one line
// per record, so each Write becomes one log entry.
type tbWriter struct {
	tb testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
