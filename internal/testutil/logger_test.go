package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingTB struct {
	testing.TB
	lines []string
}

func (r *recordingTB) Helper()         {}
func (r *recordingTB) Name() string    { return "TestSample" }
func (r *recordingTB) Log(args ...any) { r.lines = append(r.lines, args[0].(string)) }

func TestNewTestLogger(t *testing.T) {
	tb := &recordingTB{TB: t}
	logger := NewTestLogger(tb)

	logger.Debug("sampled table", "table", "orders")
	logger.Info("done")

	if assert.Len(t, tb.lines, 2) {
		assert.Contains(t, tb.lines[0], "level=DEBUG")
		assert.Contains(t, tb.lines[0], `msg="sampled table"`)
		assert.Contains(t, tb.lines[0], "test=TestSample")
		assert.Contains(t, tb.lines[0], "table=orders")
		assert.NotContains(t, tb.lines[0], "\n")
	}
}
