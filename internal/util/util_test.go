package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseISODate(t *testing.T) {
	ts, err := ParseISODate("2023-03-31T15:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, "2023-04-01", FormatJST(ts, "2006-01-02"))

	day, err := ParseISODate("2023-04-10")
	require.NoError(t, err)
	assert.Equal(t, time.April, ToJST(day).Month())
	assert.Equal(t, 10, ToJST(day).Day())

	_, err = ParseISODate("2023-13-40")
	assert.Error(t, err)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "あいう...", TruncateString("あいうえお", 3))
	assert.Equal(t, "short", TruncateString("short", 10))
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpace("  a\n\tb   c "))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}
