package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_Topics(t *testing.T) {
	enabledTopics = parseTopics("sim, rsi")

	assert.True(t, New("sim").Enabled(), "listed topic should be enabled")
	assert.True(t, New("rsi").Enabled(), "whitespace around topics is ignored")
	assert.False(t, New("sma").Enabled(), "unlisted topic should be disabled")
}

func TestLogger_AllTopics(t *testing.T) {
	enabledTopics = parseTopics("all")

	assert.True(t, New("anything").Enabled())
	assert.True(t, New("whatever").Enabled())
}

func TestLogger_NoTopics(t *testing.T) {
	enabledTopics = parseTopics("")

	assert.False(t, New("anything").Enabled())
}

func TestNewLogger_FormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")

	logger.Info("dropped")
	logger.Warn("kept", "symbol", "SPY")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"symbol":"SPY"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestSetup_TopicsKeepDefaultLevel(t *testing.T) {
	prev, prevTopic := slog.Default(), topicOut
	defer func() {
		slog.SetDefault(prev)
		topicOut = prevTopic
	}()
	enabledTopics = parseTopics("sim")
	defer func() { enabledTopics = parseTopics("") }()

	var buf bytes.Buffer
	logger := setup(&buf, "info", "text")

	logger.Debug("plain debug")
	slog.Debug("default debug")
	New("sim").Debug("sim step", "bar", 3)
	New("sma").Debug("sma step")

	out := buf.String()
	assert.NotContains(t, out, "plain debug")
	assert.NotContains(t, out, "default debug")
	assert.NotContains(t, out, "sma step")
	assert.Contains(t, out, "sim step")
	assert.Contains(t, out, "topic=sim")
}

