package logging

import (
	"os"
	"strings"
)

// Logger is a debug logger that is silent unless its topic is listed in
// DEBUG_TOPICS (comma separated, or "all").
type Logger struct {
	topic   string
	enabled bool
}

var enabledTopics = parseTopics(os.Getenv("DEBUG_TOPICS"))

// topicOut always accepts debug records; the topic check gates them instead
// of the level of the default logger.
var topicOut = NewLogger(os.Stderr, "debug", "text")

func parseTopics(raw string) map[string]bool {
	topics := make(map[string]bool)
	if raw == "" {
		return topics
	}
	if raw == "all" {
		topics["*"] = true
		return topics
	}
	for _, topic := range strings.Split(raw, ",") {
		topic = strings.TrimSpace(topic)
		if topic != "" {
			topics[topic] = true
		}
	}
	return topics
}

// New creates a topic logger, e.g. var simLog = logging.New("sim").
func New(topic string) *Logger {
	return &Logger{
		topic:   topic,
		enabled: enabledTopics["*"] || enabledTopics[topic],
	}
}

func (l *Logger) Debug(msg string, args ...any) {
	if !l.enabled {
		return
	}
	topicOut.Debug(msg, append([]any{"topic", l.topic}, args...)...)
}

// Enabled lets callers skip building expensive log arguments.
func (l *Logger) Enabled() bool {
	return l.enabled
}
