package interview

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const scopeName = "github.com/skillsage/voice-interview/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

var (
	sessionsStarted     = newCounter("interview.sessions.started", "Interview sessions started")
	answersFinalized    = newCounter("interview.answers.finalized", "Answers written to the answer set")
	recognitionRestarts = newCounter("interview.recognition.restarts", "Recognizer restarts after an unexpected end")
)

func newCounter(name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		logger.Error("failed to create counter", "name", name, "error", err)
		return noop.Int64Counter{}
	}
	return counter
}
