package events

import (
	"errors"
	"testing"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "synthesis started", event: NewSynthesisStarted(1), expected: KindSynthesisStarted},
		{name: "utterance spoken", event: NewUtteranceSpoken(1), expected: KindUtteranceSpoken},
		{name: "synthesis failed", event: NewSynthesisFailed(1, errors.New("boom")), expected: KindSynthesisFailed},
		{name: "recognition started", event: NewRecognitionStarted(1), expected: KindRecognitionStarted},
		{name: "transcript interim", event: NewTranscriptInterim(1, "hel"), expected: KindTranscriptInterim},
		{name: "transcript final", event: NewTranscriptFinal(1, "hello"), expected: KindTranscriptFinal},
		{name: "recognition failed", event: NewRecognitionFailed(1, "no-speech"), expected: KindRecognitionFailed},
		{name: "recognition ended", event: NewRecognitionEnded(1), expected: KindRecognitionEnded},
		{name: "timer ticked", event: NewTimerTicked(1, 59), expected: KindTimerTicked},
		{name: "timer expired", event: NewTimerExpired(1), expected: KindTimerExpired},
		{name: "recognition restart due", event: NewRecognitionRestartDue(1), expected: KindRecognitionRestartDue},
		{name: "question due", event: NewQuestionDue(1), expected: KindQuestionDue},
	}

	seen := map[Kind]string{}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
			if other, ok := seen[testCase.expected]; ok {
				t.Fatalf("expected kind %q to be unique, also used by %q", testCase.expected, other)
			}
			seen[testCase.expected] = testCase.name
		})
	}
}

func TestEventsCarryGeneration(t *testing.T) {
	event := NewTranscriptFinal(42, "answer")

	if got := event.Generation(); got != 42 {
		t.Fatalf("expected generation 42, got %d", got)
	}
	if event.Transcript != "answer" {
		t.Fatalf("expected transcript %q, got %q", "answer", event.Transcript)
	}
	if event.Timestamp().IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
}
