package interview

import (
	"context"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/skillsage/voice-interview/core/events"
	"github.com/skillsage/voice-interview/core/speechtotext"
	"github.com/skillsage/voice-interview/core/texttospeech"
)

const (
	DefaultQuestionDuration        = 60
	DefaultRecognitionRestartDelay = 500 * time.Millisecond
	DefaultAdvancePause            = 1500 * time.Millisecond

	DefaultGreeting = "Welcome to the AI interview session. Let's begin with the first question."
	DefaultClosing  = "Thank you! The interview session is complete. You can now review your answers."

	nextQuestionPrefix = "Next question: "
)

type SessionOption func(*Session)

// SpeechToText is a live recognizer. Start must not block until recognition
// ends; results are reported through the option callbacks. A recognizer is
// started again after it ended, so Start must be callable repeatedly.
type SpeechToText interface {
	Start(ctx context.Context, opts ...speechtotext.RecognitionOption) error
	Stop() error
}

func WithSpeechToTextClient(client SpeechToText) SessionOption {
	return func(s *Session) {
		s.speechToText.set(client)
	}
}

// TextToSpeech speaks one utterance at a time. Speak must not block until the
// utterance is spoken; progress is reported through the option callbacks.
type TextToSpeech interface {
	Speak(ctx context.Context, text string, opts ...texttospeech.UtteranceOption) error
	Cancel() error
}

func WithTextToSpeechClient(client TextToSpeech) SessionOption {
	return func(s *Session) {
		s.textToSpeech.set(client)
	}
}

// WithQuestions sets the ordered question list. The list is copied when a
// session starts, later changes do not affect a running session.
func WithQuestions(questions ...string) SessionOption {
	return func(s *Session) { s.questions = slices.Clone(questions) }
}

// WithQuestionDuration sets how many seconds the candidate has per answer.
// Values below one second are ignored.
func WithQuestionDuration(seconds int) SessionOption {
	return func(s *Session) {
		if seconds > 0 {
			s.questionDuration = seconds
		}
	}
}

// WithClock replaces the wall clock driving the countdown and the fixed
// delays.
func WithClock(clock clockwork.Clock) SessionOption {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithRecognitionRestartDelay(delay time.Duration) SessionOption {
	return func(s *Session) {
		if delay >= 0 {
			s.recognitionRestartDelay = delay
		}
	}
}

func WithAdvancePause(pause time.Duration) SessionOption {
	return func(s *Session) {
		if pause >= 0 {
			s.advancePause = pause
		}
	}
}

func WithGreeting(greeting string) SessionOption {
	return func(s *Session) {
		if greeting != "" {
			s.greeting = greeting
		}
	}
}

func WithClosing(closing string) SessionOption {
	return func(s *Session) {
		if closing != "" {
			s.closing = closing
		}
	}
}

type OrchestrateOptions struct {
	onStateChanged func(State)
	onSessionEnded func(answers []string)
	onEvent        func(events.Event)
}

type OrchestrateOption func(*OrchestrateOptions)

// WithStateCallback registers a callback for state snapshots. Snapshots are
// delivered in order, a snapshot older than one already delivered is skipped.
//
// The callback runs on the dispatch path and should not block.
func WithStateCallback(callback func(State)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onStateChanged = callback
	}
}

// WithSessionEndedCallback registers a callback receiving the answer set once
// a session reaches PhaseEnded. Reset sessions do not trigger it.
func WithSessionEndedCallback(callback func(answers []string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onSessionEnded = callback
	}
}

// WithEventCallback registers a callback for every event the session applied.
// Events dropped as stale are not reported.
func WithEventCallback(callback func(events.Event)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.onEvent = callback
	}
}

// WithLanguage sets the recognition language, a BCP 47 tag such as "en-US".
func WithLanguage(language string) SessionOption {
	return func(s *Session) {
		if language != "" {
			s.language = language
		}
	}
}
