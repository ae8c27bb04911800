// Package interview runs timed voice Q&A sessions: every question is spoken,
// the answer is transcribed while a countdown runs, and the transcript is
// finalized when the countdown expires or the candidate submits.
package interview

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/skillsage/voice-interview/core/countdown"
	"github.com/skillsage/voice-interview/core/events"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Session struct {
	mu sync.Mutex

	questions               []string
	questionDuration        int
	recognitionRestartDelay time.Duration
	advancePause            time.Duration
	greeting                string
	closing                 string
	language                string

	clock     clockwork.Clock
	countdown countdownTimer
	scheduler delayScheduler
	delays    pendingDelays

	speechToText *speechToText
	textToSpeech *textToSpeech

	queue *eventQueue

	// Everything below is guarded by mu.

	phase            Phase
	active           []string
	questionIndex    int
	secondsRemaining int
	isSpeaking       bool
	isListening      bool
	// transcript is the authoritative buffer of final fragments, interim the
	// display-only tail.
	transcript string
	interim    string
	answers    []string
	finalized  []bool

	// generation is bumped on every transition. Asynchronous work is tagged
	// with the generation it was started in.
	generation uint64
	sessionID  string

	recognitionUnavailable bool
	synthesisUnavailable   bool
	// justEnded is set when the session reached PhaseEnded and the answer
	// set was not published yet.
	justEnded bool

	baseContext   context.Context
	sessionCtx    context.Context
	sessionCancel context.CancelFunc
	sessionSpan   trace.Span
	questionSpan  trace.Span
	questionCtx   context.Context

	orchestrateOptions OrchestrateOptions

	// dirty is set by control calls so the dispatch loop publishes a
	// snapshot even when no event follows.
	dirty atomic.Bool

	loopOnce  sync.Once
	closeOnce sync.Once
	started   atomic.Bool
	closeCh   chan struct{}
	done      chan struct{}
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		questionDuration:        DefaultQuestionDuration,
		recognitionRestartDelay: DefaultRecognitionRestartDelay,
		advancePause:            DefaultAdvancePause,
		greeting:                DefaultGreeting,
		closing:                 DefaultClosing,
		clock:                   clockwork.NewRealClock(),
		speechToText:            newSpeechToText(nil),
		textToSpeech:            newTextToSpeech(nil),
		queue:                   newEventQueue(),
		questionIndex:           NoQuestion,
		baseContext:             context.Background(),
		closeCh:                 make(chan struct{}),
		done:                    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.countdown = countdown.New(s.clock)
	s.scheduler = clockScheduler{clock: s.clock}
	s.secondsRemaining = s.questionDuration
	s.speechToText.language = s.language
	s.speechToText.SetEventEmitter(s.post)
	s.textToSpeech.SetEventEmitter(s.post)

	return s
}

// Orchestrate starts the dispatch loop applying collaborator events. It does
// not block. Cancelling ctx resets the session and stops the loop.
//
// Only the first call has an effect.
func (s *Session) Orchestrate(ctx context.Context, opts ...OrchestrateOption) {
	s.loopOnce.Do(func() {
		select {
		case <-s.closeCh:
			logger.Warn("session already closed, skipping Orchestrate")
			return
		default:
		}

		s.mu.Lock()
		s.orchestrateOptions = OrchestrateOptions{}
		for _, opt := range opts {
			opt(&s.orchestrateOptions)
		}
		if ctx != nil {
			s.baseContext = ctx
		}
		s.mu.Unlock()

		s.started.Store(true)
		go s.loop(s.baseContext)
	})
}

// Close resets the session, closes the speech clients and stops the
// dispatch loop. It waits for the loop to return.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		s.Reset()
		s.queue.Close()

		s.mu.Lock()
		ctx := s.baseContext
		s.mu.Unlock()
		if err := errors.Join(s.speechToText.Close(ctx), s.textToSpeech.Close(ctx)); err != nil {
			logger.Warn("failed to close speech clients", "error", err)
		}
	})

	if s.started.Load() {
		<-s.done
	}
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Answers returns a copy of the answer set, one entry per question of the
// current or last session.
func (s *Session) Answers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.answers)
}

func (s *Session) loop(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-s.closeCh:
			return
		case <-ctx.Done():
			s.Reset()
			s.drain()
			return
		case <-s.queue.Ready():
			s.drain()
		}
	}
}

// drain applies every queued event in order and publishes the resulting
// state. It runs on the dispatch goroutine.
func (s *Session) drain() {
	for {
		event, ok := s.queue.Pop()
		if !ok {
			break
		}
		s.dispatch(event)
	}

	if s.dirty.Swap(false) {
		s.publish(nil, s.State(), nil)
	}
}

func (s *Session) dispatch(event events.Event) {
	s.mu.Lock()
	applied := s.apply(event)
	if !applied {
		s.mu.Unlock()
		return
	}
	state := s.snapshot()
	s.dirty.Store(false)
	var answers []string
	if s.justEnded {
		s.justEnded = false
		answers = slices.Clone(s.answers)
	}
	s.mu.Unlock()

	s.publish(event, state, answers)
}

func (s *Session) publish(event events.Event, state State, endedAnswers []string) {
	s.mu.Lock()
	options := s.orchestrateOptions
	s.mu.Unlock()

	if event != nil && options.onEvent != nil {
		options.onEvent(event)
	}
	if options.onStateChanged != nil {
		options.onStateChanged(state)
	}
	if endedAnswers != nil && options.onSessionEnded != nil {
		options.onSessionEnded(endedAnswers)
	}
}

// post queues an event for the dispatch loop. Collaborators call it from any
// goroutine.
func (s *Session) post(event events.Event) {
	s.queue.Push(event)
}

// changed marks state modified outside the dispatch loop. It is called with
// mu held.
func (s *Session) changed() {
	s.dirty.Store(true)
	s.queue.signal()
}

func (s *Session) snapshot() State {
	state := State{
		SessionID:              s.sessionID,
		Phase:                  s.phase,
		QuestionIndex:          s.questionIndex,
		QuestionCount:          len(s.active),
		SecondsRemaining:       s.secondsRemaining,
		QuestionDuration:       s.questionDuration,
		IsSpeaking:             s.isSpeaking,
		IsListening:            s.isListening,
		LiveTranscript:         s.liveTranscript(),
		FinalizedAnswers:       s.answers,
		RecognitionUnavailable: s.recognitionUnavailable,
		SynthesisUnavailable:   s.synthesisUnavailable,
	}
	if state.QuestionCount == 0 {
		state.QuestionCount = len(s.questions)
	}
	if s.phase == PhaseAskingQuestion || s.phase == PhaseListeningForAnswer {
		state.Question = s.active[s.questionIndex]
	}
	return state.Clone()
}

func (s *Session) liveTranscript() string {
	return strings.TrimSpace(strings.Join([]string{s.transcript, s.interim}, " "))
}

func (s *Session) recordError(err error) {
	span := s.currentSpan()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (s *Session) currentSpan() trace.Span {
	if s.questionSpan != nil {
		return s.questionSpan
	}
	if s.sessionSpan != nil {
		return s.sessionSpan
	}
	return trace.SpanFromContext(s.baseContext)
}

// spanContext is the context handed to collaborators for the current phase.
func (s *Session) spanContext() context.Context {
	if s.questionCtx != nil {
		return s.questionCtx
	}
	if s.sessionCtx != nil {
		return s.sessionCtx
	}
	return s.baseContext
}
