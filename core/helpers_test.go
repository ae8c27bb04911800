package interview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/skillsage/voice-interview/core/speechtotext"
	"github.com/skillsage/voice-interview/core/texttospeech"
)

var testQuestions = []string{
	"Tell me about yourself and your background.",
	"What are your greatest strengths and how do they apply to this role?",
	"Where do you see yourself in five years?",
}

type speechToTextStub struct {
	mu       sync.Mutex
	starts   int
	stops    int
	closes   int
	options  speechtotext.RecognitionOptions
	startErr error
	// onStart runs after a successful start, outside the stub's lock.
	onStart func(speechtotext.RecognitionOptions)
}

func (s *speechToTextStub) Start(_ context.Context, opts ...speechtotext.RecognitionOption) error {
	s.mu.Lock()
	s.starts++
	if s.startErr != nil {
		err := s.startErr
		s.mu.Unlock()
		return err
	}
	s.options = speechtotext.NewRecognitionOptions(opts...)
	options, onStart := s.options, s.onStart
	s.mu.Unlock()

	if onStart != nil {
		onStart(options)
	}
	return nil
}

func (s *speechToTextStub) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return nil
}

func (s *speechToTextStub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *speechToTextStub) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func (s *speechToTextStub) latest() speechtotext.RecognitionOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

func (s *speechToTextStub) startCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

func (s *speechToTextStub) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

type textToSpeechStub struct {
	mu       sync.Mutex
	spoken   []string
	cancels  int
	closes   int
	options  texttospeech.UtteranceOptions
	speakErr error
	// autoFinish reports every utterance as spoken from inside Speak.
	autoFinish bool
}

func (s *textToSpeechStub) Speak(_ context.Context, text string, opts ...texttospeech.UtteranceOption) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	if s.speakErr != nil {
		err := s.speakErr
		s.mu.Unlock()
		return err
	}
	s.options = texttospeech.NewUtteranceOptions(opts...)
	options, autoFinish := s.options, s.autoFinish
	s.mu.Unlock()

	if autoFinish {
		options.SpeechStartedCallback()
		options.SpeechEndedCallback()
	}
	return nil
}

func (s *textToSpeechStub) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
	return nil
}

func (s *textToSpeechStub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *textToSpeechStub) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// finish reports the latest utterance as spoken.
func (s *textToSpeechStub) finish() {
	s.mu.Lock()
	options := s.options
	s.mu.Unlock()
	options.SpeechStartedCallback()
	options.SpeechEndedCallback()
}

func (s *textToSpeechStub) fail(err error) {
	s.mu.Lock()
	options := s.options
	s.mu.Unlock()
	options.ErrorCallback(err)
}

func (s *textToSpeechStub) utterances() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

func (s *textToSpeechStub) cancelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

// countdownStub is driven by hand from tests.
type countdownStub struct {
	durations []int
	cancels   int
	running   bool
	onTick    func(int)
	onExpire  func()
	remaining int
}

func (c *countdownStub) Start(durationSeconds int, onTick func(int), onExpire func()) {
	c.durations = append(c.durations, durationSeconds)
	c.running = true
	c.onTick = onTick
	c.onExpire = onExpire
	c.remaining = durationSeconds
}

func (c *countdownStub) Cancel() {
	c.cancels++
	c.running = false
}

func (c *countdownStub) IsRunning() bool {
	return c.running
}

// tick advances the countdown by seconds, expiring it when it reaches zero.
func (c *countdownStub) tick(seconds int) {
	for range seconds {
		if !c.running {
			return
		}
		c.remaining--
		c.onTick(c.remaining)
		if c.remaining == 0 {
			c.running = false
			c.onExpire()
		}
	}
}

func (c *countdownStub) expire() {
	c.tick(c.remaining)
}

type scheduledDelay struct {
	delay   time.Duration
	f       func()
	stopped bool
}

// schedulerStub keeps delays until fire is called.
type schedulerStub struct {
	delays []*scheduledDelay
}

func (s *schedulerStub) after(d time.Duration, f func()) func() bool {
	delay := &scheduledDelay{delay: d, f: f}
	s.delays = append(s.delays, delay)
	return func() bool {
		wasPending := !delay.stopped
		delay.stopped = true
		return wasPending
	}
}

func (s *schedulerStub) pending() []*scheduledDelay {
	pending := []*scheduledDelay{}
	for _, delay := range s.delays {
		if !delay.stopped {
			pending = append(pending, delay)
		}
	}
	return pending
}

// fire runs every pending delay.
func (s *schedulerStub) fire() int {
	pending := s.pending()
	for _, delay := range pending {
		delay.stopped = true
		delay.f()
	}
	return len(pending)
}

type testHarness struct {
	session   *Session
	stt       *speechToTextStub
	tts       *textToSpeechStub
	countdown *countdownStub
	scheduler *schedulerStub
}

// newTestHarness builds a session whose timer and delays are driven by hand.
// Events are applied only when the test calls step.
func newTestHarness(t *testing.T, opts ...SessionOption) *testHarness {
	t.Helper()

	h := &testHarness{
		stt:       &speechToTextStub{},
		tts:       &textToSpeechStub{},
		countdown: &countdownStub{},
		scheduler: &schedulerStub{},
	}

	defaults := []SessionOption{
		WithQuestions(testQuestions...),
		WithSpeechToTextClient(h.stt),
		WithTextToSpeechClient(h.tts),
	}
	h.session = NewSession(append(defaults, opts...)...)
	h.session.countdown = h.countdown
	h.session.scheduler = h.scheduler
	return h
}

// step applies every queued event and checks the speaking/listening
// exclusion on the resulting state.
func (h *testHarness) step(t *testing.T) State {
	t.Helper()

	h.session.drain()
	state := h.session.State()
	if state.IsSpeaking && state.IsListening {
		t.Fatalf("expected speaking and listening to be exclusive, got both in phase %s", state.Phase)
	}
	return state
}

// listenTo drives a fresh harness to ListeningForAnswer(index).
func (h *testHarness) listenTo(t *testing.T, index int) State {
	t.Helper()

	if h.session.State().Phase == PhaseIdle {
		if err := h.session.Start(); err != nil {
			t.Fatalf("expected start to succeed, got %v", err)
		}
		h.tts.finish()
		h.step(t)
	}

	for {
		state := h.step(t)
		switch {
		case state.Phase == PhaseListeningForAnswer && state.QuestionIndex == index:
			return state
		case state.Phase == PhaseAskingQuestion:
			if h.scheduler.fire() == 0 {
				h.tts.finish()
			}
		case state.Phase == PhaseListeningForAnswer:
			if err := h.session.SubmitCurrentAnswerNow(); err != nil {
				t.Fatalf("expected submit to succeed, got %v", err)
			}
		default:
			t.Fatalf("expected to reach listening for question %d, got phase %s", index, state.Phase)
		}
	}
}

func waitForCondition(t *testing.T, timeout time.Duration, description string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("timed out waiting for %s", description)
}

var errSynthesis = errors.New("synthesis backend unavailable")
