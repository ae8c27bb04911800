package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skillsage/voice-interview/core/events"
	"github.com/skillsage/voice-interview/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// apply applies a single event with mu held. It reports whether the event
// belonged to the current generation.
func (s *Session) apply(event events.Event) bool {
	if event.Generation() != s.generation {
		return false
	}

	switch e := event.(type) {
	case events.SynthesisStarted:
		s.isSpeaking = true
		s.isListening = false

	case events.UtteranceSpoken:
		s.utteranceFinished()

	case events.SynthesisFailed:
		err := fmt.Errorf("synthesis failed: %w", e.Err)
		logger.Warn("speech synthesis failed, continuing without it", "phase", s.phase.String(), "error", e.Err)
		s.recordError(err)
		s.utteranceFinished()

	case events.RecognitionStarted:
		if s.phase == PhaseListeningForAnswer && !s.isSpeaking {
			s.isListening = true
		}

	case events.TranscriptInterim:
		if s.phase == PhaseListeningForAnswer {
			s.interim = strings.TrimSpace(e.Transcript)
		}

	case events.TranscriptFinal:
		s.appendFinal(e.Transcript)

	case events.RecognitionFailed:
		logger.Warn("speech recognition failed", "question", s.questionIndex, "code", e.Code)
		s.recordError(fmt.Errorf("recognition failed: %s", e.Code))

	case events.RecognitionEnded:
		s.isListening = false
		if s.phase == PhaseListeningForAnswer && !s.isSpeaking {
			s.scheduleRecognitionRestart()
		}

	case events.RecognitionRestartDue:
		if s.phase == PhaseListeningForAnswer && !s.isSpeaking {
			recognitionRestarts.Add(s.spanContext(), 1)
			s.startRecognition()
		}

	case events.TimerTicked:
		if s.phase == PhaseListeningForAnswer && e.Remaining < s.secondsRemaining {
			s.secondsRemaining = max(e.Remaining, 0)
		}

	case events.TimerExpired:
		if s.phase == PhaseListeningForAnswer {
			s.secondsRemaining = 0
		}
		s.advance(s.questionIndex)

	case events.QuestionDue:
		if s.phase == PhaseAskingQuestion {
			s.speakQuestion()
		}

	default:
		return false
	}

	return true
}

func (s *Session) start() error {
	if s.phase.InProgress() {
		return ErrSessionInProgress
	}
	if len(s.questions) == 0 {
		return ErrNoQuestions
	}
	if s.phase == PhaseEnded {
		s.reset()
	}

	s.active = append([]string(nil), s.questions...)
	s.answers = make([]string, len(s.active))
	s.finalized = make([]bool, len(s.active))
	s.transcript, s.interim = "", ""
	s.recognitionUnavailable = false
	s.synthesisUnavailable = false
	s.sessionID = newSessionID()

	s.sessionCtx, s.sessionCancel = context.WithCancel(s.baseContext)
	s.sessionCtx, s.sessionSpan = tracer.Start(s.sessionCtx, "interview session",
		trace.WithAttributes(
			attribute.String("interview.session_id", s.sessionID),
			attribute.Int("interview.question_count", len(s.active)),
			attribute.Int("interview.question_duration", s.questionDuration),
		))
	sessionsStarted.Add(s.sessionCtx, 1)
	logger.Info("interview session started", "session_id", s.sessionID, "questions", len(s.active))

	s.generation++
	s.phase = PhaseGreeting
	s.questionIndex = 0
	s.secondsRemaining = s.questionDuration
	s.speak(s.greeting)
	return nil
}

// utteranceFinished moves on once whatever the current phase spoke is over.
func (s *Session) utteranceFinished() {
	s.isSpeaking = false

	switch s.phase {
	case PhaseGreeting:
		s.enterAskingQuestion(0, 0)
	case PhaseAskingQuestion:
		s.enterListening()
	case PhaseEnding:
		s.enterEnded()
	}
}

func (s *Session) enterAskingQuestion(index int, pause time.Duration) {
	s.generation++
	s.phase = PhaseAskingQuestion
	s.questionIndex = index
	s.transcript, s.interim = "", ""
	s.secondsRemaining = s.questionDuration
	s.startQuestionSpan(index)

	if pause > 0 {
		s.schedule(pause, events.NewQuestionDue(s.generation))
		return
	}
	s.speakQuestion()
}

func (s *Session) speakQuestion() {
	text := s.active[s.questionIndex]
	if s.questionIndex > 0 {
		text = nextQuestionPrefix + text
	}
	s.speak(text)
}

func (s *Session) enterListening() {
	s.generation++
	s.phase = PhaseListeningForAnswer
	s.transcript, s.interim = "", ""
	s.secondsRemaining = s.questionDuration

	generation := s.generation
	s.countdown.Start(s.questionDuration,
		func(remaining int) { s.post(events.NewTimerTicked(generation, remaining)) },
		func() { s.post(events.NewTimerExpired(generation)) },
	)
	s.startRecognition()
}

// advance finalizes the answer to question index and moves past it. It is a
// no-op unless the session is listening for that very question.
func (s *Session) advance(index int) bool {
	if s.phase != PhaseListeningForAnswer || s.questionIndex != index || s.finalized[index] {
		return false
	}

	s.countdown.Cancel()
	s.delays.stopAll()

	generation := s.generation
	queued := s.queue.TakeWhere(func(event events.Event) bool {
		_, isFinal := event.(events.TranscriptFinal)
		return isFinal && event.Generation() == generation
	})
	for _, event := range queued {
		s.appendFinal(event.(events.TranscriptFinal).Transcript)
	}

	s.stopRecognition()

	answer := strings.TrimSpace(s.transcript)
	s.answers[index] = answer
	s.finalized[index] = true
	answersFinalized.Add(s.spanContext(), 1)
	s.endQuestionSpan(answer)

	if index+1 < len(s.active) {
		s.enterAskingQuestion(index+1, s.advancePause)
	} else {
		s.enterEnding()
	}
	return true
}

func (s *Session) enterEnding() {
	s.generation++
	s.phase = PhaseEnding
	s.transcript, s.interim = "", ""
	s.speak(s.closing)
}

func (s *Session) enterEnded() {
	s.release()
	s.generation++
	s.phase = PhaseEnded
	s.questionIndex = NoQuestion
	s.justEnded = true

	if s.sessionSpan != nil {
		s.sessionSpan.SetAttributes(attribute.Int("interview.answered_count", s.answeredCount()))
		s.sessionSpan.End()
		s.sessionSpan = nil
	}
	logger.Info("interview session ended", "session_id", s.sessionID, "answered", s.answeredCount())
}

// reset stops every collaborator and returns to PhaseIdle, discarding the
// current transcript and answers.
func (s *Session) reset() {
	s.release()
	s.queue.Clear()
	s.generation++

	if s.phase.InProgress() {
		logger.Info("interview session reset", "session_id", s.sessionID, "phase", s.phase.String())
	}
	if s.sessionSpan != nil {
		s.sessionSpan.AddEvent("reset")
		s.sessionSpan.End()
		s.sessionSpan = nil
	}

	s.phase = PhaseIdle
	s.questionIndex = NoQuestion
	s.secondsRemaining = s.questionDuration
	s.isSpeaking, s.isListening = false, false
	s.transcript, s.interim = "", ""
	s.answers, s.finalized, s.active = nil, nil, nil
	s.justEnded = false
}

// release synchronously stops the countdown, pending delays and both speech
// capabilities.
func (s *Session) release() {
	s.countdown.Cancel()
	s.delays.stopAll()
	s.stopRecognition()

	if s.textToSpeech.IsSpeaking() {
		if err := s.textToSpeech.Cancel(); err != nil {
			s.recordError(err)
		}
	}
	s.isSpeaking = false

	s.endQuestionSpan("")
	if s.sessionCancel != nil {
		s.sessionCancel()
		s.sessionCancel = nil
	}
	s.sessionCtx = nil
}

func (s *Session) speak(text string) {
	s.isSpeaking = true
	s.isListening = false

	if !s.textToSpeech.isConfigured() && !s.synthesisUnavailable {
		s.synthesisUnavailable = true
		logger.Info("speech synthesis unavailable, utterances are skipped")
	}
	if err := s.textToSpeech.Speak(s.spanContext(), text, s.generation); err != nil {
		s.recordError(err)
	}
}

func (s *Session) startRecognition() {
	if !s.speechToText.isConfigured() {
		if !s.recognitionUnavailable {
			s.recognitionUnavailable = true
			logger.Info("speech recognition unavailable, listening is timer only")
		}
		return
	}

	if err := s.speechToText.Start(s.spanContext(), s.generation); err != nil {
		logger.Warn("failed to start speech recognition", "question", s.questionIndex, "error", err)
		s.recordError(err)
		if !errors.Is(err, speechtotext.ErrAlreadyRunning) {
			s.scheduleRecognitionRestart()
		}
	}
}

func (s *Session) stopRecognition() {
	if s.speechToText.IsActive() {
		if err := s.speechToText.Stop(); err != nil {
			s.recordError(err)
		}
	}
	s.isListening = false
}

func (s *Session) scheduleRecognitionRestart() {
	s.schedule(s.recognitionRestartDelay, events.NewRecognitionRestartDue(s.generation))
}

// schedule posts event once delay has elapsed.
func (s *Session) schedule(delay time.Duration, event events.Event) {
	if delay <= 0 {
		s.post(event)
		return
	}
	s.delays.add(s.scheduler.after(delay, func() { s.post(event) }))
}

func (s *Session) appendFinal(fragment string) {
	if s.phase != PhaseListeningForAnswer {
		return
	}

	s.interim = ""
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return
	}
	if s.transcript != "" {
		s.transcript += " "
	}
	s.transcript += fragment
}

func (s *Session) startQuestionSpan(index int) {
	s.endQuestionSpan("")
	s.questionCtx, s.questionSpan = tracer.Start(s.sessionCtxOrBase(), "question",
		trace.WithAttributes(attribute.Int("interview.question_index", index)))
}

func (s *Session) endQuestionSpan(answer string) {
	if s.questionSpan == nil {
		return
	}
	s.questionSpan.SetAttributes(attribute.Int("interview.answer_length", len(answer)))
	s.questionSpan.End()
	s.questionSpan = nil
	s.questionCtx = nil
}

func (s *Session) sessionCtxOrBase() context.Context {
	if s.sessionCtx != nil {
		return s.sessionCtx
	}
	return s.baseContext
}

func (s *Session) answeredCount() int {
	count := 0
	for _, answer := range s.answers {
		if answer != "" {
			count++
		}
	}
	return count
}
