package interview

import "github.com/google/uuid"

// Start begins a new session from PhaseIdle or PhaseEnded. The greeting is
// spoken first, then the questions are asked in order.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.start(); err != nil {
		logger.Warn("start rejected", "phase", s.phase.String(), "error", err)
		return err
	}
	s.changed()
	return nil
}

// SubmitCurrentAnswerNow finalizes the answer to the current question without
// waiting for the countdown.
func (s *Session) SubmitCurrentAnswerNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseListeningForAnswer {
		logger.Warn("submit rejected", "phase", s.phase.String())
		return ErrNotListening
	}

	s.advance(s.questionIndex)
	s.changed()
	return nil
}

// Reset stops every collaborator and returns the session to PhaseIdle. It is
// valid in any phase. Answers of an unfinished session are discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	s.changed()
}

func newSessionID() string {
	return uuid.NewString()
}
