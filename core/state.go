package interview

import (
	"slices"

	"github.com/jinzhu/copier"
)

// State is a point-in-time snapshot of a session, published after every
// applied event and control call.
type State struct {
	SessionID string
	Phase     Phase
	// QuestionIndex is the current question, or NoQuestion while idle or
	// ended.
	QuestionIndex int
	QuestionCount int
	Question      string

	SecondsRemaining int
	QuestionDuration int

	IsSpeaking  bool
	IsListening bool

	// LiveTranscript is the finalized transcript of the current question
	// followed by the interim tail. It is for display only.
	LiveTranscript string
	// FinalizedAnswers holds one entry per question once a session started.
	// Entries are empty until their question is finalized.
	FinalizedAnswers []string

	RecognitionUnavailable bool
	SynthesisUnavailable   bool
}

// Clone returns a deep copy of the snapshot.
func (s State) Clone() State {
	var clone State
	if err := copier.CopyWithOption(&clone, &s, copier.Option{DeepCopy: true}); err != nil {
		clone = s
		clone.FinalizedAnswers = slices.Clone(s.FinalizedAnswers)
	}
	return clone
}

// AnsweredCount returns the number of non-empty finalized answers.
func (s State) AnsweredCount() int {
	count := 0
	for _, answer := range s.FinalizedAnswers {
		if answer != "" {
			count++
		}
	}
	return count
}
