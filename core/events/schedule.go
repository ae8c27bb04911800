package events

const (
	KindRecognitionRestartDue Kind = "schedule.recognition_restart_due"
	KindQuestionDue           Kind = "schedule.question_due"
)

type RecognitionRestartDue struct{ Base }

func NewRecognitionRestartDue(generation uint64) RecognitionRestartDue {
	return RecognitionRestartDue{Base: NewBase(KindRecognitionRestartDue, generation)}
}

type QuestionDue struct{ Base }

func NewQuestionDue(generation uint64) QuestionDue {
	return QuestionDue{Base: NewBase(KindQuestionDue, generation)}
}
