package events

const (
	KindRecognitionStarted Kind = "recognition.started"
	KindTranscriptInterim  Kind = "recognition.transcript_interim"
	KindTranscriptFinal    Kind = "recognition.transcript_final"
	KindRecognitionFailed  Kind = "recognition.failed"
	KindRecognitionEnded   Kind = "recognition.ended"
)

type RecognitionStarted struct{ Base }

func NewRecognitionStarted(generation uint64) RecognitionStarted {
	return RecognitionStarted{Base: NewBase(KindRecognitionStarted, generation)}
}

type TranscriptInterim struct {
	Base
	Transcript string
}

func NewTranscriptInterim(generation uint64, transcript string) TranscriptInterim {
	return TranscriptInterim{Base: NewBase(KindTranscriptInterim, generation), Transcript: transcript}
}

type TranscriptFinal struct {
	Base
	Transcript string
}

func NewTranscriptFinal(generation uint64, transcript string) TranscriptFinal {
	return TranscriptFinal{Base: NewBase(KindTranscriptFinal, generation), Transcript: transcript}
}

type RecognitionFailed struct {
	Base
	Code string
}

func NewRecognitionFailed(generation uint64, code string) RecognitionFailed {
	return RecognitionFailed{Base: NewBase(KindRecognitionFailed, generation), Code: code}
}

type RecognitionEnded struct{ Base }

func NewRecognitionEnded(generation uint64) RecognitionEnded {
	return RecognitionEnded{Base: NewBase(KindRecognitionEnded, generation)}
}
