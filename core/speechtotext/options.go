package speechtotext

import "github.com/skillsage/voice-interview/core/audio"

const DefaultLanguage = "en-US"

// ErrorCode classifies recognizer failures. The values follow the error codes
// browsers report for speech recognition so that any recognizer can be mapped
// onto them.
type ErrorCode string

const (
	ErrorNoSpeech     ErrorCode = "no-speech"
	ErrorAborted      ErrorCode = "aborted"
	ErrorAudioCapture ErrorCode = "audio-capture"
	ErrorNetwork      ErrorCode = "network"
	ErrorNotAllowed   ErrorCode = "not-allowed"
	ErrorUnknown      ErrorCode = "unknown"
)

type RecognitionOptions struct {
	// StartCallback is called once the recognizer is capturing audio.
	StartCallback func()
	// InterimResultCallback receives the current, still changing, tail of the
	// transcript.
	InterimResultCallback func(transcript string)
	// FinalResultCallback receives transcript fragments that will not change
	// anymore, in order.
	FinalResultCallback func(transcript string)
	// ErrorCallback is called when recognition fails. It is usually followed
	// by EndCallback.
	ErrorCallback func(code ErrorCode)
	// EndCallback is called exactly once per successful start, whether the
	// recognizer was stopped or ended on its own.
	EndCallback func()

	Language     string
	EncodingInfo audio.EncodingInfo
}

type RecognitionOption func(*RecognitionOptions)

// NewRecognitionOptions applies opts over defaults where every callback is a
// no-op, so recognizers can call them unconditionally.
func NewRecognitionOptions(opts ...RecognitionOption) RecognitionOptions {
	options := RecognitionOptions{
		StartCallback:         func() {},
		InterimResultCallback: func(string) {},
		FinalResultCallback:   func(string) {},
		ErrorCallback:         func(ErrorCode) {},
		EndCallback:           func() {},
		Language:              DefaultLanguage,
		EncodingInfo:          audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithStartCallback(callback func()) RecognitionOption {
	return func(o *RecognitionOptions) {
		if callback != nil {
			o.StartCallback = callback
		}
	}
}

func WithInterimResultCallback(callback func(transcript string)) RecognitionOption {
	return func(o *RecognitionOptions) {
		if callback != nil {
			o.InterimResultCallback = callback
		}
	}
}

func WithFinalResultCallback(callback func(transcript string)) RecognitionOption {
	return func(o *RecognitionOptions) {
		if callback != nil {
			o.FinalResultCallback = callback
		}
	}
}

func WithErrorCallback(callback func(code ErrorCode)) RecognitionOption {
	return func(o *RecognitionOptions) {
		if callback != nil {
			o.ErrorCallback = callback
		}
	}
}

func WithEndCallback(callback func()) RecognitionOption {
	return func(o *RecognitionOptions) {
		if callback != nil {
			o.EndCallback = callback
		}
	}
}

func WithLanguage(language string) RecognitionOption {
	return func(o *RecognitionOptions) {
		if language != "" {
			o.Language = language
		}
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) RecognitionOption {
	return func(o *RecognitionOptions) {
		if !encodingInfo.IsZero() {
			o.EncodingInfo = encodingInfo
		}
	}
}
