package texttospeech

type UtteranceOptions struct {
	// SpeechStartedCallback is called when the first audio of the utterance is
	// handed to the output.
	SpeechStartedCallback func()
	// SpeechEndedCallback is called when the utterance has finished playing.
	// It is not called for cancelled utterances.
	SpeechEndedCallback func()
	// ErrorCallback is called instead of SpeechEndedCallback when the
	// utterance could not be spoken.
	ErrorCallback func(error)
}

type UtteranceOption func(*UtteranceOptions)

// NewUtteranceOptions applies opts over no-op callbacks.
func NewUtteranceOptions(opts ...UtteranceOption) UtteranceOptions {
	options := UtteranceOptions{
		SpeechStartedCallback: func() {},
		SpeechEndedCallback:   func() {},
		ErrorCallback:         func(error) {},
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithSpeechStartedCallback(callback func()) UtteranceOption {
	return func(o *UtteranceOptions) {
		if callback != nil {
			o.SpeechStartedCallback = callback
		}
	}
}

func WithSpeechEndedCallback(callback func()) UtteranceOption {
	return func(o *UtteranceOptions) {
		if callback != nil {
			o.SpeechEndedCallback = callback
		}
	}
}

func WithErrorCallback(callback func(error)) UtteranceOption {
	return func(o *UtteranceOptions) {
		if callback != nil {
			o.ErrorCallback = callback
		}
	}
}
