package deepgram

import (
	"os"
	"time"
)

const (
	defaultListenURL         = "wss://api.deepgram.com/v1/listen"
	defaultModel             = "nova-3"
	defaultKeepAliveInterval = 5 * time.Second
)

type RecognizerOption func(*Recognizer)

// WithAPIKey sets the Deepgram API key. It defaults to DEEPGRAM_API_KEY.
func WithAPIKey(apiKey string) RecognizerOption {
	return func(r *Recognizer) {
		if apiKey != "" {
			r.apiKey = apiKey
		}
	}
}

// WithURL overrides the listen endpoint.
func WithURL(listenURL string) RecognizerOption {
	return func(r *Recognizer) {
		if listenURL != "" {
			r.listenURL = listenURL
		}
	}
}

func WithModel(model string) RecognizerOption {
	return func(r *Recognizer) {
		if model != "" {
			r.model = model
		}
	}
}

// WithKeepAliveInterval sets how long the socket may go without audio before
// a KeepAlive message is sent.
func WithKeepAliveInterval(interval time.Duration) RecognizerOption {
	return func(r *Recognizer) {
		if interval > 0 {
			r.keepAliveInterval = interval
		}
	}
}

func apiKeyFromEnv() string {
	apiKey, _ := os.LookupEnv("DEEPGRAM_API_KEY")
	return apiKey
}
