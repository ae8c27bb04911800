package deepgram

import (
	"net/http"
	"os"
)

const defaultBaseURL = "https://api.deepgram.com"

type SpeakerOption func(*Speaker)

// WithAPIKey sets the Deepgram API key. It defaults to DEEPGRAM_API_KEY.
func WithAPIKey(apiKey string) SpeakerOption {
	return func(s *Speaker) {
		if apiKey != "" {
			s.apiKey = apiKey
		}
	}
}

// WithBaseURL overrides the scheme and host requests are sent to.
func WithBaseURL(baseURL string) SpeakerOption {
	return func(s *Speaker) {
		if baseURL != "" {
			s.baseURL = baseURL
		}
	}
}

func WithVoice(voice deepgramVoice) SpeakerOption {
	return func(s *Speaker) {
		s.voice = voice
	}
}

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(client *http.Client) SpeakerOption {
	return func(s *Speaker) {
		if client != nil {
			s.httpClient = client
		}
	}
}

func apiKeyFromEnv() string {
	apiKey, _ := os.LookupEnv("DEEPGRAM_API_KEY")
	return apiKey
}
