// Package config reads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type AudioBackend string

const (
	AudioBackendMiniaudio AudioBackend = "miniaudio"
	AudioBackendPortaudio AudioBackend = "portaudio"
	// AudioBackendNone runs sessions without speech, timers only.
	AudioBackendNone AudioBackend = "none"
)

const (
	EnvDeepgramAPIKey = "DEEPGRAM_API_KEY"
	EnvQuestions      = "INTERVIEW_QUESTIONS"
	EnvAudioBackend   = "INTERVIEW_AUDIO_BACKEND"
	EnvVoice          = "INTERVIEW_VOICE"
	EnvLanguage       = "INTERVIEW_LANGUAGE"

	DefaultLanguage = "en-US"
)

var ErrUnknownAudioBackend = errors.New("unknown audio backend")

type Config struct {
	DeepgramAPIKey string
	// QuestionsPath is a YAML question set. Empty means the built-in set.
	QuestionsPath string
	AudioBackend  AudioBackend
	Voice         string
	Language      string
}

// SpeechEnabled reports whether recognition and synthesis can be wired.
func (c Config) SpeechEnabled() bool {
	return c.DeepgramAPIKey != "" && c.AudioBackend != AudioBackendNone
}

// Load reads .env from the working directory when present and then the
// environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		DeepgramAPIKey: strings.TrimSpace(os.Getenv(EnvDeepgramAPIKey)),
		QuestionsPath:  os.Getenv(EnvQuestions),
		AudioBackend:   AudioBackendMiniaudio,
		Voice:          os.Getenv(EnvVoice),
		Language:       DefaultLanguage,
	}

	if backend := os.Getenv(EnvAudioBackend); backend != "" {
		parsed, err := ParseAudioBackend(backend)
		if err != nil {
			return Config{}, err
		}
		cfg.AudioBackend = parsed
	}
	if language := os.Getenv(EnvLanguage); language != "" {
		cfg.Language = language
	}

	return cfg, nil
}

func ParseAudioBackend(value string) (AudioBackend, error) {
	switch backend := AudioBackend(strings.ToLower(strings.TrimSpace(value))); backend {
	case AudioBackendMiniaudio, AudioBackendPortaudio, AudioBackendNone:
		return backend, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAudioBackend, value)
}
