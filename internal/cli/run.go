package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	interview "github.com/skillsage/voice-interview/core"
	"github.com/skillsage/voice-interview/core/audio/miniaudio"
	"github.com/skillsage/voice-interview/core/audio/portaudio"
	"github.com/skillsage/voice-interview/core/questions"
	sttdeepgram "github.com/skillsage/voice-interview/core/speechtotext/deepgram"
	ttsdeepgram "github.com/skillsage/voice-interview/core/texttospeech/deepgram"
	"github.com/skillsage/voice-interview/internal/config"
	"github.com/skillsage/voice-interview/internal/tui"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var logger = otelslog.NewLogger("github.com/skillsage/voice-interview/internal/cli")

type runFlags struct {
	questionsPath string
	duration      int
	backend       string
	voice         string
	language      string
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an interview session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}

			set := questions.Default()
			if cfg.QuestionsPath != "" {
				if set, err = questions.Load(cfg.QuestionsPath); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("duration") {
				set.QuestionDurationSeconds = flags.duration
				if err := set.Validate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, set)
		},
	}

	cmd.Flags().StringVar(&flags.questionsPath, "questions", "", "YAML question set file")
	cmd.Flags().IntVar(&flags.duration, "duration", questions.DefaultQuestionDurationSeconds, "answer time per question in seconds")
	cmd.Flags().StringVar(&flags.backend, "backend", "", "audio backend: miniaudio, portaudio or none")
	cmd.Flags().StringVar(&flags.voice, "voice", "", "Deepgram voice for questions")
	cmd.Flags().StringVar(&flags.language, "language", "", "recognition language")
	return cmd
}

// apply overrides cfg with the flags given on the command line.
func (f runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("questions") {
		cfg.QuestionsPath = f.questionsPath
	}
	if cmd.Flags().Changed("backend") {
		backend, err := config.ParseAudioBackend(f.backend)
		if err != nil {
			return err
		}
		cfg.AudioBackend = backend
	}
	if cmd.Flags().Changed("voice") {
		cfg.Voice = f.voice
	}
	if cmd.Flags().Changed("language") {
		cfg.Language = f.language
	}
	return nil
}

func run(ctx context.Context, cfg config.Config, set questions.QuestionSet) error {
	opts, closeDevice, err := speechOptions(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDevice(); err != nil {
			logger.Warn("failed to close audio device", "error", err)
		}
	}()

	opts = append(opts,
		interview.WithQuestions(set.Questions...),
		interview.WithQuestionDuration(set.QuestionDurationSeconds),
		interview.WithLanguage(cfg.Language),
	)
	if set.Greeting != "" {
		opts = append(opts, interview.WithGreeting(set.Greeting))
	}
	if set.Closing != "" {
		opts = append(opts, interview.WithClosing(set.Closing))
	}

	return tui.Run(ctx, interview.NewSession(opts...), set)
}

type audioDevice interface {
	sttdeepgram.AudioInput
	ttsdeepgram.AudioOutput
	Close() error
}

// speechOptions opens the configured audio device and wires Deepgram
// recognition and synthesis onto it. Without an API key or device the
// session runs on timers alone.
func speechOptions(cfg config.Config) ([]interview.SessionOption, func() error, error) {
	noop := func() error { return nil }
	if !cfg.SpeechEnabled() {
		logger.Info("speech disabled, running timers only",
			"audio_backend", string(cfg.AudioBackend),
			"api_key_set", cfg.DeepgramAPIKey != "")
		return nil, noop, nil
	}

	device, err := openAudioDevice(cfg.AudioBackend)
	if err != nil {
		return nil, noop, err
	}

	speakerOpts := []ttsdeepgram.SpeakerOption{ttsdeepgram.WithAPIKey(cfg.DeepgramAPIKey)}
	if cfg.Voice != "" {
		voice, ok := ttsdeepgram.ParseVoice(cfg.Voice)
		if !ok {
			return nil, noop, errors.Join(fmt.Errorf("unknown voice %q", cfg.Voice), device.Close())
		}
		speakerOpts = append(speakerOpts, ttsdeepgram.WithVoice(voice))
	}
	speaker, err := ttsdeepgram.NewSpeaker(device, speakerOpts...)
	if err != nil {
		return nil, noop, errors.Join(err, device.Close())
	}

	recognizer := sttdeepgram.NewRecognizer(device, sttdeepgram.WithAPIKey(cfg.DeepgramAPIKey))

	opts := []interview.SessionOption{
		interview.WithSpeechToTextClient(recognizer),
		interview.WithTextToSpeechClient(speaker),
	}
	return opts, device.Close, nil
}

func openAudioDevice(backend config.AudioBackend) (audioDevice, error) {
	switch backend {
	case config.AudioBackendMiniaudio:
		return miniaudio.NewClient()
	case config.AudioBackendPortaudio:
		return portaudio.NewClient(portaudio.DefaultBufferSize)
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownAudioBackend, backend)
}
