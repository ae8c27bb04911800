// Package questions loads and validates interview question sets.
package questions

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

const DefaultQuestionDurationSeconds = 60

var (
	ErrNoQuestions     = errors.New("question set has no questions")
	ErrBlankQuestion   = errors.New("question set contains a blank question")
	ErrInvalidDuration = errors.New("question duration must be at least one second")
)

// QuestionSet is the file format for interview questions.
type QuestionSet struct {
	Title string `yaml:"title,omitempty" json:"title,omitempty" jsonschema:"description=Shown on the welcome screen"`
	// QuestionDurationSeconds is the answer time per question. Zero means the
	// default.
	QuestionDurationSeconds int      `yaml:"question_duration_seconds,omitempty" json:"question_duration_seconds,omitempty" jsonschema:"minimum=1,default=60"`
	Greeting                string   `yaml:"greeting,omitempty" json:"greeting,omitempty" jsonschema:"description=Spoken before the first question"`
	Closing                 string   `yaml:"closing,omitempty" json:"closing,omitempty" jsonschema:"description=Spoken after the last answer"`
	Questions               []string `yaml:"questions" json:"questions" jsonschema:"minItems=1"`
}

// Default returns the built-in question set.
func Default() QuestionSet {
	return QuestionSet{
		Title:                   "AI Interview",
		QuestionDurationSeconds: DefaultQuestionDurationSeconds,
		Greeting:                "Welcome to the AI interview session. Let's begin with the first question.",
		Closing:                 "Thank you! The interview session is complete. You can now review your answers.",
		Questions: []string{
			"Tell me about yourself and your background.",
			"What are your greatest strengths and how do they apply to this role?",
			"Where do you see yourself in five years?",
		},
	}
}

// Load reads and validates a YAML question set.
func Load(path string) (QuestionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QuestionSet{}, fmt.Errorf("reading question set: %w", err)
	}

	set, err := Parse(data)
	if err != nil {
		return QuestionSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

func Parse(data []byte) (QuestionSet, error) {
	var set QuestionSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return QuestionSet{}, fmt.Errorf("parsing question set: %w", err)
	}

	for i, question := range set.Questions {
		set.Questions[i] = strings.TrimSpace(question)
	}
	if set.QuestionDurationSeconds == 0 {
		set.QuestionDurationSeconds = DefaultQuestionDurationSeconds
	}

	if err := set.Validate(); err != nil {
		return QuestionSet{}, err
	}
	return set, nil
}

func (s QuestionSet) Validate() error {
	if len(s.Questions) == 0 {
		return ErrNoQuestions
	}
	for i, question := range s.Questions {
		if strings.TrimSpace(question) == "" {
			return fmt.Errorf("question %d: %w", i+1, ErrBlankQuestion)
		}
	}
	if s.QuestionDurationSeconds < 1 {
		return ErrInvalidDuration
	}
	return nil
}

// Schema returns the JSON schema of the question set file.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return reflector.Reflect(&QuestionSet{})
}
