// Package quiz serves multiple-choice Pokémon trivia and pays coins for
// correct answers.
package quiz

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Difficulty is a question tier.
type Difficulty string

// Known difficulties.
const (
	Easy      Difficulty = "easy"
	Medium    Difficulty = "medium"
	Difficult Difficulty = "difficult"
)

// Difficulties lists the tiers in ascending order.
var Difficulties = []Difficulty{Easy, Medium, Difficult}

// ErrUnknownDifficulty is returned for a tier outside Difficulties.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ParseDifficulty validates a tier name (case-insensitive).
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Difficulties, d) {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

// Question is one multiple-choice question.
type Question struct {
	ID      string   `yaml:"id"`
	Text    string   `yaml:"question"`
	Correct string   `yaml:"correct"`
	Choices []string `yaml:"choices"`
}

// IsCorrect reports whether choice matches the answer, ignoring case and
// surrounding space.
func (q Question) IsCorrect(choice string) bool {
	return strings.EqualFold(strings.TrimSpace(choice), q.Correct)
}

// Bank holds the questions of every tier.
type Bank struct {
	questions map[Difficulty][]Question
}

// LoadBankFromFile reads and validates a YAML question bank.
//
// Precondition: path must point to a YAML file keyed by difficulty.
// Postcondition: Returns a validated Bank or a non-nil error.
func LoadBankFromFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question bank %s: %w", path, err)
	}
	return LoadBankFromBytes(data)
}

// LoadBankFromBytes parses and validates a question bank from YAML bytes.
//
// Postcondition: Returns a validated Bank or a non-nil error.
func LoadBankFromBytes(data []byte) (*Bank, error) {
	var raw map[string][]Question
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing question bank YAML: %w", err)
	}
	b := &Bank{questions: make(map[Difficulty][]Question, len(raw))}
	for key, qs := range raw {
		d, err := ParseDifficulty(key)
		if err != nil {
			return nil, fmt.Errorf("validating question bank: %w", err)
		}
		b.questions[d] = qs
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validating question bank: %w", err)
	}
	return b, nil
}

// Validate checks that every tier has questions, ids are unique within a
// tier, and every answer is among its choices.
func (b *Bank) Validate() error {
	var errs []error
	for _, d := range Difficulties {
		qs := b.questions[d]
		if len(qs) == 0 {
			errs = append(errs, fmt.Errorf("%s: no questions", d))
			continue
		}
		seen := make(map[string]bool, len(qs))
		for i, q := range qs {
			switch {
			case q.ID == "":
				errs = append(errs, fmt.Errorf("%s[%d]: missing id", d, i))
			case seen[q.ID]:
				errs = append(errs, fmt.Errorf("%s[%d]: duplicate id %q", d, i, q.ID))
			}
			seen[q.ID] = true
			if strings.TrimSpace(q.Text) == "" {
				errs = append(errs, fmt.Errorf("%s/%s: empty question", d, q.ID))
			}
			if len(q.Choices) < 2 {
				errs = append(errs, fmt.Errorf("%s/%s: needs at least two choices", d, q.ID))
			}
			if !slices.ContainsFunc(q.Choices, q.IsCorrect) {
				errs = append(errs, fmt.Errorf("%s/%s: answer %q not among choices", d, q.ID, q.Correct))
			}
		}
	}
	return errors.Join(errs...)
}

// Questions returns the questions of tier d.
func (b *Bank) Questions(d Difficulty) []Question {
	return b.questions[d]
}

// Find returns the question with id in tier d.
func (b *Bank) Find(d Difficulty, id string) (Question, bool) {
	for _, q := range b.questions[d] {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
