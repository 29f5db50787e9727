// Package battle decides one-on-one Pokémon battles by asking an external
// completion service and reconciling its free-text reply with the two
// contestants' names.
package battle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokebattle/internal/completion"
	"github.com/cory-johannsen/pokebattle/internal/config"
	"github.com/cory-johannsen/pokebattle/internal/pokemon"
)

// Tie is the winner name reported when neither contestant wins.
const Tie = "tie"

// ErrInvalidProfile is returned when a contestant has no name.
var ErrInvalidProfile = errors.New("profile has no name")

// Side names the slot a winner came from.
type Side int

const (
	// SideNone is a tie, or a reply that cannot tell the slots apart.
	SideNone Side = iota
	SideA
	SideB
)

// Result is the outcome of one adjudication.
type Result struct {
	// Winner is one contestant's original-case name, or Tie.
	Winner string `json:"winnerName"`
	// Side is the winning slot. Two contestants with the same canonical
	// name win on SideNone since a name alone cannot pick between them.
	Side Side `json:"-"`
}

// IsTie reports whether the battle ended without a winner.
func (r Result) IsTie() bool { return r.Winner == Tie }

// AdjudicationError reports a failed call to, or unusable reply from, the
// completion service. It is never converted into a tie.
type AdjudicationError struct {
	Op  string
	Err error
}

func (e *AdjudicationError) Error() string {
	return fmt.Sprintf("adjudication %s: %v", e.Op, e.Err)
}

func (e *AdjudicationError) Unwrap() error { return e.Err }

// Completer is the completion backend used by an Adjudicator.
type Completer interface {
	Complete(ctx context.Context, req completion.Request) (string, error)
}

// Adjudicator turns two profiles into a Result.
type Adjudicator struct {
	completer   Completer
	system      string
	temperature float64
	maxTokens   int
	logger      *zap.Logger
}

// NewAdjudicator creates an Adjudicator using the sampling settings in cfg.
//
// Precondition: completer and logger must be non-nil.
func NewAdjudicator(completer Completer, cfg config.CompletionConfig, logger *zap.Logger) *Adjudicator {
	system := cfg.SystemPrompt
	if system == "" {
		system = config.DefaultSystemPrompt
	}
	maxTokens := cfg.MaxTokens
	if maxTokens < 1 {
		maxTokens = 16
	}
	return &Adjudicator{
		completer:   completer,
		system:      system,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// Adjudicate asks the completion service who wins a battle between a and b.
//
// Precondition: a.Name and b.Name must be non-blank.
// Postcondition: On success Result.Winner is a.Name, b.Name, or Tie. A failed
// call or an empty reply yields *AdjudicationError, never a tie.
func (j *Adjudicator) Adjudicate(ctx context.Context, a, b pokemon.Profile) (Result, error) {
	if a.CanonicalName() == "" || b.CanonicalName() == "" {
		return Result{}, ErrInvalidProfile
	}

	start := time.Now()
	reply, err := j.completer.Complete(ctx, completion.Request{
		System:      j.system,
		Prompt:      BuildPrompt(a, b),
		Temperature: j.temperature,
		MaxTokens:   j.maxTokens,
	})
	if err != nil {
		j.logger.Warn("adjudication request failed",
			zap.String("a", a.Name),
			zap.String("b", b.Name),
			zap.Error(err),
		)
		return Result{}, &AdjudicationError{Op: "complete", Err: err}
	}

	answer := firstLine(reply)
	if answer == "" {
		return Result{}, &AdjudicationError{Op: "parse", Err: completion.ErrEmptyCompletion}
	}

	res := Resolve(answer, a, b)
	j.logger.Info("battle adjudicated",
		zap.String("a", a.Name),
		zap.String("b", b.Name),
		zap.String("reply", answer),
		zap.String("winner", res.Winner),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// Resolve matches a normalised reply against both contestants. a is checked
// first, so identical names resolve to a's name with SideNone.
//
// Postcondition: Winner is a.Name, b.Name, or Tie; Side is SideNone for a tie.
func Resolve(answer string, a, b pokemon.Profile) Result {
	answer = strings.ToLower(strings.TrimSpace(answer))
	switch answer {
	case a.CanonicalName():
		if a.CanonicalName() == b.CanonicalName() {
			return Result{Winner: a.Name, Side: SideNone}
		}
		return Result{Winner: a.Name, Side: SideA}
	case b.CanonicalName():
		return Result{Winner: b.Name, Side: SideB}
	default:
		return Result{Winner: Tie}
	}
}

// firstLine returns the trimmed, lower-cased first non-blank line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return strings.ToLower(t)
		}
	}
	return ""
}
