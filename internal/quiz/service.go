package quiz

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokebattle/internal/random"
)

// ErrUnknownQuestion is returned when an answer names no question in its tier.
var ErrUnknownQuestion = errors.New("unknown question")

// ErrAlreadyAnswered is returned when a user answers the same question twice.
var ErrAlreadyAnswered = errors.New("question already answered")

// Rewarder prices an answer.
type Rewarder interface {
	Reward(difficulty string, correct bool) int64
}

// Wallet credits a user's balance.
type Wallet interface {
	AdjustMoney(ctx context.Context, userID uuid.UUID, delta int64) (int64, error)
}

// Prompt is a question as shown to a player: no answer, shuffled choices.
type Prompt struct {
	ID         string     `json:"id"`
	Difficulty Difficulty `json:"difficulty"`
	Question   string     `json:"question"`
	Choices    []string   `json:"choices"`
}

// Outcome is the result of answering a question. Answer is set only when
// the choice was correct.
type Outcome struct {
	Correct bool   `json:"correct"`
	Answer  string `json:"answer,omitempty"`
	Reward  int64  `json:"reward"`
	Balance int64  `json:"balance"`
}

// Service draws questions and settles answers.
type Service struct {
	bank     *Bank
	rng      random.Source
	rewarder Rewarder
	wallet   Wallet
	logger   *zap.Logger

	mu       sync.Mutex
	answered map[uuid.UUID]map[string]struct{}
}

// NewService creates a quiz Service.
//
// Precondition: all arguments must be non-nil.
func NewService(bank *Bank, rng random.Source, rewarder Rewarder, wallet Wallet, logger *zap.Logger) *Service {
	return &Service{
		bank:     bank,
		rng:      rng,
		rewarder: rewarder,
		wallet:   wallet,
		logger:   logger,
		answered: make(map[uuid.UUID]map[string]struct{}),
	}
}

// Next draws a random question from tier d, skipping ids in exclude. Once
// every question has been excluded the whole tier is eligible again.
//
// Postcondition: The prompt's choices are a permutation of the question's.
func (s *Service) Next(d Difficulty, exclude []string) (Prompt, error) {
	pool := s.bank.Questions(d)
	if len(pool) == 0 {
		return Prompt{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, d)
	}
	fresh := slices.DeleteFunc(slices.Clone(pool), func(q Question) bool {
		return slices.Contains(exclude, q.ID)
	})
	if len(fresh) == 0 {
		fresh = pool
	}
	q := fresh[s.rng.Intn(len(fresh))]
	choices := slices.Clone(q.Choices)
	random.Shuffle(s.rng, choices)
	return Prompt{ID: q.ID, Difficulty: d, Question: q.Text, Choices: choices}, nil
}

// Answer checks choice against question id of tier d and credits the
// reward to userID. Each user may answer a question once per process.
//
// Postcondition: Outcome.Balance is the user's balance after crediting.
// Returns ErrUnknownQuestion, ErrAlreadyAnswered, or the wallet's error
// unchanged. A wallet error leaves the question unanswered.
func (s *Service) Answer(ctx context.Context, userID uuid.UUID, d Difficulty, id, choice string) (Outcome, error) {
	q, ok := s.bank.Find(d, id)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s/%s", ErrUnknownQuestion, d, id)
	}
	key := string(d) + "/" + q.ID
	if !s.claim(userID, key) {
		return Outcome{}, fmt.Errorf("%w: %s", ErrAlreadyAnswered, key)
	}
	correct := q.IsCorrect(choice)
	reward := s.rewarder.Reward(string(d), correct)
	balance, err := s.wallet.AdjustMoney(ctx, userID, reward)
	if err != nil {
		s.release(userID, key)
		return Outcome{}, err
	}
	s.logger.Info("quiz answered",
		zap.String("user", userID.String()),
		zap.String("difficulty", string(d)),
		zap.String("question", id),
		zap.Bool("correct", correct),
		zap.Int64("reward", reward),
	)
	out := Outcome{Correct: correct, Reward: reward, Balance: balance}
	if correct {
		out.Answer = q.Correct
	}
	return out, nil
}

// claim marks key answered for userID, reporting false if it already was.
func (s *Service) claim(userID uuid.UUID, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen, ok := s.answered[userID]
	if !ok {
		seen = make(map[string]struct{})
		s.answered[userID] = seen
	}
	if _, dup := seen[key]; dup {
		return false
	}
	seen[key] = struct{}{}
	return true
}

func (s *Service) release(userID uuid.UUID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.answered[userID], key)
}
