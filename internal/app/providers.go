// Package app assembles the battle service from configuration. Providers
// are composed by google/wire; see wire.go for the injector definitions.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokebattle/internal/api"
	"github.com/cory-johannsen/pokebattle/internal/battle"
	"github.com/cory-johannsen/pokebattle/internal/completion"
	"github.com/cory-johannsen/pokebattle/internal/config"
	"github.com/cory-johannsen/pokebattle/internal/dex"
	"github.com/cory-johannsen/pokebattle/internal/observability"
	"github.com/cory-johannsen/pokebattle/internal/pokeapi"
	"github.com/cory-johannsen/pokebattle/internal/quiz"
	"github.com/cory-johannsen/pokebattle/internal/random"
	"github.com/cory-johannsen/pokebattle/internal/scripting"
	"github.com/cory-johannsen/pokebattle/internal/server"
	"github.com/cory-johannsen/pokebattle/internal/storage/postgres"
)

// healthProbeInterval is how often the gRPC health status re-checks the database.
const healthProbeInterval = 15 * time.Second

// App is a fully wired server process.
type App struct {
	Lifecycle *server.Lifecycle
	Logger    *zap.Logger
}

// Run blocks until the process is signalled or a listener fails.
func (a *App) Run(ctx context.Context) error {
	return a.Lifecycle.Run(ctx)
}

// BattleSet provides everything needed to adjudicate battles by name.
var BattleSet = wire.NewSet(
	ProvideLogger,
	ProvidePokeAPI,
	ProvideCompleter,
	ProvideAdjudicator,
	ProvideArena,
)

// ServerSet provides the full HTTP and health server.
var ServerSet = wire.NewSet(
	BattleSet,
	ProvidePool,
	ProvideUserRepository,
	ProvideCollectionRepository,
	ProvideRandom,
	ProvideDex,
	ProvideRewardPolicy,
	ProvideQuestionBank,
	ProvideQuiz,
	ProvideTickets,
	ProvideHandler,
	ProvideHTTPService,
	ProvideHealthService,
	ProvideLifecycle,
	wire.Struct(new(App), "*"),
)

// ProvideLogger builds the process logger. The cleanup flushes it.
func ProvideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewServiceLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvidePool connects to the record store. The cleanup closes the pool.
func ProvidePool(ctx context.Context, cfg config.Config, logger *zap.Logger) (*postgres.Pool, func(), error) {
	start := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pool, pool.Close, nil
}

func ProvideUserRepository(pool *postgres.Pool) *postgres.UserRepository {
	return postgres.NewUserRepository(pool.DB())
}

func ProvideCollectionRepository(pool *postgres.Pool) *postgres.CollectionRepository {
	return postgres.NewCollectionRepository(pool.DB())
}

func ProvidePokeAPI(cfg config.Config, logger *zap.Logger) *pokeapi.Client {
	return pokeapi.NewClient(cfg.PokeAPI, logger)
}

func ProvideRandom() random.Source {
	return random.NewCryptoSource()
}

func ProvideDex(client *pokeapi.Client, rng random.Source, logger *zap.Logger) *dex.Dex {
	return dex.New(client, rng, logger)
}

func ProvideCompleter(cfg config.Config, logger *zap.Logger) *completion.AnthropicCompleter {
	return completion.NewAnthropicCompleter(cfg.Completion, logger)
}

func ProvideAdjudicator(c *completion.AnthropicCompleter, cfg config.Config, logger *zap.Logger) *battle.Adjudicator {
	return battle.NewAdjudicator(c, cfg.Completion, logger)
}

func ProvideArena(client *pokeapi.Client, judge *battle.Adjudicator, logger *zap.Logger) *battle.Arena {
	return battle.NewArena(client, judge, logger)
}

// ProvideRewardPolicy loads the configured reward script, or the default
// table when none is set. The cleanup closes the script state.
func ProvideRewardPolicy(cfg config.Config, logger *zap.Logger) (*scripting.RewardPolicy, func(), error) {
	p, err := scripting.LoadRewardPolicy(cfg.Quiz.RewardScript, cfg.Quiz.ScriptInstructionLimit, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("loading reward script: %w", err)
	}
	return p, p.Close, nil
}

func ProvideQuestionBank(cfg config.Config, logger *zap.Logger) (*quiz.Bank, error) {
	bank, err := quiz.LoadBankFromFile(cfg.Quiz.QuestionsFile)
	if err != nil {
		return nil, fmt.Errorf("loading quiz questions: %w", err)
	}
	for _, d := range quiz.Difficulties {
		logger.Debug("quiz tier loaded", zap.String("difficulty", string(d)), zap.Int("questions", len(bank.Questions(d))))
	}
	return bank, nil
}

func ProvideQuiz(bank *quiz.Bank, rng random.Source, policy *scripting.RewardPolicy, users *postgres.UserRepository, logger *zap.Logger) *quiz.Service {
	return quiz.NewService(bank, rng, policy, users, logger)
}

func ProvideTickets() *api.TicketLedger {
	return api.NewTicketLedger(api.CatchTicketTTL, nil)
}

func ProvideHandler(
	d *dex.Dex,
	arena *battle.Arena,
	users *postgres.UserRepository,
	collection *postgres.CollectionRepository,
	q *quiz.Service,
	pool *postgres.Pool,
	tickets *api.TicketLedger,
	logger *zap.Logger,
) *api.Handler {
	return api.NewHandler(api.Deps{
		Dex:        d,
		Battles:    arena,
		Users:      users,
		Collection: collection,
		Quiz:       q,
		Health:     pool,
		Tickets:    tickets,
	}, logger)
}

func ProvideHTTPService(cfg config.Config, h *api.Handler, logger *zap.Logger) *server.HTTPService {
	return server.NewHTTPService(cfg.HTTP, h.Router(), logger)
}

func ProvideHealthService(cfg config.Config, pool *postgres.Pool, logger *zap.Logger) *server.HealthService {
	return server.NewHealthService(cfg.GRPC, pool, healthProbeInterval, logger)
}

// ProvideLifecycle registers the listeners. The health service is added
// first so it stops last.
func ProvideLifecycle(httpSvc *server.HTTPService, healthSvc *server.HealthService, logger *zap.Logger) *server.Lifecycle {
	lc := server.NewLifecycle(logger)
	lc.Add("grpc-health", healthSvc)
	lc.Add("http-api", httpSvc)
	return lc
}
