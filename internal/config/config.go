// Package config provides Viper-based configuration loading for the battle service.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// POKEBATTLE_COMPLETION_API_KEY overrides completion.api_key.
const EnvPrefix = "POKEBATTLE"

// ServerConfig holds top-level server settings.
type ServerConfig struct {
	// Mode is the server operation mode; only "standalone" is supported.
	Mode string `mapstructure:"mode"`
	// Name identifies this instance in logs.
	Name string `mapstructure:"name"`
}

// HTTPConfig holds JSON API listener settings.
type HTTPConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// GRPCConfig holds the gRPC health-check listener settings.
type GRPCConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the "host:port" gRPC address.
func (g GRPCConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}

// DatabaseConfig holds PostgreSQL connection settings for the record store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// PokeAPIConfig holds settings for the upstream Pokémon data source.
type PokeAPIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// MoveLimit is how many of a Pokémon's moves are resolved per profile.
	MoveLimit int `mapstructure:"move_limit"`
	// MaxParallel bounds concurrent upstream requests per profile.
	MaxParallel int `mapstructure:"max_parallel"`
}

// CompletionConfig holds settings for the chat-completion service.
type CompletionConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	Temperature  float64       `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SystemPrompt string        `mapstructure:"system_prompt"`
}

// QuizConfig holds quiz content locations.
type QuizConfig struct {
	QuestionsFile string `mapstructure:"questions_file"`
	// RewardScript is an optional Lua file defining reward(difficulty, correct).
	RewardScript           string `mapstructure:"reward_script"`
	ScriptInstructionLimit int    `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	GRPC       GRPCConfig       `mapstructure:"grpc"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	PokeAPI    PokeAPIConfig    `mapstructure:"pokeapi"`
	Completion CompletionConfig `mapstructure:"completion"`
	Quiz       QuizConfig       `mapstructure:"quiz"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, check := range []func() error{
		func() error { return validateServer(c.Server) },
		func() error { return validateHTTP(c.HTTP) },
		func() error { return validateGRPC(c.GRPC) },
		func() error { return validateDatabase(c.Database) },
		func() error { return validateLogging(c.Logging) },
		func() error { return validatePokeAPI(c.PokeAPI) },
		func() error { return validateCompletion(c.Completion) },
		func() error { return validateQuiz(c.Quiz) },
	} {
		if err := check(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.Mode != "standalone" {
		return fmt.Errorf("server.mode must be one of [standalone], got %q", s.Mode)
	}
	if s.Name == "" {
		return errors.New("server.name must not be empty")
	}
	return nil
}

func validatePort(key string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be 1-65535, got %d", key, port)
	}
	return nil
}

func joinErrs(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHTTP(h HTTPConfig) error {
	var errs []string
	if err := validatePort("http.port", h.Port); err != nil {
		errs = append(errs, err.Error())
	}
	if h.ReadTimeout < 0 {
		errs = append(errs, "http.read_timeout must not be negative")
	}
	if h.WriteTimeout < 0 {
		errs = append(errs, "http.write_timeout must not be negative")
	}
	if h.ShutdownTimeout < 0 {
		errs = append(errs, "http.shutdown_timeout must not be negative")
	}
	return joinErrs(errs)
}

func validateGRPC(g GRPCConfig) error {
	var errs []string
	if g.Host == "" {
		errs = append(errs, "grpc.host must not be empty")
	}
	if err := validatePort("grpc.port", g.Port); err != nil {
		errs = append(errs, err.Error())
	}
	return joinErrs(errs)
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if err := validatePort("database.port", d.Port); err != nil {
		errs = append(errs, err.Error())
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	return joinErrs(errs)
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validatePokeAPI(p PokeAPIConfig) error {
	var errs []string
	if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("pokeapi.base_url must be an absolute URL, got %q", p.BaseURL))
	}
	if p.Timeout <= 0 {
		errs = append(errs, "pokeapi.timeout must be positive")
	}
	if p.MoveLimit < 0 {
		errs = append(errs, fmt.Sprintf("pokeapi.move_limit must be >= 0, got %d", p.MoveLimit))
	}
	if p.MaxParallel < 1 {
		errs = append(errs, fmt.Sprintf("pokeapi.max_parallel must be >= 1, got %d", p.MaxParallel))
	}
	return joinErrs(errs)
}

func validateCompletion(c CompletionConfig) error {
	var errs []string
	if c.APIKey == "" {
		errs = append(errs, "completion.api_key must not be empty (set "+EnvPrefix+"_COMPLETION_API_KEY)")
	}
	if c.Model == "" {
		errs = append(errs, "completion.model must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		errs = append(errs, fmt.Sprintf("completion.temperature must be within [0, 1], got %g", c.Temperature))
	}
	if c.MaxTokens < 1 {
		errs = append(errs, fmt.Sprintf("completion.max_tokens must be >= 1, got %d", c.MaxTokens))
	}
	if c.Timeout < 0 {
		errs = append(errs, "completion.timeout must not be negative")
	}
	return joinErrs(errs)
}

func validateQuiz(q QuizConfig) error {
	var errs []string
	if q.QuestionsFile == "" {
		errs = append(errs, "quiz.questions_file must not be empty")
	}
	if q.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("quiz.script_instruction_limit must be >= 0, got %d", q.ScriptInstructionLimit))
	}
	return joinErrs(errs)
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v, err := read(path)
	if err != nil {
		return Config{}, err
	}
	return LoadFromViper(v)
}

// LoadDatabase reads only the database section, with the same defaults and
// environment overrides as Load. Operator tools use it so that settings they
// never touch, such as the completion API key, cannot block them.
//
// Postcondition: Returns a valid DatabaseConfig or a non-nil error.
func LoadDatabase(path string) (DatabaseConfig, error) {
	v, err := read(path)
	if err != nil {
		return DatabaseConfig{}, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DatabaseConfig{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := validateDatabase(cfg.Database); err != nil {
		return DatabaseConfig{}, err
	}
	return cfg.Database, nil
}

func read(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return v, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultSystemPrompt is the system instruction sent with every adjudication.
const DefaultSystemPrompt = "You are a Pokemon Battle Expert. Only respond with the winner's name in lowercase or 'tie'. No reasoning or extra text. One word only."

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "standalone")
	v.SetDefault("server.name", "pokebattle")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "90s")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50051)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "pokebattle")
	v.SetDefault("database.password", "pokebattle")
	v.SetDefault("database.name", "pokebattle")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("pokeapi.base_url", "https://pokeapi.co/api/v2/")
	v.SetDefault("pokeapi.timeout", "10s")
	v.SetDefault("pokeapi.move_limit", 10)
	v.SetDefault("pokeapi.max_parallel", 4)

	v.SetDefault("completion.api_key", "")
	v.SetDefault("completion.base_url", "")
	v.SetDefault("completion.model", "claude-3-5-haiku-latest")
	v.SetDefault("completion.temperature", 0.2)
	v.SetDefault("completion.max_tokens", 16)
	v.SetDefault("completion.timeout", "60s")
	v.SetDefault("completion.system_prompt", DefaultSystemPrompt)

	v.SetDefault("quiz.questions_file", "content/quiz/questions.yaml")
	v.SetDefault("quiz.reward_script", "")
	v.SetDefault("quiz.script_instruction_limit", 0)
}
