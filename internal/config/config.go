// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prefix is prepended to every environment variable, e.g. EASIERGEN_API_KEY.
const Prefix = "EASIERGEN"

// Config holds application configuration.
// Fields use split_words so that only prefixed variables are consulted.
type Config struct {
	APIKey        string `split_words:"true"`
	BaseURL       string `split_words:"true" default:"http://localhost:8000" validate:"required,url"`
	IdeasPath     string `split_words:"true" default:"/api/task/research_task" validate:"required,startswith=/"`
	TransformPath string `split_words:"true" default:"/api/transform-text" validate:"required,startswith=/"`

	GenerateTimeout  time.Duration `split_words:"true" default:"240s" validate:"gt=0"`
	TransformTimeout time.Duration `split_words:"true" default:"30s" validate:"gt=0"`
	MaxRetries       int           `split_words:"true" default:"3" validate:"min=1,max=10"`
	InitialBackoff   time.Duration `split_words:"true" default:"1s" validate:"gt=0"`
	MaxBackoff       time.Duration `split_words:"true" default:"8s" validate:"gtefield=InitialBackoff"`

	// DB overrides the database path. Empty means ~/.easiergen/easiergen.db.
	DB       string `split_words:"true"`
	LogLevel string `split_words:"true" default:"info"`
	// User is the signed-in account. Empty means anonymous.
	User string `split_words:"true"`
}

// Load reads envFile (if it exists) into the process environment and then
// parses the prefixed variables. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// DBPath resolves the database location.
func (c *Config) DBPath() string {
	if c.DB != "" {
		return c.DB
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".easiergen", "easiergen.db")
	}
	return filepath.Join(home, ".easiergen", "easiergen.db")
}

// Init configures logging.
func (c *Config) Init() {
	InitLogger()
	lvl, _ := c.Level()
	SetLogLevel(lvl)

	log.Debug().
		Str("base_url", c.BaseURL).
		Bool("api_key_present", c.APIKey != "").
		Str("db", c.DBPath()).
		Str("user", c.User).
		Dur("generate_timeout", c.GenerateTimeout).
		Int("max_retries", c.MaxRetries).
		Msg("configuration loaded")
}
