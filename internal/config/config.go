// Package config provides YAML-based configuration loading for Matchyard.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets from the config file.
const (
	EnvDatabaseDSN     = "MATCHYARD_DATABASE_DSN"
	EnvJWTSecret       = "MATCHYARD_JWT_SECRET"
	EnvSlackBotToken   = "MATCHYARD_SLACK_BOT_TOKEN"
	EnvDiscordBotToken = "MATCHYARD_DISCORD_BOT_TOKEN"
)

// Config is the top-level Matchyard configuration, loaded from matchyard.yaml.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Reporting ReportingConfig `yaml:"reporting"`
	Log       LogConfig       `yaml:"log"`
	Digest    DigestConfig    `yaml:"digest"`
}

// DatabaseConfig holds connection settings for the marketplace database.
// DSN wins over the individual host/port/name fields when set.
type DatabaseConfig struct {
	Driver          string `yaml:"driver" validate:"oneof=postgres mysql sqlite"`
	DSN             string `yaml:"dsn"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port" validate:"gte=0,lte=65535"`
	Name            string `yaml:"name"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"sslmode"`
	ConnectAttempts uint   `yaml:"connect_attempts" validate:"gte=1,lte=20"`
}

// DashboardConfig controls the web dashboard.
type DashboardConfig struct {
	Port            int           `yaml:"port" validate:"gte=1,lte=65535"`
	JWTSecret       string        `yaml:"jwt_secret"`
	RequiredRole    string        `yaml:"required_role"`
	RefreshInterval time.Duration `yaml:"refresh_interval" validate:"gte=1s"`
}

// ReportingConfig tunes the activity feed.
type ReportingConfig struct {
	ActivityWindow time.Duration `yaml:"activity_window" validate:"gte=1h"`
	ActivityLimit  int           `yaml:"activity_limit" validate:"gte=1,lte=500"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// DigestConfig schedules chat digests.
type DigestConfig struct {
	Schedule string        `yaml:"schedule"`
	Slack    ChannelConfig `yaml:"slack"`
	Discord  ChannelConfig `yaml:"discord"`
}

// ChannelConfig identifies a chat channel and the bot allowed to post to it.
type ChannelConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Enabled reports whether both a token and a channel are configured.
func (c ChannelConfig) Enabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

// Load reads a YAML config file from path and returns a validated Config.
// A .env file next to the config file, or in the working directory, is loaded
// into the environment first so secrets can stay out of the YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env"); err != nil {
		return nil, err
	}
	return Parse(data)
}

// loadDotEnv loads the first existing env file. Variables already present in
// the environment are never overwritten.
func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
		return nil
	}
	return nil
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides secrets from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Dashboard.JWTSecret = v
	}
	if v := os.Getenv(EnvSlackBotToken); v != "" {
		c.Digest.Slack.BotToken = v
	}
	if v := os.Getenv(EnvDiscordBotToken); v != "" {
		c.Digest.Discord.BotToken = v
	}
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Host == "" && c.Database.Driver != "sqlite" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		switch c.Database.Driver {
		case "postgres":
			c.Database.Port = 5432
		case "mysql":
			c.Database.Port = 3306
		}
	}
	if c.Database.Driver == "postgres" && c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.ConnectAttempts == 0 {
		c.Database.ConnectAttempts = 5
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
	if c.Dashboard.RefreshInterval == 0 {
		c.Dashboard.RefreshInterval = 5 * time.Second
	}
	if c.Reporting.ActivityWindow == 0 {
		c.Reporting.ActivityWindow = 30 * 24 * time.Hour
	}
	if c.Reporting.ActivityLimit == 0 {
		c.Reporting.ActivityLimit = 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

var validate = newValidator()

// newValidator reports field errors by their YAML keys, so Namespace() reads
// "Config.database.connect_attempts".
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("config: validate: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, describeFieldError(fe))
		}
	}

	if c.Database.DSN == "" && c.Database.Name == "" {
		errs = append(errs, "database.dsn or database.name is required")
	}
	if c.Dashboard.RequiredRole != "" && c.Dashboard.JWTSecret == "" {
		errs = append(errs, "dashboard.required_role needs dashboard.jwt_secret")
	}
	if c.Digest.Schedule != "" && !c.Digest.Slack.Enabled() && !c.Digest.Discord.Enabled() {
		errs = append(errs, "digest.schedule needs a slack or discord channel")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// describeFieldError renders a validator error using the YAML path, e.g.
// "database.driver must be one of [postgres mysql sqlite]".
func describeFieldError(fe validator.FieldError) string {
	path := yamlPath(fe.Namespace())
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", path, fe.Param())
	case "gte":
		return fmt.Sprintf("%s is below the minimum (%s)", path, fe.Param())
	case "lte":
		return fmt.Sprintf("%s is above the maximum (%s)", path, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", path, fe.Tag())
	}
}

// yamlPath drops the root struct name from a namespace.
func yamlPath(ns string) string {
	_, path, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return path
}
