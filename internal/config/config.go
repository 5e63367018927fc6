// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"
	_ "time/tzdata" // schedule.timezone must resolve without a system zoneinfo

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

// Pause flag backends.
const (
	PauseBackendFile   = "file"
	PauseBackendGitHub = "github"
	PauseBackendEnv    = "env"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig         `yaml:"server"`
	Items         []domain.TrackedItem `yaml:"items"`
	Fetch         FetchConfig          `yaml:"fetch"`
	Keywords      KeywordsConfig       `yaml:"keywords"`
	State         StateConfig          `yaml:"state"`
	Pause         PauseConfig          `yaml:"pause"`
	Notifications NotificationsConfig  `yaml:"notifications"`
	Interactions  InteractionsConfig   `yaml:"interactions"`
	Schedule      ScheduleConfig       `yaml:"schedule"`
	Logging       LoggingConfig        `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// FetchConfig defines how product pages are requested.
type FetchConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	UserAgent      string        `yaml:"user_agent"`
	AcceptLanguage string        `yaml:"accept_language"`
	Accept         string        `yaml:"accept"`
	Concurrency    int           `yaml:"concurrency"`

	// WarmUp fetches the first item once and waits WarmUpDelay before the
	// real checks.
	WarmUp      bool          `yaml:"warm_up"`
	WarmUpDelay time.Duration `yaml:"warm_up_delay"`
}

// KeywordsConfig overrides the classifier keyword lists. Empty lists keep the
// built-in defaults.
type KeywordsConfig struct {
	InStock                       []string `yaml:"in_stock"`
	OutOfStock                    []string `yaml:"out_of_stock"`
	IncludeTemporarilyUnavailable bool     `yaml:"include_temporarily_unavailable"`
}

// StateConfig defines where the availability snapshot lives.
type StateConfig struct {
	Path string `yaml:"path"`
}

// PauseConfig selects and configures the pause flag backend.
type PauseConfig struct {
	Backend string       `yaml:"backend"` // file, github, env
	File    string       `yaml:"file"`
	Env     string       `yaml:"env"`
	GitHub  GitHubConfig `yaml:"github"`
}

// GitHubConfig defines the repository variable used as pause flag.
type GitHubConfig struct {
	Token    string `yaml:"token"`
	Owner    string `yaml:"owner"`
	Repo     string `yaml:"repo"`
	Variable string `yaml:"variable"`
	BaseURL  string `yaml:"base_url"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Username   string        `yaml:"username"`
	MaxEmbeds  int           `yaml:"max_embeds"`
	Timeout    time.Duration `yaml:"timeout"`
}

// InteractionsConfig defines the Discord application used for slash commands.
type InteractionsConfig struct {
	PublicKey     string `yaml:"public_key"`
	ApplicationID string `yaml:"application_id"`
	BotToken      string `yaml:"bot_token"`
}

// ScheduleConfig defines the in-process cron schedule used by serve.
// An empty Crons list disables the scheduler.
type ScheduleConfig struct {
	Crons    []string `yaml:"crons"`
	Timezone string   `yaml:"timezone"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text, json
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML content into a validated Config.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyFetchDefaults(&cfg.Fetch, len(cfg.Items))
	applyPauseDefaults(&cfg.Pause)
	applyDiscordDefaults(&cfg.Notifications.Discord)
	applyLoggingDefaults(&cfg.Logging)

	if cfg.State.Path == "" {
		cfg.State.Path = "stock_state.json"
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "UTC"
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 5000
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyFetchDefaults(f *FetchConfig, items int) {
	if f.Timeout == 0 {
		f.Timeout = 15 * time.Second
	}
	if f.UserAgent == "" {
		f.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	}
	if f.AcceptLanguage == "" {
		f.AcceptLanguage = "ja-JP,ja;q=0.9"
	}
	if f.Accept == "" {
		f.Accept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
	if f.Concurrency <= 0 {
		f.Concurrency = max(items, 1)
	}
	if f.WarmUp && f.WarmUpDelay == 0 {
		f.WarmUpDelay = 3 * time.Second
	}
}

func applyPauseDefaults(p *PauseConfig) {
	if p.Backend == "" {
		p.Backend = PauseBackendFile
	}
	if p.File == "" {
		p.File = "paused.flag"
	}
	if p.Env == "" {
		p.Env = "STOCK_CHECK_PAUSED"
	}
	if p.GitHub.Variable == "" {
		p.GitHub.Variable = "STOCK_CHECK_PAUSED"
	}
}

func applyDiscordDefaults(d *DiscordConfig) {
	if d.Username == "" {
		d.Username = "Apple 在庫モニター"
	}
	if d.MaxEmbeds <= 0 || d.MaxEmbeds > 10 {
		d.MaxEmbeds = 10
	}
	if d.Timeout == 0 {
		d.Timeout = 10 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if len(cfg.Items) == 0 {
		errs = append(errs, fmt.Errorf("at least one item is required"))
	}

	seen := make(map[string]struct{}, len(cfg.Items))
	for i, it := range cfg.Items {
		if it.Code == "" {
			errs = append(errs, fmt.Errorf("items[%d].code is required", i))
		}
		if _, dup := seen[it.Code]; dup && it.Code != "" {
			errs = append(errs, fmt.Errorf("items[%d].code %q is duplicated", i, it.Code))
		}
		seen[it.Code] = struct{}{}

		if u, err := url.Parse(it.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("items[%d].url must be an absolute URL", i))
		}
	}

	switch cfg.Pause.Backend {
	case PauseBackendFile, PauseBackendEnv:
	case PauseBackendGitHub:
		if cfg.Pause.GitHub.Owner == "" || cfg.Pause.GitHub.Repo == "" {
			errs = append(
				errs,
				fmt.Errorf("pause.github.owner and pause.github.repo are required when backend is github"),
			)
		}
	default:
		errs = append(
			errs,
			fmt.Errorf(
				"pause.backend must be one of: file, github, env (got %q)",
				cfg.Pause.Backend,
			),
		)
	}

	for _, spec := range cfg.Schedule.Crons {
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Errorf("schedule.crons: invalid spec %q: %w", spec, err))
		}
	}
	if _, err := time.LoadLocation(cfg.Schedule.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("schedule.timezone: %w", err))
	}

	return errors.Join(errs...)
}

// RequireGitHubToken reports ConfigurationMissing when the github backend has
// no token. Reading needs none for public repositories; writing always does.
func (p *PauseConfig) RequireGitHubToken() error {
	if p.Backend == PauseBackendGitHub && p.GitHub.Token == "" {
		return fmt.Errorf("%w: pause.github.token", domain.ErrConfigurationMissing)
	}
	return nil
}

// RequireInteractions reports ConfigurationMissing when the Discord
// interactions endpoint cannot verify requests.
func (i *InteractionsConfig) RequireInteractions() error {
	if i.PublicKey == "" {
		return fmt.Errorf("%w: interactions.public_key", domain.ErrConfigurationMissing)
	}
	return nil
}
