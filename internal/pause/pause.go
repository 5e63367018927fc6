// Package pause provides the boolean flag that suspends scheduled checks.
//
// Three backends are available: a local flag file, a GitHub Actions
// repository variable, and a read-only environment variable.
package pause

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/donaldgifford/restock-monitor/internal/config"
)

// ErrReadOnly is returned by SetPaused on backends that cannot be written.
var ErrReadOnly = errors.New("pause flag backend is read-only")

// Flag reads and writes the pause flag.
type Flag interface {
	Paused(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, paused bool) error
	// Backend names the storage, e.g. "file", "github", "env".
	Backend() string
}

// ParseValue reports whether a stored flag value means paused. Only a
// case-insensitive "true" does; anything else, including empty, is running.
func ParseValue(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

// FormatValue renders a flag value for storage.
func FormatValue(paused bool) string {
	if paused {
		return "true"
	}
	return "false"
}

// New builds the Flag selected by cfg.Backend.
func New(cfg config.PauseConfig, log *slog.Logger) (Flag, error) {
	if log == nil {
		log = slog.Default()
	}

	switch cfg.Backend {
	case config.PauseBackendFile:
		return NewFileFlag(cfg.File), nil
	case config.PauseBackendEnv:
		return NewEnvFlag(cfg.Env, os.Getenv(cfg.Env)), nil
	case config.PauseBackendGitHub:
		if cfg.GitHub.Token == "" {
			log.Warn("pause.github.token not set, the pause flag is read-only")
		}
		f, err := NewGitHubFlag(
			cfg.GitHub.Owner,
			cfg.GitHub.Repo,
			WithToken(cfg.GitHub.Token),
			WithVariable(cfg.GitHub.Variable),
			WithBaseURL(cfg.GitHub.BaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("creating github pause flag: %w", err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown pause backend %q", cfg.Backend)
	}
}
