package pause

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
)

// GitHubFlag stores the flag in a GitHub Actions repository variable so the
// workflow that runs the check can read it as vars.<NAME>.
type GitHubFlag struct {
	owner    string
	repo     string
	variable string
	token    string
	baseURL  string
	client   *http.Client
	gh       *github.Client
}

// GitHubOption configures a GitHubFlag.
type GitHubOption func(*GitHubFlag)

// WithToken sets the API token. Writes require one.
func WithToken(token string) GitHubOption {
	return func(g *GitHubFlag) {
		g.token = token
	}
}

// WithVariable overrides the variable name.
func WithVariable(name string) GitHubOption {
	return func(g *GitHubFlag) {
		if name != "" {
			g.variable = name
		}
	}
}

// WithBaseURL points the client at a different API root, e.g. GitHub
// Enterprise or a test server.
func WithBaseURL(u string) GitHubOption {
	return func(g *GitHubFlag) {
		g.baseURL = u
	}
}

// WithGitHubHTTPClient sets a custom HTTP client.
func WithGitHubHTTPClient(c *http.Client) GitHubOption {
	return func(g *GitHubFlag) {
		g.client = c
	}
}

// NewGitHubFlag creates a GitHubFlag for owner/repo.
func NewGitHubFlag(owner, repo string, opts ...GitHubOption) (*GitHubFlag, error) {
	g := &GitHubFlag{
		owner:    owner,
		repo:     repo,
		variable: "STOCK_CHECK_PAUSED",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}

	g.gh = github.NewClient(g.client)
	if g.token != "" {
		g.gh = g.gh.WithAuthToken(g.token)
	}

	if g.baseURL != "" {
		base := g.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing github base url: %w", err)
		}
		g.gh.BaseURL = u
	}

	return g, nil
}

// Backend implements Flag.
func (g *GitHubFlag) Backend() string { return "github" }

// Paused reads the repository variable. A missing variable means running.
func (g *GitHubFlag) Paused(ctx context.Context) (bool, error) {
	v, resp, err := g.gh.Actions.GetRepoVariable(ctx, g.owner, g.repo, g.variable)
	if isNotFound(resp, err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading github variable %s: %w", g.variable, err)
	}

	return ParseValue(v.Value), nil
}

// SetPaused updates the repository variable, creating it when it does not
// exist yet.
func (g *GitHubFlag) SetPaused(ctx context.Context, paused bool) error {
	if g.token == "" {
		return fmt.Errorf("setting github variable %s: %w", g.variable, ErrReadOnly)
	}

	v := &github.ActionsVariable{Name: g.variable, Value: FormatValue(paused)}

	resp, err := g.gh.Actions.UpdateRepoVariable(ctx, g.owner, g.repo, v)
	if err == nil {
		return nil
	}
	if !isNotFound(resp, err) {
		return fmt.Errorf("updating github variable %s: %w", g.variable, err)
	}

	if _, err := g.gh.Actions.CreateRepoVariable(ctx, g.owner, g.repo, v); err != nil {
		return fmt.Errorf("creating github variable %s: %w", g.variable, err)
	}

	return nil
}

func isNotFound(resp *github.Response, err error) bool {
	if err == nil {
		return false
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil &&
		ghErr.Response.StatusCode == http.StatusNotFound
}
