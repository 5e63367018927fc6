package cmd

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/restock-monitor/internal/classify"
	"github.com/donaldgifford/restock-monitor/internal/config"
	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

func testConfig(t *testing.T, extra string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	yml := `
items:
  - code: FYWH3J
    name: White
    url: https://example.com/FYWH3J
state:
  path: ` + filepath.Join(dir, "state.json") + `
pause:
  backend: file
  file: ` + filepath.Join(dir, "paused.flag") + `
logging:
  level: error
` + extra

	cfg, err := config.Parse([]byte(yml))
	require.NoError(t, err)
	return cfg
}

func TestKeywords(t *testing.T) {
	t.Parallel()

	def := classify.DefaultKeywords()

	tests := []struct {
		name          string
		in            config.KeywordsConfig
		wantInStock   []string
		wantOutLength int
	}{
		{
			name:          "defaults",
			wantInStock:   def.InStock,
			wantOutLength: len(def.OutOfStock),
		},
		{
			name:          "override in-stock list",
			in:            config.KeywordsConfig{InStock: []string{"Add to Bag"}},
			wantInStock:   []string{"Add to Bag"},
			wantOutLength: len(def.OutOfStock),
		},
		{
			name:          "temporarily unavailable phrases appended",
			in:            config.KeywordsConfig{IncludeTemporarilyUnavailable: true},
			wantInStock:   def.InStock,
			wantOutLength: len(def.OutOfStock) + len(classify.TemporarilyUnavailable()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			kw := keywords(tt.in)
			assert.Equal(t, tt.wantInStock, kw.InStock)
			assert.Len(t, kw.OutOfStock, tt.wantOutLength)
		})
	}

	assert.Len(t, classify.DefaultKeywords().OutOfStock, len(def.OutOfStock), "defaults must not be mutated")
}

func TestSnapshotItems(t *testing.T) {
	t.Parallel()

	items := snapshotItems(
		map[string]bool{"FYWJ3J": false, "FYWH3J": true, "OLD": false},
		[]domain.TrackedItem{{Code: "FYWH3J", Name: "White"}, {Code: "FYWJ3J", Name: "Desert"}},
	)

	require.Len(t, items, 3)
	assert.Equal(t, "FYWH3J", items[0].Code)
	assert.Equal(t, "White", items[0].Name)
	assert.True(t, items[0].InStock)
	assert.Equal(t, "OLD", items[2].Code)
	assert.Empty(t, items[2].Name)
}

func TestRequireRegistration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      config.InteractionsConfig
		wantErr string
	}{
		{name: "complete", in: config.InteractionsConfig{ApplicationID: "1", BotToken: "t"}},
		{name: "no application", in: config.InteractionsConfig{BotToken: "t"}, wantErr: "interactions.application_id"},
		{name: "no token", in: config.InteractionsConfig{ApplicationID: "1"}, wantErr: "interactions.bot_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := requireRegistration(tt.in)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfigurationMissing))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPrintReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := printReport(&buf, &domain.RunReport{
		Results: []domain.Classification{
			{Item: domain.TrackedItem{Code: "FYWH3J", Name: "White"}, Availability: domain.InStock, Reason: "in stock"},
			{Item: domain.TrackedItem{Code: "FYWJ3J", Name: "Desert"}, Availability: domain.Unknown, Reason: "HTTP 503"},
		},
		Notified:        []string{"FYWH3J"},
		SnapshotChanged: true,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "in_stock")
	assert.Contains(t, out, "HTTP 503")
	assert.Contains(t, out, "snapshot changed: yes")
	assert.NotContains(t, out, "\x1b[", "no colors when not writing to a terminal")
}

func TestPrintReport_Paused(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, &domain.RunReport{Paused: true}))
	assert.Contains(t, buf.String(), "paused")
}

func TestNewScheduler_Disabled(t *testing.T) {
	t.Parallel()

	a, err := newApp(testConfig(t, ""))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	sched, err := newScheduler(a)
	require.NoError(t, err)
	assert.Nil(t, sched)
}

func TestNewScheduler_Configured(t *testing.T) {
	t.Parallel()

	a, err := newApp(testConfig(t, `
schedule:
  timezone: UTC
  crons:
    - "*/5 5-9 * * *"
    - "0 14 * * *"
`))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	sched, err := newScheduler(a)
	require.NoError(t, err)
	require.NotNil(t, sched)
	assert.Len(t, sched.Entries(), 2)
}

func TestNewServer_Routes(t *testing.T) {
	t.Parallel()

	a, err := newApp(testConfig(t, ""))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	e, err := newServer(a)
	require.NoError(t, err)

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK, wantBody: `"ok"`},
		{method: http.MethodGet, path: "/readyz", wantStatus: http.StatusOK, wantBody: `"ready"`},
		{method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK, wantBody: "restock_"},
		{method: http.MethodGet, path: "/api/v1/pause", wantStatus: http.StatusOK, wantBody: `"backend":"file"`},
		{method: http.MethodGet, path: "/api/v1/snapshot", wantStatus: http.StatusOK, wantBody: `"items":[]`},
		{method: http.MethodGet, path: "/api/v1/check/last", wantStatus: http.StatusNotFound, wantBody: "no check has run yet"},
		{method: http.MethodGet, path: "/swagger/swagger.json", wantStatus: http.StatusOK, wantBody: "/api/v1/check"},
		{method: http.MethodPost, path: "/discord/interactions", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, http.NoBody))

		assert.Equal(t, tt.wantStatus, rec.Code, tt.path)
		if tt.wantBody != "" {
			assert.Contains(t, rec.Body.String(), tt.wantBody, tt.path)
		}
	}
}

func TestNewServer_InteractionsEnabled(t *testing.T) {
	t.Parallel()

	a, err := newApp(testConfig(t, `
interactions:
  public_key: `+strings.Repeat("ab", 32)+`
`))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	e, err := newServer(a)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/discord/interactions", strings.NewReader(`{"type":1}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewServer_BadPublicKey(t *testing.T) {
	t.Parallel()

	a, err := newApp(testConfig(t, `
interactions:
  public_key: not-hex
`))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = newServer(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactions.public_key")
}
