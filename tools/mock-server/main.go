// Package main implements a mock product page server for local development.
// Each product code has a stock state that selects the page served for it;
// states can be changed at runtime to simulate a restock without touching a
// real store.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Page states understood by the server.
const (
	stateInStock       = "in_stock"
	stateOutOfStock    = "out_of_stock"
	stateJSONLDInStock = "jsonld_in_stock"
	stateBlank         = "blank"
	stateGone          = "gone"
	stateError         = "error"
)

var validStates = map[string]struct{}{
	stateInStock:       {},
	stateOutOfStock:    {},
	stateJSONLDInStock: {},
	stateBlank:         {},
	stateGone:          {},
	stateError:         {},
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
  <meta charset="UTF-8">
  <title>{{.Code}} - 整備済製品</title>
  {{- if .JSONLD}}
  <script type="application/ld+json">{"@context":"https://schema.org","@type":"Product","offers":[{"@type":"Offer","availability":"https://schema.org/InStock"}]}</script>
  {{- end}}
</head>
<body>
  <h1>{{.Code}}</h1>
  {{- if eq .State "in_stock"}}
  <button type="submit">カートに入れる</button>
  {{- else if eq .State "out_of_stock"}}
  <p>現在ご注文いただけません</p>
  {{- end}}
</body>
</html>
`))

type pageData struct {
	Code   string
	State  string
	JSONLD bool
}

// catalog holds the current state per product code.
type catalog struct {
	mu     sync.RWMutex
	states map[string]string
}

func newCatalog(states map[string]string) *catalog {
	c := &catalog{states: make(map[string]string, len(states))}
	for code, st := range states {
		c.states[code] = st
	}
	return c
}

func (c *catalog) get(code string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.states[code]
	return st, ok
}

func (c *catalog) set(code, st string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[code] = st
}

func (c *catalog) snapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.states))
	for code, st := range c.states {
		out[code] = st
	}
	return out
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/states.json", "path to initial product states")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	states, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "products", len(states))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock product server", "addr", addr,
		"example", fmt.Sprintf("http://localhost:%d/jp/shop/product/%s/A", *port, firstCode(states)))

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger, newCatalog(states))),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, c *catalog) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /jp/shop/product/{code}/{variant}", pageHandler(logger, c))
	mux.HandleFunc("GET /_states", listHandler(c))
	mux.HandleFunc("PUT /_states/{code}", setHandler(logger, c))
	return mux
}

func loadFixture(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var states map[string]string
	if err := json.Unmarshal(data, &states); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	for code, st := range states {
		if _, ok := validStates[st]; !ok {
			return nil, fmt.Errorf("product %s: unknown state %q", code, st)
		}
	}
	return states, nil
}

func firstCode(states map[string]string) string {
	codes := make([]string, 0, len(states))
	for code := range states {
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return "CODE"
	}
	sort.Strings(codes)
	return codes[0]
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "ua", r.UserAgent())
		next.ServeHTTP(w, r)
	})
}

func pageHandler(logger *slog.Logger, c *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")
		st, ok := c.get(code)
		if !ok || st == stateGone {
			http.NotFound(w, r)
			return
		}
		if st == stateError {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := pageData{Code: code, State: st, JSONLD: st == stateJSONLDInStock}
		if err := pageTmpl.Execute(w, data); err != nil {
			logger.Error("rendering page", "code", code, "error", err)
			return
		}
		logger.Info("served page", "code", code, "state", st)
	}
}

func listHandler(c *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(c.snapshot())
	}
}

func setHandler(logger *slog.Logger, c *catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")
		body, err := io.ReadAll(io.LimitReader(r.Body, 64))
		if err != nil {
			http.Error(w, "unreadable body", http.StatusBadRequest)
			return
		}

		st := strings.TrimSpace(string(body))
		if _, ok := validStates[st]; !ok {
			http.Error(w, fmt.Sprintf("unknown state %q", st), http.StatusBadRequest)
			return
		}

		c.set(code, st)
		logger.Info("state changed", "code", code, "state", st)
		w.WriteHeader(http.StatusNoContent)
	}
}
