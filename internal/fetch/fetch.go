// Package fetch retrieves product pages. A failed request is a value, not an
// error: callers receive a Result carrying either a transport failure or a
// status code and body.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
)

// Result is the outcome of one page fetch. Err is set on transport failure;
// otherwise StatusCode and Body describe the response.
type Result struct {
	StatusCode int
	Body       string
	Err        error
}

// Failed reports whether the fetch never produced an HTTP response.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Fetcher retrieves a page by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) Result
}

// Headers are the fixed request headers sent with every fetch.
type Headers struct {
	UserAgent      string
	AcceptLanguage string
	Accept         string
}

// HTTPFetcher implements Fetcher over net/http with a per-request timeout.
type HTTPFetcher struct {
	client  *http.Client
	headers Headers
	timeout time.Duration
}

// Option configures the HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// WithHeaders sets the fixed request headers.
func WithHeaders(h Headers) Option {
	return func(f *HTTPFetcher) {
		f.headers = h
	}
}

// NewHTTPFetcher creates a new HTTPFetcher.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:  &http.Client{},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a single GET. There are no retries.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) Result {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Result{Err: fmt.Errorf("%w: creating request: %w", domain.ErrTransportFailure, err)}
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{Err: fmt.Errorf("%w: %w", domain.ErrTransportFailure, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{Err: fmt.Errorf("%w: reading body: %w", domain.ErrTransportFailure, err)}
	}

	return Result{StatusCode: resp.StatusCode, Body: string(body)}
}

func (f *HTTPFetcher) setHeaders(req *http.Request) {
	if f.headers.UserAgent != "" {
		req.Header.Set("User-Agent", f.headers.UserAgent)
	}
	if f.headers.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", f.headers.AcceptLanguage)
	}
	if f.headers.Accept != "" {
		req.Header.Set("Accept", f.headers.Accept)
	}
}
