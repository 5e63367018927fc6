package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/donaldgifford/restock-monitor/internal/metrics"
)

// maxEmbedsPerMessage is the Discord limit for embeds in one webhook call.
const maxEmbedsPerMessage = 10

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	username   string
	maxEmbeds  int
	client     *http.Client
	log        *slog.Logger
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		maxEmbeds:  maxEmbedsPerMessage,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// WithUsername overrides the webhook's display name.
func WithUsername(name string) DiscordOption {
	return func(d *DiscordNotifier) {
		d.username = name
	}
}

// WithMaxEmbeds sets the chunk size. Values outside 1..10 are clamped.
func WithMaxEmbeds(n int) DiscordOption {
	return func(d *DiscordNotifier) {
		d.maxEmbeds = min(max(n, 1), maxEmbedsPerMessage)
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) DiscordOption {
	return func(d *DiscordNotifier) {
		d.log = l
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Footer      *discordEmbedFooter `json:"footer,omitempty"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

// SendBatch posts msgs in chunks of at most maxEmbeds. A failed chunk is
// logged and the remaining chunks are still sent.
func (d *DiscordNotifier) SendBatch(ctx context.Context, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}

	var (
		errs   []error
		chunks int
	)

	for start := 0; start < len(msgs); start += d.maxEmbeds {
		end := min(start+d.maxEmbeds, len(msgs))
		chunks++

		embeds := make([]discordEmbed, 0, end-start)
		for i := start; i < end; i++ {
			embeds = append(embeds, buildEmbed(&msgs[i]))
		}

		err := d.post(ctx, discordWebhookPayload{Username: d.username, Embeds: embeds})
		if err != nil {
			metrics.NotificationFailuresTotal.Inc()
			d.log.Error("discord chunk failed", "chunk", chunks, "embeds", len(embeds), "error", err)
			errs = append(errs, err)
			continue
		}

		metrics.NotificationsSentTotal.Add(float64(len(embeds)))
	}

	if len(errs) > 0 {
		return &BatchError{Chunks: chunks, Errs: errs}
	}
	return nil
}

func buildEmbed(m *Message) discordEmbed {
	embed := discordEmbed{
		Title:       m.Title,
		URL:         m.URL,
		Color:       m.Color,
		Description: m.Description,
	}
	if !m.Timestamp.IsZero() {
		embed.Timestamp = m.Timestamp.UTC().Format(time.RFC3339)
	}
	if m.Footer != "" {
		embed.Footer = &discordEmbedFooter{Text: m.Footer}
	}
	return embed
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
