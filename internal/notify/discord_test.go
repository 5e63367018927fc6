package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/restock-monitor/internal/metrics"
	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

var testItem = domain.TrackedItem{
	Code: "FYWH3J",
	Name: "iPhone 16 Pro Max 256GB - ホワイトチタニウム",
	URL:  "https://www.apple.com/jp/xc/product/FYWH3J/A",
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMessages(n int) []Message {
	at := time.Date(2025, 3, 1, 6, 30, 0, 0, time.UTC)
	msgs := make([]Message, n)
	for i := range msgs {
		item := testItem
		item.Code = fmt.Sprintf("ITEM%02d", i)
		msgs[i] = RestockMessage(item, at)
	}
	return msgs
}

// recordingServer captures every webhook payload it receives.
type recordingServer struct {
	mu       sync.Mutex
	payloads []discordWebhookPayload
	status   func(call int) int
}

func (s *recordingServer) start(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, http.MethodPost, r.Method)

		var p discordWebhookPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))

		s.mu.Lock()
		s.payloads = append(s.payloads, p)
		call := len(s.payloads)
		s.mu.Unlock()

		status := http.StatusNoContent
		if s.status != nil {
			status = s.status(call)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDiscordNotifier_SendBatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
		errMsg     string
	}{
		{name: "204 accepted", statusCode: http.StatusNoContent},
		{name: "200 accepted", statusCode: http.StatusOK},
		{
			name:       "discord returns 429 rate limited",
			statusCode: http.StatusTooManyRequests,
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "discord returns 400 error",
			statusCode: http.StatusBadRequest,
			wantErr:    true,
			errMsg:     "discord returned 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rs := &recordingServer{status: func(int) int { return tt.statusCode }}
			srv := rs.start(t)

			d := NewDiscordNotifier(srv.URL, WithUsername("Apple 在庫モニター"), WithLogger(quietLogger()))
			err := d.SendBatch(context.Background(), testMessages(1))

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Equal(t, 1, FailedChunks(err))
				return
			}

			require.NoError(t, err)
			require.Len(t, rs.payloads, 1)

			p := rs.payloads[0]
			assert.Equal(t, "Apple 在庫モニター", p.Username)
			require.Len(t, p.Embeds, 1)

			embed := p.Embeds[0]
			assert.Equal(t, "🛒 入荷しました！", embed.Title)
			assert.Equal(t, ColorGreen, embed.Color)
			assert.Equal(t, testItem.URL, embed.URL)
			assert.Contains(t, embed.Description, "**"+testItem.Name+"**")
			assert.Contains(t, embed.Description, "[今すぐ購入する]("+testItem.URL+")")
			require.NotNil(t, embed.Footer)
			assert.Equal(t, "UTC 2025-03-01 06:30:00 / JST 2025-03-01 15:30:00", embed.Footer.Text)
			assert.Equal(t, "2025-03-01T06:30:00Z", embed.Timestamp)
		})
	}
}

func TestDiscordNotifier_SendBatchChunks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		messages   int
		maxEmbeds  int
		wantChunks []int
	}{
		{name: "empty batch sends nothing", messages: 0, maxEmbeds: 10, wantChunks: nil},
		{name: "exactly ten fit one message", messages: 10, maxEmbeds: 10, wantChunks: []int{10}},
		{name: "eleven split", messages: 11, maxEmbeds: 10, wantChunks: []int{10, 1}},
		{name: "twenty five split", messages: 25, maxEmbeds: 10, wantChunks: []int{10, 10, 5}},
		{name: "custom chunk size", messages: 5, maxEmbeds: 2, wantChunks: []int{2, 2, 1}},
		{name: "chunk size clamped to discord limit", messages: 12, maxEmbeds: 50, wantChunks: []int{10, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rs := &recordingServer{}
			srv := rs.start(t)

			d := NewDiscordNotifier(srv.URL, WithMaxEmbeds(tt.maxEmbeds), WithLogger(quietLogger()))
			require.NoError(t, d.SendBatch(context.Background(), testMessages(tt.messages)))

			var got []int
			for _, p := range rs.payloads {
				got = append(got, len(p.Embeds))
			}
			assert.Equal(t, tt.wantChunks, got)
		})
	}
}

func TestDiscordNotifier_FailedChunkDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	rs := &recordingServer{status: func(call int) int {
		if call == 1 {
			return http.StatusInternalServerError
		}
		return http.StatusNoContent
	}}
	srv := rs.start(t)

	failuresBefore := testutil.ToFloat64(metrics.NotificationFailuresTotal)

	d := NewDiscordNotifier(srv.URL, WithLogger(quietLogger()))
	err := d.SendBatch(context.Background(), testMessages(21))

	require.Error(t, err)
	assert.Len(t, rs.payloads, 3, "all chunks must be attempted")

	var be *BatchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 3, be.Chunks)
	assert.Len(t, be.Errs, 1)
	assert.Equal(t, 1, FailedChunks(err))
	assert.Contains(t, err.Error(), "1 of 3 notification chunks failed")

	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.NotificationFailuresTotal)-failuresBefore, 1.0)
}

func TestDiscordNotifier_NetworkError(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("http://127.0.0.1:1", WithLogger(quietLogger())) // nothing listening
	err := d.SendBatch(context.Background(), testMessages(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending discord webhook")
}

func TestDiscordNotifier_InvalidWebhookURL(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("://not-a-valid-url", WithLogger(quietLogger()))
	err := d.SendBatch(context.Background(), testMessages(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating discord request")
}

func TestDiscordNotifier_OmitsEmptyUsername(t *testing.T) {
	t.Parallel()

	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscordNotifier(srv.URL, WithLogger(quietLogger()))
	require.NoError(t, d.SendBatch(context.Background(), []Message{{Title: "t"}}))

	_, ok := raw["username"]
	assert.False(t, ok)
	embeds := raw["embeds"].([]any)
	embed := embeds[0].(map[string]any)
	_, hasFooter := embed["footer"]
	assert.False(t, hasFooter)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	d := NewDiscordNotifier("https://example.com", WithHTTPClient(custom))
	assert.Same(t, custom, d.client)
}

func getNotificationHistogramSampleCount() uint64 {
	ch := make(chan prometheus.Metric, 1)
	metrics.NotificationDuration.Collect(ch)
	m := <-ch
	pb := &dto.Metric{}
	_ = m.Write(pb)
	return pb.GetHistogram().GetSampleCount()
}

func TestSendBatch_ObservesNotificationDuration(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	before := getNotificationHistogramSampleCount()

	d := NewDiscordNotifier(srv.URL, WithLogger(quietLogger()))
	require.NoError(t, d.SendBatch(context.Background(), testMessages(1)))

	after := getNotificationHistogramSampleCount()
	assert.Greater(t, after, before, "NotificationDuration histogram sample count should increase")
}

func TestFailedChunks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, FailedChunks(nil))
	assert.Equal(t, 1, FailedChunks(fmt.Errorf("boom")))
	assert.Equal(t, 2, FailedChunks(&BatchError{Chunks: 3, Errs: []error{io.EOF, io.EOF}}))
	assert.ErrorIs(t, &BatchError{Chunks: 1, Errs: []error{io.EOF}}, io.EOF)
}

func TestTimeLabels(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 12, 31, 20, 5, 9, 0, time.UTC)
	assert.Equal(t, "UTC 2025-12-31 20:05:09 / JST 2026-01-01 05:05:09", TimeLabel(at))
	assert.Equal(t, "UTC 20:05:09 / JST 05:05:09", ClockLabel(at))
}
