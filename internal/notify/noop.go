package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded messages. It is used
// when no Discord webhook is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards messages with a log line.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendBatch logs and discards a batch of messages.
func (n *NoOpNotifier) SendBatch(_ context.Context, msgs []Message) error {
	for i := range msgs {
		n.log.Warn("notification discarded (no webhook configured)",
			"title", msgs[i].Title,
			"url", msgs[i].URL,
		)
	}
	return nil
}
