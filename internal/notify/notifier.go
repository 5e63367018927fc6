// Package notify defines the notification interface and implementations
// for restock alert delivery.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Message is one chat notification. Discord renders it as an embed.
type Message struct {
	Title       string
	Description string
	URL         string
	Color       int
	Timestamp   time.Time
	Footer      string
}

// Notifier delivers batches of messages.
type Notifier interface {
	SendBatch(ctx context.Context, msgs []Message) error
}

// BatchError reports the chunks of a batch that could not be delivered.
// Delivered chunks are not retried.
type BatchError struct {
	Chunks int
	Errs   []error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d notification chunks failed: %v", len(e.Errs), e.Chunks, errors.Join(e.Errs...))
}

// Unwrap exposes the per-chunk errors to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	return e.Errs
}

// FailedChunks returns the number of undelivered chunks in err, or 1 for
// any other non-nil error.
func FailedChunks(err error) int {
	if err == nil {
		return 0
	}
	var be *BatchError
	if errors.As(err, &be) {
		return len(be.Errs)
	}
	return 1
}
