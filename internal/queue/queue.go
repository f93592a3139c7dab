// Package queue delivers resume extraction tasks to background workers.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/justsurfingit/jobtracker/internal/config"
)

// Message is one extraction task. Attempt starts at 1.
type Message struct {
	ResumeID uint `json:"resume_id"`
	Attempt  int  `json:"attempt"`
}

// Final reports whether a failure of this delivery ends the task.
func (m Message) Final() bool { return m.Attempt >= MaxAttempts }

// Handler processes one task. A non-nil error schedules a retry unless
// m.Final(), so handlers must be idempotent.
type Handler func(ctx context.Context, m Message) error

type Queue interface {
	Enqueue(ctx context.Context, resumeID uint) error
	// Consume runs workers until ctx is cancelled.
	Consume(ctx context.Context, workers int, h Handler) error
	Close() error
}

const (
	MaxAttempts    = 3
	DefaultBackoff = 500 * time.Millisecond
)

// New builds the backend named by cfg.Type.
func New(cfg config.QueueConfig) (Queue, error) {
	switch cfg.Type {
	case "memory", "":
		return NewMemoryQueue(cfg.Buffer), nil
	case "rabbitmq":
		return DialRabbitMQ(cfg.RabbitMQURL, cfg.QueueName)
	default:
		return nil, fmt.Errorf("unsupported queue type: %s", cfg.Type)
	}
}

// backoffFor grows the delay linearly with each attempt.
func backoffFor(base time.Duration, attempt int) time.Duration {
	return time.Duration(attempt) * base
}
