package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/justsurfingit/jobtracker/internal/logger"
)

var ErrClosed = errors.New("queue: closed")

// MemoryQueue is an in-process queue backed by a buffered channel. Tasks are
// lost on restart; the extraction service re-enqueues pending resumes at boot.
type MemoryQueue struct {
	ch      chan Message
	done    chan struct{}
	once    sync.Once
	Backoff time.Duration
}

func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 100
	}
	return &MemoryQueue{
		ch:      make(chan Message, buffer),
		done:    make(chan struct{}),
		Backoff: DefaultBackoff,
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, resumeID uint) error {
	return q.publish(ctx, Message{ResumeID: resumeID, Attempt: 1})
}

func (q *MemoryQueue) publish(ctx context.Context, m Message) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case q.ch <- m:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, workers int, h Handler) error {
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range workers {
		logger.Info("extraction worker started", "worker_id", i+1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-q.done:
					return
				case m := <-q.ch:
					q.handle(ctx, id, m, h)
				}
			}
		}(i + 1)
	}
	wg.Wait()
	return nil
}

func (q *MemoryQueue) handle(ctx context.Context, worker int, m Message, h Handler) {
	err := h(ctx, m)
	if err == nil {
		return
	}
	if m.Final() {
		logger.WorkerLog("extraction", "give up", err, "worker_id", worker, "resume_id", m.ResumeID, "attempt", m.Attempt)
		return
	}

	logger.WorkerLog("extraction", "retry scheduled", err, "worker_id", worker, "resume_id", m.ResumeID, "attempt", m.Attempt)
	next := Message{ResumeID: m.ResumeID, Attempt: m.Attempt + 1}
	time.AfterFunc(backoffFor(q.Backoff, m.Attempt), func() {
		if err := q.publish(ctx, next); err != nil {
			logger.Warn("failed to requeue extraction", "resume_id", next.ResumeID, "error", err)
		}
	})
}

func (q *MemoryQueue) Close() error {
	q.once.Do(func() { close(q.done) })
	return nil
}
