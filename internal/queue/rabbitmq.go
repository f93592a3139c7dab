package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/justsurfingit/jobtracker/internal/logger"
	"github.com/streadway/amqp"
)

// RabbitMQQueue publishes tasks to a durable queue and consumes them with
// manual acks. Retries are republished with an incremented Attempt.
type RabbitMQQueue struct {
	conn *amqp.Connection
	name string

	mu    sync.Mutex
	pubCh *amqp.Channel
}

func DialRabbitMQ(url, name string) (*RabbitMQQueue, error) {
	if url == "" {
		return nil, errors.New("empty RABBITMQ_URL in env")
	}
	if name == "" {
		name = "resume_extraction"
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	if _, err := declare(ch, name); err != nil {
		conn.Close()
		return nil, err
	}
	return &RabbitMQQueue{conn: conn, name: name, pubCh: ch}, nil
}

func declare(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,  // durable (survives broker restarts)
		false, // auto-delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return q, nil
}

func (q *RabbitMQQueue) Enqueue(ctx context.Context, resumeID uint) error {
	return q.publish(Message{ResumeID: resumeID, Attempt: 1})
}

func (q *RabbitMQQueue) publish(m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pubCh.Publish(
		"",     // default exchange
		q.name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (q *RabbitMQQueue) Consume(ctx context.Context, workers int, h Handler) error {
	if workers <= 0 {
		workers = 1
	}

	errs := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range workers {
		logger.Info("extraction worker started", "worker_id", i+1, "queue", q.name)
		go func(id int) {
			defer wg.Done()
			if err := q.worker(ctx, id, h); err != nil {
				errs <- err
			}
		}(i + 1)
	}
	wg.Wait()
	close(errs)
	return <-errs
}

func (q *RabbitMQQueue) worker(ctx context.Context, id int, h Handler) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("error connecting to rabbitmq channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}
	msgs, err := ch.Consume(
		q.name, // queue name
		"",     // consumer tag
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // arguments
	)
	if err != nil {
		return fmt.Errorf("error consuming rabbitmq message: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			q.handle(ctx, id, d, h)
		}
	}
}

func (q *RabbitMQQueue) handle(ctx context.Context, worker int, d amqp.Delivery, h Handler) {
	var m Message
	if err := json.Unmarshal(d.Body, &m); err != nil || m.ResumeID == 0 {
		logger.Warn("dropping malformed extraction message", "worker_id", worker, "body", string(d.Body))
		d.Nack(false, false)
		return
	}

	err := h(ctx, m)
	if err != nil && !m.Final() {
		logger.WorkerLog("extraction", "retry scheduled", err, "worker_id", worker, "resume_id", m.ResumeID, "attempt", m.Attempt)
		if perr := q.publish(Message{ResumeID: m.ResumeID, Attempt: m.Attempt + 1}); perr != nil {
			// keep the original delivery so the broker redelivers it
			logger.Error("failed to republish extraction", "resume_id", m.ResumeID, "error", perr)
			d.Nack(false, true)
			return
		}
	} else if err != nil {
		logger.WorkerLog("extraction", "give up", err, "worker_id", worker, "resume_id", m.ResumeID, "attempt", m.Attempt)
	}
	d.Ack(false)
}

func (q *RabbitMQQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pubCh != nil {
		q.pubCh.Close()
	}
	return q.conn.Close()
}
