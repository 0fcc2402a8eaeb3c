package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cluster-pricing/models"
	"cluster-pricing/utils"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the subset of *amqp.Channel the publisher needs
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends run-completed events to a durable queue on the default exchange
type Publisher struct {
	ch     Channel
	queue  string
	logger *utils.Logger
	close  func() error
}

// NewPublisher wraps an open channel. The queue is declared durable.
func NewPublisher(ch Channel, queue string, logger *utils.Logger) (*Publisher, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", queue, err)
	}
	return &Publisher{ch: ch, queue: queue, logger: logger, close: func() error { return nil }}, nil
}

// Dial connects to the broker and opens a publisher on queue
func Dial(url, queue string, logger *utils.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}
	p, err := NewPublisher(ch, queue, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.close = func() error {
		_ = ch.Close()
		return conn.Close()
	}
	logger.Info("Connected to RabbitMQ, publishing to %s", queue)
	return p, nil
}

// PublishRun publishes the final state of a run as a persistent JSON message
func (p *Publisher) PublishRun(ctx context.Context, report *models.RunReport) error {
	body, err := json.Marshal(NewRunCompletedEvent(report))
	if err != nil {
		return fmt.Errorf("marshal run event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    report.RunID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish run %s: %w", report.RunID, err)
	}

	p.logger.Info("Published run %s (%s) to %s", report.RunID, report.Status, p.queue)
	return nil
}

// Close releases the channel and connection opened by Dial
func (p *Publisher) Close() error {
	return p.close()
}
