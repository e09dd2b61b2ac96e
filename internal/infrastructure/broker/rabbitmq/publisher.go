// Package rabbitmq публикует события об изменении записей в RabbitMQ.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/exp/slog"

	"hostdesk/internal/domain/records"
)

// QueueName - очередь, из которой дашборды читают изменения
const QueueName = "records.changed"

// channel - часть *amqp.Channel, нужная издателю
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher реализует records.Publisher поверх одного AMQP-канала.
// Канал не потокобезопасен, публикации сериализуются мьютексом.
type Publisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   channel
	log  *slog.Logger
}

// Dial подключается к брокеру и объявляет durable-очередь
func Dial(url string, log *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	p := newPublisher(ch, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, log *slog.Logger) *Publisher {
	return &Publisher{
		ch:  ch,
		log: log.With("component", "rabbitmq_publisher"),
	}
}

func (p *Publisher) Publish(ctx context.Context, event records.ChangeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, "", QueueName, false, false, msg); err != nil {
		p.log.Error("publish failed", "table", event.Table, "op", event.Op, "error", err)
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
