package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"bakery/internal/outbox"

	amqp "github.com/rabbitmq/amqp091-go"
)

// topic exchangeへ永続メッセージで流す。ルーティングキーは "reservations.UPDATE" など
type RabbitPublisher struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewRabbitPublisher(url, exchange string) *RabbitPublisher {
	return &RabbitPublisher{url: url, exchange: exchange}
}

func (p *RabbitPublisher) Name() string { return "rabbitmq" }

func (p *RabbitPublisher) Publish(ctx context.Context, env outbox.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = ch.PublishWithContext(pubCtx, p.exchange, env.EventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.EventID,
		Timestamp:    env.OccurredAt,
		AppId:        env.Producer,
		Body:         body,
	})
	if err != nil {
		// 次回つなぎ直す
		p.reset()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *RabbitPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("exchange declare: %w", err)
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *RabbitPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
