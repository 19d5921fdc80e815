package events

import (
	"context"
	"encoding/json"
	"fmt"
	"quizmaster_backend/pkg/logger"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	QuizCreated      = "quiz.created"
	QuizDeleted      = "quiz.deleted"
	QuizShared       = "quiz.shared"
	AttemptCreated   = "attempt.created"
	AttemptFinalized = "attempt.finalized"

	publishTimeout  = 5 * time.Second
	contentTypeJSON = "application/json"
)

// Event 是发布到 exchange 的消息体，routing key 与 Type 相同
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurredAt"`
}

type Publisher struct {
	mu           sync.Mutex
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
}

func NewPublisher(rabbitURI, exchangeName string) (*Publisher, error) {
	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Log.Info("Event publisher connected", zap.String("exchange", exchangeName))
	return &Publisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	event := Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchangeName, // exchange
		eventType,      // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  contentTypeJSON,
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	logger.Log.Debug("Published event", zap.String("type", eventType), zap.String("id", event.ID))
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
