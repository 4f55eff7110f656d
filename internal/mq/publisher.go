package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/daxgen/internal/domain"
)

// MessageType — тип сообщения.
type MessageType string

// Типы сообщений.
const (
	MessageTypeGenerate  MessageType = "workflow.generate"
	MessageTypeGenerated MessageType = "workflow.generated"
	MessageTypeFailed    MessageType = "workflow.failed"
)

// Message — конверт сообщения.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload json.RawMessage `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// GenerateRequest — запрос на генерацию workflow.
type GenerateRequest struct {
	Source       string            `json:"source"`
	WorkflowPath string            `json:"workflow_path"`
	CatalogPath  string            `json:"catalog_path"`
	Name         string            `json:"name,omitempty"`
	Vars         map[string]string `json:"vars,omitempty"`
}

// GeneratedPayload — событие об успешной генерации.
type GeneratedPayload struct {
	RunID       uuid.UUID    `json:"run_id"`
	Name        string       `json:"name"`
	Source      string       `json:"source"`
	WorkflowURI string       `json:"workflow_uri"`
	CatalogURI  string       `json:"catalog_uri"`
	Stats       domain.Stats `json:"stats"`
}

// FailedPayload — событие о неудачной генерации.
type FailedPayload struct {
	Source string `json:"source"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`
}

// NewMessage создаёт сообщение с новым ID.
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   body,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn     *Connection
	topology Topology
	logger   *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, topology Topology, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:     conn,
		topology: topology,
		logger:   logger,
	}
}

// Publish публикует сообщение в обменник топологии.
func (p *Publisher) Publish(ctx context.Context, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(p.topology.Exchange), // exchange
			string(routingKey),          // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", p.topology.Exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", p.topology.Exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// Ready сообщает, есть ли сейчас соединение с брокером.
func (p *Publisher) Ready() bool {
	return p.conn.IsConnected()
}

// PublishGenerated публикует событие workflow.generated.
func (p *Publisher) PublishGenerated(ctx context.Context, payload GeneratedPayload) error {
	msg, err := NewMessage(MessageTypeGenerated, payload)
	if err != nil {
		return err
	}
	return p.Publish(ctx, RoutingKeyGenerated, msg)
}

// PublishFailed публикует событие workflow.failed.
func (p *Publisher) PublishFailed(ctx context.Context, payload FailedPayload) error {
	msg, err := NewMessage(MessageTypeFailed, payload)
	if err != nil {
		return err
	}
	return p.Publish(ctx, RoutingKeyFailed, msg)
}

// PublishGenerate ставит запрос на генерацию в очередь.
func (p *Publisher) PublishGenerate(ctx context.Context, req GenerateRequest) (string, error) {
	msg, err := NewMessage(MessageTypeGenerate, req)
	if err != nil {
		return "", err
	}
	if err := p.Publish(ctx, RoutingKeyGenerate, msg); err != nil {
		return "", err
	}
	return msg.ID, nil
}
