package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// DefaultExchange — обменник событий по умолчанию.
const DefaultExchange Exchange = "daxgen.events"

// Очереди.
const (
	QueueRequests Queue = "daxgen.requests"
	QueueDLQ      Queue = "daxgen.requests.dlq"
)

// Routing keys.
const (
	RoutingKeyGenerate  RoutingKey = "workflow.generate"
	RoutingKeyGenerated RoutingKey = "workflow.generated"
	RoutingKeyFailed    RoutingKey = "workflow.failed"
	RoutingKeyDLQ       RoutingKey = "workflow.dead"
)

// Topology — набор обменников и очередей генератора.
//
// Все события идут через один topic-обменник: запросы генерации
// (workflow.generate) попадают в очередь запросов, события
// workflow.generated и workflow.failed получают внешние подписчики.
// Запросы, отклонённые без повтора, уходят в очередь DLQ.
type Topology struct {
	Exchange Exchange
}

// NewTopology создаёт топологию с указанным обменником.
func NewTopology(exchange string) Topology {
	if exchange == "" {
		return Topology{Exchange: DefaultExchange}
	}
	return Topology{Exchange: Exchange(exchange)}
}

// DLQExchange возвращает имя обменника для отклонённых запросов.
func (t Topology) DLQExchange() Exchange {
	return t.Exchange + ".dlq"
}

// Setup объявляет обменники, очереди и привязки.
func (t Topology) Setup(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range []Exchange{t.Exchange, t.DLQExchange()} {
			err := ch.ExchangeDeclare(
				string(ex), // name
				"topic",    // type
				true,       // durable
				false,      // auto-deleted
				false,      // internal
				false,      // no-wait
				nil,        // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		queues := []struct {
			name Queue
			args amqp.Table
		}{
			{QueueRequests, amqp.Table{
				"x-dead-letter-exchange":    string(t.DLQExchange()),
				"x-dead-letter-routing-key": string(RoutingKeyDLQ),
			}},
			{QueueDLQ, nil},
		}
		for _, q := range queues {
			_, err := ch.QueueDeclare(
				string(q.name), // name
				true,           // durable
				false,          // delete when unused
				false,          // exclusive
				false,          // no-wait
				q.args,         // arguments
			)
			if err != nil {
				return fmt.Errorf("declare queue %s: %w", q.name, err)
			}
		}

		bindings := []struct {
			queue      Queue
			routingKey RoutingKey
			exchange   Exchange
		}{
			{QueueRequests, RoutingKeyGenerate, t.Exchange},
			{QueueDLQ, RoutingKeyDLQ, t.DLQExchange()},
		}
		for _, b := range bindings {
			err := ch.QueueBind(
				string(b.queue),      // queue name
				string(b.routingKey), // routing key
				string(b.exchange),   // exchange
				false,                // no-wait
				nil,                  // arguments
			)
			if err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}

		return nil
	})
}
