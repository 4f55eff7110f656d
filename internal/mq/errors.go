package mq

import "errors"

var (
	// ErrNoChannel — AMQP канал ещё не открыт или потерян.
	ErrNoChannel = errors.New("no channel available")

	// ErrPermanent — сообщение нельзя обработать повторно.
	ErrPermanent = errors.New("permanent message failure")

	errDeliveriesClosed = errors.New("deliveries channel closed")
	errConnectionClosed = errors.New("connection closed")
)
