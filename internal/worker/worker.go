package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/daxgen/internal/mq"
)

// Значения по умолчанию.
const (
	defaultPrefetch = 4
	defaultTimeout  = 5 * time.Minute
)

// ErrNotConfigured — нет соединения или обработчика.
var ErrNotConfigured = errors.New("worker is not configured")

// Worker потребляет запросы на генерацию из очереди.
type Worker struct {
	conn     *mq.Connection
	queue    mq.Queue
	tag      string
	handler  mq.Handler
	prefetch int
	timeout  time.Duration

	consumer *mq.Consumer

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Worker.
type Config struct {
	Conn    *mq.Connection
	Handler mq.Handler

	// Queue — очередь запросов (по умолчанию daxgen.requests).
	Queue mq.Queue

	// Tag — consumer tag, виден в management UI RabbitMQ.
	Tag string

	// Prefetch — сколько сообщений брокер отдаёт без подтверждения.
	Prefetch int

	// Timeout — ограничение на обработку одного запроса.
	Timeout time.Duration

	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	if cfg.Queue == "" {
		cfg.Queue = mq.QueueRequests
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = defaultPrefetch
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Worker{
		conn:     cfg.Conn,
		queue:    cfg.Queue,
		tag:      cfg.Tag,
		handler:  cfg.Handler,
		prefetch: cfg.Prefetch,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}
}

// Start запускает потребление в отдельной горутине.
func (w *Worker) Start(ctx context.Context) error {
	if w.conn == nil || w.handler == nil {
		return ErrNotConfigured
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.consumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
		Queue:    string(w.queue),
		Tag:      w.tag,
		Handler:  w.handle,
		Prefetch: w.prefetch,
	})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("request consumer error", "error", err)
		}
	}()

	w.logger.Info("worker started", "queue", w.queue, "prefetch", w.prefetch, "timeout", w.timeout)
	return nil
}

// Stop останавливает Worker и ждёт завершения текущего запроса.
func (w *Worker) Stop() {
	w.stoppedMu.Lock()
	w.stopped = true
	w.stoppedMu.Unlock()

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	if w.consumer != nil {
		w.consumer.Stop()
	}

	w.wg.Wait()
	w.logger.Info("worker stopped")
}

// IsStopped проверяет, остановлен ли Worker.
func (w *Worker) IsStopped() bool {
	w.stoppedMu.RLock()
	defer w.stoppedMu.RUnlock()
	return w.stopped
}

// handle вызывает обработчик с таймаутом и перехватом паники.
func (w *Worker) handle(ctx context.Context, d *mq.Delivery) (err error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", mq.ErrPermanent, r)
		}
		w.logger.Debug("request handled",
			"message_id", d.Message.ID,
			"duration", time.Since(start),
			"error", err,
		)
	}()

	return w.handler(ctx, d)
}
