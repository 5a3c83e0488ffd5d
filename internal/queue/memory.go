package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"ospreyBack/internal/models"
)

var ErrClosed = errors.New("queue: closed")

// InMemoryQueue delivers each event to every subscriber on its own goroutine,
// retrying failed handlers with linear backoff.
type InMemoryQueue struct {
	mu         sync.Mutex
	handlers   map[string][]Handler
	closed     bool
	wg         sync.WaitGroup
	stop       chan struct{}
	log        *zap.Logger
	MaxRetries int
	Backoff    func(attempt int) time.Duration
}

func NewInMemoryQueue(log *zap.Logger) *InMemoryQueue {
	if log == nil {
		log = zap.NewNop()
	}
	return &InMemoryQueue{
		handlers:   make(map[string][]Handler),
		stop:       make(chan struct{}),
		log:        log,
		MaxRetries: DefaultMaxRetries,
		Backoff:    linearBackoff,
	}
}

func (q *InMemoryQueue) Publish(ctx context.Context, ev models.Event) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	handlers := append([]Handler(nil), q.handlers[ev.Topic]...)
	q.wg.Add(len(handlers))
	q.mu.Unlock()

	if len(handlers) == 0 {
		q.log.Debug("no subscribers for topic", zap.String("topic", ev.Topic))
		return nil
	}
	for _, h := range handlers {
		go q.process(h, ev)
	}
	return nil
}

func (q *InMemoryQueue) process(h Handler, ev models.Event) {
	defer q.wg.Done()
	ctx := context.Background()
	for attempt := 0; ; attempt++ {
		err := h(ctx, ev)
		if err == nil {
			return
		}
		if attempt >= q.MaxRetries {
			q.log.Error("event permanently failed",
				zap.String("topic", ev.Topic), zap.String("event_id", ev.ID), zap.Int("attempts", attempt+1), zap.Error(err))
			return
		}
		q.log.Warn("event handler failed",
			zap.String("topic", ev.Topic), zap.String("event_id", ev.ID), zap.Int("attempt", attempt+1), zap.Error(err))

		select {
		case <-time.After(q.Backoff(attempt + 1)):
		case <-q.stop:
			return
		}
	}
}

func (q *InMemoryQueue) Subscribe(topic string, handler Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Close stops pending retries and waits for in-flight handlers.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.stop)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}
