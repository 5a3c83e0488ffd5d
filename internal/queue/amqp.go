package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"ospreyBack/internal/models"
)

const (
	retryHeader     = "x-retry-count"
	defaultExchange = "osprey.events"
)

// AMQPQueue publishes events to a topic exchange keyed by event topic. Every
// Subscribe call owns a durable queue bound to its topic, so each subscriber
// sees each event once and retries only its own deliveries.
type AMQPQueue struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	mu         sync.Mutex
	declared   map[string]bool
	subs       map[string]int
	wg         sync.WaitGroup
	log        *zap.Logger
	Exchange   string
	Prefix     string
	MaxRetries int
}

func DialAMQP(url string, log *zap.Logger) (*AMQPQueue, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = ch.ExchangeDeclare(
		defaultExchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &AMQPQueue{
		conn:       conn,
		ch:         ch,
		declared:   make(map[string]bool),
		subs:       make(map[string]int),
		log:        log,
		Exchange:   defaultExchange,
		Prefix:     "osprey.",
		MaxRetries: DefaultMaxRetries,
	}, nil
}

// subscriptionQueue names the n-th subscription to topic made by this
// process. Names are stable as long as subscribers register in the same order.
func subscriptionQueue(prefix, topic string, n int) string {
	return fmt.Sprintf("%s%s.%d", prefix, topic, n)
}

// declare must be called with q.mu held.
func (q *AMQPQueue) declare(name, topic string) error {
	if q.declared[name] {
		return nil
	}
	_, err := q.ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}
	if err := q.ch.QueueBind(name, topic, q.Exchange, false, nil); err != nil {
		return err
	}
	q.declared[name] = true
	return nil
}

func (q *AMQPQueue) Publish(ctx context.Context, ev models.Event) error {
	return q.publish(q.Exchange, ev.Topic, ev, 0)
}

func (q *AMQPQueue) publish(exchange, key string, ev models.Event, retries int32) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ch.Publish(exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Headers:      amqp.Table{retryHeader: retries},
		Body:         body,
	})
}

// Subscribe consumes a dedicated queue for topic with manual acks. A failed
// handler republishes the event straight to that queue with an incremented
// retry header until MaxRetries.
func (q *AMQPQueue) Subscribe(topic string, handler Handler) error {
	q.mu.Lock()
	name := subscriptionQueue(q.Prefix, topic, q.subs[topic])
	q.subs[topic]++
	if err := q.declare(name, topic); err != nil {
		q.mu.Unlock()
		return err
	}
	msgs, err := q.ch.Consume(
		name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	q.mu.Unlock()
	if err != nil {
		return err
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for d := range msgs {
			q.handleDelivery(name, d, handler)
		}
	}()
	return nil
}

func (q *AMQPQueue) handleDelivery(queueName string, d amqp.Delivery, handler Handler) {
	var ev models.Event
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		q.log.Warn("invalid event body", zap.Error(err))
		d.Ack(false)
		return
	}

	err := handler(context.Background(), ev)
	if err == nil {
		d.Ack(false)
		return
	}

	retries := retryCount(d.Headers)
	if int(retries) >= q.MaxRetries {
		q.log.Error("event permanently failed",
			zap.String("topic", ev.Topic), zap.String("event_id", ev.ID), zap.Int32("retries", retries), zap.Error(err))
		d.Nack(false, false)
		return
	}
	q.log.Warn("event handler failed, requeueing",
		zap.String("topic", ev.Topic), zap.String("event_id", ev.ID), zap.Int32("retries", retries), zap.Error(err))
	if perr := q.publish("", queueName, ev, retries+1); perr != nil {
		q.log.Error("requeue failed", zap.Error(perr))
		d.Nack(false, true)
		return
	}
	d.Ack(false)
}

func retryCount(h amqp.Table) int32 {
	switch v := h[retryHeader].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	}
	return 0
}

func (q *AMQPQueue) Close() error {
	q.mu.Lock()
	err := q.ch.Close()
	q.mu.Unlock()
	if cerr := q.conn.Close(); err == nil {
		err = cerr
	}
	q.wg.Wait()
	return err
}
