// Package amqp publishes and consumes record change notifications over
// RabbitMQ.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "prodhub/internal/log"
	"prodhub/internal/store"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *slog.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	cbMu         sync.Mutex
	lastFailure  time.Time
}

var _ store.Notifier = (*Client)(nil)

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       slog.Default().With(applog.FieldComponent, applog.ComponentAMQP),
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.conn = conn
	c.channel = channel
	return nil
}

func setup(ch *amqp091.Channel, exchangeName, queueName string) error {
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Direct exchange: the routing key is the queue name.
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// channelLocked returns a usable channel, redialing when the previous one was closed.
func (c *Client) channelLocked() (*amqp091.Channel, error) {
	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	c.closeLocked()
	if err := c.connectLocked(); err != nil {
		return nil, err
	}
	return c.channel, nil
}

// NotifyChange implements store.Notifier.
func (c *Client) NotifyChange(ctx context.Context, change store.Change) error {
	return c.PublishRecordChanged(ctx, NewRecordChangedMessage(change))
}

// PublishRecordChanged publishes a persistent JSON message to the exchange.
func (c *Client) PublishRecordChanged(ctx context.Context, msg *RecordChangedMessage) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish record change: %w", ErrCircuitOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	ch, err := c.channelLocked()
	if err == nil {
		err = ch.PublishWithContext(
			ctx,
			c.exchangeName, // exchange
			c.queueName,    // routing key
			false,          // mandatory
			false,          // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp091.Persistent,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil && isConnectionError(err) {
			c.closeLocked()
		}
	}
	c.mu.Unlock()

	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.log().DebugContext(ctx, "Published record change",
		applog.FieldCollection, msg.Collection,
		applog.FieldRecordID, msg.ID,
		applog.FieldRevision, msg.Revision)
	return nil
}

// ConsumeRecordChanges delivers messages to handler until ctx is done. A
// handler error requeues the message; undecodable messages are dropped.
// Lost connections are redialed with exponential backoff.
func (c *Client) ConsumeRecordChanges(ctx context.Context, handler func(context.Context, *RecordChangedMessage) error) error {
	attempt := 0
	for {
		err := c.consumeOnce(ctx, handler, func() { attempt = 0 })
		if ctx.Err() != nil {
			return ctx.Err()
		}
		wait := exponentialBackoff(attempt)
		attempt++
		c.log().WarnContext(ctx, "Consumer stopped, reconnecting",
			applog.FieldError, err,
			"retry_in", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, handler func(context.Context, *RecordChangedMessage) error, started func()) error {
	c.mu.Lock()
	ch, err := c.channelLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	started()
	c.log().InfoContext(ctx, "Started consuming record changes", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}

			msg, err := RecordChangedMessageFromJSON(delivery.Body)
			if err != nil {
				c.log().ErrorContext(ctx, "Failed to unmarshal message", applog.FieldError, err)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			if err := handler(ctx, msg); err != nil {
				c.log().ErrorContext(ctx, "Failed to handle message",
					applog.FieldError, err,
					applog.FieldCollection, msg.Collection,
					applog.FieldRevision, msg.Revision)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.cbMu.Lock()
	last := c.lastFailure
	c.cbMu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	n := atomic.AddInt64(&c.failureCount, 1)
	c.cbMu.Lock()
	c.lastFailure = time.Now()
	c.cbMu.Unlock()
	if n >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff returns 1s, 2s, 4s, ... capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}
