// README: Queue consumer dispatching fulfillment tasks with ack/nack semantics.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"catering/internal/modules/providers"
	"catering/internal/modules/tracking"
)

// Handler executes one task end to end. Returned errors decide the ack:
// transient errors are redelivered, fatal ones dropped.
type Handler interface {
	HandleCook(ctx context.Context, orderID, restaurantID int64) error
	HandleDeliver(ctx context.Context, orderID int64) error
}

type Consumer struct {
	client  *Client
	handler Handler
	log     *slog.Logger
}

func NewConsumer(client *Client, handler Handler, log *slog.Logger) *Consumer {
	return &Consumer{client: client, handler: handler, log: log}
}

// Run consumes both queues until ctx is cancelled. Prefetch is 1: a
// cooking task can poll for minutes, so one in-flight task per queue
// keeps redeliveries sane.
func (c *Consumer) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, q := range []string{QueueHigh, QueueDefault} {
		deliveries, err := c.client.consume(q, "catering-worker."+q, 1)
		if err != nil {
			return fmt.Errorf("consume %s: %w", q, err)
		}
		wg.Add(1)
		go func(queue string, deliveries <-chan amqp.Delivery) {
			defer wg.Done()
			c.loop(ctx, queue, deliveries)
		}(q, deliveries)
	}
	wg.Wait()
	return nil
}

func (c *Consumer) loop(ctx context.Context, queue string, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			c.handle(ctx, queue, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, queue string, d amqp.Delivery) {
	var task Task
	if err := json.Unmarshal(d.Body, &task); err != nil {
		c.log.Error("drop unreadable task", "queue", queue, "err", err)
		_ = d.Nack(false, false)
		return
	}

	err := c.dispatch(ctx, task)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	if Retryable(err) {
		c.log.Warn("task failed, requeueing", "task", task.Type, "order_id", task.OrderID, "err", err)
		_ = d.Nack(false, true)
		return
	}
	c.log.Error("task failed permanently", "task", task.Type, "order_id", task.OrderID, "err", err)
	_ = d.Nack(false, false)
}

func (c *Consumer) dispatch(ctx context.Context, task Task) error {
	switch task.Type {
	case TaskCook:
		return c.handler.HandleCook(ctx, task.OrderID, task.RestaurantID)
	case TaskDeliver:
		return c.handler.HandleDeliver(ctx, task.OrderID)
	default:
		return fmt.Errorf("unknown task type %q", task.Type)
	}
}

// Retryable classifies a handler error for the at-least-once policy.
// Provider outages and CAS conflicts resolve on redelivery, and so does
// a context cancellation: that is a worker shutting down mid-task, not
// the task failing. Everything else (mapping gaps, rejections, missing
// legs) will not.
func Retryable(err error) bool {
	return errors.Is(err, providers.ErrUnavailable) ||
		errors.Is(err, tracking.ErrConflict) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
