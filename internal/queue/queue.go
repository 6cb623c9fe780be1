// README: Task queue client over RabbitMQ: topology, publishing, priorities.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	Exchange = "fulfillment"

	// QueueHigh carries per-leg cooking tasks, QueueDefault the delivery
	// tasks, mirroring the scheduling split of the cooking pipeline.
	QueueHigh    = "fulfillment.high"
	QueueDefault = "fulfillment.default"

	maxPriority     = 10
	cookPriority    = 5
	deliverPriority = 0
)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch}, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// DeclareTopology is idempotent; both binaries call it at startup.
func (c *Client) DeclareTopology() error {
	if err := c.ch.ExchangeDeclare(Exchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	for _, q := range []string{QueueHigh, QueueDefault} {
		_, err := c.ch.QueueDeclare(q, true, false, false, false, amqp.Table{
			"x-max-priority": int32(maxPriority),
		})
		if err != nil {
			return err
		}
		if err := c.ch.QueueBind(q, q, Exchange, false, nil); err != nil {
			return err
		}
	}
	return nil
}

// PublishCook enqueues one cooking-leg task on the high-priority queue.
func (c *Client) PublishCook(ctx context.Context, orderID, restaurantID int64) error {
	return c.publish(ctx, QueueHigh, cookPriority, Task{
		Type:         TaskCook,
		OrderID:      orderID,
		RestaurantID: restaurantID,
	})
}

// PublishDeliver enqueues the delivery task for an order.
func (c *Client) PublishDeliver(ctx context.Context, orderID int64) error {
	return c.publish(ctx, QueueDefault, deliverPriority, Task{
		Type:    TaskDeliver,
		OrderID: orderID,
	})
}

func (c *Client) publish(ctx context.Context, key string, priority uint8, task Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return err
	}
	err = c.ch.PublishWithContext(ctx, Exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Priority:     priority,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", task.Type, err)
	}
	return nil
}

func (c *Client) consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return c.ch.Consume(queue, consumer, false, false, false, false, nil)
}
