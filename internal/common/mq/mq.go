package mq

import (
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Order event feed. The platform backend publishes every order mutation to a
// topic exchange; each running dashboard binds its own exclusive queue so the
// subscription lives and dies with the process.
const (
	OrdersExchange   = "orders.events"
	RouteOrderNew    = "order.new"
	RouteOrderStatus = "order.status"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func Dial(cfg Config) (*Client, error) {
	if cfg.VHost == "" {
		cfg.VHost = "/"
	}
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.VHost)
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

func (c *Client) Ping() error {
	if c == nil || c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
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

// DeclareOrderFeed declares the orders exchange and binds a broker-named
// exclusive queue to the order events. The queue is auto-deleted when this
// client disconnects.
func (c *Client) DeclareOrderFeed() (string, error) {
	if c == nil || c.ch == nil {
		return "", errors.New("nil channel")
	}
	if err := c.ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		return "", err
	}
	q, err := c.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return "", err
	}
	for _, key := range []string{RouteOrderNew, RouteOrderStatus} {
		if err := c.ch.QueueBind(q.Name, key, OrdersExchange, false, nil); err != nil {
			return "", err
		}
	}
	return q.Name, nil
}

func (c *Client) Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return c.ch.Consume(queue, consumer, false, false, false, false, nil)
}
