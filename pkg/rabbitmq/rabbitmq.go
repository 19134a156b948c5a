package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	amqp "github.com/streadway/amqp"
)

// BindingKey routes every order event to the audit queue.
const BindingKey = "order.#"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	mu       sync.Mutex // amqp channels are not safe for concurrent publishing
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string // topic exchange order events are published to
	Queue    string // durable queue bound to the exchange with BindingKey
}

// NewClient connects to RabbitMQ and declares the order topology: a durable
// topic exchange and a queue bound to it for every order.* routing key.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Exchange == "" || cfg.Queue == "" {
		return nil, errors.New("rabbitmq: exchange and queue names are required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info().Str("exchange", cfg.Exchange).Str("queue", cfg.Queue).Msg("RabbitMQ client connected")
	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
	}, nil
}

func declareTopology(ch *amqp.Channel, cfg Config) error {
	err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	if err := ch.QueueBind(cfg.Queue, BindingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to %s: %w", cfg.Queue, cfg.Exchange, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish sends a persistent JSON message to the order exchange.
func (c *Client) Publish(routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// ConsumeOrderEvents starts a goroutine that hands every delivery on the
// order queue to handler. Successful deliveries are acked; failed ones are
// nacked without requeue so a poison message cannot loop forever. The
// goroutine exits when the channel closes.
func (c *Client) ConsumeOrderEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Info().Str("queue", c.queue).Msg("Waiting for order events")
	go func() {
		for msg := range msgs {
			if err := handler(msg); err != nil {
				log.Error().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Msg("Error processing message")
				if nackErr := msg.Nack(false, false); nackErr != nil {
					log.Error().Err(nackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("Error nacking message")
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.Error().Err(ackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("Error acking message")
			}
		}
		log.Info().Str("queue", c.queue).Msg("Order event consumer stopped")
	}()
	return nil
}

// orderEvent mirrors the fields of the published order events that the
// audit log records.
type orderEvent struct {
	Event       string  `json:"event"`
	OrderID     string  `json:"order_id"`
	UserID      string  `json:"user_id"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
	Items       []struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
}

// LogOrderEvent is the audit handler for ConsumeOrderEvents: it decodes an
// order event and writes it to the log. Undecodable bodies are rejected.
func LogOrderEvent(msg amqp.Delivery) error {
	var ev orderEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		return fmt.Errorf("decode order event: %w", err)
	}
	if ev.OrderID == "" {
		return errors.New("order event without order_id")
	}

	units := 0
	for _, it := range ev.Items {
		units += it.Quantity
	}
	event := ev.Event
	if event == "" {
		event = msg.RoutingKey
	}
	log.Info().
		Str("event", event).
		Str("order_id", ev.OrderID).
		Str("user_id", ev.UserID).
		Str("status", ev.Status).
		Float64("total", ev.TotalAmount).
		Int("units", units).
		Msg("Order event")
	return nil
}
