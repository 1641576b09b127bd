package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gameghor/internal/models"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
)

// ErrMalformedEvent marks a delivery whose body is not an order event.
var ErrMalformedEvent = errors.New("malformed order event")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	mu      sync.Mutex // guards channel publishes
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// order event queue.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Queue == "" {
		cfg.Queue = "order_events"
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", cfg.Queue, err)
	}

	log.Printf("RabbitMQ client connected and %s declared.", cfg.Queue)

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
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

// Connected reports whether the underlying connection is still open.
func (c *Client) Connected() bool {
	return c != nil && c.conn != nil && !c.conn.IsClosed()
}

// PublishOrderEvent publishes event as a persistent JSON message. The AMQP
// message type carries the event type so consumers can route without decoding.
func (c *Client) PublishOrderEvent(event models.OrderEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			MessageId:    uuid.New().String(),
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf(" [x] Sent %s for order %s", event.Type, event.OrderID)
	return nil
}

// DecodeOrderEvent parses a delivery body into an order event.
func DecodeOrderEvent(body []byte) (models.OrderEvent, error) {
	var event models.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return models.OrderEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.Type == "" || event.OrderID == "" {
		return models.OrderEvent{}, fmt.Errorf("%w: missing type or order_id", ErrMalformedEvent)
	}
	return event, nil
}

// ConsumeOrderEvents starts a goroutine that feeds decoded events to handler.
// Malformed messages are dropped; handler failures are requeued.
func (c *Client) ConsumeOrderEvents(handler func(models.OrderEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := declareQueue(c.channel, c.queue)
	if err != nil {
		return fmt.Errorf("failed to declare queue for consuming: %w", err)
	}

	msgs, err := c.channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for order events on %s", queue.Name)

	go func() {
		for msg := range msgs {
			settle(msg, handler)
		}
	}()

	return nil
}

// acknowledger is the part of amqp.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(msg amqp.Delivery, handler func(models.OrderEvent) error) {
	if err := dispatch(msg.Body, &msg, handler); err != nil {
		log.Printf("Error processing message %d: %v", msg.DeliveryTag, err)
	}
}

func dispatch(body []byte, ack acknowledger, handler func(models.OrderEvent) error) error {
	event, err := DecodeOrderEvent(body)
	if err != nil {
		if nackErr := ack.Nack(false, false); nackErr != nil {
			return fmt.Errorf("%v (nack failed: %v)", err, nackErr)
		}
		return err
	}
	if err := handler(event); err != nil {
		if nackErr := ack.Nack(false, true); nackErr != nil {
			return fmt.Errorf("%v (nack failed: %v)", err, nackErr)
		}
		return err
	}
	return ack.Ack(false)
}
