package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"task-notify/pkg/config"
	"task-notify/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	TaskEventsExchange  = "task_events"
	ReminderEventsQueue = "reminder_task_events"
)

// Event types emitted by the task/team service.
const (
	EventTaskCreated        = "task.created"
	EventTaskUpdated        = "task.updated"
	EventTaskDeleted        = "task.deleted"
	EventTeamMembersChanged = "team.members_changed"
)

// TaskEvent is the wire format of a task or team change.
type TaskEvent struct {
	Type           string    `json:"type"`
	TaskID         string    `json:"task_id,omitempty"`
	TeamID         string    `json:"team_id,omitempty"`
	ActorID        string    `json:"actor_id,omitempty"`
	OrganizationID string    `json:"organization_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		TaskEventsExchange, // name
		"topic",            // type
		true,               // durable
		false,              // auto-deleted
		false,              // internal
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		ReminderEventsQueue, // name
		true,                // durable
		false,               // delete when unused
		false,               // exclusive
		false,               // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range []string{"task.*", "team.*"} {
		if err := channel.QueueBind(ReminderEventsQueue, key, TaskEventsExchange, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}

	// One unacked event at a time keeps reminder creation for a task ordered.
	if err := channel.Qos(1, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PublishTaskEvent publishes event with its type as routing key.
func (c *Client) PublishTaskEvent(event TaskEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = c.channel.Publish(
		TaskEventsExchange, // exchange
		event.Type,         // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish event to exchange=%s, routing_key=%s: %v", TaskEventsExchange, event.Type, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

// ConsumeTaskEvents delivers events to handler until the channel closes.
// Malformed messages are dropped; handler errors requeue the message once.
func (c *Client) ConsumeTaskEvents(handler func(event TaskEvent) error) error {
	msgs, err := c.channel.Consume(
		ReminderEventsQueue, // queue
		"",                  // consumer
		false,               // auto-ack
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,                 // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from queue: %s", ReminderEventsQueue)

	go func() {
		for msg := range msgs {
			var event TaskEvent
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				c.logger.Error("[RABBITMQ] Failed to unmarshal task event: %v, body=%s", err, string(msg.Body))
				msg.Nack(false, false)
				continue
			}
			if event.Type == "" {
				event.Type = msg.RoutingKey
			}

			if err := handler(event); err != nil {
				c.logger.Error("[RABBITMQ] Handler failed for event type=%s task=%s: %v", event.Type, event.TaskID, err)
				msg.Nack(false, !msg.Redelivered)
				continue
			}

			msg.Ack(false)
		}
		c.logger.Warn("[RABBITMQ] Delivery channel closed for queue %s", ReminderEventsQueue)
	}()

	return nil
}

// GetQueueLength returns the number of messages waiting in the queue.
func (c *Client) GetQueueLength() (int, error) {
	queue, err := c.channel.QueueInspect(ReminderEventsQueue)
	if err != nil {
		return 0, err
	}
	return queue.Messages, nil
}
