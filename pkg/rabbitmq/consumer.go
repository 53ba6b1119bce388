/**
 * @description
 * RabbitMQ consumer used by the notification fanout. Declares the exchange,
 * a durable queue, binds them, and feeds deliveries to a handler callback
 * with manual ack/nack semantics.
 */
package rabbitmq

import (
	"log"

	"github.com/rabbitmq/amqp091-go"
)

// Consumer handles the connection and consumption of messages from RabbitMQ.
type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewConsumer creates a new RabbitMQ consumer.
func NewConsumer(amqpURL string) (*Consumer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.Dial(cleanURL)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Consumer{conn: conn, channel: channel}, nil
}

// MessageHandler processes a single delivery. It returns true to acknowledge
// the message, or false to reject and requeue it.
type MessageHandler func(body []byte) bool

// Consume binds a durable queue to the exchange with the routing key and
// blocks, dispatching deliveries to the handler.
func (c *Consumer) Consume(exchange, queueName, routingKey string, handler MessageHandler) error {
	err := c.channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return err
	}

	q, err := c.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return err
	}

	if err := c.channel.QueueBind(q.Name, routingKey, exchange, false, nil); err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		q.Name, // queue
		"",     // consumer
		false,  // auto-ack (we want manual acknowledgment)
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return err
	}

	for d := range msgs {
		log.Printf("Received a message with routing key: %s", d.RoutingKey)
		if handler(d.Body) {
			d.Ack(false)
		} else {
			d.Nack(false, true)
		}
	}
	return nil
}

// Close gracefully closes the channel and connection.
func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
