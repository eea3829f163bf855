package amqp

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// EventPublisher publishes {type, payload} envelopes to a topic exchange,
// using the event type as routing key.
type EventPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	channel  channel
	exchange string
	log      zerolog.Logger
}

func NewEventPublisher(amqpURL, exchange string, log zerolog.Logger) (*EventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &EventPublisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		log:      log.With().Str("component", "events").Logger(),
	}, nil
}

func (p *EventPublisher) Publish(eventType string, payload interface{}) error {
	body, err := Envelope(eventType, payload)
	if err != nil {
		return err
	}

	p.log.Debug().Str("type", eventType).RawJSON("body", body).Msg("publishing event")

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.Publish(
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *EventPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Envelope encodes an event as {"type": ..., "payload": ...}.
func Envelope(eventType string, payload interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
}
