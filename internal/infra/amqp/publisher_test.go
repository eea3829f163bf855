package amqp

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (c *recordingChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange = exchange
	c.key = key
	c.msg = msg
	return c.err
}

func (c *recordingChannel) Close() error { return nil }

func TestPublishRoutesByEventType(t *testing.T) {
	ch := &recordingChannel{}
	p := &EventPublisher{channel: ch, exchange: "assessment", log: zerolog.Nop()}

	if err := p.Publish("attempt.submitted", map[string]int{"score": 2}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ch.exchange != "assessment" || ch.key != "attempt.submitted" {
		t.Fatalf("unexpected routing %s/%s", ch.exchange, ch.key)
	}
	if ch.msg.ContentType != "application/json" {
		t.Fatalf("unexpected content type %q", ch.msg.ContentType)
	}

	var body struct {
		Type    string         `json:"type"`
		Payload map[string]int `json:"payload"`
	}
	if err := json.Unmarshal(ch.msg.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Type != "attempt.submitted" || body.Payload["score"] != 2 {
		t.Fatalf("unexpected envelope %+v", body)
	}
}

func TestPublishReturnsChannelError(t *testing.T) {
	ch := &recordingChannel{err: errors.New("channel closed")}
	p := &EventPublisher{channel: ch, exchange: "assessment", log: zerolog.Nop()}

	if err := p.Publish("attempt.submitted", nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEnvelopeRejectsUnencodablePayload(t *testing.T) {
	if _, err := Envelope("x", make(chan int)); err == nil {
		t.Fatalf("expected encode error")
	}
}
