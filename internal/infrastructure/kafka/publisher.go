// Package kafka publica eventos de pedidos en Kafka con segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/jhoicas/Pedidos-api/internal/application/order"
)

// EventOrderPlaced valor del header "event-type".
const EventOrderPlaced = "order.placed"

var _ order.EventPublisher = (*Publisher)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher escribe eventos en un topic. La key es el vendedor para conservar el orden por vendedor.
type Publisher struct {
	w     messageWriter
	topic string
}

// NewPublisher crea un writer reutilizable contra los brokers.
func NewPublisher(brokers []string, topic string) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{w: w, topic: topic}
}

// PublishOrderPlaced serializa el evento en JSON y lo escribe.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, ev order.OrderPlacedEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", EventOrderPlaced, err)
	}
	msg := kafkago.Message{
		Key:   []byte(ev.SellerID),
		Value: payload,
		Time:  ev.PlacedAt,
		Headers: []kafkago.Header{
			{Key: "event-type", Value: []byte(EventOrderPlaced)},
			{Key: "order-id", Value: []byte(ev.OrderID)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", p.topic, err)
	}
	return nil
}

// Close vacía el buffer y cierra las conexiones.
func (p *Publisher) Close() error {
	return p.w.Close()
}
