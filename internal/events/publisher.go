// Package events announces created orders on Kafka so the admin side
// sees incoming orders without polling the store.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
	"github.com/segmentio/kafka-go"
)

const Topic = "order-created"

type orderItemPayload struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type orderCreatedPayload struct {
	OrderID   string             `json:"order_id"`
	UserID    string             `json:"user_id"`
	Items     []orderItemPayload `json:"items"`
	Total     string             `json:"total"`
	CreatedAt time.Time          `json:"created_at"`
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) OrderCreated(ctx context.Context, order domain.Order) error {
	msg, err := buildMessage(order)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write order created message: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// buildMessage keys the message by user id so one user's orders stay in
// partition order.
func buildMessage(order domain.Order) (kafka.Message, error) {
	payload := orderCreatedPayload{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total.String(),
		CreatedAt: order.CreatedAt,
		Items:     make([]orderItemPayload, len(order.Items)),
	}
	for i, item := range order.Items {
		payload.Items[i] = orderItemPayload{
			Name:      item.Name,
			UnitPrice: item.UnitPrice.String(),
			Quantity:  item.Quantity,
		}
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal order created payload: %w", err)
	}

	return kafka.Message{
		Key:   []byte(order.UserID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("OrderCreated")},
		},
	}, nil
}
