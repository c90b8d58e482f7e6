package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

// Notifier consumes order-created events and logs them for the admin
// console. It is the read side of the publisher; losing it only loses
// notifications, never orders.
type Notifier struct {
	reader *kafka.Reader
}

func NewNotifier(brokers ...string) *Notifier {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    Topic,
		GroupID:  "admin-notifier",
		MaxBytes: 10e6, // 10MB
	})
	return &Notifier{reader: reader}
}

func (n *Notifier) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		n.processMessage(ctx)
	}
}

func (n *Notifier) Close() {
	if err := n.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

func (n *Notifier) processMessage(ctx context.Context) {
	m, err := n.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading message: %v", err)
		return
	}

	summary, err := summarize(m.Value)
	if err != nil {
		log.Printf("error parsing message: %v", err)
		return
	}

	log.Print(summary)
}

func summarize(value []byte) (string, error) {
	var payload orderCreatedPayload
	if err := json.Unmarshal(value, &payload); err != nil {
		return "", err
	}

	return fmt.Sprintf("new order %s from user %s: %d item(s), total %s",
		payload.OrderID, payload.UserID, len(payload.Items), payload.Total), nil
}
