package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

func sampleOrder() domain.Order {
	return domain.Order{
		ID:     "order-1",
		UserID: "user-1",
		Items: []domain.OrderItem{
			{Name: "margherita", UnitPrice: decimal.RequireFromString("39.90"), Quantity: 2},
			{Name: "guarana", UnitPrice: decimal.RequireFromString("7.30"), Quantity: 1},
		},
		Total:     decimal.RequireFromString("87.10"),
		CreatedAt: time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC),
	}
}

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage(sampleOrder())
	require.NoError(t, err)

	// Keyed by user id so one user's orders stay ordered
	assert.Equal(t, "user-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "OrderCreated", string(msg.Headers[0].Value))

	var payload orderCreatedPayload
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "order-1", payload.OrderID)
	assert.Equal(t, "87.1", payload.Total)
	assert.Equal(t, 2, len(payload.Items))
	assert.Equal(t, "margherita", payload.Items[0].Name)
	assert.Equal(t, 2, payload.Items[0].Quantity)
}

func TestSummarize_RoundTrip(t *testing.T) {
	msg, err := buildMessage(sampleOrder())
	require.NoError(t, err)

	summary, err := summarize(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, "new order order-1 from user user-1: 2 item(s), total 87.1", summary)
}

func TestSummarize_InvalidPayload(t *testing.T) {
	_, err := summarize([]byte("not json"))
	assert.Assert(t, err != nil)
}
