package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fekuna/storefront-service/internal/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	key     string
	value   []byte
	headers map[string]string
}

type fakeProducer struct {
	messages []captured
}

func (f *fakeProducer) Publish(_ context.Context, key string, value []byte, headers map[string]string) error {
	f.messages = append(f.messages, captured{key: key, value: value, headers: headers})
	return nil
}

func TestPublishOrderEvent(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaPublisher(fp)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := p.PublishOrderEvent(context.Background(), order.Event{
		Type:        order.EventCreated,
		OrderID:     "o-1",
		OrderNumber: "ORD-ABC-WXYZ",
		Status:      "pending",
		TotalAmount: "155.00",
		OccurredAt:  at,
	})
	require.NoError(t, err)
	require.Len(t, fp.messages, 1)

	msg := fp.messages[0]
	assert.Equal(t, "o-1", msg.key)
	assert.Equal(t, order.EventCreated, msg.headers["event-type"])

	var decoded order.Event
	require.NoError(t, json.Unmarshal(msg.value, &decoded))
	assert.Equal(t, "155.00", decoded.TotalAmount)
	assert.Empty(t, decoded.PreviousStatus)
	assert.True(t, at.Equal(decoded.OccurredAt))
}
