package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type mockProducer struct {
	msgs []kafka.Message
	err  error
}

func (m *mockProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	prod := &mockProducer{}
	pub := NewKafkaPublisher(prod, "orders")
	orderID := uuid.New()

	err := pub.Publish(context.Background(), Event{
		Type:        OrderStatusChanged,
		OrderID:     orderID,
		OrderNumber: 42,
		Status:      "PREPARING",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prod.msgs) != 1 {
		t.Fatalf("messages: got %d, want 1", len(prod.msgs))
	}

	msg := prod.msgs[0]
	if msg.Topic != "orders" {
		t.Errorf("topic: got %q", msg.Topic)
	}
	if string(msg.Key) != orderID.String() {
		t.Errorf("key: got %q, want order ID", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != string(OrderStatusChanged) {
		t.Errorf("headers: got %+v", msg.Headers)
	}

	var got Event
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.OrderNumber != 42 || got.Status != "PREPARING" {
		t.Errorf("payload: got %+v", got)
	}
	if got.At.IsZero() {
		t.Error("payload timestamp should be set")
	}
}

func TestKafkaPublisher_KeyFallsBackToTab(t *testing.T) {
	prod := &mockProducer{}
	tabID := uuid.New()

	if err := NewKafkaPublisher(prod, "orders").Publish(context.Background(), Event{Type: TabClosed, TabID: tabID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(prod.msgs[0].Key) != tabID.String() {
		t.Errorf("key: got %q, want tab ID", prod.msgs[0].Key)
	}
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	pub := NewKafkaPublisher(&mockProducer{err: errors.New("broker down")}, "orders")

	if err := pub.Publish(context.Background(), Event{Type: OrderCreated}); err == nil {
		t.Fatal("expected error")
	}
}
