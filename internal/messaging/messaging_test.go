package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
)

func TestMemoryClient_RoundTrip(t *testing.T) {
	client := NewMemoryClient("transactions.events", 2)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := []byte("transaction-1")
	require.NoError(t, client.Publish(ctx, key, []byte(`{"id":1}`)))
	key[0] = 'X'

	got := make(chan Message, 1)
	go func() {
		_ = client.Consume(ctx, func(_ context.Context, msg Message) error {
			got <- msg
			return nil
		})
	}()

	select {
	case msg := <-got:
		assert.Equal(t, "transactions.events", msg.Topic)
		assert.Equal(t, "transaction-1", string(msg.Key))
		assert.JSONEq(t, `{"id":1}`, string(msg.Value))
	case <-ctx.Done():
		t.Fatal("message not delivered")
	}
}

func TestMemoryClient_PublishHonoursContext(t *testing.T) {
	client := NewMemoryClient("t", 1)
	require.NoError(t, client.Publish(context.Background(), nil, []byte("a")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, client.Publish(ctx, nil, []byte("b")), context.Canceled)
}

func TestNewClient_Drivers(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	logger := zap.NewNop()

	disabled, err := NewClient(lc, config.Config{Messaging: config.Messaging{Driver: "kafka"}}, logger)
	require.NoError(t, err)
	assert.IsType(t, noopClient{}, disabled)

	memory, err := NewClient(lc, config.Config{Messaging: config.Messaging{
		Enabled: true,
		Driver:  "memory",
		Kafka:   config.Kafka{Topic: "events"},
	}}, logger)
	require.NoError(t, err)
	assert.Equal(t, "events", memory.Topic())
	assert.IsType(t, &MemoryClient{}, memory)

	_, err = NewClient(lc, config.Config{Messaging: config.Messaging{Enabled: true, Driver: "nats"}}, logger)
	assert.Error(t, err)
}
