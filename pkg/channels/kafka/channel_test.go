package kafka

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/leadflow/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kafkaTc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092,"))
	assert.Empty(t, ParseBrokers(""))
}

func TestCreateChannel_NoBrokers(t *testing.T) {
	_, _, err := CreateChannel(watermill.NopLogger{}, nil, "leadflow-test", false)
	assert.ErrorIs(t, err, ErrNoBrokers)
}

func TestPartitionKey(t *testing.T) {
	msg := message.NewMessage("1", nil)
	msg.Metadata.Set(events.EventMetadataKey, "Lead:L1")

	key, err := partitionKey(events.Topic, msg)
	require.NoError(t, err)
	assert.Equal(t, "Lead:L1", key)
}

func TestCreateChannel_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Kafka container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := kafkaTc.Run(ctx, "confluentinc/confluent-local:7.7.0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	logger := watermill.NewSlogLogger(slog.New(slog.DiscardHandler))

	pub, sub, err := CreateChannel(logger, brokers, "leadflow-test", false)
	require.NoError(t, err)

	defer func() {
		_ = pub.Close()
		_ = sub.Close()
	}()

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"id":"1"}`))
	msg.Metadata.Set(events.EventMetadataKey, "Lead:L1")
	require.NoError(t, pub.Publish(events.Topic, msg))

	messages, err := sub.Subscribe(ctx, events.Topic)
	require.NoError(t, err)

	select {
	case received := <-messages:
		assert.Equal(t, `{"id":"1"}`, string(received.Payload))
		assert.Equal(t, "Lead:L1", received.Metadata.Get(events.EventMetadataKey))
		received.Ack()
	case <-ctx.Done():
		t.Fatal("message not received")
	}
}
