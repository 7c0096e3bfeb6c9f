package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRabbitMQContainer(ctx context.Context, t *testing.T) (testcontainers.Container, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-management",
		ExposedPorts: []string{"5672/tcp"},
		Env: map[string]string{
			"RABBITMQ_DEFAULT_USER": "guest",
			"RABBITMQ_DEFAULT_PASS": "guest",
		},
		WaitingFor: wait.ForListeningPort("5672/tcp").
			WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate rabbitmq container: %v", err)
		}
	}
	return container, cleanup
}

func amqpURI(ctx context.Context, t *testing.T, container testcontainers.Container) string {
	t.Helper()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5672")
	require.NoError(t, err)
	return "amqp://guest:guest@" + host + ":" + port.Port() + "/"
}

func TestGetBillingQueues(t *testing.T) {
	queues := GetBillingQueues()
	require.Len(t, queues, 2)
	assert.Equal(t, "billing.notifications.payment-failed", queues[0].QueueName)
	assert.Equal(t, RoutingKeyPaymentFailed, queues[0].RoutingKey)
	assert.Equal(t, "billing.notifications.trial-expired", queues[1].QueueName)
	assert.Equal(t, RoutingKeyTrialExpired, queues[1].RoutingKey)
}

func TestPublishToBillingExchange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, cleanup := setupRabbitMQContainer(ctx, t)
	defer cleanup()

	conn, err := Connect(amqpURI(ctx, t, container), 5, time.Second)
	require.NoError(t, err)
	defer func() {
		if err := conn.Close(); err != nil {
			t.Errorf("failed to close connection: %v", err)
		}
	}()

	ch, err := SetupChannel(conn, GetBillingQueues())
	require.NoError(t, err)
	defer func() {
		if err := ch.Close(); err != nil {
			t.Errorf("failed to close channel: %v", err)
		}
	}()

	type notification struct {
		UserUID string `json:"user_uid"`
		Kind    string `json:"kind"`
	}

	publisher := NewPublisher(ch, BillingExchange)
	err = publisher.Publish(RoutingKeyPaymentFailed, notification{UserUID: "u1", Kind: "payment_failed"})
	require.NoError(t, err)

	deliveries, err := ch.Consume("billing.notifications.payment-failed", "test-consumer", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got notification
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, "u1", got.UserUID)
		assert.Equal(t, "payment_failed", got.Kind)
		assert.Equal(t, "application/json", d.ContentType)
	case <-time.After(10 * time.Second):
		t.Fatal("message was not delivered to the bound queue")
	}
}

func TestPublishToTrialExpiredQueue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, cleanup := setupRabbitMQContainer(ctx, t)
	defer cleanup()

	conn, err := Connect(amqpURI(ctx, t, container), 5, time.Second)
	require.NoError(t, err)
	defer func() {
		if err := conn.Close(); err != nil {
			t.Errorf("failed to close connection: %v", err)
		}
	}()

	ch, err := SetupChannel(conn, GetBillingQueues())
	require.NoError(t, err)

	err = PublishMessage(ch, BillingExchange, RoutingKeyTrialExpired, map[string]string{"user_uid": "u2"})
	require.NoError(t, err)

	deliveries, err := ch.Consume("billing.notifications.trial-expired", "", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got map[string]string
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, "u2", got["user_uid"])
	case <-time.After(10 * time.Second):
		t.Fatal("message was not delivered to the bound queue")
	}
}
