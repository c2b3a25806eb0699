package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishCall struct {
	exchange, key string
	msg           amqp.Publishing
}

type recordingChannel struct {
	calls  []publishCall
	err    error
	closed bool
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.calls = append(c.calls, publishCall{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return nil
}

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := &recordingChannel{}
	p := &RabbitPublisher{ch: ch, queue: "orders"}
	event := testEvents()[0]
	event.CreatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, ch.calls, 1)
	call := ch.calls[0]
	assert.Equal(t, "", call.exchange)
	assert.Equal(t, "orders", call.key)
	assert.Equal(t, "application/json", call.msg.ContentType)
	assert.Equal(t, amqp.Persistent, call.msg.DeliveryMode)
	assert.Equal(t, "order-1-1", call.msg.MessageId)
	assert.Equal(t, event.EventType, call.msg.Type)
	assert.Equal(t, event.CreatedAt, call.msg.Timestamp)
	assert.JSONEq(t, `{"order_id":"order-1"}`, string(call.msg.Body))
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	boom := errors.New("channel closed")
	p := &RabbitPublisher{ch: &recordingChannel{err: boom}, queue: "orders"}

	assert.ErrorIs(t, p.Publish(context.Background(), testEvents()[0]), boom)
}

func TestRabbitPublisher_Close(t *testing.T) {
	ch := &recordingChannel{}
	p := &RabbitPublisher{ch: ch, queue: "orders"}

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
