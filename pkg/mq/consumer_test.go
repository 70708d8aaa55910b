package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"portfoliobuilder/pkg/trace"
)

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAck) Ack(uint64, bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}
func (f *fakeAck) Reject(_ uint64, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func newTestConsumer(h MessageHandler) *Consumer {
	c := &Consumer{
		routingKey: "project.created",
		queue:      amqp091.Queue{Name: "project.created.q"},
		logger:     zap.NewNop(),
	}
	c.SetHandler(h)
	return c
}

func TestHandleDelivery_AcksOnSuccess(t *testing.T) {
	var gotTrace string
	c := newTestConsumer(func(ctx context.Context, _ json.RawMessage) error {
		gotTrace = trace.FromContext(ctx)
		return nil
	})
	ack := &fakeAck{}

	c.handleDelivery(amqp091.Delivery{
		Acknowledger: ack,
		Body:         []byte(`{}`),
		Headers:      amqp091.Table{TraceHeader: "t-1"},
	})

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Equal(t, "t-1", gotTrace)
}

func TestHandleDelivery_RequeuesRetryableOnce(t *testing.T) {
	c := newTestConsumer(func(context.Context, json.RawMessage) error {
		return context.DeadlineExceeded
	})

	first := &fakeAck{}
	c.handleDelivery(amqp091.Delivery{Acknowledger: first})
	assert.True(t, first.nacked)
	assert.True(t, first.requeue)

	second := &fakeAck{}
	c.handleDelivery(amqp091.Delivery{Acknowledger: second, Redelivered: true})
	assert.True(t, second.nacked)
	assert.False(t, second.requeue)
}

func TestHandleDelivery_DeadLettersPermanentErrors(t *testing.T) {
	c := newTestConsumer(func(context.Context, json.RawMessage) error {
		return errors.New("boom")
	})
	ack := &fakeAck{}
	c.handleDelivery(amqp091.Delivery{Acknowledger: ack})
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestHandleDelivery_RecoversPanic(t *testing.T) {
	c := newTestConsumer(func(context.Context, json.RawMessage) error {
		panic("bad handler")
	})
	ack := &fakeAck{}
	assert.NotPanics(t, func() {
		c.handleDelivery(amqp091.Delivery{Acknowledger: ack})
	})
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestStartConsuming_RequiresHandler(t *testing.T) {
	c := &Consumer{logger: zap.NewNop()}
	assert.Error(t, c.StartConsuming())
}
