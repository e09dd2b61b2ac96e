package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"hostdesk/internal/domain/records"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func TestPublisher_Publish(t *testing.T) {
	ch := new(MockChannel)
	var sent amqp.Publishing
	ch.On("PublishWithContext", mock.Anything, "", QueueName, false, false, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(5).(amqp.Publishing) }).
		Return(nil)

	p := newPublisher(ch, slog.New(slog.NewTextHandler(io.Discard, nil)))
	event := records.ChangeEvent{
		Table: "payments",
		Op:    records.OpCreate,
		ID:    12,
		At:    time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.Publish(context.Background(), event))

	assert.Equal(t, "application/json", sent.ContentType)
	assert.Equal(t, amqp.Persistent, sent.DeliveryMode)

	var got records.ChangeEvent
	require.NoError(t, json.Unmarshal(sent.Body, &got))
	assert.Equal(t, event.Table, got.Table)
	assert.Equal(t, event.Op, got.Op)
	assert.Equal(t, event.ID, got.ID)
	assert.True(t, event.At.Equal(got.At))
}

func TestPublisher_PublishError(t *testing.T) {
	ch := new(MockChannel)
	ch.On("PublishWithContext", mock.Anything, "", QueueName, false, false, mock.Anything).
		Return(errors.New("channel closed"))

	p := newPublisher(ch, slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := p.Publish(context.Background(), records.ChangeEvent{Table: "bookings", Op: records.OpUpdate, ID: 1})

	assert.ErrorContains(t, err, "channel closed")
}

func TestPublisher_Close(t *testing.T) {
	ch := new(MockChannel)
	ch.On("Close").Return(nil).Once()

	p := newPublisher(ch, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NoError(t, p.Close())
	ch.AssertExpectations(t)
}
