package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/md-rashed-zaman/tutorbook/libs/kafkax"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockInbox struct{ mock.Mock }

func (m *mockInbox) Record(ctx context.Context, eventID, eventType string) (bool, error) {
	args := m.Called(eventID, eventType)
	return args.Bool(0), args.Error(1)
}

func (m *mockInbox) Forget(ctx context.Context, eventID string) error {
	return m.Called(eventID).Error(0)
}

// sliceReader hands out msgs in order, then cancels the run.
type sliceReader struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	cancel context.CancelFunc
	closed bool
}

func (r *sliceReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *sliceReader) Close() error {
	r.closed = true
	return nil
}

func msg(id, topic string) kafka.Message {
	return kafka.Message{Topic: topic, Headers: kafkax.MetaHeaders(kafkax.EventMeta{EventID: id, EventType: topic})}
}

func run(t *testing.T, inbox Inbox, handler Handler, msgs ...kafka.Message) *sliceReader {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &sliceReader{msgs: msgs, cancel: cancel}
	c := NewWithReader(slog.New(slog.NewTextHandler(io.Discard, nil)), inbox, reader, handler)
	c.backoff = 0
	c.Run(ctx)
	return reader
}

func TestDuplicatesAreSkipped(t *testing.T) {
	inbox := &mockInbox{}
	inbox.On("Record", "e1", "booking.created.v1").Return(true, nil).Once()
	inbox.On("Record", "e1", "booking.created.v1").Return(false, nil).Once()

	var handled []string
	reader := run(t, inbox, func(_ context.Context, m kafka.Message) error {
		handled = append(handled, kafkax.ExtractEventMeta(m).EventID)
		return nil
	}, msg("e1", "booking.created.v1"), msg("e1", "booking.created.v1"))

	assert.Equal(t, []string{"e1"}, handled)
	assert.True(t, reader.closed)
	inbox.AssertExpectations(t)
}

func TestFailingHandlerIsRetriedThenForgotten(t *testing.T) {
	inbox := &mockInbox{}
	inbox.On("Record", "e2", "booking.status_changed.v1").Return(true, nil)
	inbox.On("Forget", "e2").Return(nil)

	calls := 0
	run(t, inbox, func(context.Context, kafka.Message) error {
		calls++
		return errors.New("boom")
	}, msg("e2", "booking.status_changed.v1"))

	assert.Equal(t, 3, calls)
	inbox.AssertCalled(t, "Forget", "e2")
}

func TestRecoveredHandlerKeepsInboxEntry(t *testing.T) {
	inbox := &mockInbox{}
	inbox.On("Record", "e3", "auth.user.deleted.v1").Return(true, nil)

	calls := 0
	run(t, inbox, func(context.Context, kafka.Message) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	}, msg("e3", "auth.user.deleted.v1"))

	assert.Equal(t, 2, calls)
	inbox.AssertNotCalled(t, "Forget", mock.Anything)
}

func TestInboxErrorSkipsHandler(t *testing.T) {
	inbox := &mockInbox{}
	inbox.On("Record", "e4", "booking.created.v1").Return(false, errors.New("db down"))

	run(t, inbox, func(context.Context, kafka.Message) error {
		t.Fatal("handler must not run")
		return nil
	}, msg("e4", "booking.created.v1"))
}
