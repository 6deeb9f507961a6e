package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/notifier"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// chanBroker feeds Subscribe from a test controlled channel.
type chanBroker struct {
	messaging.NopBroker
	ch chan []byte
}

func (b *chanBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return b.ch, nil
}

type flakySender struct {
	mu       sync.Mutex
	failures int
	sent     []string
}

func (s *flakySender) Send(_ context.Context, recipient string, _ model.AppointmentNotice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if recipient == "" {
		return notifier.ErrNoRecipient
	}
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, recipient)
	return nil
}

func encode(t *testing.T, msgType, recipient string) []byte {
	t.Helper()
	raw, err := json.Marshal(messaging.Message{
		Type:    msgType,
		Payload: notifier.Request{Recipient: recipient, Details: model.AppointmentNotice{AppointmentID: "a1"}},
	})
	require.NoError(t, err)
	return raw
}

func newProcessor(t *testing.T, b messaging.Broker, s notifier.Sender) (*NoticeProcessor, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewNop()
	p, err := NewNoticeProcessor(b, s, NoticeProcessorConfig{
		Channel:       "clinic.appointments",
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	}, logger.Nop(), m)
	require.NoError(t, err)
	return p, m
}

func TestNewNoticeProcessor_Config(t *testing.T) {
	_, err := NewNoticeProcessor(messaging.NopBroker{}, &flakySender{}, NoticeProcessorConfig{RetryAttempts: 1}, logger.Nop(), metrics.NewNop())
	assert.Error(t, err)
	_, err = NewNoticeProcessor(messaging.NopBroker{}, &flakySender{}, NoticeProcessorConfig{Channel: "c"}, logger.Nop(), metrics.NewNop())
	assert.Error(t, err)
}

func TestHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("retries until delivered", func(t *testing.T) {
		sender := &flakySender{failures: 2}
		p, m := newProcessor(t, messaging.NopBroker{}, sender)

		require.NoError(t, p.handle(ctx, encode(t, model.EventNoticeRequested, "ana@mail.com")))
		assert.Equal(t, []string{"ana@mail.com"}, sender.sent)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.NoticesSent.WithLabelValues("delivered")))
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		sender := &flakySender{failures: 5}
		p, m := newProcessor(t, messaging.NopBroker{}, sender)

		assert.Error(t, p.handle(ctx, encode(t, model.EventNoticeRequested, "ana@mail.com")))
		assert.Equal(t, 2, sender.failures)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.NoticesSent.WithLabelValues("failed")))
	})

	t.Run("missing recipient is not retried", func(t *testing.T) {
		sender := &flakySender{}
		p, _ := newProcessor(t, messaging.NopBroker{}, sender)
		assert.ErrorIs(t, p.handle(ctx, encode(t, model.EventNoticeRequested, "")), notifier.ErrNoRecipient)
	})

	t.Run("skips other events", func(t *testing.T) {
		sender := &flakySender{}
		p, _ := newProcessor(t, messaging.NopBroker{}, sender)
		assert.ErrorIs(t, p.handle(ctx, encode(t, model.EventAppointmentBooked, "ana@mail.com")), errUnknownMessage)
		assert.Empty(t, sender.sent)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		p, _ := newProcessor(t, messaging.NopBroker{}, &flakySender{})
		assert.Error(t, p.handle(ctx, []byte("{")))
	})
}

func TestStart_ConsumesUntilClosed(t *testing.T) {
	broker := &chanBroker{ch: make(chan []byte, 3)}
	sender := &flakySender{}
	p, _ := newProcessor(t, broker, sender)

	broker.ch <- encode(t, model.EventAppointmentBooked, "x@mail.com")
	broker.ch <- []byte("not json")
	broker.ch <- encode(t, model.EventNoticeRequested, "ana@mail.com")
	close(broker.ch)

	require.NoError(t, p.Start(context.Background()))
	assert.Equal(t, []string{"ana@mail.com"}, sender.sent)
}

func TestStart_StopsOnCancel(t *testing.T) {
	broker := &chanBroker{ch: make(chan []byte)}
	p, _ := newProcessor(t, broker, &flakySender{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("processor did not stop")
	}
}
