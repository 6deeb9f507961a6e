// Package notifier dispatches appointment confirmation notices.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
)

var ErrNoRecipient = errors.New("notice has no recipient")

// Sender delivers a confirmation notice. A nil error means it was sent.
type Sender interface {
	Send(ctx context.Context, recipient string, details model.AppointmentNotice) error
}

// Request is the broker payload for a notice waiting to be delivered.
type Request struct {
	Recipient string                  `json:"recipient"`
	Details   model.AppointmentNotice `json:"details"`
}

// Noop logs the notice and reports success without delivering anything.
type Noop struct {
	logger *zerolog.Logger
}

func NewNoop(logger *zerolog.Logger) *Noop {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Noop{logger: logger}
}

func (n *Noop) Send(_ context.Context, recipient string, details model.AppointmentNotice) error {
	n.logger.Info().
		Str("recipient", recipient).
		Str("appointment_id", details.AppointmentID).
		Str("date", details.Date).
		Str("time", details.Time).
		Msg("confirmation notice (not delivered)")
	return nil
}

// Broker hands the notice to a message channel for a worker to deliver.
type Broker struct {
	broker  messaging.Broker
	channel string
}

func NewBroker(broker messaging.Broker, channel string) *Broker {
	return &Broker{broker: broker, channel: channel}
}

// Queuer is implemented by senders that hand notices off instead of
// delivering them.
type Queuer interface {
	Queues() bool
}

func (b *Broker) Queues() bool { return true }

func (b *Broker) Send(ctx context.Context, recipient string, details model.AppointmentNotice) error {
	if recipient == "" {
		return ErrNoRecipient
	}
	msg := messaging.Message{
		Type:    model.EventNoticeRequested,
		Payload: Request{Recipient: recipient, Details: details},
	}
	if err := b.broker.Publish(ctx, b.channel, msg); err != nil {
		return fmt.Errorf("failed to queue notice: %w", err)
	}
	return nil
}
