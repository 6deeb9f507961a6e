package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/notifier"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

var errUnknownMessage = errors.New("not a notice request")

type NoticeProcessorConfig struct {
	Channel       string
	RetryAttempts int
	RetryDelay    time.Duration
}

// NoticeProcessor delivers the confirmation notices the API queued on the
// broker.
type NoticeProcessor struct {
	broker  messaging.Broker
	sender  notifier.Sender
	config  NoticeProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewNoticeProcessor(
	broker messaging.Broker,
	sender notifier.Sender,
	config NoticeProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) (*NoticeProcessor, error) {
	if config.Channel == "" {
		return nil, errors.New("channel must not be empty")
	}
	if config.RetryAttempts <= 0 {
		return nil, errors.New("retry attempts must be greater than 0")
	}
	if config.RetryDelay < 0 {
		return nil, errors.New("retry delay must not be negative")
	}

	return &NoticeProcessor{
		broker:  broker,
		sender:  sender,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Start consumes the channel until ctx is done or the subscription closes.
func (p *NoticeProcessor) Start(ctx context.Context) error {
	msgs, err := p.broker.Subscribe(ctx, p.config.Channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", p.config.Channel, err)
	}

	p.logger.Info("starting notice processor", "channel", p.config.Channel)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down notice processor")
			return nil
		case raw, ok := <-msgs:
			if !ok {
				p.logger.Info("notice subscription closed")
				return nil
			}
			if err := p.handle(ctx, raw); err != nil {
				if errors.Is(err, errUnknownMessage) {
					continue
				}
				p.logger.Error(err, "failed to deliver notice")
			}
		}
	}
}

func (p *NoticeProcessor) handle(ctx context.Context, raw []byte) error {
	var envelope struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	// booking events share the channel
	if envelope.Type != model.EventNoticeRequested {
		return errUnknownMessage
	}

	var req notifier.Request
	if err := json.Unmarshal(envelope.Payload, &req); err != nil {
		return fmt.Errorf("failed to decode notice request: %w", err)
	}

	err := retry(ctx, p.config.RetryAttempts, p.config.RetryDelay, func() error {
		return p.sender.Send(ctx, req.Recipient, req.Details)
	})
	if err != nil {
		p.metrics.NoticesSent.WithLabelValues("failed").Inc()
		return fmt.Errorf("notice for appointment %s: %w", req.Details.AppointmentID, err)
	}

	p.metrics.NoticesSent.WithLabelValues("delivered").Inc()
	p.logger.Debug("notice delivered", "appointment_id", req.Details.AppointmentID)
	return nil
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, notifier.ErrNoRecipient) {
			return err
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}
