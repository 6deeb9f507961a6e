package messaging

import (
	"context"
	"sync"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope every published event uses.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// NopBroker drops everything. Used when no broker is configured.
type NopBroker struct{}

func (NopBroker) Publish(context.Context, string, interface{}) error { return nil }

func (NopBroker) Subscribe(ctx context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (NopBroker) Close() error { return nil }

// RecordingBroker keeps published messages in memory.
type RecordingBroker struct {
	mu       sync.Mutex
	Messages map[string][]interface{}
}

func NewRecordingBroker() *RecordingBroker {
	return &RecordingBroker{Messages: make(map[string][]interface{})}
}

func (b *RecordingBroker) Publish(_ context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Messages[channel] = append(b.Messages[channel], message)
	return nil
}

func (b *RecordingBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return NopBroker{}.Subscribe(ctx, channel)
}

func (b *RecordingBroker) Close() error { return nil }

// Published returns a copy of what was sent on channel.
func (b *RecordingBroker) Published(channel string) []interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]interface{}, len(b.Messages[channel]))
	copy(out, b.Messages[channel])
	return out
}
