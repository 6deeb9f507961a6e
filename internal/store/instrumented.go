package store

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type instrumented struct {
	next    Store
	metrics *metrics.Metrics
}

// Instrument records operation counts and latency for every call on s.
func Instrument(s Store, m *metrics.Metrics) Store {
	return &instrumented{next: s, metrics: m}
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "miss"
	case err != nil:
		status = "error"
	}
	i.metrics.StoreOperations.WithLabelValues(op, status).Inc()
	i.metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	v, err := i.next.Get(ctx, key)
	i.observe("get", start, err)
	return v, err
}

func (i *instrumented) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := i.next.Set(ctx, key, value)
	i.observe("set", start, err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Delete(ctx, key)
	i.observe("delete", start, err)
	return err
}

func (i *instrumented) Ping(ctx context.Context) error {
	start := time.Now()
	err := i.next.Ping(ctx)
	i.observe("ping", start, err)
	return err
}

func (i *instrumented) Close() error {
	return i.next.Close()
}
