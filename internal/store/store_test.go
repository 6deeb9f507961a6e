package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type record struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	EmailSent *bool     `json:"emailSent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func TestLoad_AbsentKeyIsEmpty(t *testing.T) {
	items, err := Load[record](context.Background(), NewMemory(), KeyAppointments)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestLoad_MalformedIsEmpty(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"{not json", `{"id":"1"}`, "null", ""} {
		s := NewMemory()
		require.NoError(t, s.Set(ctx, KeyAppointments, []byte(raw)))

		items, err := Load[record](ctx, s, KeyAppointments)
		require.NoError(t, err, raw)
		assert.Empty(t, items, raw)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	sent := true
	created := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	var want []record
	for n := 0; n < 25; n++ {
		r := record{
			ID:        fmt.Sprintf("a%d", n),
			Date:      "2025-06-10",
			Time:      fmt.Sprintf("%02d:00", n%24),
			Status:    "scheduled",
			CreatedAt: created.Add(time.Duration(n) * time.Minute),
		}
		if n%2 == 0 {
			r.Notes = "bring results"
			r.EmailSent = &sent
		}
		want = append(want, r)
	}

	require.NoError(t, Save(ctx, s, KeyAppointments, want))
	got, err := Load[record](ctx, s, KeyAppointments)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSave_NilWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, Save[record](ctx, s, KeyWorkSchedules, nil))
	raw, err := s.Get(ctx, KeyWorkSchedules)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	ok, err := Exists(ctx, s, KeyWorkSchedules)
	require.NoError(t, err)
	assert.True(t, ok)
}

type failing struct{ Memory }

func (f *failing) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }

func TestLoad_BackendErrorPropagates(t *testing.T) {
	_, err := Load[record](context.Background(), &failing{}, KeyUsers)
	assert.ErrorContains(t, err, "disk gone")
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	buf := []byte(`[]`)
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInstrument(t *testing.T) {
	ctx := context.Background()
	m := metrics.NewNop()
	s := Instrument(NewMemory(), m)

	_, _ = s.Get(ctx, "missing")
	require.NoError(t, s.Set(ctx, "k", []byte("[]")))
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("get", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("get", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("set", "success")))
}
