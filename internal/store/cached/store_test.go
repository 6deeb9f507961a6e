package cached

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/store"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if v := args.Get(0); v != nil {
		return v.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStore) Ping(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *mockStore) Close() error { return m.Called().Error(0) }

func TestStore_ReadsThroughOnce(t *testing.T) {
	ctx := context.Background()
	next := new(mockStore)
	next.On("Get", ctx, "k").Return([]byte(`[1]`), nil).Once()

	m := metrics.NewNop()
	s := New(next, time.Minute, m)

	for i := 0; i < 3; i++ {
		v, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `[1]`, string(v))
	}

	next.AssertExpectations(t)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoreCacheHits.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreCacheHits.WithLabelValues("miss")))
}

func TestStore_SetIsWriteThrough(t *testing.T) {
	ctx := context.Background()
	next := new(mockStore)
	next.On("Set", ctx, "k", []byte(`[2]`)).Return(nil).Once()

	s := New(next, time.Minute, nil)
	require.NoError(t, s.Set(ctx, "k", []byte(`[2]`)))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(v))
	next.AssertExpectations(t)
	next.AssertNotCalled(t, "Get", ctx, "k")
}

func TestStore_FailedSetInvalidates(t *testing.T) {
	ctx := context.Background()
	next := new(mockStore)
	next.On("Set", ctx, "k", []byte(`[1]`)).Return(nil).Once()
	next.On("Set", ctx, "k", []byte(`[2]`)).Return(errors.New("down")).Once()
	next.On("Get", ctx, "k").Return([]byte(`[1]`), nil).Once()

	s := New(next, time.Minute, nil)
	require.NoError(t, s.Set(ctx, "k", []byte(`[1]`)))
	require.Error(t, s.Set(ctx, "k", []byte(`[2]`)))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(v))
	next.AssertExpectations(t)
}

func TestStore_MissIsNotCached(t *testing.T) {
	ctx := context.Background()
	next := new(mockStore)
	next.On("Get", ctx, "k").Return(nil, store.ErrNotFound).Twice()
	next.On("Delete", ctx, "k").Return(nil).Once()

	s := New(next, time.Minute, nil)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, s.Delete(ctx, "k"))
	next.AssertExpectations(t)
}
