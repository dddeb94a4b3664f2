package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("down")

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	now := time.Unix(0, 0)
	b := NewBreaker(2, time.Minute)
	b.Now = func() time.Time { return now }
	b.Metrics = NewMetrics("pos", prometheus.NewRegistry())
	b.Target = "catalog"
	ctx := context.Background()
	fail := func(context.Context) error { return errDown }

	require.ErrorIs(t, b.Do(ctx, fail, nil), errDown)
	require.Equal(t, Closed, b.State())
	require.ErrorIs(t, b.Do(ctx, fail, nil), errDown)
	require.Equal(t, Open, b.State())

	calls := 0
	err := b.Do(ctx, func(context.Context) error { calls++; return nil }, nil)
	require.ErrorIs(t, err, ErrOpenCircuit)
	require.Zero(t, calls)
	require.Equal(t, float64(1), testutil.ToFloat64(b.Metrics.Transitions.WithLabelValues("catalog", "closed", "open")))

	now = now.Add(time.Minute)
	require.NoError(t, b.Do(ctx, func(context.Context) error { calls++; return nil }, nil))
	require.Equal(t, 1, calls)
	require.Equal(t, Closed, b.State())
}

func TestBreakerIgnoresUncountableErrors(t *testing.T) {
	b := NewBreaker(1, time.Minute)
	notFound := errors.New("not found")
	err := b.Do(context.Background(), func(context.Context) error { return notFound }, func(err error) bool {
		return !errors.Is(err, notFound)
	})
	require.ErrorIs(t, err, notFound)
	require.Equal(t, Closed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Unix(0, 0)
	b := NewBreaker(1, time.Second)
	b.Now = func() time.Time { return now }
	ctx := context.Background()
	fail := func(context.Context) error { return errDown }

	_ = b.Do(ctx, fail, nil)
	require.Equal(t, Open, b.State())
	now = now.Add(time.Second)
	require.ErrorIs(t, b.Do(ctx, fail, nil), errDown)
	require.Equal(t, Open, b.State())
}
