package publisher_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/wind-weibull-service/internal/domain"
	"github.com/couchcryptid/wind-weibull-service/internal/observability"
	"github.com/couchcryptid/wind-weibull-service/internal/publisher"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockLoader struct {
	mu       sync.Mutex
	batches  [][]domain.RecomputeEvent
	failures int
	calls    int
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.RecomputeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failures > 0 {
		m.failures--
		return errors.New("broker unavailable")
	}
	m.batches = append(m.batches, slices.Clone(events))
	return nil
}

func (m *mockLoader) loaded() []domain.RecomputeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.RecomputeEvent
	for _, b := range m.batches {
		out = append(out, b...)
	}
	return out
}

func (m *mockLoader) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func event(session string, mean float64) domain.RecomputeEvent {
	return domain.RecomputeEvent{SessionID: session, Computation: "mean_on_scale", Trigger: "scale", Mean: mean}
}

func runPublisher(t *testing.T, p *publisher.Publisher) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, p.Run(ctx))
	}()
	return func() {
		stop()
		<-done
	}
}

// --- tests ---

func TestPublisher_FlushesFullBatch(t *testing.T) {
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()
	p := publisher.New(ldr, discardLogger(), metrics, 3, time.Hour, 16)
	stop := runPublisher(t, p)
	defer stop()

	for i := range 3 {
		require.True(t, p.Enqueue(event("s1", float64(i))))
	}

	require.Eventually(t, func() bool { return ldr.batchCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, ldr.loaded(), 3)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.EventsPublished), 0)
}

func TestPublisher_FlushesOnInterval(t *testing.T) {
	ldr := &mockLoader{}
	p := publisher.New(ldr, discardLogger(), observability.NewMetricsForTesting(), 50, 20*time.Millisecond, 16)
	stop := runPublisher(t, p)
	defer stop()

	require.True(t, p.Enqueue(event("s1", 6.2)))

	require.Eventually(t, func() bool { return len(ldr.loaded()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "s1", ldr.loaded()[0].SessionID)
}

func TestPublisher_RetriesFailedBatch(t *testing.T) {
	ldr := &mockLoader{failures: 1}
	metrics := observability.NewMetricsForTesting()
	p := publisher.New(ldr, discardLogger(), metrics, 1, time.Hour, 16)
	stop := runPublisher(t, p)
	defer stop()

	require.True(t, p.Enqueue(event("s1", 6.2)))

	require.Eventually(t, func() bool { return len(ldr.loaded()) == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PublishErrors), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.EventsPublished), 0)
}

func TestPublisher_FlushesRemainderOnShutdown(t *testing.T) {
	ldr := &mockLoader{}
	p := publisher.New(ldr, discardLogger(), observability.NewMetricsForTesting(), 50, time.Hour, 16)

	require.True(t, p.Enqueue(event("s1", 1)))
	require.True(t, p.Enqueue(event("s2", 2)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx))

	loaded := ldr.loaded()
	require.Len(t, loaded, 2)
	assert.Equal(t, "s1", loaded[0].SessionID)
	assert.Equal(t, "s2", loaded[1].SessionID)
}

func TestPublisher_DropsWhenQueueFull(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	p := publisher.New(&mockLoader{}, discardLogger(), metrics, 10, time.Hour, 2)

	assert.True(t, p.Enqueue(event("s1", 1)))
	assert.True(t, p.Enqueue(event("s1", 2)))
	assert.False(t, p.Enqueue(event("s1", 3)))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.EventsDropped), 0)
}

func TestPublisher_RunningGauge(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	p := publisher.New(&mockLoader{}, discardLogger(), metrics, 10, time.Hour, 2)
	stop := runPublisher(t, p)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.PublisherRunning) == 1
	}, time.Second, 5*time.Millisecond)

	stop()
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PublisherRunning), 0)
}
