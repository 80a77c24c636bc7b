package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/wind-weibull-service/internal/domain"
	"github.com/couchcryptid/wind-weibull-service/internal/observability"
)

const (
	initialBackoff  = 200 * time.Millisecond
	maxBackoff      = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// BatchLoader writes multiple recomputation events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.RecomputeEvent) error
}

// Publisher buffers recomputation events and writes them to a BatchLoader
// in batches, flushing when a batch fills or the flush interval elapses.
type Publisher struct {
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	events        chan domain.RecomputeEvent
	batchSize     int
	flushInterval time.Duration
}

// New creates a Publisher with a queue of bufferSize events.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration, bufferSize int) *Publisher {
	return &Publisher{
		loader:        l,
		logger:        logger,
		metrics:       metrics,
		events:        make(chan domain.RecomputeEvent, bufferSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Enqueue hands an event to the publisher without blocking. It returns false
// and counts a drop when the queue is full.
func (p *Publisher) Enqueue(ev domain.RecomputeEvent) bool {
	select {
	case p.events <- ev:
		return true
	default:
		p.metrics.EventsDropped.Inc()
		return false
	}
}

// Run drains the queue until the context is cancelled, then makes one last
// attempt to flush whatever is still buffered.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("publisher started", "batch_size", p.batchSize, "flush_interval", p.flushInterval)
	p.metrics.PublisherRunning.Set(1)
	defer p.metrics.PublisherRunning.Set(0)

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.RecomputeEvent, 0, p.batchSize)
	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("publisher stopping", "reason", ctx.Err())
			p.shutdownFlush(ctx, p.drain(batch))
			return nil
		case ev := <-p.events:
			batch = append(batch, ev)
			if len(batch) >= p.batchSize {
				batch = p.flush(ctx, batch, &backoff)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				batch = p.flush(ctx, batch, &backoff)
			}
		}
	}
}

// flush loads the batch, retrying with backoff until it succeeds or the
// context ends. It returns the batch to keep buffering: empty on success,
// unchanged if the context ended first.
func (p *Publisher) flush(ctx context.Context, batch []domain.RecomputeEvent, backoff *time.Duration) []domain.RecomputeEvent {
	for {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			p.metrics.EventsPublished.Add(float64(len(batch)))
			p.metrics.PublishBatchSize.Observe(float64(len(batch)))
			*backoff = initialBackoff
			return batch[:0]
		}

		p.metrics.PublishErrors.Inc()
		p.logger.Error("load batch failed", "error", err, "batch_size", len(batch), "backoff", *backoff)
		if !p.backoffOrStop(ctx, backoff) {
			return batch
		}
	}
}

// drain moves events still queued into the batch without blocking.
func (p *Publisher) drain(batch []domain.RecomputeEvent) []domain.RecomputeEvent {
	for {
		select {
		case ev := <-p.events:
			batch = append(batch, ev)
		default:
			return batch
		}
	}
}

func (p *Publisher) shutdownFlush(ctx context.Context, batch []domain.RecomputeEvent) {
	if len(batch) == 0 {
		return
	}
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := p.loader.LoadBatch(flushCtx, batch); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Error("final flush failed, events lost", "error", err, "batch_size", len(batch))
		return
	}
	p.metrics.EventsPublished.Add(float64(len(batch)))
	p.metrics.PublishBatchSize.Observe(float64(len(batch)))
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the context ended.
func (p *Publisher) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
