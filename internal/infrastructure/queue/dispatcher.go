package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Jooy-edu/jooy-auth/internal/api/metrics"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// AuditDispatcher decouples login-attempt auditing from the request path by
// routing attempts to a fixed set of workers, sharded by email so attempts
// for one account are persisted in order. It satisfies ports.LoginAuditor.
type AuditDispatcher struct {
	workers []chan ports.LoginAttempt
	sink    ports.LoginAuditor
	log     zerolog.Logger
}

// NewAuditDispatcher creates an AuditDispatcher with numWorkers sharded
// workers writing to sink. If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, sink ports.LoginAuditor, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan ports.LoginAttempt, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.LoginAttempt, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an attempt for the worker responsible for its email.
// Non-blocking up to channelBuffer capacity.
func (d *AuditDispatcher) Record(_ context.Context, attempt ports.LoginAttempt) error {
	i := d.shardIndex(attempt.Email)
	d.workers[i] <- attempt
	metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
	return nil
}

// shardIndex maps an email deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32()) % len(d.workers)
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.LoginAttempt) {
	for {
		select {
		case <-ctx.Done():
			return
		case attempt, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if err := d.sink.Record(ctx, attempt); err != nil {
				d.log.Error().Err(err).
					Str("email", attempt.Email).
					Int("worker_id", id).
					Msg("audit write failed")
			}
		}
	}
}
