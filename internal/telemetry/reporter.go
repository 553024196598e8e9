package telemetry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/akave-ai/alephweb/internal/model"
)

const (
	DefaultQueueSize   = 1024
	DefaultEmitTimeout = 5 * time.Second
)

type event struct {
	origin string
	rec    model.TelemetryRecord
}

// Stats are the reporter's lifetime counters.
type Stats struct {
	Queued   int64 `json:"queued"`
	Reported int64 `json:"reported"`
	Dropped  int64 `json:"dropped"`
	Failed   int64 `json:"failed"`
	Pending  int   `json:"pending"`
}

// Reporter hands records to a Sink from a single background goroutine.
// Report never blocks: when the queue is full the record is dropped and
// counted. Sink errors and panics are logged and counted, never returned.
type Reporter struct {
	sink    Sink
	queue   chan event
	stop    chan struct{}
	done    chan struct{}
	timeout time.Duration
	log     zerolog.Logger

	closeOnce sync.Once

	queued   atomic.Int64
	reported atomic.Int64
	dropped  atomic.Int64
	failed   atomic.Int64
}

// NewReporter starts a reporter delivering to sink.
func NewReporter(sink Sink, queueSize int, timeout time.Duration, log zerolog.Logger) *Reporter {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultEmitTimeout
	}
	r := &Reporter{
		sink:    sink,
		queue:   make(chan event, queueSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		timeout: timeout,
		log:     log.With().Str("component", "telemetry").Logger(),
	}
	go r.run()
	return r
}

// Report queues rec for delivery and reports whether it was accepted.
func (r *Reporter) Report(origin string, rec model.TelemetryRecord) bool {
	if r == nil {
		return false
	}
	select {
	case <-r.stop:
		r.dropped.Add(1)
		return false
	default:
	}
	select {
	case r.queue <- event{origin: origin, rec: rec}:
		r.queued.Add(1)
		return true
	default:
		if r.dropped.Add(1)%100 == 1 {
			r.log.Warn().Int64("dropped", r.dropped.Load()).Msg("telemetry queue full, dropping records")
		}
		return false
	}
}

// Stats returns a snapshot of the counters.
func (r *Reporter) Stats() Stats {
	return Stats{
		Queued:   r.queued.Load(),
		Reported: r.reported.Load(),
		Dropped:  r.dropped.Load(),
		Failed:   r.failed.Load(),
		Pending:  len(r.queue),
	}
}

// Sink returns the sink records are delivered to.
func (r *Reporter) Sink() Sink {
	return r.sink
}

// Close stops intake, delivers what is already queued and closes the sink.
func (r *Reporter) Close(ctx context.Context) error {
	var err error
	r.closeOnce.Do(func() {
		close(r.stop)
		select {
		case <-r.done:
		case <-ctx.Done():
			err = fmt.Errorf("telemetry drain: %w", ctx.Err())
			return
		}
		err = r.sink.Close(ctx)
	})
	return err
}

func (r *Reporter) run() {
	defer close(r.done)
	for {
		select {
		case ev := <-r.queue:
			r.deliver(ev)
		case <-r.stop:
			for {
				select {
				case ev := <-r.queue:
					r.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (r *Reporter) deliver(ev event) {
	defer func() {
		if p := recover(); p != nil {
			r.failed.Add(1)
			r.log.Error().Interface("panic", p).Str("origin", ev.origin).Str("sink", r.sink.Name()).Msg("telemetry sink panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.sink.Report(ctx, ev.origin, ev.rec); err != nil {
		r.failed.Add(1)
		r.log.Warn().Err(err).Str("origin", ev.origin).Str("sink", r.sink.Name()).Msg("telemetry report failed")
		return
	}
	r.reported.Add(1)
}
