package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/akave-ai/alephweb/internal/model"
)

type memSink struct {
	mu      sync.Mutex
	origins []string
	recs    []model.TelemetryRecord
	err     error
	panic   bool
	block   chan struct{}
	closed  bool
}

func (s *memSink) Name() string { return "mem" }

func (s *memSink) Report(ctx context.Context, origin string, rec model.TelemetryRecord) error {
	if s.block != nil {
		<-s.block
	}
	if s.panic {
		panic("sink exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.origins = append(s.origins, origin)
	s.recs = append(s.recs, rec)
	return s.err
}

func (s *memSink) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *memSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

func TestReporter_DeliversAndDrainsOnClose(t *testing.T) {
	sink := &memSink{}
	r := NewReporter(sink, 16, time.Second, zerolog.Nop())

	for i := 0; i < 10; i++ {
		if !r.Report("views.ui", model.TelemetryRecord{Endpoint: "ui", StatusCode: 200}) {
			t.Fatalf("record %d rejected", i)
		}
	}
	if err := r.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if sink.count() != 10 {
		t.Fatalf("delivered = %d, want 10", sink.count())
	}
	if !sink.closed {
		t.Fatal("sink not closed")
	}
	st := r.Stats()
	if st.Queued != 10 || st.Reported != 10 || st.Dropped != 0 || st.Failed != 0 {
		t.Fatalf("stats = %+v", st)
	}
	if sink.origins[0] != "views.ui" {
		t.Fatalf("origin = %q", sink.origins[0])
	}
}

func TestReporter_DropsWhenFull(t *testing.T) {
	sink := &memSink{block: make(chan struct{})}
	r := NewReporter(sink, 1, time.Second, zerolog.Nop())

	accepted := 0
	for i := 0; i < 50; i++ {
		if r.Report("views.ui", model.TelemetryRecord{}) {
			accepted++
		}
	}
	// one record may be held by the worker, one sits in the queue
	if accepted > 2 {
		t.Fatalf("accepted = %d, want at most 2", accepted)
	}
	if r.Stats().Dropped < 48 {
		t.Fatalf("dropped = %d", r.Stats().Dropped)
	}
	close(sink.block)
	if err := r.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestReporter_SinkFailuresAreContained(t *testing.T) {
	tests := []struct {
		name string
		sink *memSink
	}{
		{"error", &memSink{err: errors.New("collector down")}},
		{"panic", &memSink{panic: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReporter(tt.sink, 4, time.Second, zerolog.Nop())
			r.Report("views.metadata", model.TelemetryRecord{})
			r.Report("views.metadata", model.TelemetryRecord{})
			if err := r.Close(context.Background()); err != nil {
				t.Fatalf("close: %v", err)
			}
			st := r.Stats()
			if st.Failed != 2 || st.Reported != 0 {
				t.Fatalf("stats = %+v", st)
			}
		})
	}
}

func TestReporter_RejectsAfterClose(t *testing.T) {
	r := NewReporter(&memSink{}, 4, time.Second, zerolog.Nop())
	if err := r.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if r.Report("views.ui", model.TelemetryRecord{}) {
		t.Fatal("report accepted after close")
	}
	if err := r.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestReporter_CloseHonoursDeadline(t *testing.T) {
	sink := &memSink{block: make(chan struct{})}
	defer close(sink.block)
	r := NewReporter(sink, 4, time.Second, zerolog.Nop())
	r.Report("views.ui", model.TelemetryRecord{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("close err = %v", err)
	}
}

func TestMultiSink(t *testing.T) {
	a := &memSink{}
	b := &memSink{err: errors.New("nope")}
	m := MultiSink{a, b}
	err := m.Report(context.Background(), "views.ui", model.TelemetryRecord{})
	if err == nil || err.Error() != "mem: nope" {
		t.Fatalf("err = %v", err)
	}
	if a.count() != 1 || b.count() != 1 {
		t.Fatal("every sink must receive the record")
	}
	if got := m.Names(); len(got) != 2 {
		t.Fatalf("names = %v", got)
	}
}
