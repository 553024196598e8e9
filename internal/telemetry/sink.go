// Package telemetry delivers request telemetry records to sinks without
// holding up the requests that produced them.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/akave-ai/alephweb/internal/model"
)

// Sink receives telemetry records. Implementations may block; the Reporter
// calls them from its own goroutine with a deadline.
type Sink interface {
	Name() string
	Report(ctx context.Context, origin string, rec model.TelemetryRecord) error
	Close(ctx context.Context) error
}

// MultiSink fans a record out to every sink it holds.
type MultiSink []Sink

func (m MultiSink) Name() string { return "multi" }

func (m MultiSink) Report(ctx context.Context, origin string, rec model.TelemetryRecord) error {
	var errs []error
	for _, s := range m {
		if err := s.Report(ctx, origin, rec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Names returns the names of the sinks.
func (m MultiSink) Names() []string {
	names := make([]string, 0, len(m))
	for _, s := range m {
		names = append(names, s.Name())
	}
	return names
}
