// Package pgsink stores request records in the request_events table.
package pgsink

import (
	"context"

	"github.com/google/uuid"

	"github.com/akave-ai/alephweb/internal/model"
)

// Inserter is implemented by repository.EventRepository.
type Inserter interface {
	Insert(ctx context.Context, origin string, rec model.TelemetryRecord) (uuid.UUID, error)
}

// Sink writes records through an Inserter.
type Sink struct {
	repo Inserter
}

// New returns a Sink using repo.
func New(repo Inserter) *Sink {
	return &Sink{repo: repo}
}

func (s *Sink) Name() string { return "postgres" }

func (s *Sink) Report(ctx context.Context, origin string, rec model.TelemetryRecord) error {
	_, err := s.repo.Insert(ctx, origin, rec)
	return err
}

// Close is a no-op; the pool belongs to the server.
func (s *Sink) Close(context.Context) error { return nil }
