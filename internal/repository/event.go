package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akave-ai/alephweb/internal/model"
)

// EventRepository stores request telemetry records.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns an EventRepository using the given pool.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Insert stores rec under a new id and returns it.
func (r *EventRepository) Insert(ctx context.Context, origin string, rec model.TelemetryRecord) (uuid.UUID, error) {
	headers, err := json.Marshal(rec.Headers)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode headers: %w", err)
	}
	id := uuid.New()
	_, err = r.pool.Exec(ctx, `
		INSERT INTO request_events (id, origin, endpoint, duration, url, query_string, headers,
			role_id, remote_addr, method, status_code, response_length)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id,
		origin,
		rec.Endpoint,
		rec.Duration,
		rec.URL,
		rec.QueryString,
		headers,
		rec.Role,
		rec.RemoteAddr,
		rec.Method,
		rec.StatusCode,
		rec.ResponseLength,
	)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
