package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akave-ai/alephweb/internal/model"
)

// SchemaRepository reads schema documents stored in postgres. Writes belong
// to whoever owns the schema catalogue.
type SchemaRepository struct {
	pool *pgxpool.Pool
}

// NewSchemaRepository returns a SchemaRepository using the given pool.
func NewSchemaRepository(pool *pgxpool.Pool) *SchemaRepository {
	return &SchemaRepository{pool: pool}
}

// Schemata returns every stored schema document keyed by id.
func (r *SchemaRepository) Schemata(ctx context.Context) (map[string]model.SchemaDescriptor, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, document FROM schemata ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]model.SchemaDescriptor)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		var doc model.SchemaDescriptor
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode schema %q: %w", id, err)
		}
		out[id] = doc
	}
	return out, rows.Err()
}
