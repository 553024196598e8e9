package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akave-ai/alephweb/internal/model"
)

// RoleRepository resolves roles and their group memberships.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a RoleRepository using the given pool.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// GetByAPIKey returns the role owning key, or nil if no role has it.
func (r *RoleRepository) GetByAPIKey(ctx context.Context, key string) (*model.Role, error) {
	var role model.Role
	err := r.pool.QueryRow(ctx, `
		SELECT r.id, r.name, r.type, r.is_admin,
		       COALESCE(array_agg(m.group_id) FILTER (WHERE m.group_id IS NOT NULL), '{}')
		FROM roles r
		LEFT JOIN role_memberships m ON m.member_id = r.id
		WHERE r.api_key = $1
		GROUP BY r.id`, key).Scan(
		&role.ID,
		&role.Name,
		&role.Type,
		&role.IsAdmin,
		&role.Groups,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}
