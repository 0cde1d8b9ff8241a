package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sales-crm/internal/domain"
)

// UserRepository supplies the sales organization directory.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `
        SELECT id, name, email, phone, role, COALESCE(reports_to, ''), region, password_hash, active
        FROM crm_users ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Phone,
			&user.Role,
			&user.ReportsTo,
			&user.Region,
			&user.PasswordHash,
			&user.Active,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

type seedUserRepository struct {
	users []domain.User
}

// NewSeedUserRepository serves the directory from loaded mock data.
func NewSeedUserRepository(seed *Seed) UserRepository {
	return &seedUserRepository{users: seed.Users}
}

func (r *seedUserRepository) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}
