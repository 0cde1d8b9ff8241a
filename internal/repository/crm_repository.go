package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sales-crm/internal/domain"
)

// CRMRepository gives owner-scoped access to CRM records. Every list method
// returns only records whose owner or assignee is in ownerIDs.
type CRMRepository interface {
	ListAnchors(ctx context.Context, ownerIDs []string) ([]domain.Anchor, error)
	GetAnchor(ctx context.Context, id string) (*domain.Anchor, error)
	ListSpokes(ctx context.Context, ownerIDs []string) ([]domain.Spoke, error)
	GetSpoke(ctx context.Context, id string) (*domain.Spoke, error)
	UpdateSpokeScore(ctx context.Context, id string, score float64, priority string) error
	ListTasks(ctx context.Context, ownerIDs []string) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus) error
	ListActivities(ctx context.Context, ownerIDs []string, limit int) ([]domain.Activity, error)
	CountActivitiesSince(ctx context.Context, ownerIDs []string, since time.Time) (int, error)
	CreateActivity(ctx context.Context, activity *domain.Activity) error
}

type crmRepository struct {
	pool *pgxpool.Pool
}

// NewCRMRepository returns a Postgres-backed implementation.
func NewCRMRepository(pool *pgxpool.Pool) CRMRepository {
	return &crmRepository{pool: pool}
}

const anchorColumns = `id, name, industry, city, state, annual_turnover, status, owner_id,
            contact_name, contact_phone, lead_source, employee_count, created_at`

func scanAnchor(row pgx.Row) (*domain.Anchor, error) {
	var a domain.Anchor
	if err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Industry,
		&a.City,
		&a.State,
		&a.AnnualTurnover,
		&a.Status,
		&a.OwnerID,
		&a.ContactName,
		&a.ContactPhone,
		&a.LeadSource,
		&a.EmployeeCount,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *crmRepository) ListAnchors(ctx context.Context, ownerIDs []string) ([]domain.Anchor, error) {
	query := `SELECT ` + anchorColumns + ` FROM anchors WHERE owner_id = ANY($1) ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Anchor, 0)
	for rows.Next() {
		a, err := scanAnchor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *crmRepository) GetAnchor(ctx context.Context, id string) (*domain.Anchor, error) {
	query := `SELECT ` + anchorColumns + ` FROM anchors WHERE id=$1`
	return scanAnchor(r.pool.QueryRow(ctx, query, id))
}

const spokeColumns = `id, anchor_id, name, kind, contact_name, contact_number, city, business_type,
            monthly_volume, years_in_business, stage, assigned_to, latitude, longitude, score,
            COALESCE(priority, ''), created_at`

func scanSpoke(row pgx.Row) (*domain.Spoke, error) {
	var s domain.Spoke
	if err := row.Scan(
		&s.ID,
		&s.AnchorID,
		&s.Name,
		&s.Kind,
		&s.ContactName,
		&s.ContactNumber,
		&s.City,
		&s.BusinessType,
		&s.MonthlyVolume,
		&s.YearsInBusiness,
		&s.Stage,
		&s.AssignedTo,
		&s.Latitude,
		&s.Longitude,
		&s.Score,
		&s.Priority,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *crmRepository) ListSpokes(ctx context.Context, ownerIDs []string) ([]domain.Spoke, error) {
	query := `SELECT ` + spokeColumns + ` FROM spokes WHERE assigned_to = ANY($1) ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Spoke, 0)
	for rows.Next() {
		s, err := scanSpoke(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (r *crmRepository) GetSpoke(ctx context.Context, id string) (*domain.Spoke, error) {
	query := `SELECT ` + spokeColumns + ` FROM spokes WHERE id=$1`
	return scanSpoke(r.pool.QueryRow(ctx, query, id))
}

func (r *crmRepository) UpdateSpokeScore(ctx context.Context, id string, score float64, priority string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE spokes SET score=$1, priority=$2 WHERE id=$3`, score, priority, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const taskColumns = `id, title, description, related_type, related_id, assigned_to, due_date, status, priority, created_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.RelatedType,
		&t.RelatedID,
		&t.AssignedTo,
		&t.DueDate,
		&t.Status,
		&t.Priority,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *crmRepository) ListTasks(ctx context.Context, ownerIDs []string) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assigned_to = ANY($1) ORDER BY due_date ASC`
	rows, err := r.pool.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

func (r *crmRepository) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id=$1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *crmRepository) UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tasks SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *crmRepository) ListActivities(ctx context.Context, ownerIDs []string, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, user_id, entity_type, entity_id, activity_type, summary, latitude, longitude, address, created_at
        FROM activities WHERE user_id = ANY($1)
        ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, ownerIDs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Activity, 0)
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.EntityType,
			&a.EntityID,
			&a.Type,
			&a.Summary,
			&a.Latitude,
			&a.Longitude,
			&a.Address,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *crmRepository) CountActivitiesSince(ctx context.Context, ownerIDs []string, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM activities WHERE user_id = ANY($1) AND created_at > $2`,
		ownerIDs, since,
	).Scan(&n)
	return n, err
}

func (r *crmRepository) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	const query = `
        INSERT INTO activities (id, user_id, entity_type, entity_id, activity_type, summary, latitude, longitude, address)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		activity.ID,
		activity.UserID,
		activity.EntityType,
		activity.EntityID,
		activity.Type,
		activity.Summary,
		activity.Latitude,
		activity.Longitude,
		activity.Address,
	).Scan(&activity.CreatedAt)
}
