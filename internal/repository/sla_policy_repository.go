package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SLAPolicyRepository encapsulates persistence for SLA policies. The SLA
// engine only ever reads the full set; policies change rarely and through
// the admin endpoints.
type SLAPolicyRepository interface {
	List(ctx context.Context) ([]domain.SLAPolicy, error)
	GetByID(ctx context.Context, id int64) (*domain.SLAPolicy, error)
	Create(ctx context.Context, policy *domain.SLAPolicy) error
	Update(ctx context.Context, policy *domain.SLAPolicy) error
}

type slaPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewSLAPolicyRepository returns a Postgres-backed implementation.
func NewSLAPolicyRepository(pool *pgxpool.Pool) SLAPolicyRepository {
	return &slaPolicyRepository{pool: pool}
}

func (r *slaPolicyRepository) List(ctx context.Context) ([]domain.SLAPolicy, error) {
	const query = `
        SELECT sla_id, name, description, response_time_minutes, resolution_time_minutes
        FROM sla_policies ORDER BY sla_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAPolicy
	for rows.Next() {
		var policy domain.SLAPolicy
		if err := rows.Scan(
			&policy.ID,
			&policy.Name,
			&policy.Description,
			&policy.ResponseTimeMinutes,
			&policy.ResolutionTimeMinutes,
		); err != nil {
			return nil, err
		}
		result = append(result, policy)
	}
	return result, rows.Err()
}

func (r *slaPolicyRepository) GetByID(ctx context.Context, id int64) (*domain.SLAPolicy, error) {
	const query = `
        SELECT sla_id, name, description, response_time_minutes, resolution_time_minutes
        FROM sla_policies WHERE sla_id=$1`

	var policy domain.SLAPolicy
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&policy.ID,
		&policy.Name,
		&policy.Description,
		&policy.ResponseTimeMinutes,
		&policy.ResolutionTimeMinutes,
	); err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *slaPolicyRepository) Create(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        INSERT INTO sla_policies (name, description, response_time_minutes, resolution_time_minutes)
        VALUES ($1,$2,$3,$4)
        RETURNING sla_id`

	return r.pool.QueryRow(ctx, query,
		policy.Name,
		policy.Description,
		policy.ResponseTimeMinutes,
		policy.ResolutionTimeMinutes,
	).Scan(&policy.ID)
}

func (r *slaPolicyRepository) Update(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        UPDATE sla_policies SET name=$1, description=$2, response_time_minutes=$3, resolution_time_minutes=$4
        WHERE sla_id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		policy.Name,
		policy.Description,
		policy.ResponseTimeMinutes,
		policy.ResolutionTimeMinutes,
		policy.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
