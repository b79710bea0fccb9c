package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	UserID     *int64
	CategoryID *int64
	Status     *domain.TicketStatus
	Priority   *string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence. ListMissingSLATarget
// and UpdateSLATargets exist for the SLA backfill: the sweeper reads the
// unassigned set, computes deadlines in memory, and writes them back in
// one batch.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	ListMissingSLATarget(ctx context.Context) ([]domain.Ticket, error)
	UpdateSLATargets(ctx context.Context, tickets []domain.Ticket) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `ticketid, external_key, userid, categoryid, subject, status, priority,
               organization, createdby, createdat, updatedat, end_date, current_sla_target`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	// Timestamps and the SLA target are computed by the service before the
	// insert so the deadline is committed together with the ticket.
	const query = `
        INSERT INTO tickets (external_key, userid, categoryid, subject, status, priority,
                             organization, createdby, createdat, updatedat, end_date, current_sla_target)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING ticketid`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.UserID,
		ticket.CategoryID,
		ticket.Subject,
		ticket.Status,
		ticket.Priority,
		ticket.Organization,
		ticket.CreatedBy,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.EndDate,
		ticket.CurrentSLATarget,
	).Scan(&ticket.ID)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET categoryid=$1, subject=$2, status=$3, priority=$4, organization=$5,
            updatedat=$6, end_date=$7, current_sla_target=$8
        WHERE ticketid=$9`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.CategoryID,
		ticket.Subject,
		ticket.Status,
		ticket.Priority,
		ticket.Organization,
		ticket.UpdatedAt,
		ticket.EndDate,
		ticket.CurrentSLATarget,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE ticketid=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticketid=$1`, ticketColumns)

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(ticketFields(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("userid=$%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("categoryid=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, strings.ToLower(strings.TrimSpace(*filter.Priority)))
		clauses = append(clauses, fmt.Sprintf("LOWER(priority)=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY createdat DESC NULLS LAST LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets ORDER BY ticketid`, ticketColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListMissingSLATarget(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE current_sla_target IS NULL ORDER BY ticketid`, ticketColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// UpdateSLATargets writes recomputed deadlines in a single batch. Partial
// progress on failure is acceptable: the sweep is idempotent and skips
// tickets that already carry a target on the next run.
func (r *ticketRepository) UpdateSLATargets(ctx context.Context, tickets []domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i := range tickets {
		batch.Queue(
			`UPDATE tickets SET current_sla_target=$1, updatedat=$2 WHERE ticketid=$3`,
			tickets[i].CurrentSLATarget,
			tickets[i].UpdatedAt,
			tickets[i].ID,
		)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range tickets {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func ticketFields(t *domain.Ticket) []any {
	return []any{
		&t.ID,
		&t.ExternalKey,
		&t.UserID,
		&t.CategoryID,
		&t.Subject,
		&t.Status,
		&t.Priority,
		&t.Organization,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.EndDate,
		&t.CurrentSLATarget,
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketFields(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
