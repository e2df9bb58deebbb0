package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/petition-service/internal/domain"
)

// ErrDuplicateTicket is returned when a generated ticket identifier
// collides with an existing row; callers regenerate and retry.
var ErrDuplicateTicket = errors.New("duplicate ticket id")

// PetitionFilter captures listing/search parameters.
type PetitionFilter struct {
	UserID      *string
	Department  *string
	TicketID    *string
	Statuses    []domain.PetitionStatus
	Urgencies   []domain.UrgencyLevel
	Category    *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	UpdatedFrom *time.Time
	Limit       int
	Offset      int
}

// CategoryCount pairs a category with how many petitions it holds.
type CategoryCount struct {
	Category string
	Count    int64
}

// PetitionRepository encapsulates petition persistence.
type PetitionRepository interface {
	Create(ctx context.Context, petition *domain.Petition) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.Petition, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Petition, error)
	ListByDepartment(ctx context.Context, department string) ([]domain.Petition, error)
	ListWithFilter(ctx context.Context, filter PetitionFilter) ([]domain.Petition, error)
	CountWithFilter(ctx context.Context, filter PetitionFilter) (int64, error)
	CategoryCounts(ctx context.Context, department string, limit int) ([]CategoryCount, error)
	UpdateStatus(ctx context.Context, ticketID string, status domain.PetitionStatus, rejectionReason *string) (int64, error)
	UpdateDeadline(ctx context.Context, ticketID string, deadline time.Time) (int64, error)
	MarkReminderSent(ctx context.Context, ticketID string, at time.Time) error
}

type petitionRepository struct {
	pool *pgxpool.Pool
}

// NewPetitionRepository instantiates the repository.
func NewPetitionRepository(pool *pgxpool.Pool) PetitionRepository {
	return &petitionRepository{pool: pool}
}

const petitionColumns = `id, ticket_id, user_id, title, category, department, description, location,
               urgency, full_name, email, phone, address, attachments, status, rejection_reason,
               deadline, last_reminder_at, created_at, updated_at`

func (r *petitionRepository) Create(ctx context.Context, petition *domain.Petition) error {
	const query = `
        INSERT INTO petitions (ticket_id, user_id, title, category, department, description, location,
                               urgency, full_name, email, phone, address, attachments, status, deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		petition.TicketID,
		petition.UserID,
		petition.Title,
		petition.Category,
		petition.Department,
		petition.Description,
		petition.Location,
		petition.Urgency,
		petition.FullName,
		petition.Email,
		petition.Phone,
		petition.Address,
		petition.Attachments,
		petition.Status,
		petition.Deadline,
	).Scan(&petition.ID, &petition.CreatedAt, &petition.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "ticket_id") {
			return ErrDuplicateTicket
		}
		return err
	}
	return nil
}

func (r *petitionRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.Petition, error) {
	query := fmt.Sprintf(`SELECT %s FROM petitions WHERE ticket_id=$1`, petitionColumns)
	var petition domain.Petition
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(scanTargets(&petition)...); err != nil {
		return nil, err
	}
	return &petition, nil
}

func (r *petitionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Petition, error) {
	return r.ListWithFilter(ctx, PetitionFilter{UserID: &userID})
}

func (r *petitionRepository) ListByDepartment(ctx context.Context, department string) ([]domain.Petition, error) {
	return r.ListWithFilter(ctx, PetitionFilter{Department: &department})
}

func (r *petitionRepository) ListWithFilter(ctx context.Context, filter PetitionFilter) ([]domain.Petition, error) {
	clauses, args := filterClauses(filter)

	query := fmt.Sprintf(`SELECT %s FROM petitions WHERE %s ORDER BY created_at DESC`,
		petitionColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPetitions(rows)
}

func (r *petitionRepository) CountWithFilter(ctx context.Context, filter PetitionFilter) (int64, error) {
	clauses, args := filterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM petitions WHERE %s`, strings.Join(clauses, " AND "))

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *petitionRepository) CategoryCounts(ctx context.Context, department string, limit int) ([]CategoryCount, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `
        SELECT category, COUNT(*) FROM petitions
        WHERE department=$1
        GROUP BY category ORDER BY COUNT(*) DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, department, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryCount
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, err
		}
		result = append(result, cc)
	}
	return result, rows.Err()
}

// UpdateStatus persists a status change and refreshes updated_at. The
// predicate skips the write when nothing would change, so the returned
// row count distinguishes a no-op from a real update.
func (r *petitionRepository) UpdateStatus(ctx context.Context, ticketID string, status domain.PetitionStatus, rejectionReason *string) (int64, error) {
	const query = `
        UPDATE petitions
        SET status=$1, rejection_reason=COALESCE($2, rejection_reason), updated_at=NOW()
        WHERE ticket_id=$3
          AND (status <> $1 OR ($2 IS NOT NULL AND rejection_reason IS DISTINCT FROM $2))`
	cmd, err := r.pool.Exec(ctx, query, status, rejectionReason, ticketID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *petitionRepository) UpdateDeadline(ctx context.Context, ticketID string, deadline time.Time) (int64, error) {
	const query = `
        UPDATE petitions SET deadline=$1, updated_at=NOW() WHERE ticket_id=$2`
	cmd, err := r.pool.Exec(ctx, query, deadline, ticketID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// MarkReminderSent stamps the ticket so later scans can suppress
// repeat reminders during the cooldown window.
func (r *petitionRepository) MarkReminderSent(ctx context.Context, ticketID string, at time.Time) error {
	const query = `UPDATE petitions SET last_reminder_at=$1 WHERE ticket_id=$2`
	_, err := r.pool.Exec(ctx, query, at, ticketID)
	return err
}

func filterClauses(filter PetitionFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		clauses = append(clauses, fmt.Sprintf("ticket_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Urgencies) > 0 {
		placeholders := make([]string, len(filter.Urgencies))
		for i, urgency := range filter.Urgencies {
			args = append(args, urgency)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("urgency IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.UpdatedFrom != nil {
		args = append(args, *filter.UpdatedFrom)
		clauses = append(clauses, fmt.Sprintf("updated_at >= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(title) LIKE %s OR LOWER(description) LIKE %s OR LOWER(ticket_id) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	return clauses, args
}

func scanTargets(p *domain.Petition) []any {
	return []any{
		&p.ID,
		&p.TicketID,
		&p.UserID,
		&p.Title,
		&p.Category,
		&p.Department,
		&p.Description,
		&p.Location,
		&p.Urgency,
		&p.FullName,
		&p.Email,
		&p.Phone,
		&p.Address,
		&p.Attachments,
		&p.Status,
		&p.RejectionReason,
		&p.Deadline,
		&p.LastReminderAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

func scanPetitions(rows pgx.Rows) ([]domain.Petition, error) {
	var result []domain.Petition
	for rows.Next() {
		var petition domain.Petition
		if err := rows.Scan(scanTargets(&petition)...); err != nil {
			return nil, err
		}
		result = append(result, petition)
	}
	return result, rows.Err()
}
