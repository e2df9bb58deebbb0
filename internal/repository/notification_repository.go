package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/petition-service/internal/domain"
)

// NotificationRepository stores the durable per-department inbox.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByDepartment(ctx context.Context, department string) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, department string) (int64, error)
	MarkRead(ctx context.Context, id, department string) error
	MarkAllRead(ctx context.Context, department string) (int64, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds the repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (id, ticket_id, title, department, urgency, type, read)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		notification.ID,
		notification.TicketID,
		notification.Title,
		notification.Department,
		notification.Urgency,
		notification.Type,
		notification.Read,
	).Scan(&notification.CreatedAt)
}

func (r *notificationRepository) ListByDepartment(ctx context.Context, department string) ([]domain.Notification, error) {
	const query = `
        SELECT id, ticket_id, title, department, urgency, type, read, created_at
        FROM notifications WHERE department=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.TicketID, &n.Title, &n.Department, &n.Urgency, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) UnreadCount(ctx context.Context, department string) (int64, error) {
	var count int64
	const query = `SELECT COUNT(*) FROM notifications WHERE department=$1 AND read=FALSE`
	if err := r.pool.QueryRow(ctx, query, department).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead flips a single notification; the department filter enforces
// ownership, an unmatched row surfaces as not found.
func (r *notificationRepository) MarkRead(ctx context.Context, id, department string) error {
	const query = `UPDATE notifications SET read=TRUE WHERE id=$1 AND department=$2`
	cmd, err := r.pool.Exec(ctx, query, id, department)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, department string) (int64, error) {
	const query = `UPDATE notifications SET read=TRUE WHERE department=$1 AND read=FALSE`
	cmd, err := r.pool.Exec(ctx, query, department)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
