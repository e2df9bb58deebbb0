package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/petition-service/internal/domain"
)

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	GetByEmail(ctx context.Context, email string) (*domain.Department, error)
	GetByName(ctx context.Context, name string) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

const departmentColumns = `id, name, email, password_hash, categories, profile, phone, address,
               notifications, sla, created_at, updated_at`

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	notifications, err := json.Marshal(dept.Notifications)
	if err != nil {
		return err
	}
	sla, err := json.Marshal(dept.SLA)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO departments (name, email, password_hash, categories, profile, phone, address, notifications, sla)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		dept.Name,
		dept.Email,
		dept.PasswordHash,
		dept.Categories,
		dept.Profile,
		dept.Phone,
		dept.Address,
		notifications,
		sla,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	notifications, err := json.Marshal(dept.Notifications)
	if err != nil {
		return err
	}
	sla, err := json.Marshal(dept.SLA)
	if err != nil {
		return err
	}

	const query = `
        UPDATE departments SET name=$1, email=$2, categories=$3, profile=$4, phone=$5, address=$6,
            notifications=$7, sla=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		dept.Name,
		dept.Email,
		dept.Categories,
		dept.Profile,
		dept.Phone,
		dept.Address,
		notifications,
		sla,
		dept.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	return r.fetchSingle(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id=$1`, id)
}

func (r *departmentRepository) GetByEmail(ctx context.Context, email string) (*domain.Department, error) {
	return r.fetchSingle(ctx, `SELECT `+departmentColumns+` FROM departments WHERE email=$1`, email)
}

func (r *departmentRepository) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	return r.fetchSingle(ctx, `SELECT `+departmentColumns+` FROM departments WHERE name=$1`, name)
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+departmentColumns+` FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *dept)
	}
	return result, rows.Err()
}

func (r *departmentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Department, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	return scanDepartment(rows)
}

func scanDepartment(rows pgx.Rows) (*domain.Department, error) {
	var dept domain.Department
	var notifications, sla []byte
	if err := rows.Scan(
		&dept.ID,
		&dept.Name,
		&dept.Email,
		&dept.PasswordHash,
		&dept.Categories,
		&dept.Profile,
		&dept.Phone,
		&dept.Address,
		&notifications,
		&sla,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}

	dept.Notifications = domain.DefaultNotificationSettings()
	if len(notifications) > 0 {
		_ = json.Unmarshal(notifications, &dept.Notifications)
	}
	dept.SLA = domain.DefaultSLASettings()
	if len(sla) > 0 {
		_ = json.Unmarshal(sla, &dept.SLA)
	}
	return &dept, nil
}
