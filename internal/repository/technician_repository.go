package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-desk/internal/domain"
)

// TechnicianRepository handles persistence for the repair directory.
type TechnicianRepository interface {
	Create(ctx context.Context, tech *domain.Technician) error
	GetByID(ctx context.Context, id int64) (*domain.Technician, error)
	GetByLogin(ctx context.Context, login string) (*domain.Technician, error)
	ListWithWorkload(ctx context.Context) ([]domain.TechnicianWorkload, error)
}

type technicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository instantiates the repository.
func NewTechnicianRepository(pool *pgxpool.Pool) TechnicianRepository {
	return &technicianRepository{pool: pool}
}

func (r *technicianRepository) Create(ctx context.Context, tech *domain.Technician) error {
	const query = `
        INSERT INTO technicians (full_name, phone, login, specialty)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (login) DO NOTHING
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		tech.FullName,
		tech.Phone,
		tech.Login,
		tech.Specialty,
	).Scan(&tech.ID, &tech.CreatedAt)
}

func (r *technicianRepository) GetByID(ctx context.Context, id int64) (*domain.Technician, error) {
	const query = `
        SELECT id, full_name, phone, login, specialty, created_at
        FROM technicians WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *technicianRepository) GetByLogin(ctx context.Context, login string) (*domain.Technician, error) {
	const query = `
        SELECT id, full_name, phone, login, specialty, created_at
        FROM technicians WHERE login=$1`
	return r.fetchSingle(ctx, query, login)
}

func (r *technicianRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Technician, error) {
	var tech domain.Technician
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&tech.ID,
		&tech.FullName,
		&tech.Phone,
		&tech.Login,
		&tech.Specialty,
		&tech.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &tech, nil
}

// ListWithWorkload returns the directory ordered by name, each entry
// carrying its in-repair and all-time request counts.
func (r *technicianRepository) ListWithWorkload(ctx context.Context) ([]domain.TechnicianWorkload, error) {
	const query = `
        SELECT t.id, t.full_name, t.phone, t.login, t.specialty, t.created_at,
               (SELECT COUNT(*) FROM service_requests sr
                WHERE sr.technician_id = t.id AND sr.status = 'IN_REPAIR') AS active_requests,
               (SELECT COUNT(*) FROM service_requests sr
                WHERE sr.technician_id = t.id) AS total_requests
        FROM technicians t
        ORDER BY t.full_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TechnicianWorkload
	for rows.Next() {
		var entry domain.TechnicianWorkload
		if err := rows.Scan(
			&entry.ID,
			&entry.FullName,
			&entry.Phone,
			&entry.Login,
			&entry.Specialty,
			&entry.CreatedAt,
			&entry.ActiveRequests,
			&entry.TotalRequests,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
