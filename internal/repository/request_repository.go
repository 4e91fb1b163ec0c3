package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-desk/internal/domain"
)

const requestColumns = `id, request_number, created_at, equipment_type, equipment_model,
               problem_description, status, completed_at, days_in_progress, repair_parts,
               has_comment, comment_text, technician_id, technician_name, technician_phone,
               client_name, client_phone, client_login, updated_at`

// uniqueViolation is the Postgres SQLSTATE for unique-constraint errors.
const uniqueViolation = "23505"

// createAttempts bounds the number-allocation retry loop.
const createAttempts = 5

// RequestFilter captures the caller's list scope plus an optional
// search term. A nil field means "no constraint".
type RequestFilter struct {
	ClientLogin  *string
	TechnicianID *int64
	SearchTerm   *string
}

// RequestRepository encapsulates service-request persistence.
type RequestRepository interface {
	// Create allocates the next request number and inserts the row.
	// Allocation is max+1 expressed inside the INSERT under the
	// request_number UNIQUE constraint; concurrent creators that
	// collide are retried rather than surfacing a duplicate.
	Create(ctx context.Context, req *domain.ServiceRequest) error
	// Insert stores a row with a caller-provided number (seed import).
	Insert(ctx context.Context, req *domain.ServiceRequest) error
	GetByNumber(ctx context.Context, number int64) (*domain.ServiceRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error)
	// Update persists the mutable fields of req and, when entry is
	// non-nil, appends the audit row in the same transaction. Either
	// both writes land or neither does.
	Update(ctx context.Context, req *domain.ServiceRequest, entry *domain.StatusEntry) error
	Statistics(ctx context.Context) (*domain.Statistics, error)
}

// rowQuerier is the seam the number-allocation path runs through.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type requestRepository struct {
	pool *pgxpool.Pool
	row  rowQuerier
}

// NewRequestRepository instantiates the repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool, row: pool}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	const query = `
        INSERT INTO service_requests (request_number, equipment_type, equipment_model,
            problem_description, status, repair_parts, comment_text,
            client_name, client_phone, client_login)
        SELECT COALESCE(MAX(request_number), 0) + 1, $1, $2, $3, $4, $5, $6, $7, $8, $9
        FROM service_requests
        RETURNING id, request_number, created_at, updated_at`

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		err := r.row.QueryRow(ctx, query,
			req.EquipmentType,
			req.EquipmentModel,
			req.ProblemDescription,
			req.Status,
			req.RepairParts,
			req.CommentText,
			req.ClientName,
			req.ClientPhone,
			req.ClientLogin,
		).Scan(&req.ID, &req.Number, &req.CreatedAt, &req.UpdatedAt)
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			lastErr = err
			continue
		}
		return err
	}
	return fmt.Errorf("allocate request number: %w", lastErr)
}

func (r *requestRepository) Insert(ctx context.Context, req *domain.ServiceRequest) error {
	const query = `
        INSERT INTO service_requests (request_number, created_at, equipment_type, equipment_model,
            problem_description, status, completed_at, days_in_progress, repair_parts,
            has_comment, comment_text, technician_id, technician_name, technician_phone,
            client_name, client_phone, client_login)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        ON CONFLICT (request_number) DO NOTHING
        RETURNING id, updated_at`

	return r.pool.QueryRow(ctx, query,
		req.Number,
		req.CreatedAt,
		req.EquipmentType,
		req.EquipmentModel,
		req.ProblemDescription,
		req.Status,
		req.CompletedAt,
		req.DaysInProgress,
		req.RepairParts,
		req.HasComment,
		req.CommentText,
		req.TechnicianID,
		req.TechnicianName,
		req.TechnicianPhone,
		req.ClientName,
		req.ClientPhone,
		req.ClientLogin,
	).Scan(&req.ID, &req.UpdatedAt)
}

func (r *requestRepository) GetByNumber(ctx context.Context, number int64) (*domain.ServiceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_requests WHERE request_number=$1`, requestColumns)

	row := r.pool.QueryRow(ctx, query, number)
	var req domain.ServiceRequest
	if err := scanRequest(row.Scan, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ClientLogin != nil {
		args = append(args, *filter.ClientLogin)
		clauses = append(clauses, fmt.Sprintf("client_login=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.SearchTerm)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			`(CAST(request_number AS TEXT) ILIKE %[1]s OR problem_description ILIKE %[1]s
              OR client_name ILIKE %[1]s OR client_phone ILIKE %[1]s
              OR equipment_type ILIKE %[1]s OR equipment_model ILIKE %[1]s)`, placeholder))
	}

	query := fmt.Sprintf(`SELECT %s FROM service_requests WHERE %s ORDER BY created_at DESC`,
		requestColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *requestRepository) Update(ctx context.Context, req *domain.ServiceRequest, entry *domain.StatusEntry) error {
	const updateQuery = `
        UPDATE service_requests SET status=$1, completed_at=$2, days_in_progress=$3,
            problem_description=$4, repair_parts=$5, has_comment=$6, comment_text=$7,
            technician_id=$8, technician_name=$9, technician_phone=$10, updated_at=NOW()
        WHERE request_number=$11`
	const historyQuery = `
        INSERT INTO status_history (request_number, old_status, new_status, changed_by, comment)
        VALUES ($1,$2,$3,$4,$5)`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, updateQuery,
		req.Status,
		req.CompletedAt,
		req.DaysInProgress,
		req.ProblemDescription,
		req.RepairParts,
		req.HasComment,
		req.CommentText,
		req.TechnicianID,
		req.TechnicianName,
		req.TechnicianPhone,
		req.Number,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if entry != nil {
		if _, err := tx.Exec(ctx, historyQuery,
			entry.RequestNumber,
			entry.OldStatus,
			entry.NewStatus,
			entry.ChangedBy,
			entry.Comment,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *requestRepository) Statistics(ctx context.Context) (*domain.Statistics, error) {
	stats := &domain.Statistics{}

	const countsQuery = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = 'COMPLETED'),
               COUNT(*) FILTER (WHERE status = 'IN_REPAIR'),
               COALESCE(AVG(EXTRACT(EPOCH FROM (completed_at - created_at)) / 86400.0)
                   FILTER (WHERE status = 'COMPLETED' AND completed_at IS NOT NULL), 0)
        FROM service_requests`
	if err := r.pool.QueryRow(ctx, countsQuery).Scan(
		&stats.TotalRequests,
		&stats.CompletedRequests,
		&stats.InRepairRequests,
		&stats.AvgDays,
	); err != nil {
		return nil, err
	}

	statusRows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM service_requests GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var bucket domain.StatusCount
		if err := statusRows.Scan(&bucket.Status, &bucket.Count); err != nil {
			return nil, err
		}
		stats.ByStatus = append(stats.ByStatus, bucket)
	}
	if err := statusRows.Err(); err != nil {
		return nil, err
	}

	typeRows, err := r.pool.Query(ctx,
		`SELECT equipment_type, COUNT(*) FROM service_requests GROUP BY equipment_type ORDER BY equipment_type`)
	if err != nil {
		return nil, err
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var bucket domain.TypeCount
		if err := typeRows.Scan(&bucket.EquipmentType, &bucket.Count); err != nil {
			return nil, err
		}
		stats.ByType = append(stats.ByType, bucket)
	}
	return stats, typeRows.Err()
}

func scanRequests(rows pgx.Rows) ([]domain.ServiceRequest, error) {
	var result []domain.ServiceRequest
	for rows.Next() {
		var req domain.ServiceRequest
		if err := scanRequest(rows.Scan, &req); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

func scanRequest(scan func(dest ...any) error, req *domain.ServiceRequest) error {
	return scan(
		&req.ID,
		&req.Number,
		&req.CreatedAt,
		&req.EquipmentType,
		&req.EquipmentModel,
		&req.ProblemDescription,
		&req.Status,
		&req.CompletedAt,
		&req.DaysInProgress,
		&req.RepairParts,
		&req.HasComment,
		&req.CommentText,
		&req.TechnicianID,
		&req.TechnicianName,
		&req.TechnicianPhone,
		&req.ClientName,
		&req.ClientPhone,
		&req.ClientLogin,
		&req.UpdatedAt,
	)
}
