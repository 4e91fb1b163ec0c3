package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-desk/internal/domain"
)

// StatusHistoryRepository reads the append-only audit trail. Entries
// are written by RequestRepository.Update inside the same transaction
// as their triggering mutation, never through this interface.
type StatusHistoryRepository interface {
	ListByRequest(ctx context.Context, requestNumber int64) ([]domain.StatusEntry, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository builds the repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) ListByRequest(ctx context.Context, requestNumber int64) ([]domain.StatusEntry, error) {
	const query = `
        SELECT id, request_number, old_status, new_status, changed_by, comment, changed_at
        FROM status_history WHERE request_number=$1 ORDER BY changed_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, requestNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusEntry
	for rows.Next() {
		var entry domain.StatusEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestNumber,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.ChangedBy,
			&entry.Comment,
			&entry.ChangedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
