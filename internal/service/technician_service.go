package service

import (
	"context"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/repository"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// TechnicianService exposes the repair-staff directory.
type TechnicianService struct {
	technicians repository.TechnicianRepository
}

// NewTechnicianService constructs the service.
func NewTechnicianService(technicians repository.TechnicianRepository) *TechnicianService {
	return &TechnicianService{technicians: technicians}
}

// ListWithWorkload returns every technician with active and total
// request counts, ordered by name. The directory is visible to any
// authenticated caller; only the statistics aggregate is role-gated.
func (s *TechnicianService) ListWithWorkload(ctx context.Context, caller *domain.Caller) ([]domain.TechnicianWorkload, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("caller required")
	}

	result, err := s.technicians.ListWithWorkload(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if result == nil {
		result = []domain.TechnicianWorkload{}
	}
	return result, nil
}
