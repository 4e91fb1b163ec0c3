package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/api/dto"
	"github.com/spec-kit/service-desk/internal/auth"
	"github.com/spec-kit/service-desk/internal/service"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// TechniciansHandler exposes the repair-staff directory.
type TechniciansHandler struct {
	service *service.TechnicianService
}

// NewTechniciansHandler constructs handler.
func NewTechniciansHandler(technicianService *service.TechnicianService) *TechniciansHandler {
	return &TechniciansHandler{service: technicianService}
}

// List GET /api/technicians.
func (h *TechniciansHandler) List(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("caller required")
	}
	entries, err := h.service.ListWithWorkload(c.Context(), caller)
	if err != nil {
		return err
	}

	items := make([]dto.TechnicianResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.TechnicianResponse{
			ID:             entry.ID,
			FullName:       entry.FullName,
			Phone:          entry.Phone,
			Specialty:      entry.Specialty,
			ActiveRequests: entry.ActiveRequests,
			TotalRequests:  entry.TotalRequests,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
