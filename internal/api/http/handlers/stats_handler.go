package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/auth"
	"github.com/spec-kit/service-desk/internal/service"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// StatsHandler exposes the reporting aggregate.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{service: statsService}
}

// Summary GET /api/stats.
func (h *StatsHandler) Summary(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("caller required")
	}
	stats, err := h.service.Summary(c.Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
