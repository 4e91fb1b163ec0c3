package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/api/dto"
	"github.com/spec-kit/service-desk/internal/auth"
	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/service"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// RequestsHandler manages service-request endpoints.
type RequestsHandler struct {
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// List GET /api/requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("caller required")
	}
	requests, err := h.service.List(c.Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponses(requests)})
}

// Search GET /api/requests/search?q=term.
func (h *RequestsHandler) Search(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("caller required")
	}
	requests, err := h.service.Search(c.Context(), caller, c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponses(requests)})
}

// Get GET /api/requests/:number.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	if _, ok := auth.CallerFromContext(c); !ok {
		return apperrors.NewUnauthorized("caller required")
	}
	number, err := parseNumber(c)
	if err != nil {
		return err
	}
	req, err := h.service.Get(c.Context(), number)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(req)})
}

// Create POST /api/requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("caller required")
	}
	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	created, err := h.service.Create(c.Context(), caller, service.CreateRequestInput{
		EquipmentType:      req.EquipmentType,
		EquipmentModel:     req.EquipmentModel,
		ProblemDescription: req.ProblemDescription,
		ClientName:         req.ClientName,
		ClientPhone:        req.ClientPhone,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestResponse(created)})
}

// Update PATCH /api/requests/:number.
func (h *RequestsHandler) Update(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("caller required")
	}
	number, err := parseNumber(c)
	if err != nil {
		return err
	}
	var req dto.UpdateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.RequestPatch{
		ProblemDescription: req.ProblemDescription,
		Status:             req.Status,
		RepairParts:        req.RepairParts,
		Comment:            req.Comment,
	}
	if err := h.service.Update(c.Context(), caller, number, patch); err != nil {
		return err
	}
	updated, err := h.service.Get(c.Context(), number)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(updated)})
}

// Assign POST /api/requests/:number/assign.
func (h *RequestsHandler) Assign(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("caller required")
	}
	number, err := parseNumber(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.service.Assign(c.Context(), caller, number, req.TechnicianID); err != nil {
		return err
	}
	updated, err := h.service.Get(c.Context(), number)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(updated)})
}

// History GET /api/requests/:number/history.
func (h *RequestsHandler) History(c *fiber.Ctx) error {
	if _, ok := auth.CallerFromContext(c); !ok {
		return apperrors.NewUnauthorized("caller required")
	}
	number, err := parseNumber(c)
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.Context(), number)
	if err != nil {
		return err
	}

	items := make([]dto.StatusEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.StatusEntryResponse{
			ID:            entry.ID,
			RequestNumber: entry.RequestNumber,
			OldStatus:     entry.OldStatus,
			NewStatus:     entry.NewStatus,
			ChangedBy:     entry.ChangedBy,
			Comment:       entry.Comment,
			ChangedAt:     entry.ChangedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseNumber(c *fiber.Ctx) (int64, error) {
	number, err := strconv.ParseInt(c.Params("number"), 10, 64)
	if err != nil || number <= 0 {
		return 0, apperrors.NewValidationError("invalid request number", nil)
	}
	return number, nil
}

func requestResponses(requests []domain.ServiceRequest) []dto.RequestResponse {
	items := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, requestResponse(&requests[i]))
	}
	return items
}

func requestResponse(req *domain.ServiceRequest) dto.RequestResponse {
	return dto.RequestResponse{
		Number:             req.Number,
		CreatedAt:          req.CreatedAt,
		EquipmentType:      req.EquipmentType,
		EquipmentModel:     req.EquipmentModel,
		ProblemDescription: req.ProblemDescription,
		Status:             req.Status,
		CompletedAt:        req.CompletedAt,
		DaysInProgress:     req.DaysInProgress,
		RepairParts:        req.RepairParts,
		HasComment:         req.HasComment,
		CommentText:        req.CommentText,
		TechnicianID:       req.TechnicianID,
		TechnicianName:     req.TechnicianName,
		TechnicianPhone:    req.TechnicianPhone,
		ClientName:         req.ClientName,
		ClientPhone:        req.ClientPhone,
		ClientLogin:        req.ClientLogin,
		UpdatedAt:          req.UpdatedAt,
	}
}
