package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/repository"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// RequestService is the lifecycle engine: it decides which requests a
// caller may see, which fields a caller may touch, and what audit side
// effects a transition triggers.
type RequestService struct {
	requests    repository.RequestRepository
	technicians repository.TechnicianRepository
	history     repository.StatusHistoryRepository
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// RequestDependencies bundles collaborators for the lifecycle engine.
type RequestDependencies struct {
	RequestRepo    repository.RequestRepository
	TechnicianRepo repository.TechnicianRepository
	HistoryRepo    repository.StatusHistoryRepository
	Dispatcher     events.Dispatcher
}

// CreateRequestInput describes request creation payload.
type CreateRequestInput struct {
	EquipmentType      string
	EquipmentModel     string
	ProblemDescription string
	ClientName         string
	ClientPhone        string
}

// RequestPatch carries the fields a caller wants to change. Nil fields
// are untouched; non-nil fields the caller's role may not touch are
// silently dropped (permissive merge), not rejected.
type RequestPatch struct {
	ProblemDescription *string
	Status             *domain.RequestStatus
	RepairParts        *string
	Comment            *string
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:    deps.RequestRepo,
		technicians: deps.TechnicianRepo,
		history:     deps.HistoryRepo,
		dispatcher:  deps.Dispatcher,
		now:         time.Now,
	}
}

// List returns the requests within the caller's list scope, newest
// first. A technician whose login has no directory entry sees an empty
// list rather than an error.
func (s *RequestService) List(ctx context.Context, caller *domain.Caller) ([]domain.ServiceRequest, error) {
	return s.listFiltered(ctx, caller, nil)
}

// Search applies the caller's list scope plus a case-insensitive
// substring match across number, description, client name and phone,
// equipment type and model.
func (s *RequestService) Search(ctx context.Context, caller *domain.Caller, query string) ([]domain.ServiceRequest, error) {
	return s.listFiltered(ctx, caller, &query)
}

func (s *RequestService) listFiltered(ctx context.Context, caller *domain.Caller, searchTerm *string) ([]domain.ServiceRequest, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("caller required")
	}

	filter := repository.RequestFilter{SearchTerm: searchTerm}
	switch caller.Role {
	case domain.RoleClient:
		login := caller.Login
		filter.ClientLogin = &login
	case domain.RoleTechnician:
		tech, err := s.technicians.GetByLogin(ctx, caller.Login)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return []domain.ServiceRequest{}, nil
			}
			return nil, apperrors.MapError(err)
		}
		filter.TechnicianID = &tech.ID
	}

	result, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if result == nil {
		result = []domain.ServiceRequest{}
	}
	return result, nil
}

// Get fetches a single request by number. Any authenticated caller may
// read any request; list scoping is the only isolation boundary, so
// callers must not rely on Get enforcing ownership.
func (s *RequestService) Get(ctx context.Context, number int64) (*domain.ServiceRequest, error) {
	req, err := s.requests.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_number": number})
		}
		return nil, apperrors.MapError(err)
	}
	return req, nil
}

// Create registers a new request owned by the caller. Status is forced
// to NEW and no technician is assigned regardless of input.
func (s *RequestService) Create(ctx context.Context, caller *domain.Caller, input CreateRequestInput) (*domain.ServiceRequest, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("caller required")
	}

	missing := map[string]any{}
	if strings.TrimSpace(input.EquipmentType) == "" {
		missing["equipment_type"] = "required"
	}
	if strings.TrimSpace(input.EquipmentModel) == "" {
		missing["equipment_model"] = "required"
	}
	if strings.TrimSpace(input.ProblemDescription) == "" {
		missing["problem_description"] = "required"
	}
	if strings.TrimSpace(input.ClientPhone) == "" {
		missing["client_phone"] = "required"
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", missing)
	}

	clientName := strings.TrimSpace(input.ClientName)
	if clientName == "" {
		clientName = caller.DisplayName
	}

	req := &domain.ServiceRequest{
		EquipmentType:      strings.TrimSpace(input.EquipmentType),
		EquipmentModel:     strings.TrimSpace(input.EquipmentModel),
		ProblemDescription: strings.TrimSpace(input.ProblemDescription),
		Status:             domain.StatusNew,
		ClientName:         clientName,
		ClientPhone:        strings.TrimSpace(input.ClientPhone),
		ClientLogin:        caller.Login,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, caller, events.Event{
		Type:          events.EventRequestCreated,
		RequestNumber: req.Number,
		Payload: events.RequestCreatedPayload{
			EquipmentType:  req.EquipmentType,
			EquipmentModel: req.EquipmentModel,
			ClientLogin:    req.ClientLogin,
		},
	})
	return req, nil
}

// Update applies a patch under the caller's field permissions. Fields
// the role may not touch are dropped, the rest are applied, and a
// status change appends exactly one audit entry in the same
// transaction as the request mutation.
func (s *RequestService) Update(ctx context.Context, caller *domain.Caller, number int64, patch RequestPatch) error {
	if caller == nil {
		return apperrors.NewUnauthorized("caller required")
	}

	req, err := s.requests.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("request", map[string]any{"request_number": number})
		}
		return apperrors.MapError(err)
	}

	if err := s.checkWriteAccess(ctx, caller, req); err != nil {
		return err
	}

	var entry *domain.StatusEntry
	var statusChange *events.StatusChangedPayload

	if patch.ProblemDescription != nil && caller.Role != domain.RoleClient {
		req.ProblemDescription = *patch.ProblemDescription
	}
	if patch.RepairParts != nil && s.mayEditWorkFields(caller.Role) {
		req.RepairParts = *patch.RepairParts
	}
	if patch.Comment != nil && s.mayEditWorkFields(caller.Role) {
		req.CommentText = *patch.Comment
		req.HasComment = true
	}
	if patch.Status != nil && s.mayApplyStatus(caller.Role, *patch.Status) {
		oldStatus := req.Status
		req.Status = *patch.Status
		if req.Status == domain.StatusCompleted && req.CompletedAt == nil {
			completedAt := s.now()
			req.CompletedAt = &completedAt
		}
		entry = &domain.StatusEntry{
			RequestNumber: req.Number,
			OldStatus:     oldStatus,
			NewStatus:     req.Status,
			ChangedBy:     caller.DisplayName,
		}
		if oldStatus != req.Status {
			statusChange = &events.StatusChangedPayload{OldStatus: oldStatus, NewStatus: req.Status}
		}
	}

	if err := s.requests.Update(ctx, req, entry); err != nil {
		return apperrors.MapError(err)
	}

	if statusChange != nil {
		s.publish(ctx, caller, events.Event{
			Type:          events.EventStatusChanged,
			RequestNumber: req.Number,
			Payload:       *statusChange,
		})
	}
	return nil
}

// Assign puts a request into repair under the given technician. The
// technician's name and phone are copied onto the request as an
// immutable snapshot, and the status is forced to IN_REPAIR whatever
// the prior state was.
func (s *RequestService) Assign(ctx context.Context, caller *domain.Caller, number int64, technicianID *int64) error {
	if caller == nil {
		return apperrors.NewUnauthorized("caller required")
	}
	if !caller.Role.IsBackOffice() {
		return apperrors.NewForbidden("role may not assign technicians")
	}
	if technicianID == nil {
		return apperrors.NewValidationError("technician_id required", nil)
	}

	tech, err := s.technicians.GetByID(ctx, *technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("technician", map[string]any{"technician_id": *technicianID})
		}
		return apperrors.MapError(err)
	}

	req, err := s.requests.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("request", map[string]any{"request_number": number})
		}
		return apperrors.MapError(err)
	}

	oldStatus := req.Status
	req.TechnicianID = &tech.ID
	req.TechnicianName = tech.FullName
	req.TechnicianPhone = tech.Phone
	req.Status = domain.StatusInRepair

	entry := &domain.StatusEntry{
		RequestNumber: req.Number,
		OldStatus:     oldStatus,
		NewStatus:     domain.StatusInRepair,
		ChangedBy:     caller.DisplayName,
		Comment:       fmt.Sprintf("assigned technician: %s", tech.FullName),
	}
	if err := s.requests.Update(ctx, req, entry); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, caller, events.Event{
		Type:          events.EventTechnicianAssigned,
		RequestNumber: req.Number,
		Payload: events.TechnicianAssignedPayload{
			TechnicianID:   tech.ID,
			TechnicianName: tech.FullName,
		},
	})
	return nil
}

// History returns the audit trail for a request.
func (s *RequestService) History(ctx context.Context, number int64) ([]domain.StatusEntry, error) {
	if _, err := s.Get(ctx, number); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByRequest(ctx, number)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if entries == nil {
		entries = []domain.StatusEntry{}
	}
	return entries, nil
}

// checkWriteAccess enforces ownership for clients and assignment for
// technicians. Back-office roles may write to any request.
func (s *RequestService) checkWriteAccess(ctx context.Context, caller *domain.Caller, req *domain.ServiceRequest) error {
	switch caller.Role {
	case domain.RoleClient:
		if req.ClientLogin != caller.Login {
			return apperrors.NewForbidden("request belongs to another client")
		}
	case domain.RoleTechnician:
		tech, err := s.technicians.GetByLogin(ctx, caller.Login)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewForbidden("request is not assigned to caller")
			}
			return apperrors.MapError(err)
		}
		if req.TechnicianID == nil || *req.TechnicianID != tech.ID {
			return apperrors.NewForbidden("request is not assigned to caller")
		}
	}
	return nil
}

func (s *RequestService) mayEditWorkFields(role domain.Role) bool {
	return role.IsBackOffice() || role == domain.RoleTechnician
}

// mayApplyStatus implements the status column of the permission table:
// back-office roles may set any known status, technicians any known
// status except NEW, clients none. Unknown values are dropped like any
// other non-permitted patch field.
func (s *RequestService) mayApplyStatus(role domain.Role, status domain.RequestStatus) bool {
	if !status.Valid() {
		return false
	}
	if role.IsBackOffice() {
		return true
	}
	if role == domain.RoleTechnician {
		return status != domain.StatusNew
	}
	return false
}

func (s *RequestService) publish(ctx context.Context, caller *domain.Caller, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.ActorLogin = caller.Login
	event.ActorRole = caller.Role
	event.Timestamp = s.now()
	_ = s.dispatcher.Publish(ctx, event)
}
