package dto

import (
	"time"

	"github.com/spec-kit/service-desk/internal/domain"
)

// CreateRequestRequest payload.
type CreateRequestRequest struct {
	EquipmentType      string `json:"equipment_type"`
	EquipmentModel     string `json:"equipment_model"`
	ProblemDescription string `json:"problem_description"`
	ClientName         string `json:"client_name"`
	ClientPhone        string `json:"client_phone"`
}

// UpdateRequestRequest payload. Absent fields stay untouched.
type UpdateRequestRequest struct {
	ProblemDescription *string               `json:"problem_description"`
	Status             *domain.RequestStatus `json:"status"`
	RepairParts        *string               `json:"repair_parts"`
	Comment            *string               `json:"comment"`
}

// AssignRequestRequest payload.
type AssignRequestRequest struct {
	TechnicianID *int64 `json:"technician_id"`
}

// RequestResponse is the full request view.
type RequestResponse struct {
	Number             int64                `json:"request_number"`
	CreatedAt          time.Time            `json:"created_at"`
	EquipmentType      string               `json:"equipment_type"`
	EquipmentModel     string               `json:"equipment_model"`
	ProblemDescription string               `json:"problem_description"`
	Status             domain.RequestStatus `json:"status"`
	CompletedAt        *time.Time           `json:"completed_at"`
	DaysInProgress     *int                 `json:"days_in_progress"`
	RepairParts        string               `json:"repair_parts"`
	HasComment         bool                 `json:"has_comment"`
	CommentText        string               `json:"comment_text"`
	TechnicianID       *int64               `json:"technician_id"`
	TechnicianName     string               `json:"technician_name,omitempty"`
	TechnicianPhone    string               `json:"technician_phone,omitempty"`
	ClientName         string               `json:"client_name"`
	ClientPhone        string               `json:"client_phone"`
	ClientLogin        string               `json:"client_login"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// StatusEntryResponse is one audit trail row.
type StatusEntryResponse struct {
	ID            int64                `json:"id"`
	RequestNumber int64                `json:"request_number"`
	OldStatus     domain.RequestStatus `json:"old_status"`
	NewStatus     domain.RequestStatus `json:"new_status"`
	ChangedBy     string               `json:"changed_by"`
	Comment       string               `json:"comment,omitempty"`
	ChangedAt     time.Time            `json:"changed_at"`
}
