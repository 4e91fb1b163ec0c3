package events

import (
	"time"

	"github.com/spec-kit/service-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated     EventType = "request_created"
	EventStatusChanged      EventType = "request_status_changed"
	EventTechnicianAssigned EventType = "request_technician_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	RequestNumber int64       `json:"request_number"`
	ActorLogin    string      `json:"actor_login"`
	ActorRole     domain.Role `json:"actor_role"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	EquipmentType  string `json:"equipment_type"`
	EquipmentModel string `json:"equipment_model"`
	ClientLogin    string `json:"client_login"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
	Comment   string               `json:"comment,omitempty"`
}

// TechnicianAssignedPayload payload.
type TechnicianAssignedPayload struct {
	TechnicianID   int64  `json:"technician_id"`
	TechnicianName string `json:"technician_name"`
}
