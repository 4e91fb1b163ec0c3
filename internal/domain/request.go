package domain

import "time"

// RequestStatus enumerates lifecycle states for service requests.
type RequestStatus string

const (
	StatusNew           RequestStatus = "NEW"
	StatusInRepair      RequestStatus = "IN_REPAIR"
	StatusCompleted     RequestStatus = "COMPLETED"
	StatusAwaitingParts RequestStatus = "AWAITING_PARTS"
)

// KnownStatuses lists every valid status value.
var KnownStatuses = []RequestStatus{StatusNew, StatusInRepair, StatusCompleted, StatusAwaitingParts}

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	for _, candidate := range KnownStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// ServiceRequest is the central aggregate: one repair ticket.
//
// Number is the public ticket number, allocated monotonically and
// distinct from the row id. TechnicianName/TechnicianPhone are a
// snapshot taken at assignment time; they must not change if the
// directory entry is edited later.
type ServiceRequest struct {
	ID                 int64
	Number             int64
	CreatedAt          time.Time
	EquipmentType      string
	EquipmentModel     string
	ProblemDescription string
	Status             RequestStatus
	CompletedAt        *time.Time
	DaysInProgress     *int
	RepairParts        string
	HasComment         bool
	CommentText        string
	TechnicianID       *int64
	TechnicianName     string
	TechnicianPhone    string
	ClientName         string
	ClientPhone        string
	ClientLogin        string
	UpdatedAt          time.Time
}
