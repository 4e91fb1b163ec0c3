package domain

import "time"

// StatusEntry is an append-only audit record of a status transition.
// Entries are created alongside the request mutation that triggered
// them and never modified or deleted.
type StatusEntry struct {
	ID            int64
	RequestNumber int64
	OldStatus     RequestStatus
	NewStatus     RequestStatus
	ChangedBy     string
	Comment       string
	ChangedAt     time.Time
}
