package domain

import "time"

// Technician is a repair-directory entry, distinct from a login
// account. Login is optional and cross-references users.login when the
// technician can sign in.
type Technician struct {
	ID        int64
	FullName  string
	Phone     string
	Login     *string
	Specialty string
	CreatedAt time.Time
}

// TechnicianWorkload decorates a directory entry with ticket counts.
type TechnicianWorkload struct {
	Technician
	ActiveRequests int
	TotalRequests  int
}
