package dto

// TechnicianResponse is one directory entry with workload counts.
type TechnicianResponse struct {
	ID             int64  `json:"id"`
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	Specialty      string `json:"specialty"`
	ActiveRequests int    `json:"active_requests"`
	TotalRequests  int    `json:"total_requests"`
}
