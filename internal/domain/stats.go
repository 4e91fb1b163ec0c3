package domain

// StatusCount is one bucket of the per-status breakdown.
type StatusCount struct {
	Status RequestStatus `json:"status"`
	Count  int           `json:"count"`
}

// TypeCount is one bucket of the per-equipment-type breakdown.
type TypeCount struct {
	EquipmentType string `json:"equipment_type"`
	Count         int    `json:"count"`
}

// Statistics aggregates reporting figures over the whole request store.
type Statistics struct {
	TotalRequests     int           `json:"total_requests"`
	CompletedRequests int           `json:"completed_requests"`
	InRepairRequests  int           `json:"in_repair_requests"`
	AvgDays           float64       `json:"avg_days"`
	ByStatus          []StatusCount `json:"by_status"`
	ByType            []TypeCount   `json:"by_type"`
}
