package domain

import "time"

// CheckinNotification tells the front desk that a technician has scanned a
// repair in. Notifications live in memory only.
type CheckinNotification struct {
	ID             string     `json:"id"`
	RepairID       int64      `json:"repairId"`
	RepairCode     string     `json:"repairCode"`
	TechnicianID   string     `json:"technicianId"`
	TechnicianName string     `json:"technicianName"`
	Timestamp      time.Time  `json:"timestamp"`
	Response       string     `json:"response,omitempty"`
	RespondedAt    *time.Time `json:"respondedAt,omitempty"`
	RespondedBy    string     `json:"respondedBy,omitempty"`
}

// Pending reports whether nobody has responded yet.
func (n CheckinNotification) Pending() bool { return n.Response == "" }
