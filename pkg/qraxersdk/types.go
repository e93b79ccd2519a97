package qraxersdk

import "time"

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"3h2m1s"`
	Version string        `json:"version" example:"0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency on /readyz.
type HealthChecks struct {
	Database string `json:"database" example:"ok"`
	Sessions string `json:"sessions" example:"ok"`
}

// ============================================================================
// Auth
// ============================================================================

type LoginRequest struct {
	Username string `json:"username" example:"tech@example.com"`
	Password string `json:"password" example:"secret"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest revokes RefreshToken when set, or every refresh token of
// the caller otherwise.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// TokenResponse is returned by login and refresh. ExpiresIn is in
// seconds.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
	ExpiresIn    int    `json:"expiresIn"`
}

// ============================================================================
// Repairs
// ============================================================================

type QRRequest struct {
	QRContent string `json:"qrContent" example:"RO/00042|1767225600000|9f86d081884c7d65"`
}

type UpdateStateRequest struct {
	QRContent string `json:"qrContent"`
	NewState  string `json:"newState" example:"under_repair"`
	Note      string `json:"note,omitempty" example:"Replaced the fan"`
}

type GenerateQRRequest struct {
	RepairCode string `json:"repairCode" example:"RO/00042"`
}

type CreateRepairRequest struct {
	PartnerID    int64  `json:"partnerId"`
	ProductID    int64  `json:"productId,omitempty"`
	Notes        string `json:"notes,omitempty"`
	ScheduleDate string `json:"scheduleDate,omitempty"`
}

type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Repair struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	State        string `json:"state"`
	StateLabel   string `json:"stateLabel"`
	Partner      *Ref   `json:"partner,omitempty"`
	Product      *Ref   `json:"product,omitempty"`
	Lot          *Ref   `json:"lot,omitempty"`
	Technician   *Ref   `json:"technician,omitempty"`
	Notes        string `json:"notes,omitempty"`
	ScheduleDate string `json:"scheduleDate,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

type StateOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type ScanResponse struct {
	Repair          Repair        `json:"repair"`
	AvailableStates []StateOption `json:"availableStates"`
}

type StateChangeResponse struct {
	Success  bool   `json:"success"`
	RepairID int64  `json:"repairId"`
	OldState string `json:"oldState"`
	NewState string `json:"newState"`
}

type QRResponse struct {
	QRContent        string `json:"qrContent"`
	ExpiresInMinutes int    `json:"expiresInMinutes"`
}

// ============================================================================
// Check-ins
// ============================================================================

type RespondRequest struct {
	NotificationID string `json:"notificationId"`
	Response       string `json:"response" example:"On my way"`
}

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

// ============================================================================
// Inventory, products and clients
// ============================================================================

// CountRequest carries quantities as JSON numbers or numeric strings.
type CountRequest struct {
	LocationID int64       `json:"locationId"`
	Items      []CountItem `json:"items"`
}

type CountItem struct {
	ProductID int64  `json:"productId"`
	LotID     int64  `json:"lotId,omitempty"`
	Quantity  string `json:"quantity" example:"12.5"`
}

type CreateClientRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type Client struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Email  string `json:"email,omitempty"`
	VAT    string `json:"vat,omitempty"`
}
