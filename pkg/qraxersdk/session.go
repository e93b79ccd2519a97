package qraxersdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// refreshMargin renews the access token this long before it expires.
const refreshMargin = 30 * time.Second

// Session is an authenticated technician. Every method refreshes the
// access token when it is about to expire.
type Session struct {
	client *Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	user         User
}

func newSession(c *Client, tokens *TokenResponse) *Session {
	s := &Session{client: c}
	s.store(tokens)
	return s
}

// store must be called with mu held for writing, or before s is shared.
func (s *Session) store(tokens *TokenResponse) {
	s.accessToken = tokens.AccessToken
	s.refreshToken = tokens.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn)*time.Second - refreshMargin)
	s.user = tokens.User
}

func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Refresh rotates the token pair now.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.refreshToken == "" {
		return errors.New("access token expired and no refresh token available")
	}
	tokens, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	s.store(tokens)
	return nil
}

func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed meanwhile.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}

func (s *Session) call(ctx context.Context, method, path string, body, out any, expectedStatus int) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}
	return s.client.call(ctx, method, path, token, body, out, expectedStatus)
}

// Logout revokes the refresh token of this session and drops the ERP
// sessions held for the user.
func (s *Session) Logout(ctx context.Context) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}
	return s.client.call(ctx, http.MethodPost, "/auth/logout", token, LogoutRequest{RefreshToken: s.RefreshToken()}, nil, http.StatusNoContent)
}

func (s *Session) Me(ctx context.Context) (*User, error) {
	var u User
	if err := s.call(ctx, http.MethodGet, "/auth/me", nil, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// ============================================================================
// Repairs
// ============================================================================

func (s *Session) States(ctx context.Context) ([]StateOption, error) {
	var out []StateOption
	if err := s.call(ctx, http.MethodGet, "/repair/states", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// Scan looks up the repair a QR code points to.
func (s *Session) Scan(ctx context.Context, qrContent string) (*ScanResponse, error) {
	var out ScanResponse
	if err := s.call(ctx, http.MethodPost, "/repair/scan", QRRequest{QRContent: qrContent}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateState(ctx context.Context, req UpdateStateRequest) (*StateChangeResponse, error) {
	var out StateChangeResponse
	if err := s.call(ctx, http.MethodPost, "/repair/update-state", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GenerateQR(ctx context.Context, repairCode string) (*QRResponse, error) {
	var out QRResponse
	if err := s.call(ctx, http.MethodPost, "/repair/generate-qr", GenerateQRRequest{RepairCode: repairCode}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CreateRepair(ctx context.Context, req CreateRepairRequest) (*Repair, error) {
	var out Repair
	if err := s.call(ctx, http.MethodPost, "/repair/create", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecentRepairs lists the last modified repairs. A zero limit uses the
// server default.
func (s *Session) RecentRepairs(ctx context.Context, limit int) ([]Repair, error) {
	path := "/repair/recent"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []Repair
	if err := s.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================================
// Check-ins
// ============================================================================

func (s *Session) Checkin(ctx context.Context, qrContent string) (*CheckinNotification, error) {
	var out CheckinNotification
	if err := s.call(ctx, http.MethodPost, "/repair/checkin", QRRequest{QRContent: qrContent}, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) PendingCheckins(ctx context.Context) ([]CheckinNotification, error) {
	var out []CheckinNotification
	if err := s.call(ctx, http.MethodGet, "/repair/checkin/pending", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) RespondCheckin(ctx context.Context, notificationID, response string) (*CheckinNotification, error) {
	var out CheckinNotification
	req := RespondRequest{NotificationID: notificationID, Response: response}
	if err := s.call(ctx, http.MethodPost, "/repair/checkin/respond", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Clients
// ============================================================================

func (s *Session) SearchClients(ctx context.Context, q string, limit int) ([]Client, error) {
	v := url.Values{"q": {q}}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var out []Client
	if err := s.call(ctx, http.MethodGet, "/clients/search?"+v.Encode(), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) CreateClient(ctx context.Context, req CreateClientRequest) (*Client, error) {
	var out Client
	if err := s.call(ctx, http.MethodPost, "/clients", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}
