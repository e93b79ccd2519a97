package domain

import "time"

// User is the authenticated technician, identified by Odoo uid.
type User struct {
	ID       int64  `json:"id" example:"7"`
	Username string `json:"username" example:"tech@example.com"`
	Name     string `json:"name" example:"Jane Tech"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
	ExpiresIn    int64  `json:"expiresIn" example:"28800"` // seconds
}

// RefreshToken is the stored record of an issued refresh token.
type RefreshToken struct {
	ID          string
	UserID      string
	Username    string
	DisplayName string
	TokenHash   string // base64url SHA-256 of the opaque token
	ExpiresAt   time.Time
	CreatedAt   time.Time
	RevokedAt   *time.Time
}

// Usable reports whether the token can still be exchanged at now.
func (t RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
