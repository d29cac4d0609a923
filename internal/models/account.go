package models

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type Account struct {
	ID           string
	DisplayName  string
	Email        string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
}

func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type Session struct {
	ID        string
	Token     string
	AccountID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
