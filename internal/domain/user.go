package domain

import (
	"strings"
	"time"
)

// User is an account identified by email.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	IsActive     bool       `json:"is_active"`
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// InitTimestamps sets CreatedAt and UpdatedAt to now.
func (u *User) InitTimestamps() {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
}

// Touch bumps UpdatedAt.
func (u *User) Touch() {
	u.UpdatedAt = time.Now().UTC()
}

// CanLogin reports whether the account may authenticate.
func (u *User) CanLogin() bool {
	return u.IsActive
}

// NormalizeEmail trims the address and lowercases its domain part.
// The local part is kept as typed. An address without '@' is only trimmed.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
