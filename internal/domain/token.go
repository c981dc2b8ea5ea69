package domain

import "time"

// Token is a server-side record of an issued bearer token.
// Deleting the row revokes the token even before it expires.
type Token struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the token is past its expiry at now.
func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
