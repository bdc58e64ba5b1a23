package models

import "time"

// AuthToken is the server-side record behind an issued bearer token.
// Deleting the row revokes the token.
type AuthToken struct {
	ID        string
	UserID    int
	Name      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t AuthToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}
