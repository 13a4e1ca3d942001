package domain

import "time"

// RefreshToken is the server-side record a refresh credential is correlated with.
type RefreshToken struct {
	ID        int64
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TokenPayload is the subject and role bound into issued credentials.
type TokenPayload struct {
	Subject string
	Role    Role
}
