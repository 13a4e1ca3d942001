package domain

import "time"

// Role is the authorization role carried in issued tokens.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// User represents a registered account.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
