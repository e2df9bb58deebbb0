package domain

import "time"

// User is the domain model for citizens who submit petitions.
type User struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	Address       string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
