package domain

import "time"

// User represents a registered account.
type User struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	JoinAt       time.Time
	LastLogin    *time.Time
}

// Profile is the public subset of a User returned after registration.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
