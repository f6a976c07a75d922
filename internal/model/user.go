// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account. Username and email are globally unique.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuthContext holds the authenticated session of a request.
// This is injected into the request context by the session middleware.
type AuthContext struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
