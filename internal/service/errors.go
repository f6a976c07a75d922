// Package service provides business logic for the application.
package service

import "errors"

// Validation errors.
var (
	ErrFieldsRequired = errors.New("all fields required")
	ErrTitleRequired  = errors.New("title required")
)

// Conflict errors.
var (
	ErrEmailTaken    = errors.New("email already used")
	ErrUsernameTaken = errors.New("username already used")
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Not found errors.
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrUserNotFound = errors.New("user not found")
)
