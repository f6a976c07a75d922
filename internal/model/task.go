package model

import "time"

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// OwnedBy reports whether the task belongs to userID.
func (t *Task) OwnedBy(userID string) bool {
	return t.OwnerID == userID
}

// DescriptionOrEmpty returns the description, or "" when absent.
func (t *Task) DescriptionOrEmpty() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}
