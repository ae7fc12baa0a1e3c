// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account. The username is the primary
// identity; lyrics and shares reference it directly.
type User struct {
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
