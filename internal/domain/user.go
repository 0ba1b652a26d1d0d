// Package domain contains the core business entities and domain logic for the Writha platform.
package domain

import "time"

// UserType describes what a user primarily does on the platform.
type UserType string

// User types.
const (
	UserTypeReader   UserType = "reader"
	UserTypeWriter   UserType = "writer"
	UserTypeEducator UserType = "educator"
)

// Valid reports whether the user type is one of the known values.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeReader, UserTypeWriter, UserTypeEducator:
		return true
	}
	return false
}

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	UserType     UserType  `json:"user_type"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsWriter reports whether the user may publish stories.
// Educators publish textbooks through the same flow.
func (u *User) IsWriter() bool {
	return u.UserType == UserTypeWriter || u.UserType == UserTypeEducator
}
