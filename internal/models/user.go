package models

import "time"

// Roles a user account can hold. A role is fixed at registration time.
const (
	RoleAdmin   = "admin"
	RoleScholar = "scholar"
)

// User is an authenticated account of the scholarship program.
type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Username           string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email              string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash       string    `gorm:"size:255;not null" json:"-"`
	FirstName          string    `gorm:"size:150" json:"first_name"`
	LastName           string    `gorm:"size:150" json:"last_name"`
	Role               string    `gorm:"size:20;not null;default:scholar" json:"role"`
	MustChangePassword bool      `gorm:"not null;default:false" json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user administers the program.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsScholar reports whether the user is a scholarship holder.
func (u User) IsScholar() bool {
	return u.Role == RoleScholar
}

// DisplayName returns the full name when present and the username otherwise.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}
