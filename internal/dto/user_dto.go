package dto

import "github.com/noah-isme/scholarship-api/internal/models"

// UserResponse is the public view of an account.
type UserResponse struct {
	ID                 uint   `json:"id"`
	Username           string `json:"username"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}

// UserSummary is the compact reviewer view embedded in activity feeds.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// NewUserResponse converts a user model into its DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:                 user.ID,
		Username:           user.Username,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Email:              user.Email,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
	}
}
