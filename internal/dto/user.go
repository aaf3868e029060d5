package dto

import "github.com/yukikurage/issue-tracker-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID     uint64          `json:"id"`
	Name   string          `json:"name"`
	Email  string          `json:"email"`
	Avatar string          `json:"avatar,omitempty"`
	Role   models.UserRole `json:"role"`
}

// AuthDTO represents a successful authentication response
type AuthDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
		Role:   user.Role,
	}
}
