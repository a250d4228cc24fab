package models

import "gorm.io/gorm"

// Roles recognised by the auth middleware.
const (
	RoleRider = "rider"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"-"`
	Phone    string `json:"phone"`
	Role     string `json:"role"` // "rider", "admin"
}
