package models

import "gorm.io/gorm"

type Driver struct {
	gorm.Model
	Name          string `json:"name" binding:"required"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
}
