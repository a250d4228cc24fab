package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus_shuttle/internal/domain"
	"campus_shuttle/internal/models"
)

// MaintenanceService reads and toggles the global maintenance flag. The flag
// is a settings row in the shared store, not process state, so every replica
// answers consistently. Reads hit the store every time; nothing is cached.
type MaintenanceService struct {
	DB *gorm.DB
}

// IsActive reports whether maintenance mode is on. A missing row reads as off.
func (s MaintenanceService) IsActive(ctx context.Context) (bool, error) {
	var setting models.AppSetting
	err := s.DB.WithContext(ctx).First(&setting, "key = ?", models.MaintenanceKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return setting.Value == "true", nil
}

// Set toggles maintenance mode. Admin only; toggling is unrestricted in
// either direction.
func (s MaintenanceService) Set(ctx context.Context, active bool, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return domain.UnauthorizedError{Msg: "admin capability required"}
	}

	value := "false"
	if active {
		value = "true"
	}

	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.AppSetting{Key: models.MaintenanceKey, Value: value}).Error
	if err != nil {
		return err
	}

	logrus.WithField("maintenance", value).Warn("maintenance mode changed")
	return nil
}
