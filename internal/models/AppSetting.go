package models

// AppSetting is a shared key/value row. Settings live in the store rather
// than process memory so every replica sees the same value.
type AppSetting struct {
	Key   string `json:"key" gorm:"primaryKey"`
	Value string `json:"value" gorm:"not null"`
}

// MaintenanceKey is the settings row consulted before serving any
// trip or reservation traffic. Values are "true" / "false".
const MaintenanceKey = "maintenance_mode"
