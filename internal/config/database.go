package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"campus_shuttle/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// InitDB initializes the database connection using environment variables,
// migrates the schema and seeds the maintenance flag to off.
func InitDB() {
	// 1) Load .env (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	// Load environment variables (with defaults)
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "password")
	dbname := getEnv("DB_NAME", "shuttle")
	sslmode := getEnv("DB_SSLMODE", "disable")
	timezone := getEnv("DB_TIMEZONE", "UTC")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, password, dbname, port, sslmode, timezone,
	)

	// Open through lib/pq so driver errors surface as *pq.Error: the
	// ledger relies on its SQLSTATE codes to classify booking conflicts.
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.BusStop{},
		&models.Route{},
		&models.Vehicle{},
		&models.Driver{},
		&models.Trip{},
		&models.Reservation{},
		&models.TripStatusRecord{},
		&models.AppSetting{},
	)
	if err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	// Maintenance starts off; a missing row also reads as off, this just
	// makes the flag visible to operators from day one.
	seed := models.AppSetting{Key: models.MaintenanceKey, Value: "false"}
	if err := db.Where(models.AppSetting{Key: models.MaintenanceKey}).FirstOrCreate(&seed).Error; err != nil {
		log.Fatalf("maintenance flag seed failed: %v", err)
	}

	// Assign to global
	DB = db
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

// GetEnv exposes the env-with-default lookup to the rest of the app.
func GetEnv(key, defaultValue string) string {
	return getEnv(key, defaultValue)
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}
