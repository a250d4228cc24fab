package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"campus_shuttle/internal/domain"
)

func TestIsActiveMissingRowReadsAsOff(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "app_settings"`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}))

	svc := MaintenanceService{DB: db}
	active, err := svc.IsActive(context.Background())
	if err != nil {
		t.Fatalf("IsActive: %v", err)
	}
	if active {
		t.Fatal("missing flag row should read as maintenance off")
	}
}

func TestIsActiveReadsFlag(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "true", want: true},
		{value: "false", want: false},
		{value: "garbage", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectQuery(`SELECT \* FROM "app_settings"`).
				WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
					AddRow("maintenance_mode", tt.value))

			svc := MaintenanceService{DB: db}
			active, err := svc.IsActive(context.Background())
			if err != nil {
				t.Fatalf("IsActive: %v", err)
			}
			if active != tt.want {
				t.Fatalf("active = %v, want %v", active, tt.want)
			}
		})
	}
}

func TestSetRequiresAdmin(t *testing.T) {
	svc := MaintenanceService{}
	err := svc.Set(context.Background(), true, domain.Actor{UserID: 9, Role: "rider"})
	if !domain.IsUnauthorized(err) {
		t.Fatalf("err = %v, want Unauthorized", err)
	}
}
