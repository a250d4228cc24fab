package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"campus_shuttle/internal/domain"
	"campus_shuttle/internal/models"
)

var admin = domain.Actor{UserID: 1, Role: "admin"}

func TestSetStatusRequiresAdmin(t *testing.T) {
	svc := StatusService{}
	_, err := svc.SetStatus(context.Background(), 1, models.StatusDelayed, "traffic", domain.Actor{UserID: 9, Role: "rider"})
	if !domain.IsUnauthorized(err) {
		t.Fatalf("err = %v, want Unauthorized", err)
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	svc := StatusService{}
	_, err := svc.SetStatus(context.Background(), 1, "boarding", "x", admin)
	if !domain.IsValidation(err) {
		t.Fatalf("err = %v, want Validation", err)
	}
}

func TestSetStatusRequiresDescription(t *testing.T) {
	db, mock := newMockDB(t)
	svc := StatusService{DB: db}

	for _, status := range []string{models.StatusDelayed, models.StatusCancelled} {
		_, err := svc.SetStatus(context.Background(), 1, status, "   ", admin)
		if !domain.IsValidation(err) {
			t.Fatalf("status %s with blank description: err = %v, want Validation", status, err)
		}
	}

	// Rejected before the store is touched: no history record appended.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSetStatusCancelledIsTerminal(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "trips"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id"}).AddRow(1, 7))
	mock.ExpectQuery(`SELECT \* FROM "trip_status_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "status", "description"}).
			AddRow(5, 1, "cancelled", "snow"))

	svc := StatusService{DB: db}
	_, err := svc.SetStatus(context.Background(), 1, models.StatusScheduled, "", admin)
	if domain.ConflictCode(err) != domain.CodeInvalidTransition {
		t.Fatalf("err = %v, want conflict %s", err, domain.CodeInvalidTransition)
	}

	// No new record was appended; the trip stays cancelled.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSetStatusAppendsRecord(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "trips"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id"}).AddRow(1, 7))
	mock.ExpectQuery(`SELECT \* FROM "trip_status_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "status", "description"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "trip_status_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectCommit()

	svc := StatusService{DB: db}
	record, err := svc.SetStatus(context.Background(), 1, models.StatusDelayed, "heavy traffic", admin)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if record.Status != models.StatusDelayed || record.Description != "heavy traffic" {
		t.Fatalf("record = %+v", record)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSetStatusReapplyAppendsFreshRecord(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "trips"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id"}).AddRow(1, 7))
	mock.ExpectQuery(`SELECT \* FROM "trip_status_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "status", "description"}).
			AddRow(5, 1, "delayed", "traffic"))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "trip_status_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(6))
	mock.ExpectCommit()

	svc := StatusService{DB: db}
	record, err := svc.SetStatus(context.Background(), 1, models.StatusDelayed, "still stuck on the ring road", admin)
	if err != nil {
		t.Fatalf("re-applying delayed should append, got %v", err)
	}
	if record.Description != "still stuck on the ring road" {
		t.Fatalf("description = %q", record.Description)
	}
}

func TestCurrentDefaultsToScheduled(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "trip_status_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "status", "description"}))

	svc := StatusService{DB: db}
	status, description, err := svc.Current(context.Background(), 1)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if status != models.StatusScheduled || description != "" {
		t.Fatalf("status = %q %q, want scheduled with empty description", status, description)
	}
}

func TestCurrentReadsLatestRecord(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "trip_status_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "status", "description"}).
			AddRow(8, 1, "delayed", "fog"))

	svc := StatusService{DB: db}
	status, description, err := svc.Current(context.Background(), 1)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if status != models.StatusDelayed || description != "fog" {
		t.Fatalf("status = %q %q", status, description)
	}
}
