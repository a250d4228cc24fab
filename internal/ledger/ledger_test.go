package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"campus_shuttle/internal/domain"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock
}

func expectTrip(mock sqlmock.Sqlmock, tripID, vehicleID uint) {
	mock.ExpectQuery(`SELECT \* FROM "trips"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id"}).AddRow(tripID, vehicleID))
}

func expectStatus(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT \* FROM "trip_status_records"`).WillReturnRows(rows)
}

func emptyStatusRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "trip_id", "status", "description"})
}

func TestReserveAssignsLowestFreeSeat(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	expectTrip(mock, 1, 7)
	expectStatus(mock, emptyStatusRows())
	mock.ExpectQuery(`SELECT \* FROM "vehicles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_seats"}).AddRow(7, 20))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT "seat_number" FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_number"}).AddRow(1).AddRow(3))
	mock.ExpectQuery(`INSERT INTO "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	reservation, err := New(db).Reserve(context.Background(), 1, 9)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if reservation.SeatNumber != 2 {
		t.Fatalf("seat = %d, want 2 (lowest free, reusing the gap)", reservation.SeatNumber)
	}
	if reservation.ID != 42 {
		t.Fatalf("id = %d, want 42", reservation.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReserveTripNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "trips"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id"}))
	mock.ExpectRollback()

	_, err := New(db).Reserve(context.Background(), 99, 9)
	if !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestReserveCancelledTrip(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	expectTrip(mock, 1, 7)
	expectStatus(mock, sqlmock.NewRows([]string{"id", "trip_id", "status", "description"}).
		AddRow(5, 1, "cancelled", "snow"))
	mock.ExpectRollback()

	_, err := New(db).Reserve(context.Background(), 1, 9)
	if domain.ConflictCode(err) != domain.CodeTripCancelled {
		t.Fatalf("err = %v, want conflict %s", err, domain.CodeTripCancelled)
	}
}

func TestReserveDuplicateUser(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	expectTrip(mock, 1, 7)
	expectStatus(mock, emptyStatusRows())
	mock.ExpectQuery(`SELECT \* FROM "vehicles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_seats"}).AddRow(7, 20))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := New(db).Reserve(context.Background(), 1, 9)
	if domain.ConflictCode(err) != domain.CodeDuplicateReservation {
		t.Fatalf("err = %v, want conflict %s", err, domain.CodeDuplicateReservation)
	}
}

func TestReserveFullTrip(t *testing.T) {
	db, mock := newMockDB(t)

	occupied := sqlmock.NewRows([]string{"seat_number"})
	for seat := 1; seat <= 3; seat++ {
		occupied.AddRow(seat)
	}

	mock.ExpectBegin()
	expectTrip(mock, 1, 7)
	expectStatus(mock, emptyStatusRows())
	mock.ExpectQuery(`SELECT \* FROM "vehicles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_seats"}).AddRow(7, 3))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT "seat_number" FROM "reservations"`).
		WillReturnRows(occupied)
	mock.ExpectRollback()

	_, err := New(db).Reserve(context.Background(), 1, 9)
	if domain.ConflictCode(err) != domain.CodeTripFull {
		t.Fatalf("err = %v, want conflict %s", err, domain.CodeTripFull)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "reservations"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := New(db).Release(context.Background(), 1, 5); err != nil {
		t.Fatalf("Release of an unheld seat should be a no-op, got %v", err)
	}
}

func TestRemaining(t *testing.T) {
	db, mock := newMockDB(t)

	expectTrip(mock, 1, 7)
	mock.ExpectQuery(`SELECT \* FROM "vehicles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "total_seats"}).AddRow(7, 20))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	remaining, err := New(db).Remaining(context.Background(), 1)
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if remaining != 8 {
		t.Fatalf("remaining = %d, want 8", remaining)
	}
}

func TestTranslateStoreError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "duplicate user constraint",
			err:      &pq.Error{Code: "23505", Constraint: "idx_trip_user"},
			wantCode: domain.CodeDuplicateReservation,
		},
		{
			name:     "seat constraint lost race",
			err:      &pq.Error{Code: "23505", Constraint: "idx_trip_seat"},
			wantCode: domain.CodeTripFull,
		},
		{
			name:     "serialization failure",
			err:      &pq.Error{Code: "40001"},
			wantCode: domain.CodeTripFull,
		},
		{
			name:     "wrapped driver error",
			err:      fmt.Errorf("commit: %w", &pq.Error{Code: "23505", Constraint: "idx_trip_user"}),
			wantCode: domain.CodeDuplicateReservation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateStoreError(tt.err)
			if domain.ConflictCode(got) != tt.wantCode {
				t.Fatalf("code = %q, want %q", domain.ConflictCode(got), tt.wantCode)
			}
		})
	}

	t.Run("deadline maps to unavailable", func(t *testing.T) {
		got := translateStoreError(fmt.Errorf("query: %w", context.DeadlineExceeded))
		if !domain.IsUnavailable(got) {
			t.Fatalf("err = %v, want Unavailable", got)
		}
	})

	t.Run("unknown errors pass through", func(t *testing.T) {
		sentinel := errors.New("boom")
		if got := translateStoreError(sentinel); !errors.Is(got, sentinel) {
			t.Fatalf("err = %v, want passthrough", got)
		}
	})
}
