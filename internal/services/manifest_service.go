package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"gorm.io/gorm"

	"campus_shuttle/internal/domain"
)

// manifestRow is one boarding line: seat plus the rider holding it.
type manifestRow struct {
	SeatNumber int
	Name       string
	Email      string
}

// ManifestService renders the passenger manifest a driver takes on board.
type ManifestService struct {
	DB    *gorm.DB
	Trips TripService
}

// ManifestPDF builds an A4 manifest for the trip: header with route,
// departure, vehicle, then one line per reserved seat in seat order.
func (s ManifestService) ManifestPDF(ctx context.Context, tripID uint, actor domain.Actor) ([]byte, string, error) {
	if !actor.IsAdmin() {
		return nil, "", domain.UnauthorizedError{Msg: "admin capability required"}
	}

	view, err := s.Trips.View(ctx, tripID)
	if err != nil {
		return nil, "", err
	}

	rows := []manifestRow{}
	err = s.DB.WithContext(ctx).Raw(`
SELECT res.seat_number, u.name, u.email
FROM reservations res
JOIN users u ON u.id = res.user_id
WHERE res.trip_id = ?
ORDER BY res.seat_number ASC`, tripID).
		Scan(&rows).Error
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Passenger Manifest", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PASSENGER MANIFEST")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	header := []string{
		fmt.Sprintf("Trip      : #%d", view.TripID),
		fmt.Sprintf("Route     : %s -> %s", view.Source, view.Destination),
		fmt.Sprintf("Departure : %s", view.DepartureTime.Format("2006-01-02 15:04")),
		fmt.Sprintf("Vehicle   : %s (%d seats)", view.VehicleName, view.TotalSeats),
		fmt.Sprintf("Status    : %s", view.Status),
	}
	for _, line := range header {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(20, 8, "Seat", "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 8, "Name", "1", 0, "L", false, 0, "")
	pdf.CellFormat(90, 8, "Email", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", row.SeatNumber), "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 7, row.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(90, 7, row.Email, "1", 1, "L", false, 0, "")
	}
	if len(rows) == 0 {
		pdf.CellFormat(180, 7, "No reservations", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, fmt.Sprintf("%d of %d seats reserved", len(rows), view.TotalSeats))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("manifest_trip_%d.pdf", view.TripID)
	return buf.Bytes(), filename, nil
}
