package services

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"

	"campus_shuttle/internal/domain"
	"campus_shuttle/internal/models"
)

// RouteOption labels a route for admin forms, e.g. "North Campus → South
// Campus", with the stored path echoed back as GeoJSON.
type RouteOption struct {
	ID       uint   `json:"id"`
	Label    string `json:"label"`
	Geometry string `json:"geometry,omitempty"`
}

type SimpleOption struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// AdminOptions is the master data an admin needs to provision a trip.
type AdminOptions struct {
	Routes   []RouteOption  `json:"routes"`
	Vehicles []SimpleOption `json:"vehicles"`
	Drivers  []SimpleOption `json:"drivers"`
}

type CreateRouteInput struct {
	SourceStopID      uint
	DestinationStopID uint
	Geometry          string // GeoJSON LineString, optional
}

// FleetService maintains the master data trips are built from: stops,
// routes, vehicles, drivers. All writes are admin-only.
type FleetService struct {
	DB *gorm.DB
}

func (s FleetService) CreateStop(ctx context.Context, stop models.BusStop, actor domain.Actor) (*models.BusStop, error) {
	if !actor.IsAdmin() {
		return nil, domain.UnauthorizedError{Msg: "admin capability required"}
	}
	if err := s.DB.WithContext(ctx).Create(&stop).Error; err != nil {
		return nil, err
	}
	return &stop, nil
}

func (s FleetService) CreateRoute(ctx context.Context, in CreateRouteInput, actor domain.Actor) (*models.Route, error) {
	if !actor.IsAdmin() {
		return nil, domain.UnauthorizedError{Msg: "admin capability required"}
	}
	if in.SourceStopID == in.DestinationStopID {
		return nil, domain.ValidationError{Field: "destination_stop_id", Msg: "must differ from source stop"}
	}

	db := s.DB.WithContext(ctx)

	var src, dst models.BusStop
	if err := db.First(&src, in.SourceStopID).Error; err != nil {
		return nil, asLookupError(err, "source stop")
	}
	if err := db.First(&dst, in.DestinationStopID).Error; err != nil {
		return nil, asLookupError(err, "destination stop")
	}

	wkbBytes, err := geoJSONToWKB(in.Geometry)
	if err != nil {
		return nil, domain.ValidationError{Field: "geometry", Msg: "invalid GeoJSON", Err: err}
	}

	route := models.Route{
		SourceStopID:      in.SourceStopID,
		DestinationStopID: in.DestinationStopID,
		Geometry:          wkbBytes,
	}
	if err := db.Create(&route).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

func (s FleetService) CreateVehicle(ctx context.Context, vehicle models.Vehicle, actor domain.Actor) (*models.Vehicle, error) {
	if !actor.IsAdmin() {
		return nil, domain.UnauthorizedError{Msg: "admin capability required"}
	}
	if vehicle.TotalSeats <= 0 {
		return nil, domain.ValidationError{Field: "total_seats", Msg: "must be positive"}
	}
	if err := s.DB.WithContext(ctx).Create(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (s FleetService) CreateDriver(ctx context.Context, driver models.Driver, actor domain.Actor) (*models.Driver, error) {
	if !actor.IsAdmin() {
		return nil, domain.UnauthorizedError{Msg: "admin capability required"}
	}
	if err := s.DB.WithContext(ctx).Create(&driver).Error; err != nil {
		return nil, err
	}
	return &driver, nil
}

// Options gathers the route/vehicle/driver choices for the trip creation
// form in one call.
func (s FleetService) Options(ctx context.Context, actor domain.Actor) (*AdminOptions, error) {
	if !actor.IsAdmin() {
		return nil, domain.UnauthorizedError{Msg: "admin capability required"}
	}

	db := s.DB.WithContext(ctx)

	var routes []models.Route
	if err := db.Preload("SourceStop").Preload("DestinationStop").Find(&routes).Error; err != nil {
		return nil, err
	}
	var vehicles []models.Vehicle
	if err := db.Find(&vehicles).Error; err != nil {
		return nil, err
	}
	var drivers []models.Driver
	if err := db.Find(&drivers).Error; err != nil {
		return nil, err
	}

	options := &AdminOptions{
		Routes:   make([]RouteOption, 0, len(routes)),
		Vehicles: make([]SimpleOption, 0, len(vehicles)),
		Drivers:  make([]SimpleOption, 0, len(drivers)),
	}
	for _, r := range routes {
		geometry, err := wkbToGeoJSON(r.Geometry)
		if err != nil {
			// A run of bad bytes should not take the whole form down.
			geometry = ""
		}
		options.Routes = append(options.Routes, RouteOption{
			ID:       r.ID,
			Label:    fmt.Sprintf("%s → %s", r.SourceStop.Name, r.DestinationStop.Name),
			Geometry: geometry,
		})
	}
	for _, v := range vehicles {
		options.Vehicles = append(options.Vehicles, SimpleOption{ID: v.ID, Name: v.Name})
	}
	for _, d := range drivers {
		options.Drivers = append(options.Drivers, SimpleOption{ID: d.ID, Name: d.Name})
	}
	return options, nil
}

// geoJSONToWKB parses a GeoJSON geometry into WKB bytes for storage.
func geoJSONToWKB(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, err
	}
	if _, ok := g.(*geom.LineString); !ok {
		return nil, errors.New("geometry must be a LineString")
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// wkbToGeoJSON renders stored WKB bytes back to a GeoJSON string.
func wkbToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
