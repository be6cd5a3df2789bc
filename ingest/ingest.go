// Package ingest implements state ingestion (C3): identifier validation
// grounded in original_source/server/src/postgis/utils.rs's check_string
// (forbidden-substring + regex + max-length checks applied uniformly across
// vertiport/waypoint/zone/aircraft/flight-path labels), plus a
// validate-then-apply batch wrapper: a validation failure on any item aborts
// the whole request before anything is applied. Items are then applied one
// at a time; a store error part-way through is not rolled back, so the items
// applied before it stay applied.
package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aerosync/vertiport-routing/domain"
	"github.com/aerosync/vertiport-routing/engineerr"
	"github.com/aerosync/vertiport-routing/geo"
	"github.com/aerosync/vertiport-routing/store"
)

var (
	labelRegex    = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	callsignRegex = regexp.MustCompile(`^[a-zA-Z0-9_\s-]+$`)
	flightIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

const (
	labelMaxLength    = 20
	callsignMaxLength = 100
	flightIDMaxLength = 100
)

// CheckString validates s against re and maxLen, and rejects any string
// containing "null" case-insensitively, mirroring check_string's forbidden-
// substring guard against a well-known SQL NULL-injection footgun.
func CheckString(s string, re *regexp.Regexp, maxLen int) error {
	if strings.Contains(strings.ToLower(s), "null") {
		return fmt.Errorf("%w: identifier %q contains forbidden substring", engineerr.ErrBadGeometry, s)
	}
	if len(s) == 0 || len(s) > maxLen {
		return fmt.Errorf("%w: identifier %q exceeds length bounds", engineerr.ErrBadGeometry, s)
	}
	if !re.MatchString(s) {
		return fmt.Errorf("%w: identifier %q does not match the required pattern", engineerr.ErrBadGeometry, s)
	}
	return nil
}

// Ingestor validates and applies state updates against a SpatialStore. Every
// item of a request is validated before any is applied, so a validation
// failure applies nothing; a store error while applying leaves the items
// before it applied.
type Ingestor struct {
	Store store.SpatialStore
}

// New constructs an Ingestor over the given backend.
func New(s store.SpatialStore) *Ingestor {
	return &Ingestor{Store: s}
}

// VertiportUpdate is one item of an update_vertiports batch.
type VertiportUpdate struct {
	UUID      string
	Label     string
	Footprint []geo.Point
	AltitudeM float64
}

// UpdateVertiports validates and applies a batch atomically: any item
// failing validation aborts the whole batch before any store mutation runs.
func (in *Ingestor) UpdateVertiports(ctx context.Context, updates []VertiportUpdate) error {
	vertiports := make([]domain.Vertiport, 0, len(updates))
	for _, u := range updates {
		if u.Label != "" {
			if err := CheckString(u.Label, labelRegex, labelMaxLength); err != nil {
				return err
			}
		}
		poly, err := geo.ValidatePolygon(u.Footprint)
		if err != nil {
			return err
		}
		vertiports = append(vertiports, domain.Vertiport{UUID: u.UUID, Label: u.Label, Footprint: poly, AltitudeM: u.AltitudeM})
	}
	for _, v := range vertiports {
		if err := in.Store.UpsertVertiport(ctx, v); err != nil {
			return fmt.Errorf("apply vertiport %q: %w", v.UUID, err)
		}
	}
	return nil
}

// WaypointUpdate is one item of an update_waypoints batch.
type WaypointUpdate struct {
	Label        string
	Location     geo.Point
	MinAltitudeM *float64
}

func (in *Ingestor) UpdateWaypoints(ctx context.Context, updates []WaypointUpdate) error {
	waypoints := make([]domain.Waypoint, 0, len(updates))
	for _, u := range updates {
		if err := CheckString(u.Label, labelRegex, labelMaxLength); err != nil {
			return err
		}
		if err := geo.ValidatePoint(u.Location); err != nil {
			return err
		}
		waypoints = append(waypoints, domain.Waypoint{Label: u.Label, Location: u.Location, MinAltitudeM: u.MinAltitudeM})
	}
	for _, w := range waypoints {
		if err := in.Store.UpsertWaypoint(ctx, w); err != nil {
			return fmt.Errorf("apply waypoint %q: %w", w.Label, err)
		}
	}
	return nil
}

// ZoneUpdate is one item of an update_zones batch.
type ZoneUpdate struct {
	Label     string
	Kind      domain.ZoneKind
	Footprint []geo.Point
	Altitude  geo.AltitudeEnvelope
	TimeStart *time.Time
	TimeEnd   *time.Time
}

func (in *Ingestor) UpdateZones(ctx context.Context, updates []ZoneUpdate) error {
	zones := make([]domain.Zone, 0, len(updates))
	for _, u := range updates {
		if err := CheckString(u.Label, labelRegex, labelMaxLength); err != nil {
			return err
		}
		poly, err := geo.ValidatePolygon(u.Footprint)
		if err != nil {
			return err
		}
		if u.TimeStart != nil && u.TimeEnd != nil && u.TimeEnd.Before(*u.TimeStart) {
			return fmt.Errorf("%w: zone %q time_end before time_start", engineerr.ErrBadGeometry, u.Label)
		}
		zones = append(zones, domain.Zone{
			Label: u.Label, Kind: u.Kind, Footprint: poly, Altitude: u.Altitude,
			TimeStart: u.TimeStart, TimeEnd: u.TimeEnd,
		})
	}
	for _, z := range zones {
		if err := in.Store.UpsertZone(ctx, z); err != nil {
			return fmt.Errorf("apply zone %q: %w", z.Label, err)
		}
	}
	return nil
}

// AircraftPositionUpdate is one telemetry report.
type AircraftPositionUpdate struct {
	Callsign  string
	UUID      *string
	Point     geo.PointZ
	AltitudeM float64
	Timestamp time.Time
}

// UpdateAircraftPosition validates and applies one telemetry report.
// Monotonicity rejection is not a validation failure: it is signaled via
// the returned applied flag, matching C2's contract.
func (in *Ingestor) UpdateAircraftPosition(ctx context.Context, u AircraftPositionUpdate) (applied bool, err error) {
	if err := CheckString(u.Callsign, callsignRegex, callsignMaxLength); err != nil {
		return false, fmt.Errorf("%w: %v", engineerr.ErrBadTelemetry, err)
	}
	if err := geo.ValidatePointZ(u.Point); err != nil {
		return false, fmt.Errorf("%w: %v", engineerr.ErrBadTelemetry, err)
	}
	if u.Timestamp.IsZero() {
		return false, fmt.Errorf("%w: missing telemetry timestamp", engineerr.ErrBadTelemetry)
	}
	return in.Store.UpsertAircraft(ctx, u.Callsign, u.UUID, u.Point, u.AltitudeM, u.Timestamp)
}

// FlightPathUpdate publishes or replaces a scheduled flight path.
type FlightPathUpdate struct {
	ID               string
	AircraftCallsign *string
	Points           []geo.PointZ
	TimeStart        time.Time
	TimeEnd          time.Time
	Simulated        bool
}

func (in *Ingestor) UpdateFlightPath(ctx context.Context, u FlightPathUpdate) error {
	if err := CheckString(u.ID, flightIDRegex, flightIDMaxLength); err != nil {
		return err
	}
	if len(u.Points) == 0 {
		return fmt.Errorf("%w: flight path %q has no points", engineerr.ErrBadGeometry, u.ID)
	}
	for _, p := range u.Points {
		if err := geo.ValidatePointZ(p); err != nil {
			return err
		}
	}
	if u.TimeEnd.Before(u.TimeStart) {
		return fmt.Errorf("%w: flight path %q time_end before time_start", engineerr.ErrBadGeometry, u.ID)
	}
	fp := domain.FlightPath{
		ID: u.ID, AircraftCallsign: u.AircraftCallsign,
		Geometry:  geo.LineString{Points: u.Points},
		TimeStart: u.TimeStart, TimeEnd: u.TimeEnd, Simulated: u.Simulated,
	}
	return in.Store.UpsertFlightPath(ctx, fp)
}
