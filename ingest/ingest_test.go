package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aerosync/vertiport-routing/engineerr"
	"github.com/aerosync/vertiport-routing/geo"
	"github.com/aerosync/vertiport-routing/store/memory"
)

func TestUpdateWaypoints_RejectsForbiddenSubstring(t *testing.T) {
	in := New(memory.New())
	err := in.UpdateWaypoints(context.Background(), []WaypointUpdate{
		{Label: "NULLwp", Location: geo.Point{Lat: 40, Lon: -74}},
	})
	if !errors.Is(err, engineerr.ErrBadGeometry) {
		t.Fatalf("expected ErrBadGeometry, got %v", err)
	}
}

func TestUpdateWaypoints_RejectsBadPattern(t *testing.T) {
	in := New(memory.New())
	err := in.UpdateWaypoints(context.Background(), []WaypointUpdate{
		{Label: "wp one!", Location: geo.Point{Lat: 40, Lon: -74}},
	})
	if !errors.Is(err, engineerr.ErrBadGeometry) {
		t.Fatalf("expected ErrBadGeometry, got %v", err)
	}
}

func TestUpdateVertiports_BatchRollsBackOnFirstFailure(t *testing.T) {
	s := memory.New()
	in := New(s)

	square := []geo.Point{
		{Lat: 40.0, Lon: -74.001}, {Lat: 40.0, Lon: -73.999},
		{Lat: 40.001, Lon: -73.999}, {Lat: 40.001, Lon: -74.001}, {Lat: 40.0, Lon: -74.001},
	}
	err := in.UpdateVertiports(context.Background(), []VertiportUpdate{
		{UUID: "ok-1", Footprint: square, AltitudeM: 10},
		{UUID: "bad-1", Footprint: square[:2], AltitudeM: 10}, // too few vertices
	})
	if !errors.Is(err, engineerr.ErrBadGeometry) {
		t.Fatalf("expected ErrBadGeometry, got %v", err)
	}
	if _, err := s.GetVertiport(context.Background(), "ok-1"); err == nil {
		t.Fatalf("expected no vertiport to be committed when batch validation fails")
	}
}

func TestUpdateAircraftPosition_MonotonicityIsNotAValidationFailure(t *testing.T) {
	ctx := context.Background()
	in := New(memory.New())

	t0 := time.Unix(100, 0).UTC()
	applied, err := in.UpdateAircraftPosition(ctx, AircraftPositionUpdate{
		Callsign: "N123", Point: geo.PointZ{Lat: 40, Lon: -74, AltM: 100}, Timestamp: t0,
	})
	if err != nil || !applied {
		t.Fatalf("first update: applied=%v err=%v", applied, err)
	}

	applied, err = in.UpdateAircraftPosition(ctx, AircraftPositionUpdate{
		Callsign: "N123", Point: geo.PointZ{Lat: 41, Lon: -75, AltM: 50}, Timestamp: time.Unix(50, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("stale update should not be an error: %v", err)
	}
	if applied {
		t.Fatalf("stale update should not be applied")
	}
}
