package intersection

import (
	"context"
	"testing"
	"time"

	"github.com/aerosync/vertiport-routing/domain"
	"github.com/aerosync/vertiport-routing/geo"
	"github.com/aerosync/vertiport-routing/store/memory"
)

func TestCheck_SpatialOverlapInSameWindow(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	q := domain.FlightPath{
		ID:        "Q",
		Geometry:  geo.LineString{Points: []geo.PointZ{{Lat: 40.05, Lon: -74.001, AltM: 100}, {Lat: 40.05, Lon: -74, AltM: 100}}},
		TimeStart: time.Unix(0, 0).UTC(),
		TimeEnd:   time.Unix(3600, 0).UTC(),
	}
	if err := s.UpsertFlightPath(ctx, q); err != nil {
		t.Fatalf("UpsertFlightPath: %v", err)
	}

	p := geo.LineString{Points: []geo.PointZ{{Lat: 40, Lon: -74, AltM: 100}, {Lat: 40.1, Lon: -74, AltM: 100}}}
	c := New(s)

	got, err := c.Check(ctx, p, time.Unix(0, 0).UTC(), time.Unix(3600, 0).UTC())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !got {
		t.Fatalf("expected intersection, got false")
	}
}

func TestCheck_TemporallyDisjointPathsDoNotIntersect(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	q := domain.FlightPath{
		ID:        "Q",
		Geometry:  geo.LineString{Points: []geo.PointZ{{Lat: 40.05, Lon: -74.001, AltM: 100}, {Lat: 40.05, Lon: -74, AltM: 100}}},
		TimeStart: time.Unix(0, 0).Add(24 * time.Hour).UTC(),
		TimeEnd:   time.Unix(3600, 0).Add(24 * time.Hour).UTC(),
	}
	if err := s.UpsertFlightPath(ctx, q); err != nil {
		t.Fatalf("UpsertFlightPath: %v", err)
	}

	p := geo.LineString{Points: []geo.PointZ{{Lat: 40, Lon: -74, AltM: 100}, {Lat: 40.1, Lon: -74, AltM: 100}}}
	c := New(s)

	got, err := c.Check(ctx, p, time.Unix(0, 0).UTC(), time.Unix(3600, 0).UTC())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got {
		t.Fatalf("expected no intersection for temporally disjoint paths")
	}
}

func TestCheck_ZoneActivationWindowIsRespected(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	tenAM := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	elevenAM := time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC)
	zone := domain.Zone{
		Label:     "z",
		Kind:      domain.ZoneNofly,
		Footprint: squarePolygon(t, 40.0, -74.01, 40.1, -73.99),
		Altitude:  geo.AltitudeEnvelope{Unbounded: true},
		TimeStart: &tenAM,
		TimeEnd:   &elevenAM,
	}
	if err := s.UpsertZone(ctx, zone); err != nil {
		t.Fatalf("UpsertZone: %v", err)
	}

	path := geo.LineString{Points: []geo.PointZ{{Lat: 40.0, Lon: -74.0, AltM: 50}, {Lat: 40.1, Lon: -74.0, AltM: 50}}}
	c := New(s)

	noon := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	got, err := c.Check(ctx, path, noon, noon.Add(time.Hour))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if got {
		t.Fatalf("expected no intersection when queried after zone deactivates")
	}

	tenThirty := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)
	got, err = c.Check(ctx, path, tenThirty, tenThirty.Add(time.Hour))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !got {
		t.Fatalf("expected intersection while zone is active")
	}
}

func squarePolygon(t *testing.T, minLat, minLon, maxLat, maxLon float64) geo.Polygon {
	t.Helper()
	poly, err := geo.ValidatePolygon([]geo.Point{
		{Lat: minLat, Lon: minLon},
		{Lat: minLat, Lon: maxLon},
		{Lat: maxLat, Lon: maxLon},
		{Lat: maxLat, Lon: minLon},
		{Lat: minLat, Lon: minLon},
	})
	if err != nil {
		t.Fatalf("ValidatePolygon: %v", err)
	}
	return poly
}
