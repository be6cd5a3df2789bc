package memory

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/aerosync/vertiport-routing/domain"
	"github.com/aerosync/vertiport-routing/geo"
)

func mustPolygon(t *testing.T, verts []geo.Point) geo.Polygon {
	t.Helper()
	p, err := geo.ValidatePolygon(verts)
	if err != nil {
		t.Fatalf("ValidatePolygon: %v", err)
	}
	return p
}

func square(minLat, minLon, maxLat, maxLon float64) []geo.Point {
	return []geo.Point{
		{Lat: minLat, Lon: minLon},
		{Lat: minLat, Lon: maxLon},
		{Lat: maxLat, Lon: maxLon},
		{Lat: maxLat, Lon: minLon},
		{Lat: minLat, Lon: minLon},
	}
}

func TestUpsertVertiport_RoundTripsModuloCentroid(t *testing.T) {
	ctx := context.Background()
	s := New()

	poly := mustPolygon(t, square(40.0, -74.001, 40.001, -73.999))
	v := domain.Vertiport{UUID: "vp-1", Footprint: poly, AltitudeM: 50, Label: "A"}
	if err := s.UpsertVertiport(ctx, v); err != nil {
		t.Fatalf("UpsertVertiport: %v", err)
	}

	got, err := s.GetVertiport(ctx, "vp-1")
	if err != nil {
		t.Fatalf("GetVertiport: %v", err)
	}
	if got.Label != v.Label || got.UUID != v.UUID {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, v)
	}

	if _, err := s.GetZone(ctx, got.ZoneLabel); err != nil {
		t.Fatalf("expected owned zone to exist: %v", err)
	}
}

func TestDeleteVertiport_CascadesZoneAndLocations(t *testing.T) {
	ctx := context.Background()
	s := New()
	poly := mustPolygon(t, square(40.0, -74.001, 40.001, -73.999))
	v := domain.Vertiport{UUID: "vp-1", Footprint: poly}
	if err := s.UpsertVertiport(ctx, v); err != nil {
		t.Fatalf("UpsertVertiport: %v", err)
	}
	got, _ := s.GetVertiport(ctx, "vp-1")

	if err := s.DeleteVertiport(ctx, "vp-1"); err != nil {
		t.Fatalf("DeleteVertiport: %v", err)
	}
	if _, err := s.GetVertiport(ctx, "vp-1"); err == nil {
		t.Fatalf("expected vertiport to be gone")
	}
	if _, err := s.GetZone(ctx, got.ZoneLabel); err == nil {
		t.Fatalf("expected owned zone to be gone")
	}
}

func TestUpsertAircraft_MonotonicRejectsStaleSample(t *testing.T) {
	ctx := context.Background()
	s := New()

	t100 := time.Unix(100, 0).UTC()
	t50 := time.Unix(50, 0).UTC()

	applied, err := s.UpsertAircraft(ctx, "A", nil, geo.PointZ{Lat: 40, Lon: -74, AltM: 100}, 100, t100)
	if err != nil || !applied {
		t.Fatalf("first update: applied=%v err=%v", applied, err)
	}

	applied, err = s.UpsertAircraft(ctx, "A", nil, geo.PointZ{Lat: 41, Lon: -75, AltM: 50}, 50, t50)
	if err != nil {
		t.Fatalf("second update err: %v", err)
	}
	if applied {
		t.Fatalf("expected stale sample to be rejected")
	}

	got, err := s.GetAircraft(ctx, "A")
	if err != nil {
		t.Fatalf("GetAircraft: %v", err)
	}
	if !got.LastUpdated.Equal(t100) {
		t.Fatalf("LastUpdated = %v, want %v", got.LastUpdated, t100)
	}
}

func TestUpsertAircraft_RejectsSampleAtExactlyLastUpdated(t *testing.T) {
	ctx := context.Background()
	s := New()
	t100 := time.Unix(100, 0).UTC()

	if _, err := s.UpsertAircraft(ctx, "A", nil, geo.PointZ{Lat: 40, Lon: -74}, 0, t100); err != nil {
		t.Fatalf("first update: %v", err)
	}
	applied, err := s.UpsertAircraft(ctx, "A", nil, geo.PointZ{Lat: 40, Lon: -74}, 0, t100)
	if err != nil {
		t.Fatalf("second update err: %v", err)
	}
	if applied {
		t.Fatalf("expected sample at t == last_updated to be rejected (strict <)")
	}
}

func TestBestPath_DirectRouteNoObstacles(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := domain.Vertiport{UUID: "vp-a", Footprint: mustPolygon(t, square(40.0, -74.0005, 40.0005, -73.9995))}
	b := domain.Vertiport{UUID: "vp-b", Footprint: mustPolygon(t, square(40.0995, -74.0005, 40.1005, -73.9995))}
	if err := s.UpsertVertiport(ctx, a); err != nil {
		t.Fatalf("upsert a: %v", err)
	}
	if err := s.UpsertVertiport(ctx, b); err != nil {
		t.Fatalf("upsert b: %v", err)
	}

	now := time.Now().UTC()
	// The endpoints' own vertiport zones are exempt, as for a best_path call.
	edges, _, err := s.CandidateEdges(ctx, now, now.Add(time.Hour), time.Hour, []string{"vertiport-zone-vp-a", "vertiport-zone-vp-b"})
	if err != nil {
		t.Fatalf("CandidateEdges: %v", err)
	}
	steps, err := s.AStar(ctx, edges, "vp-a", "vp-b")
	if err != nil {
		t.Fatalf("AStar: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("expected a single direct leg, got %d", len(steps))
	}
	if math.Abs(steps[0].Cost-11119) > 50 {
		t.Fatalf("leg cost = %v, want ~11119", steps[0].Cost)
	}
}

func TestBestPath_RouteBlockedByPermanentZoneUsesWaypoint(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := domain.Vertiport{UUID: "vp-a", Footprint: mustPolygon(t, square(40.0, -74.0005, 40.0005, -73.9995))}
	b := domain.Vertiport{UUID: "vp-b", Footprint: mustPolygon(t, square(40.0995, -74.0005, 40.1005, -73.9995))}
	if err := s.UpsertVertiport(ctx, a); err != nil {
		t.Fatalf("upsert a: %v", err)
	}
	if err := s.UpsertVertiport(ctx, b); err != nil {
		t.Fatalf("upsert b: %v", err)
	}
	blocker := domain.Zone{
		Label:     "blocker",
		Kind:      domain.ZoneNofly,
		Footprint: mustPolygon(t, square(40.04, -74.01, 40.06, -73.99)),
		Altitude:  geo.AltitudeEnvelope{Unbounded: true},
	}
	if err := s.UpsertZone(ctx, blocker); err != nil {
		t.Fatalf("upsert zone: %v", err)
	}
	wp := domain.Waypoint{Label: "wp-1", Location: geo.Point{Lat: 40.05, Lon: -74.02}}
	if err := s.UpsertWaypoint(ctx, wp); err != nil {
		t.Fatalf("upsert waypoint: %v", err)
	}

	now := time.Now().UTC()
	// The endpoints' own vertiport zones are exempt, as for a best_path call.
	edges, _, err := s.CandidateEdges(ctx, now, now.Add(time.Hour), time.Hour, []string{"vertiport-zone-vp-a", "vertiport-zone-vp-b"})
	if err != nil {
		t.Fatalf("CandidateEdges: %v", err)
	}
	steps, err := s.AStar(ctx, edges, "vp-a", "vp-b")
	if err != nil {
		t.Fatalf("AStar: %v", err)
	}
	if len(steps) < 2 {
		t.Fatalf("expected path via waypoint (>=2 legs), got %d", len(steps))
	}

	direct := 11119.0
	var total float64
	for _, st := range steps {
		total += st.Cost
	}
	if total <= direct {
		t.Fatalf("blocked-route total %v should exceed direct distance %v", total, direct)
	}
}

func TestPathsOverlappingInTime_SpatialAndTemporalFilters(t *testing.T) {
	ctx := context.Background()
	s := New()

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

	// Same window: should overlap spatially.
	overlapping, err := s.PathsOverlappingInTime(ctx, time.Unix(0, 0).UTC(), time.Unix(3600, 0).UTC(), p, 300)
	if err != nil {
		t.Fatalf("PathsOverlappingInTime: %v", err)
	}
	if len(overlapping) != 1 {
		t.Fatalf("expected 1 overlapping path, got %d", len(overlapping))
	}

	// 24h later: temporally disjoint.
	disjointStart := time.Unix(0, 0).Add(24 * time.Hour).UTC()
	disjointEnd := disjointStart.Add(time.Hour)
	overlapping, err = s.PathsOverlappingInTime(ctx, disjointStart, disjointEnd, p, 300)
	if err != nil {
		t.Fatalf("PathsOverlappingInTime: %v", err)
	}
	if len(overlapping) != 0 {
		t.Fatalf("expected 0 overlapping paths for disjoint window, got %d", len(overlapping))
	}
}

func TestZoneActiveInWindow_BoundaryIsStrict(t *testing.T) {
	start := time.Unix(1000, 0).UTC()
	end := time.Unix(2000, 0).UTC()
	z := domain.Zone{Label: "z", TimeStart: &start, TimeEnd: &end}

	if z.ActiveInWindow(end, end.Add(time.Hour)) {
		t.Fatalf("zone ending exactly at query start should not be active")
	}
	if !z.ActiveInWindow(end.Add(-time.Second), end.Add(time.Hour)) {
		t.Fatalf("zone should be active when query starts just before its end")
	}
}
