package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aerosync/vertiport-routing/domain"
	"github.com/aerosync/vertiport-routing/engineerr"
	"github.com/aerosync/vertiport-routing/geo"
	"github.com/aerosync/vertiport-routing/store"
	"github.com/aerosync/vertiport-routing/store/memory"
)

func square(minLat, minLon, maxLat, maxLon float64) []geo.Point {
	return []geo.Point{
		{Lat: minLat, Lon: minLon}, {Lat: minLat, Lon: maxLon},
		{Lat: maxLat, Lon: maxLon}, {Lat: maxLat, Lon: minLon}, {Lat: minLat, Lon: minLon},
	}
}

func TestIsReady(t *testing.T) {
	e := New(memory.New())
	if !e.IsReady(context.Background()) {
		t.Fatalf("expected a fresh store to report ready")
	}
}

func TestBestPath_DefaultsWindowAndFindsDirectRoute(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	e := New(s)

	poly, err := geo.ValidatePolygon(square(40.0, -74.0005, 40.0005, -73.9995))
	if err != nil {
		t.Fatalf("ValidatePolygon: %v", err)
	}
	poly2, _ := geo.ValidatePolygon(square(40.0995, -74.0005, 40.1005, -73.9995))
	if err := s.UpsertVertiport(ctx, domain.Vertiport{UUID: "vp-a", Footprint: poly}); err != nil {
		t.Fatalf("upsert a: %v", err)
	}
	if err := s.UpsertVertiport(ctx, domain.Vertiport{UUID: "vp-b", Footprint: poly2}); err != nil {
		t.Fatalf("upsert b: %v", err)
	}

	legs, err := e.BestPath(ctx, BestPathRequest{OriginID: "vp-a", TargetID: "vp-b"})
	if err != nil {
		t.Fatalf("BestPath: %v", err)
	}
	if len(legs) != 1 {
		t.Fatalf("expected one direct leg, got %d", len(legs))
	}
}

func TestBestPath_RejectsInvertedWindow(t *testing.T) {
	e := New(memory.New())
	start := time.Now().Add(time.Hour)
	end := time.Now()
	_, err := e.BestPath(context.Background(), BestPathRequest{
		OriginID: "a", TargetID: "b", TimeStart: &start, TimeEnd: &end,
	})
	if !errors.Is(err, engineerr.ErrBadGeometry) {
		t.Fatalf("expected ErrBadGeometry, got %v", err)
	}
}

func TestBestPath_UnknownEndpointIsReported(t *testing.T) {
	e := New(memory.New())
	_, err := e.BestPath(context.Background(), BestPathRequest{OriginID: "nope", TargetID: "also-nope"})
	if !errors.Is(err, engineerr.ErrUnknownEndpoint) {
		t.Fatalf("expected ErrUnknownEndpoint, got %v", err)
	}
}

func TestDistanceToSegmentM_PointOnLineIsZero(t *testing.T) {
	a := geo.Point{Lat: 40.0, Lon: -74.0}
	b := geo.Point{Lat: 40.0, Lon: -73.9}
	mid := geo.Point{Lat: 40.0, Lon: -73.95}
	if d := distanceToSegmentM(mid, a, b); d > 1.0 {
		t.Fatalf("expected ~0m for a point on the segment, got %f", d)
	}
}

func TestFilterWaypointsNearLine_DropsFarWaypointsKeepsOthers(t *testing.T) {
	origin := geo.Point{Lat: 40.0, Lon: -74.0}
	target := geo.Point{Lat: 40.0, Lon: -73.9}
	nodes := []store.CandidateNode{
		{NodeID: "vp-origin", Kind: domain.NodeVertiport, Location: geo.PointZ{Lat: origin.Lat, Lon: origin.Lon}},
		{NodeID: "vp-target", Kind: domain.NodeVertiport, Location: geo.PointZ{Lat: target.Lat, Lon: target.Lon}},
		{NodeID: "wp-near", Kind: domain.NodeWaypoint, Location: geo.PointZ{Lat: 40.0001, Lon: -73.95}},
		{NodeID: "wp-far", Kind: domain.NodeWaypoint, Location: geo.PointZ{Lat: 45.0, Lon: -73.95}},
	}
	edges := []store.Edge{
		{ID: 1, SourceID: "vp-origin", TargetID: "wp-near"},
		{ID: 2, SourceID: "wp-near", TargetID: "vp-target"},
		{ID: 3, SourceID: "vp-origin", TargetID: "wp-far"},
		{ID: 4, SourceID: "wp-far", TargetID: "vp-target"},
	}

	filtered := filterWaypointsNearLine(nodes, edges, origin, target, WaypointRangeMetersDefault)
	if len(filtered) != 2 {
		t.Fatalf("expected the two near-waypoint edges to survive, got %d", len(filtered))
	}
	for _, e := range filtered {
		if e.SourceID == "wp-far" || e.TargetID == "wp-far" {
			t.Fatalf("expected wp-far to be dropped, found edge %+v", e)
		}
	}
}

func TestCheckIntersection_RejectsEmptyPath(t *testing.T) {
	e := New(memory.New())
	_, err := e.CheckIntersection(context.Background(), CheckIntersectionRequest{
		TimeStart: time.Now(), TimeEnd: time.Now().Add(time.Hour),
	})
	if !errors.Is(err, engineerr.ErrBadGeometry) {
		t.Fatalf("expected ErrBadGeometry, got %v", err)
	}
}
