// Package store defines the abstract spatial backend contract (C2):
// idempotent upserts, cascading deletes, candidate-node/edge snapshots for
// the graph builder, the A* call, and the time-windowed flight-path query
// used by the intersection engine. Two implementations satisfy this one
// interface: store/memory (the default, in-process reference backend) and
// store/postgres (a PostGIS-flavored GORM adapter). The store tests
// construct store/memory directly; store/postgres has no tests.
package store

import (
	"context"
	"time"

	"github.com/aerosync/vertiport-routing/domain"
	"github.com/aerosync/vertiport-routing/geo"
)

// CandidateNode is one row of a candidate_nodes_at snapshot: a node id, its
// kind, and the location sample selected for the query instant.
type CandidateNode struct {
	NodeID     string
	Kind       domain.NodeKind
	Location   geo.PointZ
	SampleTime time.Time
}

// Edge is one directed candidate edge, in the shape the A* call consumes:
// pgRouting-style rows with a reverse_cost of -1 to block reverse traversal,
// plus endpoint x/y (lon/lat) for the Euclidean heuristic.
type Edge struct {
	ID          int64
	SourceID    string
	TargetID    string
	Cost        float64
	ReverseCost float64
	SourceX     float64
	SourceY     float64
	TargetX     float64
	TargetY     float64
}

// PathStep is one leg of an A* result: (seq, edge_id, cost) as specified.
type PathStep struct {
	Seq    int
	EdgeID int64
	Cost   float64
}

// FlightState is one row of a get_flights response: an aircraft or
// scheduled flight path's position within the requested window.
type FlightState struct {
	Callsign     string
	Position     geo.PointZ
	Timestamp    time.Time
	FlightPathID *string
}

// Stats summarizes fleet composition for observability gauges.
type Stats struct {
	Vertiports int
	Waypoints  int
	Zones      int
	Aircraft   int
}

// SpatialStore is the abstract backend contract (C2). All methods are safe
// for concurrent use.
type SpatialStore interface {
	UpsertVertiport(ctx context.Context, v domain.Vertiport) error
	UpsertWaypoint(ctx context.Context, w domain.Waypoint) error
	UpsertZone(ctx context.Context, z domain.Zone) error
	// UpsertAircraft applies a telemetry sample monotonically: applied is
	// false (not an error) when tSample is not strictly newer than the
	// stored last_updated.
	UpsertAircraft(ctx context.Context, callsign string, uuid *string, point geo.PointZ, altM float64, tSample time.Time) (applied bool, err error)
	UpsertFlightPath(ctx context.Context, fp domain.FlightPath) error

	DeleteVertiport(ctx context.Context, uuid string) error
	DeleteWaypoint(ctx context.Context, label string) error
	DeleteZone(ctx context.Context, label string) error
	DeleteAircraft(ctx context.Context, callsign string) error
	DeleteFlightPath(ctx context.Context, id string) error

	GetVertiport(ctx context.Context, uuid string) (domain.Vertiport, error)
	GetWaypoint(ctx context.Context, label string) (domain.Waypoint, error)
	GetZone(ctx context.Context, label string) (domain.Zone, error)
	GetAircraft(ctx context.Context, callsign string) (domain.Aircraft, error)
	GetFlightPath(ctx context.Context, id string) (domain.FlightPath, error)

	// CandidateNodesAt returns one row per node: the sample whose
	// |sample_t - t| is minimal, gated by tolerance for aircraft only.
	CandidateNodesAt(ctx context.Context, t time.Time, tolerance time.Duration) ([]CandidateNode, error)

	// CandidateEdges builds the complete bidirectional edge set between
	// candidate nodes at tStart (aircraft excluded as targets), dropping
	// edges that cross a zone active in [tStart,tEnd) unless its label is
	// in exemptZoneLabels.
	CandidateEdges(ctx context.Context, tStart, tEnd time.Time, tolerance time.Duration, exemptZoneLabels []string) ([]Edge, []CandidateNode, error)

	// AStar runs a pgRouting-style A* search (Euclidean heuristic,
	// unidirectional edges) over the given edge set.
	AStar(ctx context.Context, edges []Edge, sourceNodeID, targetNodeID string) ([]PathStep, error)

	// PathsOverlappingInTime returns scheduled flight paths whose window
	// overlaps [tStart,tEnd) and whose overall 3D distance to path is at
	// most thresholdM.
	PathsOverlappingInTime(ctx context.Context, tStart, tEnd time.Time, path geo.LineString, thresholdM float64) ([]domain.FlightPath, error)

	// ActiveZones returns all zones active at any instant in [tStart,tEnd).
	ActiveZones(ctx context.Context, tStart, tEnd time.Time) ([]domain.Zone, error)

	// FlightsInWindow returns aircraft/flight-path state within a
	// rectangular geographic window and time range (get_flights).
	FlightsInWindow(ctx context.Context, minLat, minLon, maxLat, maxLon float64, tStart, tEnd time.Time) ([]FlightState, error)

	Stats(ctx context.Context) (Stats, error)
}
