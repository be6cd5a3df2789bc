// Package engine implements the query surface (C7): it routes requests to
// ingest (C3), the graph builder and A* engine (C4/C5, both living in the
// store backend), and the intersection checker (C6); validates inputs; and
// shapes responses. Grounded in the teacher's service-layer shape (a single
// struct wrapping its collaborators, one method per RPC, errors mapped at
// the transport boundary rather than here).
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aerosync/vertiport-routing/domain"
	"github.com/aerosync/vertiport-routing/engineerr"
	"github.com/aerosync/vertiport-routing/geo"
	"github.com/aerosync/vertiport-routing/ingest"
	"github.com/aerosync/vertiport-routing/intersection"
	"github.com/aerosync/vertiport-routing/store"
)

// RoutingMetricsRecorder lets the engine push per-operation latency and
// conflict counters without depending on a concrete Prometheus type;
// observability.RoutingCollector satisfies this.
type RoutingMetricsRecorder interface {
	ObservePathComputation(d time.Duration)
	IncConflictsRejected()
}

// WaypointRangeMetersDefault is the graph-shrinking prefilter radius
// (best_path.rs's WAYPOINT_RANGE_METERS), used as a hint, not a
// correctness gate.
const WaypointRangeMetersDefault = 1000.0

// DefaultRoutingTolerance is the candidate-node staleness tolerance applied
// to aircraft nodes when building the routing graph.
const DefaultRoutingTolerance = time.Hour

// Engine wires C3/C4-C5 (via Store)/C6 together behind the nine query-
// surface operations.
type Engine struct {
	Store        store.SpatialStore
	Ingest       *ingest.Ingestor
	Intersection *intersection.Checker
	Metrics      RoutingMetricsRecorder
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithMetrics wires a routing-specific metrics recorder into the engine.
func WithMetrics(m RoutingMetricsRecorder) Option {
	return func(e *Engine) { e.Metrics = m }
}

// New wires an Engine over a single SpatialStore backend.
func New(s store.SpatialStore, opts ...Option) *Engine {
	e := &Engine{
		Store:        s,
		Ingest:       ingest.New(s),
		Intersection: intersection.New(s),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) recordPathComputation(d time.Duration) {
	if e.Metrics != nil {
		e.Metrics.ObservePathComputation(d)
	}
}

func (e *Engine) recordConflictRejected() {
	if e.Metrics != nil {
		e.Metrics.IncConflictsRejected()
	}
}

// IsReady reports liveness; it never returns an error (is_ready has no
// error column per spec §4.7).
func (e *Engine) IsReady(ctx context.Context) bool {
	_, err := e.Store.Stats(ctx)
	return err == nil
}

func (e *Engine) UpdateVertiports(ctx context.Context, updates []ingest.VertiportUpdate) error {
	return e.Ingest.UpdateVertiports(ctx, updates)
}

func (e *Engine) UpdateWaypoints(ctx context.Context, updates []ingest.WaypointUpdate) error {
	return e.Ingest.UpdateWaypoints(ctx, updates)
}

func (e *Engine) UpdateZones(ctx context.Context, updates []ingest.ZoneUpdate) error {
	return e.Ingest.UpdateZones(ctx, updates)
}

func (e *Engine) UpdateFlightPath(ctx context.Context, u ingest.FlightPathUpdate) error {
	return e.Ingest.UpdateFlightPath(ctx, u)
}

// UpdateAircraftPosition returns applied=false (not an error) on a stale
// telemetry sample, per the Conflict taxonomy entry.
func (e *Engine) UpdateAircraftPosition(ctx context.Context, u ingest.AircraftPositionUpdate) (applied bool, err error) {
	return e.Ingest.UpdateAircraftPosition(ctx, u)
}

// BestPathRequest mirrors the wire DTO of §6, pre-decoding.
type BestPathRequest struct {
	OriginID       string
	TargetID       string
	OriginType     domain.NodeKind
	TargetType     domain.NodeKind
	TimeStart      *time.Time
	TimeEnd        *time.Time
	Limit          int
}

// PathLeg is one ordered leg of a best_path response.
type PathLeg struct {
	Seq       int
	StartType domain.NodeKind
	StartLat  float64
	StartLon  float64
	EndType   domain.NodeKind
	EndLat    float64
	EndLon    float64
	DistanceM float64
}

// BestPath resolves a shortest admissible route. An empty, nil-error result
// means no path was found; this is not an error per spec §4.5/§7.
func (e *Engine) BestPath(ctx context.Context, req BestPathRequest) ([]PathLeg, error) {
	tStart, tEnd, err := resolveWindow(req.TimeStart, req.TimeEnd)
	if err != nil {
		return nil, err
	}

	exempt, err := e.resolveExemptZones(ctx, req.OriginID, req.TargetID)
	if err != nil {
		return nil, err
	}

	edges, nodes, err := e.Store.CandidateEdges(ctx, tStart, tEnd, DefaultRoutingTolerance, exempt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engineerr.ErrStoreUnavailable, err)
	}
	if !nodeIDPresent(nodes, req.OriginID) {
		return nil, fmt.Errorf("%w: origin %q", engineerr.ErrUnknownEndpoint, req.OriginID)
	}
	if !nodeIDPresent(nodes, req.TargetID) {
		return nil, fmt.Errorf("%w: target %q", engineerr.ErrUnknownEndpoint, req.TargetID)
	}

	routeEdges := edges
	shrunk := false
	if origin, target, ok := endpointLocations(nodes, req.OriginID, req.TargetID); ok {
		if shrunkEdges := filterWaypointsNearLine(nodes, edges, origin, target, WaypointRangeMetersDefault); len(shrunkEdges) > 0 && len(shrunkEdges) < len(edges) {
			routeEdges = shrunkEdges
			shrunk = true
		}
	}

	astarStart := time.Now()
	steps, err := e.Store.AStar(ctx, routeEdges, req.OriginID, req.TargetID)
	e.recordPathComputation(time.Since(astarStart))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engineerr.ErrStoreUnavailable, err)
	}
	if len(steps) == 0 && shrunk {
		// the shrunk graph found nothing; WAYPOINT_RANGE_METERS is a hint,
		// not a correctness gate, so retry unconstrained before giving up.
		astarStart = time.Now()
		steps, err = e.Store.AStar(ctx, edges, req.OriginID, req.TargetID)
		e.recordPathComputation(time.Since(astarStart))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", engineerr.ErrStoreUnavailable, err)
		}
	}
	if len(steps) == 0 {
		return nil, nil // no path found; not an error
	}

	byID := make(map[int64]store.Edge, len(edges))
	for _, ed := range edges {
		byID[ed.ID] = ed
	}
	nodeKind := make(map[string]domain.NodeKind, len(nodes))
	for _, n := range nodes {
		nodeKind[n.NodeID] = n.Kind
	}

	limit := req.Limit
	if limit <= 0 || limit > len(steps) {
		limit = len(steps)
	}
	legs := make([]PathLeg, 0, limit)
	for i, st := range steps[:limit] {
		ed, ok := byID[st.EdgeID]
		if !ok {
			continue
		}
		legs = append(legs, PathLeg{
			Seq:       i,
			StartType: nodeKind[ed.SourceID],
			StartLat:  ed.SourceY,
			StartLon:  ed.SourceX,
			EndType:   nodeKind[ed.TargetID],
			EndLat:    ed.TargetY,
			EndLon:    ed.TargetX,
			DistanceM: st.Cost,
		})
	}
	return legs, nil
}

// resolveExemptZones exempts the origin/target's owned vertiport zone, so
// departure/arrival edges are not dropped by their own restricted airspace.
func (e *Engine) resolveExemptZones(ctx context.Context, originID, targetID string) ([]string, error) {
	var exempt []string
	for _, id := range []string{originID, targetID} {
		v, err := e.Store.GetVertiport(ctx, id)
		if err != nil {
			continue // not a vertiport id; nothing to exempt
		}
		if v.ZoneLabel != "" {
			exempt = append(exempt, v.ZoneLabel)
		}
	}
	return exempt, nil
}

// endpointLocations resolves the 2D positions of the origin and target node
// ids within the candidate node set.
func endpointLocations(nodes []store.CandidateNode, originID, targetID string) (origin, target geo.Point, ok bool) {
	var foundOrigin, foundTarget bool
	for _, n := range nodes {
		if n.NodeID == originID {
			origin = n.Location.Point2D()
			foundOrigin = true
		}
		if n.NodeID == targetID {
			target = n.Location.Point2D()
			foundTarget = true
		}
	}
	return origin, target, foundOrigin && foundTarget
}

// filterWaypointsNearLine implements the WAYPOINT_RANGE_METERS
// graph-shrinking optimization: waypoint nodes farther than rangeM from the
// straight line between origin and target are dropped, along with any edge
// that touches them. Vertiport and aircraft nodes are never dropped.
func filterWaypointsNearLine(nodes []store.CandidateNode, edges []store.Edge, origin, target geo.Point, rangeM float64) []store.Edge {
	keep := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.Kind != domain.NodeWaypoint {
			keep[n.NodeID] = true
			continue
		}
		keep[n.NodeID] = distanceToSegmentM(n.Location.Point2D(), origin, target) <= rangeM
	}

	filtered := make([]store.Edge, 0, len(edges))
	for _, e := range edges {
		if keep[e.SourceID] && keep[e.TargetID] {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// distanceToSegmentM returns the distance in meters from p to the closest
// point on segment a-b, via an equirectangular projection local to a. This
// is a prefilter hint, not a precise geodesic computation.
func distanceToSegmentM(p, a, b geo.Point) float64 {
	lat0 := a.Lat * math.Pi / 180
	toXY := func(q geo.Point) (float64, float64) {
		x := (q.Lon - a.Lon) * math.Pi / 180 * math.Cos(lat0) * geo.EarthRadiusM
		y := (q.Lat - a.Lat) * math.Pi / 180 * geo.EarthRadiusM
		return x, y
	}
	bx, by := toXY(b)
	px, py := toXY(p)

	lenSq := bx*bx + by*by
	if lenSq == 0 {
		return math.Hypot(px, py)
	}
	t := (px*bx + py*by) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx, cy := t*bx, t*by
	return math.Hypot(px-cx, py-cy)
}

func nodeIDPresent(nodes []store.CandidateNode, id string) bool {
	for _, n := range nodes {
		if n.NodeID == id {
			return true
		}
	}
	return false
}

// resolveWindow applies the best_path time-window defaulting rule: missing
// t_start defaults to now, missing t_end defaults to t_start+24h; an
// inverted or wholly-past window is rejected.
func resolveWindow(tStart, tEnd *time.Time) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := now
	if tStart != nil {
		start = *tStart
	}
	end := start.Add(24 * time.Hour)
	if tEnd != nil {
		end = *tEnd
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: t_end before t_start", engineerr.ErrBadGeometry)
	}
	if end.Before(now) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: cannot route entirely into the past", engineerr.ErrBadGeometry)
	}
	return start, end, nil
}

// CheckIntersectionRequest mirrors the wire DTO of §6.
type CheckIntersectionRequest struct {
	Path      geo.LineString
	TimeStart time.Time
	TimeEnd   time.Time
}

// CheckIntersection evaluates check_intersection; it only fails for
// malformed input, never for "no conflict found".
func (e *Engine) CheckIntersection(ctx context.Context, req CheckIntersectionRequest) (bool, error) {
	if len(req.Path.Points) == 0 {
		return false, fmt.Errorf("%w: empty path", engineerr.ErrBadGeometry)
	}
	for _, p := range req.Path.Points {
		if err := geo.ValidatePointZ(p); err != nil {
			return false, err
		}
	}
	if req.TimeEnd.Before(req.TimeStart) {
		return false, fmt.Errorf("%w: t_end before t_start", engineerr.ErrBadGeometry)
	}
	intersects, err := e.Intersection.Check(ctx, req.Path, req.TimeStart, req.TimeEnd)
	if err == nil && intersects {
		e.recordConflictRejected()
	}
	return intersects, err
}

// GetFlightsRequest mirrors the wire DTO of §6.
type GetFlightsRequest struct {
	MinLat, MinLon, MaxLat, MaxLon float64
	TimeStart, TimeEnd             time.Time
}

// GetFlights answers a fleet/flight-state query; never fails for an empty
// result.
func (e *Engine) GetFlights(ctx context.Context, req GetFlightsRequest) ([]store.FlightState, error) {
	states, err := e.Store.FlightsInWindow(ctx, req.MinLat, req.MinLon, req.MaxLat, req.MaxLon, req.TimeStart, req.TimeEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engineerr.ErrStoreUnavailable, err)
	}
	return states, nil
}
