// Package domain holds the entity types shared across the spatial store,
// graph builder, routing engine, intersection engine, and query surface:
// vertiports, waypoints, zones, aircraft, flight paths, and the abstract
// routable node every one of them projects onto.
package domain

import (
	"time"

	"github.com/aerosync/vertiport-routing/geo"
)

// NodeKind discriminates the three routable node variants.
type NodeKind string

const (
	NodeVertiport NodeKind = "vertiport"
	NodeWaypoint  NodeKind = "waypoint"
	NodeAircraft  NodeKind = "aircraft"
)

// LocationSample is one timestamped position report for a node.
type LocationSample struct {
	Point     geo.PointZ
	Timestamp time.Time
}

// Node is the abstract routable point every domain entity projects onto.
// ID is the UUID for vertiports, the label for waypoints, or the callsign
// for aircraft.
type Node struct {
	ID   string
	Kind NodeKind
	// Locations holds the full history of position samples, newest last.
	// The current location is Locations[len-1] whenever it is non-empty;
	// a node with no samples cannot exist per the data model invariants.
	Locations []LocationSample
}

// CurrentLocation returns the most recent sample, or the zero value and
// false if the node has never reported a position.
func (n Node) CurrentLocation() (LocationSample, bool) {
	if len(n.Locations) == 0 {
		return LocationSample{}, false
	}
	return n.Locations[len(n.Locations)-1], true
}

// Vertiport is a ground site: a routable node whose location is the
// centroid of its polygonal footprint, and the owner of exactly one Zone
// (created/destroyed atomically with it).
type Vertiport struct {
	UUID string
	// Label is an optional, mutable display name.
	Label string
	// Footprint is the ground polygon; its centroid is the routing location.
	Footprint geo.Polygon
	// AltitudeM is the height of the vertiport structure, used when
	// deriving the owned zone's altitude envelope.
	AltitudeM float64
	// ZoneLabel is the label of the owned Zone (kind ZoneVertiport).
	ZoneLabel string
}

// Centroid returns the routing location derived from the footprint.
func (v Vertiport) Centroid() geo.Point {
	return geo.Centroid(v.Footprint)
}

// VertiportClearanceMeters is the fixed overhead no-fly clearance added on
// top of the vertiport's altitude to give its owned zone's altitude ceiling.
const VertiportClearanceMeters = 200.0

// Waypoint is a labeled aerial transit point with a fixed 2D location.
type Waypoint struct {
	Label string
	Location geo.Point
	// MinAltitudeM is retained per the data model but is not currently
	// factored into routing cost.
	MinAltitudeM *float64
}

// ZoneKind discriminates general restrictions from vertiport-owned zones.
type ZoneKind string

const (
	ZoneNofly     ZoneKind = "nofly"
	ZoneVertiport ZoneKind = "vertiport"
)

// Zone is a restricted-airspace polygon with an optional altitude envelope
// and an optional activation time window.
type Zone struct {
	Label     string
	Kind      ZoneKind
	Footprint geo.Polygon
	Altitude  geo.AltitudeEnvelope
	// TimeStart/TimeEnd are nil when unbounded on that side. Both nil means
	// the zone is permanent.
	TimeStart *time.Time
	TimeEnd   *time.Time
	// OwnerVertiportUUID is set only for ZoneVertiport zones.
	OwnerVertiportUUID string
}

// ActiveAt reports whether the zone is active at instant t: permanent
// zones are always active; otherwise t must fall within [TimeStart,
// TimeEnd) with either bound absent treated as unbounded.
func (z Zone) ActiveAt(t time.Time) bool {
	if z.TimeStart == nil && z.TimeEnd == nil {
		return true
	}
	if z.TimeStart != nil && t.Before(*z.TimeStart) {
		return false
	}
	if z.TimeEnd != nil && !t.Before(*z.TimeEnd) {
		return false
	}
	return true
}

// ActiveInWindow reports whether the zone is active at any instant in
// [tStart, tEnd): permanent zones are always active; otherwise the zone's
// own window must overlap the query window under strict inequality on
// both ends (a zone ending exactly when the query starts is not active).
func (z Zone) ActiveInWindow(tStart, tEnd time.Time) bool {
	if z.TimeStart == nil && z.TimeEnd == nil {
		return true
	}
	if z.TimeStart != nil && !z.TimeStart.Before(tEnd) {
		return false
	}
	if z.TimeEnd != nil && !z.TimeEnd.After(tStart) {
		return false
	}
	return true
}

// Aircraft is identified by a unique callsign, with an optional UUID, and
// tracks its most recent telemetry sample.
type Aircraft struct {
	Callsign    string
	UUID        *string
	Location    geo.PointZ
	LastUpdated time.Time
}

// FlightPath is a planned, time-bounded 3D polyline for one aircraft.
type FlightPath struct {
	ID string
	// AircraftCallsign is optional: simulated/planned paths may have none.
	AircraftCallsign *string
	Geometry         geo.LineString
	TimeStart        time.Time
	TimeEnd          time.Time
	Simulated        bool
}

// TimeOverlaps reports whether two half-open time windows overlap.
func TimeOverlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
