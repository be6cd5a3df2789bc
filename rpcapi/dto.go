// Package rpcapi is the external interface layer (§6): wire DTOs shaped
// per the spec's fingerprint, a REST transport (gin, grounded in
// Mikey-gotcode-ma3tracker's internal/controllers/route_controller.go),
// and a gRPC transport (grounded in the teacher's internal/nbi service
// pattern: one interceptor-wrapped grpc.Server, errors mapped at the
// boundary via engineerr.ToStatusError).
package rpcapi

import (
	"time"

	"github.com/aerosync/vertiport-routing/domain"
	"github.com/aerosync/vertiport-routing/engine"
	"github.com/aerosync/vertiport-routing/geo"
	"github.com/aerosync/vertiport-routing/ingest"
)

// Coordinates is the wire shape of a 2D point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PointZWire is the wire shape of a 3D point.
type PointZWire struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	AltM  float64 `json:"alt_m"`
}

// VertiportWire mirrors the spec's Vertiport wire message.
type VertiportWire struct {
	UUID     string        `json:"uuid"`
	Vertices []Coordinates `json:"vertices"`
	AltM     float64       `json:"alt_m"`
	Label    string        `json:"label,omitempty"`
}

// WaypointWire mirrors the spec's Waypoint wire message.
type WaypointWire struct {
	ID       string      `json:"id"`
	Location Coordinates `json:"location"`
}

// ZoneWire mirrors the spec's Zone wire message.
type ZoneWire struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"` // "PORT" or "RESTRICTION"
	Vertices []Coordinates `json:"vertices"`
	AltMin   *float64      `json:"alt_min,omitempty"`
	AltMax   *float64      `json:"alt_max,omitempty"`
	TStart   *time.Time    `json:"t_start,omitempty"`
	TEnd     *time.Time    `json:"t_end,omitempty"`
}

// AircraftPositionWire mirrors one telemetry report.
type AircraftPositionWire struct {
	Callsign string     `json:"callsign"`
	UUID     *string    `json:"uuid,omitempty"`
	Position PointZWire `json:"position"`
	AltM     float64    `json:"alt_m"`
	TSample  time.Time  `json:"t_sample"`
}

// FlightPathWire mirrors the spec's flight path record.
type FlightPathWire struct {
	ID        string       `json:"id"`
	Aircraft  *string      `json:"aircraft,omitempty"`
	Points    []PointZWire `json:"points"`
	TStart    time.Time    `json:"t_start"`
	TEnd      time.Time    `json:"t_end"`
	Simulated bool         `json:"simulated"`
}

// BestPathRequestWire mirrors the spec's BestPathRequest wire message.
type BestPathRequestWire struct {
	OriginID   string     `json:"origin_id"`
	TargetID   string     `json:"target_id"`
	OriginType string     `json:"origin_type"`
	TargetType string     `json:"target_type"`
	TStart     *time.Time `json:"t_start,omitempty"`
	TEnd       *time.Time `json:"t_end,omitempty"`
	Limit      int        `json:"limit,omitempty"`
}

// PathNodeWire is one leg endpoint of a best_path response.
type PathNodeWire struct {
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// PathLegWire is one leg of a best_path response.
type PathLegWire struct {
	Seq       int          `json:"seq"`
	Start     PathNodeWire `json:"start"`
	End       PathNodeWire `json:"end"`
	DistanceM float64      `json:"distance_m"`
}

// BestPathResponseWire mirrors the spec's BestPathResponse wire message.
type BestPathResponseWire struct {
	Legs []PathLegWire `json:"legs"`
}

// CheckIntersectionRequestWire mirrors the spec's CheckIntersectionRequest.
type CheckIntersectionRequestWire struct {
	OriginID string       `json:"origin_id"`
	TargetID string       `json:"target_id"`
	Path     []PointZWire `json:"path"`
	TStart   time.Time    `json:"t_start"`
	TEnd     time.Time    `json:"t_end"`
}

// GetFlightsRequestWire mirrors the spec's GetFlightsRequest.
type GetFlightsRequestWire struct {
	MinX   float64   `json:"minx"`
	MinY   float64   `json:"miny"`
	MaxX   float64   `json:"maxx"`
	MaxY   float64   `json:"maxy"`
	TStart time.Time `json:"t_start"`
	TEnd   time.Time `json:"t_end"`
}

// FlightWire is one row of a get_flights response.
type FlightWire struct {
	Callsign     string     `json:"callsign"`
	Lat          float64    `json:"lat"`
	Lon          float64    `json:"lon"`
	AltM         float64    `json:"alt_m"`
	Timestamp    time.Time  `json:"timestamp"`
	FlightPathID *string    `json:"flight_path_id,omitempty"`
}

func toVertiportUpdates(ws []VertiportWire) []ingest.VertiportUpdate {
	out := make([]ingest.VertiportUpdate, len(ws))
	for i, w := range ws {
		out[i] = toVertiportUpdate(w)
	}
	return out
}

func toWaypointUpdates(ws []WaypointWire) []ingest.WaypointUpdate {
	out := make([]ingest.WaypointUpdate, len(ws))
	for i, w := range ws {
		out[i] = toWaypointUpdate(w)
	}
	return out
}

func toZoneUpdates(zs []ZoneWire) []ingest.ZoneUpdate {
	out := make([]ingest.ZoneUpdate, len(zs))
	for i, z := range zs {
		out[i] = toZoneUpdate(z)
	}
	return out
}

func toVertiportUpdate(w VertiportWire) ingest.VertiportUpdate {
	verts := make([]geo.Point, len(w.Vertices))
	for i, v := range w.Vertices {
		verts[i] = geo.Point{Lat: v.Lat, Lon: v.Lon}
	}
	return ingest.VertiportUpdate{UUID: w.UUID, Label: w.Label, Footprint: verts, AltitudeM: w.AltM}
}

func toWaypointUpdate(w WaypointWire) ingest.WaypointUpdate {
	return ingest.WaypointUpdate{Label: w.ID, Location: geo.Point{Lat: w.Location.Lat, Lon: w.Location.Lon}}
}

func toZoneUpdate(z ZoneWire) ingest.ZoneUpdate {
	verts := make([]geo.Point, len(z.Vertices))
	for i, v := range z.Vertices {
		verts[i] = geo.Point{Lat: v.Lat, Lon: v.Lon}
	}
	env := geo.AltitudeEnvelope{Unbounded: z.AltMin == nil && z.AltMax == nil}
	if z.AltMin != nil {
		env.MinM = *z.AltMin
	}
	if z.AltMax != nil {
		env.MaxM = *z.AltMax
	}
	kind := domain.ZoneNofly
	if z.Type == "PORT" {
		kind = domain.ZoneVertiport
	}
	return ingest.ZoneUpdate{Label: z.ID, Kind: kind, Footprint: verts, Altitude: env, TimeStart: z.TStart, TimeEnd: z.TEnd}
}

func toAircraftPositionUpdate(a AircraftPositionWire) ingest.AircraftPositionUpdate {
	return ingest.AircraftPositionUpdate{
		Callsign:  a.Callsign,
		UUID:      a.UUID,
		Point:     geo.PointZ{Lat: a.Position.Lat, Lon: a.Position.Lon, AltM: a.AltM},
		AltitudeM: a.AltM,
		Timestamp: a.TSample,
	}
}

func toFlightPathUpdate(f FlightPathWire) ingest.FlightPathUpdate {
	pts := make([]geo.PointZ, len(f.Points))
	for i, p := range f.Points {
		pts[i] = geo.PointZ{Lat: p.Lat, Lon: p.Lon, AltM: p.AltM}
	}
	return ingest.FlightPathUpdate{ID: f.ID, AircraftCallsign: f.Aircraft, Points: pts, TimeStart: f.TStart, TimeEnd: f.TEnd, Simulated: f.Simulated}
}

func parseNodeKind(s string) domain.NodeKind {
	switch s {
	case "VERTIPORT":
		return domain.NodeVertiport
	case "WAYPOINT":
		return domain.NodeWaypoint
	case "AIRCRAFT":
		return domain.NodeAircraft
	default:
		return domain.NodeKind(s)
	}
}

func toBestPathRequest(w BestPathRequestWire) engine.BestPathRequest {
	return engine.BestPathRequest{
		OriginID:   w.OriginID,
		TargetID:   w.TargetID,
		OriginType: parseNodeKind(w.OriginType),
		TargetType: parseNodeKind(w.TargetType),
		TimeStart:  w.TStart,
		TimeEnd:    w.TEnd,
		Limit:      w.Limit,
	}
}

func toPathLegWire(l engine.PathLeg) PathLegWire {
	return PathLegWire{
		Seq:       l.Seq,
		Start:     PathNodeWire{Type: string(l.StartType), Lat: l.StartLat, Lon: l.StartLon},
		End:       PathNodeWire{Type: string(l.EndType), Lat: l.EndLat, Lon: l.EndLon},
		DistanceM: l.DistanceM,
	}
}

func toIntersectionRequest(w CheckIntersectionRequestWire) engine.CheckIntersectionRequest {
	pts := make([]geo.PointZ, len(w.Path))
	for i, p := range w.Path {
		pts[i] = geo.PointZ{Lat: p.Lat, Lon: p.Lon, AltM: p.AltM}
	}
	return engine.CheckIntersectionRequest{
		Path:      geo.LineString{Points: pts},
		TimeStart: w.TStart,
		TimeEnd:   w.TEnd,
	}
}

func toGetFlightsRequest(w GetFlightsRequestWire) engine.GetFlightsRequest {
	return engine.GetFlightsRequest{
		MinLat: w.MinY, MinLon: w.MinX, MaxLat: w.MaxY, MaxLon: w.MaxX,
		TimeStart: w.TStart, TimeEnd: w.TEnd,
	}
}
