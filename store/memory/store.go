// Package memory implements the in-process reference SpatialStore: a
// single coarse sync.RWMutex over plain Go maps, grounded in the teacher's
// sim/state.go and kb/kb.go mutex-over-maps pattern. It is the default
// backend; store/postgres is an optional alternative satisfying the same
// contract.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aerosync/vertiport-routing/domain"
	"github.com/aerosync/vertiport-routing/engineerr"
	"github.com/aerosync/vertiport-routing/geo"
	"github.com/aerosync/vertiport-routing/store"
)

// MetricsRecorder lets the store push fleet-composition gauges after each
// mutation, mirroring the teacher's ScenarioMetricsRecorder option.
type MetricsRecorder interface {
	SetFleetCounts(vertiports, waypoints, zones, aircraft int)
}

// Store is the in-memory reference SpatialStore implementation.
type Store struct {
	mu sync.RWMutex

	vertiports  map[string]domain.Vertiport
	waypoints   map[string]domain.Waypoint
	zones       map[string]domain.Zone
	aircraft    map[string]domain.Aircraft
	flightPaths map[string]domain.FlightPath

	// locations and nodeKind track the generic Node abstraction (history
	// of samples) keyed by node id: vertiport UUID, waypoint label, or
	// aircraft callsign.
	locations map[string][]domain.LocationSample
	nodeKind  map[string]domain.NodeKind

	metrics MetricsRecorder
	cache   *FlightWindowCache
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithMetricsRecorder wires fleet-composition gauges into the store.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Store) { s.metrics = m }
}

// New constructs an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		vertiports:  make(map[string]domain.Vertiport),
		waypoints:   make(map[string]domain.Waypoint),
		zones:       make(map[string]domain.Zone),
		aircraft:    make(map[string]domain.Aircraft),
		flightPaths: make(map[string]domain.FlightPath),
		locations:   make(map[string][]domain.LocationSample),
		nodeKind:    make(map[string]domain.NodeKind),
		cache:       NewFlightWindowCache(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ store.SpatialStore = (*Store)(nil)

func (s *Store) updateMetricsLocked() {
	if s.metrics == nil {
		return
	}
	s.metrics.SetFleetCounts(len(s.vertiports), len(s.waypoints), len(s.zones), len(s.aircraft))
}

// UpsertVertiport creates or updates a vertiport and its owned zone
// atomically, recomputing the centroid location sample at "now".
func (s *Store) UpsertVertiport(ctx context.Context, v domain.Vertiport) error {
	if _, err := geo.ValidatePolygon(v.Footprint.Vertices); err != nil {
		return err
	}
	if v.ZoneLabel == "" {
		v.ZoneLabel = fmt.Sprintf("vertiport-zone-%s", v.UUID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	centroid := v.Centroid()
	s.vertiports[v.UUID] = v
	s.nodeKind[v.UUID] = domain.NodeVertiport
	s.locations[v.UUID] = append(s.locations[v.UUID], domain.LocationSample{
		Point:     geo.PointZ{Lat: centroid.Lat, Lon: centroid.Lon, AltM: v.AltitudeM},
		Timestamp: now,
	})

	s.zones[v.ZoneLabel] = domain.Zone{
		Label:              v.ZoneLabel,
		Kind:               domain.ZoneVertiport,
		Footprint:          v.Footprint,
		Altitude:           geo.AltitudeEnvelope{MinM: 0, MaxM: v.AltitudeM + domain.VertiportClearanceMeters},
		OwnerVertiportUUID: v.UUID,
	}

	s.updateMetricsLocked()
	return nil
}

// UpsertWaypoint creates or updates a waypoint, appending a new location
// sample on update.
func (s *Store) UpsertWaypoint(ctx context.Context, w domain.Waypoint) error {
	if err := geo.ValidatePoint(w.Location); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.waypoints[w.Label] = w
	s.nodeKind[w.Label] = domain.NodeWaypoint
	s.locations[w.Label] = append(s.locations[w.Label], domain.LocationSample{
		Point:     geo.PointZ{Lat: w.Location.Lat, Lon: w.Location.Lon},
		Timestamp: time.Now().UTC(),
	})

	s.updateMetricsLocked()
	return nil
}

// UpsertZone upserts a zone by label. A zone with no Kind is stored as
// ZoneNofly; any Kind the caller sets, ZoneVertiport included, is stored as
// given.
func (s *Store) UpsertZone(ctx context.Context, z domain.Zone) error {
	if _, err := geo.ValidatePolygon(z.Footprint.Vertices); err != nil {
		return err
	}
	if z.TimeStart != nil && z.TimeEnd != nil && z.TimeEnd.Before(*z.TimeStart) {
		return fmt.Errorf("%w: zone time_end before time_start", engineerr.ErrBadGeometry)
	}
	if z.Kind == "" {
		z.Kind = domain.ZoneNofly
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones[z.Label] = z
	s.updateMetricsLocked()
	return nil
}

// UpsertAircraft applies a telemetry sample monotonically by t_sample.
func (s *Store) UpsertAircraft(ctx context.Context, callsign string, uuid *string, point geo.PointZ, altM float64, tSample time.Time) (bool, error) {
	if callsign == "" {
		return false, fmt.Errorf("%w: missing callsign", engineerr.ErrBadTelemetry)
	}
	if err := geo.ValidatePointZ(point); err != nil {
		return false, fmt.Errorf("%w: %v", engineerr.ErrBadTelemetry, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.aircraft[callsign]
	if ok && !tSample.After(existing.LastUpdated) {
		return false, nil
	}

	s.aircraft[callsign] = domain.Aircraft{
		Callsign:    callsign,
		UUID:        uuid,
		Location:    point,
		LastUpdated: tSample,
	}
	s.nodeKind[callsign] = domain.NodeAircraft

	samples := s.locations[callsign]
	kept := samples[:0]
	for _, samp := range samples {
		if samp.Timestamp.Before(tSample) {
			kept = append(kept, samp)
		}
	}
	kept = append(kept, domain.LocationSample{Point: point, Timestamp: tSample})
	s.locations[callsign] = kept

	s.updateMetricsLocked()
	return true, nil
}

// UpsertFlightPath is idempotent by id.
func (s *Store) UpsertFlightPath(ctx context.Context, fp domain.FlightPath) error {
	if len(fp.Geometry.Points) == 0 {
		return fmt.Errorf("%w: empty flight path geometry", engineerr.ErrBadGeometry)
	}
	for _, p := range fp.Geometry.Points {
		if err := geo.ValidatePointZ(p); err != nil {
			return err
		}
	}
	if fp.TimeEnd.Before(fp.TimeStart) {
		return fmt.Errorf("%w: flight path time_end before time_start", engineerr.ErrBadGeometry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.flightPaths[fp.ID] = fp
	s.cache.InvalidateAll()
	return nil
}

func (s *Store) DeleteVertiport(ctx context.Context, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vertiports[uuid]
	if !ok {
		return fmt.Errorf("%w: vertiport %q", engineerr.ErrUnknownEndpoint, uuid)
	}
	delete(s.vertiports, uuid)
	delete(s.nodeKind, uuid)
	delete(s.locations, uuid)
	if v.ZoneLabel != "" {
		delete(s.zones, v.ZoneLabel)
	}
	s.updateMetricsLocked()
	return nil
}

func (s *Store) DeleteWaypoint(ctx context.Context, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.waypoints[label]; !ok {
		return fmt.Errorf("%w: waypoint %q", engineerr.ErrUnknownEndpoint, label)
	}
	delete(s.waypoints, label)
	delete(s.nodeKind, label)
	delete(s.locations, label)
	s.updateMetricsLocked()
	return nil
}

func (s *Store) DeleteZone(ctx context.Context, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.zones[label]; !ok {
		return fmt.Errorf("%w: zone %q", engineerr.ErrUnknownEndpoint, label)
	}
	delete(s.zones, label)
	s.updateMetricsLocked()
	return nil
}

func (s *Store) DeleteAircraft(ctx context.Context, callsign string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.aircraft[callsign]; !ok {
		return fmt.Errorf("%w: aircraft %q", engineerr.ErrUnknownEndpoint, callsign)
	}
	delete(s.aircraft, callsign)
	delete(s.nodeKind, callsign)
	delete(s.locations, callsign)
	s.updateMetricsLocked()
	return nil
}

func (s *Store) DeleteFlightPath(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flightPaths[id]; !ok {
		return fmt.Errorf("%w: flight path %q", engineerr.ErrUnknownEndpoint, id)
	}
	delete(s.flightPaths, id)
	s.cache.InvalidateAll()
	return nil
}

func (s *Store) GetVertiport(ctx context.Context, uuid string) (domain.Vertiport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vertiports[uuid]
	if !ok {
		return domain.Vertiport{}, fmt.Errorf("%w: vertiport %q", engineerr.ErrUnknownEndpoint, uuid)
	}
	return v, nil
}

func (s *Store) GetWaypoint(ctx context.Context, label string) (domain.Waypoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.waypoints[label]
	if !ok {
		return domain.Waypoint{}, fmt.Errorf("%w: waypoint %q", engineerr.ErrUnknownEndpoint, label)
	}
	return w, nil
}

func (s *Store) GetZone(ctx context.Context, label string) (domain.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	z, ok := s.zones[label]
	if !ok {
		return domain.Zone{}, fmt.Errorf("%w: zone %q", engineerr.ErrUnknownEndpoint, label)
	}
	return z, nil
}

func (s *Store) GetAircraft(ctx context.Context, callsign string) (domain.Aircraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.aircraft[callsign]
	if !ok {
		return domain.Aircraft{}, fmt.Errorf("%w: aircraft %q", engineerr.ErrUnknownEndpoint, callsign)
	}
	return a, nil
}

func (s *Store) GetFlightPath(ctx context.Context, id string) (domain.FlightPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fp, ok := s.flightPaths[id]
	if !ok {
		return domain.FlightPath{}, fmt.Errorf("%w: flight path %q", engineerr.ErrUnknownEndpoint, id)
	}
	return fp, nil
}

func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.Stats{
		Vertiports: len(s.vertiports),
		Waypoints:  len(s.waypoints),
		Zones:      len(s.zones),
		Aircraft:   len(s.aircraft),
	}, nil
}
