package memory

import (
	"context"
	"math"
	"time"

	"github.com/aerosync/vertiport-routing/domain"
	"github.com/aerosync/vertiport-routing/geo"
	"github.com/aerosync/vertiport-routing/store"
)

// CandidateNodesAt returns one row per known node: the location sample
// whose |sample_t - t| is minimal, gated by tolerance for aircraft only
// (non-aircraft nodes are always selected regardless of staleness).
func (s *Store) CandidateNodesAt(ctx context.Context, t time.Time, tolerance time.Duration) ([]store.CandidateNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.candidateNodesAtLocked(t, tolerance), nil
}

func (s *Store) candidateNodesAtLocked(t time.Time, tolerance time.Duration) []store.CandidateNode {
	var out []store.CandidateNode
	for nodeID, kind := range s.nodeKind {
		samples := s.locations[nodeID]
		if len(samples) == 0 {
			continue
		}
		best := samples[0]
		bestDiff := absDuration(best.Timestamp.Sub(t))
		for _, samp := range samples[1:] {
			if d := absDuration(samp.Timestamp.Sub(t)); d < bestDiff {
				best, bestDiff = samp, d
			}
		}
		if kind == domain.NodeAircraft && bestDiff >= tolerance {
			continue
		}
		out = append(out, store.CandidateNode{
			NodeID:     nodeID,
			Kind:       kind,
			Location:   best.Point,
			SampleTime: best.Timestamp,
		})
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// ActiveZones returns all zones active at any instant in [tStart,tEnd).
func (s *Store) ActiveZones(ctx context.Context, tStart, tEnd time.Time) ([]domain.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Zone
	for _, z := range s.zones {
		if z.ActiveInWindow(tStart, tEnd) {
			out = append(out, z)
		}
	}
	return out, nil
}

// CandidateEdges forms all ordered pairs (u,v), u != v, where v is not an
// Aircraft, dropping edges that cross a zone active in [tStart,tEnd) unless
// the zone's label is exempted.
func (s *Store) CandidateEdges(ctx context.Context, tStart, tEnd time.Time, tolerance time.Duration, exemptZoneLabels []string) ([]store.Edge, []store.CandidateNode, error) {
	s.mu.RLock()
	nodes := s.candidateNodesAtLocked(tStart, tolerance)
	var activeZones []domain.Zone
	for _, z := range s.zones {
		if z.ActiveInWindow(tStart, tEnd) {
			activeZones = append(activeZones, z)
		}
	}
	s.mu.RUnlock()

	exempt := make(map[string]bool, len(exemptZoneLabels))
	for _, l := range exemptZoneLabels {
		exempt[l] = true
	}

	var edges []store.Edge
	var nextID int64
	for _, u := range nodes {
		for _, v := range nodes {
			if u.NodeID == v.NodeID || v.Kind == domain.NodeAircraft {
				continue
			}
			line := geo.MakeLine(u.Location, v.Location)
			if crossesRestrictedZone(line, activeZones, exempt) {
				continue
			}
			cost := geo.DistanceM(u.Location.Point2D(), v.Location.Point2D())
			nextID++
			edges = append(edges, store.Edge{
				ID:          nextID,
				SourceID:    u.NodeID,
				TargetID:    v.NodeID,
				Cost:        cost,
				ReverseCost: -1,
				SourceX:     u.Location.Lon,
				SourceY:     u.Location.Lat,
				TargetX:     v.Location.Lon,
				TargetY:     v.Location.Lat,
			})
		}
	}
	return edges, nodes, nil
}

func crossesRestrictedZone(line geo.LineString, zones []domain.Zone, exempt map[string]bool) bool {
	for _, z := range zones {
		if exempt[z.Label] {
			continue
		}
		if geo.Intersects3D(line, z.Footprint, z.Altitude) {
			return true
		}
	}
	return false
}

// PathsOverlappingInTime returns scheduled flight paths whose window
// overlaps [tStart,tEnd) and whose overall 3D distance to path is at most
// thresholdM. The time-overlap candidate set is served from the
// flight-path window cache; the spatial filter is always recomputed
// against the live path argument.
func (s *Store) PathsOverlappingInTime(ctx context.Context, tStart, tEnd time.Time, path geo.LineString, thresholdM float64) ([]domain.FlightPath, error) {
	key := windowCacheKey(tStart, tEnd)

	overlapping, ok := s.cache.Get(key)
	if !ok {
		s.mu.RLock()
		overlapping = overlapping[:0]
		for _, fp := range s.flightPaths {
			if domain.TimeOverlaps(tStart, tEnd, fp.TimeStart, fp.TimeEnd) {
				overlapping = append(overlapping, fp)
			}
		}
		s.mu.RUnlock()
		s.cache.Update(key, overlapping)
	}

	var out []domain.FlightPath
	for _, fp := range overlapping {
		if geo.LineDistance3DM(path, fp.Geometry) > thresholdM {
			continue
		}
		out = append(out, fp)
	}
	return out, nil
}

func windowCacheKey(tStart, tEnd time.Time) string {
	return tStart.UTC().Format(time.RFC3339Nano) + "|" + tEnd.UTC().Format(time.RFC3339Nano)
}

// FlightsInWindow returns aircraft and scheduled-flight-path state within a
// rectangular geographic window and time range.
func (s *Store) FlightsInWindow(ctx context.Context, minLat, minLon, maxLat, maxLon float64, tStart, tEnd time.Time) ([]store.FlightState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.FlightState
	for callsign, a := range s.aircraft {
		if !inBounds(a.Location, minLat, minLon, maxLat, maxLon) {
			continue
		}
		if a.LastUpdated.Before(tStart) || !a.LastUpdated.Before(tEnd) {
			continue
		}
		out = append(out, store.FlightState{
			Callsign:  callsign,
			Position:  a.Location,
			Timestamp: a.LastUpdated,
		})
	}
	for _, fp := range s.flightPaths {
		if !domain.TimeOverlaps(tStart, tEnd, fp.TimeStart, fp.TimeEnd) {
			continue
		}
		if len(fp.Geometry.Points) == 0 {
			continue
		}
		anyInBounds := false
		for _, p := range fp.Geometry.Points {
			if inBounds(p, minLat, minLon, maxLat, maxLon) {
				anyInBounds = true
				break
			}
		}
		if !anyInBounds {
			continue
		}
		callsign := ""
		if fp.AircraftCallsign != nil {
			callsign = *fp.AircraftCallsign
		}
		id := fp.ID
		out = append(out, store.FlightState{
			Callsign:     callsign,
			Position:     fp.Geometry.StartPoint(),
			Timestamp:    fp.TimeStart,
			FlightPathID: &id,
		})
	}
	return out, nil
}

func inBounds(p geo.PointZ, minLat, minLon, maxLat, maxLon float64) bool {
	return p.Lat >= math.Min(minLat, maxLat) && p.Lat <= math.Max(minLat, maxLat) &&
		p.Lon >= math.Min(minLon, maxLon) && p.Lon <= math.Max(minLon, maxLon)
}
