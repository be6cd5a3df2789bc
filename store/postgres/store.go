package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aerosync/vertiport-routing/domain"
	"github.com/aerosync/vertiport-routing/engineerr"
	"github.com/aerosync/vertiport-routing/geo"
	"github.com/aerosync/vertiport-routing/store"
	"github.com/aerosync/vertiport-routing/store/memory"
)

// Store is the PostGIS-flavored SpatialStore adapter: GORM persists every
// mutation as the system of record, while an in-process memory.Store is
// kept in lockstep as a read-through snapshot so CandidateEdges/AStar/
// PathsOverlappingInTime run without a round trip per query, mirroring the
// backend-abstraction note in spec.md §9.
type Store struct {
	db       *gorm.DB
	snapshot *memory.Store
}

// New wraps an already-migrated *gorm.DB and hydrates the in-process
// snapshot from its current contents.
func New(ctx context.Context, db *gorm.DB, opts ...memory.Option) (*Store, error) {
	s := &Store{db: db, snapshot: memory.New(opts...)}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

var _ store.SpatialStore = (*Store)(nil)

// reload repopulates the in-process snapshot from the durable tables. Called
// once at startup; individual mutations keep the snapshot in lockstep
// without a full reload.
func (s *Store) reload(ctx context.Context) error {
	var vertiports []VertiportRecord
	if err := s.db.WithContext(ctx).Find(&vertiports).Error; err != nil {
		return fmt.Errorf("load vertiports: %w", err)
	}
	for _, rec := range vertiports {
		v, err := vertiportFromRecord(rec)
		if err != nil {
			return err
		}
		if err := s.snapshot.UpsertVertiport(ctx, v); err != nil {
			return err
		}
	}

	var waypoints []WaypointRecord
	if err := s.db.WithContext(ctx).Find(&waypoints).Error; err != nil {
		return fmt.Errorf("load waypoints: %w", err)
	}
	for _, rec := range waypoints {
		w, err := waypointFromRecord(rec)
		if err != nil {
			return err
		}
		if err := s.snapshot.UpsertWaypoint(ctx, w); err != nil {
			return err
		}
	}

	var zones []ZoneRecord
	if err := s.db.WithContext(ctx).Find(&zones).Error; err != nil {
		return fmt.Errorf("load zones: %w", err)
	}
	for _, rec := range zones {
		z, err := zoneFromRecord(rec)
		if err != nil {
			return err
		}
		if z.Kind == domain.ZoneVertiport {
			continue // owned zones are recreated by UpsertVertiport above
		}
		if err := s.snapshot.UpsertZone(ctx, z); err != nil {
			return err
		}
	}

	var aircraft []AircraftRecord
	if err := s.db.WithContext(ctx).Find(&aircraft).Error; err != nil {
		return fmt.Errorf("load aircraft: %w", err)
	}
	for _, rec := range aircraft {
		var loc NodeLocationRecord
		if err := s.db.WithContext(ctx).Where("node = ?", rec.Callsign).Order("ts desc").First(&loc).Error; err != nil {
			continue
		}
		p, err := decodePointZ(loc.GeomWKB)
		if err != nil {
			return err
		}
		if _, err := s.snapshot.UpsertAircraft(ctx, rec.Callsign, rec.UUID, p, p.AltM, rec.LastUpdated); err != nil {
			return err
		}
	}

	var flightPaths []FlightPathRecord
	if err := s.db.WithContext(ctx).Find(&flightPaths).Error; err != nil {
		return fmt.Errorf("load flight paths: %w", err)
	}
	for _, rec := range flightPaths {
		fp, err := flightPathFromRecord(rec)
		if err != nil {
			return err
		}
		if err := s.snapshot.UpsertFlightPath(ctx, fp); err != nil {
			return err
		}
	}
	return nil
}

func vertiportFromRecord(rec VertiportRecord) (domain.Vertiport, error) {
	poly, err := decodePolygon(rec.FootprintWKB)
	if err != nil {
		return domain.Vertiport{}, err
	}
	return domain.Vertiport{UUID: rec.UUID, Label: rec.Label, Footprint: poly, AltitudeM: rec.AltitudeM, ZoneLabel: rec.ZoneLabel}, nil
}

func waypointFromRecord(rec WaypointRecord) (domain.Waypoint, error) {
	p, err := decodePoint2D(rec.PointWKB)
	if err != nil {
		return domain.Waypoint{}, err
	}
	return domain.Waypoint{Label: rec.Label, Location: p, MinAltitudeM: rec.MinAltitudeM}, nil
}

func zoneFromRecord(rec ZoneRecord) (domain.Zone, error) {
	poly, err := decodePolygon(rec.FootprintWKB)
	if err != nil {
		return domain.Zone{}, err
	}
	return domain.Zone{
		Label:     rec.Label,
		Kind:      domain.ZoneKind(rec.Kind),
		Footprint: poly,
		Altitude: geo.AltitudeEnvelope{
			MinM:      rec.AltitudeMinM,
			MaxM:      rec.AltitudeMaxM,
			Unbounded: rec.AltitudeUnbounded,
		},
		TimeStart:          rec.TimeStart,
		TimeEnd:            rec.TimeEnd,
		OwnerVertiportUUID: rec.OwnerVertiportUUID,
	}, nil
}

func flightPathFromRecord(rec FlightPathRecord) (domain.FlightPath, error) {
	ls, err := decodeLineStringZ(rec.GeomWKB)
	if err != nil {
		return domain.FlightPath{}, err
	}
	return domain.FlightPath{
		ID:               rec.ID,
		AircraftCallsign: rec.AircraftCallsign,
		Geometry:         ls,
		TimeStart:        rec.TimeStart,
		TimeEnd:          rec.TimeEnd,
		Simulated:        rec.Simulated,
	}, nil
}

// UpsertVertiport persists the vertiport's node and vertiport rows, then
// mirrors the change into the in-process snapshot, which builds the owned
// zone, and records that zone's label on the vertiport row. The owned zone
// is not written as a zone row; reload rebuilds it from the vertiport.
func (s *Store) UpsertVertiport(ctx context.Context, v domain.Vertiport) error {
	if _, err := geo.ValidatePolygon(v.Footprint.Vertices); err != nil {
		return err
	}
	wkbGeom, err := encodePolygon(v.Footprint)
	if err != nil {
		return fmt.Errorf("%w: %v", engineerr.ErrBadGeometry, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&NodeRecord{ID: v.UUID, Kind: string(domain.NodeVertiport)}).Error; err != nil {
			return err
		}
		rec := VertiportRecord{UUID: v.UUID, NodeID: v.UUID, Label: v.Label, AltitudeM: v.AltitudeM, FootprintWKB: wkbGeom}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
	})
	if err != nil {
		return fmt.Errorf("persist vertiport: %w", err)
	}

	if err := s.snapshot.UpsertVertiport(ctx, v); err != nil {
		return err
	}

	got, err := s.snapshot.GetVertiport(ctx, v.UUID)
	if err == nil {
		s.db.WithContext(ctx).Model(&VertiportRecord{}).Where("uuid = ?", v.UUID).Update("zone", got.ZoneLabel)
	}
	return nil
}

func (s *Store) UpsertWaypoint(ctx context.Context, w domain.Waypoint) error {
	if err := geo.ValidatePoint(w.Location); err != nil {
		return err
	}
	wkbGeom, err := encodePoint2D(w.Location)
	if err != nil {
		return fmt.Errorf("%w: %v", engineerr.ErrBadGeometry, err)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&NodeRecord{ID: w.Label, Kind: string(domain.NodeWaypoint)}).Error; err != nil {
			return err
		}
		rec := WaypointRecord{Label: w.Label, NodeID: w.Label, PointWKB: wkbGeom, MinAltitudeM: w.MinAltitudeM}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
	})
	if err != nil {
		return fmt.Errorf("persist waypoint: %w", err)
	}
	return s.snapshot.UpsertWaypoint(ctx, w)
}

func (s *Store) UpsertZone(ctx context.Context, z domain.Zone) error {
	if _, err := geo.ValidatePolygon(z.Footprint.Vertices); err != nil {
		return err
	}
	wkbGeom, err := encodePolygon(z.Footprint)
	if err != nil {
		return fmt.Errorf("%w: %v", engineerr.ErrBadGeometry, err)
	}
	rec := ZoneRecord{
		Label:              z.Label,
		Kind:               string(z.Kind),
		FootprintWKB:       wkbGeom,
		AltitudeMinM:       z.Altitude.MinM,
		AltitudeMaxM:       z.Altitude.MaxM,
		AltitudeUnbounded:  z.Altitude.Unbounded,
		TimeStart:          z.TimeStart,
		TimeEnd:            z.TimeEnd,
		OwnerVertiportUUID: z.OwnerVertiportUUID,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
		return fmt.Errorf("persist zone: %w", err)
	}
	return s.snapshot.UpsertZone(ctx, z)
}

func (s *Store) UpsertAircraft(ctx context.Context, callsign string, uuid *string, point geo.PointZ, altM float64, tSample time.Time) (bool, error) {
	applied, err := s.snapshot.UpsertAircraft(ctx, callsign, uuid, point, altM, tSample)
	if err != nil || !applied {
		return applied, err
	}

	wkbGeom, err := encodePointZ(point)
	if err != nil {
		return false, fmt.Errorf("%w: %v", engineerr.ErrBadTelemetry, err)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&NodeRecord{ID: callsign, Kind: string(domain.NodeAircraft)}).Error; err != nil {
			return err
		}
		rec := AircraftRecord{Callsign: callsign, UUID: uuid, NodeID: callsign, AltitudeM: altM, LastUpdated: tSample}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
			return err
		}
		loc := NodeLocationRecord{NodeID: callsign, Timestamp: tSample, GeomWKB: wkbGeom}
		return tx.Create(&loc).Error
	})
	if err != nil {
		return false, fmt.Errorf("persist aircraft telemetry: %w", err)
	}
	return true, nil
}

func (s *Store) UpsertFlightPath(ctx context.Context, fp domain.FlightPath) error {
	wkbGeom, err := encodeLineStringZ(fp.Geometry)
	if err != nil {
		return fmt.Errorf("%w: %v", engineerr.ErrBadGeometry, err)
	}
	rec := FlightPathRecord{
		ID:               fp.ID,
		AircraftCallsign: fp.AircraftCallsign,
		GeomWKB:          wkbGeom,
		TimeStart:        fp.TimeStart,
		TimeEnd:          fp.TimeEnd,
		Simulated:        fp.Simulated,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
		return fmt.Errorf("persist flight path: %w", err)
	}
	return s.snapshot.UpsertFlightPath(ctx, fp)
}

func (s *Store) DeleteVertiport(ctx context.Context, uuid string) error {
	v, err := s.snapshot.GetVertiport(ctx, uuid)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("uuid = ?", uuid).Delete(&VertiportRecord{}).Error; err != nil {
			return err
		}
		if v.ZoneLabel != "" {
			if err := tx.Where("label = ?", v.ZoneLabel).Delete(&ZoneRecord{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("node = ?", uuid).Delete(&NodeLocationRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", uuid).Delete(&NodeRecord{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete vertiport: %w", err)
	}
	return s.snapshot.DeleteVertiport(ctx, uuid)
}

func (s *Store) DeleteWaypoint(ctx context.Context, label string) error {
	if err := s.db.WithContext(ctx).Where("label = ?", label).Delete(&WaypointRecord{}).Error; err != nil {
		return fmt.Errorf("delete waypoint: %w", err)
	}
	return s.snapshot.DeleteWaypoint(ctx, label)
}

func (s *Store) DeleteZone(ctx context.Context, label string) error {
	if err := s.db.WithContext(ctx).Where("label = ?", label).Delete(&ZoneRecord{}).Error; err != nil {
		return fmt.Errorf("delete zone: %w", err)
	}
	return s.snapshot.DeleteZone(ctx, label)
}

func (s *Store) DeleteAircraft(ctx context.Context, callsign string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("node = ?", callsign).Delete(&NodeLocationRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("callsign = ?", callsign).Delete(&AircraftRecord{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete aircraft: %w", err)
	}
	return s.snapshot.DeleteAircraft(ctx, callsign)
}

func (s *Store) DeleteFlightPath(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&FlightPathRecord{}).Error; err != nil {
		return fmt.Errorf("delete flight path: %w", err)
	}
	return s.snapshot.DeleteFlightPath(ctx, id)
}

func (s *Store) GetVertiport(ctx context.Context, uuid string) (domain.Vertiport, error) {
	return s.snapshot.GetVertiport(ctx, uuid)
}

func (s *Store) GetWaypoint(ctx context.Context, label string) (domain.Waypoint, error) {
	return s.snapshot.GetWaypoint(ctx, label)
}

func (s *Store) GetZone(ctx context.Context, label string) (domain.Zone, error) {
	return s.snapshot.GetZone(ctx, label)
}

func (s *Store) GetAircraft(ctx context.Context, callsign string) (domain.Aircraft, error) {
	return s.snapshot.GetAircraft(ctx, callsign)
}

func (s *Store) GetFlightPath(ctx context.Context, id string) (domain.FlightPath, error) {
	return s.snapshot.GetFlightPath(ctx, id)
}

func (s *Store) CandidateNodesAt(ctx context.Context, t time.Time, tolerance time.Duration) ([]store.CandidateNode, error) {
	return s.snapshot.CandidateNodesAt(ctx, t, tolerance)
}

func (s *Store) CandidateEdges(ctx context.Context, tStart, tEnd time.Time, tolerance time.Duration, exemptZoneLabels []string) ([]store.Edge, []store.CandidateNode, error) {
	return s.snapshot.CandidateEdges(ctx, tStart, tEnd, tolerance, exemptZoneLabels)
}

func (s *Store) AStar(ctx context.Context, edges []store.Edge, sourceNodeID, targetNodeID string) ([]store.PathStep, error) {
	return s.snapshot.AStar(ctx, edges, sourceNodeID, targetNodeID)
}

func (s *Store) PathsOverlappingInTime(ctx context.Context, tStart, tEnd time.Time, path geo.LineString, thresholdM float64) ([]domain.FlightPath, error) {
	return s.snapshot.PathsOverlappingInTime(ctx, tStart, tEnd, path, thresholdM)
}

func (s *Store) ActiveZones(ctx context.Context, tStart, tEnd time.Time) ([]domain.Zone, error) {
	return s.snapshot.ActiveZones(ctx, tStart, tEnd)
}

func (s *Store) FlightsInWindow(ctx context.Context, minLat, minLon, maxLat, maxLon float64, tStart, tEnd time.Time) ([]store.FlightState, error) {
	return s.snapshot.FlightsInWindow(ctx, minLat, minLon, maxLat, maxLon, tStart, tEnd)
}

func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	return s.snapshot.Stats(ctx)
}
