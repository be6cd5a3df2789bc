// Package postgres implements the optional PostGIS-flavored SpatialStore
// adapter: GORM models matching the persisted schema of spec §6, with
// geometry encoded to/from WKB at the persistence boundary via
// twpayne/go-geom, grounded in Mikey-gotcode-ma3tracker's
// internal/controllers/route_controller.go and internal/config/database.go.
//
// Graph construction and A* are delegated to an in-process snapshot (a
// memory.Store loaded from these tables at startup and updated alongside
// every write) rather than
// a routing SQL extension, per spec.md §9's explicit backend-abstraction
// note that an in-process implementation satisfies the same §4.2 contract.
package postgres

import "time"

// NodeRecord is the generic routable-node row backing every domain entity.
type NodeRecord struct {
	ID   string `gorm:"primaryKey;column:id"`
	Kind string `gorm:"column:kind;not null"`
}

func (NodeRecord) TableName() string { return "nodes" }

// NodeLocationRecord is one timestamped location sample for a node.
type NodeLocationRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	NodeID    string    `gorm:"column:node;index;not null"`
	Timestamp time.Time `gorm:"column:ts;index;not null"`
	GeomWKB   []byte    `gorm:"column:point;type:bytea;not null"`
}

func (NodeLocationRecord) TableName() string { return "node_locations" }

// VertiportRecord persists a vertiport's footprint and owned zone linkage.
type VertiportRecord struct {
	UUID         string  `gorm:"primaryKey;column:uuid"`
	NodeID       string  `gorm:"column:node;not null"`
	ZoneLabel    string  `gorm:"column:zone;not null"`
	Label        string  `gorm:"column:label"`
	AltitudeM    float64 `gorm:"column:alt_m"`
	FootprintWKB []byte  `gorm:"column:geom;type:bytea;not null"`
}

func (VertiportRecord) TableName() string { return "vertiports" }

// WaypointRecord persists a waypoint's fixed location and optional minimum
// altitude (retained but unused in routing cost).
type WaypointRecord struct {
	Label        string   `gorm:"primaryKey;column:label"`
	NodeID       string   `gorm:"column:node;not null"`
	PointWKB     []byte   `gorm:"column:geom;type:bytea;not null"`
	MinAltitudeM *float64 `gorm:"column:min_alt"`
}

func (WaypointRecord) TableName() string { return "waypoints" }

// AircraftRecord persists the current telemetry state for one callsign.
// Location history lives in NodeLocationRecord, keyed by callsign as node id.
type AircraftRecord struct {
	Callsign    string    `gorm:"primaryKey;column:callsign"`
	UUID        *string   `gorm:"column:uuid"`
	NodeID      string    `gorm:"column:node;not null"`
	AltitudeM   float64   `gorm:"column:alt_m"`
	LastUpdated time.Time `gorm:"column:last_updated;index;not null"`
}

func (AircraftRecord) TableName() string { return "aircraft" }

// ZoneRecord persists a restricted-airspace polygon with its optional
// altitude envelope and time window.
type ZoneRecord struct {
	Label              string     `gorm:"primaryKey;column:label"`
	Kind               string     `gorm:"column:kind;not null"`
	FootprintWKB       []byte     `gorm:"column:geom;type:bytea;not null"`
	AltitudeMinM       float64    `gorm:"column:alt_min"`
	AltitudeMaxM       float64    `gorm:"column:alt_max"`
	AltitudeUnbounded  bool       `gorm:"column:alt_unbounded"`
	TimeStart          *time.Time `gorm:"column:t_start"`
	TimeEnd            *time.Time `gorm:"column:t_end"`
	OwnerVertiportUUID string     `gorm:"column:owner_vertiport"`
}

func (ZoneRecord) TableName() string { return "zones" }

// FlightPathRecord persists a planned, time-bounded 3D polyline.
type FlightPathRecord struct {
	ID               string    `gorm:"primaryKey;column:id"`
	AircraftCallsign *string   `gorm:"column:aircraft"`
	GeomWKB          []byte    `gorm:"column:geom;type:bytea;not null"`
	TimeStart        time.Time `gorm:"column:t_start;index;not null"`
	TimeEnd          time.Time `gorm:"column:t_end;index;not null"`
	Simulated        bool      `gorm:"column:simulated"`
}

func (FlightPathRecord) TableName() string { return "flight_paths" }

// AllModels lists every model for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&NodeRecord{},
		&NodeLocationRecord{},
		&VertiportRecord{},
		&WaypointRecord{},
		&AircraftRecord{},
		&ZoneRecord{},
		&FlightPathRecord{},
	}
}
