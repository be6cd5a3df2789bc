package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadGeometry is the sentinel wrapped by every geometry validation
// failure in this package. Callers match it with errors.Is.
var ErrBadGeometry = errors.New("bad geometry")

// minPolygonVertices is four: a closed triangular region needs three
// distinct vertices plus a closing vertex equal to the first.
const minPolygonVertices = 4

// ValidatePoint checks that lat/lon fall within their valid ranges and are
// finite.
func ValidatePoint(p Point) error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) {
		return fmt.Errorf("%w: non-finite coordinate", ErrBadGeometry)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of bounds", ErrBadGeometry, p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %f out of bounds", ErrBadGeometry, p.Lon)
	}
	return nil
}

// ValidatePointZ additionally requires a finite altitude.
func ValidatePointZ(p PointZ) error {
	if err := ValidatePoint(p.Point2D()); err != nil {
		return err
	}
	if math.IsNaN(p.AltM) || math.IsInf(p.AltM, 0) {
		return fmt.Errorf("%w: non-finite altitude", ErrBadGeometry)
	}
	return nil
}

// ValidatePolygon builds a Polygon from raw vertices, requiring at least
// four vertices with the first equal to the last (a closed ring) and every
// vertex within WGS-84 bounds.
func ValidatePolygon(vertices []Point) (Polygon, error) {
	if len(vertices) < minPolygonVertices {
		return Polygon{}, fmt.Errorf("%w: polygon needs at least %d vertices, got %d",
			ErrBadGeometry, minPolygonVertices, len(vertices))
	}
	first, last := vertices[0], vertices[len(vertices)-1]
	if first != last {
		return Polygon{}, fmt.Errorf("%w: polygon is not closed (first vertex != last vertex)", ErrBadGeometry)
	}
	for i, v := range vertices {
		if err := ValidatePoint(v); err != nil {
			return Polygon{}, fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	return Polygon{Vertices: vertices}, nil
}
