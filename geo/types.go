// Package geo implements the spatial primitives shared by the routing and
// intersection engines: 2D/3D points, polygons, line geometry, great-circle
// and local-tangent distance, and the intersection predicates the graph
// builder and deconfliction engine depend on.
package geo

// Point is a 2D WGS-84 coordinate (SRID 4326).
type Point struct {
	Lat float64
	Lon float64
}

// PointZ is a 3D coordinate: WGS-84 latitude/longitude plus an altitude in
// meters above the reference ellipsoid.
type PointZ struct {
	Lat  float64
	Lon  float64
	AltM float64
}

// Point2D drops the altitude component.
func (p PointZ) Point2D() Point {
	return Point{Lat: p.Lat, Lon: p.Lon}
}

// Polygon is a closed ring of 2D vertices: the first and last vertex must be
// equal. Use ValidatePolygon to construct one from raw vertices.
type Polygon struct {
	Vertices []Point
}

// LineString is an ordered 3D polyline, e.g. a flight path or a graph edge
// geometry (for 2D edges the altitude component is simply left at zero).
type LineString struct {
	Points []PointZ
}
