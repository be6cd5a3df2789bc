package postgres

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"

	domaingeo "github.com/aerosync/vertiport-routing/geo"
)

// encodePoint2D encodes a surface point as WKB (lon, lat ordering, matching
// geometry/geography convention).
func encodePoint2D(p domaingeo.Point) ([]byte, error) {
	g := geom.NewPointFlat(geom.XY, []float64{p.Lon, p.Lat})
	return wkb.Marshal(g, wkb.NDR)
}

// encodePointZ encodes a 3D point (lon, lat, alt_m) as WKB.
func encodePointZ(p domaingeo.PointZ) ([]byte, error) {
	g := geom.NewPointFlat(geom.XYZ, []float64{p.Lon, p.Lat, p.AltM})
	return wkb.Marshal(g, wkb.NDR)
}

// encodePolygon encodes a closed-ring polygon footprint as WKB.
func encodePolygon(poly domaingeo.Polygon) ([]byte, error) {
	flat := make([]float64, 0, len(poly.Vertices)*2)
	for _, v := range poly.Vertices {
		flat = append(flat, v.Lon, v.Lat)
	}
	g := geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
	return wkb.Marshal(g, wkb.NDR)
}

// encodeLineStringZ encodes a 3D polyline as WKB.
func encodeLineStringZ(l domaingeo.LineString) ([]byte, error) {
	flat := make([]float64, 0, len(l.Points)*3)
	for _, p := range l.Points {
		flat = append(flat, p.Lon, p.Lat, p.AltM)
	}
	g := geom.NewLineStringFlat(geom.XYZ, flat)
	return wkb.Marshal(g, wkb.NDR)
}

func decodePoint2D(b []byte) (domaingeo.Point, error) {
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return domaingeo.Point{}, fmt.Errorf("unmarshal point wkb: %w", err)
	}
	pt, ok := g.(*geom.Point)
	if !ok {
		return domaingeo.Point{}, fmt.Errorf("expected Point, got %T", g)
	}
	coords := pt.Coords()
	return domaingeo.Point{Lon: coords[0], Lat: coords[1]}, nil
}

func decodePointZ(b []byte) (domaingeo.PointZ, error) {
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return domaingeo.PointZ{}, fmt.Errorf("unmarshal point wkb: %w", err)
	}
	pt, ok := g.(*geom.Point)
	if !ok {
		return domaingeo.PointZ{}, fmt.Errorf("expected Point, got %T", g)
	}
	coords := pt.Coords()
	z := 0.0
	if len(coords) > 2 {
		z = coords[2]
	}
	return domaingeo.PointZ{Lon: coords[0], Lat: coords[1], AltM: z}, nil
}

func decodePolygon(b []byte) (domaingeo.Polygon, error) {
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return domaingeo.Polygon{}, fmt.Errorf("unmarshal polygon wkb: %w", err)
	}
	poly, ok := g.(*geom.Polygon)
	if !ok {
		return domaingeo.Polygon{}, fmt.Errorf("expected Polygon, got %T", g)
	}
	ring := poly.LinearRing(0)
	verts := make([]domaingeo.Point, 0, ring.NumCoords())
	for i := 0; i < ring.NumCoords(); i++ {
		c := ring.Coord(i)
		verts = append(verts, domaingeo.Point{Lon: c[0], Lat: c[1]})
	}
	return domaingeo.Polygon{Vertices: verts}, nil
}

func decodeLineStringZ(b []byte) (domaingeo.LineString, error) {
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return domaingeo.LineString{}, fmt.Errorf("unmarshal linestring wkb: %w", err)
	}
	ls, ok := g.(*geom.LineString)
	if !ok {
		return domaingeo.LineString{}, fmt.Errorf("expected LineString, got %T", g)
	}
	pts := make([]domaingeo.PointZ, 0, ls.NumCoords())
	for i := 0; i < ls.NumCoords(); i++ {
		c := ls.Coord(i)
		z := 0.0
		if len(c) > 2 {
			z = c[2]
		}
		pts = append(pts, domaingeo.PointZ{Lon: c[0], Lat: c[1], AltM: z})
	}
	return domaingeo.LineString{Points: pts}, nil
}
