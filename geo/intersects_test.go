package geo

import "testing"

func square(minLat, minLon, maxLat, maxLon float64) Polygon {
	return Polygon{Vertices: []Point{
		{Lat: minLat, Lon: minLon},
		{Lat: minLat, Lon: maxLon},
		{Lat: maxLat, Lon: maxLon},
		{Lat: maxLat, Lon: minLon},
		{Lat: minLat, Lon: minLon},
	}}
}

func TestIntersects_LineCrossesPolygon(t *testing.T) {
	z := square(40.04, -74.01, 40.06, -73.99)
	line := MakeLine(
		PointZ{Lat: 40.0, Lon: -74.0, AltM: 0},
		PointZ{Lat: 40.1, Lon: -74.0, AltM: 0},
	)
	if !Intersects(line, z) {
		t.Fatalf("expected line to intersect zone")
	}
}

func TestIntersects_LineMissesPolygon(t *testing.T) {
	z := square(40.04, -74.01, 40.06, -73.99)
	line := MakeLine(
		PointZ{Lat: 41.0, Lon: -75.0, AltM: 0},
		PointZ{Lat: 41.1, Lon: -75.0, AltM: 0},
	)
	if Intersects(line, z) {
		t.Fatalf("expected line not to intersect zone")
	}
}

func TestIntersects3D_AltitudeEnvelopeExcludesLine(t *testing.T) {
	z := square(40.04, -74.01, 40.06, -73.99)
	line := LineString{Points: []PointZ{
		{Lat: 40.0, Lon: -74.0, AltM: 500},
		{Lat: 40.1, Lon: -74.0, AltM: 500},
	}}
	envelope := AltitudeEnvelope{MinM: 0, MaxM: 100}
	if Intersects3D(line, z, envelope) {
		t.Fatalf("expected no 3D intersection: line altitude is above the zone envelope")
	}
}

func TestIntersects3D_UnboundedEnvelopeMatchesFootprint(t *testing.T) {
	z := square(40.04, -74.01, 40.06, -73.99)
	line := LineString{Points: []PointZ{
		{Lat: 40.0, Lon: -74.0, AltM: 9000},
		{Lat: 40.1, Lon: -74.0, AltM: 9000},
	}}
	envelope := AltitudeEnvelope{Unbounded: true}
	if !Intersects3D(line, z, envelope) {
		t.Fatalf("expected 3D intersection with unbounded envelope")
	}
}
