package geo

import (
	"math"
	"testing"
)

func TestDistanceM_OneTenthDegreeLatitude(t *testing.T) {
	a := Point{Lat: 40.0, Lon: -74.0}
	b := Point{Lat: 40.1, Lon: -74.0}

	got := DistanceM(a, b)
	want := 11119.0
	if math.Abs(got-want) > 50 {
		t.Fatalf("DistanceM(%v, %v) = %v, want ~%v", a, b, got, want)
	}
}

func TestDistance3DM_CombinesSurfaceAndAltitude(t *testing.T) {
	a := PointZ{Lat: 40.0, Lon: -74.0, AltM: 100}
	b := PointZ{Lat: 40.0, Lon: -74.0, AltM: 140}

	got := Distance3DM(a, b)
	if math.Abs(got-40) > 1e-6 {
		t.Fatalf("Distance3DM pure-altitude case = %v, want 40", got)
	}
}

func TestCentroid_SquarePolygon(t *testing.T) {
	poly, err := ValidatePolygon([]Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 2},
		{Lat: 2, Lon: 2},
		{Lat: 2, Lon: 0},
		{Lat: 0, Lon: 0},
	})
	if err != nil {
		t.Fatalf("ValidatePolygon: %v", err)
	}
	c := Centroid(poly)
	if math.Abs(c.Lat-1) > 1e-9 || math.Abs(c.Lon-1) > 1e-9 {
		t.Fatalf("Centroid = %v, want (1,1)", c)
	}
}

func TestLineDistance3DM_Disjoint(t *testing.T) {
	a := LineString{Points: []PointZ{{Lat: 0, Lon: 0, AltM: 0}}}
	b := LineString{Points: []PointZ{{Lat: 1, Lon: 1, AltM: 0}}}
	if LineDistance3DM(a, b) <= 0 {
		t.Fatalf("expected positive distance between disjoint points")
	}
}
