package geo

import (
	"errors"
	"math"
	"testing"
)

func TestValidatePolygon_RejectsShortVertexList(t *testing.T) {
	_, err := ValidatePolygon([]Point{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}, {Lat: 0, Lon: 0}})
	if !errors.Is(err, ErrBadGeometry) {
		t.Fatalf("expected ErrBadGeometry, got %v", err)
	}
}

func TestValidatePolygon_RejectsOpenRing(t *testing.T) {
	_, err := ValidatePolygon([]Point{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0},
	})
	if !errors.Is(err, ErrBadGeometry) {
		t.Fatalf("expected ErrBadGeometry for unclosed ring, got %v", err)
	}
}

func TestValidatePolygon_RejectsOutOfBounds(t *testing.T) {
	_, err := ValidatePolygon([]Point{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 200}, {Lat: 1, Lon: 1}, {Lat: 0, Lon: 0},
	})
	if !errors.Is(err, ErrBadGeometry) {
		t.Fatalf("expected ErrBadGeometry for out-of-bounds vertex, got %v", err)
	}
}

func TestValidatePolygon_AcceptsClosedSquare(t *testing.T) {
	_, err := ValidatePolygon([]Point{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0}, {Lat: 0, Lon: 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatePoint_RejectsNonFinite(t *testing.T) {
	err := ValidatePointZ(PointZ{Lat: 0, Lon: 0, AltM: math.NaN()})
	if !errors.Is(err, ErrBadGeometry) {
		t.Fatalf("expected ErrBadGeometry for NaN altitude, got %v", err)
	}
}
