package geo

import "math"

// MakeLine constructs the two-point polyline between p1 and p2.
func MakeLine(p1, p2 PointZ) LineString {
	return LineString{Points: []PointZ{p1, p2}}
}

// StartPoint returns the first point of the line. Callers must not invoke
// this on an empty LineString.
func (l LineString) StartPoint() PointZ {
	return l.Points[0]
}

// EndPoint returns the last point of the line.
func (l LineString) EndPoint() PointZ {
	return l.Points[len(l.Points)-1]
}

// Length returns the total arc length of the polyline, summing the 3D
// distance of each consecutive segment.
func (l LineString) Length() float64 {
	var total float64
	for i := 1; i < len(l.Points); i++ {
		total += Distance3DM(l.Points[i-1], l.Points[i])
	}
	return total
}

// Segmentize splits a line into sub-segments no longer than maxLenM, by
// linear (lat/lon/alt) interpolation along each existing segment. The
// original vertices are preserved; only additional vertices are inserted.
func Segmentize(l LineString, maxLenM float64) LineString {
	if maxLenM <= 0 || len(l.Points) < 2 {
		return l
	}
	out := []PointZ{l.Points[0]}
	for i := 1; i < len(l.Points); i++ {
		a, b := l.Points[i-1], l.Points[i]
		segLen := Distance3DM(a, b)
		if segLen <= maxLenM {
			out = append(out, b)
			continue
		}
		n := int(math.Ceil(segLen / maxLenM))
		for step := 1; step <= n; step++ {
			t := float64(step) / float64(n)
			out = append(out, lerp(a, b, t))
		}
	}
	return LineString{Points: out}
}

// Midpoint returns the point at half the arc length of the polyline, and
// the two sub-polylines split at that point. This is the
// primitive the intersection engine's recursive bisection uses to split a
// path proportionally by arc length (which, under a constant-speed
// assumption, corresponds to proportional time).
func Midpoint(l LineString) (PointZ, LineString, LineString) {
	if len(l.Points) == 1 {
		return l.Points[0], LineString{Points: []PointZ{l.Points[0]}}, LineString{Points: []PointZ{l.Points[0]}}
	}
	total := l.Length()
	if total == 0 {
		mid := l.Points[0]
		return mid, LineString{Points: []PointZ{l.Points[0], mid}}, LineString{Points: []PointZ{mid, l.Points[len(l.Points)-1]}}
	}
	half := total / 2
	var acc float64
	for i := 1; i < len(l.Points); i++ {
		a, b := l.Points[i-1], l.Points[i]
		segLen := Distance3DM(a, b)
		if acc+segLen >= half {
			t := 0.0
			if segLen > 0 {
				t = (half - acc) / segLen
			}
			mid := lerp(a, b, t)
			first := append(append([]PointZ{}, l.Points[:i]...), mid)
			second := append([]PointZ{mid}, l.Points[i:]...)
			return mid, LineString{Points: first}, LineString{Points: second}
		}
		acc += segLen
	}
	mid := l.Points[len(l.Points)-1]
	return mid, l, LineString{Points: []PointZ{mid}}
}

func lerp(a, b PointZ, t float64) PointZ {
	return PointZ{
		Lat:  a.Lat + (b.Lat-a.Lat)*t,
		Lon:  a.Lon + (b.Lon-a.Lon)*t,
		AltM: a.AltM + (b.AltM-a.AltM)*t,
	}
}
