package geo

// Intersects reports whether the 2D footprint of line l crosses, touches, or
// is contained by polygon p. Used by the graph builder to drop candidate
// edges that cross an active restricted zone, and by the zone hard-reject
// phase of the intersection engine.
func Intersects(l LineString, p Polygon) bool {
	if len(l.Points) < 2 || len(p.Vertices) < minPolygonVertices {
		return false
	}
	for i := 1; i < len(l.Points); i++ {
		a := l.Points[i-1].Point2D()
		b := l.Points[i].Point2D()
		if segmentIntersectsPolygon(a, b, p) {
			return true
		}
	}
	return false
}

func segmentIntersectsPolygon(a, b Point, p Polygon) bool {
	if pointInPolygon(a, p) || pointInPolygon(b, p) {
		return true
	}
	verts := p.Vertices
	for i := 1; i < len(verts); i++ {
		if segmentsIntersect(a, b, verts[i-1], verts[i]) {
			return true
		}
	}
	return false
}

// pointInPolygon implements the standard ray-casting point-in-polygon test.
func pointInPolygon(pt Point, p Polygon) bool {
	verts := p.Vertices
	inside := false
	n := len(verts)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := verts[i], verts[j]
		if (vi.Lat > pt.Lat) != (vj.Lat > pt.Lat) {
			lonAtLat := vj.Lon + (pt.Lat-vj.Lat)/(vi.Lat-vj.Lat)*(vi.Lon-vj.Lon)
			if pt.Lon < lonAtLat {
				inside = !inside
			}
		}
	}
	return inside
}

// segmentsIntersect reports whether segment p1-p2 intersects segment p3-p4,
// including collinear overlap, via the standard orientation test.
func segmentsIntersect(p1, p2, p3, p4 Point) bool {
	o1 := orientation(p1, p2, p3)
	o2 := orientation(p1, p2, p4)
	o3 := orientation(p3, p4, p1)
	o4 := orientation(p3, p4, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(p1, p3, p2) {
		return true
	}
	if o2 == 0 && onSegment(p1, p4, p2) {
		return true
	}
	if o3 == 0 && onSegment(p3, p1, p4) {
		return true
	}
	if o4 == 0 && onSegment(p3, p2, p4) {
		return true
	}
	return false
}

// orientation returns 0 for collinear, 1 for clockwise, 2 for
// counter-clockwise, treating lon as x and lat as y.
func orientation(a, b, c Point) int {
	val := (b.Lon-a.Lon)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lon-a.Lon)
	switch {
	case val == 0:
		return 0
	case val > 0:
		return 1
	default:
		return 2
	}
}

func onSegment(a, b, c Point) bool {
	return b.Lon <= max(a.Lon, c.Lon) && b.Lon >= min(a.Lon, c.Lon) &&
		b.Lat <= max(a.Lat, c.Lat) && b.Lat >= min(a.Lat, c.Lat)
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// AltitudeEnvelope describes an optional min/max altitude band. With
// Unbounded set it spans all altitudes; otherwise it is the band
// [MinM, MaxM], so the zero value covers altitude 0 only.
type AltitudeEnvelope struct {
	MinM      float64
	MaxM      float64
	Unbounded bool
}

// Overlaps reports whether the line's altitude range overlaps the envelope.
func (e AltitudeEnvelope) Overlaps(l LineString) bool {
	if e.Unbounded || len(l.Points) == 0 {
		return true
	}
	lineMin, lineMax := l.Points[0].AltM, l.Points[0].AltM
	for _, pt := range l.Points[1:] {
		if pt.AltM < lineMin {
			lineMin = pt.AltM
		}
		if pt.AltM > lineMax {
			lineMax = pt.AltM
		}
	}
	return lineMin <= e.MaxM && lineMax >= e.MinM
}

// Intersects3D reports whether line l intersects polygon p's 2D footprint
// AND the line's altitude range overlaps the polygon's altitude envelope.
func Intersects3D(l LineString, p Polygon, envelope AltitudeEnvelope) bool {
	if !envelope.Overlaps(l) {
		return false
	}
	return Intersects(l, p)
}
