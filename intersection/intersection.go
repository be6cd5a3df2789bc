// Package intersection implements the temporal-spatial conflict predicate
// (C6): a zone hard-reject phase followed by pairwise recursive bisection
// against overlapping scheduled flight paths, grounded in the teacher's
// recursive-descent traversal style (internal/sim and internal/sbi walk
// trees/graphs the same top-down way) and in original_source/'s
// intersects() routine for the exact termination rule.
package intersection

import (
	"context"
	"time"

	"github.com/aerosync/vertiport-routing/domain"
	"github.com/aerosync/vertiport-routing/geo"
	"github.com/aerosync/vertiport-routing/store"
)

// Defaults per spec §4.6.
const (
	DefaultMinLenM    = 10.0
	DefaultThresholdM = 300.0
)

// Checker evaluates check_intersection against a SpatialStore.
type Checker struct {
	Store      store.SpatialStore
	MinLenM    float64
	ThresholdM float64
}

// New constructs a Checker with spec-default MinLenM/ThresholdM.
func New(s store.SpatialStore) *Checker {
	return &Checker{Store: s, MinLenM: DefaultMinLenM, ThresholdM: DefaultThresholdM}
}

func (c *Checker) minLen() float64 {
	if c.MinLenM > 0 {
		return c.MinLenM
	}
	return DefaultMinLenM
}

func (c *Checker) threshold() float64 {
	if c.ThresholdM > 0 {
		return c.ThresholdM
	}
	return DefaultThresholdM
}

// Check runs check_intersection for a proposed path P over [tStart,tEnd].
// Phase 1 rejects on the first zone whose envelope P crosses while active in
// the window (limit 1: the first hit short-circuits). Phase 2 tests P
// against every scheduled flight path that overlaps in time and lies within
// ThresholdM as whole polylines, via recursive bisection.
func (c *Checker) Check(ctx context.Context, path geo.LineString, tStart, tEnd time.Time) (bool, error) {
	zones, err := c.Store.ActiveZones(ctx, tStart, tEnd)
	if err != nil {
		return false, err
	}
	for _, z := range zones {
		if geo.Intersects3D(path, z.Footprint, z.Altitude) {
			return true, nil
		}
	}

	candidates, err := c.Store.PathsOverlappingInTime(ctx, tStart, tEnd, path, c.threshold())
	if err != nil {
		return false, err
	}
	for _, q := range candidates {
		if c.intersects(path, q.Geometry, tStart, tEnd, q.TimeStart, q.TimeEnd) {
			return true, nil
		}
	}
	return false, nil
}

// intersects implements the recursive bisection predicate verbatim per
// spec §4.6: temporal disjointness and spatial separation each terminate
// with false; both arms shrinking below MinLenM while still close
// terminates with true; otherwise split both polylines at their
// arc-length midpoint, split their time windows proportionally, and recurse
// on the paired halves.
func (c *Checker) intersects(p, q geo.LineString, pStart, pEnd, qStart, qEnd time.Time) bool {
	if !domain.TimeOverlaps(pStart, pEnd, qStart, qEnd) {
		return false
	}
	if geo.LineDistance3DM(p, q) > c.threshold() {
		return false
	}
	pLen, qLen := p.Length(), q.Length()
	if pLen < c.minLen() && qLen < c.minLen() {
		return true
	}

	_, p1, p2 := geo.Midpoint(p)
	_, q1, q2 := geo.Midpoint(q)

	// geo.Midpoint splits at the exact arc-length midpoint, so the
	// proportional time split is always the window's own midpoint.
	pSplit := splitWindow(pStart, pEnd)
	qSplit := splitWindow(qStart, qEnd)

	if c.intersects(p1, q1, pStart, pSplit, qStart, qSplit) {
		return true
	}
	return c.intersects(p2, q2, pSplit, pEnd, qSplit, qEnd)
}

// splitWindow returns the midpoint of [start,end], matching the
// proportional split applied to the geometry.
func splitWindow(start, end time.Time) time.Time {
	return start.Add(end.Sub(start) / 2)
}
