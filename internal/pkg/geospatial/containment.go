package geospatial

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Containment decides whether a point lies inside a polygon's exterior ring.
// Points and rings use (x=lon, y=lat).
type Containment interface {
	Contains(ring orb.Ring, p orb.Point) bool
	Name() string
}

// Matcher names accepted by NewContainment.
const (
	MatcherRayCast = "raycast"
	MatcherPlanar  = "planar"
)

// NewContainment returns the implementation registered under name.
func NewContainment(name string) (Containment, error) {
	switch name {
	case "", MatcherRayCast:
		return RayCasting{}, nil
	case MatcherPlanar:
		return Planar{}, nil
	default:
		return nil, fmt.Errorf("unknown matcher %q", name)
	}
}

// RayCasting is the even-odd rule with a horizontal ray towards +x.
//
// An edge counts when y > min(y1,y2) and y <= max(y1,y2) and x <= max(x1,x2);
// it toggles the state when it is vertical or x lies at or left of its
// intercept. Horizontal edges never count. For an axis-aligned ring this
// makes the boundary half-open: points on the top and right edges are
// inside, points on the bottom and left edges are outside, and a vertex
// shared by two edges is counted once.
type RayCasting struct{}

// Name implements Containment.
func (RayCasting) Name() string { return MatcherRayCast }

// Contains implements Containment.
func (RayCasting) Contains(ring orb.Ring, p orb.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	x, y := p[0], p[1]
	inside := false

	p1 := ring[0]
	for i := 1; i <= n; i++ {
		p2 := ring[i%n]
		if p1[1] == p2[1] {
			p1 = p2
			continue
		}
		if y > math.Min(p1[1], p2[1]) && y <= math.Max(p1[1], p2[1]) && x <= math.Max(p1[0], p2[0]) {
			if p1[0] == p2[0] {
				inside = !inside
			} else {
				xint := (y-p1[1])*(p2[0]-p1[0])/(p2[1]-p1[1]) + p1[0]
				if x <= xint {
					inside = !inside
				}
			}
		}
		p1 = p2
	}
	return inside
}

// Planar delegates to orb/planar. Its boundary handling differs from
// RayCasting: points on an edge are reported inside.
type Planar struct{}

// Name implements Containment.
func (Planar) Name() string { return MatcherPlanar }

// Contains implements Containment.
func (Planar) Contains(ring orb.Ring, p orb.Point) bool {
	if len(ring) < 3 {
		return false
	}
	return planar.RingContains(ring, p)
}
