package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/tagscan/internal/imaging"
)

// ContourArea returns the area enclosed by a closed polygon (shoelace formula).
func ContourArea(pts []image.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var s float64
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		s += float64(a.X*b.Y - b.X*a.Y)
	}
	return math.Abs(s) / 2
}

// ArcLength returns the perimeter of a closed polygon.
func ArcLength(pts []image.Point) float64 {
	var s float64
	for i := range pts {
		s += imaging.Pt(pts[i]).Dist(imaging.Pt(pts[(i+1)%len(pts)]))
	}
	return s
}

// BoundingRect returns the smallest axis-aligned rectangle containing every
// point (Max exclusive).
func BoundingRect(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	r := image.Rect(pts[0].X, pts[0].Y, pts[0].X+1, pts[0].Y+1)
	for _, p := range pts[1:] {
		r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
	}
	return r
}

// ApproxPolygon simplifies a closed polygon with the Douglas-Peucker algorithm.
// No point of the input lies farther than epsilon from the result.
func ApproxPolygon(pts []image.Point, epsilon float64) []image.Point {
	n := len(pts)
	if n < 3 {
		return append([]image.Point(nil), pts...)
	}

	// Split the ring at the point farthest from the first one.
	far, farDist := 0, -1.0
	for i, p := range pts {
		if d := imaging.Pt(p).Dist(imaging.Pt(pts[0])); d > farDist {
			far, farDist = i, d
		}
	}
	if far == 0 {
		return []image.Point{pts[0]}
	}

	ring := append(append([]image.Point(nil), pts...), pts[0])
	left := douglasPeucker(ring[:far+1], epsilon)
	right := douglasPeucker(ring[far:], epsilon)
	out := append(left[:len(left)-1], right[:len(right)-1]...)

	// The first point is kept unconditionally by the split; drop it when it
	// lies on the line between its neighbors.
	if len(out) > 3 && segmentDist(out[0], out[len(out)-1], out[1]) <= epsilon {
		out = out[1:]
	}
	return out
}

func douglasPeucker(pts []image.Point, epsilon float64) []image.Point {
	if len(pts) < 3 {
		return append([]image.Point(nil), pts...)
	}
	first, last := pts[0], pts[len(pts)-1]
	idx, maxDist := 0, -1.0
	for i := 1; i < len(pts)-1; i++ {
		if d := segmentDist(pts[i], first, last); d > maxDist {
			idx, maxDist = i, d
		}
	}
	if maxDist <= epsilon {
		return []image.Point{first, last}
	}
	left := douglasPeucker(pts[:idx+1], epsilon)
	right := douglasPeucker(pts[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

// segmentDist returns the distance from p to the segment a-b.
func segmentDist(p, a, b image.Point) float64 {
	pf, af, bf := imaging.Pt(p), imaging.Pt(a), imaging.Pt(b)
	dx, dy := bf.X-af.X, bf.Y-af.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return pf.Dist(af)
	}
	t := ((pf.X-af.X)*dx + (pf.Y-af.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return pf.Dist(imaging.PointF{X: af.X + t*dx, Y: af.Y + t*dy})
}

// ConvexHull returns the convex hull of pts (Andrew's monotone chain).
// Collinear points on the hull are dropped.
func ConvexHull(pts []image.Point) []image.Point {
	if len(pts) < 3 {
		return append([]image.Point(nil), pts...)
	}
	sorted := append([]image.Point(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}
	hull := make([]image.Point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// RotatedRect is a rectangle at an arbitrary angle. Width runs along the
// direction given by Angle (degrees, clockwise on screen from the x axis),
// Height perpendicular to it.
type RotatedRect struct {
	Center        imaging.PointF
	Width, Height float64
	Angle         float64
}

// MinAreaRect returns the rotated rectangle of least area enclosing pts
// (rotating calipers over the convex hull).
func MinAreaRect(pts []image.Point) RotatedRect {
	hull := ConvexHull(pts)
	switch len(hull) {
	case 0:
		return RotatedRect{}
	case 1:
		return RotatedRect{Center: imaging.Pt(hull[0])}
	}

	best := RotatedRect{}
	bestArea := math.Inf(1)
	for i := range hull {
		a, b := imaging.Pt(hull[i]), imaging.Pt(hull[(i+1)%len(hull)])
		l := a.Dist(b)
		if l == 0 {
			continue
		}
		ux, uy := (b.X-a.X)/l, (b.Y-a.Y)/l
		vx, vy := -uy, ux

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu := float64(p.X)*ux + float64(p.Y)*uy
			pv := float64(p.X)*vx + float64(p.Y)*vy
			minU, maxU = math.Min(minU, pu), math.Max(maxU, pu)
			minV, maxV = math.Min(minV, pv), math.Max(maxV, pv)
		}
		area := (maxU - minU) * (maxV - minV)
		if area < bestArea {
			bestArea = area
			cu, cv := (minU+maxU)/2, (minV+maxV)/2
			best = RotatedRect{
				Center: imaging.PointF{X: cu*ux + cv*vx, Y: cu*uy + cv*vy},
				Width:  maxU - minU,
				Height: maxV - minV,
				Angle:  math.Atan2(uy, ux) * 180 / math.Pi,
			}
		}
	}
	return best.normalized()
}

// normalized folds the angle into (-45, 45] by swapping the sides, which keeps
// the description of the same rectangle unique.
func (r RotatedRect) normalized() RotatedRect {
	for r.Angle <= -45 {
		r.Angle += 90
		r.Width, r.Height = r.Height, r.Width
	}
	for r.Angle > 45 {
		r.Angle -= 90
		r.Width, r.Height = r.Height, r.Width
	}
	return r
}

// Corners returns the four corners of r.
func (r RotatedRect) Corners() [4]imaging.PointF {
	rad := r.Angle * math.Pi / 180
	ux, uy := math.Cos(rad), math.Sin(rad)
	vx, vy := -uy, ux
	hw, hh := r.Width/2, r.Height/2
	c := r.Center
	return [4]imaging.PointF{
		{X: c.X - hw*ux - hh*vx, Y: c.Y - hw*uy - hh*vy},
		{X: c.X + hw*ux - hh*vx, Y: c.Y + hw*uy - hh*vy},
		{X: c.X + hw*ux + hh*vx, Y: c.Y + hw*uy + hh*vy},
		{X: c.X - hw*ux + hh*vx, Y: c.Y - hw*uy + hh*vy},
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
