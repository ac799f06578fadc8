package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"
)

// DrawLine draws a straight line of the given thickness from (x0,y0) to (x1,y1).
// Endpoints may lie outside dst; only the visible part is drawn.
func DrawLine(dst draw.Image, x0, y0, x1, y1, thickness int, c color.Color) {
	b := dst.Bounds()
	if thickness < 1 {
		thickness = 1
	}

	// Clip the segment against the image grown by the brush size so that
	// lines running far off-canvas do not cost a step per invisible pixel.
	grown := b.Inset(-thickness)
	fx0, fy0, fx1, fy1, ok := clipSegment(float64(x0), float64(y0), float64(x1), float64(y1), grown)
	if !ok {
		return
	}
	x0, y0 = int(math.Round(fx0)), int(math.Round(fy0))
	x1, y1 = int(math.Round(fx1)), int(math.Round(fy1))

	lo := -(thickness - 1) / 2
	hi := lo + thickness

	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		for oy := lo; oy < hi; oy++ {
			for ox := lo; ox < hi; ox++ {
				p := image.Pt(x0+ox, y0+oy)
				if p.In(b) {
					dst.Set(p.X, p.Y, c)
				}
			}
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// clipSegment is Liang-Barsky clipping against r.
func clipSegment(x0, y0, x1, y1 float64, r image.Rectangle) (float64, float64, float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := x1-x0, y1-y0
	edges := [4][2]float64{
		{-dx, x0 - float64(r.Min.X)},
		{dx, float64(r.Max.X-1) - x0},
		{-dy, y0 - float64(r.Min.Y)},
		{dy, float64(r.Max.Y-1) - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

// FillPolygon sets every pixel of mask whose center lies inside the closed
// polygon pts, plus the polygon outline itself, to Ink.
func FillPolygon(mask *image.Gray, pts []image.Point) {
	if len(pts) == 0 {
		return
	}
	b := mask.Bounds()
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minY = minInt(minY, p.Y)
		maxY = maxInt(maxY, p.Y)
	}
	minY = maxInt(minY, b.Min.Y)
	maxY = minInt(maxY, b.Max.Y-1)

	xs := make([]float64, 0, 8)
	for y := minY; y <= maxY; y++ {
		xs = xs[:0]
		fy := float64(y) + 0.5
		for i := range pts {
			a := pts[i]
			c := pts[(i+1)%len(pts)]
			ay, cy := float64(a.Y), float64(c.Y)
			if (ay <= fy && cy > fy) || (cy <= fy && ay > fy) {
				t := (fy - ay) / (cy - ay)
				xs = append(xs, float64(a.X)+t*float64(c.X-a.X))
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0 := maxInt(b.Min.X, int(math.Ceil(xs[i]-0.5)))
			x1 := minInt(b.Max.X-1, int(math.Floor(xs[i+1]-0.5)))
			for x := x0; x <= x1; x++ {
				mask.Pix[mask.PixOffset(x, y)] = Ink
			}
		}
	}
	ink := color.Gray{Y: Ink}
	for i := range pts {
		a, c := pts[i], pts[(i+1)%len(pts)]
		DrawLine(mask, a.X, a.Y, c.X, c.Y, 1, ink)
	}
}

// StrokeRect draws the outline of r with the given line width, growing inward.
func StrokeRect(dst draw.Image, r image.Rectangle, width int, c color.Color) {
	src := image.NewUniform(c)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
}

// CrossOut returns a copy of img with both diagonals drawn across it.
func CrossOut(img image.Image, thickness int, c color.Color) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	w, h := b.Dx()-1, b.Dy()-1
	DrawLine(out, 0, 0, w, h, thickness, c)
	DrawLine(out, w, 0, 0, h, thickness, c)
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
