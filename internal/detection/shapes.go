package detection

import (
	"image"
	"sort"

	"github.com/ironsheep/tagscan/internal/imaging"
)

// Component describes one connected region of a binary mask.
type Component struct {
	// Label is the value the region's pixels carry in Labels.L.
	Label int32

	// Area is the number of pixels in the region.
	Area int

	// Bounds is the bounding box (Max exclusive).
	Bounds image.Rectangle

	// Centroid is the mean pixel position.
	Centroid imaging.PointF

	// Seed is the first pixel of the region in raster order, which is its
	// topmost and, within that row, leftmost pixel.
	Seed image.Point
}

// Labels is the result of connected component labeling.
type Labels struct {
	Width, Height int

	// L holds one label per pixel in row-major order; 0 marks pixels that
	// belong to no component.
	L []int32

	// Components[i] describes label i+1.
	Components []Component
}

// At returns the label at (x,y), or 0 outside the image.
func (l *Labels) At(x, y int) int32 {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return 0
	}
	return l.L[y*l.Width+x]
}

// Label groups the Ink pixels of mask into connected components. Connectivity
// is 8 (diagonal neighbors join) or 4.
func Label(mask *image.Gray, connectivity int) *Labels {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	return label(w, h, connectivity, func(x, y int) bool {
		return mask.Pix[y*mask.Stride+x] != 0
	})
}

// LabelBackground groups the background pixels of mask into 4-connected
// components. Regions not touching the image border are holes.
func LabelBackground(mask *image.Gray) *Labels {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	return label(w, h, 4, func(x, y int) bool {
		return mask.Pix[y*mask.Stride+x] == 0
	})
}

func label(w, h, connectivity int, member func(x, y int) bool) *Labels {
	l := &Labels{Width: w, Height: h, L: make([]int32, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if l.L[y*w+x] != 0 || !member(x, y) {
				continue
			}
			id := int32(len(l.Components) + 1)
			l.Components = append(l.Components, floodFill(l, member, x, y, id, connectivity))
		}
	}
	return l
}

var (
	neighbors8 = []image.Point{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
	neighbors4 = []image.Point{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
)

// floodFill labels the region containing (startX,startY) and returns its statistics.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large regions such as a sheet's paper area.
func floodFill(l *Labels, member func(x, y int) bool, startX, startY int, id int32, connectivity int) Component {
	neighbors := neighbors8
	if connectivity == 4 {
		neighbors = neighbors4
	}

	c := Component{
		Label:  id,
		Seed:   image.Pt(startX, startY),
		Bounds: image.Rect(startX, startY, startX+1, startY+1),
	}
	var sumX, sumY float64

	l.L[startY*l.Width+startX] = id
	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c.Area++
		sumX += float64(p.X)
		sumY += float64(p.Y)
		c.Bounds = c.Bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

		for _, d := range neighbors {
			q := p.Add(d)
			if q.X < 0 || q.X >= l.Width || q.Y < 0 || q.Y >= l.Height {
				continue
			}
			i := q.Y*l.Width + q.X
			if l.L[i] != 0 || !member(q.X, q.Y) {
				continue
			}
			l.L[i] = id
			stack = append(stack, q)
		}
	}

	c.Centroid = imaging.PointF{X: sumX / float64(c.Area), Y: sumY / float64(c.Area)}
	return c
}

// Mask renders the listed labels back into a binary mask.
func (l *Labels) Mask(keep func(Component) bool) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, l.Width, l.Height))
	selected := make([]bool, len(l.Components)+1)
	for _, c := range l.Components {
		selected[c.Label] = keep(c)
	}
	for i, id := range l.L {
		if id != 0 && selected[id] {
			out.Pix[(i/l.Width)*out.Stride+i%l.Width] = imaging.Ink
		}
	}
	return out
}

// Contour is a closed boundary, listed point by point.
type Contour []image.Point

// ContourMode selects which boundaries FindContours reports.
type ContourMode int

const (
	// External reports only the outer boundary of each component.
	External ContourMode = iota

	// List additionally reports the boundary of every hole inside a component.
	List
)

// FindContours traces the boundaries of the Ink regions in mask, largest
// enclosed area first. Regions whose bounding box covers fewer than minBoxArea
// pixels are skipped without tracing.
func FindContours(mask *image.Gray, mode ContourMode, minBoxArea int) []Contour {
	contours := traceAll(Label(mask, 8), minBoxArea, false)
	if mode == List {
		contours = append(contours, traceAll(LabelBackground(mask), minBoxArea, true)...)
	}
	sort.SliceStable(contours, func(i, j int) bool {
		return ContourArea(contours[i]) > ContourArea(contours[j])
	})
	return contours
}

func traceAll(l *Labels, minBoxArea int, holesOnly bool) []Contour {
	out := make([]Contour, 0)
	for _, c := range l.Components {
		if c.Bounds.Dx()*c.Bounds.Dy() < minBoxArea {
			continue
		}
		if holesOnly && touchesBorder(c.Bounds, l.Width, l.Height) {
			continue
		}
		out = append(out, traceBoundary(l, c.Label, c.Seed))
	}
	return out
}

func touchesBorder(r image.Rectangle, w, h int) bool {
	return r.Min.X == 0 || r.Min.Y == 0 || r.Max.X == w || r.Max.Y == h
}

// chain8 lists the eight moves in counterclockwise order starting east,
// with y growing downward.
var chain8 = [8]image.Point{{1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1}}

// traceBoundary follows the outer boundary of the labeled region starting at its
// seed, which must be the region's first pixel in raster order.
func traceBoundary(l *Labels, id int32, start image.Point) Contour {
	contour := Contour{start}
	inside := func(p image.Point) bool { return l.At(p.X, p.Y) == id }

	p := start
	dir := 7
	var second image.Point
	limit := 4*l.Width*l.Height + 8
	for step := 0; step < limit; step++ {
		from := (dir + 7) % 8
		if dir%2 == 1 {
			from = (dir + 6) % 8
		}
		moved := false
		for i := 0; i < 8; i++ {
			d := (from + i) % 8
			q := p.Add(chain8[d])
			if inside(q) {
				p, dir, moved = q, d, true
				break
			}
		}
		if !moved {
			// Isolated pixel.
			return contour
		}
		if step == 0 {
			second = p
		} else if contour[len(contour)-1] == start && p == second {
			return contour[:len(contour)-1]
		}
		contour = append(contour, p)
	}
	return contour
}
