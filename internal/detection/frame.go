package detection

import (
	"image"
	"image/color"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/tagscan/internal/imaging"
)

var log = logrus.WithField("component", "detection")

// Quad is the outer frame of a sheet as four corner points in no particular order.
type Quad [4]image.Point

// Area returns the area enclosed by q when its points are taken in hull order.
func (q Quad) Area() float64 {
	return ContourArea(ConvexHull(q[:]))
}

// FrameFinder locates the printed outer frame of a sheet.
type FrameFinder interface {
	// FindFrame returns the frame corners in img coordinates, or false if no
	// plausible frame covering enough of img was found.
	FindFrame(img image.Image) (Quad, bool)
}

// Chain tries each finder in turn and returns the first frame found.
type Chain []FrameFinder

// FindFrame implements FrameFinder.
func (c Chain) FindFrame(img image.Image) (Quad, bool) {
	for _, f := range c {
		if q, ok := f.FindFrame(img); ok {
			return q, true
		}
	}
	return Quad{}, false
}

// Threshold holds the preprocessing shared by both frame finders: blur, then
// an adaptive threshold that marks dark print as Ink.
type Threshold struct {
	BlurRadius float64
	BlockSize  int
	C          float64
}

// DefaultThreshold returns the preprocessing used for 300 dpi scans.
func DefaultThreshold() Threshold {
	return Threshold{BlurRadius: 3, BlockSize: 11, C: 2}
}

// Apply returns the blurred grayscale image and the ink mask.
func (t Threshold) Apply(img image.Image) (*image.Gray, *image.Gray) {
	blurred := imaging.GaussianBlur(img, t.BlurRadius)
	return blurred, imaging.AdaptiveThreshold(blurred, t.BlockSize, t.C)
}

// ContourFrameFinder looks for the largest outline that simplifies to a
// quadrilateral.
type ContourFrameFinder struct {
	Threshold Threshold

	// Epsilon is the polygon simplification tolerance as a fraction of the
	// outline's perimeter.
	Epsilon float64

	// MinFillRatio is the least fraction of the image the frame's bounding box
	// must cover.
	MinFillRatio float64

	Debug imaging.DebugSink
}

// NewContourFrameFinder returns a finder with the default settings.
func NewContourFrameFinder() *ContourFrameFinder {
	return &ContourFrameFinder{
		Threshold:    DefaultThreshold(),
		Epsilon:      0.003,
		MinFillRatio: 0.5,
		Debug:        imaging.Discard,
	}
}

// FindFrame implements FrameFinder.
func (f *ContourFrameFinder) FindFrame(img image.Image) (Quad, bool) {
	debug := imaging.WithPrefix(f.Debug, "contourFrame")
	b := img.Bounds()
	imgArea := float64(b.Dx() * b.Dy())
	if imgArea == 0 {
		return Quad{}, false
	}

	blurred, thresh := f.Threshold.Apply(img)
	debug.WriteImage("0_input", img)
	debug.WriteImage("1_blurred", blurred)
	debug.WriteImage("2_threshold", thresh)

	minBox := int(f.MinFillRatio * imgArea)
	for _, c := range FindContours(thresh, List, minBox) {
		approx := ApproxPolygon(c, f.Epsilon*ArcLength(c))
		if len(approx) != 4 {
			continue
		}

		r := BoundingRect(approx)
		fill := float64(r.Dx()*r.Dy()) / imgArea
		log.WithFields(logrus.Fields{"fill_ratio": fill, "corners": approx}).Debug("largest quadrilateral outline")
		if fill < f.MinFillRatio {
			return Quad{}, false
		}

		var q Quad
		for i, p := range approx {
			q[i] = p.Add(b.Min)
		}
		if imaging.Enabled(debug) {
			debug.WriteImage("3_frame", drawQuad(img, q))
		}
		return q, true
	}
	log.Debug("no quadrilateral outline found")
	return Quad{}, false
}

// LineFrameFinder reconstructs the frame from long straight lines when the
// outline is broken, for example by a fold or a staple.
type LineFrameFinder struct {
	Threshold Threshold

	// MinLineLength is the number of ink pixels a line needs.
	MinLineLength int

	// CropMargin is cut from every side before the search, hiding scan edges.
	CropMargin int

	// LineThickness is used when rasterizing the detected lines.
	LineThickness int

	// CornerFraction selects pixels whose Harris response exceeds this share
	// of the strongest response.
	CornerFraction float64

	// HullEpsilon simplifies the hull of the corner candidates, in pixels.
	HullEpsilon float64

	// MinFillRatio is the least fraction of the image the frame must cover.
	MinFillRatio float64

	Debug imaging.DebugSink
}

// NewLineFrameFinder returns a finder with the default settings.
func NewLineFrameFinder() *LineFrameFinder {
	return &LineFrameFinder{
		Threshold:      DefaultThreshold(),
		MinLineLength:  800,
		CropMargin:     40,
		LineThickness:  2,
		CornerFraction: 0.5,
		HullEpsilon:    200,
		MinFillRatio:   0.5,
		Debug:          imaging.Discard,
	}
}

// FindFrame implements FrameFinder.
func (f *LineFrameFinder) FindFrame(img image.Image) (Quad, bool) {
	debug := imaging.WithPrefix(f.Debug, "lineFrame")
	b := img.Bounds()
	m := f.CropMargin
	inner := image.Rect(b.Min.X+m, b.Min.Y+m, b.Max.X-m, b.Max.Y-m)
	if inner.Dx() <= 0 || inner.Dy() <= 0 {
		return Quad{}, false
	}
	cropped, err := imaging.Crop(img, inner)
	if err != nil {
		return Quad{}, false
	}
	w, h := cropped.Bounds().Dx(), cropped.Bounds().Dy()

	blurred, thresh := f.Threshold.Apply(cropped)
	debug.WriteImage("0_input", cropped)
	debug.WriteImage("1_blurred", blurred)
	debug.WriteImage("2_threshold", thresh)

	lines := HoughLines(thresh, f.MinLineLength)
	log.WithField("lines", len(lines)).Debug("hough lines")
	if len(lines) == 0 {
		return Quad{}, false
	}

	lineMask := image.NewGray(image.Rect(0, 0, w, h))
	for _, l := range lines {
		l.Draw(lineMask, f.LineThickness)
	}
	debug.WriteImage("3_lines", lineMask)

	corners := Harris(lineMask, 2, 0.04).Points(f.CornerFraction)
	if len(corners) < 3 {
		return Quad{}, false
	}
	hull := ConvexHull(corners)
	approx := ApproxPolygon(hull, f.HullEpsilon)
	if len(approx) != 4 {
		rect := MinAreaRect(hull)
		approx = approx[:0]
		for _, c := range rect.Corners() {
			approx = append(approx, image.Pt(int(math.Round(c.X)), int(math.Round(c.Y))))
		}
	}

	fill := ContourArea(approx) / float64(w*h)
	log.WithFields(logrus.Fields{"fill_ratio": fill, "corners": approx}).Debug("line based frame")
	if fill < f.MinFillRatio {
		return Quad{}, false
	}

	var q Quad
	for i, p := range approx {
		q[i] = p.Add(inner.Min)
	}
	if imaging.Enabled(debug) {
		debug.WriteImage("4_frame", drawQuad(img, q))
	}
	return q, true
}

// drawQuad outlines q on a copy of img.
func drawQuad(img image.Image, q Quad) image.Image {
	out, err := imaging.Crop(img, img.Bounds())
	if err != nil {
		return img
	}
	b := img.Bounds()
	hull := ConvexHull(q[:])
	red := color.NRGBA{R: 255, A: 255}
	for i := range hull {
		a, c := hull[i].Sub(b.Min), hull[(i+1)%len(hull)].Sub(b.Min)
		imaging.DrawLine(out, a.X, a.Y, c.X, c.Y, 5, red)
	}
	return out
}
