// Package normalize rectifies a photographed sheet to its canonical layout.
package normalize

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/tagscan/internal/detection"
	"github.com/ironsheep/tagscan/internal/imaging"
	"github.com/ironsheep/tagscan/internal/sheet"
)

var log = logrus.WithField("component", "normalizer")

// OrderCorners sorts four frame corners into top-left, top-right,
// bottom-right, bottom-left. The top-left corner has the smallest x+y and the
// bottom-right the largest; the top-right corner has the smallest y-x and the
// bottom-left the largest.
func OrderCorners(q detection.Quad) [4]imaging.PointF {
	tl, tr, br, bl := q[0], q[0], q[0], q[0]
	for _, p := range q[1:] {
		if p.X+p.Y < tl.X+tl.Y {
			tl = p
		}
		if p.X+p.Y > br.X+br.Y {
			br = p
		}
		if p.Y-p.X < tr.Y-tr.X {
			tr = p
		}
		if p.Y-p.X > bl.Y-bl.X {
			bl = p
		}
	}
	return [4]imaging.PointF{imaging.Pt(tl), imaging.Pt(tr), imaging.Pt(br), imaging.Pt(bl)}
}

// Normalizer maps a photographed sheet back onto its canonical layout.
type Normalizer struct {
	Layout sheet.Layout
	Debug  imaging.DebugSink
}

// New returns a normalizer producing images of layout l.
func New(l sheet.Layout) *Normalizer {
	return &Normalizer{Layout: l, Debug: imaging.Discard}
}

// Normalize rectifies the quadrilateral q of img to a bird's eye view, scales
// it to the frame size of the layout and pads it with the white page margins.
// The result has exactly the layout resolution.
func (n *Normalizer) Normalize(img image.Image, q detection.Quad) (*image.NRGBA, error) {
	rectified, err := Rectify(img, q)
	if err != nil {
		return nil, err
	}

	frame := n.Layout.FrameRect()
	resized := imaging.Resize(rectified, frame.Dx(), frame.Dy())
	top, bottom, left, right := n.Layout.Margins()
	out := imaging.Pad(resized, top, bottom, left, right, color.White)

	log.WithFields(logrus.Fields{
		"rectified": rectified.Bounds().Size(),
		"output":    out.Bounds().Size(),
	}).Debug("normalized sheet")

	if imaging.Enabled(n.Debug) {
		n.Debug.WriteImage("5_rectified", rectified)
		n.Debug.WriteImage("6_resized", resized)
		n.Debug.WriteImage("7_output", out)
	}
	return out, nil
}

// Rectify warps the quadrilateral q of img onto an upright rectangle. The
// rectangle is as wide as the longer of the top and bottom edges and as high
// as the longer of the left and right edges.
func Rectify(img image.Image, q detection.Quad) (*image.NRGBA, error) {
	c := OrderCorners(q)
	tl, tr, br, bl := c[0], c[1], c[2], c[3]
	for i := range c {
		c[i].X -= float64(img.Bounds().Min.X)
		c[i].Y -= float64(img.Bounds().Min.Y)
	}

	w := max(int(br.Dist(bl)), int(tr.Dist(tl)))
	h := max(int(tr.Dist(br)), int(tl.Dist(bl)))
	if w < 2 || h < 2 {
		return nil, fmt.Errorf("frame %v is degenerate", q)
	}

	dst := [4]imaging.PointF{
		{X: 0, Y: 0},
		{X: float64(w - 1), Y: 0},
		{X: float64(w - 1), Y: float64(h - 1)},
		{X: 0, Y: float64(h - 1)},
	}
	m, err := imaging.PerspectiveTransform(c, dst)
	if err != nil {
		return nil, fmt.Errorf("frame %v: %w", q, err)
	}
	return imaging.WarpPerspective(img, m, w, h, color.Black)
}

// ToScan returns the position a layout point takes in the image the quad was
// found in. It is the inverse of Normalize and helps to relate normalized
// coordinates back to the scan.
func (n *Normalizer) ToScan(q detection.Quad, p image.Point) (image.Point, error) {
	c := OrderCorners(q)
	frame := n.Layout.FrameRect()
	fw, fh := float64(frame.Dx()-1), float64(frame.Dy()-1)
	src := [4]imaging.PointF{
		{X: float64(frame.Min.X), Y: float64(frame.Min.Y)},
		{X: float64(frame.Min.X) + fw, Y: float64(frame.Min.Y)},
		{X: float64(frame.Min.X) + fw, Y: float64(frame.Min.Y) + fh},
		{X: float64(frame.Min.X), Y: float64(frame.Min.Y) + fh},
	}
	m, err := imaging.PerspectiveTransform(src, c)
	if err != nil {
		return image.Point{}, err
	}
	r := m.Apply(imaging.Pt(p))
	return image.Pt(int(math.Round(r.X)), int(math.Round(r.Y))), nil
}
