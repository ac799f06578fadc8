package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderText draws s with the 7x13 bitmap face onto a transparent image and
// scales it to the given height. Returns nil for an empty string.
func RenderText(s string, height int, c color.Color) *image.NRGBA {
	if s == "" || height <= 0 {
		return nil
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	w := d.MeasureString(s).Ceil()
	h := face.Metrics().Height.Ceil()
	if w <= 0 {
		return nil
	}

	small := image.NewNRGBA(image.Rect(0, 0, w, h))
	d.Dst = small
	d.Src = image.NewUniform(c)
	d.Dot = fixed.P(0, face.Metrics().Ascent.Ceil())
	d.DrawString(s)

	scale := float64(height) / float64(h)
	return imaging.Resize(small, int(float64(w)*scale+0.5), height, imaging.NearestNeighbor)
}

// DrawTextCentered renders s into the middle of r on dst. Text wider than r
// is shrunk to fit.
func DrawTextCentered(dst draw.Image, r image.Rectangle, s string, height int, c color.Color) {
	txt := RenderText(s, height, c)
	if txt == nil {
		return
	}
	if txt.Bounds().Dx() > r.Dx() && r.Dx() > 0 {
		txt = imaging.Resize(txt, r.Dx(), 0, imaging.Linear)
	}
	tb := txt.Bounds()
	at := image.Pt(r.Min.X+(r.Dx()-tb.Dx())/2, r.Min.Y+(r.Dy()-tb.Dy())/2)
	draw.Draw(dst, tb.Add(at), txt, tb.Min, draw.Over)
}
