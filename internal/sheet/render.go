package sheet

import (
	"image"
	"image/color"

	"github.com/ironsheep/tagscan/internal/imaging"
)

// RenderOptions control how a sheet is drawn.
type RenderOptions struct {
	// Boxes less confident than this are tinted with FlagColor.
	ConfidenceThreshold float64
	FlagColor           color.Color

	// TextHeight is the glyph height in pixels at the default 2480 px width.
	TextHeight int
}

// DefaultRenderOptions returns the options used for review images.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		ConfidenceThreshold: 0.5,
		FlagColor:           color.NRGBA{R: 200, A: 255},
		TextHeight:          50,
	}
}

var (
	lightGray = color.NRGBA{220, 220, 220, 255}
	darkGray  = color.NRGBA{190, 190, 190, 255}
)

// Background returns the printed fill of a box: white for the frame, dark gray
// for the header and alternating light and dark gray for tag rows.
func Background(b *Box) color.NRGBA {
	switch {
	case b.Kind == KindFrame:
		return color.NRGBA{255, 255, 255, 255}
	case b.Kind == KindTag && (b.Row-1)%2 == 0:
		return lightGray
	default:
		return darkGray
	}
}

// Tint returns the fill a box gets in a review image. Unconfident boxes are
// pulled toward the flag color, the more the lower their confidence.
func (o RenderOptions) Tint(b *Box) color.NRGBA {
	bg := Background(b)
	if b.Kind == KindFrame || b.Confidence >= o.ConfidenceThreshold || o.FlagColor == nil {
		return bg
	}
	t := 0.5
	if o.ConfidenceThreshold > 0 {
		t += 0.5 * (1 - b.Confidence/o.ConfidenceThreshold)
	}
	return imaging.Tint(bg, o.FlagColor, t)
}

// Render draws the sheet at its layout resolution: every box with its fill,
// its outline centered on the box edges and its text in the middle. With
// zero options the sheet is drawn as printed, without tints.
func (s *Sheet) Render(opts RenderOptions) *image.NRGBA {
	l := s.layout
	img := image.NewNRGBA(image.Rect(0, 0, l.XRes, l.YRes))
	fillRect(img, img.Bounds(), color.White)

	textHeight := opts.TextHeight
	if textHeight <= 0 {
		textHeight = DefaultRenderOptions().TextHeight
	}
	textHeight = max(7, textHeight*l.XRes/2480)

	black := color.Black
	for _, b := range s.boxes {
		fillRect(img, b.Rect, opts.Tint(b))
		lw := max(1, b.LineWidth)
		half := lw / 2
		outline := image.Rect(b.Rect.Min.X-half, b.Rect.Min.Y-half, b.Rect.Max.X+lw-half, b.Rect.Max.Y+lw-half)
		imaging.StrokeRect(img, outline, lw, black)
		if b.Text != "" {
			log.WithField("box", b.Name).Debug("drawing text")
			imaging.DrawTextCentered(img, b.Rect.Inset(lw), b.Text, textHeight, black)
		}
	}
	return img
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.Color) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, y):img.PixOffset(r.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+1], row[i+2], row[i+3] = n.R, n.G, n.B, n.A
		}
	}
}
