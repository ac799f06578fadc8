package recognize

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/tagscan/internal/detection"
	"github.com/ironsheep/tagscan/internal/imaging"
)

var black = color.NRGBA{0, 0, 0, 255}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawBars draws a row of upright bars centered on c, roughly a third of
// width wide, like a handwritten tag seen by the thresholding.
func drawBars(img draw.Image, c image.Point, width int) {
	n := max(3, width/66)
	total := (n-1)*22 + 10
	x := c.X - total/2
	for i := 0; i < n; i++ {
		fill(img, image.Rect(x+i*22, c.Y-18, x+i*22+10, c.Y+18), black)
	}
}

func center(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

func grayCell(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fill(img, img.Bounds(), color.NRGBA{220, 220, 220, 255})
	return img
}

func isolate(t *testing.T, img image.Image) *image.Gray {
	t.Helper()
	c := DefaultConfig()
	return c.isolateInk(imaging.GaussianBlur(img, c.BlurRadius), logrus.NewEntry(logrus.StandardLogger()), imaging.Discard)
}

func TestIsolateInk_Blank(t *testing.T) {
	assert.Nil(t, isolate(t, grayCell(400, 170)))
}

func TestIsolateInk_Tag(t *testing.T) {
	img := grayCell(400, 170)
	drawBars(img, image.Pt(200, 85), 400)
	mask := isolate(t, img)
	require.NotNil(t, mask)

	// The bars are joined into one blob.
	contours := detection.FindContours(mask, detection.External, 0)
	require.Len(t, contours, 1)
	r := detection.BoundingRect(contours[0])
	assert.True(t, r.Overlaps(image.Rect(150, 67, 250, 103)), "blob %v", r)
	assert.Greater(t, imaging.CountInk(mask), 0)
}

func TestIsolateInk_Noise(t *testing.T) {
	img := grayCell(400, 170)
	for _, p := range []image.Point{{100, 50}, {200, 90}, {300, 120}} {
		fill(img, image.Rect(p.X, p.Y, p.X+3, p.Y+3), black)
	}
	assert.Nil(t, isolate(t, img))
}

func TestIsolateInk_StrayLine(t *testing.T) {
	img := grayCell(400, 170)
	fill(img, image.Rect(60, 80, 340, 83), black)
	assert.Nil(t, isolate(t, img))
}

func TestIsolateInk_NearBorder(t *testing.T) {
	img := grayCell(400, 170)
	fill(img, image.Rect(2, 4, 12, 40), black)
	assert.Nil(t, isolate(t, img))
}

func TestRefineBox(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 400, 260))
	fill(img, img.Bounds(), color.White)
	imaging.StrokeRect(img, image.Rect(49, 39, 352, 202), 3, black)

	c := DefaultConfig()
	got := c.refineBox(imaging.ToGray(img), image.Rect(58, 34, 358, 194), imaging.Discard)
	assert.InDelta(t, 55, got.Min.X, 3)
	assert.InDelta(t, 45, got.Min.Y, 3)
	assert.InDelta(t, 345, got.Max.X, 3)
	assert.InDelta(t, 195, got.Max.Y, 3)
}

func TestRefineBox_NoCorners(t *testing.T) {
	img := grayCell(200, 200)
	c := DefaultConfig()
	got := c.refineBox(imaging.ToGray(img), image.Rect(50, 50, 150, 150), imaging.Discard)
	assert.True(t, got.Empty())
}

func rotatedMask(w, h int, r detection.RotatedRect) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, w, h))
	pts := make([]image.Point, 0, 4)
	for _, p := range r.Corners() {
		pts = append(pts, image.Pt(int(p.X+0.5), int(p.Y+0.5)))
	}
	imaging.FillPolygon(mask, pts)
	return mask
}

func TestStraighten(t *testing.T) {
	src := grayCell(300, 200)
	for _, angle := range []float64{0, 20, -30} {
		mask := rotatedMask(300, 200, detection.RotatedRect{
			Center: imaging.PointF{X: 150, Y: 100}, Width: 120, Height: 30, Angle: angle,
		})
		out, ok := Straighten(src, mask, 1.1)
		require.True(t, ok)
		size := out.Bounds().Size()
		assert.InDelta(t, 132, size.X, 4, "angle %v", angle)
		assert.InDelta(t, 33, size.Y, 4, "angle %v", angle)
	}
}

func TestStraighten_Upright(t *testing.T) {
	src := grayCell(300, 200)
	mask := image.NewGray(src.Bounds())
	fill(mask, image.Rect(130, 40, 160, 160), color.Gray{Y: imaging.Ink})
	out, ok := Straighten(src, mask, 1.1)
	require.True(t, ok)
	assert.Greater(t, out.Bounds().Dx(), out.Bounds().Dy())
}

func TestStraighten_Empty(t *testing.T) {
	_, ok := Straighten(grayCell(50, 50), image.NewGray(image.Rect(0, 0, 50, 50)), 1.1)
	assert.False(t, ok)
}
