package sheet

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_PrintedSheet(t *testing.T) {
	l := DefaultLayout().Scaled(0.25)
	s := New(l)
	img := s.Render(RenderOptions{})

	require.Equal(t, l.XRes, img.Bounds().Dx())
	require.Equal(t, l.YRes, img.Bounds().Dy())

	// Outside the frame the page stays white.
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(5, 5))

	frame := s.Box(FrameBox).Rect
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, img.NRGBAAt(frame.Min.X, frame.Min.Y+100))

	c := s.Box("dataBox0(0,0)").Rect
	center := img.NRGBAAt((c.Min.X+c.Max.X)/2, (c.Min.Y+c.Max.Y)/2)
	assert.Equal(t, lightGray, center)

	c = s.Box("dataBox5(1,0)").Rect
	assert.Equal(t, darkGray, img.NRGBAAt((c.Min.X+c.Max.X)/2, (c.Min.Y+c.Max.Y)/2))
}

func TestRender_Text(t *testing.T) {
	l := DefaultLayout().Scaled(0.5)
	s := New(l)
	s.SetName("MILK")
	img := s.Render(RenderOptions{})

	r := s.Box(NameBox).Rect
	dark := 0
	for y := r.Min.Y + 5; y < r.Max.Y-5; y++ {
		for x := r.Min.X + 5; x < r.Max.X-5; x++ {
			if img.NRGBAAt(x, y).R < 50 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 50, "text should leave ink in the name box")
}

func TestRenderOptions_Tint(t *testing.T) {
	opts := DefaultRenderOptions()
	s := New(DefaultLayout())

	b := s.Box("dataBox0(0,0)")
	assert.Equal(t, lightGray, opts.Tint(b))

	b.Confidence = 0
	flagged := opts.Tint(b)
	assert.Equal(t, color.NRGBA{200, 0, 0, 255}, flagged)

	b.Confidence = 0.4
	partial := opts.Tint(b)
	assert.NotEqual(t, lightGray, partial)
	assert.NotEqual(t, flagged, partial)
	assert.Greater(t, partial.R, partial.G)
}
