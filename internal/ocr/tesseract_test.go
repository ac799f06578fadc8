package ocr

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// createImageWithText renders one line of text and scales it up so that
// Tesseract has enough pixels per glyph.
func createImageWithText(text string, scale int) *image.RGBA {
	w, h := len(text)*7+40, 40
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 20, 25, text, color.Black)

	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h*scale; y++ {
		for x := 0; x < w*scale; x++ {
			img.Set(x, y, small.At(x/scale, y/scale))
		}
	}
	return img
}

// skipIfUnavailable skips the test when the Tesseract library or its
// language data is not installed.
func skipIfUnavailable(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "tesseract") || strings.Contains(msg, "library") || strings.Contains(msg, "tessdata") || strings.Contains(msg, "language") {
		t.Skipf("Tesseract not available: %v", err)
	}
}

type recordingEngine struct {
	calls      []string
	acquireErr error
	releaseErr error
}

func (r *recordingEngine) Acquire() error {
	r.calls = append(r.calls, "acquire")
	return r.acquireErr
}

func (r *recordingEngine) Release() error {
	r.calls = append(r.calls, "release")
	return r.releaseErr
}

func (r *recordingEngine) RecognizeLine(image.Image) (string, error) {
	r.calls = append(r.calls, "recognize")
	return "X", nil
}

func TestUse_ScopesEngine(t *testing.T) {
	e := &recordingEngine{}
	err := Use(e, func(eng Engine) error {
		_, err := eng.RecognizeLine(nil)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"acquire", "recognize", "release"}, e.calls)
}

func TestUse_ReleasesOnError(t *testing.T) {
	e := &recordingEngine{}
	boom := errors.New("boom")
	err := Use(e, func(Engine) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"acquire", "release"}, e.calls)
}

func TestUse_AcquireFails(t *testing.T) {
	e := &recordingEngine{acquireErr: errors.New("no model")}
	called := false
	err := Use(e, func(Engine) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, []string{"acquire"}, e.calls)
}

func TestUse_ReleaseError(t *testing.T) {
	e := &recordingEngine{releaseErr: errors.New("close failed")}
	err := Use(e, func(Engine) error { return nil })
	assert.ErrorContains(t, err, "close failed")
}

func TestFunc(t *testing.T) {
	var e Engine = Func(func(image.Image) (string, error) { return "apple", nil })
	text, err := e.RecognizeLine(nil)
	require.NoError(t, err)
	assert.Equal(t, "apple", text)
}

func TestTesseract_NotAcquired(t *testing.T) {
	e := NewTesseract(TesseractConfig{})
	_, err := e.RecognizeLine(createImageWithText("HELLO", 1))
	assert.ErrorIs(t, err, ErrEngineNotAcquired)

	// Releasing an idle engine is allowed.
	assert.NoError(t, e.Release())
}

func TestTesseract_RecognizeLine(t *testing.T) {
	e := NewTesseract(TesseractConfig{Language: "eng"})
	err := e.Acquire()
	skipIfUnavailable(t, err)
	require.NoError(t, err)
	defer e.Release()

	assert.Error(t, e.Acquire(), "double acquire")

	text, err := e.RecognizeLine(createImageWithText("HELLO", 4))
	skipIfUnavailable(t, err)
	require.NoError(t, err)
	assert.Equal(t, text, strings.TrimSpace(text))
	assert.Contains(t, strings.ToUpper(text), "HELLO")
}
