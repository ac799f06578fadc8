package detection

import (
	"image"
	"image/color"
	"testing"
)

// smallLineFinder scales the line based finder down to test image sizes.
func smallLineFinder() *LineFrameFinder {
	f := NewLineFrameFinder()
	f.MinLineLength = 150
	f.CropMargin = 10
	f.HullEpsilon = 20
	return f
}

func quadBounds(q Quad) image.Rectangle {
	return BoundingRect(q[:])
}

func near(a, b image.Rectangle, tol int) bool {
	d := func(x, y int) bool { return x-y <= tol && y-x <= tol }
	return d(a.Min.X, b.Min.X) && d(a.Min.Y, b.Min.Y) && d(a.Max.X, b.Max.X) && d(a.Max.Y, b.Max.Y)
}

func TestContourFrameFinder_ClosedFrame(t *testing.T) {
	frame := image.Rect(20, 20, 380, 480)
	img := createFrameImage(400, 500, frame, 6)

	q, ok := NewContourFrameFinder().FindFrame(img)
	if !ok {
		t.Fatal("closed frame not found")
	}
	if got := quadBounds(q); !near(got, frame, 3) {
		t.Errorf("frame bounds: got %v, want about %v", got, frame)
	}
}

func TestContourFrameFinder_OffsetBounds(t *testing.T) {
	frame := image.Rect(20, 20, 380, 480)
	img := createFrameImage(400, 500, frame, 6)
	sub := img.SubImage(image.Rect(5, 5, 400, 500))

	q, ok := NewContourFrameFinder().FindFrame(sub)
	if !ok {
		t.Fatal("frame not found in sub image")
	}
	if got := quadBounds(q); !near(got, frame, 3) {
		t.Errorf("corners must be in input coordinates: got %v, want about %v", got, frame)
	}
}

// brokenFrameImage draws four separate bars with gaps at the corners, so no
// closed outline exists.
func brokenFrameImage() *image.RGBA {
	img := createTestImage(400, 500, color.White)
	fillRect(img, image.Rect(60, 40, 340, 46), color.Black)
	fillRect(img, image.Rect(60, 454, 340, 460), color.Black)
	fillRect(img, image.Rect(40, 60, 46, 440), color.Black)
	fillRect(img, image.Rect(354, 60, 360, 440), color.Black)
	return img
}

func TestFrameFinders_FallbackToLines(t *testing.T) {
	img := brokenFrameImage()

	if _, ok := NewContourFrameFinder().FindFrame(img); ok {
		t.Fatal("contour finder should not find a broken frame")
	}

	q, ok := Chain{NewContourFrameFinder(), smallLineFinder()}.FindFrame(img)
	if !ok {
		t.Fatal("line finder should reconstruct the broken frame")
	}
	if got := quadBounds(q); !near(got, image.Rect(40, 40, 360, 460), 12) {
		t.Errorf("frame bounds: got %v", got)
	}
}

func TestFrameFinders_RejectSmallFrame(t *testing.T) {
	// The frame covers about 6% of the image.
	img := createFrameImage(400, 500, image.Rect(150, 200, 260, 310), 3)

	if _, ok := NewContourFrameFinder().FindFrame(img); ok {
		t.Error("contour finder accepted a small frame")
	}
	lf := smallLineFinder()
	lf.MinLineLength = 80
	if _, ok := lf.FindFrame(img); ok {
		t.Error("line finder accepted a small frame")
	}
}

func TestFrameFinders_Blank(t *testing.T) {
	img := createTestImage(300, 300, color.White)
	if _, ok := (Chain{NewContourFrameFinder(), smallLineFinder()}).FindFrame(img); ok {
		t.Error("blank page must not yield a frame")
	}
}
