package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// EncodedImage contains an image encoded as base64 PNG, ready to be embedded
// in a JSON tool response.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Encode scales img by scale (1.0 keeps the size) and encodes it as base64 PNG.
func Encode(img image.Image, scale float64) (*EncodedImage, error) {
	out := img
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(img.Bounds().Dx()) * scale)
		newHeight := int(float64(img.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %.3f leaves an empty image", scale)
		}
		out = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Crop extracts r from img. The rectangle is clipped to the image bounds and the
// result has its origin at (0,0).
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, img.Bounds())
	}
	return imaging.Crop(img, r), nil
}

// CropRelative extracts the region given in fractions of the image size.
// (0,0,.5,.5) is the top-left quadrant.
func CropRelative(img image.Image, x0, y0, x1, y1 float64) (*image.NRGBA, image.Rectangle, error) {
	b := img.Bounds()
	if x0 < 0 || y0 < 0 || x1 > 1 || y1 > 1 || x0 >= x1 || y0 >= y1 {
		return nil, image.Rectangle{}, fmt.Errorf("invalid relative region (%.3f,%.3f)-(%.3f,%.3f)", x0, y0, x1, y1)
	}
	r := image.Rect(
		b.Min.X+int(x0*float64(b.Dx())),
		b.Min.Y+int(y0*float64(b.Dy())),
		b.Min.X+int(x1*float64(b.Dx())),
		b.Min.Y+int(y1*float64(b.Dy())),
	)
	out, err := Crop(img, r)
	return out, r, err
}

// Resize scales img to exactly width x height using bilinear interpolation.
func Resize(img image.Image, width, height int) *image.NRGBA {
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, width, height, imaging.Linear)
}

// ResizeToWidth scales img to the given width keeping the aspect ratio.
func ResizeToWidth(img image.Image, width int) *image.NRGBA {
	return imaging.Resize(img, width, 0, imaging.Linear)
}

// Pad surrounds img with a border of the given color.
func Pad(img image.Image, top, bottom, left, right int, c color.Color) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx()+left+right, b.Dy()+top+bottom, c)
	return imaging.Paste(canvas, img, image.Pt(left, top))
}

// RotateBound rotates img clockwise by degrees and grows the canvas so that no
// part of the input is cut off. Newly exposed corners are black.
func RotateBound(img image.Image, degrees float64) image.Image {
	if degrees == 0 {
		return img
	}
	rotated := transform.Rotate(img, degrees, &transform.RotationOptions{ResizeBounds: true})
	return imaging.Overlay(imaging.New(rotated.Bounds().Dx(), rotated.Bounds().Dy(), color.Black), rotated, image.Pt(0, 0), 1.0)
}

// Blend mixes fg over bg with the given opacity in [0,1].
func Blend(bg, fg image.Image, opacity float64) *image.RGBA {
	return blend.Opacity(bg, fg, opacity)
}
