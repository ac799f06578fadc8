package detection

import (
	"image"

	"github.com/ironsheep/tagscan/internal/imaging"
)

// CornerResponse holds the Harris corner response of every pixel.
type CornerResponse struct {
	Width, Height int
	R             []float64
	Max           float64
}

// Harris computes the Harris corner response det(M) - k*trace(M)^2, where M sums
// the products of 3x3 Sobel derivatives over a blockSize window. Derivatives at
// the border repeat the edge pixels.
func Harris(gray *image.Gray, blockSize int, k float64) *CornerResponse {
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	res := &CornerResponse{Width: w, Height: h, R: make([]float64, w*h)}
	if w == 0 || h == 0 {
		return res
	}

	px := func(x, y int) float64 {
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		return float64(gray.Pix[y*gray.Stride+x])
	}

	// Integral images of Ixx, Iyy and Ixy, one zero row and column of padding.
	iw := w + 1
	sxx := make([]float64, iw*(h+1))
	syy := make([]float64, iw*(h+1))
	sxy := make([]float64, iw*(h+1))
	for y := 0; y < h; y++ {
		var rxx, ryy, rxy float64
		for x := 0; x < w; x++ {
			gx := (px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1)) - (px(x-1, y-1) + 2*px(x-1, y) + px(x-1, y+1))
			gy := (px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1)) - (px(x-1, y-1) + 2*px(x, y-1) + px(x+1, y-1))
			rxx += gx * gx
			ryy += gy * gy
			rxy += gx * gy
			i := (y+1)*iw + x + 1
			up := y*iw + x + 1
			sxx[i] = sxx[up] + rxx
			syy[i] = syy[up] + ryy
			sxy[i] = sxy[up] + rxy
		}
	}

	lo := blockSize / 2
	hi := blockSize - lo
	box := func(s []float64, x0, y0, x1, y1 int) float64 {
		return s[y1*iw+x1] - s[y0*iw+x1] - s[y1*iw+x0] + s[y0*iw+x0]
	}
	for y := 0; y < h; y++ {
		y0, y1 := maxInt(0, y-lo), minInt(h, y+hi)
		for x := 0; x < w; x++ {
			x0, x1 := maxInt(0, x-lo), minInt(w, x+hi)
			a := box(sxx, x0, y0, x1, y1)
			c := box(syy, x0, y0, x1, y1)
			b := box(sxy, x0, y0, x1, y1)
			r := a*c - b*b - k*(a+c)*(a+c)
			res.R[y*w+x] = r
			if r > res.Max {
				res.Max = r
			}
		}
	}
	return res
}

// Above returns a mask of the pixels whose response exceeds fraction*Max.
func (c *CornerResponse) Above(fraction float64) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, c.Width, c.Height))
	if c.Max <= 0 {
		return out
	}
	limit := fraction * c.Max
	for i, r := range c.R {
		if r > limit {
			out.Pix[(i/c.Width)*out.Stride+i%c.Width] = imaging.Ink
		}
	}
	return out
}

// Points lists the pixels whose response exceeds fraction*Max.
func (c *CornerResponse) Points(fraction float64) []image.Point {
	pts := make([]image.Point, 0)
	if c.Max <= 0 {
		return pts
	}
	limit := fraction * c.Max
	for i, r := range c.R {
		if r > limit {
			pts = append(pts, image.Pt(i%c.Width, i/c.Width))
		}
	}
	return pts
}

// Centroids returns the centers of the connected corner regions whose
// response exceeds fraction*Max.
func (c *CornerResponse) Centroids(fraction float64) []imaging.PointF {
	l := Label(c.Above(fraction), 8)
	out := make([]imaging.PointF, 0, len(l.Components))
	for _, comp := range l.Components {
		out = append(out, comp.Centroid)
	}
	return out
}
