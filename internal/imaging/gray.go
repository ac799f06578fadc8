package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/histogram"
)

// Ink is the mask value for foreground pixels. Background pixels are 0.
const Ink = 255

// ToGray converts img to an 8-bit luminance image whose bounds start at (0,0).
//
// Luminance uses the ITU-R BT.601 weights 0.299*R + 0.587*G + 0.114*B, the same
// weights the scanner drivers use for their own grayscale mode.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+w], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				out.Pix[y*out.Stride+x] = luma(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
				i += 4
			}
		}
	case *image.RGBA:
		for y := 0; y < h; y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				out.Pix[y*out.Stride+x] = luma(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
				i += 4
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, bb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				out.Pix[y*out.Stride+x] = luma(uint8(r>>8), uint8(g>>8), uint8(bb>>8))
			}
		}
	}
	return out
}

func luma(r, g, b uint8) uint8 {
	return uint8(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b) + 0.5)
}

// GaussianBlur smooths img with a gaussian kernel of the given radius and
// returns the grayscale result.
func GaussianBlur(img image.Image, radius float64) *image.Gray {
	if radius <= 0 {
		return ToGray(img)
	}
	return ToGray(blur.Gaussian(img, radius))
}

// AdaptiveThreshold marks a pixel as Ink when it is at least c darker than the
// mean of the blockSize x blockSize window around it. Windows are clipped at the
// image border. Uniform areas, paper or toner alike, come out as background.
func AdaptiveThreshold(src *image.Gray, blockSize int, c float64) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	// Integral image with one row and column of zero padding.
	iw := w + 1
	integral := make([]int64, iw*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(src.Pix[y*src.Stride+x])
			integral[(y+1)*iw+x+1] = integral[y*iw+x+1] + rowSum
		}
	}

	half := blockSize / 2
	for y := 0; y < h; y++ {
		y0 := maxInt(0, y-half)
		y1 := minInt(h, y+half+1)
		for x := 0; x < w; x++ {
			x0 := maxInt(0, x-half)
			x1 := minInt(w, x+half+1)
			sum := integral[y1*iw+x1] - integral[y0*iw+x1] - integral[y1*iw+x0] + integral[y0*iw+x0]
			mean := float64(sum) / float64((x1-x0)*(y1-y0))
			if float64(src.Pix[y*src.Stride+x]) <= mean-c {
				out.Pix[y*out.Stride+x] = Ink
			}
		}
	}
	return out
}

// OtsuLevel returns the gray level that best separates the histogram of src
// into two classes.
func OtsuLevel(src *image.Gray) uint8 {
	hist := histogram.NewRGBAHistogram(src)
	bins := hist.R.Bins

	total := 0
	sumAll := 0.0
	for i, n := range bins {
		total += n
		sumAll += float64(i * n)
	}
	if total == 0 {
		return 0
	}

	var (
		best     uint8
		bestVar  = -1.0
		weightB  int
		sumBelow float64
	)
	for t := 0; t < len(bins); t++ {
		weightB += bins[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumBelow += float64(t * bins[t])
		meanB := sumBelow / float64(weightB)
		meanF := (sumAll - sumBelow) / float64(weightF)
		between := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if between > bestVar {
			bestVar = between
			best = uint8(t)
		}
	}
	return best
}

// Threshold returns a mask where pixels brighter than level are Ink.
func Threshold(src *image.Gray, level uint8) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if level == math.MaxUint8 {
		return out
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if src.Pix[y*src.Stride+x] > level {
				out.Pix[y*out.Stride+x] = Ink
			}
		}
	}
	return out
}

// OtsuThreshold binarizes src at its Otsu level. Bright pixels become Ink.
func OtsuThreshold(src *image.Gray) (*image.Gray, uint8) {
	level := OtsuLevel(src)
	return Threshold(src, level), level
}

// Invert flips Ink and background in a mask.
func Invert(mask *image.Gray) *image.Gray {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = 255 - mask.Pix[y*mask.Stride+x]
		}
	}
	return out
}

// CountInk returns the number of non-zero pixels in mask.
func CountInk(mask *image.Gray) int {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	n := 0
	for y := 0; y < h; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// GrayToNRGBA expands a grayscale image to NRGBA.
func GrayToNRGBA(src *image.Gray) *image.NRGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := src.Pix[y*src.Stride+x]
			out.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
