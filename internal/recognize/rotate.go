package recognize

import (
	"image"

	"github.com/ironsheep/tagscan/internal/detection"
	"github.com/ironsheep/tagscan/internal/imaging"
)

// Straighten cuts the smallest rotated rectangle enclosing the ink of mask
// out of src and turns it so that its longer side runs horizontally. The
// rectangle is grown by the factor grow on both sides first. mask and src
// share their coordinates. ok is false if mask holds no ink.
func Straighten(src image.Image, mask *image.Gray, grow float64) (out *image.NRGBA, ok bool) {
	contours := detection.FindContours(mask, detection.External, 0)
	if len(contours) == 0 {
		return nil, false
	}
	joined := make([]image.Point, 0)
	for _, c := range contours {
		joined = append(joined, c...)
	}

	r := detection.MinAreaRect(joined)
	w, h := r.Width*grow, r.Height*grow
	angle := r.Angle
	if w < h {
		angle -= 90
		w, h = h, w
	}
	return imaging.ExtractRotated(src, r.Center, max(1, int(w)), max(1, int(h)), angle), true
}

// ocrInput blends the Otsu binarization of img over img with the given weight.
func ocrInput(img image.Image, weight float64) image.Image {
	bw, _ := imaging.OtsuThreshold(imaging.ToGray(img))
	return imaging.Blend(img, imaging.GrayToNRGBA(bw), weight)
}
