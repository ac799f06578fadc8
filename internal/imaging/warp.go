package imaging

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// PointF is a point with sub-pixel coordinates.
type PointF struct {
	X, Y float64
}

// Pt converts an integer point.
func Pt(p image.Point) PointF {
	return PointF{X: float64(p.X), Y: float64(p.Y)}
}

// Dist returns the euclidean distance between p and q.
func (p PointF) Dist(q PointF) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Homography is a 3x3 projective transform in row-major order.
type Homography [9]float64

// ErrSingular is returned when four points do not define a projective transform,
// for example when three of them are collinear.
var ErrSingular = errors.New("imaging: singular transform")

// PerspectiveTransform computes the homography mapping each src[i] onto dst[i].
func PerspectiveTransform(src, dst [4]PointF) (Homography, error) {
	// Eight unknowns h0..h7 with h8 = 1, two equations per correspondence.
	var a [8][9]float64
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a[2*i] = [9]float64{x, y, 1, 0, 0, 0, -x * u, -y * u, u}
		a[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -x * v, -y * v, v}
	}

	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return Homography{}, ErrSingular
		}
		a[col], a[pivot] = a[pivot], a[col]
		for r := 0; r < 8; r++ {
			if r == col {
				continue
			}
			f := a[r][col] / a[col][col]
			for c := col; c < 9; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	var m Homography
	for i := 0; i < 8; i++ {
		m[i] = a[i][8] / a[i][i]
	}
	m[8] = 1
	return m, nil
}

// Apply maps p through the transform.
func (m Homography) Apply(p PointF) PointF {
	w := m[6]*p.X + m[7]*p.Y + m[8]
	return PointF{
		X: (m[0]*p.X + m[1]*p.Y + m[2]) / w,
		Y: (m[3]*p.X + m[4]*p.Y + m[5]) / w,
	}
}

// Invert returns the inverse transform.
func (m Homography) Invert() (Homography, error) {
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) - m[1]*(m[3]*m[8]-m[5]*m[6]) + m[2]*(m[3]*m[7]-m[4]*m[6])
	if math.Abs(det) < 1e-12 {
		return Homography{}, ErrSingular
	}
	inv := Homography{
		m[4]*m[8] - m[5]*m[7], m[2]*m[7] - m[1]*m[8], m[1]*m[5] - m[2]*m[4],
		m[5]*m[6] - m[3]*m[8], m[0]*m[8] - m[2]*m[6], m[2]*m[3] - m[0]*m[5],
		m[3]*m[7] - m[4]*m[6], m[1]*m[6] - m[0]*m[7], m[0]*m[4] - m[1]*m[3],
	}
	for i := range inv {
		inv[i] /= det
	}
	return inv, nil
}

// WarpPerspective renders a width x height image whose pixel (x,y) shows the
// point of src that m maps onto (x,y). Samples outside src take the fill color,
// or the nearest edge pixel when fill is nil.
func WarpPerspective(src image.Image, m Homography, width, height int, fill color.Color) (*image.NRGBA, error) {
	inv, err := m.Invert()
	if err != nil {
		return nil, err
	}
	s := newSampler(src, fill)
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := inv.Apply(PointF{X: float64(x), Y: float64(y)})
			out.SetNRGBA(x, y, s.at(p.X, p.Y))
		}
	}
	return out, nil
}

// ExtractRotated cuts a width x height patch centered on center out of src,
// with the patch axes rotated by angle degrees (clockwise on screen). Samples
// outside src repeat the nearest edge pixel.
func ExtractRotated(src image.Image, center PointF, width, height int, angle float64) *image.NRGBA {
	s := newSampler(src, nil)
	rad := angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	hw, hh := float64(width-1)/2, float64(height-1)/2
	for v := 0; v < height; v++ {
		for u := 0; u < width; u++ {
			du, dv := float64(u)-hw, float64(v)-hh
			out.SetNRGBA(u, v, s.at(center.X+cos*du-sin*dv, center.Y+sin*du+cos*dv))
		}
	}
	return out
}

type sampler struct {
	img  *image.NRGBA
	w, h int
	fill *color.NRGBA
}

func newSampler(src image.Image, fill color.Color) *sampler {
	img, ok := src.(*image.NRGBA)
	if !ok || img.Bounds().Min != (image.Point{}) {
		img = imaging.Clone(src)
	}
	s := &sampler{img: img, w: img.Bounds().Dx(), h: img.Bounds().Dy()}
	if fill != nil {
		c := color.NRGBAModel.Convert(fill).(color.NRGBA)
		s.fill = &c
	}
	return s
}

// at samples bilinearly at (x,y).
func (s *sampler) at(x, y float64) color.NRGBA {
	if s.fill != nil && (x < -0.5 || y < -0.5 || x > float64(s.w)-0.5 || y > float64(s.h)-0.5) {
		return *s.fill
	}
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	var acc [4]float64
	for j := 0; j < 2; j++ {
		wy := 1 - fy
		if j == 1 {
			wy = fy
		}
		py := clamp(y0+j, 0, s.h-1)
		for i := 0; i < 2; i++ {
			wx := 1 - fx
			if i == 1 {
				wx = fx
			}
			px := clamp(x0+i, 0, s.w-1)
			off := py*s.img.Stride + px*4
			wgt := wx * wy
			for c := 0; c < 4; c++ {
				acc[c] += wgt * float64(s.img.Pix[off+c])
			}
		}
	}
	return color.NRGBA{
		R: uint8(acc[0] + 0.5),
		G: uint8(acc[1] + 0.5),
		B: uint8(acc[2] + 0.5),
		A: uint8(acc[3] + 0.5),
	}
}
