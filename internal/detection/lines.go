package detection

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/ironsheep/tagscan/internal/imaging"
)

// Line is a straight line in normal form: x*cos(Theta) + y*sin(Theta) = Rho.
type Line struct {
	Rho   float64 `json:"rho"`
	Theta float64 `json:"theta"`
	Votes int     `json:"votes"`
}

// HoughLines finds the lines through at least threshold Ink pixels of mask.
// Rho is sampled every pixel and Theta every degree. Lines are returned with
// the most votes first.
func HoughLines(mask *image.Gray, threshold int) []Line {
	width, height := mask.Bounds().Dx(), mask.Bounds().Dy()

	const numAngles = 180
	maxDist := int(math.Ceil(math.Hypot(float64(width), float64(height))))
	numRho := 2*maxDist + 1
	cosT := make([]float64, numAngles)
	sinT := make([]float64, numAngles)
	for t := 0; t < numAngles; t++ {
		angle := float64(t) * math.Pi / numAngles
		cosT[t], sinT[t] = math.Cos(angle), math.Sin(angle)
	}

	// Accumulator with a border of one cell on every side so that the
	// local maximum test needs no bounds checks.
	stride := numRho + 2
	acc := make([]int, (numAngles+2)*stride)
	for y := 0; y < height; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			for t := 0; t < numAngles; t++ {
				r := int(math.Round(float64(x)*cosT[t]+float64(y)*sinT[t])) + maxDist
				acc[(t+1)*stride+r+1]++
			}
		}
	}

	lines := make([]Line, 0)
	for t := 0; t < numAngles; t++ {
		for r := 0; r < numRho; r++ {
			i := (t+1)*stride + r + 1
			v := acc[i]
			// Plateaus keep only their first cell.
			if v < threshold || v <= acc[i-1] || v < acc[i+1] || v <= acc[i-stride] || v < acc[i+stride] {
				continue
			}
			lines = append(lines, Line{
				Rho:   float64(r - maxDist),
				Theta: float64(t) * math.Pi / numAngles,
				Votes: v,
			})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Votes > lines[j].Votes
	})
	return lines
}

// Draw renders l across the whole of mask with the given thickness.
func (l Line) Draw(mask *image.Gray, thickness int) {
	a, b := math.Cos(l.Theta), math.Sin(l.Theta)
	x0, y0 := a*l.Rho, b*l.Rho
	reach := float64(mask.Bounds().Dx() + mask.Bounds().Dy())
	imaging.DrawLine(mask,
		int(math.Round(x0-reach*b)), int(math.Round(y0+reach*a)),
		int(math.Round(x0+reach*b)), int(math.Round(y0-reach*a)),
		thickness, color.Gray{Y: imaging.Ink})
}
