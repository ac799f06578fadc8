// Package split cuts a scan of the scanner bed into the regions that may hold
// a product sheet and normalizes every sheet it finds.
package split

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/tagscan/internal/detection"
	"github.com/ironsheep/tagscan/internal/imaging"
	"github.com/ironsheep/tagscan/internal/normalize"
	"github.com/ironsheep/tagscan/internal/sheet"
)

var log = logrus.WithField("component", "splitter")

// Region is a part of the scan given in fractions of its width and height.
type Region struct {
	X0 float64 `mapstructure:"x0"`
	Y0 float64 `mapstructure:"y0"`
	X1 float64 `mapstructure:"x1"`
	Y1 float64 `mapstructure:"y1"`
}

// Validate reports regions that do not lie inside the unit square.
func (r Region) Validate() error {
	if r.X0 < 0 || r.Y0 < 0 || r.X1 > 1 || r.Y1 > 1 || r.X0 >= r.X1 || r.Y0 >= r.Y1 {
		return fmt.Errorf("region (%.3f,%.3f)-(%.3f,%.3f) must lie inside [0,1] with x0<x1 and y0<y1", r.X0, r.Y0, r.X1, r.Y1)
	}
	return nil
}

// DefaultRegions returns the four quadrants of the scanner bed in reading order.
func DefaultRegions() []Region {
	return []Region{
		{0, 0, .5, .5},
		{.5, 0, 1, .5},
		{0, .5, .5, 1},
		{.5, .5, 1, 1},
	}
}

// SheetRegion is one region of a scan after splitting.
type SheetRegion struct {
	// ScanPath is the scan the region was cut from.
	ScanPath string

	// Name is unique per region and doubles as the fallback sheet name.
	Name  string
	Index int

	// Unprocessed is the region as cut from the resized scan.
	Unprocessed *image.NRGBA

	// Processed is the normalized sheet, or a crossed out copy of Unprocessed
	// if the region is empty.
	Processed *image.NRGBA
	IsEmpty   bool

	// RecognizedName is set to the stored filename once the sheet is recognized.
	RecognizedName string
}

// Splitter finds and normalizes up to one sheet per region of a scan.
type Splitter struct {
	Regions []Region

	// Width and Height are the resolution every scan is resized to first.
	Width, Height int

	// MinSheetSize is the least bounding box area, in pixels of the resized
	// scan, of the outline taken for a sheet.
	MinSheetSize int

	BlurRadius float64

	ContourFinder *detection.ContourFrameFinder
	LineFinder    *detection.LineFrameFinder
	Normalizer    *normalize.Normalizer

	// CrossColor and CrossThickness mark empty regions.
	CrossColor     color.Color
	CrossThickness int

	Debug imaging.DebugSink
}

// New returns a splitter with the default settings producing sheets of layout l.
func New(l sheet.Layout) *Splitter {
	lf := detection.NewLineFrameFinder()
	lf.CropMargin = 40
	return &Splitter{
		Regions:        DefaultRegions(),
		Width:          3672,
		Height:         6528,
		MinSheetSize:   1000 * 1500,
		BlurRadius:     3,
		ContourFinder:  detection.NewContourFrameFinder(),
		LineFinder:     lf,
		Normalizer:     normalize.New(l),
		CrossColor:     color.NRGBA{R: 255, A: 255},
		CrossThickness: 20,
		Debug:          imaging.Discard,
	}
}

// Split resizes img and processes every region. Both results have one entry
// per region; a nil processed image means the region holds no sheet.
func (s *Splitter) Split(img image.Image) (unprocessed, processed []*image.NRGBA, err error) {
	if len(s.Regions) == 0 {
		return nil, nil, fmt.Errorf("no sheet regions configured")
	}
	input := imaging.Resize(img, s.Width, s.Height)
	s.Debug.WriteImage("sheet0_0_input", input)

	for idx, r := range s.Regions {
		region, _, err := imaging.CropRelative(input, r.X0, r.Y0, r.X1, r.Y1)
		if err != nil {
			return nil, nil, fmt.Errorf("sheet region %d: %w", idx, err)
		}
		unprocessed = append(unprocessed, region)
		processed = append(processed, s.processRegion(region, idx))
	}
	return unprocessed, processed, nil
}

// SplitScan splits the scan loaded from path into named sheet regions. Empty
// regions carry a crossed out copy as processed image.
func (s *Splitter) SplitScan(path string, img image.Image) ([]*SheetRegion, error) {
	logger := log.WithField("scan", path)
	logger.Info("splitting scan")

	unprocessed, processed, err := s.Split(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Base(path)
	regions := make([]*SheetRegion, 0, len(unprocessed))
	for idx := range unprocessed {
		r := &SheetRegion{
			ScanPath:    path,
			Name:        fmt.Sprintf("%s_sheet%d", base, idx),
			Index:       idx,
			Unprocessed: unprocessed[idx],
			Processed:   processed[idx],
		}
		if r.Processed == nil {
			r.IsEmpty = true
			r.Processed = imaging.CrossOut(r.Unprocessed, s.CrossThickness, s.CrossColor)
		}
		logger.WithFields(logrus.Fields{"region": r.Name, "empty": r.IsEmpty}).Debug("split region")
		regions = append(regions, r)
	}
	return regions, nil
}

// processRegion returns the normalized sheet in region, or nil if the region
// is empty.
func (s *Splitter) processRegion(region *image.NRGBA, idx int) *image.NRGBA {
	logger := log.WithField("region", idx)
	debug := imaging.WithPrefix(s.Debug, fmt.Sprintf("sheet%d", idx))

	blurred := imaging.GaussianBlur(region, s.BlurRadius)
	paper, level := imaging.OtsuThreshold(blurred)
	debug.WriteImage("2_blurred", blurred)
	debug.WriteImage("3_otsuThreshold", paper)

	// The sheet is the largest bright outline in the region.
	contours := detection.FindContours(paper, detection.External, 0)
	if len(contours) == 0 {
		logger.Debug("assume empty sheet (no sheet contour found)")
		return nil
	}
	bounds := detection.BoundingRect(contours[0])
	if bounds.Dx()*bounds.Dy() < s.MinSheetSize {
		logger.WithFields(logrus.Fields{"bounds": bounds, "otsu_level": level}).Debug("assume empty sheet (sheet contour too small)")
		return nil
	}

	sheetImg, err := imaging.Crop(region, bounds)
	if err != nil {
		logger.WithError(err).Debug("assume empty sheet")
		return nil
	}
	debug.WriteImage("4_sheet", sheetImg)

	finders := detection.Chain{}
	if s.ContourFinder != nil {
		cf := *s.ContourFinder
		cf.Debug = imaging.WithPrefix(debug, "5_frameFinder")
		finders = append(finders, &cf)
	}
	if s.LineFinder != nil {
		lf := *s.LineFinder
		lf.Debug = imaging.WithPrefix(debug, "6_frameFinderByLines")
		finders = append(finders, &lf)
	}
	frame, ok := finders.FindFrame(sheetImg)
	if !ok {
		logger.Debug("assume empty sheet (no frame contour found)")
		return nil
	}

	n := *s.Normalizer
	n.Debug = imaging.WithPrefix(debug, "7_normalizer")
	out, err := n.Normalize(sheetImg, frame)
	if err != nil {
		logger.WithError(err).Warn("cannot normalize sheet")
		return nil
	}
	return out
}
