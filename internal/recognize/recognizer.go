// Package recognize reads the boxes of a normalized product sheet.
//
// Every box is cut out of the sheet image at its layout position, cleaned of
// noise, straightened and passed through OCR. The raw OCR text is then
// resolved against the closed set of values the box may hold, giving a text
// together with a confidence in [0,1]. Boxes that cannot be resolved come
// back empty with confidence 0; empty boxes come back empty with confidence 1.
//
// Finally the sheet is identified against the sheets stored for the same
// product, which confirms the product name and sheet number.
package recognize

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/tagscan/internal/imaging"
	"github.com/ironsheep/tagscan/internal/ocr"
	"github.com/ironsheep/tagscan/internal/sheet"
)

var log = logrus.WithField("component", "recognizer")

// Recognizer reads normalized sheet images. It holds an OCR engine that the
// caller has acquired for the duration of a run.
type Recognizer struct {
	Layout     sheet.Layout
	Config     Config
	Candidates Candidates
	Stored     StoredSheets
	Engine     ocr.Engine
	Debug      imaging.DebugSink
}

// New returns a recognizer using the default configuration.
func New(l sheet.Layout, c Candidates, stored StoredSheets, engine ocr.Engine) *Recognizer {
	return &Recognizer{
		Layout:     l,
		Config:     DefaultConfig(),
		Candidates: c,
		Stored:     stored,
		Engine:     engine,
		Debug:      imaging.Discard,
	}
}

// page is a normalized sheet prepared for recognition.
type page struct {
	img     *image.NRGBA
	gray    *image.Gray
	blurred *image.Gray
}

// Recognize reads every box of img, a sheet normalized to the layout
// resolution. The product name falls back to fallbackName and the sheet
// number to fallbackNumber unless both are recognized with enough
// confidence. Errors are returned for OCR engine failures and inconsistent
// stored sheets only.
func (r *Recognizer) Recognize(img image.Image, fallbackName string, fallbackNumber int) (*sheet.Sheet, error) {
	if r.Engine == nil {
		return nil, ocr.ErrEngineNotAcquired
	}
	if size := img.Bounds().Size(); size != image.Pt(r.Layout.XRes, r.Layout.YRes) {
		return nil, fmt.Errorf("sheet image is %dx%d, expected %dx%d", size.X, size.Y, r.Layout.XRes, r.Layout.YRes)
	}

	nrgba := imaging.Resize(img, r.Layout.XRes, r.Layout.YRes)
	p := &page{
		img:     nrgba,
		gray:    imaging.ToGray(nrgba),
		blurred: imaging.GaussianBlur(nrgba, r.Config.BlurRadius),
	}

	s := sheet.New(r.Layout)
	for _, b := range s.RecognizableBoxes() {
		m, err := r.recognizeBox(p, b)
		if err != nil {
			return nil, fmt.Errorf("box %s: %w", b.Name, err)
		}
		b.Text, b.Confidence = m.Text, m.Confidence

		switch b.Kind {
		case sheet.KindName:
			if m.Text == "" || m.Confidence < r.Config.NameConfidence {
				b.Text, b.Confidence = fallbackName, 0
			}
		case sheet.KindUnit, sheet.KindPrice:
			// Always printed, so empty means unreadable.
			if m.Text == "" {
				b.Confidence = 0
			}
		case sheet.KindSheetNumber:
			if m.Text == "" || m.Confidence < 1 {
				b.Text, b.Confidence = formatFallbackNumber(fallbackNumber), 0
			}
		}
	}

	if err := r.inferSheetNumber(s); err != nil {
		return nil, err
	}
	if _, err := Identify(s, r.Stored, r.Config.MinMatchingTexts); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"product":     s.ProductID(),
		"sheet":       s.SheetNumber(),
		"unconfident": len(s.UnconfidentBoxes()),
	}).Info("recognized sheet")
	if imaging.Enabled(r.Debug) {
		opts := sheet.DefaultRenderOptions()
		opts.ConfidenceThreshold = r.Config.ConfidenceThreshold
		r.Debug.WriteImage("1_outputImage", s.Render(opts))
	}
	return s, nil
}

// recognizeBox runs the whole box pipeline on one box.
func (r *Recognizer) recognizeBox(p *page, b *sheet.Box) (Match, error) {
	c := r.Config
	logger := log.WithField("box", b.Name)
	debug := imaging.WithPrefix(r.Debug, b.Name)

	box := c.refineBox(p.gray, b.Rect, debug)
	if box.Dx() <= 0 || box.Dy() <= 0 || box.Dx()*box.Dy() < c.MinPlausibleBoxSize {
		logger.WithField("refined", box).Debug("implausible box size")
		return Match{}, nil
	}

	mask := c.isolateInk(subGray(p.blurred, box), logger, debug)
	if mask == nil {
		return Match{Confidence: 1}, nil
	}

	// Rotate within a larger region so that no ink is clipped.
	border := c.RotationBorder
	region := box.Inset(-border).Intersect(p.img.Bounds())
	src, err := imaging.Crop(p.img, region)
	if err != nil {
		return Match{}, nil
	}
	regionMask := image.NewGray(image.Rect(0, 0, region.Dx(), region.Dy()))
	off := box.Min.Sub(region.Min)
	for y := 0; y < mask.Bounds().Dy(); y++ {
		copy(regionMask.Pix[(y+off.Y)*regionMask.Stride+off.X:], mask.Pix[y*mask.Stride:y*mask.Stride+mask.Bounds().Dx()])
	}

	straight, ok := Straighten(src, regionMask, c.Grow)
	if !ok {
		return Match{Confidence: 1}, nil
	}
	input := ocrInput(straight, c.OCRThresholdBlend)
	if imaging.Enabled(debug) {
		debug.WriteImage("01_boxInputImg", src)
		debug.WriteImage("10_ocrImage", input)
	}

	raw, err := r.Engine.RecognizeLine(input)
	if err != nil {
		return Match{}, err
	}
	m := FindClosest(raw, r.Candidates.For(b.Kind), c.MaxEditDistance)
	logger.WithFields(logrus.Fields{"ocr": raw, "text": m.Text, "confidence": m.Confidence}).Debug("resolved box text")
	return m, nil
}

// inferSheetNumber takes the sheet number from the only active sheet of the
// recognized product, if there is exactly one.
func (r *Recognizer) inferSheetNumber(s *sheet.Sheet) error {
	if s.Box(sheet.NameBox).Confidence == 0 || r.Stored == nil {
		return nil
	}
	refs, err := r.Stored.Refs(s.ProductID(), sheet.Active)
	if err != nil {
		return fmt.Errorf("failed to list stored sheets: %w", err)
	}
	if len(refs) == 1 {
		s.Box(sheet.SheetNumberBox).Text = refs[0].SheetNumber
		log.WithFields(logrus.Fields{"product": s.ProductID(), "sheet": refs[0].SheetNumber}).Info("inferred sheet number from product")
	}
	return nil
}

// ResetToFallback replaces the product name and sheet number of s by the
// fallback values and marks both for review.
func ResetToFallback(s *sheet.Sheet, name string, number int) {
	nb, sb := s.Box(sheet.NameBox), s.Box(sheet.SheetNumberBox)
	nb.Text, nb.Confidence = name, 0
	sb.Text, sb.Confidence = formatFallbackNumber(number), 0
}
