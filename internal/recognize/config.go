package recognize

import "fmt"

// Config holds the tuning knobs of the tag recognizer. All sizes are in
// pixels of the normalized sheet. The defaults were tuned for A4 sheets
// normalized to 2480x3508 pixels.
type Config struct {
	// SearchMargin extends every box when looking for its printed corners.
	SearchMargin int `mapstructure:"search_margin"`

	// CornerBorder is cut off the box found by its corners, removing the
	// printed box outline.
	CornerBorder int `mapstructure:"corner_border"`

	// RotationBorder is the extra context given to the rotation step so that
	// rotating does not clip the ink.
	RotationBorder int `mapstructure:"rotation_border"`

	// Boxes whose refined area is smaller are not recognized at all.
	MinPlausibleBoxSize int `mapstructure:"min_plausible_box_size"`

	BlurRadius         float64 `mapstructure:"blur_radius"`
	ThresholdBlockSize int     `mapstructure:"threshold_block_size"`
	ThresholdC         float64 `mapstructure:"threshold_c"`

	HarrisBlockSize int     `mapstructure:"harris_block_size"`
	HarrisK         float64 `mapstructure:"harris_k"`
	HarrisFraction  float64 `mapstructure:"harris_fraction"`

	// Component filters. Smaller components are noise; elongated, sparse
	// or huge ones are stray lines and smudges.
	MinComponentArea   int     `mapstructure:"min_component_area"`
	MinAspectRatio     float64 `mapstructure:"min_aspect_ratio"`
	ComponentFillRatio float64 `mapstructure:"component_fill_ratio"`

	// MinMergeFillRatio decides whether another ink blob joins the tag: the
	// blob's box area divided by the area it adds to the common box.
	MinMergeFillRatio float64 `mapstructure:"min_merge_fill_ratio"`

	// Ink centered closer than MinBorderDistance to the cell border, or
	// covering less than MinInkFraction of the cell, is treated as empty.
	MinBorderDistance int     `mapstructure:"min_border_distance"`
	MinInkFraction    float64 `mapstructure:"min_ink_fraction"`

	// Grow scales the rotated rectangle cut around the ink.
	Grow float64 `mapstructure:"grow"`

	// OCRThresholdBlend is the weight of the Otsu thresholded copy blended
	// over the straightened tag before OCR.
	OCRThresholdBlend float64 `mapstructure:"ocr_threshold_blend"`

	// MaxEditDistance is the largest distance at which a candidate is taken.
	MaxEditDistance int `mapstructure:"max_edit_distance"`

	// NameConfidence is the least confidence a recognized product name
	// needs before it is used instead of the fallback name.
	NameConfidence float64 `mapstructure:"name_confidence"`

	// ConfidenceThreshold separates boxes that are flagged for review.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`

	// MinMatchingTexts is the number of texts a stored sheet must share with
	// the recognized one before the two are taken for the same sheet.
	MinMatchingTexts int `mapstructure:"min_matching_texts"`
}

// DefaultConfig returns the settings tuned for the store's scanner.
func DefaultConfig() Config {
	return Config{
		SearchMargin:        25,
		CornerBorder:        5,
		RotationBorder:      20,
		MinPlausibleBoxSize: 1000,
		BlurRadius:          3,
		ThresholdBlockSize:  11,
		ThresholdC:          2,
		HarrisBlockSize:     9,
		HarrisK:             0.04,
		HarrisFraction:      0.01,
		MinComponentArea:    100,
		MinAspectRatio:      0.2,
		ComponentFillRatio:  0.35,
		MinMergeFillRatio:   0.3,
		MinBorderDistance:   20,
		MinInkFraction:      0.03,
		Grow:                1.1,
		OCRThresholdBlend:   0.05,
		MaxEditDistance:     5,
		NameConfidence:      0.5,
		ConfidenceThreshold: 0.5,
		MinMatchingTexts:    8,
	}
}

// Validate reports settings the recognizer cannot work with.
func (c Config) Validate() error {
	switch {
	case c.SearchMargin < 0 || c.CornerBorder < 0 || c.RotationBorder < 0 || c.MinBorderDistance < 0:
		return fmt.Errorf("recognizer margins must not be negative")
	case c.ThresholdBlockSize < 3 || c.ThresholdBlockSize%2 == 0:
		return fmt.Errorf("threshold_block_size must be odd and at least 3, got %d", c.ThresholdBlockSize)
	case c.HarrisBlockSize < 2:
		return fmt.Errorf("harris_block_size must be at least 2, got %d", c.HarrisBlockSize)
	case c.HarrisFraction <= 0 || c.HarrisFraction >= 1:
		return fmt.Errorf("harris_fraction must lie in (0,1), got %g", c.HarrisFraction)
	case c.MinAspectRatio < 0 || c.MinAspectRatio > 1:
		return fmt.Errorf("min_aspect_ratio must lie in [0,1], got %g", c.MinAspectRatio)
	case c.MinInkFraction < 0 || c.MinInkFraction > 1:
		return fmt.Errorf("min_ink_fraction must lie in [0,1], got %g", c.MinInkFraction)
	case c.Grow < 1:
		return fmt.Errorf("grow must be at least 1, got %g", c.Grow)
	case c.OCRThresholdBlend < 0 || c.OCRThresholdBlend > 1:
		return fmt.Errorf("ocr_threshold_blend must lie in [0,1], got %g", c.OCRThresholdBlend)
	case c.MaxEditDistance < 0:
		return fmt.Errorf("max_edit_distance must not be negative")
	case c.MinMatchingTexts < 1:
		return fmt.Errorf("min_matching_texts must be at least 1, got %d", c.MinMatchingTexts)
	}
	return nil
}
