package sheet

import (
	"fmt"
	"image"
	"math"
)

// Layout describes the printed product sheet in millimeters together with the
// pixel resolution sheets are normalized to. Every sheet of a run shares one
// Layout, so a cell is addressed by position alone.
type Layout struct {
	// XRes and YRes are the canonical pixel dimensions of a normalized sheet.
	XRes int `mapstructure:"x_res"`
	YRes int `mapstructure:"y_res"`

	PageWidthMM  float64 `mapstructure:"page_width_mm"`
	PageHeightMM float64 `mapstructure:"page_height_mm"`

	// Distance of the outer frame from the page edges.
	FrameTopMM    float64 `mapstructure:"frame_top_mm"`
	FrameBottomMM float64 `mapstructure:"frame_bottom_mm"`
	FrameLeftMM   float64 `mapstructure:"frame_left_mm"`
	FrameRightMM  float64 `mapstructure:"frame_right_mm"`

	// Top-left corner of the header row.
	TopMarginMM  float64 `mapstructure:"top_margin_mm"`
	LeftMarginMM float64 `mapstructure:"left_margin_mm"`

	HeaderHeightMM     float64 `mapstructure:"header_height_mm"`
	NameWidthMM        float64 `mapstructure:"name_width_mm"`
	UnitWidthMM        float64 `mapstructure:"unit_width_mm"`
	PriceWidthMM       float64 `mapstructure:"price_width_mm"`
	SheetNumberWidthMM float64 `mapstructure:"sheet_number_width_mm"`

	DataRows         int     `mapstructure:"data_rows"`
	DataCols         int     `mapstructure:"data_cols"`
	DataBoxWidthMM   float64 `mapstructure:"data_box_width_mm"`
	DataBoxHeightMM  float64 `mapstructure:"data_box_height_mm"`
	FrameLineWidthPx int     `mapstructure:"frame_line_width_px"`
	BoxLineWidthPx   int     `mapstructure:"box_line_width_px"`
}

// DefaultLayout returns the A4 sheet printed by the store, normalized to 300 dpi.
func DefaultLayout() Layout {
	return Layout{
		XRes:               2480,
		YRes:               3508,
		PageWidthMM:        210,
		PageHeightMM:       297,
		FrameTopMM:         20,
		FrameBottomMM:      15,
		FrameLeftMM:        15,
		FrameRightMM:       15,
		TopMarginMM:        25,
		LeftMarginMM:       20,
		HeaderHeightMM:     15,
		NameWidthMM:        85,
		UnitWidthMM:        30,
		PriceWidthMM:       30,
		SheetNumberWidthMM: 25,
		DataRows:           15,
		DataCols:           5,
		DataBoxWidthMM:     34,
		DataBoxHeightMM:    15,
		FrameLineWidthPx:   20,
		BoxLineWidthPx:     3,
	}
}

// Scaled returns the same layout rendered at factor times the resolution.
func (l Layout) Scaled(factor float64) Layout {
	l.XRes = int(math.Round(float64(l.XRes) * factor))
	l.YRes = int(math.Round(float64(l.YRes) * factor))
	l.FrameLineWidthPx = max(1, int(math.Round(float64(l.FrameLineWidthPx)*factor)))
	l.BoxLineWidthPx = max(1, int(math.Round(float64(l.BoxLineWidthPx)*factor)))
	return l
}

// Validate reports layouts that cannot be rendered.
func (l Layout) Validate() error {
	switch {
	case l.XRes <= 0 || l.YRes <= 0:
		return fmt.Errorf("layout resolution must be positive, got %dx%d", l.XRes, l.YRes)
	case l.PageWidthMM <= 0 || l.PageHeightMM <= 0:
		return fmt.Errorf("layout page size must be positive")
	case l.DataRows <= 0 || l.DataCols <= 0:
		return fmt.Errorf("layout needs at least one data row and column")
	case l.LeftMarginMM+float64(l.DataCols)*l.DataBoxWidthMM > l.PageWidthMM:
		return fmt.Errorf("data grid is wider than the page")
	}
	return nil
}

// PointFromMM converts a position on the page in millimeters to pixels.
func (l Layout) PointFromMM(u, v float64) image.Point {
	return image.Pt(
		int(math.Round(u/l.PageWidthMM*float64(l.XRes))),
		int(math.Round(v/l.PageHeightMM*float64(l.YRes))),
	)
}

// FrameRect returns the outer frame in pixels.
func (l Layout) FrameRect() image.Rectangle {
	return image.Rectangle{
		Min: l.PointFromMM(l.FrameLeftMM, l.FrameTopMM),
		Max: l.PointFromMM(l.PageWidthMM-l.FrameRightMM, l.PageHeightMM-l.FrameBottomMM),
	}
}

// Margins returns the white border around the frame in pixels.
func (l Layout) Margins() (top, bottom, left, right int) {
	f := l.FrameRect()
	return f.Min.Y, l.YRes - f.Max.Y, f.Min.X, l.XRes - f.Max.X
}

// MaxQuantity is the number of tag cells on one sheet.
func (l Layout) MaxQuantity() int {
	return l.DataRows * l.DataCols
}

func (l Layout) rectMM(u0, v0, w, h float64) image.Rectangle {
	return image.Rectangle{Min: l.PointFromMM(u0, v0), Max: l.PointFromMM(u0+w, v0+h)}
}
