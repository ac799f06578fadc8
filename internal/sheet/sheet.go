package sheet

import (
	"fmt"
	"image"
)

// Names of the fixed boxes of every sheet.
const (
	FrameBox       = "frameBox"
	NameBox        = "nameBox"
	UnitBox        = "unitBox"
	PriceBox       = "priceBox"
	SheetNumberBox = "sheetNumberBox"
)

// Kind tells what a box holds and therefore which candidate set its text
// is matched against.
type Kind int

const (
	KindFrame Kind = iota
	KindName
	KindUnit
	KindPrice
	KindSheetNumber
	KindTag
)

func (k Kind) String() string {
	switch k {
	case KindFrame:
		return "frame"
	case KindName:
		return "name"
	case KindUnit:
		return "unit"
	case KindPrice:
		return "price"
	case KindSheetNumber:
		return "sheetNumber"
	case KindTag:
		return "tag"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Box is one fixed-position cell of a sheet.
type Box struct {
	Name string
	Kind Kind

	// Row and Col address the box in the grid. The header row is row 0,
	// tag rows start at 1. The frame has no position.
	Row, Col int

	// Rect is the nominal position in normalized sheet pixels.
	Rect image.Rectangle

	LineWidth int

	// Text is the recognized value; "" means the box is empty.
	Text string

	// Confidence in [0,1]; 1 means the text is certain.
	Confidence float64
}

// Confident reports whether the box text is certain.
func (b *Box) Confident() bool {
	return b.Confidence >= 1
}

// Position addresses a box in the grid.
type Position struct {
	Row, Col int
}

// Direction moves between neighbouring boxes.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Sheet is the data model of one product sheet: a fixed set of named boxes
// laid out according to a Layout.
type Sheet struct {
	layout Layout
	boxes  []*Box
	byName map[string]*Box
	byPos  map[Position]*Box
}

// New creates a sheet whose boxes are all empty and confident.
func New(l Layout) *Sheet {
	s := &Sheet{
		layout: l,
		byName: make(map[string]*Box),
		byPos:  make(map[Position]*Box),
	}

	s.add(&Box{Name: FrameBox, Kind: KindFrame, Row: -1, Col: -1, Rect: l.FrameRect(), LineWidth: l.FrameLineWidthPx}, false)

	u, v := l.LeftMarginMM, l.TopMarginMM
	header := []struct {
		name  string
		kind  Kind
		width float64
	}{
		{NameBox, KindName, l.NameWidthMM},
		{UnitBox, KindUnit, l.UnitWidthMM},
		{PriceBox, KindPrice, l.PriceWidthMM},
		{SheetNumberBox, KindSheetNumber, l.SheetNumberWidthMM},
	}
	for col, h := range header {
		s.add(&Box{
			Name:      h.name,
			Kind:      h.kind,
			Row:       0,
			Col:       col,
			Rect:      l.rectMM(u, v, h.width, l.HeaderHeightMM),
			LineWidth: l.BoxLineWidthPx,
		}, true)
		u += h.width
	}

	// Tag rows start half a header height below the header.
	gap := float64(int(l.HeaderHeightMM) / 2)
	for row := 0; row < l.DataRows; row++ {
		v0 := l.TopMarginMM + gap + float64(row+1)*l.DataBoxHeightMM
		for col := 0; col < l.DataCols; col++ {
			u0 := l.LeftMarginMM + float64(col)*l.DataBoxWidthMM
			s.add(&Box{
				Name:      DataBoxName(row, col, l.DataCols),
				Kind:      KindTag,
				Row:       row + 1,
				Col:       col,
				Rect:      l.rectMM(u0, v0, l.DataBoxWidthMM, l.DataBoxHeightMM),
				LineWidth: l.BoxLineWidthPx,
			}, true)
		}
	}
	return s
}

// DataBoxName returns the name of the tag box in the given data row and column.
func DataBoxName(row, col, cols int) string {
	return fmt.Sprintf("dataBox%d(%d,%d)", row*cols+col, row, col)
}

func (s *Sheet) add(b *Box, positioned bool) {
	b.Confidence = 1
	s.boxes = append(s.boxes, b)
	s.byName[b.Name] = b
	if positioned {
		s.byPos[Position{b.Row, b.Col}] = b
	}
}

// Layout returns the layout the sheet was created with.
func (s *Sheet) Layout() Layout {
	return s.layout
}

// Boxes returns every box: the frame, the header row, then the tag boxes row by row.
func (s *Sheet) Boxes() []*Box {
	return s.boxes
}

// RecognizableBoxes returns every box except the frame.
func (s *Sheet) RecognizableBoxes() []*Box {
	return s.boxes[1:]
}

// DataBoxes returns the tag boxes row by row.
func (s *Sheet) DataBoxes() []*Box {
	return s.boxes[5:]
}

// Box returns the box with the given name, or nil.
func (s *Sheet) Box(name string) *Box {
	return s.byName[name]
}

// At returns the box at a grid position, or nil.
func (s *Sheet) At(row, col int) *Box {
	return s.byPos[Position{row, col}]
}

// Neighbour returns the box next to b in direction d, or nil at the edge of the grid.
func (s *Sheet) Neighbour(b *Box, d Direction) *Box {
	if b == nil || b.Kind == KindFrame {
		return nil
	}
	row, col := b.Row, b.Col
	switch d {
	case Up:
		row--
	case Down:
		row++
	case Left:
		col--
	case Right:
		col++
	}
	return s.At(row, col)
}

// Name returns the product display name.
func (s *Sheet) Name() string { return s.byName[NameBox].Text }

// SetName sets the product name with full confidence.
func (s *Sheet) SetName(name string) { s.set(NameBox, name) }

// Unit returns the amount and unit text.
func (s *Sheet) Unit() string { return s.byName[UnitBox].Text }

// SetUnit sets the amount and unit with full confidence.
func (s *Sheet) SetUnit(unit string) { s.set(UnitBox, unit) }

// Price returns the formatted gross sales price.
func (s *Sheet) Price() string { return s.byName[PriceBox].Text }

// SetPrice sets the formatted price with full confidence.
func (s *Sheet) SetPrice(price string) { s.set(PriceBox, price) }

// SheetNumber returns the formatted sheet number.
func (s *Sheet) SheetNumber() string { return s.byName[SheetNumberBox].Text }

// SetSheetNumber sets the formatted sheet number with full confidence.
func (s *Sheet) SetSheetNumber(number string) { s.set(SheetNumberBox, number) }

func (s *Sheet) set(name, text string) {
	b := s.byName[name]
	b.Text = text
	b.Confidence = 1
}

// ProductID identifies the product the sheet belongs to.
func (s *Sheet) ProductID() string {
	return Slugify(s.Name())
}

// Filename is the name the sheet is stored under.
func (s *Sheet) Filename() string {
	return Filename(s.ProductID(), s.SheetNumber())
}

// EmptyDataBoxes returns the tag boxes without text.
func (s *Sheet) EmptyDataBoxes() []*Box {
	out := make([]*Box, 0)
	for _, b := range s.DataBoxes() {
		if b.Text == "" {
			out = append(out, b)
		}
	}
	return out
}

// IsFull reports whether the header is complete and every tag box is used.
func (s *Sheet) IsFull() bool {
	for _, name := range []string{NameBox, UnitBox, PriceBox, SheetNumberBox} {
		if s.byName[name].Text == "" {
			return false
		}
	}
	return len(s.EmptyDataBoxes()) == 0
}

// ConfidentTags returns the texts of the tag boxes recognized with certainty.
func (s *Sheet) ConfidentTags() []string {
	out := make([]string, 0)
	for _, b := range s.DataBoxes() {
		if b.Confident() {
			out = append(out, b.Text)
		}
	}
	return out
}

// UnconfidentTags returns the texts of the tag boxes that need review.
func (s *Sheet) UnconfidentTags() []string {
	out := make([]string, 0)
	for _, b := range s.DataBoxes() {
		if !b.Confident() {
			out = append(out, b.Text)
		}
	}
	return out
}

// UnconfidentBoxes returns the names of the boxes that are not certain.
func (s *Sheet) UnconfidentBoxes() []string {
	out := make([]string, 0)
	for _, b := range s.RecognizableBoxes() {
		if !b.Confident() {
			out = append(out, b.Name)
		}
	}
	return out
}

// IsFullyConfident reports whether every box is certain.
func (s *Sheet) IsFullyConfident() bool {
	return len(s.UnconfidentBoxes()) == 0
}
