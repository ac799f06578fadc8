package recognize

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/tagscan/internal/ocr"
	"github.com/ironsheep/tagscan/internal/sheet"
)

// scripted is an OCR engine returning prepared texts in call order.
type scripted struct {
	t     *testing.T
	texts []string
	sizes []image.Point
}

func (s *scripted) RecognizeLine(img image.Image) (string, error) {
	s.sizes = append(s.sizes, img.Bounds().Size())
	n := len(s.sizes) - 1
	if n >= len(s.texts) {
		s.t.Errorf("unexpected OCR call %d", n)
		return "", nil
	}
	return s.texts[n], nil
}

var testCandidates = Candidates{
	Names:        []string{"Apple Juice", "Orange Juice"},
	Units:        []string{"1 l", "5 dl"},
	Prices:       []string{"3.50 CHF", "4.20 CHF"},
	SheetNumbers: SheetNumbers("#{n}", 3),
	MemberIDs:    append([]string{"M1", "M2", "M3"}, tags...),
}

// inkedPage renders an empty printed sheet with ink in the named boxes.
func inkedPage(inked ...string) *image.NRGBA {
	s := sheet.New(sheet.DefaultLayout())
	img := s.Render(sheet.RenderOptions{})
	for _, name := range inked {
		r := s.Box(name).Rect
		drawBars(img, center(r), r.Dx())
	}
	return img
}

func TestRecognize_BlankSheetIsEmpty(t *testing.T) {
	img := inkedPage()
	engine := &scripted{t: t}
	r := New(sheet.DefaultLayout(), testCandidates, newMemStore(t), engine)

	for run := 0; run < 2; run++ {
		s, err := r.Recognize(img, "scan.jpg_sheet0", 7)
		require.NoError(t, err)
		for _, b := range s.DataBoxes() {
			assert.Equal(t, "", b.Text, "run %d %s", run, b.Name)
			assert.Equal(t, 1.0, b.Confidence, "run %d %s", run, b.Name)
		}
		assert.Equal(t, "scan.jpg_sheet0", s.Name())
		assert.Equal(t, 0.0, s.Box(sheet.NameBox).Confidence)
		assert.Equal(t, "7", s.SheetNumber())
		assert.Equal(t, 0.0, s.Box(sheet.SheetNumberBox).Confidence)
		assert.Equal(t, 0.0, s.Box(sheet.UnitBox).Confidence)
		assert.Equal(t, 0.0, s.Box(sheet.PriceBox).Confidence)
	}
	assert.Empty(t, engine.sizes)
}

func TestRecognize_Tags(t *testing.T) {
	img := inkedPage("dataBox0(0,0)", "dataBox7(1,2)")
	engine := &scripted{t: t, texts: []string{"M1", "M3x"}}
	r := New(sheet.DefaultLayout(), testCandidates, newMemStore(t), engine)

	s, err := r.Recognize(img, "scan.jpg_sheet1", 2)
	require.NoError(t, err)
	require.Len(t, engine.sizes, 2)
	for _, size := range engine.sizes {
		assert.Greater(t, size.X, size.Y, "tag is passed to OCR lying")
	}

	b0 := s.Box("dataBox0(0,0)")
	assert.Equal(t, "M1", b0.Text)
	assert.Equal(t, 1.0, b0.Confidence)
	b7 := s.Box("dataBox7(1,2)")
	assert.Equal(t, "M3", b7.Text)
	assert.InDelta(t, 0.5, b7.Confidence, 1e-9)

	for _, b := range s.DataBoxes() {
		if b == b0 || b == b7 {
			continue
		}
		assert.Equal(t, "", b.Text, b.Name)
		assert.Equal(t, 1.0, b.Confidence, b.Name)
	}
}

func identificationStore(t *testing.T) *memStore {
	store := newMemStore(t)
	active := storedSheet("#2", 8)
	active.SetUnit("1 l")
	active.SetPrice("3.50 CHF")
	store.add(active, sheet.Active)

	old := storedSheet("#1", 8)
	old.DataBoxes()[0].Text = "ZOE"
	store.add(old, sheet.Inactive)
	return store
}

func inkedHeaderAndTags() *image.NRGBA {
	inked := []string{sheet.NameBox, sheet.UnitBox, sheet.PriceBox, sheet.SheetNumberBox}
	s := sheet.New(sheet.DefaultLayout())
	for _, b := range s.DataBoxes()[:8] {
		inked = append(inked, b.Name)
	}
	return inkedPage(inked...)
}

func TestRecognize_IdentifiesSheet(t *testing.T) {
	texts := append([]string{"Apple Juce", "1 l", "3.50 CHF", "#2"}, tags[:8]...)
	engine := &scripted{t: t, texts: texts}
	r := New(sheet.DefaultLayout(), testCandidates, identificationStore(t), engine)

	s, err := r.Recognize(inkedHeaderAndTags(), "scan.jpg_sheet0", 0)
	require.NoError(t, err)
	assert.Len(t, engine.sizes, len(texts))

	assert.Equal(t, "Apple Juice", s.Name())
	assert.Equal(t, 1.0, s.Box(sheet.NameBox).Confidence)
	assert.Equal(t, "#2", s.SheetNumber())
	assert.Equal(t, 1.0, s.Box(sheet.SheetNumberBox).Confidence)
	assert.Equal(t, "1 l", s.Unit())
	assert.Equal(t, "3.50 CHF", s.Price())
	assert.Equal(t, "apple-juice_#2.csv", s.Filename())
	assert.True(t, s.IsFullyConfident())
}

func TestRecognize_InfersUnreadableSheetNumber(t *testing.T) {
	texts := append([]string{"Apple Juice", "1 l", "3.50 CHF", "#9"}, tags[:8]...)
	engine := &scripted{t: t, texts: texts}
	r := New(sheet.DefaultLayout(), testCandidates, identificationStore(t), engine)

	s, err := r.Recognize(inkedHeaderAndTags(), "scan.jpg_sheet0", 5)
	require.NoError(t, err)
	assert.Equal(t, "#2", s.SheetNumber())
	assert.Equal(t, 1.0, s.Box(sheet.SheetNumberBox).Confidence)
}

func TestRecognize_Preconditions(t *testing.T) {
	r := New(sheet.DefaultLayout(), testCandidates, nil, nil)
	_, err := r.Recognize(inkedPage(), "x", 0)
	assert.ErrorIs(t, err, ocr.ErrEngineNotAcquired)

	r.Engine = &scripted{t: t}
	_, err = r.Recognize(image.NewNRGBA(image.Rect(0, 0, 100, 100)), "x", 0)
	assert.Error(t, err)
}

func TestRecognize_EngineError(t *testing.T) {
	boom := errors.New("tesseract crashed")
	engine := ocr.Func(func(image.Image) (string, error) { return "", boom })
	r := New(sheet.DefaultLayout(), testCandidates, nil, engine)
	_, err := r.Recognize(inkedPage("dataBox3(0,3)"), "x", 0)
	assert.ErrorIs(t, err, boom)
}
