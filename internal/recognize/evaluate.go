package recognize

import "github.com/ironsheep/tagscan/internal/sheet"

// Score rates a recognized sheet against the true contents of the sheet.
type Score struct {
	// Correct and Wrong count the confident boxes whose text does and does
	// not agree with the truth.
	Correct, Wrong int

	// Boxes is the number of boxes compared.
	Boxes int
}

// Precision is the share of confident boxes that are right. A sheet without
// confident boxes has precision 0.
func (s Score) Precision() float64 {
	if s.Correct+s.Wrong == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Correct+s.Wrong)
}

// Recall is the share of all boxes recognized confidently and correctly.
func (s Score) Recall() float64 {
	if s.Boxes == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Boxes)
}

// Evaluate compares got box by box against want.
func Evaluate(got, want *sheet.Sheet) Score {
	var sc Score
	for _, wb := range want.RecognizableBoxes() {
		sc.Boxes++
		gb := got.Box(wb.Name)
		if gb == nil || !gb.Confident() {
			continue
		}
		if gb.Text == wb.Text {
			sc.Correct++
		} else {
			sc.Wrong++
		}
	}
	return sc
}
