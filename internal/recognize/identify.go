package recognize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/tagscan/internal/sheet"
)

// StoredSheets gives read access to the sheets stored by earlier runs.
type StoredSheets interface {
	// Refs lists the stored sheets of a product that are in one of states.
	Refs(productID string, states ...sheet.State) ([]sheet.Ref, error)

	// Load reads a listed sheet.
	Load(ref sheet.Ref) (*sheet.Sheet, error)
}

// ErrIntegrity marks stored sheet data that contradicts itself. It is never
// caused by bad recognition and must stop the run.
var ErrIntegrity = errors.New("stored sheet data is inconsistent")

// IntegrityError describes the stored sheet at fault.
type IntegrityError struct {
	Path   string
	Reason string

	// Boxes lists the offending boxes, if any.
	Boxes []string
}

func (e *IntegrityError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Path, e.Reason)
	if len(e.Boxes) > 0 {
		msg += " (" + strings.Join(e.Boxes, ", ") + ")"
	}
	return msg
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

// Identify confirms which stored sheet s is a new scan of. A stored sheet of
// the same product matches if every confident box of s agrees with it where
// the stored box has a text, and at least minMatching texts were compared.
// On a match the name and sheet number of s become confident and the sheet
// number is taken from the stored sheet; otherwise both are marked for review.
//
// Stored sheets that are not fully confident, or two stored sheets matching
// at once, are reported as an *IntegrityError.
func Identify(s *sheet.Sheet, stored StoredSheets, minMatching int) (bool, error) {
	name, number := s.Box(sheet.NameBox), s.Box(sheet.SheetNumberBox)
	if name.Confidence == 0 || stored == nil {
		name.Confidence, number.Confidence = 0, 0
		return false, nil
	}

	productID := s.ProductID()
	logger := log.WithField("product", productID)
	refs, err := stored.Refs(productID, sheet.Active, sheet.Inactive)
	if err != nil {
		return false, fmt.Errorf("failed to list stored sheets: %w", err)
	}

	var match *sheet.Ref
	for i := range refs {
		ref := refs[i]
		candidate, err := stored.Load(ref)
		if err != nil {
			return false, fmt.Errorf("failed to load stored sheet: %w", err)
		}
		if !candidate.IsFullyConfident() {
			return false, &IntegrityError{Path: ref.Path, Reason: "stored sheet has unconfident boxes", Boxes: candidate.UnconfidentBoxes()}
		}
		if !matches(s, candidate, minMatching, logger.WithField("stored", ref.Path)) {
			continue
		}
		if match != nil && match.Key() != ref.Key() {
			return false, &IntegrityError{Path: ref.Path, Reason: "scan matches stored sheets " + match.SheetNumber + " and " + ref.SheetNumber}
		}
		match = &refs[i]
	}

	if match == nil {
		logger.Debug("no stored sheet matches")
		name.Confidence, number.Confidence = 0, 0
		return false, nil
	}
	logger.WithField("stored", match.Path).Info("identified sheet")
	name.Confidence = 1
	number.Text, number.Confidence = match.SheetNumber, 1
	return true, nil
}

func matches(s, stored *sheet.Sheet, minMatching int, logger *logrus.Entry) bool {
	compared := 0
	for _, b := range s.RecognizableBoxes() {
		if !b.Confident() {
			continue
		}
		sb := stored.Box(b.Name)
		if sb == nil || sb.Text == "" {
			continue
		}
		compared++
		if sb.Text != b.Text {
			logger.WithFields(logrus.Fields{"box": b.Name, "stored_text": sb.Text, "text": b.Text}).Debug("non-matching box")
			return false
		}
	}
	if compared < minMatching {
		logger.WithField("compared", compared).Debug("not enough matching texts")
		return false
	}
	return true
}
