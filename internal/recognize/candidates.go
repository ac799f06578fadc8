package recognize

import (
	"strconv"

	"github.com/ironsheep/tagscan/internal/sheet"
)

// Candidates are the closed sets of values each kind of box may hold.
type Candidates struct {
	Names        []string
	Units        []string
	Prices       []string
	SheetNumbers []string
	MemberIDs    []string
}

// CandidateProvider supplies the candidate sets of a run.
type CandidateProvider interface {
	Candidates() (Candidates, error)
}

// For returns the candidates of boxes of kind k.
func (c Candidates) For(k sheet.Kind) []string {
	switch k {
	case sheet.KindName:
		return c.Names
	case sheet.KindUnit:
		return c.Units
	case sheet.KindPrice:
		return c.Prices
	case sheet.KindSheetNumber:
		return c.SheetNumbers
	case sheet.KindTag:
		return c.MemberIDs
	}
	return nil
}

// SheetNumbers formats the sheet numbers 1 to max.
func SheetNumbers(format string, max int) []string {
	out := make([]string, 0, max)
	for n := 1; n <= max; n++ {
		out = append(out, sheet.FormatSheetNumber(format, n))
	}
	return out
}

// formatFallbackNumber is the sheet number text used when recognition fails.
func formatFallbackNumber(n int) string {
	return strconv.Itoa(n)
}
