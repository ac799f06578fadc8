package sheet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns a product display name into its product id: diacritics are
// stripped, quotes dropped, everything lowercased and each run of other
// characters that are not ASCII letters or digits becomes a single '-'.
//
//	Slugify("Äpfel (Bio) 1kg") == "apfel-bio-1kg"
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}

	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r == '\'' || r == '"':
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			dash = false
			sb.WriteRune(r)
		default:
			dash = true
		}
	}
	return sb.String()
}
