package recognize

import (
	"strings"
	"unicode/utf8"
)

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// Match is the candidate chosen for a raw OCR text.
type Match struct {
	Text       string
	Confidence float64
}

// FindClosest picks the candidate closest to raw, ignoring case.
// Confidence is 1 - best/second where best and second are the two smallest
// distances among the distinct candidates. A best distance above maxDist or
// equal to the second best yields an empty match with confidence 0. With a
// single distinct candidate the second distance is taken to be the length of
// the longer string, so only an exact match is fully confident.
func FindClosest(raw string, candidates []string, maxDist int) Match {
	seen := make(map[string]bool, len(candidates))
	search := strings.ToUpper(raw)

	best, second := -1, -1
	bestText := ""
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		d := Levenshtein(strings.ToUpper(c), search)
		switch {
		case best < 0 || d < best:
			second = best
			best, bestText = d, c
		case second < 0 || d < second:
			second = d
		}
	}

	if best < 0 || best > maxDist {
		return Match{}
	}
	if second < 0 {
		second = max(utf8.RuneCountInString(raw), utf8.RuneCountInString(bestText), best+1)
	}
	if best == second {
		return Match{}
	}
	return Match{Text: bestText, Confidence: 1 - float64(best)/float64(second)}
}
