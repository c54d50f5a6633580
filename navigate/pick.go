package navigate

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Disambiguator chooses one of the result cards for a founder. Each
// candidate is the card's rendered text. It returns -1 to reject all.
type Disambiguator func(founder string, candidates []string) int

// First accepts the first result.
func First(_ string, candidates []string) int {
	if len(candidates) == 0 {
		return -1
	}
	return 0
}

// BestMatch picks the card whose best line is most similar to the founder's
// name by Jaro-Winkler over case- and accent-folded text. Cards scoring
// below threshold are rejected.
func BestMatch(threshold float64) Disambiguator {
	return func(founder string, candidates []string) int {
		want := Fold(founder)
		best, bestScore := -1, 0.0
		for i, c := range candidates {
			for _, line := range strings.Split(c, "\n") {
				line = Fold(line)
				if line == "" {
					continue
				}
				if score := matchr.JaroWinkler(want, line, false); score > bestScore {
					best, bestScore = i, score
				}
			}
		}
		if bestScore < threshold {
			return -1
		}
		return best
	}
}

// Fold lowercases s, strips diacritics and collapses whitespace.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
