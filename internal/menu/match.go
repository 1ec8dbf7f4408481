package menu

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Fuzzy matching thresholds. Flavor and size lookups require a
// similarity ratio of at least 0.7; crusts carry longer compound names
// ("Catupiry Recheada") so they accept down to 0.6.
const (
	flavorThreshold = 0.7
	sizeThreshold   = 0.7
	crustThreshold  = 0.6
)

// similarity computes the case-insensitive sequence-matcher ratio between
// two strings: 2*M/T where M is the number of matching characters and T
// the total length of both strings. Returns a value in [0, 1].
func similarity(a, b string) float64 {
	la := strings.Split(strings.ToLower(a), "")
	lb := strings.Split(strings.ToLower(b), "")
	return difflib.NewMatcher(la, lb).Ratio()
}

// bestMatch returns the index of the candidate with the highest
// similarity to term that clears the threshold, or -1 when no candidate
// qualifies. The threshold is the only acceptance criterion: a term
// contained in a longer candidate still loses when its ratio is too low.
func bestMatch(term string, candidates []string, threshold float64) (int, float64) {
	t := strings.TrimSpace(term)
	if t == "" {
		return -1, 0
	}

	bestIdx := -1
	bestRatio := 0.0
	for i, c := range candidates {
		ratio := similarity(t, c)
		if ratio > bestRatio && ratio >= threshold {
			bestRatio = ratio
			bestIdx = i
		}
	}
	return bestIdx, bestRatio
}
