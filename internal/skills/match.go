package skills

import (
	"math"
	"sort"
)

// MatchResult is the single comparable outcome for a (posting, seeker) pair.
// Every view (seeker detail, seeker listing sort, recruiter ranking) goes
// through Match, so they can never disagree on the same pair.
type MatchResult struct {
	Percent int      `json:"percent"`
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
}

// Match computes the share of the canonical set present in the seeker's
// tokens: round(100 * |canonical ∩ seeker| / |canonical|). An empty canonical
// set yields 0, never an error. Extra seeker skills cannot inflate the
// percentage; only overlap with the canonical set counts.
func Match(canonical []string, seekerTokens map[string]bool) MatchResult {
	canonSet := BuildSet(canonical)
	if len(canonSet) == 0 {
		return MatchResult{Percent: 0, Matched: []string{}, Missing: []string{}}
	}

	matched := make([]string, 0, len(canonSet))
	missing := make([]string, 0, len(canonSet))
	for token := range canonSet {
		if seekerTokens[token] {
			matched = append(matched, token)
		} else {
			missing = append(missing, token)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	percent := int(math.Round(float64(len(matched)) / float64(len(canonSet)) * 100))

	return MatchResult{Percent: percent, Matched: matched, Missing: missing}
}
