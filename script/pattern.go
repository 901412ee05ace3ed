package script

import "regexp"

// Sequences that only occur (or overwhelmingly occur) in one encoding.
// Legacy text stores the e-vowel sign and the ya-yit medial in visual order,
// before the consonant, and uses U+1039 as the visible killer.
var (
	legacyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[\x{1060}-\x{1097}]`),
		regexp.MustCompile(`(?:^|[^\x{1000}-\x{1021}\x{103B}-\x{103E}])\x{1031}[\x{1000}-\x{1021}]`),
		regexp.MustCompile(`\x{1031}[\x{103B}-\x{103E}]`),
		regexp.MustCompile(`(?:^|[^\x{1000}-\x{1021}\x{1031}])\x{103B}[\x{1000}-\x{1021}]`),
		regexp.MustCompile(`\x{1039}(?:[^\x{1000}-\x{1021}]|$)`),
		regexp.MustCompile(`[\x{1033}\x{1034}]`),
	}
	unicodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`[\x{1000}-\x{1021}][\x{103B}-\x{103E}]*\x{1031}`),
		regexp.MustCompile(`\x{103A}\x{1038}`),
		regexp.MustCompile(`\x{1004}\x{103A}\x{1039}`),
	}
)

// PatternScorer is a dependency-free Scorer counting encoding-specific
// sequences. It is the fallback when no statistical model is wired in.
type PatternScorer struct{}

// NewPatternScorer returns the pattern scorer.
func NewPatternScorer() *PatternScorer { return &PatternScorer{} }

// Probability returns legacy/(legacy+unicode) over matched sequences, or 0
// when neither kind matches.
func (PatternScorer) Probability(text string) float64 {
	var z, u int
	for _, re := range legacyPatterns {
		z += len(re.FindAllStringIndex(text, -1))
	}
	for _, re := range unicodePatterns {
		u += len(re.FindAllStringIndex(text, -1))
	}
	if z+u == 0 {
		return 0
	}
	return float64(z) / float64(z+u)
}
