package script

// Scorer returns the probability in [0,1] that text is Legacy encoded.
type Scorer interface {
	Probability(text string) float64
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(text string) float64

func (f ScorerFunc) Probability(text string) float64 { return f(text) }

// DefaultThreshold is the probability at and above which text is Legacy.
const DefaultThreshold = 0.5

// Classifier turns a Scorer probability into a Label.
type Classifier struct {
	Scorer    Scorer
	Threshold float64
}

// NewClassifier returns a Classifier with the default threshold. A nil
// scorer selects the built-in pattern scorer.
func NewClassifier(s Scorer) *Classifier {
	if s == nil {
		s = NewPatternScorer()
	}
	return &Classifier{Scorer: s, Threshold: DefaultThreshold}
}

// Classify labels text. Callers are expected to have checked
// ContainsMyanmar first; text without Myanmar code points is Unicode.
func (c *Classifier) Classify(text string) Label {
	if !ContainsMyanmar(text) {
		return Unicode
	}
	th := c.Threshold
	if th <= 0 {
		th = DefaultThreshold
	}
	if c.Scorer.Probability(text) >= th {
		return Legacy
	}
	return Unicode
}
