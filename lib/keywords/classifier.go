package keywords

// Classifier owns the ordered matcher policy for one scraping run.
// It never short-circuits: every matcher runs on every text so a
// record's matched set is independent of matcher order.
type Classifier struct {
	matchers []Matcher
}

func NewClassifier(matchers ...Matcher) Classifier {
	return Classifier{matchers: matchers}
}

// CatchAll reports whether no policy is configured, in which case
// every assembled record is eligible for emission.
func (c Classifier) CatchAll() bool {
	return len(c.matchers) == 0
}

// Classify runs the whole policy over every text, accumulating matched
// keywords into the record's set. Calling it twice with the same texts
// leaves the set unchanged after the first call.
func (c Classifier) Classify(matched *Set, texts ...string) {
	for _, text := range texts {
		for _, m := range c.matchers {
			ok, found := m.Match(text)
			if ok {
				matched.Add(found...)
			}
		}
	}
}

// Eligible is the emission decision: with a configured policy a record
// must have at least one matched keyword, otherwise it is suppressed.
func (c Classifier) Eligible(matched *Set) bool {
	if c.CatchAll() {
		return true
	}
	return matched.Len() > 0
}
