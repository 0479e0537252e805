// Package classifier maps free text to a disaster category and severity by
// weighted keyword matching. Classification is a pure function of the text
// and the keyword table; a Classifier may be shared by any number of
// goroutines.
package classifier

import (
	"sort"
	"strings"

	"emergency-workers/internal/emergency/keywords"
	"emergency-workers/internal/models"
)

const (
	// ScaleFactor turns weight-per-word into the 0-10 confidence scale.
	ScaleFactor   = 10.0
	MaxConfidence = 10.0
)

type Result struct {
	Category        string   `json:"category"`
	Severity        Severity `json:"severity"`
	MatchedKeywords []string `json:"matchedKeywords"`
	Confidence      float64  `json:"confidence"`
}

func (r Result) IsEmergency() bool {
	return r.Severity != SeverityNone && r.Category != keywords.GeneralCategory
}

type Classifier struct {
	table      *keywords.Table
	thresholds Thresholds
}

// New builds a Classifier. A nil table behaves like an empty one.
func New(table *keywords.Table, thresholds Thresholds) (*Classifier, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{table: table, thresholds: thresholds}, nil
}

// Classify runs text against table with the default thresholds.
func Classify(text string, table *keywords.Table) Result {
	c := &Classifier{table: table, thresholds: DefaultThresholds()}
	return c.Classify(text)
}

func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// ClassifyUtterance classifies u.Text. A nil utterance is classified as
// empty text.
func (c *Classifier) ClassifyUtterance(u *models.Utterance) Result {
	if u == nil {
		return c.Classify("")
	}
	return c.Classify(u.Text)
}

// Classify scores every category of the table against text. Each
// occurrence of a keyword adds its weight to the category score; the score
// is divided by the word count and scaled to the confidence range. The
// highest confidence wins, and on a tie the first-declared category keeps
// the lead.
func (c *Classifier) Classify(text string) Result {
	lower := strings.ToLower(text)
	words := len(strings.Fields(lower))
	if words < 1 {
		words = 1
	}

	best := Result{
		Category:        keywords.GeneralCategory,
		Severity:        SeverityNone,
		MatchedKeywords: []string{},
	}
	var bestMatches []string
	bestSet := false

	if lower != "" {
		c.table.Each(func(name string, kws []keywords.Keyword) {
			var score float64
			var matched []string
			for _, k := range kws {
				n := strings.Count(lower, k.Term)
				if n == 0 {
					continue
				}
				score += k.Weight * float64(n)
				matched = append(matched, k.Term)
			}
			if len(matched) == 0 {
				return
			}

			confidence := clamp(score / float64(words) * ScaleFactor)
			if !bestSet || confidence > best.Confidence {
				best.Category = name
				best.Confidence = confidence
				bestMatches = matched
				bestSet = true
			}
		})
	}

	if !bestSet || best.Confidence <= c.thresholds.Emergency {
		// Below the emergency threshold the text is informational only, but
		// the confidence is still reported.
		return Result{
			Category:        keywords.GeneralCategory,
			Severity:        SeverityNone,
			MatchedKeywords: []string{},
			Confidence:      best.Confidence,
		}
	}

	best.Severity = SeverityFor(best.Confidence, c.thresholds)
	best.MatchedKeywords = dedupe(bestMatches)
	return best
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > MaxConfidence {
		return MaxConfidence
	}
	return v
}

func dedupe(terms []string) []string {
	set := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := set[t]; ok {
			continue
		}
		set[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
