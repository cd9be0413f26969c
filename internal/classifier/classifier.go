// Package classifier scores release note text against the registry's
// category rules, summarizes its Kubernetes context and turns matches into
// ranked action items.
package classifier

import (
	"math"
	"strings"

	"github.com/moolen/upgradelens/internal/logging"
	"github.com/moolen/upgradelens/internal/models"
	"github.com/moolen/upgradelens/internal/patterns"
	"github.com/moolen/upgradelens/internal/textspan"
)

// DefaultConfidenceThreshold is the minimum total confidence for a category
// to be reported.
const DefaultConfidenceThreshold = 0.7

// Signal weights. Each regex match adds patternWeight up to patternCap and
// each keyword present adds keywordWeight up to keywordCap.
const (
	patternWeight = 0.4
	patternCap    = 1.0
	keywordWeight = 0.3
	keywordCap    = 0.7
)

// Classifier is read-only after construction and safe for concurrent use.
type Classifier struct {
	registry  *patterns.Registry
	threshold float64
	logger    *logging.Logger
}

// New creates a classifier. A nil registry selects patterns.Default().
func New(registry *patterns.Registry, threshold float64) *Classifier {
	if registry == nil {
		registry = patterns.Default()
	}
	return &Classifier{
		registry:  registry,
		threshold: threshold,
		logger:    logging.GetLogger("classifier"),
	}
}

// Threshold returns the confidence threshold applied by Classify.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Classify returns one match per category whose combined pattern and keyword
// confidence reaches the classifier's threshold.
func (c *Classifier) Classify(text string) []models.ClassificationMatch {
	return c.ClassifyWithThreshold(text, c.threshold)
}

// ClassifyWithThreshold is Classify with an explicit threshold. Categories
// with neither a regex match nor a keyword hit are never reported.
func (c *Classifier) ClassifyWithThreshold(text string, threshold float64) []models.ClassificationMatch {
	results := make([]models.ClassificationMatch, 0)
	if strings.TrimSpace(text) == "" {
		return results
	}

	lower := strings.ToLower(text)
	index := textspan.NewIndex(text)
	for _, rule := range c.registry.Rules() {
		matchedText := make([]string, 0)
		spans := make([]models.Span, 0)
		for _, re := range rule.Patterns {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				if loc[1] <= loc[0] {
					continue
				}
				matchedText = append(matchedText, text[loc[0]:loc[1]])
				begin, end := index.Span(loc)
				spans = append(spans, models.Span{Start: begin, End: end})
			}
		}

		hits := make([]string, 0)
		for _, kw := range rule.Keywords {
			// keywords are compared as written, not lowercased
			if strings.Contains(lower, kw) {
				hits = append(hits, kw)
			}
		}

		if len(matchedText) == 0 && len(hits) == 0 {
			continue
		}

		patternConfidence := math.Min(patternWeight*float64(len(matchedText)), patternCap)
		keywordConfidence := math.Min(keywordWeight*float64(len(hits)), keywordCap)
		total := math.Min(patternConfidence+keywordConfidence, 1.0)
		if total < threshold {
			continue
		}

		results = append(results, models.ClassificationMatch{
			Category:     rule.Category,
			Confidence:   total,
			Severity:     rule.Severity,
			MatchedText:  matchedText,
			MatchedSpans: spans,
			KeywordHits:  hits,
		})
	}

	c.logger.Debug("Classified text into %d categories (threshold %.2f)", len(results), threshold)
	return results
}
