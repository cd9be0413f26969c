package classifier

import (
	"sort"

	"github.com/moolen/upgradelens/internal/models"
	"github.com/moolen/upgradelens/internal/textspan"
)

// DefaultActionContextRadius is how many characters of text are kept on each side
// of a matched span in an action item's contexts.
const DefaultActionContextRadius = 50

// SkipUnmappedActions names the fixed policy for classifications whose
// (category, severity) pair has no entry in the action table: they produce
// no action item. FEATURE_ADDITION/INFO is the common case.
const SkipUnmappedActions = true

// LookupAction returns the recommended action for a category at a severity.
func LookupAction(category models.Category, severity models.Severity) (string, bool) {
	switch category {
	case models.CategoryBreakingChange:
		switch severity {
		case models.SeverityCritical:
			return "Immediate review and testing required before upgrade", true
		case models.SeverityHigh:
			return "Review breaking changes and plan migration", true
		}
	case models.CategoryDeprecation:
		switch severity {
		case models.SeverityHigh:
			return "Plan migration from deprecated APIs", true
		case models.SeverityMedium:
			return "Schedule migration from deprecated APIs", true
		}
	case models.CategoryMigrationRequired:
		switch severity {
		case models.SeverityHigh:
			return "Execute required migration steps", true
		case models.SeverityMedium:
			return "Plan and schedule migration", true
		}
	case models.CategorySecurityUpdate:
		switch severity {
		case models.SeverityCritical:
			return "Apply security updates immediately", true
		case models.SeverityHigh:
			return "Schedule security updates", true
		}
	case models.CategoryConfigurationChange:
		switch severity {
		case models.SeverityMedium:
			return "Review and update configuration", true
		case models.SeverityLow:
			return "Consider configuration updates", true
		}
	case models.CategoryFeatureAddition, models.CategoryBugFix,
		models.CategoryPerformanceImprovement, models.CategoryUnknown:
	}
	return "", false
}

// ExtractActionItems maps classifications to action items using radius characters
// of context around every matched span, ordered by priority (severity weight
// times confidence), highest first. Equal priorities keep input order.
func ExtractActionItems(classifications []models.ClassificationMatch, text string, radius int) []models.ActionItem {
	items := make([]models.ActionItem, 0)
	index := textspan.NewIndex(text)
	for _, match := range classifications {
		action, ok := LookupAction(match.Category, match.Severity)
		if !ok && SkipUnmappedActions {
			continue
		}

		contexts := make([]string, 0, len(match.MatchedSpans))
		for _, span := range match.MatchedSpans {
			contexts = append(contexts, index.Excerpt(span.Start, span.End, radius))
		}

		items = append(items, models.ActionItem{
			Action:     action,
			Category:   match.Category,
			Severity:   match.Severity,
			Confidence: match.Confidence,
			Contexts:   contexts,
			Priority:   match.Severity.Weight() * match.Confidence,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority > items[j].Priority
	})
	return items
}

// ExtractActionItems uses DefaultActionContextRadius.
func (c *Classifier) ExtractActionItems(classifications []models.ClassificationMatch, text string) []models.ActionItem {
	return ExtractActionItems(classifications, text, DefaultActionContextRadius)
}
