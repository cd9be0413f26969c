package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/upgradelens/internal/models"
)

func TestLookupAction(t *testing.T) {
	mapped := 0
	for _, category := range models.Categories() {
		for _, severity := range models.Severities() {
			if action, ok := LookupAction(category, severity); ok {
				mapped++
				assert.NotEmpty(t, action)
			}
		}
	}
	assert.Equal(t, 10, mapped)

	action, ok := LookupAction(models.CategorySecurityUpdate, models.SeverityCritical)
	require.True(t, ok)
	assert.Equal(t, "Apply security updates immediately", action)

	_, ok = LookupAction(models.CategoryFeatureAddition, models.SeverityInfo)
	assert.False(t, ok)
}

func TestExtractActionItemsPriorityOrder(t *testing.T) {
	classifications := []models.ClassificationMatch{
		{Category: models.CategoryConfigurationChange, Severity: models.SeverityMedium, Confidence: 0.9},
		{Category: models.CategoryBreakingChange, Severity: models.SeverityCritical, Confidence: 0.7},
		{Category: models.CategoryDeprecation, Severity: models.SeverityHigh, Confidence: 0.8},
	}

	items := ExtractActionItems(classifications, "", DefaultActionContextRadius)
	require.Len(t, items, 3)
	assert.Equal(t, models.SeverityCritical, items[0].Severity)
	assert.Equal(t, models.SeverityHigh, items[1].Severity)
	assert.Equal(t, models.SeverityMedium, items[2].Severity)
	assert.InDelta(t, 0.7, items[0].Priority, 1e-9)
	assert.InDelta(t, 0.64, items[1].Priority, 1e-9)
	assert.InDelta(t, 0.54, items[2].Priority, 1e-9)
}

func TestExtractActionItemsStableForEqualPriority(t *testing.T) {
	classifications := []models.ClassificationMatch{
		{Category: models.CategoryMigrationRequired, Severity: models.SeverityHigh, Confidence: 1.0},
		{Category: models.CategoryDeprecation, Severity: models.SeverityHigh, Confidence: 1.0},
	}

	items := ExtractActionItems(classifications, "", DefaultActionContextRadius)
	require.Len(t, items, 2)
	assert.Equal(t, models.CategoryMigrationRequired, items[0].Category)
	assert.Equal(t, models.CategoryDeprecation, items[1].Category)
}

func TestExtractActionItemsSkipsUnmapped(t *testing.T) {
	classifications := []models.ClassificationMatch{
		{Category: models.CategoryFeatureAddition, Severity: models.SeverityInfo, Confidence: 1.0},
		{Category: models.CategoryBreakingChange, Severity: models.SeverityLow, Confidence: 1.0},
	}

	items := ExtractActionItems(classifications, "added support", DefaultActionContextRadius)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestExtractActionItemsContexts(t *testing.T) {
	text := strings.Repeat("a", 60) + " removed in 1.29 " + strings.Repeat("b", 60)
	c := New(nil, DefaultConfidenceThreshold)

	start := strings.Index(text, "removed in")
	classifications := []models.ClassificationMatch{{
		Category:     models.CategoryBreakingChange,
		Severity:     models.SeverityCritical,
		Confidence:   1.0,
		MatchedSpans: []models.Span{{Start: start, End: start + len("removed in")}},
	}}

	items := c.ExtractActionItems(classifications, text)
	require.Len(t, items, 1)
	require.Len(t, items[0].Contexts, 1)

	expected := strings.TrimSpace(text[start-50 : start+len("removed in")+50])
	assert.Equal(t, expected, items[0].Contexts[0])
	assert.Equal(t, "Immediate review and testing required before upgrade", items[0].Action)
}

func TestExtractActionItemsFromClassify(t *testing.T) {
	c := New(nil, DefaultConfidenceThreshold)
	text := "Security fix for CVE-2024-0001. Support for v1beta1 is deprecated."

	items := c.ExtractActionItems(c.Classify(text), text)
	require.NotEmpty(t, items)
	assert.Equal(t, models.CategorySecurityUpdate, items[0].Category)
	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i-1].Priority, items[i].Priority)
	}
}
