package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/upgradelens/internal/models"
	"github.com/moolen/upgradelens/internal/patterns"
)

func entity(text, typ string, confidence float64, begin, end int) models.Entity {
	return models.Entity{Text: text, Type: typ, Confidence: confidence, BeginOffset: begin, EndOffset: end}
}

func TestExtract(t *testing.T) {
	x := New(nil, DefaultMinConfidence)

	entities := x.Extract("Deployment apps/v1 is deprecated")
	require.Len(t, entities, 4)

	got := make([][3]interface{}, 0, len(entities))
	for _, e := range entities {
		got = append(got, [3]interface{}{e.Type, e.Text, e.BeginOffset})
		assert.Equal(t, models.EntityCategoryKubernetes, e.Category)
		assert.Equal(t, e.Type, e.Subcategory)
		assert.Greater(t, e.EndOffset, e.BeginOffset)
	}
	assert.Equal(t, [][3]interface{}{
		{models.EntityTypeAPIVersion, "v1", 16},
		{models.EntityTypeAPIVersion, "apps/v1", 11},
		{models.EntityTypeResourceKind, "Deployment", 0},
		{models.EntityTypeBreakingChangeIndicators, "deprecated", 22},
	}, got)
}

func TestExtractEKSComponentsAndVersions(t *testing.T) {
	x := New(nil, DefaultMinConfidence)

	grouped := GroupByType(x.Extract("Updated coredns to 1.11.1 and vpc-cni"))

	require.Len(t, grouped[models.EntityTypeEKSComponent], 2)
	assert.Equal(t, "coredns", grouped[models.EntityTypeEKSComponent][0].Text)
	assert.Equal(t, "vpc-cni", grouped[models.EntityTypeEKSComponent][1].Text)
	require.Len(t, grouped[models.EntityTypeVersionNumber], 1)
	assert.Equal(t, "1.11.1", grouped[models.EntityTypeVersionNumber][0].Text)
	assert.Equal(t, 0.8, grouped[models.EntityTypeVersionNumber][0].Confidence)
}

func TestExtractCharacterOffsets(t *testing.T) {
	x := New(nil, DefaultMinConfidence)

	grouped := GroupByType(x.Extract("Überblick: Deployment is deprecated"))

	require.Len(t, grouped[models.EntityTypeResourceKind], 1)
	kind := grouped[models.EntityTypeResourceKind][0]
	assert.Equal(t, "Deployment", kind.Text)
	assert.Equal(t, 11, kind.BeginOffset)
	assert.Equal(t, 21, kind.EndOffset)

	require.Len(t, grouped[models.EntityTypeBreakingChangeIndicators], 1)
	indicator := grouped[models.EntityTypeBreakingChangeIndicators][0]
	assert.Equal(t, 25, indicator.BeginOffset)
	assert.Equal(t, 35, indicator.EndOffset)
}

func TestExtractEmptyText(t *testing.T) {
	x := New(nil, DefaultMinConfidence)

	for _, text := range []string{"", "   ", "\n\t"} {
		entities := x.Extract(text)
		assert.NotNil(t, entities)
		assert.Empty(t, entities)
	}
}

func TestExtractWithInjectedRegistry(t *testing.T) {
	r, err := patterns.New(patterns.Spec{
		EntityPatterns: []patterns.EntityPatternSpec{
			{Type: "ADDON", Confidence: 0.6, Patterns: []string{`\bkarpenter\b`}},
			{Type: "EMPTY", Confidence: 0.6, Patterns: []string{`x*`}},
		},
	})
	require.NoError(t, err)

	entities := New(r, DefaultMinConfidence).Extract("Karpenter replaces cluster-autoscaler")
	require.Len(t, entities, 1)
	assert.Equal(t, "Karpenter", entities[0].Text)
	assert.Equal(t, "ADDON", entities[0].Type)
}

func TestFilterByConfidence(t *testing.T) {
	entities := []models.Entity{
		entity("a", "T", 0.9, 0, 1),
		entity("b", "T", 0.5, 2, 3),
		entity("c", "T", 0.49, 4, 5),
		entity("d", "T", 0.7, 6, 7),
	}

	tests := []struct {
		name      string
		threshold float64
		want      []string
	}{
		{name: "default floor is inclusive", threshold: 0.5, want: []string{"a", "b", "d"}},
		{name: "strict", threshold: 0.8, want: []string{"a"}},
		{name: "zero keeps all", threshold: 0, want: []string{"a", "b", "c", "d"}},
		{name: "above all", threshold: 0.95, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := FilterByConfidence(entities, tt.threshold)
			texts := make([]string, 0)
			for _, e := range filtered {
				texts = append(texts, e.Text)
			}
			assert.Equal(t, tt.want, texts)
			assert.Equal(t, filtered, FilterByConfidence(filtered, tt.threshold), "filtering is idempotent")
		})
	}

	x := New(nil, 0.7)
	assert.Len(t, x.FilterByConfidence(entities), 2)
}

func TestGroupByType(t *testing.T) {
	grouped := GroupByType([]models.Entity{
		entity("v1", models.EntityTypeAPIVersion, 0.9, 0, 2),
		entity("Pod", models.EntityTypeResourceKind, 0.8, 3, 6),
		entity("v2", models.EntityTypeAPIVersion, 0.9, 7, 9),
	})

	assert.Len(t, grouped, 2)
	assert.Equal(t, "v2", grouped[models.EntityTypeAPIVersion][1].Text)
	assert.Empty(t, GroupByType(nil))
}

func TestValidate(t *testing.T) {
	x := New(nil, DefaultMinConfidence)

	t.Run("empty", func(t *testing.T) {
		report := x.Validate(nil)
		assert.True(t, report.Valid)
		assert.Equal(t, 0, report.EntityCount)
		assert.Equal(t, 0.0, report.AverageConfidence)
		assert.Equal(t, models.ConfidenceDistribution{}, report.ConfidenceDistribution)
		assert.Empty(t, report.Issues)
	})

	t.Run("overlap", func(t *testing.T) {
		report := x.Validate([]models.Entity{
			entity("test", "T", 0.9, 0, 5),
			entity("est", "T", 0.9, 1, 4),
		})
		assert.False(t, report.Valid)
		assert.Equal(t, []string{"Overlapping entities: 'test' and 'est'"}, report.Issues)
	})

	t.Run("unsorted input is sorted before checking", func(t *testing.T) {
		report := x.Validate([]models.Entity{
			entity("later", "T", 0.9, 10, 15),
			entity("early", "T", 0.9, 0, 5),
		})
		assert.True(t, report.Valid)
	})

	t.Run("adjacent spans do not overlap", func(t *testing.T) {
		report := x.Validate([]models.Entity{
			entity("ab", "T", 0.9, 0, 2),
			entity("cd", "T", 0.9, 2, 4),
		})
		assert.True(t, report.Valid)
	})

	t.Run("distribution", func(t *testing.T) {
		report := x.Validate([]models.Entity{
			entity("a", "T", 0.9, 0, 1),
			entity("b", "T", 0.85, 2, 3),
			entity("c", "T", 0.6, 4, 5),
			entity("d", "T", 0.3, 6, 7),
		})
		assert.Equal(t, models.ConfidenceDistribution{High: 2, Medium: 1, Low: 1}, report.ConfidenceDistribution)
		assert.InDelta(t, 0.6625, report.AverageConfidence, 1e-9)
		assert.Equal(t, 4, report.EntityCount)
	})

	t.Run("extracted text", func(t *testing.T) {
		report := x.Validate(x.Extract("Deployment apps/v1 is deprecated"))
		assert.False(t, report.Valid)
		assert.Equal(t, []string{"Overlapping entities: 'apps/v1' and 'v1'"}, report.Issues)
		assert.Equal(t, models.ConfidenceDistribution{High: 2, Medium: 2}, report.ConfidenceDistribution)
	})
}
