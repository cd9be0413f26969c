package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/upgradelens/internal/models"
)

const upgradeNotes = "PodSecurityPolicy was removed in Kubernetes 1.25. " +
	"The extensions/v1beta1 Ingress API is deprecated; migrate to networking.k8s.io/v1 before upgrading."

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(nil, DefaultPolicy())
	require.NoError(t, err)
	return e
}

func TestAnalyzeEmptyText(t *testing.T) {
	e := newTestEngine(t)

	for _, text := range []string{"", "   \n  "} {
		r, err := e.Analyze(context.Background(), text, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, r.Entities.Count)
		assert.Empty(t, r.Entities.Kubernetes)
		assert.Empty(t, r.Classifications)
		assert.Empty(t, r.BreakingChanges)
		assert.Empty(t, r.APIDeprecations)
		assert.Empty(t, r.ActionItems)
		assert.Equal(t, 0.0, r.Summary.KubernetesRelevanceScore)
		assert.True(t, r.Validation.Entities.Valid)
		assert.True(t, r.Validation.Classifications.Valid)
	}
}

func TestAnalyzeDeprecationProximity(t *testing.T) {
	e := newTestEngine(t)

	far := "The Deployment" + strings.Repeat(".", 230) + " deprecated"
	r, err := e.Analyze(context.Background(), far, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, r.BreakingChanges, "the indicator itself is still a breaking change")
	assert.Empty(t, r.APIDeprecations, "indicator more than 200 characters away must not correlate")

	near := "The Deployment" + strings.Repeat(".", 100) + " deprecated"
	r, err = e.Analyze(context.Background(), near, nil)
	require.NoError(t, err)
	// both indicator patterns match "deprecated"
	require.Len(t, r.APIDeprecations, 2)
	record := r.APIDeprecations[0]
	assert.Equal(t, "deprecated", record.Indicator)
	assert.Equal(t, 0.7, record.Confidence)
	assert.Equal(t, []string{"Deployment"}, record.ResourceKinds)
	assert.Empty(t, record.APIVersions)
	assert.Equal(t, 0, record.ContextStart)
	assert.Equal(t, len(near), record.ContextEnd)
}

func TestAnalyzeDeprecationProximityBoundary(t *testing.T) {
	e := newTestEngine(t)

	// "Pod" starts at 0; the indicator starts at exactly 200
	text := "Pod" + strings.Repeat(".", 196) + " REMOVED"
	r, err := e.Analyze(context.Background(), text, nil)
	require.NoError(t, err)
	require.NotEmpty(t, r.APIDeprecations)
	assert.Equal(t, []string{"Pod"}, r.APIDeprecations[0].ResourceKinds)
}

func TestAnalyzeMultibyteProximity(t *testing.T) {
	e := newTestEngine(t)

	// "Deployment" starts at character 4; "deprecated" at 16 + filler
	tests := []struct {
		name   string
		filler int
		want   int
	}{
		{name: "over 200 bytes within 200 characters", filler: 120, want: 2},
		{name: "exactly 200 characters", filler: 188, want: 2},
		{name: "one character past", filler: 189, want: 0},
		{name: "far", filler: 200, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "The Deployment " + strings.Repeat("é", tt.filler) + " deprecated"
			r, err := e.Analyze(context.Background(), text, nil)
			require.NoError(t, err)
			require.Len(t, r.APIDeprecations, tt.want)
			for _, record := range r.APIDeprecations {
				assert.Equal(t, []string{"Deployment"}, record.ResourceKinds)
				assert.Equal(t, 0, record.ContextStart)
				assert.Equal(t, utf8.RuneCountInString(text), record.ContextEnd)
			}
		})
	}
}

func TestAnalyzeMultibyteContext(t *testing.T) {
	e := newTestEngine(t)

	text := "The Deployment " + strings.Repeat("é", 120) + " deprecated"
	r, err := e.Analyze(context.Background(), text, nil)
	require.NoError(t, err)
	assert.Equal(t, 146, r.InputTextLength)
	require.NotEmpty(t, r.BreakingChanges)
	for _, record := range r.BreakingChanges {
		if record.Text != "deprecated" {
			continue
		}
		assert.Equal(t, models.Span{Start: 136, End: 146}, record.Position)
		// 100 characters of context before the indicator, trimmed
		assert.Equal(t, strings.Repeat("é", 99)+" deprecated", record.Context)
	}

	var kinds []models.Entity
	for _, entity := range r.Entities.Kubernetes {
		if entity.Text == "Deployment" {
			kinds = append(kinds, entity)
		}
	}
	require.NotEmpty(t, kinds)
	assert.Equal(t, 4, kinds[0].BeginOffset)
	assert.Equal(t, 14, kinds[0].EndOffset)
}

func TestAnalyzeCustomPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.DeprecationProximity = 50
	e, err := NewEngine(nil, policy)
	require.NoError(t, err)

	near := "The Deployment" + strings.Repeat(".", 100) + " deprecated"
	r, err := e.Analyze(context.Background(), near, nil)
	require.NoError(t, err)
	assert.Empty(t, r.APIDeprecations)
	assert.Equal(t, 50, e.Policy().DeprecationProximity)
}

func TestAnalyzeMergesExternalEntities(t *testing.T) {
	e := newTestEngine(t)
	text := "AWS removed the legacy flag"

	external := []models.Entity{
		{Text: "AWS", Type: "ORGANIZATION", Confidence: 0.95, BeginOffset: 0, EndOffset: 3},
		{Text: "legacy flag", Type: "OTHER", Confidence: 0.3, BeginOffset: 16, EndOffset: 27},
	}

	r, err := e.Analyze(context.Background(), text, external)
	require.NoError(t, err)

	assert.Equal(t, external, r.Entities.External)
	require.NotEmpty(t, r.Entities.Filtered)
	assert.Equal(t, "AWS", r.Entities.Filtered[0].Text, "external entities come first")
	for _, f := range r.Entities.Filtered {
		assert.NotEqual(t, "legacy flag", f.Text, "low confidence entity is filtered")
		assert.GreaterOrEqual(t, f.Confidence, DefaultPolicy().EntityMinConfidence)
	}
	assert.Equal(t, len(r.Entities.Filtered), r.Entities.Count)
}

func TestAnalyzeExternalEntityTextTriggersBreakingChange(t *testing.T) {
	e := newTestEngine(t)

	external := []models.Entity{{Text: "Removal", Type: "EVENT", Confidence: 0.9, BeginOffset: 0, EndOffset: 7}}
	r, err := e.Analyze(context.Background(), "Removal of the dockershim", external)
	require.NoError(t, err)
	require.Len(t, r.BreakingChanges, 1)
	assert.Equal(t, "Removal", r.BreakingChanges[0].Text)
	assert.Equal(t, "EVENT", r.BreakingChanges[0].Type)
	assert.Equal(t, "Removal of the dockershim", r.BreakingChanges[0].Context)
}

func TestAnalyzeRejectsInvalidExternalEntity(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Analyze(context.Background(), "text", []models.Entity{
		{Text: "bad", Type: "T", Confidence: 0.5, BeginOffset: 4, EndOffset: 2},
	})
	require.Error(t, err)
	assert.True(t, models.IsInvalidEntityError(err))
}

func TestNewEngineRejectsInvalidPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.ClassificationThreshold = 1.5
	_, err := NewEngine(nil, policy)
	assert.Error(t, err)

	policy = DefaultPolicy()
	policy.ActionContextRadius = -1
	_, err = NewEngine(nil, policy)
	assert.Error(t, err)
}

func TestDetectBreakingChanges(t *testing.T) {
	e := newTestEngine(t)

	report, err := e.DetectBreakingChanges(context.Background(), upgradeNotes, nil)
	require.NoError(t, err)

	assert.Len(t, report.BreakingChanges, 4)
	assert.Len(t, report.APIDeprecations, 4)
	assert.Equal(t, 10.0, report.SeverityAssessment.OverallScore)
	assert.True(t, report.SeverityAssessment.RequiresImmediateAction)
	assert.True(t, report.SeverityAssessment.MigrationRequired)
	assert.Len(t, report.CriticalActions, 3)
	for i := 1; i < len(report.CriticalActions); i++ {
		assert.GreaterOrEqual(t, report.CriticalActions[i-1].Priority, report.CriticalActions[i].Priority)
	}
	assert.Contains(t, report.KubernetesComponents.APIObjects, "PodSecurityPolicy")
	assert.Contains(t, report.KubernetesComponents.APIObjects, "Ingress")
	assert.Contains(t, report.KubernetesComponents.APIGroups, "extensions")
	assert.Contains(t, report.KubernetesComponents.APIGroups, "networking.k8s.io")

	assert.Contains(t, report.APIDeprecations[0].GroupVersions,
		models.GroupVersion{Raw: "extensions/v1beta1", Group: "extensions", Version: "v1beta1"})
	assert.Contains(t, report.APIDeprecations[0].GroupVersions,
		models.GroupVersion{Raw: "v1beta1", Group: "", Version: "v1beta1"})
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	e := newTestEngine(t)

	baseline, err := e.Analyze(context.Background(), upgradeNotes, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*models.AnalysisResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := e.Analyze(context.Background(), upgradeNotes, nil)
			if err == nil {
				results[i] = r
			}
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, baseline, r)
	}
}

func TestAnalysisResultJSONRoundTrip(t *testing.T) {
	e := newTestEngine(t)

	external := []models.Entity{{Text: "Amazon EKS", Type: "ORGANIZATION", Confidence: 0.99, BeginOffset: 0, EndOffset: 10}}
	r, err := e.Analyze(context.Background(), "Amazon EKS: "+upgradeNotes, external)
	require.NoError(t, err)
	r.AnalysisID = "round-trip"

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded models.AnalysisResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *r, decoded)

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &generic))
	for _, key := range []string{"analysis_id", "input_text_length", "entities", "classifications",
		"kubernetes_context", "breaking_changes", "api_deprecations", "action_items", "validation", "summary"} {
		assert.Contains(t, generic, key)
	}

	kctx, ok := generic["kubernetes_context"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, kctx, "kubernetes_score")
	assert.NotContains(t, kctx, "relevance_score")
}

func TestAnalyzeWithSource(t *testing.T) {
	e := newTestEngine(t)
	src := StaticSource{{Text: "EKS", Type: "ORGANIZATION", Confidence: 0.9, BeginOffset: 0, EndOffset: 3}}

	r, err := e.AnalyzeWithSource(context.Background(), "EKS deprecated v1beta1", src)
	require.NoError(t, err)
	assert.Len(t, r.Entities.External, 1)

	r, err = e.AnalyzeWithSource(context.Background(), "  ", src)
	require.NoError(t, err)
	assert.Empty(t, r.Entities.External)

	r, err = e.AnalyzeWithSource(context.Background(), "no source", nil)
	require.NoError(t, err)
	assert.Empty(t, r.Entities.External)
}

func TestHolderSwap(t *testing.T) {
	first := newTestEngine(t)
	h := NewHolder(first)
	assert.Same(t, first, h.Engine())

	second := newTestEngine(t)
	assert.Same(t, first, h.Swap(second))
	assert.Same(t, second, h.Engine())
}
