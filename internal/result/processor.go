// Package result assembles analysis outputs into an AnalysisResult and
// derives the scores and reports computed from it.
package result

import (
	"math"
	"unicode/utf8"

	"github.com/moolen/upgradelens/internal/models"
)

// DefaultHighPriorityThreshold is the action priority above which an action
// counts as high priority in the summary.
const DefaultHighPriorityThreshold = 0.7

// ============================================================================
// SEVERITY SCORING
// ============================================================================

// Breaking changes weigh most, then deprecations, then urgent actions.
const (
	severityPerBreakingChange = 3.0
	severityPerDeprecation    = 2.0
	severityPerCriticalAction = 2.0
	severityPerHighAction     = 1.0

	// MaxSeverityScore caps the severity score.
	MaxSeverityScore = 10.0
)

// ============================================================================
// QUALITY SCORING
// ============================================================================

const (
	qualityPerEntity         = 0.1
	qualityEntityCap         = 3.0
	qualityPerClassification = 0.2
	qualityClassificationCap = 2.0
	qualityRelevanceWeight   = 3.0
	qualityPerActionItem     = 0.15
	qualityActionItemCap     = 2.0

	// MaxQualityScore caps the quality score.
	MaxQualityScore = 10.0
)

// Inputs are the intermediate products of one analysis.
type Inputs struct {
	Text                     string
	ExternalEntities         []models.Entity
	DomainEntities           []models.Entity
	FilteredEntities         []models.Entity
	Classifications          []models.ClassificationMatch
	Context                  models.KubernetesContext
	BreakingChanges          []models.BreakingChangeRecord
	Deprecations             []models.DeprecationRecord
	ActionItems              []models.ActionItem
	EntityValidation         models.EntityValidation
	ClassificationValidation models.ClassificationValidation
}

// Processor is stateless apart from its threshold and safe for concurrent use.
type Processor struct {
	highPriorityThreshold float64
}

// NewProcessor creates a processor that counts actions with a priority above
// highPriorityThreshold as high priority.
func NewProcessor(highPriorityThreshold float64) *Processor {
	return &Processor{highPriorityThreshold: highPriorityThreshold}
}

// Aggregate assembles in into an AnalysisResult. Nil lists become empty
// lists so the JSON form never contains null collections.
func (p *Processor) Aggregate(in Inputs) *models.AnalysisResult {
	filtered := orEmpty(in.FilteredEntities)
	actions := orEmpty(in.ActionItems)
	classifications := orEmpty(in.Classifications)

	highPriority := 0
	for _, a := range actions {
		if a.Priority > p.highPriorityThreshold {
			highPriority++
		}
	}

	r := &models.AnalysisResult{
		InputTextLength: utf8.RuneCountInString(in.Text),
		Entities: models.EntitySet{
			External:   orEmpty(in.ExternalEntities),
			Kubernetes: orEmpty(in.DomainEntities),
			Filtered:   filtered,
			Count:      len(filtered),
		},
		Classifications:   classifications,
		KubernetesContext: in.Context,
		BreakingChanges:   orEmpty(in.BreakingChanges),
		APIDeprecations:   orEmpty(in.Deprecations),
		ActionItems:       actions,
		Validation: models.ValidationReport{
			Entities:        in.EntityValidation,
			Classifications: in.ClassificationValidation,
		},
	}
	r.Summary = models.Summary{
		KubernetesRelevanceScore: in.Context.RelevanceScore,
		TotalEntities:            len(filtered),
		TotalClassifications:     len(classifications),
		BreakingChangeCount:      len(r.BreakingChanges),
		DeprecationCount:         len(r.APIDeprecations),
		ActionItemCount:          len(actions),
		HighPriorityActions:      highPriority,
	}
	return r
}

// DeriveBreakingChangeReport narrows r to the upgrade-risk view.
func (p *Processor) DeriveBreakingChangeReport(r *models.AnalysisResult) *models.BreakingChangeReport {
	critical := make([]models.ActionItem, 0)
	immediate := false
	for _, a := range r.ActionItems {
		if a.Severity.IsUrgent() {
			critical = append(critical, a)
		}
		if a.Severity == models.SeverityCritical {
			immediate = true
		}
	}

	migration := false
	for _, c := range r.Classifications {
		if c.Category == models.CategoryMigrationRequired {
			migration = true
			break
		}
	}

	return &models.BreakingChangeReport{
		AnalysisID:      r.AnalysisID,
		BreakingChanges: orEmpty(r.BreakingChanges),
		APIDeprecations: orEmpty(r.APIDeprecations),
		CriticalActions: critical,
		KubernetesComponents: models.ComponentSet{
			APIObjects: orEmpty(r.KubernetesContext.APIObjects),
			APIGroups:  orEmpty(r.KubernetesContext.APIGroups),
			EKSAddons:  orEmpty(r.KubernetesContext.EKSAddons),
		},
		SeverityAssessment: models.SeverityAssessment{
			OverallScore:            SeverityScore(len(r.BreakingChanges), len(r.APIDeprecations), r.ActionItems),
			RequiresImmediateAction: immediate,
			MigrationRequired:       migration,
		},
	}
}

// SeverityScore weighs breaking changes, deprecations and urgent actions
// into a 0-10 upgrade risk score.
func SeverityScore(breakingChanges, deprecations int, actions []models.ActionItem) float64 {
	score := float64(breakingChanges)*severityPerBreakingChange + float64(deprecations)*severityPerDeprecation
	for _, a := range actions {
		switch a.Severity {
		case models.SeverityCritical:
			score += severityPerCriticalAction
		case models.SeverityHigh:
			score += severityPerHighAction
		case models.SeverityMedium, models.SeverityLow, models.SeverityInfo:
		}
	}
	return math.Min(score, MaxSeverityScore)
}

// QualityScore rates how much signal an analysis found, from 0 to 10. It is
// a self-assessment and plays no part in severity.
func QualityScore(r *models.AnalysisResult) float64 {
	score := math.Min(float64(r.Entities.Count)*qualityPerEntity, qualityEntityCap) +
		math.Min(float64(len(r.Classifications))*qualityPerClassification, qualityClassificationCap) +
		r.Summary.KubernetesRelevanceScore*qualityRelevanceWeight +
		math.Min(float64(len(r.ActionItems))*qualityPerActionItem, qualityActionItemCap)
	return math.Min(score, MaxQualityScore)
}

// ValidateResult flags results with no entities or no classifications.
func (p *Processor) ValidateResult(r *models.AnalysisResult) models.ResultValidation {
	issues := make([]string, 0)
	if r.Entities.Count == 0 {
		issues = append(issues, "No entities detected")
	}
	if len(r.Classifications) == 0 {
		issues = append(issues, "No classifications found")
	}
	return models.ResultValidation{
		Valid:        len(issues) == 0,
		Issues:       issues,
		QualityScore: QualityScore(r),
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
