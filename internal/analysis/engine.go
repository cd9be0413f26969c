package analysis

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/moolen/upgradelens/internal/classifier"
	"github.com/moolen/upgradelens/internal/extractor"
	"github.com/moolen/upgradelens/internal/logging"
	"github.com/moolen/upgradelens/internal/models"
	"github.com/moolen/upgradelens/internal/patterns"
	"github.com/moolen/upgradelens/internal/result"
	"github.com/moolen/upgradelens/internal/textspan"
)

// Engine wires the extractor, classifier and result processor together.
// An Engine is immutable; build a new one to change the registry or policy.
type Engine struct {
	registry   *patterns.Registry
	policy     Policy
	extractor  *extractor.Extractor
	classifier *classifier.Classifier
	processor  *result.Processor
	logger     *logging.Logger
	tracer     trace.Tracer
}

// NewEngine validates policy and builds an engine over registry. A nil
// registry selects patterns.Default().
func NewEngine(registry *patterns.Registry, policy Policy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis policy: %w", err)
	}
	if registry == nil {
		registry = patterns.Default()
	}
	return &Engine{
		registry:   registry,
		policy:     policy,
		extractor:  extractor.New(registry, policy.EntityMinConfidence),
		classifier: classifier.New(registry, policy.ClassificationThreshold),
		processor:  result.NewProcessor(policy.HighPriorityThreshold),
		logger:     logging.GetLogger("analysis"),
	}, nil
}

// WithTracer returns a copy of the engine that records spans on tracer.
func (e *Engine) WithTracer(tracer trace.Tracer) *Engine {
	clone := *e
	clone.tracer = tracer
	return &clone
}

// WithRegistry builds an engine that keeps e's policy and tracer but matches
// against registry.
func (e *Engine) WithRegistry(registry *patterns.Registry) (*Engine, error) {
	next, err := NewEngine(registry, e.policy)
	if err != nil {
		return nil, err
	}
	next.tracer = e.tracer
	return next, nil
}

func (e *Engine) Registry() *patterns.Registry { return e.registry }

func (e *Engine) Policy() Policy { return e.policy }

// Processor exposes the result processor for callers that derive reports
// from stored results.
func (e *Engine) Processor() *result.Processor { return e.processor }

// Analyze runs the full pipeline over text. The only error is an invalid
// external entity; any text, including an empty one, analyzes successfully.
// ctx carries tracing and logging correlation only; the work is CPU bound
// and not interruptible.
func (e *Engine) Analyze(ctx context.Context, text string, external []models.Entity) (*models.AnalysisResult, error) {
	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, "analysis.Analyze")
		defer span.End()
	}
	logger := e.logger.WithContext(ctx)

	if err := models.ValidateEntities(external); err != nil {
		if span != nil {
			span.RecordError(err)
		}
		return nil, err
	}

	index := textspan.NewIndex(text)
	logger.DebugWithFields("Starting release note analysis",
		logging.Field("text_length", index.Len()),
		logging.Field("external_entities", len(external)))

	domain := e.extractor.Extract(text)
	merged := make([]models.Entity, 0, len(external)+len(domain))
	merged = append(merged, external...)
	merged = append(merged, domain...)
	filtered := e.extractor.FilterByConfidence(merged)

	classifications := e.classifier.Classify(text)
	kctx := e.classifier.AnalyzeContext(text)

	breaking := breakingChanges(filtered, index, e.policy.BreakingChangeContextRadius)
	deps := deprecations(filtered, index, e.policy.DeprecationProximity, e.policy.DeprecationContextRadius)

	actions := classifier.ExtractActionItems(classifications, text, e.policy.ActionContextRadius)

	r := e.processor.Aggregate(result.Inputs{
		Text:                     text,
		ExternalEntities:         external,
		DomainEntities:           domain,
		FilteredEntities:         filtered,
		Classifications:          classifications,
		Context:                  kctx,
		BreakingChanges:          breaking,
		Deprecations:             deps,
		ActionItems:              actions,
		EntityValidation:         e.extractor.Validate(filtered),
		ClassificationValidation: e.classifier.Validate(classifications),
	})

	if span != nil {
		span.SetAttributes(
			attribute.Int("text_length", r.InputTextLength),
			attribute.Int("entity_count", r.Entities.Count),
			attribute.Int("classification_count", len(r.Classifications)),
			attribute.Int("breaking_change_count", len(r.BreakingChanges)),
			attribute.Int("action_item_count", len(r.ActionItems)),
		)
	}
	logger.InfoWithFields("Completed release note analysis",
		logging.Field("entity_count", r.Entities.Count),
		logging.Field("classification_count", len(r.Classifications)),
		logging.Field("breaking_change_count", len(r.BreakingChanges)),
		logging.Field("action_item_count", len(r.ActionItems)))

	return r, nil
}

// DetectBreakingChanges analyzes releaseNotes and returns the breaking change
// view of the result.
func (e *Engine) DetectBreakingChanges(ctx context.Context, releaseNotes string, external []models.Entity) (*models.BreakingChangeReport, error) {
	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, "analysis.DetectBreakingChanges")
		defer span.End()
	}

	r, err := e.Analyze(ctx, releaseNotes, external)
	if err != nil {
		if span != nil {
			span.RecordError(err)
		}
		return nil, err
	}

	report := e.processor.DeriveBreakingChangeReport(r)
	e.logger.WithContext(ctx).InfoWithFields("Breaking change analysis completed",
		logging.Field("breaking_changes", len(report.BreakingChanges)),
		logging.Field("overall_score", report.SeverityAssessment.OverallScore))
	return report, nil
}
