// Package extractor finds Kubernetes/EKS domain entities in release note text.
package extractor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/moolen/upgradelens/internal/logging"
	"github.com/moolen/upgradelens/internal/models"
	"github.com/moolen/upgradelens/internal/patterns"
	"github.com/moolen/upgradelens/internal/textspan"
)

// DefaultMinConfidence is the confidence floor used by FilterByConfidence.
const DefaultMinConfidence = 0.5

// Confidence buckets reported by Validate.
const (
	highConfidenceFloor   = 0.8
	mediumConfidenceFloor = 0.5
)

// Extractor runs the registry's entity patterns over text. It holds no
// mutable state and is safe for concurrent use.
type Extractor struct {
	registry      *patterns.Registry
	minConfidence float64
	logger        *logging.Logger
}

// New creates an extractor over registry. A nil registry selects
// patterns.Default().
func New(registry *patterns.Registry, minConfidence float64) *Extractor {
	if registry == nil {
		registry = patterns.Default()
	}
	return &Extractor{
		registry:      registry,
		minConfidence: minConfidence,
		logger:        logging.GetLogger("extractor"),
	}
}

// MinConfidence returns the threshold applied by FilterByConfidence.
func (x *Extractor) MinConfidence() float64 {
	return x.minConfidence
}

// Extract returns one entity per pattern match, in registry order, with
// character offsets. Matches of different patterns are not deduplicated;
// overlaps surface in Validate.
func (x *Extractor) Extract(text string) []models.Entity {
	entities := make([]models.Entity, 0)
	if strings.TrimSpace(text) == "" {
		return entities
	}

	index := textspan.NewIndex(text)
	for _, ep := range x.registry.EntityPatterns() {
		for _, re := range ep.Expressions {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				// zero-width matches cannot form a valid entity
				if loc[1] <= loc[0] {
					continue
				}
				begin, end := index.Span(loc)
				entities = append(entities, models.Entity{
					Text:        text[loc[0]:loc[1]],
					Type:        ep.Type,
					Confidence:  ep.Confidence,
					BeginOffset: begin,
					EndOffset:   end,
					Category:    models.EntityCategoryKubernetes,
					Subcategory: ep.Type,
				})
			}
		}
	}

	x.logger.Debug("Extracted %d domain entities", len(entities))
	return entities
}

// FilterByConfidence keeps entities at or above the extractor's threshold.
func (x *Extractor) FilterByConfidence(entities []models.Entity) []models.Entity {
	return FilterByConfidence(entities, x.minConfidence)
}

// FilterByConfidence keeps entities whose confidence is at least threshold,
// preserving order.
func FilterByConfidence(entities []models.Entity, threshold float64) []models.Entity {
	filtered := make([]models.Entity, 0, len(entities))
	for _, e := range entities {
		if e.Confidence >= threshold {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// GroupByType buckets entities by type, preserving order within a bucket.
func GroupByType(entities []models.Entity) map[string][]models.Entity {
	grouped := make(map[string][]models.Entity)
	for _, e := range entities {
		grouped[e.Type] = append(grouped[e.Type], e)
	}
	return grouped
}

// Validate reports overlapping spans and the confidence profile of entities.
// It never removes or merges entities.
func (x *Extractor) Validate(entities []models.Entity) models.EntityValidation {
	report := models.EntityValidation{
		Valid:       true,
		EntityCount: len(entities),
		Issues:      make([]string, 0),
	}
	if len(entities) == 0 {
		return report
	}

	sorted := append([]models.Entity(nil), entities...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BeginOffset < sorted[j].BeginOffset
	})
	for i := 0; i+1 < len(sorted); i++ {
		current, next := sorted[i], sorted[i+1]
		if current.EndOffset > next.BeginOffset {
			report.Issues = append(report.Issues,
				fmt.Sprintf("Overlapping entities: '%s' and '%s'", current.Text, next.Text))
		}
	}

	var total float64
	for _, e := range entities {
		total += e.Confidence
		switch {
		case e.Confidence > highConfidenceFloor:
			report.ConfidenceDistribution.High++
		case e.Confidence >= mediumConfidenceFloor:
			report.ConfidenceDistribution.Medium++
		default:
			report.ConfidenceDistribution.Low++
		}
	}
	report.AverageConfidence = total / float64(len(entities))
	report.Valid = len(report.Issues) == 0

	return report
}
