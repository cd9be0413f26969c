package analysis

import (
	"fmt"

	"github.com/moolen/upgradelens/internal/classifier"
	"github.com/moolen/upgradelens/internal/extractor"
	"github.com/moolen/upgradelens/internal/result"
)

// ============================================================================
// CORRELATION WINDOWS
// ============================================================================

const (
	// DefaultBreakingChangeContextRadius is the number of characters kept on
	// each side of a breaking change indicator.
	DefaultBreakingChangeContextRadius = 100

	// DefaultDeprecationProximity is the maximum distance between the start of
	// a deprecation indicator and the start of an API version or resource kind
	// for the two to be correlated.
	DefaultDeprecationProximity = 200

	// DefaultDeprecationContextRadius sizes the context window reported on a
	// deprecation record.
	DefaultDeprecationContextRadius = 150
)

// SkipUncorrelatedDeprecations names the fixed policy for deprecation
// indicators with no API version or resource kind inside the proximity
// window: they produce no deprecation record.
const SkipUncorrelatedDeprecations = true

// Policy holds the thresholds and windows of the pipeline. It is copied into
// the engine at construction.
type Policy struct {
	EntityMinConfidence         float64 `yaml:"entity_min_confidence"`
	ClassificationThreshold     float64 `yaml:"classification_threshold"`
	HighPriorityThreshold       float64 `yaml:"high_priority_threshold"`
	ActionContextRadius         int     `yaml:"action_context_radius"`
	BreakingChangeContextRadius int     `yaml:"breaking_change_context_radius"`
	DeprecationProximity        int     `yaml:"deprecation_proximity"`
	DeprecationContextRadius    int     `yaml:"deprecation_context_radius"`
}

// DefaultPolicy returns the standard thresholds and windows.
func DefaultPolicy() Policy {
	return Policy{
		EntityMinConfidence:         extractor.DefaultMinConfidence,
		ClassificationThreshold:     classifier.DefaultConfidenceThreshold,
		HighPriorityThreshold:       result.DefaultHighPriorityThreshold,
		ActionContextRadius:         classifier.DefaultActionContextRadius,
		BreakingChangeContextRadius: DefaultBreakingChangeContextRadius,
		DeprecationProximity:        DefaultDeprecationProximity,
		DeprecationContextRadius:    DefaultDeprecationContextRadius,
	}
}

// Validate checks that thresholds lie in [0, 1] and windows are non-negative.
func (p Policy) Validate() error {
	thresholds := []struct {
		name  string
		value float64
	}{
		{"entity_min_confidence", p.EntityMinConfidence},
		{"classification_threshold", p.ClassificationThreshold},
		{"high_priority_threshold", p.HighPriorityThreshold},
	}
	for _, th := range thresholds {
		if th.value < 0 || th.value > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", th.name, th.value)
		}
	}

	windows := []struct {
		name  string
		value int
	}{
		{"action_context_radius", p.ActionContextRadius},
		{"breaking_change_context_radius", p.BreakingChangeContextRadius},
		{"deprecation_proximity", p.DeprecationProximity},
		{"deprecation_context_radius", p.DeprecationContextRadius},
	}
	for _, w := range windows {
		if w.value < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", w.name, w.value)
		}
	}
	return nil
}
