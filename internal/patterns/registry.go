// Package patterns holds the compiled detection tables used by the entity
// extractor and the classifier.
//
// A Registry is immutable after construction and safe for concurrent use.
// Default returns the built-in tables; New builds a registry from a Spec,
// typically loaded from a YAML file.
package patterns

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/moolen/upgradelens/internal/models"
)

// EntityPattern is a compiled entity type definition.
type EntityPattern struct {
	Type        string
	Confidence  float64
	Expressions []*regexp.Regexp
}

// CategoryRule is a compiled classification rule.
type CategoryRule struct {
	Category models.Category
	Severity models.Severity
	Patterns []*regexp.Regexp
	Keywords []string
}

// Vocabulary lists the component names recognized in context analysis.
type Vocabulary struct {
	APIObjects []string
	APIGroups  []string
	EKSAddons  []string
}

// Registry is the immutable set of compiled pattern tables.
type Registry struct {
	spec            Spec
	entityPatterns  []EntityPattern
	rules           []CategoryRule
	vocabulary      Vocabulary
	versionPattern  *regexp.Regexp
	contextKeywords []string
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from DefaultSpec.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := New(DefaultSpec())
		if err != nil {
			panic(fmt.Sprintf("patterns: built-in tables do not compile: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// New compiles spec into a registry. Every category must be a known
// category with a known severity and may appear at most once; entity
// confidences must lie in [0, 1].
func New(spec Spec) (*Registry, error) {
	if spec.SchemaVersion != "" && spec.SchemaVersion != SchemaVersion {
		return nil, &RegistryError{Field: "schema_version", Message: fmt.Sprintf("unsupported version %q (expected %q)", spec.SchemaVersion, SchemaVersion)}
	}

	r := &Registry{spec: spec}

	seenTypes := make(map[string]bool)
	for i, ep := range spec.EntityPatterns {
		field := fmt.Sprintf("entity_patterns[%d]", i)
		if strings.TrimSpace(ep.Type) == "" {
			return nil, &RegistryError{Field: field + ".type", Message: "must not be empty"}
		}
		if seenTypes[ep.Type] {
			return nil, &RegistryError{Field: field + ".type", Message: fmt.Sprintf("duplicate entity type %q", ep.Type)}
		}
		seenTypes[ep.Type] = true
		if ep.Confidence < 0 || ep.Confidence > 1 {
			return nil, &RegistryError{Field: field + ".confidence", Message: fmt.Sprintf("%v is outside [0, 1]", ep.Confidence)}
		}

		compiled := EntityPattern{Type: ep.Type, Confidence: ep.Confidence}
		for j, expr := range ep.Patterns {
			re, err := compile(fmt.Sprintf("%s.patterns[%d]", field, j), expr)
			if err != nil {
				return nil, err
			}
			compiled.Expressions = append(compiled.Expressions, re)
		}
		r.entityPatterns = append(r.entityPatterns, compiled)
	}

	seenCategories := make(map[models.Category]bool)
	for i, cs := range spec.Categories {
		field := fmt.Sprintf("categories[%d]", i)
		if !cs.Category.IsValid() {
			return nil, &RegistryError{Field: field + ".category", Message: fmt.Sprintf("unknown category %q", cs.Category)}
		}
		if seenCategories[cs.Category] {
			return nil, &RegistryError{Field: field + ".category", Message: fmt.Sprintf("duplicate category %q", cs.Category)}
		}
		seenCategories[cs.Category] = true
		if !cs.Severity.IsValid() {
			return nil, &RegistryError{Field: field + ".severity", Message: fmt.Sprintf("unknown severity %q", cs.Severity)}
		}

		rule := CategoryRule{
			Category: cs.Category,
			Severity: cs.Severity,
			Keywords: append([]string(nil), cs.Keywords...),
		}
		for j, expr := range cs.Patterns {
			re, err := compile(fmt.Sprintf("%s.patterns[%d]", field, j), expr)
			if err != nil {
				return nil, err
			}
			rule.Patterns = append(rule.Patterns, re)
		}
		r.rules = append(r.rules, rule)
	}

	versionExpr := spec.VersionPattern
	if versionExpr == "" {
		versionExpr = DefaultVersionPattern
	}
	// version references are matched case-sensitively
	re, err := regexp.Compile(versionExpr)
	if err != nil {
		return nil, &RegistryError{Field: "version_pattern", Message: err.Error()}
	}
	r.versionPattern = re

	r.vocabulary = Vocabulary{
		APIObjects: append([]string(nil), spec.Vocabulary.APIObjects...),
		APIGroups:  append([]string(nil), spec.Vocabulary.APIGroups...),
		EKSAddons:  append([]string(nil), spec.Vocabulary.EKSAddons...),
	}
	r.contextKeywords = append([]string(nil), spec.ContextKeywords...)

	return r, nil
}

// EntityPatterns returns the entity definitions in declaration order.
func (r *Registry) EntityPatterns() []EntityPattern {
	return append([]EntityPattern(nil), r.entityPatterns...)
}

// Rules returns the classification rules in declaration order.
func (r *Registry) Rules() []CategoryRule {
	return append([]CategoryRule(nil), r.rules...)
}

// Rule returns the rule for category c.
func (r *Registry) Rule(c models.Category) (CategoryRule, bool) {
	for _, rule := range r.rules {
		if rule.Category == c {
			return rule, true
		}
	}
	return CategoryRule{}, false
}

func (r *Registry) Vocabulary() Vocabulary {
	return Vocabulary{
		APIObjects: append([]string(nil), r.vocabulary.APIObjects...),
		APIGroups:  append([]string(nil), r.vocabulary.APIGroups...),
		EKSAddons:  append([]string(nil), r.vocabulary.EKSAddons...),
	}
}

func (r *Registry) VersionPattern() *regexp.Regexp {
	return r.versionPattern
}

// ContextKeywords are the generic Kubernetes words that add to a document's
// relevance score.
func (r *Registry) ContextKeywords() []string {
	return append([]string(nil), r.contextKeywords...)
}

// Spec returns a copy of the definition the registry was built from.
func (r *Registry) Spec() Spec {
	out := r.spec
	out.EntityPatterns = make([]EntityPatternSpec, len(r.spec.EntityPatterns))
	for i, ep := range r.spec.EntityPatterns {
		ep.Patterns = append([]string(nil), ep.Patterns...)
		out.EntityPatterns[i] = ep
	}
	out.Categories = make([]CategorySpec, len(r.spec.Categories))
	for i, cs := range r.spec.Categories {
		cs.Patterns = append([]string(nil), cs.Patterns...)
		cs.Keywords = append([]string(nil), cs.Keywords...)
		out.Categories[i] = cs
	}
	out.Vocabulary = VocabularySpec{
		APIObjects: append([]string(nil), r.spec.Vocabulary.APIObjects...),
		APIGroups:  append([]string(nil), r.spec.Vocabulary.APIGroups...),
		EKSAddons:  append([]string(nil), r.spec.Vocabulary.EKSAddons...),
	}
	out.ContextKeywords = append([]string(nil), r.spec.ContextKeywords...)
	return out
}
