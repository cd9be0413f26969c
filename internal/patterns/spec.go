package patterns

import (
	"fmt"
	"regexp"

	"github.com/moolen/upgradelens/internal/models"
)

// Spec is the serializable form of a Registry. Patterns are stored without
// flags. Entity and category patterns compile case-insensitively; the
// version pattern does not.
type Spec struct {
	SchemaVersion   string              `yaml:"schema_version" json:"schema_version"`
	EntityPatterns  []EntityPatternSpec `yaml:"entity_patterns" json:"entity_patterns"`
	Categories      []CategorySpec      `yaml:"categories" json:"categories"`
	Vocabulary      VocabularySpec      `yaml:"vocabulary" json:"vocabulary"`
	VersionPattern  string              `yaml:"version_pattern" json:"version_pattern"`
	ContextKeywords []string            `yaml:"context_keywords" json:"context_keywords"`
}

// EntityPatternSpec describes one domain entity type.
type EntityPatternSpec struct {
	Type       string   `yaml:"type" json:"type"`
	Confidence float64  `yaml:"confidence" json:"confidence"`
	Patterns   []string `yaml:"patterns" json:"patterns"`
}

// CategorySpec describes the detection rule for one category.
type CategorySpec struct {
	Category models.Category `yaml:"category" json:"category"`
	Severity models.Severity `yaml:"severity" json:"severity"`
	Patterns []string        `yaml:"patterns" json:"patterns"`
	Keywords []string        `yaml:"keywords" json:"keywords"`
}

// VocabularySpec lists the component names recognized in context analysis.
type VocabularySpec struct {
	APIObjects []string `yaml:"api_objects" json:"api_objects"`
	APIGroups  []string `yaml:"api_groups" json:"api_groups"`
	EKSAddons  []string `yaml:"eks_addons" json:"eks_addons"`
}

// RegistryError reports an invalid registry definition.
type RegistryError struct {
	Field   string
	Message string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("patterns: invalid %s: %s", e.Field, e.Message)
}

// WithDefaults fills every empty section of s from DefaultSpec, so a file
// can override only the sections it names.
func (s Spec) WithDefaults() Spec {
	d := DefaultSpec()
	if s.SchemaVersion == "" {
		s.SchemaVersion = d.SchemaVersion
	}
	if len(s.EntityPatterns) == 0 {
		s.EntityPatterns = d.EntityPatterns
	}
	if len(s.Categories) == 0 {
		s.Categories = d.Categories
	}
	if len(s.Vocabulary.APIObjects) == 0 {
		s.Vocabulary.APIObjects = d.Vocabulary.APIObjects
	}
	if len(s.Vocabulary.APIGroups) == 0 {
		s.Vocabulary.APIGroups = d.Vocabulary.APIGroups
	}
	if len(s.Vocabulary.EKSAddons) == 0 {
		s.Vocabulary.EKSAddons = d.Vocabulary.EKSAddons
	}
	if s.VersionPattern == "" {
		s.VersionPattern = d.VersionPattern
	}
	if len(s.ContextKeywords) == 0 {
		s.ContextKeywords = d.ContextKeywords
	}
	return s
}

// Validate checks the spec without building a registry.
func (s Spec) Validate() error {
	_, err := New(s)
	return err
}

func compile(field, expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, &RegistryError{Field: field, Message: err.Error()}
	}
	return re, nil
}
