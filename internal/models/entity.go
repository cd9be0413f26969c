package models

import (
	"encoding/json"
	"math"
)

// Entity type names produced by the domain extractor.
const (
	EntityTypeAPIVersion               = "API_VERSION"
	EntityTypeResourceKind             = "RESOURCE_KIND"
	EntityTypeBreakingChangeIndicators = "BREAKING_CHANGE_INDICATORS"
	EntityTypeVersionNumber            = "VERSION_NUMBER"
	EntityTypeEKSComponent             = "EKS_COMPONENT"
)

// EntityCategoryKubernetes tags entities found by the domain extractor.
const EntityCategoryKubernetes = "KUBERNETES"

// Entity is a typed span of the analyzed text. External NER entities use
// arbitrary type names and leave Category and Subcategory empty.
type Entity struct {
	Text        string  `json:"text"`
	Type        string  `json:"type"`
	Confidence  float64 `json:"confidence"`
	BeginOffset int     `json:"begin_offset"`
	EndOffset   int     `json:"end_offset"`
	Category    string  `json:"category,omitempty"`
	Subcategory string  `json:"subcategory,omitempty"`
}

// NewEntity builds an entity and rejects empty or inverted spans and
// confidences outside [0, 1].
func NewEntity(text, entityType string, confidence float64, begin, end int) (Entity, error) {
	e := Entity{
		Text:        text,
		Type:        entityType,
		Confidence:  confidence,
		BeginOffset: begin,
		EndOffset:   end,
	}
	if err := e.Validate(); err != nil {
		return Entity{}, err
	}
	return e, nil
}

// Validate checks the span and confidence invariants.
func (e Entity) Validate() error {
	switch {
	case e.BeginOffset < 0:
		return &InvalidEntityError{Index: -1, Text: e.Text, Reason: "begin_offset must be non-negative"}
	case e.EndOffset <= e.BeginOffset:
		return &InvalidEntityError{Index: -1, Text: e.Text, Reason: "end_offset must be greater than begin_offset"}
	case math.IsNaN(e.Confidence) || e.Confidence < 0 || e.Confidence > 1:
		return &InvalidEntityError{Index: -1, Text: e.Text, Reason: "confidence must be within [0, 1]"}
	}
	return nil
}

// UnmarshalJSON decodes an entity and validates it.
func (e *Entity) UnmarshalJSON(data []byte) error {
	type plain Entity
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if err := Entity(decoded).Validate(); err != nil {
		return err
	}
	*e = Entity(decoded)
	return nil
}

// ValidateEntities returns the first invalid entity in the list, annotated
// with its index.
func ValidateEntities(entities []Entity) error {
	for i, e := range entities {
		if err := e.Validate(); err != nil {
			invalid := err.(*InvalidEntityError)
			invalid.Index = i
			return invalid
		}
	}
	return nil
}
