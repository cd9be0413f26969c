package models

// EntitySet holds the entity lists an analysis worked from.
type EntitySet struct {
	External   []Entity `json:"external_entities"`
	Kubernetes []Entity `json:"kubernetes_entities"`
	Filtered   []Entity `json:"filtered_entities"`
	Count      int      `json:"entity_count"`
}

// Summary counts the findings of an analysis.
type Summary struct {
	KubernetesRelevanceScore float64 `json:"kubernetes_relevance_score"`
	TotalEntities            int     `json:"total_entities"`
	TotalClassifications     int     `json:"total_classifications"`
	BreakingChangeCount      int     `json:"breaking_change_count"`
	DeprecationCount         int     `json:"deprecation_count"`
	ActionItemCount          int     `json:"action_item_count"`
	HighPriorityActions      int     `json:"high_priority_actions"`
}

// AnalysisResult is the full output of analyzing one document. It contains
// no timestamps or durations; AnalysisID is assigned by the caller.
type AnalysisResult struct {
	AnalysisID        string                 `json:"analysis_id,omitempty"`
	InputTextLength   int                    `json:"input_text_length"`
	Entities          EntitySet              `json:"entities"`
	Classifications   []ClassificationMatch  `json:"classifications"`
	KubernetesContext KubernetesContext      `json:"kubernetes_context"`
	BreakingChanges   []BreakingChangeRecord `json:"breaking_changes"`
	APIDeprecations   []DeprecationRecord    `json:"api_deprecations"`
	ActionItems       []ActionItem           `json:"action_items"`
	Validation        ValidationReport       `json:"validation"`
	Summary           Summary                `json:"summary"`
}

// ComponentSet lists the Kubernetes components an analysis found.
type ComponentSet struct {
	APIObjects []string `json:"api_objects"`
	APIGroups  []string `json:"api_groups"`
	EKSAddons  []string `json:"eks_addons"`
}

type SeverityAssessment struct {
	OverallScore            float64 `json:"overall_score"`
	RequiresImmediateAction bool    `json:"requires_immediate_action"`
	MigrationRequired       bool    `json:"migration_required"`
}

// BreakingChangeReport is the upgrade-focused view of an AnalysisResult.
type BreakingChangeReport struct {
	AnalysisID           string                 `json:"analysis_id,omitempty"`
	BreakingChanges      []BreakingChangeRecord `json:"breaking_changes"`
	APIDeprecations      []DeprecationRecord    `json:"api_deprecations"`
	CriticalActions      []ActionItem           `json:"critical_actions"`
	KubernetesComponents ComponentSet           `json:"kubernetes_components"`
	SeverityAssessment   SeverityAssessment     `json:"severity_assessment"`
}
