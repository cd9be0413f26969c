package models

// Span is a half-open character range [Start, End) in the analyzed text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ClassificationMatch is one category detected in the text.
type ClassificationMatch struct {
	Category     Category `json:"category"`
	Confidence   float64  `json:"confidence"`
	Severity     Severity `json:"severity"`
	MatchedText  []string `json:"matched_text"`
	MatchedSpans []Span   `json:"matched_spans"`
	KeywordHits  []string `json:"keyword_hits"`
}

// KubernetesContext summarizes the Kubernetes vocabulary mentioned in the text.
type KubernetesContext struct {
	APIObjects        []string `json:"api_objects"`
	APIGroups         []string `json:"api_groups"`
	EKSAddons         []string `json:"eks_addons"`
	VersionReferences []string `json:"version_references"`
	RelevanceScore    float64  `json:"kubernetes_score"`
}

// ActionItem is a recommended follow-up derived from a classification.
type ActionItem struct {
	Action     string   `json:"action_text"`
	Category   Category `json:"category"`
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`
	Contexts   []string `json:"contexts"`
	Priority   float64  `json:"priority"`
}

// BreakingChangeRecord is an entity that signals a breaking change, with
// the surrounding text.
type BreakingChangeRecord struct {
	Text       string  `json:"indicator_text"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context_window"`
	Position   Span    `json:"position"`
}

// GroupVersion is an API version split into its group and version parts.
// The core group has an empty Group.
type GroupVersion struct {
	Raw     string `json:"raw"`
	Group   string `json:"group"`
	Version string `json:"version"`
}

// DeprecationRecord ties a deprecation indicator to the API versions and
// resource kinds mentioned near it.
type DeprecationRecord struct {
	Indicator     string         `json:"indicator_text"`
	Confidence    float64        `json:"confidence"`
	APIVersions   []string       `json:"api_versions"`
	ResourceKinds []string       `json:"resource_kinds"`
	GroupVersions []GroupVersion `json:"group_versions"`
	ContextStart  int            `json:"context_start"`
	ContextEnd    int            `json:"context_end"`
}
