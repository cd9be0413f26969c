package models

// ConfidenceDistribution buckets entities by confidence: high (> 0.8),
// medium [0.5, 0.8] and low (< 0.5).
type ConfidenceDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type EntityValidation struct {
	Valid                  bool                   `json:"valid"`
	EntityCount            int                    `json:"entity_count"`
	AverageConfidence      float64                `json:"avg_confidence"`
	ConfidenceDistribution ConfidenceDistribution `json:"confidence_distribution"`
	Issues                 []string               `json:"issues"`
}

type ClassificationValidation struct {
	Valid                bool             `json:"valid"`
	ResultCount          int              `json:"result_count"`
	AverageConfidence    float64          `json:"avg_confidence"`
	CategoryDistribution map[Category]int `json:"category_distribution"`
	SeverityDistribution map[Severity]int `json:"severity_distribution"`
	Issues               []string         `json:"issues"`
}

// ValidationReport bundles the entity and classification quality checks.
type ValidationReport struct {
	Entities        EntityValidation         `json:"entities"`
	Classifications ClassificationValidation `json:"classifications"`
}

// ResultValidation is the outcome of checking a finished AnalysisResult.
type ResultValidation struct {
	Valid        bool     `json:"valid"`
	Issues       []string `json:"issues"`
	QualityScore float64  `json:"quality_score"`
}
