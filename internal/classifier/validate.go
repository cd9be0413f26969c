package classifier

import (
	"fmt"

	"github.com/moolen/upgradelens/internal/models"
)

// Validate summarizes classification quality. Results below the classifier's
// threshold are reported as an issue; they only occur when matches were
// produced with a lower explicit threshold.
func (c *Classifier) Validate(classifications []models.ClassificationMatch) models.ClassificationValidation {
	report := models.ClassificationValidation{
		Valid:                true,
		ResultCount:          len(classifications),
		CategoryDistribution: make(map[models.Category]int),
		SeverityDistribution: make(map[models.Severity]int),
		Issues:               make([]string, 0),
	}
	if len(classifications) == 0 {
		return report
	}

	var total float64
	lowConfidence := 0
	for _, m := range classifications {
		total += m.Confidence
		report.CategoryDistribution[m.Category]++
		report.SeverityDistribution[m.Severity]++
		if m.Confidence < c.threshold {
			lowConfidence++
		}
	}
	report.AverageConfidence = total / float64(len(classifications))

	if lowConfidence > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("%d results below confidence threshold", lowConfidence))
	}
	report.Valid = len(report.Issues) == 0
	return report
}
