package analysis

import (
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/moolen/upgradelens/internal/models"
	"github.com/moolen/upgradelens/internal/textspan"
)

func isBreakingChangeEntity(e models.Entity) bool {
	if e.Type == models.EntityTypeBreakingChangeIndicators {
		return true
	}
	lower := strings.ToLower(e.Text)
	return strings.Contains(lower, "deprecat") ||
		strings.Contains(lower, "remov") ||
		strings.Contains(lower, "breaking")
}

func isDeprecationIndicator(e models.Entity) bool {
	return e.Type == models.EntityTypeBreakingChangeIndicators ||
		strings.Contains(strings.ToLower(e.Text), "deprecat")
}

// breakingChanges emits one record per breaking change entity, with radius
// characters of context on each side.
func breakingChanges(entities []models.Entity, index *textspan.Index, radius int) []models.BreakingChangeRecord {
	records := make([]models.BreakingChangeRecord, 0)
	for _, e := range entities {
		if !isBreakingChangeEntity(e) {
			continue
		}
		records = append(records, models.BreakingChangeRecord{
			Text:       e.Text,
			Type:       e.Type,
			Confidence: e.Confidence,
			Context:    index.Excerpt(e.BeginOffset, e.EndOffset, radius),
			Position:   models.Span{Start: e.BeginOffset, End: e.EndOffset},
		})
	}
	return records
}

// deprecations correlates each indicator with the API versions and resource
// kinds whose begin offset is within proximity characters of the indicator's.
func deprecations(entities []models.Entity, index *textspan.Index, proximity, radius int) []models.DeprecationRecord {
	var apiVersions, resourceKinds []models.Entity
	for _, e := range entities {
		switch e.Type {
		case models.EntityTypeAPIVersion:
			apiVersions = append(apiVersions, e)
		case models.EntityTypeResourceKind:
			resourceKinds = append(resourceKinds, e)
		}
	}

	records := make([]models.DeprecationRecord, 0)
	for _, indicator := range entities {
		if !isDeprecationIndicator(indicator) {
			continue
		}

		versions := nearbyTexts(apiVersions, indicator, proximity)
		kinds := nearbyTexts(resourceKinds, indicator, proximity)
		if len(versions) == 0 && len(kinds) == 0 && SkipUncorrelatedDeprecations {
			continue
		}

		lo, hi := index.Window(indicator.BeginOffset, indicator.EndOffset, radius)
		records = append(records, models.DeprecationRecord{
			Indicator:     indicator.Text,
			Confidence:    indicator.Confidence,
			APIVersions:   versions,
			ResourceKinds: kinds,
			GroupVersions: groupVersions(versions),
			ContextStart:  lo,
			ContextEnd:    hi,
		})
	}
	return records
}

func nearbyTexts(candidates []models.Entity, indicator models.Entity, proximity int) []string {
	texts := make([]string, 0)
	for _, c := range candidates {
		if abs(c.BeginOffset-indicator.BeginOffset) <= proximity {
			texts = append(texts, c.Text)
		}
	}
	return texts
}

// groupVersions splits API versions like "apps/v1" into group and version.
// Bare versions belong to the core group. Strings that are not valid
// group/versions are left out.
func groupVersions(versions []string) []models.GroupVersion {
	out := make([]models.GroupVersion, 0, len(versions))
	for _, v := range versions {
		gv, err := schema.ParseGroupVersion(v)
		if err != nil || gv.Version == "" {
			continue
		}
		out = append(out, models.GroupVersion{Raw: v, Group: gv.Group, Version: gv.Version})
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
