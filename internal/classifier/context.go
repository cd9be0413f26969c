package classifier

import (
	"math"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/moolen/upgradelens/internal/models"
)

// contextWeight is the relevance added per recognized component, version
// reference or Kubernetes keyword.
const contextWeight = 0.1

// AnalyzeContext reports which known API objects, API groups and EKS add-ons
// the text mentions, its distinct version references and a 0-1 relevance
// score.
func (c *Classifier) AnalyzeContext(text string) models.KubernetesContext {
	kctx := models.KubernetesContext{
		APIObjects:        make([]string, 0),
		APIGroups:         make([]string, 0),
		EKSAddons:         make([]string, 0),
		VersionReferences: make([]string, 0),
	}
	if strings.TrimSpace(text) == "" {
		return kctx
	}

	lower := strings.ToLower(text)
	vocab := c.registry.Vocabulary()
	for _, obj := range vocab.APIObjects {
		if strings.Contains(lower, strings.ToLower(obj)) {
			kctx.APIObjects = append(kctx.APIObjects, obj)
		}
	}
	for _, group := range vocab.APIGroups {
		if strings.Contains(lower, group) {
			kctx.APIGroups = append(kctx.APIGroups, group)
		}
	}
	for _, addon := range vocab.EKSAddons {
		if strings.Contains(lower, addon) {
			kctx.EKSAddons = append(kctx.EKSAddons, addon)
		}
	}

	seen := make(map[string]bool)
	for _, ref := range c.registry.VersionPattern().FindAllString(text, -1) {
		if !seen[ref] {
			seen[ref] = true
			kctx.VersionReferences = append(kctx.VersionReferences, ref)
		}
	}
	SortVersions(kctx.VersionReferences)

	keywordMatches := 0
	for _, kw := range c.registry.ContextKeywords() {
		if strings.Contains(lower, kw) {
			keywordMatches++
		}
	}

	components := len(kctx.APIObjects) + len(kctx.APIGroups) + len(kctx.EKSAddons) + len(kctx.VersionReferences)
	kctx.RelevanceScore = math.Min(float64(components+keywordMatches)*contextWeight, 1.0)

	c.logger.Debug("Analyzed Kubernetes context: %d components, score %.2f", components, kctx.RelevanceScore)
	return kctx
}

// SortVersions orders refs by semantic version, ascending. References that
// do not parse sort after all parsed ones, lexically. Equal versions written
// differently ("v1.28" and "1.28") are ordered lexically.
func SortVersions(refs []string) {
	parsed := make(map[string]*version.Version, len(refs))
	for _, ref := range refs {
		if v, err := version.NewVersion(ref); err == nil {
			parsed[ref] = v
		}
	}

	sort.SliceStable(refs, func(i, j int) bool {
		vi, okI := parsed[refs[i]]
		vj, okJ := parsed[refs[j]]
		switch {
		case okI && okJ:
			if cmp := vi.Compare(vj); cmp != 0 {
				return cmp < 0
			}
			return refs[i] < refs[j]
		case okI != okJ:
			return okI
		default:
			return refs[i] < refs[j]
		}
	})
}
