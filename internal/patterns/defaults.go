package patterns

import "github.com/moolen/upgradelens/internal/models"

// SchemaVersion is the registry file format understood by this build.
const SchemaVersion = "v1"

// DefaultVersionPattern matches version references such as v1.27.0,
// 1.28 and 1.29.0-alpha.1.
const DefaultVersionPattern = `\bv?\d+\.\d+(?:\.\d+)?(?:-\w+(?:\.\d+)?)?\b`

// DefaultSpec returns the built-in EKS/Kubernetes tables.
func DefaultSpec() Spec {
	return Spec{
		SchemaVersion:   SchemaVersion,
		EntityPatterns:  defaultEntityPatterns(),
		Categories:      defaultCategories(),
		Vocabulary:      defaultVocabulary(),
		VersionPattern:  DefaultVersionPattern,
		ContextKeywords: []string{"kubernetes", "k8s", "kubectl", "helm", "eks", "cluster"},
	}
}

func defaultEntityPatterns() []EntityPatternSpec {
	return []EntityPatternSpec{
		{
			Type:       models.EntityTypeAPIVersion,
			Confidence: 0.9,
			Patterns: []string{
				`v\d+(?:alpha\d+|beta\d+)?`,
				`apps/v\d+`,
				`extensions/v\d+beta\d+`,
				`networking\.k8s\.io/v\d+`,
				`apiextensions\.k8s\.io/v\d+`,
			},
		},
		{
			Type:       models.EntityTypeResourceKind,
			Confidence: 0.8,
			Patterns: []string{
				`\b(?:Deployment|Service|Pod|ConfigMap|Secret|Ingress|StatefulSet|DaemonSet|Job|CronJob|` +
					`PersistentVolume|PersistentVolumeClaim|ServiceAccount|Role|RoleBinding|ClusterRole|` +
					`ClusterRoleBinding|NetworkPolicy|PodSecurityPolicy|CustomResourceDefinition|` +
					`HorizontalPodAutoscaler|VerticalPodAutoscaler)\b`,
			},
		},
		{
			Type:       models.EntityTypeBreakingChangeIndicators,
			Confidence: 0.7,
			Patterns: []string{
				`\b(?:deprecated|removed|breaking change|incompatible|migration required|no longer supported)\b`,
				`\b(?:BREAKING|DEPRECATED|REMOVED)\b`,
			},
		},
		{
			Type:       models.EntityTypeVersionNumber,
			Confidence: 0.8,
			Patterns: []string{
				`\b\d+\.\d+(?:\.\d+)?(?:-\w+(?:\.\d+)?)?\b`,
			},
		},
		{
			Type:       models.EntityTypeEKSComponent,
			Confidence: 0.8,
			Patterns: []string{
				`\b(?:kube-proxy|coredns|vpc-cni|aws-load-balancer-controller|cluster-autoscaler|ebs-csi-driver|efs-csi-driver)\b`,
			},
		},
	}
}

func defaultCategories() []CategorySpec {
	return []CategorySpec{
		{
			Category: models.CategoryBreakingChange,
			Severity: models.SeverityCritical,
			Patterns: []string{
				`\b(?:breaking change|incompatible|no longer supported|removed in|will be removed)\b`,
				`\bBREAKING\b`,
				`\b(?:incompatible with|breaks compatibility)\b`,
				`\b(?:major version|breaking API)\b`,
			},
			Keywords: []string{"breaking", "incompatible", "removed", "unsupported"},
		},
		{
			Category: models.CategoryDeprecation,
			Severity: models.SeverityHigh,
			Patterns: []string{
				`\b(?:deprecated|deprecation|will be deprecated)\b`,
				`\bDEPRECATED\b`,
				`\b(?:marked for removal|scheduled for removal)\b`,
				`\b(?:legacy|obsolete)\b`,
			},
			Keywords: []string{"deprecated", "deprecation", "legacy", "obsolete"},
		},
		{
			Category: models.CategoryMigrationRequired,
			Severity: models.SeverityHigh,
			Patterns: []string{
				`\b(?:migration required|must migrate|migrate to|update to)\b`,
				`\b(?:action required|manual intervention)\b`,
				`\b(?:upgrade path|migration guide)\b`,
			},
			Keywords: []string{"migration", "migrate", "action required", "manual"},
		},
		{
			Category: models.CategorySecurityUpdate,
			Severity: models.SeverityCritical,
			Patterns: []string{
				`\b(?:security|vulnerability|CVE-\d+|security fix|security patch)\b`,
				`\b(?:exploit|malicious|attack|breach)\b`,
				`\b(?:authentication|authorization|privilege)\b`,
			},
			// Keywords are compared verbatim against the lowercased text, so
			// "CVE" never counts as a keyword hit.
			Keywords: []string{"security", "vulnerability", "CVE", "exploit"},
		},
		{
			Category: models.CategoryConfigurationChange,
			Severity: models.SeverityMedium,
			Patterns: []string{
				`\b(?:configuration|config|setting|parameter|flag)\b`,
				`\b(?:default value|default behavior)\b`,
				`\b(?:environment variable|env var)\b`,
			},
			Keywords: []string{"configuration", "config", "setting", "default"},
		},
		{
			Category: models.CategoryFeatureAddition,
			Severity: models.SeverityInfo,
			Patterns: []string{
				`\b(?:new feature|added|introduced|enhancement)\b`,
				`\b(?:support for|now supports|enables)\b`,
				`\b(?:improvement|optimization)\b`,
			},
			Keywords: []string{"new", "added", "introduced", "enhancement"},
		},
	}
}

func defaultVocabulary() VocabularySpec {
	return VocabularySpec{
		APIObjects: []string{
			"Deployment", "Service", "Pod", "ConfigMap", "Secret", "Ingress",
			"StatefulSet", "DaemonSet", "Job", "CronJob", "PersistentVolume",
			"PersistentVolumeClaim", "ServiceAccount", "Role", "RoleBinding",
			"ClusterRole", "ClusterRoleBinding", "NetworkPolicy", "PodSecurityPolicy",
		},
		APIGroups: []string{
			"apps", "extensions", "networking.k8s.io", "rbac.authorization.k8s.io",
			"apiextensions.k8s.io", "autoscaling", "batch", "policy",
		},
		EKSAddons: []string{
			"vpc-cni", "coredns", "kube-proxy", "aws-load-balancer-controller",
			"cluster-autoscaler", "ebs-csi-driver", "efs-csi-driver",
		},
	}
}
