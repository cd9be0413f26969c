package models

// Category is the kind of change a classification describes.
type Category string

const (
	CategoryBreakingChange         Category = "BREAKING_CHANGE"
	CategoryDeprecation            Category = "DEPRECATION"
	CategoryMigrationRequired      Category = "MIGRATION_REQUIRED"
	CategorySecurityUpdate         Category = "SECURITY_UPDATE"
	CategoryConfigurationChange    Category = "CONFIGURATION_CHANGE"
	CategoryFeatureAddition        Category = "FEATURE_ADDITION"
	CategoryBugFix                 Category = "BUG_FIX"
	CategoryPerformanceImprovement Category = "PERFORMANCE_IMPROVEMENT"
	CategoryUnknown                Category = "UNKNOWN"
)

// Categories returns every category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryBreakingChange,
		CategoryDeprecation,
		CategoryMigrationRequired,
		CategorySecurityUpdate,
		CategoryConfigurationChange,
		CategoryFeatureAddition,
		CategoryBugFix,
		CategoryPerformanceImprovement,
		CategoryUnknown,
	}
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryBreakingChange, CategoryDeprecation, CategoryMigrationRequired,
		CategorySecurityUpdate, CategoryConfigurationChange, CategoryFeatureAddition,
		CategoryBugFix, CategoryPerformanceImprovement, CategoryUnknown:
		return true
	}
	return false
}
