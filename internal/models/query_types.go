// internal/models/query_types.go
package models

// SearchField is the term field that matches against every document field.
const SearchField = "search"

// FilterTerm is one field/value condition. All terms of a filter must match.
type FilterTerm struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// FilterQuery is a paged term filter.
type FilterQuery struct {
	Query []FilterTerm `json:"query"`
	Page  int          `json:"page"`
	Size  int          `json:"size"`
}

type AnalyticsMetric string

const (
	AnalyticsTotal        AnalyticsMetric = "total"
	AnalyticsByRegion     AnalyticsMetric = "by_region"
	AnalyticsDailyChanges AnalyticsMetric = "daily_changes"
	AnalyticsMaxPerDay    AnalyticsMetric = "max_per_day"
)

// Valid reports whether m names a supported analytics metric.
func (m AnalyticsMetric) Valid() bool {
	switch m {
	case AnalyticsTotal, AnalyticsByRegion, AnalyticsDailyChanges, AnalyticsMaxPerDay:
		return true
	}
	return false
}
