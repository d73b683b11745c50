// Package analytics classifies assistant queries and ships structured chat
// events to an Azure Log Analytics workspace via the HTTP Data Collector API.
package analytics

import "strings"

// Query type labels recorded on every interaction.
const (
	QueryTrendAnalysis  = "trend_analysis"
	QueryComparison     = "comparison"
	QueryRootCause      = "root_cause"
	QueryRecommendation = "recommendation"
	QueryGoalTracking   = "goal_tracking"
	QueryGeneral        = "general_inquiry"
)

var queryKeywords = []struct {
	label string
	words []string
}{
	{QueryTrendAnalysis, []string{"trend", "over time", "history", "change"}},
	{QueryComparison, []string{"compare", "versus", "vs", "between"}},
	{QueryRootCause, []string{"why", "reason", "cause", "factor"}},
	{QueryRecommendation, []string{"improve", "recommendation", "suggest", "opportunity"}},
	{QueryGoalTracking, []string{"goal", "target", "threshold", "benchmark"}},
}

// ClassifyQuery buckets a user query by keyword for analytics grouping.
// First matching bucket wins; anything else is a general inquiry.
func ClassifyQuery(query string) string {
	q := strings.ToLower(query)
	for _, bucket := range queryKeywords {
		for _, w := range bucket.words {
			if strings.Contains(q, w) {
				return bucket.label
			}
		}
	}
	return QueryGeneral
}
