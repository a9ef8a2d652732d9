// internal/workers/sales/sales-analytics/models.go
package salesanalytics

import (
	"sales-workers/internal/models"
	"sales-workers/internal/sales/result"
)

type Input struct {
	Metric models.AnalyticsMetric `json:"metric"`
}

// Output.Data holds the shape of the requested metric: a total object or a
// list of per-region, per-day or top-sale rows.
type Output struct {
	Status  result.Status `json:"status"`
	Message string        `json:"message,omitempty"`
	Metric  string        `json:"metric"`
	Data    interface{}   `json:"data"`
}
