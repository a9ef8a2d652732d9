// internal/workers/sales/create-sales/models.go
package createsales

import (
	"sales-workers/internal/models"
	"sales-workers/internal/sales/result"
)

// Input is the sales record to store. ID is the caller's raw identifier;
// the stored identifier is derived from it and the timestamp.
type Input struct {
	ID          string  `json:"id"`
	ProductName string  `json:"product_name"`
	SalesAmount float64 `json:"sales_amount"`
	Region      string  `json:"region"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

func (i Input) Sales() models.Sales {
	return models.Sales{
		ID:          i.ID,
		ProductName: i.ProductName,
		SalesAmount: i.SalesAmount,
		Region:      i.Region,
		Timestamp:   i.Timestamp,
	}
}

type Output struct {
	Status  result.Status          `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data"`
}
