// internal/workers/sales/update-sales/models.go
package updatesales

import (
	"sales-workers/internal/models"
	"sales-workers/internal/sales/result"
)

// Input carries the raw id of the record and the fields to change. Absent
// fields keep their stored values.
type Input struct {
	ID          string   `json:"id"`
	ProductName *string  `json:"product_name,omitempty"`
	SalesAmount *float64 `json:"sales_amount,omitempty"`
	Region      *string  `json:"region,omitempty"`
	Timestamp   *string  `json:"timestamp,omitempty"`
}

func (i Input) Patch() models.SalesPatch {
	return models.SalesPatch{
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
