// internal/workers/sales/delete-sales/models.go
package deletesales

import "sales-workers/internal/sales/result"

type Input struct {
	ID string `json:"id"`
}

type Output struct {
	Status  result.Status `json:"status"`
	Message string        `json:"message"`
}
