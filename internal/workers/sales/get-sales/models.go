// internal/workers/sales/get-sales/models.go
package getsales

import "sales-workers/internal/sales/result"

type Input struct {
	ID string `json:"id"`
}

type Output struct {
	Status  result.Status          `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data"`
}
