// internal/workers/sales/search-sales/models.go
package searchsales

import (
	"sales-workers/internal/models"
	"sales-workers/internal/sales/mapper"
	"sales-workers/internal/sales/result"
)

type Input struct {
	Query []models.FilterTerm `json:"query"`
	Page  int                 `json:"page"`
	Size  int                 `json:"size"`
}

func (i Input) Filter() models.FilterQuery {
	return models.FilterQuery{Query: i.Query, Page: i.Page, Size: i.Size}
}

type Output struct {
	Status  result.Status        `json:"status"`
	Message string               `json:"message,omitempty"`
	Data    *mapper.SearchResult `json:"data"`
}
