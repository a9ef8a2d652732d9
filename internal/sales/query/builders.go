package query

import (
	"encoding/json"
	"errors"
	"fmt"

	"sales-workers/internal/models"
)

var (
	ErrInvalidPagination = errors.New("SALES_INVALID_PAGINATION")
	// ErrInvalidFilter rejects a term without a field before it reaches the engine.
	ErrInvalidFilter     = errors.New("SALES_INVALID_FILTER")
)

// Document fields of the sales index.
const (
	FieldSalesAmount = "sales_amount"
	FieldRegion      = "region"
	FieldTimestamp   = "timestamp"
)

// Aggregation names shared with the response mapper.
const (
	AggTotalSales          = "total_sales"
	AggSalesByRegion       = "sales_by_region"
	AggTotalSalesPerRegion = "total_sales_per_region"
	AggSalesPerDay         = "sales_per_day"
	AggTotalSalesPerDay    = "total_sales_per_day"
	AggSalesDiff           = "sales_diff"
	AggPerDay              = "per_day"
	AggTopSale             = "top_sale"
)

const dayInterval = "day"

// SearchDocument is the body of a _search request.
type SearchDocument struct {
	From  *int   `json:"from,omitempty"`
	Size  int    `json:"size"`
	Query Clause `json:"query,omitempty"`
	Aggs  Aggs   `json:"aggs,omitempty"`
}

// Encode serializes the document for the HTTP request body.
func (d SearchDocument) Encode() ([]byte, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode search document: %w", err)
	}
	return body, nil
}

// BuildTermFilter turns each term into a wildcarded query_string clause.
// The "search" field matches across all document fields.
func BuildTermFilter(terms []models.FilterTerm) []Clause {
	clauses := make([]Clause, 0, len(terms))
	for _, t := range terms {
		field := t.Field
		if field == models.SearchField {
			field = "*"
		}
		clauses = append(clauses, QueryString{
			DefaultField: field,
			Query:        "*" + t.Value + "*",
		})
	}
	return clauses
}

// Offset converts a 1-based page into a hit offset; it is never negative.
func Offset(page, size int) int {
	from := size * (page - 1)
	if from < 0 {
		return 0
	}
	return from
}

// BuildPagedSearch wraps the term filter in a from/size envelope.
func BuildPagedSearch(filter models.FilterQuery) (SearchDocument, error) {
	if filter.Size < 0 {
		return SearchDocument{}, fmt.Errorf("%w: size %d", ErrInvalidPagination, filter.Size)
	}
	for i, t := range filter.Query {
		if t.Field == "" {
			return SearchDocument{}, fmt.Errorf("%w: term %d has no field", ErrInvalidFilter, i)
		}
	}

	from := Offset(filter.Page, filter.Size)
	return SearchDocument{
		From:  &from,
		Size:  filter.Size,
		Query: Bool{Must: BuildTermFilter(filter.Query)},
	}, nil
}

// TotalSales sums sales_amount over the whole index.
func TotalSales() SearchDocument {
	return SearchDocument{
		Aggs: Aggs{
			AggTotalSales: Sum{Field: FieldSalesAmount},
		},
	}
}

// SalesByRegion sums sales_amount per region.
func SalesByRegion() SearchDocument {
	return SearchDocument{
		Aggs: Aggs{
			AggSalesByRegion: Terms{
				Field: FieldRegion,
				Aggs: Aggs{
					AggTotalSalesPerRegion: Sum{Field: FieldSalesAmount},
				},
			},
		},
	}
}

// SalesChanges sums sales_amount per day along with the day-over-day derivative.
func SalesChanges() SearchDocument {
	return SearchDocument{
		Aggs: Aggs{
			AggSalesPerDay: DateHistogram{
				Field:            FieldTimestamp,
				CalendarInterval: dayInterval,
				Aggs: Aggs{
					AggTotalSalesPerDay: Sum{Field: FieldSalesAmount},
					AggSalesDiff:        Derivative{BucketsPath: AggTotalSalesPerDay},
				},
			},
		},
	}
}

// MaxSalesPerDay picks the single highest sales_amount record of each day.
func MaxSalesPerDay() SearchDocument {
	return SearchDocument{
		Aggs: Aggs{
			AggPerDay: DateHistogram{
				Field:            FieldTimestamp,
				CalendarInterval: dayInterval,
				Aggs: Aggs{
					AggTopSale: TopHits{
						Sort: []SortField{{Field: FieldSalesAmount, Order: "desc"}},
						Size: 1,
					},
				},
			},
		},
	}
}
