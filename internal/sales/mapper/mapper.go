// Package mapper decodes search engine responses and projects them into the
// flat shapes returned to callers.
package mapper

import (
	"encoding/json"
	"errors"
	"fmt"

	"sales-workers/internal/sales/query"
)

// ErrMalformedResponse reports a response that lacks a required JSON path.
var ErrMalformedResponse = errors.New("SALES_MALFORMED_RESPONSE")

func malformed(path string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedResponse, path)
}

type SearchResult struct {
	Returned int                      `json:"total_sales_list"`
	Total    int                      `json:"total_sales_data"`
	Sales    []map[string]interface{} `json:"Sales_list"`
}

type TotalSales struct {
	Total float64 `json:"total_sales"`
}

type RegionSales struct {
	Region     string  `json:"region"`
	TotalData  int64   `json:"total_data"`
	TotalSales float64 `json:"total_sales"`
}

// DailySales is one day of the sales time series. SalesDiff is nil for the
// first bucket, where no previous day exists.
type DailySales struct {
	Timestamp        string   `json:"timestamp"`
	TotalData        int64    `json:"total_data"`
	TotalSalesPerDay float64  `json:"total_sales_per_day"`
	SalesDiff        *float64 `json:"pendapatan"`
}

type TopSale struct {
	ProductName string  `json:"product_name"`
	SalesAmount float64 `json:"sales_amount"`
	Region      string  `json:"region"`
	Timestamp   string  `json:"timestamp"`
}

// Document is the projection of a document API (_doc/{id}) response.
type Document struct {
	ID          string
	Found       bool
	Source      map[string]interface{}
	SeqNo       *int
	PrimaryTerm *int
}

type valueAgg struct {
	Value *float64 `json:"value"`
}

func (v *valueAgg) float() float64 {
	if v == nil || v.Value == nil {
		return 0
	}
	return *v.Value
}

type hit struct {
	Source map[string]interface{} `json:"_source"`
}

type hitsEnvelope struct {
	Total *struct {
		Value int `json:"value"`
	} `json:"total"`
	Hits *[]hit `json:"hits"`
}

type searchEnvelope struct {
	Hits         *hitsEnvelope              `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

func decode(body []byte) (*searchEnvelope, error) {
	var env searchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &env, nil
}

// aggregation returns the raw JSON of aggregations.<name>.
func aggregation(body []byte, name string) (json.RawMessage, error) {
	env, err := decode(body)
	if err != nil {
		return nil, err
	}
	if env.Aggregations == nil {
		return nil, malformed("aggregations")
	}
	raw, ok := env.Aggregations[name]
	if !ok || string(raw) == "null" {
		return nil, malformed("aggregations." + name)
	}
	return raw, nil
}

// buckets decodes aggregations.<name>.buckets into out. It reports false when
// the buckets array is absent.
func buckets(body []byte, name string, out interface{}) (bool, error) {
	raw, err := aggregation(body, name)
	if err != nil {
		return false, err
	}
	var agg struct {
		Buckets json.RawMessage `json:"buckets"`
	}
	if err := json.Unmarshal(raw, &agg); err != nil {
		return false, fmt.Errorf("%w: aggregations.%s: %v", ErrMalformedResponse, name, err)
	}
	if len(agg.Buckets) == 0 || string(agg.Buckets) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(agg.Buckets, out); err != nil {
		return false, fmt.Errorf("%w: aggregations.%s.buckets: %v", ErrMalformedResponse, name, err)
	}
	return true, nil
}

// MapSearch projects a paged search response.
func MapSearch(body []byte) (*SearchResult, error) {
	env, err := decode(body)
	if err != nil {
		return nil, err
	}
	if env.Hits == nil {
		return nil, malformed("hits")
	}
	if env.Hits.Total == nil {
		return nil, malformed("hits.total")
	}
	if env.Hits.Hits == nil {
		return nil, malformed("hits.hits")
	}

	sales := make([]map[string]interface{}, 0, len(*env.Hits.Hits))
	for i, h := range *env.Hits.Hits {
		if h.Source == nil {
			return nil, malformed(fmt.Sprintf("hits.hits[%d]._source", i))
		}
		sales = append(sales, h.Source)
	}

	return &SearchResult{
		Returned: len(sales),
		Total:    env.Hits.Total.Value,
		Sales:    sales,
	}, nil
}

// MapTotalSales projects the total_sales sum.
func MapTotalSales(body []byte) (*TotalSales, error) {
	raw, err := aggregation(body, query.AggTotalSales)
	if err != nil {
		return nil, err
	}
	var agg valueAgg
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, fmt.Errorf("%w: aggregations.%s: %v", ErrMalformedResponse, query.AggTotalSales, err)
	}
	return &TotalSales{Total: agg.float()}, nil
}

// MapSalesByRegion projects the per-region sums.
func MapSalesByRegion(body []byte) ([]RegionSales, bool, error) {
	var raw []struct {
		Key      string    `json:"key"`
		DocCount int64     `json:"doc_count"`
		Total    *valueAgg `json:"total_sales_per_region"`
	}
	present, err := buckets(body, query.AggSalesByRegion, &raw)
	if err != nil || !present {
		return nil, present, err
	}

	out := make([]RegionSales, 0, len(raw))
	for i, b := range raw {
		if b.Total == nil {
			return nil, true, malformed(fmt.Sprintf("aggregations.%s.buckets[%d].%s", query.AggSalesByRegion, i, query.AggTotalSalesPerRegion))
		}
		out = append(out, RegionSales{
			Region:     b.Key,
			TotalData:  b.DocCount,
			TotalSales: b.Total.float(),
		})
	}
	return out, true, nil
}

// MapSalesChanges projects the daily sums with their derivative.
func MapSalesChanges(body []byte) ([]DailySales, bool, error) {
	var raw []struct {
		KeyAsString string    `json:"key_as_string"`
		DocCount    int64     `json:"doc_count"`
		Total       *valueAgg `json:"total_sales_per_day"`
		Diff        *valueAgg `json:"sales_diff"`
	}
	present, err := buckets(body, query.AggSalesPerDay, &raw)
	if err != nil || !present {
		return nil, present, err
	}

	out := make([]DailySales, 0, len(raw))
	for i, b := range raw {
		if b.Total == nil {
			return nil, true, malformed(fmt.Sprintf("aggregations.%s.buckets[%d].%s", query.AggSalesPerDay, i, query.AggTotalSalesPerDay))
		}
		day := DailySales{
			Timestamp:        b.KeyAsString,
			TotalData:        b.DocCount,
			TotalSalesPerDay: b.Total.float(),
		}
		if b.Diff != nil {
			day.SalesDiff = b.Diff.Value
		}
		out = append(out, day)
	}
	return out, true, nil
}

// MapMaxSalesPerDay flattens the top hit of every day bucket.
func MapMaxSalesPerDay(body []byte) ([]TopSale, bool, error) {
	var raw []struct {
		Top *struct {
			Hits *struct {
				Hits []struct {
					Source *TopSale `json:"_source"`
				} `json:"hits"`
			} `json:"hits"`
		} `json:"top_sale"`
	}
	present, err := buckets(body, query.AggPerDay, &raw)
	if err != nil || !present {
		return nil, present, err
	}

	out := make([]TopSale, 0, len(raw))
	for i, b := range raw {
		if b.Top == nil || b.Top.Hits == nil {
			return nil, true, malformed(fmt.Sprintf("aggregations.%s.buckets[%d].%s.hits", query.AggPerDay, i, query.AggTopSale))
		}
		for j, h := range b.Top.Hits.Hits {
			if h.Source == nil {
				return nil, true, malformed(fmt.Sprintf("aggregations.%s.buckets[%d].%s.hits.hits[%d]._source", query.AggPerDay, i, query.AggTopSale, j))
			}
			out = append(out, *h.Source)
		}
	}
	return out, true, nil
}

// MapDocument projects a document API response.
func MapDocument(body []byte) (*Document, error) {
	var env struct {
		ID          string                 `json:"_id"`
		Found       *bool                  `json:"found"`
		Source      map[string]interface{} `json:"_source"`
		SeqNo       *int                   `json:"_seq_no"`
		PrimaryTerm *int                   `json:"_primary_term"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Found == nil {
		return nil, malformed("found")
	}
	if *env.Found && env.Source == nil {
		return nil, malformed("_source")
	}
	return &Document{
		ID:          env.ID,
		Found:       *env.Found,
		Source:      env.Source,
		SeqNo:       env.SeqNo,
		PrimaryTerm: env.PrimaryTerm,
	}, nil
}
