package mapper

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapSearch(t *testing.T) {
	body := []byte(`{
		"hits": {
			"total": {"value": 42, "relation": "eq"},
			"hits": [
				{"_id": "a", "_source": {"id": "a", "product_name": "Laptop", "region": "west"}},
				{"_id": "b", "_source": {"id": "b", "product_name": "Phone", "region": "east"}}
			]
		}
	}`)

	res, err := MapSearch(body)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Returned)
	assert.Equal(t, 42, res.Total)
	require.Len(t, res.Sales, 2)
	assert.Equal(t, "Laptop", res.Sales[0]["product_name"])
}

func TestMapSearch_Malformed(t *testing.T) {
	tests := map[string]string{
		"no hits":   `{"took": 1}`,
		"no total":  `{"hits": {"hits": []}}`,
		"no list":   `{"hits": {"total": {"value": 0}}}`,
		"no source": `{"hits": {"total": {"value": 1}, "hits": [{"_id": "a"}]}}`,
		"not json":  `<html>`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := MapSearch([]byte(body))
			assert.True(t, errors.Is(err, ErrMalformedResponse), err)
		})
	}
}

func TestMapTotalSales(t *testing.T) {
	res, err := MapTotalSales([]byte(`{"aggregations": {"total_sales": {"value": 1520.5}}}`))
	require.NoError(t, err)
	assert.Equal(t, 1520.5, res.Total)

	_, err = MapTotalSales([]byte(`{"hits": {}}`))
	assert.True(t, errors.Is(err, ErrMalformedResponse))

	_, err = MapTotalSales([]byte(`{"aggregations": {}}`))
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestMapSalesByRegion(t *testing.T) {
	body := []byte(`{"aggregations": {"sales_by_region": {"buckets": [
		{"key": "west", "doc_count": 3, "total_sales_per_region": {"value": 300}},
		{"key": "east", "doc_count": 1, "total_sales_per_region": {"value": 75.5}}
	]}}}`)

	res, present, err := MapSalesByRegion(body)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, []RegionSales{
		{Region: "west", TotalData: 3, TotalSales: 300},
		{Region: "east", TotalData: 1, TotalSales: 75.5},
	}, res)
}

func TestMapSalesByRegion_NoBuckets(t *testing.T) {
	res, present, err := MapSalesByRegion([]byte(`{"aggregations": {"sales_by_region": {}}}`))
	require.NoError(t, err)
	assert.False(t, present)
	assert.Nil(t, res)
}

func TestMapSalesByRegion_MissingSubAggregation(t *testing.T) {
	_, _, err := MapSalesByRegion([]byte(`{"aggregations": {"sales_by_region": {"buckets": [
		{"key": "west", "doc_count": 3}
	]}}}`))
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestMapSalesChanges_FirstBucketHasNoDerivative(t *testing.T) {
	body := []byte(`{"aggregations": {"sales_per_day": {"buckets": [
		{"key_as_string": "2024-01-01T00:00:00.000Z", "doc_count": 2, "total_sales_per_day": {"value": 100}},
		{"key_as_string": "2024-01-02T00:00:00.000Z", "doc_count": 1, "total_sales_per_day": {"value": 40}, "sales_diff": {"value": -60}},
		{"key_as_string": "2024-01-03T00:00:00.000Z", "doc_count": 4, "total_sales_per_day": {"value": 90}, "sales_diff": {"value": 50}}
	]}}}`)

	res, present, err := MapSalesChanges(body)
	require.NoError(t, err)
	assert.True(t, present)
	require.Len(t, res, 3)

	assert.Equal(t, "2024-01-01T00:00:00.000Z", res[0].Timestamp)
	assert.Nil(t, res[0].SalesDiff)
	require.NotNil(t, res[1].SalesDiff)
	assert.Equal(t, -60.0, *res[1].SalesDiff)
	assert.Equal(t, 50.0, *res[2].SalesDiff)
	assert.Equal(t, int64(4), res[2].TotalData)
}

func TestDailySales_Labels(t *testing.T) {
	diff := 5.0
	out, err := json.Marshal([]DailySales{
		{Timestamp: "2024-01-01", TotalData: 1, TotalSalesPerDay: 10},
		{Timestamp: "2024-01-02", TotalData: 2, TotalSalesPerDay: 15, SalesDiff: &diff},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"timestamp":"2024-01-01","total_data":1,"total_sales_per_day":10,"pendapatan":null},
		{"timestamp":"2024-01-02","total_data":2,"total_sales_per_day":15,"pendapatan":5}
	]`, string(out))
}

func TestMapSalesByRegion_EmptyBucketsAreFound(t *testing.T) {
	res, present, err := MapSalesByRegion([]byte(`{"aggregations": {"sales_by_region": {"buckets": []}}}`))
	require.NoError(t, err)
	assert.True(t, present)
	assert.Empty(t, res)
}

func TestMapMaxSalesPerDay(t *testing.T) {
	body := []byte(`{"aggregations": {"per_day": {"buckets": [
		{"key_as_string": "2024-01-01", "doc_count": 2, "top_sale": {"hits": {"hits": [
			{"_source": {"product_name": "Laptop", "sales_amount": 1200, "region": "west", "timestamp": "2024-01-01T10:00:00"}}
		]}}},
		{"key_as_string": "2024-01-02", "doc_count": 0, "top_sale": {"hits": {"hits": []}}}
	]}}}`)

	res, present, err := MapMaxSalesPerDay(body)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, []TopSale{{
		ProductName: "Laptop",
		SalesAmount: 1200,
		Region:      "west",
		Timestamp:   "2024-01-01T10:00:00",
	}}, res)
}

func TestMapDocument(t *testing.T) {
	doc, err := MapDocument([]byte(`{"_id": "abc", "_seq_no": 4, "_primary_term": 1, "found": true, "_source": {"region": "west"}}`))
	require.NoError(t, err)
	assert.True(t, doc.Found)
	assert.Equal(t, "abc", doc.ID)
	assert.Equal(t, "west", doc.Source["region"])
	require.NotNil(t, doc.SeqNo)
	assert.Equal(t, 4, *doc.SeqNo)
	assert.Equal(t, 1, *doc.PrimaryTerm)

	doc, err = MapDocument([]byte(`{"_id": "abc", "found": false}`))
	require.NoError(t, err)
	assert.False(t, doc.Found)

	_, err = MapDocument([]byte(`{"_id": "abc"}`))
	assert.True(t, errors.Is(err, ErrMalformedResponse))

	_, err = MapDocument([]byte(`{"_id": "abc", "found": true}`))
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}
