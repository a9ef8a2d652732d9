package query

import "encoding/json"

// Aggregation is one named entry of an "aggs" object.
type Aggregation interface {
	json.Marshaler
	isAggregation()
}

// Aggs maps aggregation names to their definitions.
type Aggs map[string]Aggregation

// Sum is a sum metric aggregation.
type Sum struct {
	Field string
}

func (Sum) isAggregation() {}

func (s Sum) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"sum": map[string]string{"field": s.Field},
	})
}

// Terms buckets documents by the distinct values of Field. Size 0 keeps the
// engine default.
type Terms struct {
	Field string
	Size  int
	Aggs  Aggs
}

func (Terms) isAggregation() {}

func (t Terms) MarshalJSON() ([]byte, error) {
	body := map[string]interface{}{"field": t.Field}
	if t.Size > 0 {
		body["size"] = t.Size
	}
	return marshalBucket("terms", body, t.Aggs)
}

// DateHistogram buckets documents by calendar interval of a date field.
type DateHistogram struct {
	Field            string
	CalendarInterval string
	Aggs             Aggs
}

func (DateHistogram) isAggregation() {}

func (d DateHistogram) MarshalJSON() ([]byte, error) {
	return marshalBucket("date_histogram", map[string]interface{}{
		"field":             d.Field,
		"calendar_interval": d.CalendarInterval,
	}, d.Aggs)
}

// Derivative is a pipeline aggregation over a sibling metric of the parent histogram.
type Derivative struct {
	BucketsPath string
}

func (Derivative) isAggregation() {}

func (d Derivative) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"derivative": map[string]string{"buckets_path": d.BucketsPath},
	})
}

// SortField orders hits by Field; Order is "asc" or "desc".
type SortField struct {
	Field string
	Order string
}

func (s SortField) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		s.Field: map[string]string{"order": s.Order},
	})
}

// TopHits returns the best Size documents of each bucket.
type TopHits struct {
	Sort []SortField
	Size int
}

func (TopHits) isAggregation() {}

func (t TopHits) MarshalJSON() ([]byte, error) {
	body := map[string]interface{}{"size": t.Size}
	if len(t.Sort) > 0 {
		body["sort"] = t.Sort
	}
	return json.Marshal(map[string]interface{}{"top_hits": body})
}

func marshalBucket(kind string, body map[string]interface{}, sub Aggs) ([]byte, error) {
	out := map[string]interface{}{kind: body}
	if len(sub) > 0 {
		out["aggs"] = sub
	}
	return json.Marshal(out)
}
