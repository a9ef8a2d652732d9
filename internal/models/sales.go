// internal/models/sales.go
package models

// Sales is a stored sales record. ID is the content hash assigned at creation.
type Sales struct {
	ID          string  `json:"id"`
	ProductName string  `json:"product_name"`
	SalesAmount float64 `json:"sales_amount"`
	Region      string  `json:"region"`
	Timestamp   string  `json:"timestamp"`
}

// SalesPatch carries a partial update. Nil fields are left untouched.
type SalesPatch struct {
	ID          string   `json:"id"`
	ProductName *string  `json:"product_name,omitempty"`
	SalesAmount *float64 `json:"sales_amount,omitempty"`
	Region      *string  `json:"region,omitempty"`
	Timestamp   *string  `json:"timestamp,omitempty"`
}

// Fields returns only the supplied fields, keyed by their document names.
func (p SalesPatch) Fields() map[string]interface{} {
	doc := make(map[string]interface{}, 4)
	if p.ProductName != nil {
		doc["product_name"] = *p.ProductName
	}
	if p.SalesAmount != nil {
		doc["sales_amount"] = *p.SalesAmount
	}
	if p.Region != nil {
		doc["region"] = *p.Region
	}
	if p.Timestamp != nil {
		doc["timestamp"] = *p.Timestamp
	}
	return doc
}

// IsEmpty reports whether the patch would change nothing.
func (p SalesPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}
