package query

import "encoding/json"

// Clause is a query clause. The set is closed: QueryString, Term, Bool and MatchAll.
type Clause interface {
	json.Marshaler
	isClause()
}

// QueryString is a Lucene query_string clause scoped to DefaultField ("*" for all fields).
type QueryString struct {
	DefaultField string
	Query        string
}

func (QueryString) isClause() {}

func (q QueryString) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"query_string": struct {
			DefaultField string `json:"default_field"`
			Query        string `json:"query"`
		}{q.DefaultField, q.Query},
	})
}

// Term is an exact-value match on a keyword field.
type Term struct {
	Field string
	Value interface{}
}

func (Term) isClause() {}

func (t Term) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"term": map[string]interface{}{t.Field: t.Value},
	})
}

// Bool combines clauses with AND semantics. An empty Must matches every document.
type Bool struct {
	Must []Clause
}

func (Bool) isClause() {}

func (b Bool) MarshalJSON() ([]byte, error) {
	must := b.Must
	if must == nil {
		must = []Clause{}
	}
	return json.Marshal(map[string]interface{}{
		"bool": map[string]interface{}{"must": must},
	})
}

type MatchAll struct{}

func (MatchAll) isClause() {}

func (MatchAll) MarshalJSON() ([]byte, error) {
	return []byte(`{"match_all":{}}`), nil
}
