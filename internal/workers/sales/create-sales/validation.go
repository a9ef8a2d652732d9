package createsales

import (
	"strings"

	"sales-workers/internal/common/errors"
	"sales-workers/internal/common/validation"
)

// timestamp is optional; when present it must use the stored layout.
const inputSchema = `{
	"type": "object",
	"required": ["id", "product_name", "sales_amount", "region"],
	"properties": {
		"id":           {"type": "string", "minLength": 1, "maxLength": 255},
		"product_name": {"type": "string", "minLength": 1, "maxLength": 255},
		"sales_amount": {"type": "number"},
		"region":       {"type": "string", "minLength": 1, "maxLength": 100},
		"timestamp":    {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}$"}
	}
}`

var schema = validation.MustCompileSchema(inputSchema)

// validateVariables checks the raw job variables before they are decoded.
func validateVariables(variables string) *errors.StandardError {
	res, err := schema.ValidateJSON(variables)
	if err != nil {
		return errors.NewParseError(err)
	}
	if !res.Valid {
		return errors.NewSalesValidationFailedError(strings.Join(res.GetErrorMessages(), "; "))
	}
	return nil
}
