package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrConnection    = errors.New("SALES_ES_CONNECTION")
	ErrTimeout       = errors.New("SALES_ES_TIMEOUT")
	ErrIndexNotFound = errors.New("SALES_INDEX_NOT_FOUND")
	ErrQueryFailed   = errors.New("SALES_QUERY_FAILED")

	errVersionConflict  = errors.New("version conflict")
	errDocumentNotFound = errors.New("document missing")
)

const (
	indexNotFoundType   = "index_not_found_exception"
	documentMissingType = "document_missing_exception"
)

type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// parseErrorBody reads the error envelope. Non-JSON bodies yield empty fields.
func parseErrorBody(body []byte) errorBody {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	return eb
}

// transportError classifies a failure to obtain any HTTP response.
func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}

// statusError classifies a non-2xx response.
func statusError(status int, body []byte) error {
	eb := parseErrorBody(body)

	switch {
	case status == http.StatusNotFound && eb.Error.Type == indexNotFoundType:
		return fmt.Errorf("%w: %s", ErrIndexNotFound, eb.Error.Reason)
	case status == http.StatusNotFound && eb.Error.Type == documentMissingType:
		return errDocumentNotFound
	case status == http.StatusConflict:
		return fmt.Errorf("%w: %s", errVersionConflict, eb.Error.Reason)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d", ErrTimeout, status)
	}

	if eb.Error.Type != "" {
		return fmt.Errorf("%w: status %d: %s: %s", ErrQueryFailed, status, eb.Error.Type, eb.Error.Reason)
	}
	return fmt.Errorf("%w: status %d", ErrQueryFailed, status)
}
