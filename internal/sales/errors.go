package sales

import (
	"errors"

	commonerrors "sales-workers/internal/common/errors"
	"sales-workers/internal/sales/mapper"
	"sales-workers/internal/sales/query"
	"sales-workers/internal/sales/repository"
)

// ToStandardError maps data-access failures onto the BPMN error taxonomy.
func ToStandardError(operation string, err error) *commonerrors.StandardError {
	var stdErr *commonerrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}

	switch {
	case errors.Is(err, repository.ErrTimeout):
		return commonerrors.NewSearchTimeoutError(operation)
	case errors.Is(err, repository.ErrConnection):
		return commonerrors.NewElasticsearchConnectionFailedError(err)
	case errors.Is(err, repository.ErrIndexNotFound):
		return commonerrors.NewIndexNotFoundError(err.Error())
	case errors.Is(err, repository.ErrQueryFailed):
		return commonerrors.NewSearchQueryFailedError(operation, err)
	case errors.Is(err, mapper.ErrMalformedResponse):
		return commonerrors.NewMalformedResponseError(operation, err)
	case errors.Is(err, query.ErrInvalidPagination), errors.Is(err, query.ErrInvalidFilter):
		return commonerrors.NewInvalidFilterFormatError(err.Error())
	case errors.Is(err, ErrUnknownMetric):
		return commonerrors.NewInvalidAnalyticsMetricError(err.Error())
	}
	return commonerrors.NewInternalError(err)
}
