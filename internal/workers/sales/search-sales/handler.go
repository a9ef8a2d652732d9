// internal/workers/sales/search-sales/handler.go
package searchsales

import (
	"context"
	"fmt"
	"time"

	"sales-workers/internal/common/camunda"
	"sales-workers/internal/common/config"
	"sales-workers/internal/common/errors"
	"sales-workers/internal/common/logger"
	"sales-workers/internal/common/metrics"
	"sales-workers/internal/common/observability"
	"sales-workers/internal/models"
	"sales-workers/internal/sales"
	"sales-workers/internal/sales/mapper"
	"sales-workers/internal/sales/result"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "sales-search"

// Searcher is the part of the sales service used by this worker.
type Searcher interface {
	Search(ctx context.Context, filter models.FilterQuery) (result.Result[*mapper.SearchResult], error)
}

type Handler struct {
	config       *Config
	service      Searcher
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Service       Searcher
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Service == nil {
		return nil, fmt.Errorf("%s: sales service is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		service:      opts.Service,
		errorHandler: errors.NewErrorHandler(log),
		obs:          opts.Observability,
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	var input Input
	if err := camunda.DecodeVariables(job, &input); err != nil {
		h.fail(ctx, client, job, errors.NewParseError(err), start)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, sales.ToStandardError("search", err), start)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.GetKey(), "error": err})
		return
	}

	metrics.ObserveJob(TaskType, string(output.Status), start)
	h.obs.RecordJobProcessed(ctx, TaskType, string(output.Status))
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start))

	fields := map[string]interface{}{"jobKey": job.GetKey(), "status": output.Status}
	if output.Data != nil {
		fields["returned"] = output.Data.Returned
		fields["total"] = output.Data.Total
	}
	h.logger.Info("job completed", fields)
}

// Execute runs the search without any job plumbing.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	res, err := h.service.Search(ctx, input.Filter())
	if err != nil {
		return nil, err
	}
	return &Output{Status: res.Status, Message: res.Message, Data: res.Value}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *errors.StandardError, start time.Time) {
	metrics.ObserveJobFailure(TaskType, string(stdErr.Code), start)
	h.obs.RecordJobProcessed(ctx, TaskType, "ERROR")
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
