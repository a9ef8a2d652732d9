// internal/workers/sales/sales-analytics/handler.go
package salesanalytics

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
	"sales-workers/internal/sales/result"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "sales-analytics"

type Analyzer interface {
	Analytics(ctx context.Context, metric models.AnalyticsMetric) (result.Result[interface{}], error)
}

type Handler struct {
	config       *Config
	service      Analyzer
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Service       Analyzer
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

	var input Input
	if err := camunda.DecodeVariables(job, &input); err != nil {
		h.fail(ctx, client, job, errors.NewParseError(err), start)
		return
	}

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"metric":             string(input.Metric),
	})

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, sales.ToStandardError("analytics_"+string(input.Metric), err), start)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.GetKey(), "error": err})
		return
	}

	metrics.ObserveJob(TaskType, string(output.Status), start)
	h.obs.RecordJobProcessed(ctx, TaskType, string(output.Status))
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start))
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !input.Metric.Valid() {
		return nil, errors.NewInvalidAnalyticsMetricError(string(input.Metric))
	}

	res, err := h.service.Analytics(ctx, input.Metric)
	if err != nil {
		return nil, err
	}
	return &Output{
		Status:  res.Status,
		Message: res.Message,
		Metric:  string(input.Metric),
		Data:    res.Value,
	}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *errors.StandardError, start time.Time) {
	metrics.ObserveJobFailure(TaskType, string(stdErr.Code), start)
	h.obs.RecordJobProcessed(ctx, TaskType, "ERROR")
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
