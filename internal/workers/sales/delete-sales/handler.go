// internal/workers/sales/delete-sales/handler.go
package deletesales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sales-workers/internal/common/camunda"
	"sales-workers/internal/common/config"
	"sales-workers/internal/common/errors"
	"sales-workers/internal/common/logger"
	"sales-workers/internal/common/metrics"
	"sales-workers/internal/common/observability"
	"sales-workers/internal/sales"
	"sales-workers/internal/sales/result"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "sales-delete"

type Deleter interface {
	Delete(ctx context.Context, id string) (result.Result[struct{}], error)
}

type Handler struct {
	config       *Config
	service      Deleter
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Service       Deleter
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
		"jobKey":  job.GetKey(),
		"salesId": input.ID,
	})

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, sales.ToStandardError("delete", err), start)
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
	if strings.TrimSpace(input.ID) == "" {
		return nil, errors.NewSalesValidationFailedError("id is required")
	}

	res, err := h.service.Delete(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &Output{Status: res.Status, Message: res.Message}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *errors.StandardError, start time.Time) {
	metrics.ObserveJobFailure(TaskType, string(stdErr.Code), start)
	h.obs.RecordJobProcessed(ctx, TaskType, "ERROR")
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
