package main

import (
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"sales-workers/internal/common/camunda"
	"sales-workers/internal/common/config"
	"sales-workers/internal/common/logger"
	"sales-workers/internal/common/observability"
	"sales-workers/internal/sales"

	createsales "sales-workers/internal/workers/sales/create-sales"
	deletesales "sales-workers/internal/workers/sales/delete-sales"
	getsales "sales-workers/internal/workers/sales/get-sales"
	salesanalytics "sales-workers/internal/workers/sales/sales-analytics"
	searchsales "sales-workers/internal/workers/sales/search-sales"
	updatesales "sales-workers/internal/workers/sales/update-sales"
)

type namedHandler struct {
	taskType string
	handler  camunda.JobHandler
}

// buildHandlers creates a handler for every enabled sales job type.
func buildHandlers(cfg *config.Config, service *sales.Service, obs *observability.Observability, log logger.Logger) ([]namedHandler, error) {
	steps := []struct {
		taskType string
		build    func() (camunda.JobHandler, error)
	}{
		{searchsales.TaskType, func() (camunda.JobHandler, error) {
			return searchsales.NewHandler(searchsales.HandlerOptions{AppConfig: cfg, Service: service, Observability: obs, Logger: log})
		}},
		{salesanalytics.TaskType, func() (camunda.JobHandler, error) {
			return salesanalytics.NewHandler(salesanalytics.HandlerOptions{AppConfig: cfg, Service: service, Observability: obs, Logger: log})
		}},
		{getsales.TaskType, func() (camunda.JobHandler, error) {
			return getsales.NewHandler(getsales.HandlerOptions{AppConfig: cfg, Service: service, Observability: obs, Logger: log})
		}},
		{createsales.TaskType, func() (camunda.JobHandler, error) {
			return createsales.NewHandler(createsales.HandlerOptions{AppConfig: cfg, Service: service, Observability: obs, Logger: log})
		}},
		{updatesales.TaskType, func() (camunda.JobHandler, error) {
			return updatesales.NewHandler(updatesales.HandlerOptions{AppConfig: cfg, Service: service, Observability: obs, Logger: log})
		}},
		{deletesales.TaskType, func() (camunda.JobHandler, error) {
			return deletesales.NewHandler(deletesales.HandlerOptions{AppConfig: cfg, Service: service, Observability: obs, Logger: log})
		}},
	}

	var handlers []namedHandler
	for _, s := range steps {
		if !config.IsWorkerEnabled(cfg, s.taskType) {
			log.Info("worker disabled by configuration", map[string]interface{}{"taskType": s.taskType})
			continue
		}
		h, err := s.build()
		if err != nil {
			return nil, fmt.Errorf("failed to create %s handler: %w", s.taskType, err)
		}
		handlers = append(handlers, namedHandler{taskType: s.taskType, handler: h})
	}
	return handlers, nil
}

// registerWorkers opens one job worker per enabled handler.
func registerWorkers(client zbc.Client, cfg *config.Config, service *sales.Service, obs *observability.Observability, log logger.Logger) ([]worker.JobWorker, error) {
	handlers, err := buildHandlers(cfg, service, obs, log)
	if err != nil {
		return nil, err
	}

	workers := make([]worker.JobWorker, 0, len(handlers))
	for _, h := range handlers {
		workers = append(workers, camunda.StartWorker(client, h.taskType, config.GetWorkerConfig(cfg, h.taskType), h.handler, log))
	}
	return workers, nil
}
