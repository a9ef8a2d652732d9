// Package sales composes the sales repository with caching, auditing,
// event publication and metrics.
package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sales-workers/internal/common/logger"
	"sales-workers/internal/common/metrics"
	"sales-workers/internal/models"
	"sales-workers/internal/sales/audit"
	"sales-workers/internal/sales/cache"
	"sales-workers/internal/sales/events"
	"sales-workers/internal/sales/mapper"
	"sales-workers/internal/sales/repository"
	"sales-workers/internal/sales/result"
)

var ErrUnknownMetric = errors.New("SALES_UNKNOWN_METRIC")

// Repository is the data access used by the service.
type Repository interface {
	Search(ctx context.Context, filter models.FilterQuery) (result.Result[*mapper.SearchResult], error)
	TotalSales(ctx context.Context) (result.Result[*mapper.TotalSales], error)
	SalesByRegion(ctx context.Context) (result.Result[[]mapper.RegionSales], error)
	SalesChanges(ctx context.Context) (result.Result[[]mapper.DailySales], error)
	MaxSalesPerDay(ctx context.Context) (result.Result[[]mapper.TopSale], error)
	FindByID(ctx context.Context, id string) (result.Result[map[string]interface{}], error)
	Create(ctx context.Context, sales models.Sales) (result.Result[map[string]interface{}], error)
	Update(ctx context.Context, patch models.SalesPatch) (result.Result[map[string]interface{}], error)
	Delete(ctx context.Context, id string) (result.Result[struct{}], error)
}

// Options holds the optional collaborators. Nil members are skipped.
type Options struct {
	Cache  cache.Cache
	Audit  audit.Log
	Events events.Publisher
}

type Service struct {
	repo   Repository
	cache  cache.Cache
	audit  audit.Log
	events events.Publisher
	log    logger.Logger
}

func NewService(repo Repository, log logger.Logger, opts Options) *Service {
	return &Service{
		repo:   repo,
		cache:  opts.Cache,
		audit:  opts.Audit,
		events: opts.Events,
		log:    log.WithFields(map[string]interface{}{"component": "sales-service"}),
	}
}

func (s *Service) Search(ctx context.Context, filter models.FilterQuery) (result.Result[*mapper.SearchResult], error) {
	start := time.Now()
	res, err := s.repo.Search(ctx, filter)
	observe("search", res.Status, err, start)
	return res, err
}

func (s *Service) TotalSales(ctx context.Context) (result.Result[*mapper.TotalSales], error) {
	return cached(ctx, s, models.AnalyticsTotal, s.repo.TotalSales)
}

func (s *Service) SalesByRegion(ctx context.Context) (result.Result[[]mapper.RegionSales], error) {
	return cached(ctx, s, models.AnalyticsByRegion, s.repo.SalesByRegion)
}

func (s *Service) SalesChanges(ctx context.Context) (result.Result[[]mapper.DailySales], error) {
	return cached(ctx, s, models.AnalyticsDailyChanges, s.repo.SalesChanges)
}

func (s *Service) MaxSalesPerDay(ctx context.Context) (result.Result[[]mapper.TopSale], error) {
	return cached(ctx, s, models.AnalyticsMaxPerDay, s.repo.MaxSalesPerDay)
}

// Analytics dispatches on metric and returns the result with an untyped value.
func (s *Service) Analytics(ctx context.Context, metric models.AnalyticsMetric) (result.Result[interface{}], error) {
	switch metric {
	case models.AnalyticsTotal:
		return widen(s.TotalSales(ctx))
	case models.AnalyticsByRegion:
		return widen(s.SalesByRegion(ctx))
	case models.AnalyticsDailyChanges:
		return widen(s.SalesChanges(ctx))
	case models.AnalyticsMaxPerDay:
		return widen(s.MaxSalesPerDay(ctx))
	}
	return result.Result[interface{}]{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
}

func (s *Service) FindByID(ctx context.Context, id string) (result.Result[map[string]interface{}], error) {
	start := time.Now()
	res, err := s.repo.FindByID(ctx, id)
	observe("find_by_id", res.Status, err, start)
	return res, err
}

func (s *Service) Create(ctx context.Context, sales models.Sales) (result.Result[map[string]interface{}], error) {
	start := time.Now()
	res, err := s.repo.Create(ctx, sales)
	observe("create", res.Status, err, start)

	if err == nil && res.IsFound() {
		id, _ := res.Value["id"].(string)
		if id == "" {
			id = repository.HashID(sales.ID, sales.Timestamp)
		}
		s.afterMutation(ctx, "create", events.TypeCreated, id, res.Value)
	}
	return res, err
}

func (s *Service) Update(ctx context.Context, patch models.SalesPatch) (result.Result[map[string]interface{}], error) {
	start := time.Now()
	res, err := s.repo.Update(ctx, patch)
	observe("update", res.Status, err, start)

	if err == nil && res.IsFound() {
		s.afterMutation(ctx, "update", events.TypeUpdated, patch.ID, patch.Fields())
	}
	return res, err
}

func (s *Service) Delete(ctx context.Context, id string) (result.Result[struct{}], error) {
	start := time.Now()
	res, err := s.repo.Delete(ctx, id)
	observe("delete", res.Status, err, start)

	if err == nil && res.IsFound() {
		s.afterMutation(ctx, "delete", events.TypeDeleted, id, nil)
	}
	return res, err
}

// afterMutation runs the side effects of a successful write. Their failures
// are logged and never fail the write.
func (s *Service) afterMutation(ctx context.Context, op, eventType, salesID string, data map[string]interface{}) {
	fields := map[string]interface{}{"operation": op, "salesId": salesID}

	if s.cache != nil {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			s.log.Warn("analytics cache invalidation failed", withErr(fields, err))
		}
	}

	if s.audit != nil {
		if _, err := s.audit.Record(ctx, audit.Entry{Operation: op, SalesID: salesID, Details: data}); err != nil {
			s.log.Warn("audit entry not recorded", withErr(fields, err))
		}
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, events.NewEvent(eventType, salesID, data)); err != nil {
			s.log.Warn("sales event not published", withErr(fields, err))
		}
	}
}

// cached serves FOUND analytic results from the cache when one is configured.
func cached[T any](ctx context.Context, s *Service, metric models.AnalyticsMetric, fetch func(context.Context) (result.Result[T], error)) (result.Result[T], error) {
	op := "analytics_" + string(metric)
	start := time.Now()

	if s.cache != nil {
		var v T
		hit, err := s.cache.Get(ctx, metric, &v)
		switch {
		case err != nil:
			metrics.SalesCacheRequests.WithLabelValues("error").Inc()
			s.log.Warn("analytics cache read failed", map[string]interface{}{"metric": string(metric), "error": err})
		case hit:
			metrics.SalesCacheRequests.WithLabelValues("hit").Inc()
			res := result.Found(v)
			observe(op, res.Status, nil, start)
			return res, nil
		default:
			metrics.SalesCacheRequests.WithLabelValues("miss").Inc()
		}
	}

	res, err := fetch(ctx)
	observe(op, res.Status, err, start)
	if err != nil {
		return res, err
	}

	if s.cache != nil && res.IsFound() {
		if err := s.cache.Set(ctx, metric, res.Value); err != nil {
			s.log.Warn("analytics cache write failed", map[string]interface{}{"metric": string(metric), "error": err})
		}
	}
	return res, nil
}

func widen[T any](res result.Result[T], err error) (result.Result[interface{}], error) {
	if err != nil {
		return result.Result[interface{}]{}, err
	}
	return result.Result[interface{}]{Status: res.Status, Value: res.Value, Message: res.Message}, nil
}

func observe(op string, status result.Status, err error, start time.Time) {
	label := string(status)
	if err != nil {
		label = "ERROR"
	}
	metrics.ObserveSalesOperation(op, label, start)
}

func withErr(fields map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err
	return out
}
