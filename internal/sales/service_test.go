package sales

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	commonerrors "sales-workers/internal/common/errors"
	"sales-workers/internal/common/logger"
	"sales-workers/internal/models"
	"sales-workers/internal/sales/audit"
	"sales-workers/internal/sales/cache"
	"sales-workers/internal/sales/events"
	"sales-workers/internal/sales/mapper"
	"sales-workers/internal/sales/query"
	"sales-workers/internal/sales/repository"
	"sales-workers/internal/sales/result"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Search(ctx context.Context, filter models.FilterQuery) (result.Result[*mapper.SearchResult], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(result.Result[*mapper.SearchResult]), args.Error(1)
}

func (m *MockRepository) TotalSales(ctx context.Context) (result.Result[*mapper.TotalSales], error) {
	args := m.Called(ctx)
	return args.Get(0).(result.Result[*mapper.TotalSales]), args.Error(1)
}

func (m *MockRepository) SalesByRegion(ctx context.Context) (result.Result[[]mapper.RegionSales], error) {
	args := m.Called(ctx)
	return args.Get(0).(result.Result[[]mapper.RegionSales]), args.Error(1)
}

func (m *MockRepository) SalesChanges(ctx context.Context) (result.Result[[]mapper.DailySales], error) {
	args := m.Called(ctx)
	return args.Get(0).(result.Result[[]mapper.DailySales]), args.Error(1)
}

func (m *MockRepository) MaxSalesPerDay(ctx context.Context) (result.Result[[]mapper.TopSale], error) {
	args := m.Called(ctx)
	return args.Get(0).(result.Result[[]mapper.TopSale]), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (result.Result[map[string]interface{}], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(result.Result[map[string]interface{}]), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, sales models.Sales) (result.Result[map[string]interface{}], error) {
	args := m.Called(ctx, sales)
	return args.Get(0).(result.Result[map[string]interface{}]), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, patch models.SalesPatch) (result.Result[map[string]interface{}], error) {
	args := m.Called(ctx, patch)
	return args.Get(0).(result.Result[map[string]interface{}]), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) (result.Result[struct{}], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(result.Result[struct{}]), args.Error(1)
}

type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) Record(ctx context.Context, entry audit.Entry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	return m.Called(ctx, event).Error(0)
}

func newRedisCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisCache(client, time.Minute), mr
}

// ==========================
// Tests
// ==========================

func TestService_AnalyticsAreCached(t *testing.T) {
	repo := new(MockRepository)
	c, mr := newRedisCache(t)
	svc := NewService(repo, logger.NewTestLogger(t), Options{Cache: c})

	rows := []mapper.RegionSales{{Region: "west", TotalData: 2, TotalSales: 20}}
	repo.On("SalesByRegion", mock.Anything).Return(result.Found(rows), nil).Once()

	first, err := svc.SalesByRegion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rows, first.Value)
	assert.True(t, mr.Exists(cache.Key(models.AnalyticsByRegion)))

	second, err := svc.SalesByRegion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.StatusFound, second.Status)
	assert.Equal(t, rows, second.Value)

	repo.AssertNumberOfCalls(t, "SalesByRegion", 1)
}

func TestService_NotFoundAnalyticsAreNotCached(t *testing.T) {
	repo := new(MockRepository)
	c, mr := newRedisCache(t)
	svc := NewService(repo, logger.NewTestLogger(t), Options{Cache: c})

	repo.On("SalesChanges", mock.Anything).Return(result.NotFound[[]mapper.DailySales](), nil)

	res, err := svc.SalesChanges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.StatusNotFound, res.Status)
	assert.False(t, mr.Exists(cache.Key(models.AnalyticsDailyChanges)))
}

func TestService_CacheFailureFallsThrough(t *testing.T) {
	repo := new(MockRepository)
	unreachable := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = unreachable.Close() })
	svc := NewService(repo, logger.NewTestLogger(t), Options{Cache: cache.NewRedisCache(unreachable, time.Minute)})

	total := &mapper.TotalSales{Total: 5}
	repo.On("TotalSales", mock.Anything).Return(result.Found(total), nil)

	res, err := svc.TotalSales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Value.Total)
}

func TestService_Analytics(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, logger.NewNoOpLogger(), Options{})

	repo.On("MaxSalesPerDay", mock.Anything).Return(result.Found([]mapper.TopSale{{ProductName: "TV"}}), nil)

	res, err := svc.Analytics(context.Background(), models.AnalyticsMaxPerDay)
	require.NoError(t, err)
	assert.Equal(t, []mapper.TopSale{{ProductName: "TV"}}, res.Value)

	_, err = svc.Analytics(context.Background(), models.AnalyticsMetric("weekly"))
	assert.True(t, errors.Is(err, ErrUnknownMetric))
}

func TestService_CreateRunsSideEffects(t *testing.T) {
	repo := new(MockRepository)
	auditLog := new(MockAudit)
	pub := new(MockPublisher)
	c, mr := newRedisCache(t)
	svc := NewService(repo, logger.NewTestLogger(t), Options{Cache: c, Audit: auditLog, Events: pub})

	require.NoError(t, c.Set(context.Background(), models.AnalyticsTotal, map[string]float64{"total_sales": 1}))

	input := models.Sales{ID: "s-1", ProductName: "Laptop", SalesAmount: 10, Region: "west"}
	stored := map[string]interface{}{"id": "hash-1", "product_name": "Laptop"}
	repo.On("Create", mock.Anything, input).Return(result.Found(stored), nil)
	auditLog.On("Record", mock.Anything, mock.MatchedBy(func(e audit.Entry) bool {
		return e.Operation == "create" && e.SalesID == "hash-1"
	})).Return("audit-1", nil)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.TypeCreated && e.SalesID == "hash-1"
	})).Return(nil)

	res, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, result.StatusFound, res.Status)
	assert.False(t, mr.Exists(cache.Key(models.AnalyticsTotal)))

	auditLog.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestService_SideEffectFailuresDoNotFailMutation(t *testing.T) {
	repo := new(MockRepository)
	auditLog := new(MockAudit)
	pub := new(MockPublisher)
	svc := NewService(repo, logger.NewTestLogger(t), Options{Audit: auditLog, Events: pub})

	repo.On("Delete", mock.Anything, "abc").Return(result.Deleted(), nil)
	auditLog.On("Record", mock.Anything, mock.Anything).Return("", errors.New("db down"))
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	res, err := svc.Delete(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Successfully", res.Message)
}

func TestService_NoSideEffectsWithoutMutation(t *testing.T) {
	repo := new(MockRepository)
	auditLog := new(MockAudit)
	pub := new(MockPublisher)
	svc := NewService(repo, logger.NewNoOpLogger(), Options{Audit: auditLog, Events: pub})

	region := "east"
	patch := models.SalesPatch{ID: "abc", Region: &region}
	repo.On("Update", mock.Anything, patch).Return(result.NotFound[map[string]interface{}](), nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(result.Conflict[map[string]interface{}](result.MessageAlreadyExist), nil)

	_, err := svc.Update(context.Background(), patch)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), models.Sales{ID: "s-1"})
	require.NoError(t, err)

	auditLog.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestToStandardError(t *testing.T) {
	tests := []struct {
		err  error
		code commonerrors.ErrorCode
	}{
		{fmt.Errorf("%w: refused", repository.ErrConnection), commonerrors.ErrCodeElasticsearchConnectionFailed},
		{fmt.Errorf("%w: deadline", repository.ErrTimeout), commonerrors.ErrCodeSearchTimeout},
		{fmt.Errorf("%w: sales_v2", repository.ErrIndexNotFound), commonerrors.ErrCodeIndexNotFound},
		{fmt.Errorf("%w: 400", repository.ErrQueryFailed), commonerrors.ErrCodeSearchQueryFailed},
		{fmt.Errorf("%w: missing hits", mapper.ErrMalformedResponse), commonerrors.ErrCodeMalformedResponse},
		{fmt.Errorf("%w: size -1", query.ErrInvalidPagination), commonerrors.ErrCodeInvalidFilterFormat},
		{fmt.Errorf("%w: weekly", ErrUnknownMetric), commonerrors.ErrCodeInvalidAnalyticsType},
		{commonerrors.NewSalesValidationFailedError("bad"), commonerrors.ErrCodeSalesValidationFailed},
		{errors.New("boom"), commonerrors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.code, ToStandardError("search", tt.err).Code)
		})
	}
}
