// Package repository executes sales operations against Elasticsearch.
package repository

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"sales-workers/internal/common/logger"
	"sales-workers/internal/models"
	"sales-workers/internal/sales/mapper"
	"sales-workers/internal/sales/query"
	"sales-workers/internal/sales/result"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TimestampLayout is the format of timestamps assigned at creation.
const TimestampLayout = "2006-01-02T15:04:05"

const tracerName = "sales-workers/internal/sales/repository"

// Config names the indices used by the repository.
// LookupIndex is where Update checks existence and reads back.
type Config struct {
	SalesIndex  string
	LookupIndex string
	Refresh     string
}

type Repository struct {
	transport esapi.Transport
	cfg       Config
	log       logger.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// Option customizes a Repository.
type Option func(*Repository)

// WithClock replaces the time source used for default timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Repository) { r.tracer = t }
}

// New creates a Repository. transport is usually an *elasticsearch.Client.
func New(transport esapi.Transport, cfg Config, log logger.Logger, opts ...Option) *Repository {
	if cfg.LookupIndex == "" {
		cfg.LookupIndex = cfg.SalesIndex
	}
	r := &Repository{
		transport: transport,
		cfg:       cfg,
		log:       log.WithFields(map[string]interface{}{"component": "sales-repository"}),
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HashID derives the storage identifier of a record from its raw id and timestamp.
// A missing timestamp hashes as the literal "null" so ids match records written
// by earlier producers of the index.
func HashID(rawID, timestamp string) string {
	if timestamp == "" {
		timestamp = "null"
	}
	sum := md5.Sum([]byte(rawID + timestamp))
	return hex.EncodeToString(sum[:])
}

// Search runs a paged term filter.
func (r *Repository) Search(ctx context.Context, filter models.FilterQuery) (result.Result[*mapper.SearchResult], error) {
	ctx, span := r.start(ctx, "search", r.cfg.SalesIndex)
	defer span.End()

	doc, err := query.BuildPagedSearch(filter)
	if err != nil {
		return fail[*mapper.SearchResult](span, err)
	}
	body, err := r.search(ctx, doc)
	if err != nil {
		return fail[*mapper.SearchResult](span, err)
	}
	res, err := mapper.MapSearch(body)
	if err != nil {
		return fail[*mapper.SearchResult](span, err)
	}

	span.SetAttributes(attribute.Int("sales.hits", res.Returned))
	return result.Found(res), nil
}

// TotalSales sums every sales amount.
func (r *Repository) TotalSales(ctx context.Context) (result.Result[*mapper.TotalSales], error) {
	ctx, span := r.start(ctx, "total_sales", r.cfg.SalesIndex)
	defer span.End()

	body, err := r.search(ctx, query.TotalSales())
	if err != nil {
		return fail[*mapper.TotalSales](span, err)
	}
	res, err := mapper.MapTotalSales(body)
	if err != nil {
		return fail[*mapper.TotalSales](span, err)
	}
	return result.Found(res), nil
}

// SalesByRegion sums sales amounts per region.
func (r *Repository) SalesByRegion(ctx context.Context) (result.Result[[]mapper.RegionSales], error) {
	ctx, span := r.start(ctx, "sales_by_region", r.cfg.SalesIndex)
	defer span.End()

	body, err := r.search(ctx, query.SalesByRegion())
	if err != nil {
		return fail[[]mapper.RegionSales](span, err)
	}
	return bucketResult(span, body, mapper.MapSalesByRegion)
}

// SalesChanges returns the daily sums with the change from the previous day.
func (r *Repository) SalesChanges(ctx context.Context) (result.Result[[]mapper.DailySales], error) {
	ctx, span := r.start(ctx, "sales_changes", r.cfg.SalesIndex)
	defer span.End()

	body, err := r.search(ctx, query.SalesChanges())
	if err != nil {
		return fail[[]mapper.DailySales](span, err)
	}
	return bucketResult(span, body, mapper.MapSalesChanges)
}

// MaxSalesPerDay returns the largest sale of every day.
func (r *Repository) MaxSalesPerDay(ctx context.Context) (result.Result[[]mapper.TopSale], error) {
	ctx, span := r.start(ctx, "max_sales_per_day", r.cfg.SalesIndex)
	defer span.End()

	body, err := r.search(ctx, query.MaxSalesPerDay())
	if err != nil {
		return fail[[]mapper.TopSale](span, err)
	}
	return bucketResult(span, body, mapper.MapMaxSalesPerDay)
}

// FindByID reads one document from the sales index.
func (r *Repository) FindByID(ctx context.Context, id string) (result.Result[map[string]interface{}], error) {
	ctx, span := r.start(ctx, "find_by_id", r.cfg.SalesIndex)
	defer span.End()

	doc, err := r.get(ctx, r.cfg.SalesIndex, id)
	if err != nil {
		return fail[map[string]interface{}](span, err)
	}
	if !doc.Found {
		return result.NotFound[map[string]interface{}](), nil
	}
	return result.Found(doc.Source), nil
}

// Create stores a new record under its content hash and returns the stored
// document. An existing record with the same hash is a conflict.
func (r *Repository) Create(ctx context.Context, sales models.Sales) (result.Result[map[string]interface{}], error) {
	ctx, span := r.start(ctx, "create", r.cfg.SalesIndex)
	defer span.End()

	id := HashID(sales.ID, sales.Timestamp)
	span.SetAttributes(attribute.String("sales.id", id))

	existing, err := r.lookup(ctx, r.cfg.SalesIndex, id)
	if err != nil {
		return fail[map[string]interface{}](span, err)
	}
	if existing.Found {
		return result.Conflict[map[string]interface{}](result.MessageAlreadyExist), nil
	}

	record := sales
	record.ID = id
	if record.Timestamp == "" {
		record.Timestamp = r.now().Format(TimestampLayout)
	}
	body, err := json.Marshal(record)
	if err != nil {
		return fail[map[string]interface{}](span, fmt.Errorf("encode sales record: %w", err))
	}

	req := esapi.IndexRequest{
		Index:      r.cfg.SalesIndex,
		DocumentID: id,
		Body:       bytes.NewReader(body),
		OpType:     "create",
		Refresh:    r.cfg.Refresh,
	}
	if _, err := r.do(ctx, req); err != nil {
		if errors.Is(err, errVersionConflict) {
			r.log.Info("create lost race to concurrent writer", map[string]interface{}{"id": id})
			return result.Conflict[map[string]interface{}](result.MessageAlreadyExist), nil
		}
		return fail[map[string]interface{}](span, err)
	}

	r.log.Debug("sales record created", map[string]interface{}{"id": id})
	return r.readBack(ctx, span, r.cfg.SalesIndex, id)
}

// Update merges the supplied fields of patch into an existing record.
func (r *Repository) Update(ctx context.Context, patch models.SalesPatch) (result.Result[map[string]interface{}], error) {
	ctx, span := r.start(ctx, "update", r.cfg.SalesIndex)
	defer span.End()
	span.SetAttributes(attribute.String("sales.id", patch.ID), attribute.String("sales.lookup_index", r.cfg.LookupIndex))

	existing, err := r.get(ctx, r.cfg.LookupIndex, patch.ID)
	if err != nil {
		return fail[map[string]interface{}](span, err)
	}
	if !existing.Found {
		return result.NotFound[map[string]interface{}](), nil
	}

	body, err := json.Marshal(map[string]interface{}{"doc": patch.Fields()})
	if err != nil {
		return fail[map[string]interface{}](span, fmt.Errorf("encode sales patch: %w", err))
	}

	req := esapi.UpdateRequest{
		Index:      r.cfg.SalesIndex,
		DocumentID: patch.ID,
		Body:       bytes.NewReader(body),
		Refresh:    r.cfg.Refresh,
	}
	if r.cfg.LookupIndex == r.cfg.SalesIndex {
		req.IfSeqNo = existing.SeqNo
		req.IfPrimaryTerm = existing.PrimaryTerm
	}

	if _, err := r.do(ctx, req); err != nil {
		switch {
		case errors.Is(err, errVersionConflict):
			return result.Conflict[map[string]interface{}](result.MessageModified), nil
		case errors.Is(err, errDocumentNotFound):
			return result.NotFound[map[string]interface{}](), nil
		}
		return fail[map[string]interface{}](span, err)
	}

	return r.readBack(ctx, span, r.cfg.LookupIndex, patch.ID)
}

// Delete removes an existing record. Nothing is deleted when it is absent.
func (r *Repository) Delete(ctx context.Context, id string) (result.Result[struct{}], error) {
	ctx, span := r.start(ctx, "delete", r.cfg.SalesIndex)
	defer span.End()
	span.SetAttributes(attribute.String("sales.id", id))

	existing, err := r.lookup(ctx, r.cfg.SalesIndex, id)
	if err != nil {
		return fail[struct{}](span, err)
	}
	if !existing.Found {
		return result.NotFound[struct{}](), nil
	}

	req := esapi.DeleteRequest{
		Index:         r.cfg.SalesIndex,
		DocumentID:    id,
		IfSeqNo:       existing.SeqNo,
		IfPrimaryTerm: existing.PrimaryTerm,
		Refresh:       r.cfg.Refresh,
	}
	status, err := r.do(ctx, req)
	if err != nil {
		if errors.Is(err, errVersionConflict) {
			return result.Conflict[struct{}](result.MessageModified), nil
		}
		return fail[struct{}](span, err)
	}
	if status == http.StatusNotFound {
		return result.NotFound[struct{}](), nil
	}

	r.log.Debug("sales record deleted", map[string]interface{}{"id": id})
	return result.Deleted(), nil
}

// lookup is the existence check of create and delete. A missing index holds
// no records, so it reports the document as absent.
func (r *Repository) lookup(ctx context.Context, index, id string) (*mapper.Document, error) {
	doc, err := r.get(ctx, index, id)
	if errors.Is(err, ErrIndexNotFound) {
		r.log.Debug("index missing, record treated as absent", map[string]interface{}{"index": index, "id": id})
		return &mapper.Document{}, nil
	}
	return doc, err
}

func (r *Repository) readBack(ctx context.Context, span trace.Span, index, id string) (result.Result[map[string]interface{}], error) {
	doc, err := r.get(ctx, index, id)
	if err != nil {
		return fail[map[string]interface{}](span, err)
	}
	if !doc.Found {
		return result.NotFound[map[string]interface{}](), nil
	}
	return result.Found(doc.Source), nil
}

func (r *Repository) start(ctx context.Context, op, index string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "sales."+op, trace.WithAttributes(
		attribute.String("db.system", "elasticsearch"),
		attribute.String("db.elasticsearch.index", index),
	))
}

func (r *Repository) search(ctx context.Context, doc query.SearchDocument) ([]byte, error) {
	body, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	req := esapi.SearchRequest{
		Index: []string{r.cfg.SalesIndex},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, r.transport)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	if res.IsError() {
		return nil, statusError(res.StatusCode, data)
	}
	return data, nil
}

// get reads a document. A missing document is not an error; a missing index is.
func (r *Repository) get(ctx context.Context, index, id string) (*mapper.Document, error) {
	req := esapi.GetRequest{Index: index, DocumentID: id}
	res, err := req.Do(ctx, r.transport)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	if res.StatusCode == http.StatusNotFound && parseErrorBody(data).Error.Type == "" {
		return mapper.MapDocument(data)
	}
	if res.IsError() {
		return nil, statusError(res.StatusCode, data)
	}
	return mapper.MapDocument(data)
}

// do executes a write request and returns its status. A 404 delete result is
// reported as a status, not an error.
func (r *Repository) do(ctx context.Context, req esapi.Request) (int, error) {
	res, err := req.Do(ctx, r.transport)
	if err != nil {
		return 0, transportError(ctx, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, transportError(ctx, err)
	}
	if res.StatusCode == http.StatusNotFound && parseErrorBody(data).Error.Type == "" {
		return res.StatusCode, nil
	}
	if res.IsError() {
		return res.StatusCode, statusError(res.StatusCode, data)
	}
	return res.StatusCode, nil
}

func bucketResult[T any](span trace.Span, body []byte, mapFn func([]byte) ([]T, bool, error)) (result.Result[[]T], error) {
	rows, present, err := mapFn(body)
	if err != nil {
		return fail[[]T](span, err)
	}
	if !present {
		return result.NotFound[[]T](), nil
	}
	span.SetAttributes(attribute.Int("sales.buckets", len(rows)))
	return result.Found(rows), nil
}

func fail[T any](span trace.Span, err error) (result.Result[T], error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return result.Result[T]{}, err
}
