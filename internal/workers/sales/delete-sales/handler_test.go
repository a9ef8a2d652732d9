package deletesales

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"sales-workers/internal/common/camunda/camundatest"
	"sales-workers/internal/common/logger"
	"sales-workers/internal/sales"
	"sales-workers/internal/sales/repository"
	"sales-workers/internal/sales/result"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDeleter struct {
	mock.Mock
}

func (m *MockDeleter) Delete(ctx context.Context, id string) (result.Result[struct{}], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(result.Result[struct{}]), args.Error(1)
}

type transportFunc func(*http.Request) (*http.Response, error)

func (f transportFunc) Perform(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestHandler(t *testing.T, svc Deleter) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{CustomConfig: DefaultConfig(), Service: svc, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)
	return h
}

func TestHandle_Deleted(t *testing.T) {
	svc := new(MockDeleter)
	h := newTestHandler(t, svc)
	svc.On("Delete", mock.Anything, "abc").Return(result.Deleted(), nil)

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(1, TaskType, 3, Input{ID: "abc"}))

	require.Len(t, client.Completed(), 1)
	vars := client.CompletedVariables()
	assert.Equal(t, "FOUND", vars["status"])
	assert.Equal(t, "Successfully", vars["message"])
}

func TestHandle_MissingID(t *testing.T) {
	svc := new(MockDeleter)
	h := newTestHandler(t, svc)

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(2, TaskType, 3, Input{ID: "  "}))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "SALES_VALIDATION_FAILED", client.Thrown()[0].ErrorCode)
	svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestHandle_ThroughRepository(t *testing.T) {
	var deletes int
	transport := transportFunc(func(req *http.Request) (*http.Response, error) {
		switch {
		case req.Method == http.MethodGet && req.URL.Path == "/sales_v2/_doc/abc":
			return jsonResponse(http.StatusOK, `{"_index":"sales_v2","_id":"abc","_seq_no":4,"_primary_term":1,"found":true,"_source":{"product_name":"TV"}}`), nil
		case req.Method == http.MethodDelete && req.URL.Path == "/sales_v2/_doc/abc":
			deletes++
			assert.Equal(t, "4", req.URL.Query().Get("if_seq_no"))
			return jsonResponse(http.StatusOK, `{"result":"deleted"}`), nil
		case req.Method == http.MethodGet && req.URL.Path == "/sales_v2/_doc/missing":
			return jsonResponse(http.StatusNotFound, `{"_index":"sales_v2","_id":"missing","found":false}`), nil
		}
		return jsonResponse(http.StatusInternalServerError, `{}`), nil
	})

	log := logger.NewTestLogger(t)
	repo := repository.New(transport, repository.Config{SalesIndex: "sales_v2", LookupIndex: "sales_v2"}, log)
	h := newTestHandler(t, sales.NewService(repo, log, sales.Options{}))

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(3, TaskType, 3, Input{ID: "abc"}))
	h.Handle(client, camundatest.NewJob(4, TaskType, 3, Input{ID: "missing"}))

	completed := client.Completed()
	require.Len(t, completed, 2)
	assert.Contains(t, completed[0].Variables, `"message":"Successfully"`)
	assert.Contains(t, completed[1].Variables, `"status":"NOT_FOUND"`)
	assert.Equal(t, 1, deletes)
}
