package repository

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

type fakeResponse struct {
	status int
	body   string
	err    error
}

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

// fakeTransport serves queued responses per "METHOD /path" key. The last
// queued response of a key is repeated. A "*" method matches any method.
type fakeTransport struct {
	mu       sync.Mutex
	routes   map[string][]fakeResponse
	requests []recordedRequest
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{routes: map[string][]fakeResponse{}}
}

func (f *fakeTransport) on(method, path string, status int, body string) *fakeTransport {
	key := method + " " + path
	f.routes[key] = append(f.routes[key], fakeResponse{status: status, body: body})
	return f
}

func (f *fakeTransport) fail(method, path string, err error) *fakeTransport {
	key := method + " " + path
	f.routes[key] = append(f.routes[key], fakeResponse{err: err})
	return f
}

func (f *fakeTransport) Perform(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body string
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}
	f.requests = append(f.requests, recordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Body:   body,
	})

	key := req.Method + " " + req.URL.Path
	queue, ok := f.routes[key]
	if !ok {
		key = "* " + req.URL.Path
		queue, ok = f.routes[key]
	}
	if !ok || len(queue) == 0 {
		return respond(http.StatusInternalServerError, `{"error":{"type":"unexpected_request","reason":"`+req.Method+" "+req.URL.Path+`"}}`), nil
	}

	next := queue[0]
	if len(queue) > 1 {
		f.routes[key] = queue[1:]
	}
	if next.err != nil {
		return nil, next.err
	}
	return respond(next.status, next.body), nil
}

func (f *fakeTransport) requestsTo(method, path string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedRequest
	for _, r := range f.requests {
		if (method == "*" || r.Method == method) && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}
