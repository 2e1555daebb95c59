package app

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/userapi/internal/observability"
	"github.com/odyssey-erp/userapi/internal/platform/lock"
	"github.com/odyssey-erp/userapi/internal/users"
)

type testServer struct {
	handler http.Handler
	store   *users.FileStore
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, cfg *Config) testServer {
	t.Helper()
	if cfg == nil {
		cfg = &Config{StoreDriver: StoreFile, LockDriver: LockMemory}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()
	store := users.NewFileStore(filepath.Join(t.TempDir(), "user.json"))
	service := users.NewService(users.Observe(store, metrics), lock.NewMemory(), logger)
	return testServer{
		handler: NewRouter(RouterParams{
			Logger:       logger,
			Config:       cfg,
			UsersHandler: users.NewHandler(logger, service),
			Metrics:      metrics,
		}),
		store:   store,
		metrics: metrics,
	}
}

func (s testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func TestRouterScenario(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := srv.do(t, http.MethodPost, "/user", `{"name":"Ana","age":30,"email":"a@x.com"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":1,"name":"Ana","age":30,"email":"a@x.com"}`, rr.Body.String())

	rr = srv.do(t, http.MethodPost, "/user", `{"name":"Ana","age":30,"email":"a@x.com"}`)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = srv.do(t, http.MethodPatch, "/user/1", `{"age":31}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":1,"name":"Ana","age":31,"email":"a@x.com"}`, rr.Body.String())

	rr = srv.do(t, http.MethodDelete, "/user/1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = srv.do(t, http.MethodGet, "/user/1", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = srv.do(t, http.MethodGet, "/user", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestRouterRoutingTable(t *testing.T) {
	srv := newTestServer(t, nil)

	const (
		notFound   = `{"message":"Not Found"}`
		notAllowed = `{"message":"Method Not Allowed"}`
	)
	cases := []struct {
		method string
		target string
		want   int
		body   string
	}{
		{http.MethodGet, "/user", http.StatusOK, `[]`},
		{http.MethodGet, "/user/", http.StatusOK, `[]`},
		{http.MethodGet, "//user//", http.StatusOK, `[]`},
		{http.MethodPut, "/user", http.StatusMethodNotAllowed, notAllowed},
		{http.MethodDelete, "/user", http.StatusMethodNotAllowed, notAllowed},
		{http.MethodPost, "/user/1", http.StatusMethodNotAllowed, notAllowed},
		{http.MethodPut, "/user/1", http.StatusMethodNotAllowed, notAllowed},
		{http.MethodGet, "/user/1/orders", http.StatusNotFound, notFound},
		{http.MethodGet, "/users", http.StatusNotFound, notFound},
		{http.MethodGet, "/nope", http.StatusNotFound, notFound},
		{http.MethodGet, "/", http.StatusNotFound, notFound},
		{http.MethodGet, "/account/1", http.StatusNotFound, notFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			rr := srv.do(t, tc.method, tc.target, "")
			assert.Equal(t, tc.want, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.body, rr.Body.String())
		})
	}
}

func TestRouterDoubleSlashReachesRecord(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := srv.do(t, http.MethodPost, "/user", `{"name":"Ana","age":30,"email":"a@x.com"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = srv.do(t, http.MethodGet, "/user//1/", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := srv.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	srv.do(t, http.MethodGet, "/user", "")
	rr = srv.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `userapi_http_requests_total{code="200",route="/user`)
	assert.Contains(t, body, `userapi_store_operations_total{op="read_all",result="ok"}`)
}

func TestRouterSetsSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := srv.do(t, http.MethodGet, "/user", "")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestRouterRateLimit(t *testing.T) {
	srv := newTestServer(t, &Config{StoreDriver: StoreFile, LockDriver: LockMemory, RateLimit: 2})

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/user", "").Code)
	}
	rr := srv.do(t, http.MethodGet, "/user", "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"message":"Too Many Requests"}`, rr.Body.String())

	metrics := httptest.NewRecorder()
	srv.metrics.Handler().ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metrics.Body.String(), `userapi_http_requests_total{code="429"`)
}

func TestRouterCorruptStoreIs500(t *testing.T) {
	srv := newTestServer(t, nil)
	require.NoError(t, writeFile(srv.store.Path(), "not json"))

	rr := srv.do(t, http.MethodGet, "/user", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, rr.Body.String())
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := requestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/user", nil))
	assert.Contains(t, buf.String(), "status=202")
	assert.Contains(t, buf.String(), "path=/user")
}
