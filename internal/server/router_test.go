package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"readlog/internal/auth"
	"readlog/internal/metrics"
	"readlog/internal/reconcile"
	"readlog/internal/storage"
	"readlog/internal/sync"
	"readlog/pkg/database"
)

type testServer struct {
	router http.Handler
	logs   *bytes.Buffer
	close  func()
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{Path: database.MemoryPath})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db))

	logs := &bytes.Buffer{}
	logger := NewLogger(logs, "debug", "json")

	reg := prometheus.NewRegistry()
	store := storage.NewStore(db)
	rec := reconcile.New(store,
		reconcile.WithLogger(logger),
		reconcile.WithRecorder(metrics.NewRecorder(reg)),
	)

	hash, err := bcrypt.GenerateFromPassword([]byte("owner-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	router := NewRouter(Deps{
		DB:           db,
		Store:        store,
		Reconciler:   rec,
		Hub:          sync.NewHub(logger),
		Tokens:       auth.TokenService{Secret: []byte("s"), Issuer: "readlog", Duration: time.Hour},
		PasswordHash: string(hash),
		Logger:       logger,
		Gatherer:     reg,
	})
	return testServer{router: router, logs: logs, close: func() { db.Close() }}
}

func (s testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestEndToEnd(t *testing.T) {
	s := newTestServer(t)
	defer s.close()

	w := s.do(http.MethodPost, "/readings", "", `{"title":"Dune","author":"Frank Herbert"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/login", "", `{"password":"owner-pass"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = s.do(http.MethodPost, "/readings", login.Token,
		`{"title":"Dune","author":"Frank Herbert","read_year":"2023","read_month":"January","format":"book"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/books/times-read?title=dune", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"times_read":1`)

	w = s.do(http.MethodDelete, "/readings/last", login.Token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, "/readings/last", login.Token, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `readlog_read_instances_appended_total{book_created="true"} 1`)
	assert.Contains(t, w.Body.String(), `readlog_read_instances_deleted_total{book_removed="true"} 1`)
	assert.Contains(t, w.Body.String(), `readlog_reconcile_failures_total{code="INVALID_STATE",op="delete_last"} 1`)
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", "").Code)

	w := s.do(http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tcp_clients":0`)

	s.close()
	w = s.do(http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestIDIsLogged(t *testing.T) {
	s := newTestServer(t)
	defer s.close()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Contains(t, s.logs.String(), `"request_id":"abc-123"`)

	w = s.do(http.MethodGet, "/health", "", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "text")
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	NewLogger(&buf, "", "json").Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}
