package main

import (
	"database/sql"
	"database/sql/driver"
	"net/http"
	"net/http/httptest"
	"testing"

	"agrimarket-be/internal/config"
	"agrimarket-be/internal/events"
	"agrimarket-be/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppPort:               "8080",
		AppEnv:                "test",
		JWTSecret:             "secret",
		PublicBaseURL:         "http://localhost:8080/api",
		CORSOrigin:            "http://localhost:3000",
		ImageFetchConcurrency: 2,
	}
}

func TestNewServer(t *testing.T) {
	db, err := sql.Open("mock_driver_main", "")
	require.NoError(t, err)
	defer db.Close()

	router := newServer(testConfig(), db, events.NopPublisher{}, middleware.NewRateLimiter(""))
	require.NotNil(t, router)

	t.Run("Health Check", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "OK")
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("CORS preflight", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/crop-posts", nil))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Invalid token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/crop-posts", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Farmer route needs a caller", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/crop-posts/user/my-posts", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

// --- Mock Driver for Testing ---
type mockDriver struct{}

func (m *mockDriver) Open(name string) (driver.Conn, error)         { return &mockConn{}, nil }
func (c *mockConn) Prepare(query string) (driver.Stmt, error)       { return &mockStmt{}, nil }
func (c *mockConn) Close() error                                    { return nil }
func (c *mockConn) Begin() (driver.Tx, error)                       { return nil, nil }
func (s *mockStmt) Close() error                                    { return nil }
func (s *mockStmt) NumInput() int                                   { return 0 }
func (s *mockStmt) Exec(args []driver.Value) (driver.Result, error) { return nil, nil }
func (s *mockStmt) Query(args []driver.Value) (driver.Rows, error)  { return nil, nil }

type mockConn struct{}
type mockStmt struct{}

func init() {
	sql.Register("mock_driver_main", &mockDriver{})
}

func TestRun(t *testing.T) {
	origInitDB := initDBFunc
	defer func() { initDBFunc = origInitDB }()
	initDBFunc = func(cfg *config.Config) *sql.DB {
		db, _ := sql.Open("mock_driver_main", "")
		return db
	}

	var gotAddr string
	origStartServer := startServerFunc
	defer func() { startServerFunc = origStartServer }()
	startServerFunc = func(addr string, handler http.Handler) error {
		gotAddr = addr
		return nil
	}

	t.Setenv("APP_PORT", "8080")
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "user")
	t.Setenv("DB_PASSWORD", "pass")
	t.Setenv("DB_NAME", "db")
	t.Setenv("KAFKA_BROKER", "")

	assert.NoError(t, run())
	assert.Equal(t, ":8080", gotAddr)
}
