package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/roleplay-api/internal/api"
	"github.com/dom/roleplay-api/internal/config"
	"github.com/dom/roleplay-api/internal/mail"
	"github.com/dom/roleplay-api/internal/realtime"
	"github.com/dom/roleplay-api/internal/repository"
	repoPostgres "github.com/dom/roleplay-api/internal/repository/postgres"
	"github.com/dom/roleplay-api/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_roleplay"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(repoPostgres.Models()...); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"group_requests",
		"group_players",
		"groups",
		"tokens",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// Tx opens a transaction that is rolled back when the test ends. Code run
// against it that opens its own transactions gets savepoints instead, so
// nothing a test writes survives it. Tests that need several connections
// (concurrency) must use DB and Truncate instead.
func (tdb *TestDB) Tx(t *testing.T) *gorm.DB {
	t.Helper()

	tx := tdb.DB.Begin()
	if tx.Error != nil {
		t.Fatalf("failed to begin transaction: %v", tx.Error)
	}

	t.Cleanup(func() {
		tx.Rollback()
	})

	return tx
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0", // Random port
		Environment:        "test",
		LogLevel:           "error",
		JWTSecret:          "test-jwt-secret-key-for-testing-only",
		JWTExpirationHours: 1,
		ResetTokenTTL:      2 * time.Hour,
		ResetPasswordURL:   "http://localhost:3000/reset-password",
		MailFrom:           "no-reply@roleplay.com",
		RateLimitRequests:  1000,
		RateLimitWindow:    time.Minute,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *realtime.Hub
	Mailer   *mail.Recorder
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithConfig(t, TestConfig())
}

func NewTestServerWithConfig(t *testing.T, cfg *config.Config) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	log := zap.NewNop()

	repos := repoPostgres.NewRepositories(testDB.DB)
	hub := realtime.NewHub(log)
	go hub.Run()

	mailer := mail.NewRecorder()
	services := service.NewServices(repos, cfg, mailer, hub, log)
	router := api.NewRouter(services, hub, cfg, log)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Mailer:   mailer,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// Reset truncates every table and forgets recorded mail
func (ts *TestServer) Reset(t *testing.T) {
	t.Helper()
	ts.DB.Truncate(t)
	ts.Mailer.Reset()
}

// URL returns the full URL for a given path
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}

// WebSocketURL returns the WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return fmt.Sprintf("%s/ws?token=%s", wsURL, token)
}
