package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nico/impostor-party-server/internal/api"
	"github.com/nico/impostor-party-server/internal/config"
	"github.com/nico/impostor-party-server/internal/domain"
	"github.com/nico/impostor-party-server/internal/game"
	"github.com/nico/impostor-party-server/internal/push"
	"github.com/nico/impostor-party-server/internal/repository"
	repoPostgres "github.com/nico/impostor-party-server/internal/repository/postgres"
	"github.com/nico/impostor-party-server/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AdminPassword is the plaintext operator password used by test servers.
const AdminPassword = "test-admin-password"

// TestDB manages a testcontainers PostgreSQL instance.
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_impostor_party"),
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
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&domain.Word{},
		&domain.ThemeMode{},
	)
	if err != nil {
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

// Cleanup terminates the container.
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation.
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	for _, table := range []string{"theme_modes", "words"} {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash admin password: %v", err)
	}

	return &config.Config{
		Port:                   "0",
		Environment:            "test",
		SessionSecret:          "test-session-secret-key-for-testing-only",
		SessionExpirationHours: 1,
		AdminPasswordHash:      string(hash),
		RoundCountdown:         150 * time.Millisecond, // fast countdown for tests
		PresenceTimeout:        50 * time.Second,
		RoomIdleTimeout:        15 * time.Minute,
	}
}

// EngineConfig mirrors TestConfig's timings for direct registry tests.
func EngineConfig(cfg *config.Config) game.Config {
	return game.Config{
		CountdownDelay:  cfg.RoundCountdown,
		PresenceTimeout: cfg.PresenceTimeout,
		RoomIdleTimeout: cfg.RoomIdleTimeout,
		SweepInterval:   time.Hour, // tests sweep explicitly
	}
}

// TestServer holds all components for integration testing.
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Registry *game.Registry
	Hub      *push.Hub
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig(t)

	repos := repoPostgres.NewRepositories(testDB.DB)
	registry := game.NewRegistry(EngineConfig(cfg))
	hub := push.NewHub()
	services := service.NewServices(repos, registry, hub, cfg)
	router := api.NewRouter(services, hub, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Registry: registry,
		Hub:      hub,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL.
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path.
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}
