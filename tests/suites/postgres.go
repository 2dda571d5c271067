package suites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm/logger"

	"github.com/docker/go-connections/nat"
	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	// Migration source/driver and database driver registration
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

type PostgresContainer struct {
	testcontainers.Container
	ConnectionString string
	Host             string
	Port             string
}

func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	const port = "5432/tcp"
	env := map[string]string{
		"POSTGRES_DB":       "exchange_test",
		"POSTGRES_PASSWORD": "exchange",
		"POSTGRES_USER":     "exchange",
	}

	dbURL := func(host string, port nat.Port) string {
		return fmt.Sprintf("postgres://exchange:exchange@%s:%s/exchange_test?sslmode=disable", host, port.Port())
	}

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17.5-alpine3.21",
		ExposedPorts: []string{port},
		Cmd:          []string{"postgres", "-c", "fsync=off"},
		Env:          env,
		WaitingFor: wait.ForSQL(port, "postgres", dbURL).
			WithStartupTimeout(30 * time.Second).
			WithQuery("SELECT 1"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &PostgresContainer{
		Container:        container,
		ConnectionString: dbURL(host, mappedPort),
		Host:             host,
		Port:             mappedPort.Port(),
	}, nil
}

// RepositoryTestSuite runs repository tests against a throwaway
// postgres container. Set AutoMigrate before calling SetupSuite to
// apply the migrations directory found next to go.mod.
type RepositoryTestSuite struct {
	suite.Suite
	Container      *PostgresContainer
	DB             *gorm.DB
	SQLDB          *sql.DB
	AutoMigrate    bool
	MigrationsPath string
}

func (suite *RepositoryTestSuite) SetupSuite() {
	suite.T().Helper()

	if testing.Short() {
		suite.T().Skip("Skipping database integration tests in short mode")
	}

	if suite.MigrationsPath == "" {
		suite.MigrationsPath = suite.findMigrationsPath()
	}
	if !suite.hasMigrationsPath() {
		suite.AutoMigrate = false
	}

	suite.createContainer()
	suite.createConnections()

	if suite.AutoMigrate {
		if err := suite.RunMigrations(); err != nil {
			suite.T().Fatalf("Failed to run migrations: %v", err)
		}
	}

	suite.T().Cleanup(func() {
		suite.cleanup()
	})
}

func (suite *RepositoryTestSuite) createContainer() {
	ctx := context.Background()
	container, err := NewPostgresContainer(ctx)
	if err != nil {
		suite.T().Fatalf("Failed to create postgres container: %v", err)
	}
	suite.Container = container
}

func (suite *RepositoryTestSuite) createConnections() {
	if suite.SQLDB != nil {
		_ = suite.SQLDB.Close()
	}

	sqlDB, err := sql.Open("postgres", suite.Container.ConnectionString)
	if err != nil {
		suite.T().Fatalf("Failed to open sql connection: %v", err)
	}
	suite.SQLDB = sqlDB

	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		suite.T().Fatalf("Failed to ping database: %v", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		suite.T().Fatalf("Failed to open gorm connection: %v", err)
	}
	suite.DB = gormDB
}

// findMigrationsPath walks up from the working directory to the module
// root and returns its migrations directory.
func (suite *RepositoryTestSuite) findMigrationsPath() string {
	wd, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return filepath.Join(wd, "migrations")
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			return ""
		}
		wd = parent
	}
}

func (suite *RepositoryTestSuite) hasMigrationsPath() bool {
	if suite.MigrationsPath == "" {
		return false
	}
	_, err := os.Stat(suite.MigrationsPath)
	return err == nil
}

// TearDownTest truncates every application table so each test starts
// from an empty database.
func (suite *RepositoryTestSuite) TearDownTest() {
	suite.T().Helper()

	if suite.DB == nil {
		return
	}

	var tables []string
	suite.DB.Raw(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		AND table_type = 'BASE TABLE'
		AND table_name NOT LIKE 'pg_%'
		AND table_name <> 'schema_migrations'
	`).Scan(&tables)

	// Delete in reverse order to handle foreign keys
	for i := len(tables) - 1; i >= 0; i-- {
		suite.DB.Exec(fmt.Sprintf(`DELETE FROM %q`, tables[i]))
	}
}

func (suite *RepositoryTestSuite) cleanup() {
	ctx := context.Background()
	if suite.SQLDB != nil {
		_ = suite.SQLDB.Close()
	}
	if suite.Container != nil {
		_ = suite.Container.Terminate(ctx)
	}
}

func (suite *RepositoryTestSuite) RunMigrations() error {
	if suite.MigrationsPath == "" {
		return errors.New("migrations path not set")
	}

	sourceURL := fmt.Sprintf("file://%s", suite.MigrationsPath)
	m, err := migrate.New(sourceURL, suite.Container.ConnectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (suite *RepositoryTestSuite) BeforeTest(_, _ string) {
	if suite.DB != nil {
		suite.TearDownTest()
	}
}

func (suite *RepositoryTestSuite) AssertDBError(err error, args ...interface{}) {
	suite.Assert().Error(err, args...)
}

func (suite *RepositoryTestSuite) AssertNoDBError(err error, args ...interface{}) {
	suite.Assert().NoError(err, args...)
}
