package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	config "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Config"
	logger "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Logger"
)

// Container manages dependencies and their lifecycle
type Container struct {
	config *config.Config
	logger *logger.Logger
	db     *sql.DB

	// Cleanup functions, run in reverse order on shutdown
	cleanupFuncs []func() error
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	log := logger.NewLogger(&cfg.Logging)

	return &Container{
		config: cfg,
		logger: log,
	}, nil
}

// ConnectDatabase opens the Postgres pool and verifies it with a ping
func (c *Container) ConnectDatabase(ctx context.Context) error {
	db, err := sql.Open("postgres", c.config.GetDatabaseDSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(c.config.Database.MaxConns)
	db.SetMaxIdleConns(c.config.Database.MinConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.db = db
	c.registerCleanup(db.Close)
	c.logger.Info("database connected")
	return nil
}

// Shutdown runs registered cleanup functions in reverse order
func (c *Container) Shutdown() {
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](); err != nil {
			c.logger.ErrorWithError(err, "cleanup failed")
		}
	}
}

func (c *Container) registerCleanup(fn func() error) {
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}

// RegisterCleanup adds a cleanup function run at shutdown
func (c *Container) RegisterCleanup(fn func() error) {
	c.registerCleanup(fn)
}

// GetConfig returns the loaded configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// GetDB returns the database pool; nil until ConnectDatabase succeeds
func (c *Container) GetDB() *sql.DB {
	return c.db
}
