// Package sqlite implements the persistence repositories on SQLite through the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"time"

	"github.com/example/roombot/internal/persistence"
	"github.com/example/roombot/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations exposes the embedded schema files.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Storage bundles the SQLite-backed repositories over one connection pool.
type Storage struct {
	*RoomRepository
	*BookingRepository
	*AuditRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

var (
	_ persistence.RoomRepository    = (*Storage)(nil)
	_ persistence.BookingRepository = (*Storage)(nil)
	_ persistence.AuditRepository   = (*Storage)(nil)
)

// Open connects to the database at dsn with the default settings.
func Open(dsn string, logger *slog.Logger) (*Storage, error) {
	return OpenWithConfig(migration.DefaultSQLiteConfig(dsn), logger)
}

// OpenWithConfig connects using an explicit configuration.
func OpenWithConfig(config migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}

	retry := NewRetryHelper(DefaultRetryConfig())
	return &Storage{
		RoomRepository:    NewRoomRepository(pool, retry),
		BookingRepository: NewBookingRepository(pool, retry),
		AuditRepository:   NewAuditRepository(pool, retry),
		pool:              pool,
		logger:            logger,
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewManager(
		migration.NewScanner(Migrations(), "."),
		migration.NewSQLiteExecutor(s.pool.DB()),
		s.logger,
	)
	return manager.RunMigrations(ctx)
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
