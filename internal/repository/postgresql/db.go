package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/lib/pq"                // registers the "postgres" driver

	"parkledger/internal/config"
)

// NewDB opens a pool with the driver named by cfg.DBDriver ("pgx" or
// "postgres") and checks connectivity.
func NewDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.DBDriver, cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("postgresql: open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgresql: ping database: %w", err)
	}
	return db, nil
}

// isUniqueViolation recognizes SQLSTATE 23505 from either driver. When
// constraint is non-empty the violated constraint must match too.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation" && (constraint == "" || pqErr.Constraint == constraint)
	}
	return false
}
