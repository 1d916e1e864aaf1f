package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/abpira/accounts/internal/audit"
	"github.com/abpira/accounts/shared/models"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// postgres error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const uniqueViolation = "23505"

// querier is the subset of *sql.DB and *sql.Tx the store issues statements through.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore implements Store against PostgreSQL. It also stamps the audit
// columns: created_* on insert and updated_* on update, using the auditor on
// the context.
type PostgresStore struct {
	db  *sql.DB
	q   querier
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:  db,
		q:   db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the customer and accounts tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&PostgresStore{db: s.db, q: tx, now: s.now}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Failed to roll back transaction: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Health pings the database and reports pool statistics.
func (s *PostgresStore) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)
	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	return stats
}

func (s *PostgresStore) stampCreated(ctx context.Context, a *models.Audit) {
	a.CreatedAt = s.now()
	a.CreatedBy = audit.Auditor(ctx)
}

func (s *PostgresStore) stampUpdated(ctx context.Context, a *models.Audit) {
	now := s.now()
	a.UpdatedAt = &now
	a.UpdatedBy = audit.Auditor(ctx)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// auditColumns receives the nullable update columns during a scan.
type auditColumns struct {
	updatedAt sql.NullTime
	updatedBy sql.NullString
}

func (c auditColumns) apply(a *models.Audit) {
	if c.updatedAt.Valid {
		t := c.updatedAt.Time
		a.UpdatedAt = &t
	}
	if c.updatedBy.Valid {
		a.UpdatedBy = c.updatedBy.String
	}
}
