// Package storage persists members, events, RSVPs and ride shares with sqlx.
// Queries are written with '?' placeholders and rebound for the driver.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/m3rciful/teambot/core/logger"
	"github.com/m3rciful/teambot/internal/domain"
)

// Storage groups the repositories sharing one connection pool.
type Storage struct {
	db *sqlx.DB

	Users  *Users
	Events *Events
	Polls  *Polls
	Rides  *Rides
}

// New wires the repositories over db.
func New(db *sqlx.DB) *Storage {
	return &Storage{
		db:     db,
		Users:  &Users{db: db},
		Events: &Events{db: db},
		Polls:  &Polls{db: db},
		Rides:  &Rides{db: db},
	}
}

// Close closes the pool.
func (s *Storage) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// mapError translates driver errors into domain sentinels.
func mapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func affected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

// forUpdate locks selected rows on drivers that support row locks.
func forUpdate(q sqlx.ExtContext) string {
	if q.DriverName() == "postgres" {
		return " FOR UPDATE"
	}
	return ""
}

func withTx(ctx context.Context, db *sqlx.DB, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.LogEvent(ctx, logger.DB, slog.LevelWarn, "tx.rollback",
				slog.String("op", op),
				slog.String("err", rbErr.Error()),
			)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}
