// Package postgresdb wraps the direct connection to the project database.
// Statements are executed one per transaction so that a failed statement
// rolls back alone and the connection stays usable for the next one.
package postgresdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/lmkadmin/internal/logger"
)

// PostgresDB is a single connection to the project database.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

// New opens the database with the given driver ("pgx" or "postgres") and
// checks that it is reachable within connectionTimeout. The pool is limited
// to a single connection.
func New(
	ctx context.Context,
	driver string,
	databaseDSN string,
	connectionTimeout time.Duration,
) (*PostgresDB, error) {
	database, err := sql.Open(driver, databaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with driver %q: %w", driver, err)
	}
	database.SetMaxOpenConns(1)

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := result.Ping(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return result, nil
}

// ExecInTransaction runs statement in its own transaction. When the statement
// fails the transaction is rolled back and the statement's error is returned.
func (db *PostgresDB) ExecInTransaction(ctx context.Context, statement string) error {
	transaction, err := db.BeginTransaction(ctx)
	if err != nil {
		return err
	}

	if _, err := transaction.ExecContext(ctx, statement); err != nil {
		if rollbackErr := db.RollbackTransaction(transaction); rollbackErr != nil {
			logger.Log.Debugln("rollback failed:", rollbackErr)
		}
		return err
	}

	return db.CommitTransaction(transaction)
}

// ApplyMigrations applies the pending goose migrations found in dir.
func (db *PostgresDB) ApplyMigrations(ctx context.Context, dir string) error {
	goose.SetLogger(logger.GooseAdapter{})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.UpContext(ctx, db.database, dir); err != nil {
		return fmt.Errorf("error while `goose.UpContext()` calling: %w", err)
	}

	return nil
}

// CommitTransaction commits the given SQL transaction.
// Returns an error if the commit operation fails.
func (db *PostgresDB) CommitTransaction(transaction *sql.Tx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred while committing transaction: %v", r)
		}
	}()

	return transaction.Commit()
}

// RollbackTransaction rolls back the given SQL transaction.
func (db *PostgresDB) RollbackTransaction(transaction *sql.Tx) error {
	return transaction.Rollback()
}

// BeginTransaction starts a new SQL transaction and returns it.
// The caller is responsible for committing or rolling it back.
func (db *PostgresDB) BeginTransaction(ctx context.Context) (*sql.Tx, error) {
	return db.database.BeginTx(ctx, nil)
}

// Ping checks the connection, bounded by the connection timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the connection.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}
