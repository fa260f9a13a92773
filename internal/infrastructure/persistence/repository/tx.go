package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/pkg/database"
)

// DBTX is the subset of sql.DB/sql.Tx the repositories use
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

// withTx derives a context carrying an open transaction
func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// dbtx returns the transaction carried by ctx, or the bare connection pool
func dbtx(ctx context.Context, db *database.DB) DBTX {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.DB
}

// TxManager implements port.TransactionManager; repository calls made with
// the context passed to fn join the transaction.
type TxManager struct {
	db     *database.DB
	logger *zap.Logger
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *database.DB, logger *zap.Logger) *TxManager {
	return &TxManager{db: db, logger: logger}
}

// WithTransaction runs fn inside a transaction
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(withTx(ctx, tx))
	})
}

// IsUniqueViolation reports whether err is a sqlite uniqueness-constraint
// failure. Orchestrators use it to detect a lost allocation race behind the
// (project, class, number) unique index.
func (m *TxManager) IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrConstraint &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}
