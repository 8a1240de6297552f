package sqldb

import (
	"context"
	"database/sql"
)

type (
	// Executor is the interface of the subset of methods shared by [sql.DB] and [sql.Tx]
	Executor interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...interface{}) Row
	}

	// Result is [sql.Result]
	Result = sql.Result

	// Rows is the interface boundary of [sql.Rows]
	Rows interface {
		Columns() ([]string, error)
		Next() bool
		Scan(dest ...interface{}) error
		Err() error
		Close() error
	}

	// Row is the interface boundary of [sql.Row]
	Row interface {
		Scan(dest ...interface{}) error
		Err() error
	}

	// SQLExecutor is implemented by [sql.DB], [sql.Tx], and [sql.Conn]
	SQLExecutor interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	sqlExecutor struct {
		d SQLExecutor
	}
)

// Wrap adapts a [database/sql] executor to an [Executor]
func Wrap(d SQLExecutor) Executor {
	return &sqlExecutor{
		d: d,
	}
}

func (e *sqlExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return e.d.ExecContext(ctx, query, args...)
}

func (e *sqlExecutor) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := e.d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (e *sqlExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) Row {
	return e.d.QueryRowContext(ctx, query, args...)
}
