package sqldb

import (
	"context"

	"xorkevin.dev/forgeresult/result"
	"xorkevin.dev/forgeresult/rowset"
	"xorkevin.dev/kerrors"
	"xorkevin.dev/klog"
)

type (
	// Querier executes queries and returns their rows as a [result.Result]
	Querier struct {
		d   Executor
		log *klog.LevelLogger
	}
)

// New creates a new [Querier]
func New(d Executor, log klog.Logger) *Querier {
	return &Querier{
		d:   d,
		log: klog.NewLevelLogger(log),
	}
}

// Query executes query and buffers its rows into a result materialized with
// mode. The driver rows are always closed before Query returns. The caller
// must close the result.
func (q *Querier) Query(ctx context.Context, mode result.Mode, query string, args ...interface{}) (*result.Result, error) {
	rows, err := q.d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, kerrors.WithMsg(err, "Failed to execute query")
	}
	buf, err := rowset.Load(rows)
	if err != nil {
		return nil, kerrors.WithMsg(err, "Failed to read query rows")
	}
	q.log.Debug(ctx, "Buffered query result",
		klog.AAny("rows", buf.NumRows()),
		klog.AAny("columns", buf.Columns()),
		klog.AString("mode", mode.String()),
	)
	return result.New(buf, mode), nil
}

// Exec executes a query that returns no rows
func (q *Querier) Exec(ctx context.Context, query string, args ...interface{}) (Result, error) {
	r, err := q.d.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, kerrors.WithMsg(err, "Failed to execute statement")
	}
	return r, nil
}
