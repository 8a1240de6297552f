package sqldb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"xorkevin.dev/forgeresult/result"
	"xorkevin.dev/klog"
)

type (
	fakeExecutor struct {
		rows     *fakeRows
		queryErr error
		execErr  error
		queries  []string
		args     [][]interface{}
	}

	fakeRows struct {
		columns []string
		data    [][]interface{}
		pos     int
		scanErr error
		closed  int
	}

	fakeResult struct {
		affected int64
	}

	user struct {
		Userid   string `model:"userid,VARCHAR(31) PRIMARY KEY"`
		Username string `model:"username,VARCHAR(255) NOT NULL UNIQUE"`
	}
)

func (e *fakeExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	e.queries = append(e.queries, query)
	e.args = append(e.args, args)
	if e.execErr != nil {
		return nil, e.execErr
	}
	return fakeResult{affected: 1}, nil
}

func (e *fakeExecutor) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	e.queries = append(e.queries, query)
	e.args = append(e.args, args)
	if e.queryErr != nil {
		return nil, e.queryErr
	}
	return e.rows, nil
}

func (e *fakeExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) Row {
	return nil
}

func (r *fakeRows) Columns() ([]string, error) {
	return r.columns, nil
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	for n, i := range r.data[r.pos-1] {
		*dest[n].(*interface{}) = i
	}
	return nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	r.closed++
	return nil
}

func (r fakeResult) LastInsertId() (int64, error) {
	return 0, errors.New("not supported")
}

func (r fakeResult) RowsAffected() (int64, error) {
	return r.affected, nil
}

func newUserRows() *fakeRows {
	return &fakeRows{
		columns: []string{"userid", "username"},
		data: [][]interface{}{
			{"u1", []byte("zach")},
			{"u2", []byte("kevin")},
		},
	}
}

func TestQuerier(t *testing.T) {
	t.Parallel()

	t.Run("buffers rows into a result", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		rows := newUserRows()
		d := &fakeExecutor{
			rows: rows,
		}
		q := New(d, klog.Discard{})
		res, err := q.Query(context.Background(), result.TypedOf[user](), "SELECT userid, username FROM users WHERE userid > $1;", "u0")
		assert.NoError(err)
		defer func() {
			assert.NoError(res.Close())
		}()

		assert.Equal(1, rows.closed)
		assert.Equal([]string{"SELECT userid, username FROM users WHERE userid > $1;"}, d.queries)
		assert.Equal([][]interface{}{{"u0"}}, d.args)
		assert.Equal(2, res.Count())

		assert.True(res.Seek(1))
		m, ok := result.Object[user](res)
		assert.True(ok)
		assert.Equal(&user{
			Userid:   "u2",
			Username: "kevin",
		}, m)
	})

	t.Run("fails on query", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		queryErr := errors.New("syntax error")
		q := New(&fakeExecutor{
			queryErr: queryErr,
		}, klog.Discard{})
		_, err := q.Query(context.Background(), result.Assoc(), "SELEC 1;")
		assert.ErrorIs(err, queryErr)
	})

	t.Run("closes rows on scan failure", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		rows := newUserRows()
		scanErr := errors.New("bad column")
		rows.scanErr = scanErr
		q := New(&fakeExecutor{
			rows: rows,
		}, klog.Discard{})
		_, err := q.Query(context.Background(), result.Assoc(), "SELECT userid, username FROM users;")
		assert.ErrorIs(err, scanErr)
		assert.Equal(1, rows.closed)
	})

	t.Run("executes statements", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		d := &fakeExecutor{}
		q := New(d, klog.Discard{})
		r, err := q.Exec(context.Background(), "DELETE FROM users WHERE userid = $1;", "u1")
		assert.NoError(err)
		n, err := r.RowsAffected()
		assert.NoError(err)
		assert.Equal(int64(1), n)

		execErr := errors.New("readonly")
		d.execErr = execErr
		_, err = q.Exec(context.Background(), "DELETE FROM users;")
		assert.ErrorIs(err, execErr)
	})
}
