package result

import (
	"fmt"
	"reflect"
	"runtime"

	"xorkevin.dev/kerrors"
)

type (
	// RowSet is a positionable handle to the rows produced by a query.
	//
	// A fetch materializes the row under the handle and advances the handle by
	// one row.
	RowSet interface {
		NumRows() int
		DataSeek(offset int) error
		FetchAssoc() (Row, error)
		FetchObject(typ reflect.Type, args []interface{}) (interface{}, error)
		Free() error
	}

	// Result is a cursor over a row set supporting both random access and
	// forward iteration.
	//
	// The row count is captured once at construction. Later changes to the
	// underlying store are not observed.
	//
	// A Result owns its row set and must be closed. It is not safe for
	// concurrent use.
	Result struct {
		rows     RowSet
		mode     Mode
		total    int
		current  int
		internal int
		err      error
		closed   bool
	}
)

// New creates a result positioned at the first row
func New(rows RowSet, mode Mode) *Result {
	return NewAt(rows, mode, 0)
}

// NewAt creates a result positioned at offset, clamped to [0, count]. The row
// set is assumed to be parked at its first row.
func NewAt(rows RowSet, mode Mode, offset int) *Result {
	total := rows.NumRows()
	if total < 0 {
		total = 0
	}
	if offset < 0 {
		offset = 0
	} else if offset > total {
		offset = total
	}
	r := &Result{
		rows:     rows,
		mode:     mode,
		total:    total,
		current:  offset,
		internal: 0,
	}
	runtime.SetFinalizer(r, func(r *Result) {
		_ = r.Close()
	})
	return r
}

// Count returns the number of rows
func (r *Result) Count() int {
	return r.total
}

// Columns returns the column names of the row set if it reports them
func (r *Result) Columns() []string {
	c, ok := r.rows.(interface{ Columns() []string })
	if !ok {
		return nil
	}
	return c.Columns()
}

// Mode returns the materialization mode of the result
func (r *Result) Mode() Mode {
	return r.mode
}

// Seek positions the result at offset. Seek returns false, leaving the
// position unchanged, if offset is out of range or the row set fails to
// reposition.
func (r *Result) Seek(offset int) bool {
	if !r.OffsetExists(offset) {
		return false
	}
	if r.closed {
		r.err = kerrors.WithKind(nil, ErrExhausted, "Result is closed")
		return false
	}
	if err := r.rows.DataSeek(offset); err != nil {
		r.err = kerrors.WithKind(err, ErrReposition, fmt.Sprintf("Failed to seek to row %d", offset))
		return false
	}
	r.current = offset
	r.internal = offset
	return true
}

// Current materializes the row at the row set's position, repositioning the
// row set to the logical position first if they differ. Current returns false
// at the end of the result, or if the row could not be read, in which case
// [Result.Err] reports why.
//
// The row set advances after every fetch, so repeated calls without moving
// the logical position return successive rows. Callers call Current once per
// position and then move with [Result.Next] or [Result.Seek].
func (r *Result) Current() (interface{}, bool) {
	if r.current >= r.total {
		return nil, false
	}
	if r.closed {
		r.err = kerrors.WithKind(nil, ErrExhausted, "Result is closed")
		return nil, false
	}
	if r.current != r.internal && !r.Seek(r.current) {
		return nil, false
	}
	v, err := r.fetch()
	if err != nil {
		// the row set position is unknown after a failed fetch
		r.internal = -1
		r.err = err
		return nil, false
	}
	r.internal++
	return v, true
}

func (r *Result) fetch() (interface{}, error) {
	if r.mode.IsTyped() {
		v, err := r.rows.FetchObject(r.mode.typ, r.mode.args)
		if err != nil {
			return nil, kerrors.WithMsg(err, fmt.Sprintf("Failed to fetch row %d as %s", r.current, r.mode))
		}
		return v, nil
	}
	row, err := r.rows.FetchAssoc()
	if err != nil {
		return nil, kerrors.WithMsg(err, fmt.Sprintf("Failed to fetch row %d", r.current))
	}
	return row, nil
}

// Err returns the most recent failure reading from the row set. Reaching the
// end of the result and seeking out of range are not failures.
func (r *Result) Err() error {
	return r.err
}

// Close frees the row set. Closing more than once is a no-op.
func (r *Result) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	runtime.SetFinalizer(r, nil)
	if err := r.rows.Free(); err != nil {
		return kerrors.WithMsg(err, "Failed to free row set")
	}
	return nil
}
