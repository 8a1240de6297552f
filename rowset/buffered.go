package rowset

import (
	"errors"
	"fmt"
	"reflect"

	"xorkevin.dev/forgeresult/result"
	"xorkevin.dev/kerrors"
)

type (
	// Source is a forward only stream of rows such as [database/sql.Rows]
	Source interface {
		Columns() ([]string, error)
		Next() bool
		Scan(dest ...interface{}) error
		Err() error
		Close() error
	}

	// Buffered is a row set held entirely in memory
	Buffered struct {
		columns []string
		data    [][]interface{}
		pos     int
		freed   bool
	}
)

var _ result.RowSet = (*Buffered)(nil)

// NewBuffered creates a row set over data, where each element of data holds
// the values of one row in column order
func NewBuffered(columns []string, data [][]interface{}) *Buffered {
	return &Buffered{
		columns: columns,
		data:    data,
	}
}

// Load reads every row of src into a new buffer and closes src
func Load(src Source) (_ *Buffered, retErr error) {
	defer func() {
		if err := src.Close(); err != nil {
			retErr = errors.Join(retErr, kerrors.WithMsg(err, "Failed to close rows"))
		}
	}()
	columns, err := src.Columns()
	if err != nil {
		return nil, kerrors.WithMsg(err, "Failed to read columns")
	}
	var data [][]interface{}
	for src.Next() {
		values := make([]interface{}, len(columns))
		dest := make([]interface{}, len(columns))
		for n := range values {
			dest[n] = &values[n]
		}
		if err := src.Scan(dest...); err != nil {
			return nil, kerrors.WithMsg(err, fmt.Sprintf("Failed to scan row %d", len(data)))
		}
		data = append(data, values)
	}
	if err := src.Err(); err != nil {
		return nil, kerrors.WithMsg(err, "Failed reading rows")
	}
	return NewBuffered(columns, data), nil
}

// Columns returns the column names
func (b *Buffered) Columns() []string {
	return b.columns
}

// NumRows returns the number of buffered rows
func (b *Buffered) NumRows() int {
	return len(b.data)
}

// DataSeek positions the buffer at offset
func (b *Buffered) DataSeek(offset int) error {
	if b.freed {
		return kerrors.WithKind(nil, result.ErrExhausted, "Row set freed")
	}
	if offset < 0 || offset >= len(b.data) {
		return kerrors.WithKind(nil, result.ErrOutOfRange, fmt.Sprintf("Offset %d out of range of %d rows", offset, len(b.data)))
	}
	b.pos = offset
	return nil
}

// FetchAssoc returns the row at the position and advances by one row
func (b *Buffered) FetchAssoc() (result.Row, error) {
	if b.freed {
		return nil, kerrors.WithKind(nil, result.ErrExhausted, "Row set freed")
	}
	if b.pos >= len(b.data) {
		return nil, kerrors.WithKind(nil, result.ErrExhausted, "No rows remaining")
	}
	row := result.NewRow(b.columns, b.data[b.pos])
	b.pos++
	return row, nil
}

// FetchObject decodes the row at the position into a new value of typ and
// advances by one row
func (b *Buffered) FetchObject(typ reflect.Type, args []interface{}) (interface{}, error) {
	row, err := b.FetchAssoc()
	if err != nil {
		return nil, err
	}
	return decodeObject(row, typ, args)
}

// Free releases the buffered rows
func (b *Buffered) Free() error {
	b.freed = true
	b.data = nil
	return nil
}
