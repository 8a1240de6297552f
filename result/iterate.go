package result

import (
	"fmt"
	"reflect"
	"strings"

	"xorkevin.dev/kerrors"
)

const (
	// TagName is the struct tag naming the column of a typed row field
	TagName = "model"
)

// Key returns the logical position
func (r *Result) Key() int {
	return r.current
}

// Next moves the logical position forward by one row, stopping at the end of
// the result. The row set is not touched.
func (r *Result) Next() {
	if r.current < r.total {
		r.current++
	}
}

// Prev moves the logical position back by one row, stopping at the first row.
// The row set is not touched.
func (r *Result) Prev() {
	if r.current > 0 {
		r.current--
	}
}

// Rewind moves the logical position to the first row. The row set is
// repositioned lazily by the next [Result.Current].
func (r *Result) Rewind() {
	r.current = 0
}

// Valid reports whether the logical position is at a row
func (r *Result) Valid() bool {
	return r.OffsetExists(r.current)
}

// OffsetExists reports whether offset is a row of the result
func (r *Result) OffsetExists(offset int) bool {
	return offset >= 0 && offset < r.total
}

// Each calls fn for every row from the first, stopping at the first error
func (r *Result) Each(fn func(offset int, row interface{}) error) error {
	for r.Rewind(); r.Valid(); r.Next() {
		v, ok := r.Current()
		if !ok {
			if err := r.Err(); err != nil {
				return err
			}
			return kerrors.WithKind(nil, ErrExhausted, fmt.Sprintf("No row at %d", r.current))
		}
		if err := fn(r.current, v); err != nil {
			return err
		}
	}
	return nil
}

// All materializes every row of the result
func (r *Result) All() ([]interface{}, error) {
	rows := make([]interface{}, 0, r.total)
	if err := r.Each(func(_ int, row interface{}) error {
		rows = append(rows, row)
		return nil
	}); err != nil {
		return nil, err
	}
	return rows, nil
}

// Get returns the named column of the row at the logical position. The
// logical position does not change, so a following [Result.Current] reads the
// same row again.
func (r *Result) Get(column string) (interface{}, bool) {
	v, ok := r.Current()
	if !ok {
		return nil, false
	}
	return columnValue(v, column)
}

// Column returns the named column of every row
func (r *Result) Column(column string) ([]interface{}, error) {
	values := make([]interface{}, 0, r.total)
	if err := r.Each(func(offset int, row interface{}) error {
		v, ok := columnValue(row, column)
		if !ok {
			return kerrors.WithKind(nil, ErrConfig, fmt.Sprintf("Row %d has no column %s", offset, column))
		}
		values = append(values, v)
		return nil
	}); err != nil {
		return nil, err
	}
	return values, nil
}

// Index returns every row keyed by the value of the named column. Later rows
// replace earlier rows with the same key.
func (r *Result) Index(column string) (map[interface{}]interface{}, error) {
	rows := make(map[interface{}]interface{}, r.total)
	if err := r.Each(func(offset int, row interface{}) error {
		k, ok := columnValue(row, column)
		if !ok {
			return kerrors.WithKind(nil, ErrConfig, fmt.Sprintf("Row %d has no column %s", offset, column))
		}
		if k != nil && !reflect.ValueOf(k).Comparable() {
			return kerrors.WithKind(nil, ErrConfig, fmt.Sprintf("Column %s of row %d is not a valid key", column, offset))
		}
		rows[k] = row
		return nil
	}); err != nil {
		return nil, err
	}
	return rows, nil
}

// Object returns [Result.Current] as a *T for results of mode [TypedOf] T
func Object[T any](r *Result) (*T, bool) {
	v, ok := r.Current()
	if !ok {
		return nil, false
	}
	m, ok := v.(*T)
	return m, ok
}

func columnValue(row interface{}, column string) (interface{}, bool) {
	if m, ok := row.(Row); ok {
		return m.Get(column)
	}
	v := reflect.ValueOf(row)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if strings.EqualFold(ColumnName(f), column) {
			return v.Field(i).Interface(), true
		}
	}
	return nil, false
}

// ColumnName returns the column a struct field is hydrated from: the text of
// its model tag before the first comma, or the field name if untagged
func ColumnName(f reflect.StructField) string {
	tag, ok := f.Tag.Lookup(TagName)
	if !ok {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
