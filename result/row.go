package result

import (
	"bytes"
	"encoding/json"
)

type (
	// Field is a single column of a row
	Field struct {
		Name  string
		Value interface{}
	}

	// Row is a row materialized as an ordered mapping of column name to value.
	//
	// Values are exactly what the row set produced. No coercion is performed.
	Row []Field
)

// NewRow zips columns and values into a row. Missing values are nil.
func NewRow(columns []string, values []interface{}) Row {
	r := make(Row, 0, len(columns))
	for n, i := range columns {
		var v interface{}
		if n < len(values) {
			v = values[n]
		}
		r = append(r, Field{Name: i, Value: v})
	}
	return r
}

// Get returns the value of the first column with the given name
func (r Row) Get(name string) (interface{}, bool) {
	for _, i := range r {
		if i.Name == name {
			return i.Value, true
		}
	}
	return nil, false
}

func (r Row) Len() int {
	return len(r)
}

func (r Row) Names() []string {
	names := make([]string, 0, len(r))
	for _, i := range r {
		names = append(names, i.Name)
	}
	return names
}

func (r Row) Values() []interface{} {
	values := make([]interface{}, 0, len(r))
	for _, i := range r {
		values = append(values, i.Value)
	}
	return values
}

// Map returns the row as a map, losing column order. A later duplicate column
// name overwrites an earlier one.
func (r Row) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r))
	for _, i := range r {
		m[i.Name] = i.Value
	}
	return m
}

// MarshalJSON implements [json.Marshaler] preserving column order
func (r Row) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for n, i := range r {
		if n > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(i.Name)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		v, err := json.Marshal(i.Value)
		if err != nil {
			return nil, err
		}
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (r Row) String() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(b)
}
