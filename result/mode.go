package result

import (
	"reflect"
)

type (
	modeKind int

	// Mode selects how rows of a result are materialized. It is fixed when a
	// result is constructed.
	Mode struct {
		kind modeKind
		typ  reflect.Type
		args []interface{}
	}

	// Constructor is implemented by typed row types that require construction
	// after their fields have been hydrated from a row
	Constructor interface {
		Construct(args ...interface{}) error
	}
)

const (
	modeAssoc modeKind = iota
	modeTyped
)

// Assoc materializes rows as a [Row]
func Assoc() Mode {
	return Mode{
		kind: modeAssoc,
	}
}

// Typed materializes rows as a new *T for the struct type T described by typ.
// A pointer type is dereferenced once. args are passed to
// [Constructor.Construct] after the fields are hydrated.
//
// The type is not validated here. Row sets report an invalid type as
// [ErrConfig] on fetch.
func Typed(typ reflect.Type, args ...interface{}) Mode {
	if typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return Mode{
		kind: modeTyped,
		typ:  typ,
		args: args,
	}
}

// TypedOf is [Typed] for the type parameter T
func TypedOf[T any](args ...interface{}) Mode {
	return Typed(reflect.TypeOf((*T)(nil)).Elem(), args...)
}

// IsTyped reports whether rows are materialized as typed objects
func (m Mode) IsTyped() bool {
	return m.kind == modeTyped
}

// Type returns the row type of a typed mode, and nil otherwise
func (m Mode) Type() reflect.Type {
	return m.typ
}

// Args returns the constructor args of a typed mode
func (m Mode) Args() []interface{} {
	return m.args
}

func (m Mode) String() string {
	if m.kind == modeTyped {
		if m.typ == nil {
			return "typed(nil)"
		}
		return "typed(" + m.typ.String() + ")"
	}
	return "assoc"
}
