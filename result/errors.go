package result

var (
	// ErrOutOfRange is returned when an offset lies outside of a row set
	ErrOutOfRange errOutOfRange
	// ErrReposition is returned when a row set fails to reposition
	ErrReposition errReposition
	// ErrExhausted is returned when a row is materialized from a released row set
	ErrExhausted errExhausted
	// ErrConfig is returned when a row type or its constructor args are invalid
	ErrConfig errConfig
)

type (
	errOutOfRange struct{}
	errReposition struct{}
	errExhausted  struct{}
	errConfig     struct{}
)

func (e errOutOfRange) Error() string {
	return "Offset out of range"
}

func (e errReposition) Error() string {
	return "Failed to reposition row set"
}

func (e errExhausted) Error() string {
	return "Result exhausted"
}

func (e errConfig) Error() string {
	return "Invalid row type"
}
