package render

import (
	"errors"
	"strings"
)

// ErrUnsupported matches every UnsupportedFeatureError under errors.Is.
var ErrUnsupported = errors.New("unsupported feature")

// UnsupportedFeatureError is returned when a dialect version can neither
// render a construct natively nor emulate it. Translation stops and no SQL
// is produced.
type UnsupportedFeatureError struct {
	Feature string // e.g. "skip locked", "left join in a recursive query part"
	Dialect string // display name and version, e.g. "DB2 10.5"
	Hint    string
}

func (e UnsupportedFeatureError) Error() string {
	var b strings.Builder
	b.WriteString(e.Dialect)
	b.WriteString(": ")
	b.WriteString(e.Feature)
	b.WriteString(" is not supported")
	if e.Hint != "" {
		b.WriteString(": ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// Is reports whether target is ErrUnsupported.
func (e UnsupportedFeatureError) Is(target error) bool {
	return target == ErrUnsupported
}

// NewUnsupportedFeatureError builds the error for dialect, which is the
// versioned display name. Only the first hint is kept.
func NewUnsupportedFeatureError(dialect, feature string, hint ...string) error {
	err := UnsupportedFeatureError{Feature: feature, Dialect: dialect}
	if len(hint) > 0 {
		err.Hint = hint[0]
	}
	return err
}
