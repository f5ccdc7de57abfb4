package types

import "time"

// LockMode is the requested row locking of a query.
type LockMode int

const (
	LockNone LockMode = iota
	LockRead
	LockPessimisticRead
	LockPessimisticWrite
)

func (m LockMode) String() string {
	switch m {
	case LockRead:
		return "read"
	case LockPessimisticRead:
		return "pessimistic_read"
	case LockPessimisticWrite:
		return "pessimistic_write"
	default:
		return "none"
	}
}

// LockWait controls how lock acquisition behaves when rows are already locked.
type LockWait int

const (
	// WaitForever blocks until the lock is granted.
	WaitForever LockWait = iota
	// NoWait fails immediately.
	NoWait
	// SkipLocked skips rows locked by other transactions.
	SkipLocked
)

// LockOptions describes the lock requested for a statement.
// A positive Timeout applies only with WaitForever.
type LockOptions struct {
	Mode    LockMode
	Wait    LockWait
	Timeout time.Duration
}

// Limit is a caller-supplied row window applied to the root query part.
// It overrides the root part's own offset and fetch.
type Limit struct {
	FirstRow *int
	MaxRows  *int
}

// IsEmpty reports whether neither bound is set.
func (l Limit) IsEmpty() bool {
	return l.FirstRow == nil && l.MaxRows == nil
}

// QueryOptions are the per-statement translation options.
type QueryOptions struct {
	Values             map[*Parameter]any
	Limit              Limit
	Lock               LockOptions
	ParameterRendering ParameterRenderingMode
}

// Binding is one bind slot of a translated statement.
type Binding struct {
	Parameter *Parameter
	Value     any
	Bound     bool
}

// Result contains the translated SQL and its bind slots in render order.
type Result struct {
	SQL      string
	Bindings []Binding
}

// Args returns the bind values in slot order.
func (r *Result) Args() []any {
	args := make([]any, len(r.Bindings))
	for i, b := range r.Bindings {
		args[i] = b.Value
	}
	return args
}

// Unbound returns the names of slots that have no value.
func (r *Result) Unbound() []string {
	var names []string
	for _, b := range r.Bindings {
		if !b.Bound {
			names = append(names, b.Parameter.Name)
		}
	}
	return names
}
