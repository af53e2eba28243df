package runtime

import "errors"

// Error taxonomy for the evaluator, grouped the way spec §7 groups them.
// Each is a sentinel so callers can errors.Is against the kind without
// caring about the specific identifier or operator involved; detail is
// added with fmt.Errorf("...: %w", ErrX) at the call site.
var (
	// ErrUnboundName is returned when an identifier has no binding in the
	// current frame.
	ErrUnboundName = errors.New("unbound name")

	// ErrTypeError is returned when an operator or built-in is applied to
	// operands of incompatible kinds.
	ErrTypeError = errors.New("type error")

	// ErrBoundsError is returned when an array index is out of range.
	ErrBoundsError = errors.New("index out of bounds")

	// ErrNoField is returned when a field is read or written that the
	// declaration doesn't have.
	ErrNoField = errors.New("no such field")

	// ErrMethodNotFound is returned when a method name has no
	// corresponding MethodDecl.
	ErrMethodNotFound = errors.New("method not found")

	// ErrNotPassive is returned when a field access, field assignment or
	// synchronous method call targets an active proxy, which must go
	// through send/wait.
	ErrNotPassive = errors.New("operation not valid on a non-passive value")

	// ErrTypeNotFound is returned when new/spawn names a type that
	// isn't in the resolved module's declaration table.
	ErrTypeNotFound = errors.New("type not found")
)
