package builtin

import (
	"fmt"
	"io"

	"github.com/frisbee-lang/frisbee/internal/object"
	"github.com/frisbee-lang/frisbee/internal/runtime"
)

// IO is the `io` module singleton (spec.md §6: "Module io with singleton io
// supporting print(args)"). The original's print built-in writes each
// argument's printed form to stdout; this port keeps that contract and
// makes the destination swappable for tests.
type IO struct {
	Out io.Writer
}

// NewIO returns the io module singleton writing to out.
func NewIO(out io.Writer) *IO {
	return &IO{Out: out}
}

// Call implements runtime.BuiltinSingleton.
func (m *IO) Call(_ *runtime.Context, method string, args []object.Value) (object.Value, error) {
	if method != "print" {
		return nil, fmt.Errorf("%w: io.%s", runtime.ErrMethodNotFound, method)
	}
	parts := make([]any, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	fmt.Fprintln(m.Out, parts...)
	return object.Void{}, nil
}
