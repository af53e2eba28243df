package builtin

import (
	"bytes"
	"testing"

	"github.com/frisbee-lang/frisbee/internal/object"
	"github.com/frisbee-lang/frisbee/internal/runtime"
	"github.com/stretchr/testify/require"
)

func TestIOPrint(t *testing.T) {
	var buf bytes.Buffer
	m := NewIO(&buf)

	v, err := m.Call(nil, "print", []object.Value{object.Int(3), object.Str("hi")})
	require.NoError(t, err)
	require.Equal(t, object.Void{}, v)
	require.Equal(t, "3 hi\n", buf.String())
}

func TestIOUnknownMethod(t *testing.T) {
	var buf bytes.Buffer
	m := NewIO(&buf)
	_, err := m.Call(nil, "scan", nil)
	require.ErrorIs(t, err, runtime.ErrMethodNotFound)
}
